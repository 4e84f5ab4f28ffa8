package domain

import "encoding/json"

// Invite is a pending invitation to join a match.
type Invite struct {
	ID      string                     `json:"_id"`
	MatchID string                     `json:"matchId,omitempty"`
	From    string                     `json:"from,omitempty"`
	Status  string                     `json:"status,omitempty"`
	Extra   map[string]json.RawMessage `json:"-"`
}

var inviteFields = []string{"_id", "matchId", "from", "status"}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (i *Invite) UnmarshalJSON(data []byte) error {
	type plain Invite
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, inviteFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*i = Invite(p)
	return nil
}

// MarshalJSON writes known fields merged with Extra.
func (i Invite) MarshalJSON() ([]byte, error) {
	type plain Invite
	return mergeExtra(plain(i), i.Extra)
}
