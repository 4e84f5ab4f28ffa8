package domain

import (
	"encoding/json"
	"time"
)

// Well-known match formats. The backend accepts any string.
const (
	FormatT20  = "T20"
	FormatODI  = "ODI"
	FormatTest = "Test"
)

// DefaultMatchFormat is used when the user does not pick a format.
const DefaultMatchFormat = FormatT20

// MatchFormats lists the suggested formats.
var MatchFormats = []string{FormatT20, FormatODI, FormatTest}

// MatchStatus is the badge shown next to a match.
type MatchStatus string

const (
	MatchToday     MatchStatus = "Today"
	MatchUpcoming  MatchStatus = "Upcoming"
	MatchCompleted MatchStatus = "Completed"
)

// Match is a match record as returned by the backend.
// Fields this client does not model are kept in Extra.
type Match struct {
	ID       string                     `json:"_id"`
	Format   string                     `json:"format"`
	Date     string                     `json:"date"`
	Location string                     `json:"location"`
	Extra    map[string]json.RawMessage `json:"-"`
}

var matchFields = []string{"_id", "format", "date", "location"}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (m *Match) UnmarshalJSON(data []byte) error {
	type plain Match
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraFields(data, matchFields)
	if err != nil {
		return err
	}
	p.Extra = extra
	*m = Match(p)
	return nil
}

// MarshalJSON writes known fields merged with Extra.
func (m Match) MarshalJSON() ([]byte, error) {
	type plain Match
	return mergeExtra(plain(m), m.Extra)
}

// When parses the match date.
func (m Match) When() (time.Time, error) {
	return ParseMatchDate(m.Date)
}

// Status computes the badge for the match relative to now, comparing
// calendar days in now's location. A date that does not parse is
// Completed.
func (m Match) Status(now time.Time) MatchStatus {
	when, err := m.When()
	if err != nil {
		return MatchCompleted
	}
	return StatusAt(when, now)
}

// StatusAt computes the badge for a match at when, relative to now.
func StatusAt(when, now time.Time) MatchStatus {
	loc := now.Location()
	wy, wm, wd := when.In(loc).Date()
	ny, nm, nd := now.Date()
	day := time.Date(wy, wm, wd, 0, 0, 0, 0, loc)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)

	switch {
	case day.Equal(today):
		return MatchToday
	case day.After(today):
		return MatchUpcoming
	default:
		return MatchCompleted
	}
}

var matchDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseMatchDate accepts RFC 3339 and the short forms YYYY-MM-DD and
// YYYY-MM-DD HH:MM (local time).
func ParseMatchDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range matchDateLayouts {
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// FormatMatchDate renders t as the ISO string sent to the backend.
func FormatMatchDate(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ScoreSnapshot is the live score of a match. Its shape is owned by the backend.
type ScoreSnapshot map[string]any

// TossResult is the outcome of a toss. Its shape is owned by the backend.
type TossResult map[string]any

func extraFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func mergeExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return base, err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(base, &all); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := all[k]; !ok {
			all[k] = raw
		}
	}
	return json.Marshal(all)
}
