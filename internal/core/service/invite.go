package service

import (
	"context"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

// SendInviteRequest invites a user to a match. MatchID goes in the path.
type SendInviteRequest struct {
	MatchID  string `json:"-" validate:"required"`
	Username string `json:"username" validate:"required"`
}

// RespondInviteRequest accepts or declines an invite. InviteID goes in the path.
type RespondInviteRequest struct {
	InviteID string `json:"-" validate:"required"`
	Accept   bool   `json:"accept"`
}

// InviteAPI is the invites resource.
type InviteAPI struct {
	caller Caller
}

// NewInviteAPI creates an InviteAPI.
func NewInviteAPI(caller Caller) *InviteAPI {
	return &InviteAPI{caller: caller}
}

// SendInvite invites username to a match.
func (i *InviteAPI) SendInvite(ctx context.Context, matchID, username string) (domain.Ack, error) {
	req := SendInviteRequest{MatchID: matchID, Username: username}
	var ack domain.Ack
	if err := i.caller.Call(ctx, domain.EndpointSendInvite, []string{matchID}, req, &ack); err != nil {
		return domain.Ack{}, err
	}
	return ack, nil
}

// ListInvites returns the caller's pending invites.
func (i *InviteAPI) ListInvites(ctx context.Context) ([]domain.Invite, error) {
	var out []domain.Invite
	if err := i.caller.Call(ctx, domain.EndpointListInvites, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RespondInvite accepts or declines an invite.
func (i *InviteAPI) RespondInvite(ctx context.Context, inviteID string, accept bool) (domain.Ack, error) {
	req := RespondInviteRequest{InviteID: inviteID, Accept: accept}
	var ack domain.Ack
	if err := i.caller.Call(ctx, domain.EndpointRespondInvite, []string{inviteID}, req, &ack); err != nil {
		return domain.Ack{}, err
	}
	return ack, nil
}
