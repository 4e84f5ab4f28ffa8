package command

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

func TestInviteRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.login("Ann")
	h.srv.AddMatch(domain.Match{ID: "m1", Format: "T20", Date: "2026-05-10", Location: "Lord's"})

	sent := h.run("invite", "send", "--user", "bob", "m1")
	require.NoError(t, sent.err)
	assertContains(t, sent.stdout, "Invite sent")

	rec, ok := h.srv.Last(domain.EndpointSendInvite.Name)
	require.True(t, ok)
	if rec.Path != "/matches/m1/invite" {
		t.Errorf("path = %q", rec.Path)
	}
	if got := rec.JSON()["username"]; got != "bob" {
		t.Errorf("username = %v, want bob", got)
	}

	list := h.run("--output", "json", "invite", "list")
	require.NoError(t, list.err)
	var invites []map[string]any
	require.NoError(t, json.Unmarshal([]byte(list.stdout), &invites))
	require.Len(t, invites, 1)
	id, _ := invites[0]["_id"].(string)
	require.NotEmpty(t, id)
	if invites[0]["matchId"] != "m1" {
		t.Errorf("matchId = %v", invites[0]["matchId"])
	}

	table := h.run("invite", "list")
	require.NoError(t, table.err)
	assertContains(t, table.stdout, "MATCH")
	assertContains(t, table.stdout, "pending")

	accepted := h.run("invite", "respond", "--accept", id)
	require.NoError(t, accepted.err)
	assertContains(t, accepted.stdout, "Invite accepted")

	inv, ok := h.srv.Invite(id)
	require.True(t, ok)
	if inv.Status != "accepted" {
		t.Errorf("status = %q, want accepted", inv.Status)
	}
}

func TestInviteRespond_Decline(t *testing.T) {
	h := newHarness(t)
	h.login("Ann")
	id := h.srv.AddInvite(domain.Invite{MatchID: "m1", From: "bob"})

	res := h.run("invite", "respond", "--decline", id)
	require.NoError(t, res.err)
	assertContains(t, res.stdout, "Invite declined")

	rec, _ := h.srv.Last(domain.EndpointRespondInvite.Name)
	if got := rec.JSON()["accept"]; got != false {
		t.Errorf("accept = %v, want false", got)
	}
}

func TestInvite_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		login   bool
		args    []string
		wantMsg string
	}{
		{
			name:    "send without session",
			args:    []string{"invite", "send", "--user", "bob", "m1"},
			wantMsg: "Please log in first",
		},
		{
			name:    "send without user",
			login:   true,
			args:    []string{"invite", "send", "m1"},
			wantMsg: "Please fill all fields",
		},
		{
			name:    "send without match",
			login:   true,
			args:    []string{"invite", "send", "--user", "bob"},
			wantMsg: "Please fill all fields",
		},
		{
			name:    "respond without choice",
			login:   true,
			args:    []string{"invite", "respond", "i1"},
			wantMsg: "response must be either --accept or --decline",
		},
		{
			name:    "respond with both",
			login:   true,
			args:    []string{"invite", "respond", "--accept", "--decline", "i1"},
			wantMsg: "response must be either --accept or --decline",
		},
		{
			name:    "respond without id",
			login:   true,
			args:    []string{"invite", "respond", "--accept"},
			wantMsg: "Please fill all fields",
		},
		{
			name:    "list without session",
			args:    []string{"invite", "list"},
			wantMsg: "Please log in first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.login {
				h.login("Ann")
			}
			before := len(h.srv.Requests())

			res := h.run(tt.args...)
			if res.err == nil {
				t.Fatal("expected error")
			}
			if res.err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", res.err.Error(), tt.wantMsg)
			}
			if after := len(h.srv.Requests()); after != before {
				t.Errorf("backend called %d times, want 0", after-before)
			}
		})
	}
}

func TestInviteSend_UnknownMatch(t *testing.T) {
	h := newHarness(t)
	h.login("Ann")

	res := h.run("invite", "send", "--user", "bob", "missing")
	if res.err == nil || res.err.Error() != "Match not found" {
		t.Errorf("error = %v, want backend message", res.err)
	}
}
