package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/yndnr/cricket-go/internal/core/domain"
)

// recordingCaller records every call and answers with a canned response.
type recordingCaller struct {
	calls    []recordedCall
	response any
	err      error
}

type recordedCall struct {
	Endpoint domain.Endpoint
	Args     []string
	Body     map[string]any
}

func (c *recordingCaller) Call(_ context.Context, ep domain.Endpoint, args []string, body, out any) error {
	rec := recordedCall{Endpoint: ep, Args: args}
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &rec.Body); err != nil {
			return err
		}
	}
	c.calls = append(c.calls, rec)
	if c.err != nil {
		return c.err
	}
	if out != nil && c.response != nil {
		data, err := json.Marshal(c.response)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	}
	return nil
}

func (c *recordingCaller) last(t *testing.T) recordedCall {
	t.Helper()
	if len(c.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(c.calls))
	}
	return c.calls[0]
}

func TestAuthAPI_Requests(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(a *AuthAPI) error
		endpoint domain.Endpoint
		body     map[string]any
	}{
		{
			name: "register",
			call: func(a *AuthAPI) error {
				_, err := a.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "pw", DisplayName: "Ann"})
				return err
			},
			endpoint: domain.EndpointRegister,
			body:     map[string]any{"email": "a@b.c", "password": "pw", "displayName": "Ann"},
		},
		{
			name: "email login",
			call: func(a *AuthAPI) error {
				_, err := a.EmailLogin(ctx, EmailLoginRequest{Email: "a@b.c", Password: "pw"})
				return err
			},
			endpoint: domain.EndpointEmailLogin,
			body:     map[string]any{"email": "a@b.c", "password": "pw"},
		},
		{
			name: "request otp",
			call: func(a *AuthAPI) error {
				_, err := a.RequestOTP(ctx, "+15550100")
				return err
			},
			endpoint: domain.EndpointRequestOTP,
			body:     map[string]any{"phoneNumber": "+15550100"},
		},
		{
			name: "verify otp",
			call: func(a *AuthAPI) error {
				_, err := a.VerifyOTP(ctx, VerifyOTPRequest{PhoneNumber: "+15550100", OTP: "123456"})
				return err
			},
			endpoint: domain.EndpointVerifyOTP,
			body:     map[string]any{"phoneNumber": "+15550100", "otp": "123456"},
		},
		{
			name: "id token",
			call: func(a *AuthAPI) error {
				_, err := a.LoginWithIDToken(ctx, "id-tok")
				return err
			},
			endpoint: domain.EndpointLoginWithIDToken,
			body:     map[string]any{"idToken": "id-tok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &recordingCaller{}
			if err := tt.call(NewAuthAPI(caller)); err != nil {
				t.Fatalf("call error = %v", err)
			}
			got := caller.last(t)
			if got.Endpoint != tt.endpoint {
				t.Errorf("endpoint = %v, want %v", got.Endpoint, tt.endpoint)
			}
			if len(got.Args) != 0 {
				t.Errorf("args = %v, want none", got.Args)
			}
			if !reflect.DeepEqual(got.Body, tt.body) {
				t.Errorf("body = %v, want %v", got.Body, tt.body)
			}
		})
	}
}

func TestAuthAPI_Responses(t *testing.T) {
	ctx := context.Background()

	caller := &recordingCaller{response: map[string]string{"token": "abc", "displayName": "Ann"}}
	res, err := NewAuthAPI(caller).EmailLogin(ctx, EmailLoginRequest{Email: "a@b.c", Password: "pw"})
	if err != nil {
		t.Fatalf("EmailLogin() error = %v", err)
	}
	if res.Token != "abc" || res.DisplayName != "Ann" {
		t.Errorf("EmailLogin() = %+v", res)
	}

	caller = &recordingCaller{response: map[string]string{"message": "sent", "code": "4242"}}
	otp, err := NewAuthAPI(caller).RequestOTP(ctx, "+15550100")
	if err != nil {
		t.Fatalf("RequestOTP() error = %v", err)
	}
	if otp.Code != "4242" || otp.Message != "sent" {
		t.Errorf("RequestOTP() = %+v", otp)
	}

	caller = &recordingCaller{response: map[string]string{"message": "registered"}}
	ack, err := NewAuthAPI(caller).Register(ctx, RegisterRequest{Email: "a@b.c", Password: "pw", DisplayName: "Ann"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if ack.Message() != "registered" {
		t.Errorf("Register() message = %q", ack.Message())
	}
}

func TestMatchAPI_Requests(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(m *MatchAPI) error
		endpoint domain.Endpoint
		args     []string
		body     map[string]any
	}{
		{
			name: "create",
			call: func(m *MatchAPI) error {
				_, err := m.CreateMatch(ctx, CreateMatchRequest{Format: "T20", Date: "2026-01-01T10:00:00.000Z", Location: "Lord's"})
				return err
			},
			endpoint: domain.EndpointCreateMatch,
			body:     map[string]any{"format": "T20", "date": "2026-01-01T10:00:00.000Z", "location": "Lord's"},
		},
		{
			name: "list",
			call: func(m *MatchAPI) error {
				_, err := m.ListMatches(ctx)
				return err
			},
			endpoint: domain.EndpointListMatches,
		},
		{
			name: "delete",
			call: func(m *MatchAPI) error {
				_, err := m.DeleteMatch(ctx, "m1")
				return err
			},
			endpoint: domain.EndpointDeleteMatch,
			args:     []string{"m1"},
		},
		{
			name: "score",
			call: func(m *MatchAPI) error {
				_, err := m.GetMatchScore(ctx, "m1")
				return err
			},
			endpoint: domain.EndpointGetMatchScore,
			args:     []string{"m1"},
		},
		{
			name: "toss",
			call: func(m *MatchAPI) error {
				_, err := m.Toss(ctx, "m1")
				return err
			},
			endpoint: domain.EndpointToss,
			args:     []string{"m1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &recordingCaller{}
			if err := tt.call(NewMatchAPI(caller)); err != nil {
				t.Fatalf("call error = %v", err)
			}
			got := caller.last(t)
			if got.Endpoint != tt.endpoint {
				t.Errorf("endpoint = %v, want %v", got.Endpoint, tt.endpoint)
			}
			if !reflect.DeepEqual(got.Args, tt.args) {
				t.Errorf("args = %v, want %v", got.Args, tt.args)
			}
			if !reflect.DeepEqual(got.Body, tt.body) {
				t.Errorf("body = %v, want %v", got.Body, tt.body)
			}
		})
	}
}

func TestMatchAPI_ListMatches(t *testing.T) {
	caller := &recordingCaller{response: []map[string]any{
		{"_id": "m1", "format": "ODI", "date": "2026-01-01T10:00:00.000Z", "location": "Oval", "overs": 50},
		{"_id": "m2", "format": "T20", "date": "2026-02-01T10:00:00.000Z", "location": "Eden"},
	}}

	matches, err := NewMatchAPI(caller).ListMatches(context.Background())
	if err != nil {
		t.Fatalf("ListMatches() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("len = %d, want 2", len(matches))
	}
	if matches[0].ID != "m1" || matches[0].Format != "ODI" {
		t.Errorf("matches[0] = %+v", matches[0])
	}
	if _, ok := matches[0].Extra["overs"]; !ok {
		t.Error("unknown field overs was dropped")
	}
}

func TestInviteAPI_Requests(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(i *InviteAPI) error
		endpoint domain.Endpoint
		args     []string
		body     map[string]any
	}{
		{
			name: "send",
			call: func(i *InviteAPI) error {
				_, err := i.SendInvite(ctx, "m1", "bob")
				return err
			},
			endpoint: domain.EndpointSendInvite,
			args:     []string{"m1"},
			body:     map[string]any{"username": "bob"},
		},
		{
			name: "list",
			call: func(i *InviteAPI) error {
				_, err := i.ListInvites(ctx)
				return err
			},
			endpoint: domain.EndpointListInvites,
		},
		{
			name: "accept",
			call: func(i *InviteAPI) error {
				_, err := i.RespondInvite(ctx, "i1", true)
				return err
			},
			endpoint: domain.EndpointRespondInvite,
			args:     []string{"i1"},
			body:     map[string]any{"accept": true},
		},
		{
			name: "decline",
			call: func(i *InviteAPI) error {
				_, err := i.RespondInvite(ctx, "i1", false)
				return err
			},
			endpoint: domain.EndpointRespondInvite,
			args:     []string{"i1"},
			body:     map[string]any{"accept": false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caller := &recordingCaller{}
			if err := tt.call(NewInviteAPI(caller)); err != nil {
				t.Fatalf("call error = %v", err)
			}
			got := caller.last(t)
			if got.Endpoint != tt.endpoint {
				t.Errorf("endpoint = %v, want %v", got.Endpoint, tt.endpoint)
			}
			if !reflect.DeepEqual(got.Args, tt.args) {
				t.Errorf("args = %v, want %v", got.Args, tt.args)
			}
			if !reflect.DeepEqual(got.Body, tt.body) {
				t.Errorf("body = %v, want %v", got.Body, tt.body)
			}
		})
	}
}

func TestAPI_ErrorsUnchanged(t *testing.T) {
	ctx := context.Background()
	want := domain.NewHTTPError(404, "not found", nil)
	caller := &recordingCaller{err: want}

	if _, err := NewMatchAPI(caller).DeleteMatch(ctx, "m1"); err != want {
		t.Errorf("DeleteMatch() error = %v, want %v", err, want)
	}
	if _, err := NewAuthAPI(caller).EmailLogin(ctx, EmailLoginRequest{}); err != want {
		t.Errorf("EmailLogin() error = %v, want %v", err, want)
	}
	if _, err := NewInviteAPI(caller).ListInvites(ctx); !errors.Is(err, want) {
		t.Errorf("ListInvites() error = %v, want %v", err, want)
	}
}
