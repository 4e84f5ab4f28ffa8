package domain

import (
	"bytes"
	"encoding/json"
)

// DefaultDisplayName is shown when a session carries no display name.
const DefaultDisplayName = "Player"

// SessionState is the lifecycle state of the Auth Session Manager.
type SessionState int

const (
	// StateInitializing means the durable store has not been read yet.
	StateInitializing SessionState = iota
	// StateUnauthenticated means no token is held.
	StateUnauthenticated
	// StateAuthenticated means a token is held and attached to outbound calls.
	StateAuthenticated
)

// String returns the string representation of the state.
func (s SessionState) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is the in-memory identity of the current user.
// An empty Token means no session.
type Session struct {
	Token       string `json:"-"`
	DisplayName string `json:"displayName,omitempty"`
	Loading     bool   `json:"loading"`
}

// State derives the lifecycle state from the session fields.
func (s Session) State() SessionState {
	switch {
	case s.Loading:
		return StateInitializing
	case s.Token != "":
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Authenticated reports whether a token is held and restore has finished.
func (s Session) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// Name returns the display name, or DefaultDisplayName if empty.
func (s Session) Name() string {
	if s.DisplayName == "" {
		return DefaultDisplayName
	}
	return s.DisplayName
}

// Credentials is the payload handed to signIn and returned by every
// login endpoint.
type Credentials struct {
	Token       string `json:"token"`
	DisplayName string `json:"displayName"`
}

// AuthResult is the backend response to a successful login.
type AuthResult = Credentials

// OTPChallenge is the response to requestOtp. Code is only echoed by
// development backends.
type OTPChallenge struct {
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Ack is a free-form acknowledgement body. Any JSON value is accepted
// and kept as sent.
type Ack struct {
	Raw json.RawMessage
}

// UnmarshalJSON keeps the body without interpreting it.
func (a *Ack) UnmarshalJSON(data []byte) error {
	a.Raw = append(a.Raw[:0], data...)
	return nil
}

// MarshalJSON writes the body back unchanged.
func (a Ack) MarshalJSON() ([]byte, error) {
	if a.Empty() {
		return []byte("null"), nil
	}
	return a.Raw, nil
}

// Empty reports whether the backend sent no body or null.
func (a Ack) Empty() bool {
	raw := bytes.TrimSpace(a.Raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// Message returns the acknowledgement text: a bare JSON string, or the
// "message" field of an object. Anything else has no message.
func (a Ack) Message() string {
	if a.Empty() {
		return ""
	}
	var text string
	if err := json.Unmarshal(a.Raw, &text); err == nil {
		return text
	}
	var obj map[string]any
	if err := json.Unmarshal(a.Raw, &obj); err != nil {
		return ""
	}
	m, _ := obj["message"].(string)
	return m
}
