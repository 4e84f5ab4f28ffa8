package service

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/telemetry/logger"
	"github.com/yndnr/cricket-go/pkg/token"
)

// CredentialStore persists the session across restarts.
type CredentialStore interface {
	// Load returns the stored credentials. ok is false when no token is stored.
	Load(ctx context.Context) (creds domain.Credentials, ok bool, err error)

	// Save writes both session keys.
	Save(ctx context.Context, creds domain.Credentials) error

	// Clear removes both session keys.
	Clear(ctx context.Context) error
}

// TokenSink receives the default Authorization token for outbound calls.
// An empty token clears it.
type TokenSink interface {
	SetAuthToken(token string)
}

// SessionObserver records session transitions.
type SessionObserver interface {
	ObserveSession(event string, err error)
}

// SessionView is the read-only view of the session handed to consumers.
type SessionView interface {
	Session() domain.Session
	Wait(ctx context.Context) error
	TokenInfo() (*TokenInfo, error)
}

var _ SessionView = (*SessionManager)(nil)

// Session events reported to the SessionObserver.
const (
	EventRestore = "restore"
	EventSignIn  = "sign_in"
	EventSignOut = "sign_out"
)

type nopSessionObserver struct{}

func (nopSessionObserver) ObserveSession(string, error) {}

// ============================================================================
// Session Manager
// ============================================================================

// SessionManager owns the current session.
//
// It is the only writer of the session keys and of the sink's token.
// Every method is safe for concurrent use; sign in and sign out are
// serialized.
type SessionManager struct {
	store    CredentialStore
	sink     TokenSink
	logger   logger.Logger
	observer SessionObserver

	restoreOnce sync.Once
	readyOnce   sync.Once
	ready       chan struct{}

	writeMu sync.Mutex // serializes SignIn and SignOut
	mu      sync.RWMutex
	session domain.Session
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithSessionLogger sets the logger.
func WithSessionLogger(l logger.Logger) SessionOption {
	return func(m *SessionManager) {
		m.logger = l
	}
}

// WithSessionObserver sets the transition observer.
func WithSessionObserver(o SessionObserver) SessionOption {
	return func(m *SessionManager) {
		if o != nil {
			m.observer = o
		}
	}
}

// NewSessionManager creates a SessionManager in the initializing state.
func NewSessionManager(store CredentialStore, sink TokenSink, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		store:    store,
		sink:     sink,
		logger:   logger.Nop(),
		observer: nopSessionObserver{},
		ready:    make(chan struct{}),
		session:  domain.Session{Loading: true},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore reads the stored session and leaves the initializing state.
//
// Only the first call does any work. A read failure is treated as no
// stored session: the manager becomes unauthenticated and the
// PersistenceError is returned for reporting.
func (m *SessionManager) Restore(ctx context.Context) error {
	var restoreErr error
	m.restoreOnce.Do(func() {
		creds, ok, err := m.store.Load(ctx)
		m.observer.ObserveSession(EventRestore, err)
		if err != nil {
			m.logger.Warn("session restore failed, continuing signed out", "error", err)
			restoreErr = err
			ok = false
		}

		m.mu.Lock()
		if ok {
			m.sink.SetAuthToken(creds.Token)
			m.session = domain.Session{Token: creds.Token, DisplayName: creds.DisplayName}
		} else {
			m.session = domain.Session{}
		}
		m.mu.Unlock()

		m.logger.Debug("session restored", "state", m.Session().State().String())
		m.markReady()
	})
	return restoreErr
}

// Session returns a snapshot of the current session.
func (m *SessionManager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Wait blocks until the session has left the initializing state.
func (m *SessionManager) Wait(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SignIn persists creds, attaches the token to outbound calls and
// publishes the new session.
//
// The durable write happens first. If it fails, the durable keys are
// rolled back to the current session on a best-effort basis, the
// in-memory session and the token are left unchanged and the
// PersistenceError is returned.
func (m *SessionManager) SignIn(ctx context.Context, creds domain.Credentials) error {
	if creds.Token == "" {
		return domain.NewValidationError("token", domain.ReasonRequired)
	}
	m.finishInit()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Save(ctx, creds); err != nil {
		m.rollback(context.WithoutCancel(ctx))
		m.observer.ObserveSession(EventSignIn, err)
		m.logger.Error("sign in not persisted", "error", err)
		return err
	}

	m.mu.Lock()
	m.sink.SetAuthToken(creds.Token)
	m.session = domain.Session{Token: creds.Token, DisplayName: creds.DisplayName}
	m.mu.Unlock()

	m.observer.ObserveSession(EventSignIn, nil)
	m.logger.Info("signed in", "display_name", creds.DisplayName, "token", token.Fingerprint(creds.Token))
	return nil
}

// SignOut clears the session.
//
// The in-memory session and the token are always cleared. A failure to
// remove the durable keys is returned as a PersistenceError; the next
// Restore may then bring the old session back.
func (m *SessionManager) SignOut(ctx context.Context) error {
	m.finishInit()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	err := m.store.Clear(ctx)

	m.mu.Lock()
	m.sink.SetAuthToken("")
	m.session = domain.Session{}
	m.mu.Unlock()

	m.observer.ObserveSession(EventSignOut, err)
	if err != nil {
		m.logger.Error("sign out not persisted", "error", err)
		return err
	}
	m.logger.Info("signed out")
	return nil
}

// rollback puts the durable keys back in line with the in-memory session
// after a failed write.
func (m *SessionManager) rollback(ctx context.Context) {
	prev := m.Session()
	var err error
	if prev.Token != "" {
		err = m.store.Save(ctx, domain.Credentials{Token: prev.Token, DisplayName: prev.DisplayName})
	} else {
		err = m.store.Clear(ctx)
	}
	if err != nil {
		m.logger.Warn("session store rollback failed", "error", err)
	}
}

// StateValue returns the current state as a number for gauges.
func (m *SessionManager) StateValue() int {
	return int(m.Session().State())
}

// TokenInfo inspects the current token without verifying its signature.
func (m *SessionManager) TokenInfo() (*TokenInfo, error) {
	s := m.Session()
	if !s.Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}
	return InspectToken(s.Token)
}

// finishInit ends the initializing state without reading the store. An
// explicit sign in or sign out wins over a restore that has not started.
// A restore already in progress completes first.
func (m *SessionManager) finishInit() {
	m.restoreOnce.Do(func() {
		m.mu.Lock()
		m.session.Loading = false
		m.mu.Unlock()
		m.markReady()
	})
}

func (m *SessionManager) markReady() {
	m.readyOnce.Do(func() { close(m.ready) })
}

// ============================================================================
// Token Inspection
// ============================================================================

// TokenInfo holds the claims of a session token that the client can
// show. The signature is never checked; the backend remains the
// authority.
type TokenInfo struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry before now.
func (t *TokenInfo) Expired(now time.Time) bool {
	return !t.ExpiresAt.IsZero() && now.After(t.ExpiresAt)
}

// InspectToken parses a JWT session token without verification.
// Opaque tokens yield ErrTokenMalformed.
func InspectToken(token string) (*TokenInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, domain.ErrTokenMalformed.WithCause(err)
	}

	info := &TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
