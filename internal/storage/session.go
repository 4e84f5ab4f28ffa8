package storage

import (
	"context"
	"errors"

	"github.com/yndnr/cricket-go/internal/core/domain"
	"github.com/yndnr/cricket-go/internal/telemetry/logger"
	"github.com/yndnr/cricket-go/pkg/crypto/adaptive"
)

// Durable keys. No other state is persisted.
const (
	KeyUserToken = "userToken"
	KeyUserName  = "userName"
)

// Sealer seals values before they reach the engine.
type Sealer interface {
	Seal(plaintext, additionalData []byte) ([]byte, error)
	Open(sealed, additionalData []byte) ([]byte, error)
}

var _ Sealer = (*adaptive.Sealer)(nil)

// StoreObserver receives session store failures.
type StoreObserver interface {
	ObserveStoreError(op string)
}

// SessionStore is the durable string store for the session keys.
// Every failure is returned as *domain.PersistenceError.
type SessionStore struct {
	kv       KVEngine
	sealer   Sealer
	logger   logger.Logger
	observer StoreObserver
}

// SessionStoreOption configures a SessionStore.
type SessionStoreOption func(*SessionStore)

// WithSealer encrypts values at rest. Values are bound to their key.
func WithSealer(s Sealer) SessionStoreOption {
	return func(st *SessionStore) {
		st.sealer = s
	}
}

// WithStoreLogger sets the store logger.
func WithStoreLogger(l logger.Logger) SessionStoreOption {
	return func(st *SessionStore) {
		st.logger = l
	}
}

// WithStoreObserver reports failures to o.
func WithStoreObserver(o StoreObserver) SessionStoreOption {
	return func(st *SessionStore) {
		st.observer = o
	}
}

// NewSessionStore creates a store on kv.
func NewSessionStore(kv KVEngine, opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{kv: kv, logger: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value under key. ok is false if the key is absent.
func (s *SessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	raw, err := s.kv.Get(ctx, []byte(key))
	if errors.Is(err, ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, s.fail("read", key, err)
	}
	if s.sealer != nil {
		raw, err = s.sealer.Open(raw, []byte(key))
		if err != nil {
			return "", false, s.fail("read", key, err)
		}
	}
	return string(raw), true, nil
}

// Set stores value under key.
func (s *SessionStore) Set(ctx context.Context, key, value string) error {
	raw := []byte(value)
	if s.sealer != nil {
		var err error
		raw, err = s.sealer.Seal(raw, []byte(key))
		if err != nil {
			return s.fail("write", key, err)
		}
	}
	if err := s.kv.Set(ctx, []byte(key), raw); err != nil {
		return s.fail("write", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key succeeds.
func (s *SessionStore) Remove(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, []byte(key)); err != nil {
		return s.fail("remove", key, err)
	}
	return nil
}

// Load reads both session keys. ok is false when no token is stored;
// a stored name without a token is ignored.
func (s *SessionStore) Load(ctx context.Context) (domain.Credentials, bool, error) {
	token, ok, err := s.Get(ctx, KeyUserToken)
	if err != nil || !ok {
		return domain.Credentials{}, false, err
	}
	name, _, err := s.Get(ctx, KeyUserName)
	if err != nil {
		return domain.Credentials{}, false, err
	}
	return domain.Credentials{Token: token, DisplayName: name}, true, nil
}

// Save writes the token, then the name. If the name write fails the
// token is removed again, best effort, so a half-written session is not
// restored later.
func (s *SessionStore) Save(ctx context.Context, creds domain.Credentials) error {
	if err := s.Set(ctx, KeyUserToken, creds.Token); err != nil {
		return err
	}
	if err := s.Set(ctx, KeyUserName, creds.DisplayName); err != nil {
		if rmErr := s.Remove(ctx, KeyUserToken); rmErr != nil {
			s.logger.Warn("could not undo partial session write", "error", rmErr)
		}
		return err
	}
	return nil
}

// Clear removes both keys. Both removals are attempted; the first
// failure is returned.
func (s *SessionStore) Clear(ctx context.Context) error {
	errToken := s.Remove(ctx, KeyUserToken)
	errName := s.Remove(ctx, KeyUserName)
	if errToken != nil {
		return errToken
	}
	return errName
}

func (s *SessionStore) fail(op, key string, err error) error {
	s.logger.Warn("session store failure", "op", op, "entry", key, "error", err)
	if s.observer != nil {
		s.observer.ObserveStoreError(op)
	}
	return domain.NewPersistenceError(op, key, err)
}
