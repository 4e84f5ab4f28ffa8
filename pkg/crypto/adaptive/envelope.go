package adaptive

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// KeySize is the key length used for stored values (AES-256 / ChaCha20).
const KeySize = 32

const envelopeVersion byte = 1

var (
	// ErrEnvelopeMalformed indicates sealed data is truncated or has an unknown header.
	ErrEnvelopeMalformed = errors.New("malformed sealed value")
)

var cipherTags = map[CipherType]byte{
	CipherAESGCM:   1,
	CipherChaCha20: 2,
}

// Sealer encrypts values with the preferred cipher and decrypts values
// produced by either cipher.
type Sealer struct {
	key       []byte
	preferred *aead

	mu    sync.Mutex
	aeads map[CipherType]*aead
}

// NewSealer creates a Sealer for a KeySize-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	return newSealer(key, preferredType())
}

func newSealer(key []byte, typ CipherType) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d: must be %d bytes", len(key), KeySize)
	}
	a, err := newAEAD(key, typ)
	if err != nil {
		return nil, err
	}
	return &Sealer{
		key:       append([]byte(nil), key...),
		preferred: a,
		aeads:     map[CipherType]*aead{typ: a},
	}, nil
}

// Type returns the cipher used by Seal.
func (s *Sealer) Type() CipherType {
	return s.preferred.typ
}

// Seal encrypts plaintext bound to additionalData.
// Layout: version(1) | cipher tag(1) | nonce | ciphertext | tag.
func (s *Sealer) Seal(plaintext, additionalData []byte) ([]byte, error) {
	header := []byte{envelopeVersion, cipherTags[s.preferred.typ]}
	return s.preferred.seal(header, plaintext, additionalData)
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < 2 || sealed[0] != envelopeVersion {
		return nil, ErrEnvelopeMalformed
	}
	a, err := s.aeadFor(sealed[1])
	if err != nil {
		return nil, err
	}
	return a.open(sealed[2:], additionalData)
}

func (s *Sealer) aeadFor(tag byte) (*aead, error) {
	var typ CipherType
	for t, b := range cipherTags {
		if b == tag {
			typ = t
		}
	}
	if typ == "" {
		return nil, ErrEnvelopeMalformed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.aeads[typ]; ok {
		return a, nil
	}
	a, err := newAEAD(s.key, typ)
	if err != nil {
		return nil, err
	}
	s.aeads[typ] = a
	return a, nil
}

// KeyFromHex decodes a hex-encoded KeySize-byte key.
func KeyFromHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d: must be %d bytes", len(key), KeySize)
	}
	return key, nil
}

// GenerateKey returns a random KeySize-byte key, hex encoded.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
