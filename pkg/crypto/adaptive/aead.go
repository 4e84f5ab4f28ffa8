package adaptive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the algorithm that sealed a value.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// preferredType picks AES-GCM where crypto/aes runs on hardware
// instructions and ChaCha20-Poly1305 elsewhere.
func preferredType() CipherType {
	switch runtime.GOARCH {
	case "amd64", "arm64", "s390x", "ppc64le":
		return CipherAESGCM
	default:
		return CipherChaCha20
	}
}

// aead binds a cipher.AEAD to the type recorded in the envelope header.
type aead struct {
	typ  CipherType
	impl cipher.AEAD
}

func newAEAD(key []byte, typ CipherType) (*aead, error) {
	switch typ {
	case CipherAESGCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, err
		}
		gcm, err := cipher.NewGCM(block)
		if err != nil {
			return nil, err
		}
		return &aead{typ: typ, impl: gcm}, nil
	case CipherChaCha20:
		c, err := chacha20poly1305.New(key)
		if err != nil {
			return nil, err
		}
		return &aead{typ: typ, impl: c}, nil
	default:
		return nil, fmt.Errorf("unknown cipher type %q", typ)
	}
}

// seal appends nonce | ciphertext | tag to dst.
func (a *aead) seal(dst, plaintext, additionalData []byte) ([]byte, error) {
	nonce := make([]byte, a.impl.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	dst = append(dst, nonce...)
	return a.impl.Seal(dst, nonce, plaintext, additionalData), nil
}

func (a *aead) open(body, additionalData []byte) ([]byte, error) {
	n := a.impl.NonceSize()
	if len(body) < n+a.impl.Overhead() {
		return nil, ErrEnvelopeMalformed
	}
	return a.impl.Open(nil, body[:n], body[n:], additionalData)
}
