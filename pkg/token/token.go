package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// FingerprintPrefix marks a fingerprint's hash algorithm.
const FingerprintPrefix = "sha256:"

// fingerprintLen is the number of hex digits kept.
const fingerprintLen = 16

// Hash returns the hex-encoded SHA-256 of token.
func Hash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Fingerprint returns a short label for token, or "" for an empty token.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	return FingerprintPrefix + Hash(token)[:fingerprintLen]
}

// Equal reports whether a and b are the same secret in constant time.
// Both sides are hashed first so the comparison does not leak length.
func Equal(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
