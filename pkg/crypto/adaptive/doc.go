// Package adaptive seals values stored at rest.
//
// A Sealer encrypts with AES-256-GCM on hosts where AES runs in
// hardware and with ChaCha20-Poly1305 elsewhere. Every sealed value is
// tagged with the algorithm that produced it, so a store written on one
// host stays readable on a host that prefers the other algorithm.
//
// Usage:
//
//	key, err := adaptive.KeyFromHex(cfg.EncryptionKey)
//	s, err := adaptive.NewSealer(key)
//	sealed, err := s.Seal([]byte(token), []byte("userToken"))
//	token, err := s.Open(sealed, []byte("userToken"))
package adaptive
