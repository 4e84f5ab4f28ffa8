// Package storage provides durable key-value storage for the client.
//
// The only durable state the client keeps is the session: the opaque
// token under "userToken" and the display name under "userName".
// SessionStore owns that layout on top of a KVEngine:
//
//   - badger: embedded store under the data directory (default)
//   - redis: shared store, for hosts that keep no local state
//   - memory: process-local, for tests and ephemeral runs
//
// Values may be sealed at rest with pkg/crypto/adaptive.
package storage
