// Package domain defines the core models of the cricket match client.
//
// Domain models are plain values without IO dependencies. This package contains:
//
//   - Session: the in-memory identity (token, display name, loading flag)
//   - Match, Invite: records returned by the backend
//   - AuthResult, OTPChallenge: authentication responses
//   - Endpoint: the descriptor of one backend call
//   - Errors: the client error taxonomy (network, http, validation, persistence)
package domain
