// Package service provides the client-side services of the cricket app.
//
// Resource call modules map one backend resource to calls on a Caller:
//
//   - AuthAPI: register, email login, phone OTP, ID token exchange
//   - MatchAPI: create, list, delete, live score, toss
//   - InviteAPI: send, list, respond
//
// They add no validation, caching or retries; errors from the Caller
// are returned unchanged.
//
// SessionManager is the single writer of the session. It restores the
// session from durable storage exactly once, and keeps the durable keys,
// the in-memory session and the client's default Authorization header in
// step on sign in and sign out. Consumers read it through SessionView.
package service
