// Package testserver runs an in-process fake of the cricket backend for
// tests.
//
// It serves every endpoint in domain.Endpoints, records each request with
// its Authorization header, and issues HS256 JWT session tokens. Matches
// and invites live in memory. Fail injects an error response for one
// endpoint.
package testserver
