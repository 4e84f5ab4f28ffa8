// Package main provides the entry point for cricket-cli.
//
// The CLI is a client for the cricket match backend:
//
//   - Account registration and sign in (email, phone OTP, ID token)
//   - Match scheduling, listing, deletion, score and toss
//   - Match invitations
//   - Configuration management
//
// Usage:
//
//	cricket-cli [global flags] command [command flags] [arguments]
//	cricket-cli auth login --email ann@example.com
//	cricket-cli -o json match list
//	cricket-cli shell
//
// The session is saved between runs and restored on start.
package main
