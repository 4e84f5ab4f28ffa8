// Package token fingerprints and compares bearer tokens.
//
// A fingerprint is a short, stable label derived from the SHA-256 of a
// token. It lets logs and status output tell sessions apart without
// exposing the token itself.
package token
