// Package token holds helpers for handling bearer tokens without exposing
// them: a short fingerprint for logs and diagnostics, constant-time
// comparison, and random key material.
package token
