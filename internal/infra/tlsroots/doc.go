// Package tlsroots builds the TLS client configuration used to reach the
// CompliTracker API: system roots, an optional private CA file or
// directory, and an optional client certificate for mutual TLS.
package tlsroots
