// Package connection talks to the CompliTracker REST backend.
//
//   - http.go: HTTPClient with auth headers, request IDs, rate limiting and metrics
//   - response.go: status and body normalization into domain errors
//   - auth.go: AuthClient, the remote side of the session controller
//   - resources.go: compliance, document and risk analysis clients
//   - manager.go: Manager bundling the typed clients over one HTTPClient
//
// Every typed call returns a domain.Result so callers never see raw HTTP.
package connection
