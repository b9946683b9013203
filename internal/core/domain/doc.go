// Package domain defines the core domain models for the CompliTracker client.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - State: derived authentication session state (unknown, anonymous, authenticated)
//   - User: the current user snapshot returned by the backend
//   - Claims: the decoded subset of a session token
//   - Route and Intent: shell navigation targets and controller navigation requests
//   - Compliance, Document, Risk: read models for the backend's resources
//   - Errors: domain-specific error definitions
package domain
