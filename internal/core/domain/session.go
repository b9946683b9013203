// Package domain defines the core domain models for the CompliTracker client.
package domain

import "fmt"

// Status is the coarse authentication status of the client.
type Status int

const (
	// StatusUnknown means the stored token has not been checked yet.
	StatusUnknown Status = iota
	// StatusAnonymous means there is no usable session.
	StatusAnonymous
	// StatusAuthenticated means a non-expired token was confirmed by the backend.
	StatusAuthenticated
)

// String returns the lowercase status name.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is the derived session state. It is never persisted.
//
// Invariant: Status == StatusAuthenticated implies User != nil and Token != "".
// Any other status carries neither.
type State struct {
	Status Status
	User   *User
	Token  string
}

// UnknownState returns the state held before the stored token is checked.
func UnknownState() State {
	return State{Status: StatusUnknown}
}

// AnonymousState returns the state with no session.
func AnonymousState() State {
	return State{Status: StatusAnonymous}
}

// AuthenticatedState returns the state for a confirmed session.
func AuthenticatedState(user *User, token string) State {
	return State{Status: StatusAuthenticated, User: user, Token: token}
}

// IsAuthenticated reports whether the state holds a confirmed session.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil && s.Token != ""
}

// Equal reports whether two states describe the same session.
// Users are compared by identity fields only.
func (s State) Equal(other State) bool {
	if s.Status != other.Status || s.Token != other.Token {
		return false
	}
	if s.User == nil || other.User == nil {
		return s.User == other.User
	}
	return s.User.ID == other.User.ID && s.User.Email == other.User.Email
}
