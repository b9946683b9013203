// Package service holds the client's session logic.
//
//   - TokenValidator decodes the stored session token and checks its expiry
//     without contacting the backend.
//   - Controller owns the session state machine (init, login, register,
//     logout, refresh) and publishes state changes and navigation intents
//     to subscribers.
//   - Guard decides whether a protected route may render for a given state.
//
// Storage and the remote API are injected through the TokenStore and
// AuthAPI interfaces, so the state machine runs unchanged against fakes in
// tests.
package service
