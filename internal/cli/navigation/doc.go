// Package navigation holds the shell's current route and acts on the
// session controller's navigation intents.
//
// The controller never moves the user itself. A Navigator subscribes to
// its events, runs the route guard on every request and state change, and
// remembers the route a redirected user wanted so a later login can send
// them back there.
package navigation
