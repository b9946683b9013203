// Package repl provides the line loop behind `complitracker-cli shell`.
//
//   - repl.go: the read-dispatch loop and line input shared with commands
//   - history.go: bounded command history persisted to a file
//   - completer.go: prefix suggestions for unknown commands
//   - split.go: shell-like argument splitting with quotes
package repl
