// Package command provides the complitracker-cli command tree.
//
// It uses urfave/cli/v2 for command parsing and supports both
// single-command mode and the interactive shell. The shell dispatches each
// line through a fresh App that shares one Runtime, so a session opened by
// `login` stays live for the following lines.
package command
