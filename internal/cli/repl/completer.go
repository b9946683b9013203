package repl

import (
	"slices"
	"strings"
)

// Completer suggests commands for a prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over commands, e.g. "compliance list".
func NewCompleter(commands ...string) *Completer {
	c := &Completer{commands: slices.Clone(commands)}
	for _, builtin := range []string{"exit", "quit", "history", "help"} {
		if !slices.Contains(c.commands, builtin) {
			c.commands = append(c.commands, builtin)
		}
	}
	slices.Sort(c.commands)
	return c
}

// Complete returns the commands starting with prefix, in sorted order.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.TrimSpace(prefix)
	var out []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}
