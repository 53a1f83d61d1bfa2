// Package repl provides the interactive REPL mode for synap-cli.
package repl

import "strings"

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"data", "data get", "data set", "data del", "data expire",
			"queue", "queue publish", "queue consume", "queue ack", "queue nack",
			"stream", "stream publish", "stream consume",
			"admin", "admin snapshot", "admin snapshot create", "admin snapshot list",
			"admin wal", "admin wal status", "admin slowlog", "admin slowlog get",
			"config", "config cli", "config server",
			"connect", "disconnect", "use",
			"help", "exit", "quit",
		},
	}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
