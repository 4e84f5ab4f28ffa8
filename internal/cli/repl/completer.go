package repl

import (
	"sort"
	"strings"
)

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "quit", "history"}

// Completer knows the shell's command names.
type Completer struct {
	commands []string
	top      map[string]struct{}
}

// NewCompleter creates a Completer for the given command paths, such as
// "match list". Built-ins are always included.
func NewCompleter(commands []string) *Completer {
	all := append(append([]string(nil), commands...), builtins...)
	sort.Strings(all)
	top := make(map[string]struct{}, len(all))
	for _, c := range all {
		name, _, _ := strings.Cut(c, " ")
		top[name] = struct{}{}
	}
	return &Completer{commands: all, top: top}
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

// Known reports whether name is a top-level command.
func (c *Completer) Known(name string) bool {
	if len(c.top) == len(builtins) {
		// No command list was given; let the executor decide.
		return true
	}
	_, ok := c.top[name]
	return ok
}
