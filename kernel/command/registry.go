// Package command maps command and test names to handlers and routes input
// lines to them.
package command

import (
	"io"
	"sort"
	"strings"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/sync"
)

// Func is a command handler that accepts no arguments.
type Func func()

// FuncWithArgs is a command handler that requires an argument string.
type FuncWithArgs func(args string)

// entry holds exactly one of its two handler fields.
type entry struct {
	fn         Func
	fnWithArgs FuncWithArgs
}

// Registry maps command names to handlers. Registering a name that already
// exists replaces its handler; names cannot be removed. The registry lock is
// only held while the map is accessed and never while a handler runs, so a
// handler may register or dispatch further commands.
type Registry struct {
	lock    sync.Spinlock
	entries map[string]entry
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register associates name with a handler that accepts no arguments.
func (r *Registry) Register(name string, fn Func) {
	r.lock.Acquire()
	r.entries[name] = entry{fn: fn}
	r.lock.Release()
}

// RegisterWithArgs associates name with a handler that requires arguments.
func (r *Registry) RegisterWithArgs(name string, fn FuncWithArgs) {
	r.lock.Acquire()
	r.entries[name] = entry{fnWithArgs: fn}
	r.lock.Release()
}

// Names returns the registered command names in lexicographic order.
func (r *Registry) Names() []string {
	r.lock.Acquire()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.lock.Release()

	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (entry, bool) {
	r.lock.Acquire()
	e, ok := r.entries[name]
	r.lock.Release()
	return e, ok
}

// Dispatch parses line and invokes the matching handler exactly once. The
// line is trimmed and split at the first space into a command name and an
// argument string. Unknown names and arity mismatches are reported to w and
// no handler is invoked. Blank lines are ignored.
//
// Panics raised by handlers are not recovered; they reach the kernel panic
// handler like any other failure.
func (r *Registry) Dispatch(w io.Writer, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	name, args, hasArgs := strings.Cut(line, " ")

	e, ok := r.lookup(name)
	switch {
	case !ok:
		kfmt.Fprintf(w, "%s not found\n", name)
	case e.fn != nil && hasArgs:
		kfmt.Fprintf(w, "%s does not accept arguments\n", name)
	case e.fnWithArgs != nil && !hasArgs:
		kfmt.Fprintf(w, "%s requires arguments\n", name)
	case e.fn != nil:
		e.fn()
	default:
		e.fnWithArgs(args)
	}
}
