package command

import (
	"io"
	"sort"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/sync"
)

// TestCommandName is the command that runs a registered test.
const TestCommandName = "test"

// TestRegistry maps test names to test functions that run inside the live
// kernel. A test signals failure by panicking; the failure is fatal for the
// whole kernel and is never isolated to the test.
type TestRegistry struct {
	lock  sync.Spinlock
	tests map[string]Func
}

// NewTestRegistry creates an empty test registry.
func NewTestRegistry() *TestRegistry {
	return &TestRegistry{tests: make(map[string]Func)}
}

// Register associates name with a test function, replacing any test that was
// previously registered under the same name.
func (r *TestRegistry) Register(name string, fn Func) {
	r.lock.Acquire()
	r.tests[name] = fn
	r.lock.Release()
}

// Names returns the registered test names in lexicographic order.
func (r *TestRegistry) Names() []string {
	r.lock.Acquire()
	names := make([]string, 0, len(r.tests))
	for name := range r.tests {
		names = append(names, name)
	}
	r.lock.Release()

	sort.Strings(names)
	return names
}

// Run executes the test registered under name and reports the outcome to w.
func (r *TestRegistry) Run(w io.Writer, name string) {
	r.lock.Acquire()
	fn, ok := r.tests[name]
	r.lock.Release()

	if !ok {
		kfmt.Fprintf(w, "Test %s not found\n", name)
		return
	}

	fn()
	kfmt.Fprintf(w, "Test %s [ok]\n", name)
}

// InstallTestCommand registers the "test <name>" command in cmds. Test
// results are written to w.
func InstallTestCommand(cmds *Registry, tests *TestRegistry, w io.Writer) {
	cmds.RegisterWithArgs(TestCommandName, func(args string) {
		tests.Run(w, args)
	})
}
