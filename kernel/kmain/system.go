package kmain

import (
	"vertexos/kernel"
	"vertexos/kernel/command"
	"vertexos/kernel/input"
	"vertexos/kernel/kfmt"
	"vertexos/kernel/shell"
	"vertexos/kernel/task"
)

const (
	// Banner is printed once the console is ready.
	Banner = "Basic Kernel Implementation\nVertexDOS Version 0.1.0\n"
)

// Config controls the sizing of the objects created by NewSystem.
type Config struct {
	Shell shell.Config

	// ReadyCapacity is the capacity of the executor ready queue.
	ReadyCapacity int
}

// DefaultConfig returns the configuration used by the kernel.
func DefaultConfig() Config {
	return Config{
		Shell:         shell.DefaultConfig(),
		ReadyCapacity: task.DefaultReadyCapacity,
	}
}

// System bundles the objects that are created once at boot and shared by
// reference between the shell, the command handlers and the executor.
type System struct {
	Commands *command.Registry
	Tests    *command.TestRegistry
	Executor *task.Executor
	Editor   *shell.LineEditor

	cons shell.Console
}

// NewSystem creates the command and test registries, installs the built-in
// commands and tests and spawns the keyboard task that reads scancodes from
// src and echoes to cons.
func NewSystem(cfg Config, cons shell.Console, src shell.ByteSource) (*System, *kernel.Error) {
	if cfg.ReadyCapacity <= 0 {
		cfg.ReadyCapacity = task.DefaultReadyCapacity
	}

	sys := &System{
		Commands: command.NewRegistry(),
		Tests:    command.NewTestRegistry(),
		Executor: task.NewExecutor(cfg.ReadyCapacity),
		cons:     cons,
	}

	command.InstallTestCommand(sys.Commands, sys.Tests, cons)
	RegisterBuiltins(sys.Commands, sys.Tests, cons)

	sys.Editor = shell.NewLineEditor(cfg.Shell, cons, sys.Commands)
	if _, err := sys.Executor.Spawn(shell.NewKeyboardTask(src, sys.Editor)); err != nil {
		return nil, err
	}

	return sys, nil
}

// Greet prints the boot banner followed by the first prompt.
func (s *System) Greet() {
	kfmt.Fprintf(s.cons, Banner)
	s.Editor.ShowPrompt()
}

var _ shell.ByteSource = (*input.Stream)(nil)
