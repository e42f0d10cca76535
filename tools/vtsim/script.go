package main

import (
	"fmt"
	"io"
	"strings"
	"vertexos/kernel/command"
	"vertexos/kernel/kfmt"

	lua "github.com/yuin/gopher-lua"
)

// scriptHost runs a Lua script that adds commands and tests to the
// registries. Handlers run on the executor goroutine, the same one that loads
// the script, since an LState is not safe for concurrent use.
//
// The script sees the following globals:
//
//	register(name, fn)        niladic command
//	register_args(name, fn)   unary command, fn receives the argument string
//	register_test(name, fn)   test run by "test <name>"
//	print(...)                writes to the simulated console
type scriptHost struct {
	L     *lua.LState
	out   io.Writer
	cmds  *command.Registry
	tests *command.TestRegistry
}

func newScriptHost(out io.Writer, cmds *command.Registry, tests *command.TestRegistry) *scriptHost {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// No io, os or package: scripts only talk to the simulated machine.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	h := &scriptHost{L: L, out: out, cmds: cmds, tests: tests}
	L.SetGlobal("register", L.NewFunction(h.register))
	L.SetGlobal("register_args", L.NewFunction(h.registerArgs))
	L.SetGlobal("register_test", L.NewFunction(h.registerTest))
	L.SetGlobal("print", L.NewFunction(h.print))

	return h
}

// RunFile executes the script at path.
func (h *scriptHost) RunFile(path string) error {
	return h.L.DoFile(path)
}

// RunString executes src.
func (h *scriptHost) RunString(src string) error {
	return h.L.DoString(src)
}

// Close releases the Lua state.
func (h *scriptHost) Close() {
	h.L.Close()
}

func (h *scriptHost) register(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	h.cmds.Register(name, func() { h.call(fn) })
	return 0
}

func (h *scriptHost) registerArgs(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	h.cmds.RegisterWithArgs(name, func(args string) { h.call(fn, lua.LString(args)) })
	return 0
}

func (h *scriptHost) registerTest(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	h.tests.Register(name, func() { h.call(fn) })
	return 0
}

func (h *scriptHost) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	kfmt.Fprintf(h.out, "%s\n", strings.Join(parts, "\t"))
	return 0
}

// call invokes fn. A Lua error becomes a Go panic so that a failing script
// handler behaves like a failing kernel handler.
func (h *scriptHost) call(fn *lua.LFunction, args ...lua.LValue) {
	if err := h.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		panic(fmt.Errorf("lua: %w", err))
	}
}
