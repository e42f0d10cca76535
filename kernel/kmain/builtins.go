package kmain

import (
	"io"
	"strconv"
	"strings"
	"vertexos/kernel"
	"vertexos/kernel/command"
	"vertexos/kernel/kfmt"
)

var errBlueScreen = &kernel.Error{Module: "bsod", Message: "PSOD (Puk Screen Of Death)"}

// RegisterBuiltins installs the commands and tests that every kernel build
// provides. Command output is written to w.
func RegisterBuiltins(cmds *command.Registry, tests *command.TestRegistry, w io.Writer) {
	cmds.RegisterWithArgs("echo", func(args string) {
		kfmt.Fprintf(w, "%s\n", args)
	})

	cmds.Register("bsod", func() {
		panic(errBlueScreen)
	})

	cmds.RegisterWithArgs("assert_eq", func(args string) {
		fields := strings.Fields(args)
		if len(fields) != 2 {
			kfmt.Fprintf(w, "assert_eq takes 2 arguments but %d arguments were supplied\n", len(fields))
			return
		}

		left, err := strconv.Atoi(fields[0])
		if err != nil {
			panic(err)
		}
		right, err := strconv.Atoi(fields[1])
		if err != nil {
			panic(err)
		}

		AssertEqual(left, right)
	})

	cmds.Register("help", func() {
		kfmt.Fprintf(w, "commands:")
		for _, name := range cmds.Names() {
			kfmt.Fprintf(w, " %s", name)
		}
		kfmt.Fprintf(w, "\ntests:")
		for _, name := range tests.Names() {
			kfmt.Fprintf(w, " %s", name)
		}
		kfmt.Fprintf(w, "\n")
	})

	tests.Register("equal_test", func() {
		AssertEqual(2, 1+1)
	})
}

// AssertEqual panics if left and right differ. Inside the kernel the panic
// ends in the fault screen.
func AssertEqual(left, right int) {
	if left == right {
		return
	}

	panic("assertion left == right failed\nleft: " + strconv.Itoa(left) + "\nright: " + strconv.Itoa(right))
}
