package main

import "vertexos/kernel/kmain"

// main makes a dummy call to the actual kernel main entrypoint function. It
// is intentionally defined to prevent the Go compiler from optimizing away the
// real kernel code as it is not aware of the presence of the rt0 code.
//
// main is not expected to return. If it does, the rt0 code will halt the CPU.
func main() {
	kmain.Kmain()
}
