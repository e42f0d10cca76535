// Command redirects patches the kernel image so that selected Go runtime
// functions jump to their kernel replacements.
//
// Usage (from the module root):
//
//	redirects count
//	redirects list
//	redirects populate-table path/to/kernel.bin
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

func exit(err error) {
	fmt.Fprintf(os.Stderr, "[redirects] error: %s\n", err.Error())
	os.Exit(1)
}

func main() {
	flag.Parse()
	if matches, _ := filepath.Glob("kernel/"); len(matches) != 1 {
		exit(errors.New("this tool must be run from the module root folder"))
	}

	if len(flag.Args()) == 0 {
		exit(errors.New("missing command"))
	}

	cmd := flag.Arg(0)
	var imgFile string
	switch cmd {
	case "count", "list":
	case "populate-table":
		if len(flag.Args()) != 2 {
			exit(errors.New("populate-table requires the path to the kernel image as an argument"))
		}
		imgFile = flag.Arg(1)
	default:
		exit(fmt.Errorf("unknown command %q", cmd))
	}

	modPath, err := modulePath(".")
	if err != nil {
		exit(err)
	}

	goFiles, err := collectGoFiles("kernel")
	if err != nil {
		exit(err)
	}

	redirects, err := findRedirects(modPath, goFiles)
	if err != nil {
		exit(err)
	}

	switch cmd {
	case "count":
		fmt.Printf("%d", len(redirects))
		return
	case "list":
		for _, r := range redirects {
			fmt.Printf("%s -> %s\n", r.src, r.dst)
		}
		return
	}

	if err = elfResolveRedirectSymbols(redirects, imgFile); err != nil {
		exit(err)
	}

	if err = elfWriteRedirectTable(redirects, imgFile); err != nil {
		exit(err)
	}
}
