package main

import (
	"debug/elf"
	"encoding/binary"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

const redirectDirective = "//go:redirect-from"

// redirect describes a runtime symbol (src) whose calls are patched at boot
// to jump to a kernel symbol (dst).
type redirect struct {
	src string
	dst string

	srcVMA uint64
	dstVMA uint64
}

// modulePath returns the import path declared by the go.mod file in root.
func modulePath(root string) (string, error) {
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", err
	}

	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("%s: missing module directive", filepath.Join(root, "go.mod"))
	}

	return path, nil
}

func collectGoFiles(root string) ([]string, error) {
	var goFiles []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		if filepath.Ext(path) == ".go" && !strings.HasSuffix(path, "_test.go") {
			goFiles = append(goFiles, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return goFiles, nil
}

// findRedirects scans goFiles for functions annotated with a redirect
// directive. Paths in goFiles are expected to be relative to the module root.
func findRedirects(modPath string, goFiles []string) ([]*redirect, error) {
	var redirects []*redirect

	for _, goFile := range goFiles {
		fset := token.NewFileSet()

		f, err := parser.ParseFile(fset, goFile, nil, parser.ParseComments)
		if err != nil {
			return nil, fmt.Errorf("%s: %s", goFile, err)
		}

		pkgPath := modPath + "/" + filepath.ToSlash(filepath.Dir(goFile))

		cmap := ast.NewCommentMap(fset, f, f.Comments)
		cmap.Filter(f)
		for astNode, commentGroups := range cmap {
			fnDecl, ok := astNode.(*ast.FuncDecl)
			if !ok {
				continue
			}

			for _, commentGroup := range commentGroups {
				for _, comment := range commentGroup.List {
					if !strings.HasPrefix(comment.Text, redirectDirective) {
						continue
					}

					fqName := pkgPath + "." + fnDecl.Name.Name

					fields := strings.Fields(comment.Text)
					if len(fields) != 2 || fields[0] != redirectDirective {
						return nil, fmt.Errorf("malformed go:redirect-from syntax for %q", fqName)
					}

					redirects = append(redirects, &redirect{
						src: fields[1],
						dst: fqName,
					})
				}
			}
		}
	}

	return redirects, nil
}

func elfRedirectTableOffset(f *elf.File, imgFile string) (uint64, error) {
	redirectsSection := f.Section(".goredirectstbl")
	if redirectsSection == nil {
		return 0, fmt.Errorf("%s: missing .goredirectstbl section", imgFile)
	}

	return redirectsSection.Offset, nil
}

// writeRedirectTable encodes each redirect as a (src, dst) pair of
// little-endian uint64 addresses.
func writeRedirectTable(w io.Writer, redirects []*redirect) error {
	for _, redirect := range redirects {
		if err := binary.Write(w, binary.LittleEndian, redirect.srcVMA); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, redirect.dstVMA); err != nil {
			return err
		}
	}

	return nil
}

func elfWriteRedirectTable(redirects []*redirect, imgFile string) error {
	img, err := elf.Open(imgFile)
	if err != nil {
		return err
	}
	redirectTableOffset, err := elfRedirectTableOffset(img, imgFile)
	img.Close()
	if err != nil {
		return err
	}

	f, err := os.OpenFile(imgFile, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Seek(int64(redirectTableOffset), io.SeekStart); err != nil {
		return err
	}

	return writeRedirectTable(f, redirects)
}

// resolveSymbols fills in the source and destination addresses of each
// redirect from the supplied symbol table.
func resolveSymbols(redirects []*redirect, symbols []elf.Symbol) error {
	for _, redirect := range redirects {
		for _, symbol := range symbols {
			if symbol.Name == redirect.src {
				redirect.srcVMA = symbol.Value
			}
			if symbol.Name == redirect.dst {
				redirect.dstVMA = symbol.Value
			}
		}

		switch {
		case redirect.srcVMA == 0:
			return fmt.Errorf("could not locate address of %q", redirect.src)
		case redirect.dstVMA == 0:
			return fmt.Errorf("could not locate address of %q", redirect.dst)
		}
	}

	return nil
}

func elfResolveRedirectSymbols(redirects []*redirect, imgFile string) error {
	f, err := elf.Open(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	symbols, err := f.Symbols()
	if err != nil {
		return err
	}

	if err = resolveSymbols(redirects, symbols); err != nil {
		return fmt.Errorf("%s: %s", imgFile, err)
	}

	return nil
}
