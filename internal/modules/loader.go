package modules

import (
	"bytes"
	"fmt"
	"log/slog"
	"mosa/internal/ast"
	"mosa/internal/lexer"
	"mosa/internal/parser"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	MaxErrorsToShow = 5
	SourceExt       = ".mosa"
)

// ParseError carries every parser message of one file.
type ParseError struct {
	Path   string
	Errors []string
}

func (e *ParseError) Error() string {
	var out bytes.Buffer
	out.WriteString(fmt.Sprintf("failed to parse %s\n", e.Path))
	displayCount := len(e.Errors)
	if displayCount > MaxErrorsToShow {
		displayCount = MaxErrorsToShow
	}
	for _, msg := range e.Errors[:displayCount] {
		out.WriteString(fmt.Sprintf("\t%s\n", msg))
	}
	if displayCount < len(e.Errors) {
		out.WriteString(fmt.Sprintf("\n...and %d more!\n", len(e.Errors)-displayCount))
	}
	return out.String()
}

// Loader reads module sources below Root and stores them, following every
// `use` it finds.
type Loader struct {
	Root    string
	Storage *Storage
	// DumpAST, when set, receives each parsed module before its imports load.
	DumpAST func(m *Module)
}

func NewLoader(root string, storage *Storage) *Loader {
	if storage == nil {
		storage = NewStorage()
	}
	return &Loader{Root: root, Storage: storage}
}

// ModuleFile maps an import path like `std:math` to its file below root.
func ModuleFile(root, relativeDir, name string) string {
	return filepath.Join(root, relativeDir, strings.ReplaceAll(name, ":", string(filepath.Separator))+SourceExt)
}

// LoadEntry loads the program's entry file. Unless Root is already set, the
// entry's directory becomes the root for all imports. The file stem is the
// module name.
func (l *Loader) LoadEntry(file string) (*Module, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve entry file %s", file)
	}
	if l.Root == "" {
		l.Root = filepath.Dir(abs)
	}
	name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))

	src, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read entry file %s", file)
	}
	return l.add(name, abs, "", string(src))
}

// Load reads module name relative to relativeDir. The directory part of name
// alone becomes the relative dir for that module's own imports; it does not
// accumulate over the import chain. Already stored modules are returned as
// they are.
func (l *Loader) Load(name, relativeDir string) (*Module, error) {
	if m, ok := l.Storage.Get(name); ok {
		return m, nil
	}
	path := ModuleFile(l.Root, relativeDir, name)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load module %s", name)
	}
	return l.add(name, path, importDir(name), string(src))
}

// LoadSource registers src under name without touching the filesystem. Imports
// inside src still load from Root.
func (l *Loader) LoadSource(name, src string) (*Module, error) {
	return l.add(name, name, "", src)
}

func (l *Loader) add(name, path, relativeDir, src string) (*Module, error) {
	program, err := Parse(path, src)
	if err != nil {
		return nil, err
	}

	m := NewModule(name, path, src, program)
	if !l.Storage.Push(m) {
		existing, _ := l.Storage.Get(name)
		return existing, nil
	}
	slog.Debug("loaded module",
		slog.String("module", name),
		slog.String("path", path),
		slog.String("digest", m.Digest),
		slog.Any("exports", m.ExportNames()))

	if l.DumpAST != nil {
		l.DumpAST(m)
	}

	for _, use := range Imports(program) {
		if _, err := l.Load(use, relativeDir); err != nil {
			return nil, errors.Wrapf(err, "imported by %s", name)
		}
	}
	return m, nil
}

// importDir is the directory part of an import path.
func importDir(name string) string {
	i := strings.LastIndex(name, ":")
	if i < 0 {
		return ""
	}
	return strings.ReplaceAll(name[:i], ":", string(filepath.Separator))
}

// Imports lists the module paths a program uses, in source order, without
// duplicates.
func Imports(program *ast.Program) []string {
	var paths []string
	seen := map[string]bool{}
	ast.Walk(program, func(n ast.Node) bool {
		if use, ok := n.(*ast.UseModule); ok && !seen[use.Path] {
			seen[use.Path] = true
			paths = append(paths, use.Path)
		}
		return true
	})
	return paths
}

// Parse lexes and parses src. All parser messages are returned together.
func Parse(path, src string) (*ast.Program, error) {
	l := lexer.New(src)
	p := parser.New(l, src)
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		slog.Warn("failed to parse source",
			slog.String("path", path),
			slog.Int("errors", len(errs)))
		return nil, &ParseError{Path: path, Errors: errs}
	}
	return program, nil
}
