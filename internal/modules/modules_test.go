package modules

import (
	"mosa/internal/ast"
	"mosa/internal/object"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseModule(t *testing.T, name, src string) *Module {
	t.Helper()
	program, err := Parse(name, src)
	require.NoError(t, err)
	return NewModule(name, name, src, program)
}

func writeFile(t *testing.T, root, rel, src string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
}

func TestResolveIsMemoized(t *testing.T) {
	m := parseModule(t, "counter", `exp fn one() -> num { 1 }`)

	calls := 0
	eval := func(program *ast.Program, scope *object.Scope) (object.Object, error) {
		calls++
		return &object.String{Value: "done"}, nil
	}

	first, err := m.Resolve(eval, object.NewNativeRegistry())
	require.NoError(t, err)
	second, err := m.Resolve(eval, object.NewNativeRegistry())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Same(t, first, second)
	assert.True(t, m.Resolved())
}

func TestResolveMemoizesFailure(t *testing.T) {
	m := parseModule(t, "broken", `1`)

	calls := 0
	eval := func(program *ast.Program, scope *object.Scope) (object.Object, error) {
		calls++
		return nil, object.NewError(object.TypeMismatch, "boom")
	}

	_, err := m.Resolve(eval, nil)
	assert.ErrorIs(t, err, object.ErrTypeMismatch)
	_, err = m.Resolve(eval, nil)
	assert.ErrorIs(t, err, object.ErrTypeMismatch)
	assert.Equal(t, 1, calls)
}

func TestResolveDetectsCycle(t *testing.T) {
	m := parseModule(t, "loop", `1`)

	var inner error
	eval := func(program *ast.Program, scope *object.Scope) (object.Object, error) {
		_, inner = m.Resolve(func(*ast.Program, *object.Scope) (object.Object, error) {
			t.Fatal("a module being resolved must not be evaluated again")
			return nil, nil
		}, nil)
		return object.NULL, nil
	}

	_, err := m.Resolve(eval, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, inner, object.ErrCyclicImport)
}

func TestResolveInUsesGivenScope(t *testing.T) {
	m := parseModule(t, "main", `1`)
	scope := object.NewRootScope("main", nil)

	var seen *object.Scope
	_, err := m.ResolveIn(func(_ *ast.Program, s *object.Scope) (object.Object, error) {
		seen = s
		return object.NULL, nil
	}, scope)
	require.NoError(t, err)
	assert.Same(t, scope, seen)
}

func TestExports(t *testing.T) {
	m := parseModule(t, "shapes", `
exp fn area(w: num, h: num) -> num { w * h }
exp layout Rect { w: num, h: num }
exp enum Corner { TopLeft, BottomRight }
fn hidden() { }
`)
	assert.Equal(t, []string{"area", "Rect", "Corner"}, m.ExportNames())

	_, err := m.Resolve(func(*ast.Program, *object.Scope) (object.Object, error) {
		return object.NULL, nil
	}, nil)
	require.NoError(t, err)

	area, err := m.Export("area")
	require.NoError(t, err)
	require.NotNil(t, area.Function)
	assert.Equal(t, "area", area.Function.Name)
	assert.Len(t, area.Function.Parameters, 2)

	rect, err := m.Export("Rect")
	require.NoError(t, err)
	require.NotNil(t, rect.Layout)
	assert.Equal(t, "Rect", rect.Layout.Name)

	corner, err := m.Export("Corner")
	require.NoError(t, err)
	require.NotNil(t, corner.Enum)
	assert.True(t, corner.Enum.Has("TopLeft"))

	_, err = m.Export("hidden")
	assert.ErrorIs(t, err, object.ErrUnknownExport)
}

func TestStorageKeepsFirstModule(t *testing.T) {
	s := NewStorage()
	first := parseModule(t, "util", `1`)
	second := parseModule(t, "util", `2`)

	assert.True(t, s.Push(first))
	assert.False(t, s.Push(second))

	got, ok := s.Get("util")
	require.True(t, ok)
	assert.Same(t, first, got)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestDigest(t *testing.T) {
	a := Digest("let x = 1")
	assert.Len(t, a, 64)
	assert.Equal(t, a, Digest("let x = 1"))
	assert.NotEqual(t, a, Digest("let x = 2"))
}

func TestModuleFile(t *testing.T) {
	assert.Equal(t, filepath.Join("root", "std", "math.mosa"), ModuleFile("root", "", "std:math"))
	assert.Equal(t, filepath.Join("root", "std", "helpers.mosa"), ModuleFile("root", "std", "helpers"))
	assert.Equal(t, filepath.Join("root", "main.mosa"), ModuleFile("root", "", "main"))
}

func TestImports(t *testing.T) {
	program, err := Parse("main", `
use std:math ~> sq
use std:math ~> cube
use util ~> trim
block { use nested ~> x }
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"std:math", "util", "nested"}, Imports(program))
}

func TestLoaderFollowsImports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.mosa", "use std:math ~> sq\nsq(3)")
	writeFile(t, root, "std/math.mosa", "use helpers ~> mul\nexp fn sq(n: num) -> num { mul(n, n) }")
	writeFile(t, root, "std/helpers.mosa", "exp fn mul(a: num, b: num) -> num { a * b }")

	storage := NewStorage()
	loader := NewLoader("", storage)

	var dumped []string
	loader.DumpAST = func(m *Module) { dumped = append(dumped, m.Name) }

	entry, err := loader.LoadEntry(filepath.Join(root, "main.mosa"))
	require.NoError(t, err)

	assert.Equal(t, "main", entry.Name)
	assert.Equal(t, root, loader.Root)
	assert.Equal(t, []string{"helpers", "main", "std:math"}, storage.Names())
	assert.Equal(t, []string{"main", "std:math", "helpers"}, dumped)

	helpers, _ := storage.Get("helpers")
	assert.Equal(t, filepath.Join(root, "std", "helpers.mosa"), helpers.Path)
}

func TestLoaderNestedRelativeDirDoesNotAccumulate(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.mosa", "use a:b ~> f")
	writeFile(t, root, "a/b.mosa", "use c:d ~> g\nexp fn f() { }")
	writeFile(t, root, "a/c/d.mosa", "use e ~> h\nexp fn g() { }")
	writeFile(t, root, "c/e.mosa", "exp fn h() { }")
	writeFile(t, root, "a/c/e.mosa", "exp fn wrong() { }")

	loader := NewLoader("", nil)
	_, err := loader.LoadEntry(filepath.Join(root, "main.mosa"))
	require.NoError(t, err)

	d, _ := loader.Storage.Get("c:d")
	assert.Equal(t, filepath.Join(root, "a", "c", "d.mosa"), d.Path)
	e, _ := loader.Storage.Get("e")
	assert.Equal(t, filepath.Join(root, "c", "e.mosa"), e.Path)
}

func TestLoaderKeepsExplicitRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "lib/greet.mosa", `exp fn hi() -> str { "hi" }`)
	writeFile(t, root, "app/main.mosa", `use lib:greet ~> hi`)

	loader := NewLoader(root, nil)
	_, err := loader.LoadEntry(filepath.Join(root, "app", "main.mosa"))
	require.NoError(t, err)
	assert.Equal(t, root, loader.Root)

	_, ok := loader.Storage.Get("lib:greet")
	assert.True(t, ok)
}

func TestLoaderMissingImport(t *testing.T) {
	loader := NewLoader(t.TempDir(), nil)
	_, err := loader.LoadSource("main", `use gone ~> x`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imported by main")
	assert.Contains(t, err.Error(), "cannot load module gone")
}

func TestLoaderReportsParseErrors(t *testing.T) {
	loader := NewLoader(t.TempDir(), nil)
	_, err := loader.LoadSource("bad", strings.Repeat("let = 1\n", 8))

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "bad", parseErr.Path)
	assert.Greater(t, len(parseErr.Errors), MaxErrorsToShow)
	assert.Contains(t, err.Error(), "failed to parse bad")
	assert.Contains(t, err.Error(), "more!")
}
