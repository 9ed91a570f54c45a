package modules

import (
	"log/slog"
	"mosa/internal/ast"
	"mosa/internal/object"
	"sync"
)

type state int

const (
	unresolved state = iota
	resolving
	resolved
)

// Evaluator runs a program in a scope. The evaluator package provides it;
// taking a func keeps this package free of an import cycle.
type Evaluator func(program *ast.Program, scope *object.Scope) (object.Object, error)

// Module is one parsed source file. It is evaluated at most once, in its own
// root scope, the first time one of its symbols is imported.
type Module struct {
	Name    string // import path as written, e.g. std:math
	Path    string // file the source was read from
	Src     string
	Digest  string
	Program *ast.Program

	// export candidates collected before evaluation
	expFunctions []*ast.FunctionDeclaration
	expLayouts   []*ast.LayoutDeclaration
	expEnums     []*ast.EnumDeclaration

	mu      sync.Mutex
	state   state
	scope   *object.Scope
	value   object.Object
	err     error
	exports map[string]*object.Export
}

func NewModule(name, path, src string, program *ast.Program) *Module {
	m := &Module{
		Name:    name,
		Path:    path,
		Src:     src,
		Digest:  Digest(src),
		Program: program,
		exports: make(map[string]*object.Export),
	}
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDeclaration:
			if s.Exported {
				m.expFunctions = append(m.expFunctions, s)
			}
		case *ast.LayoutDeclaration:
			if s.Exported {
				m.expLayouts = append(m.expLayouts, s)
			}
		case *ast.EnumDeclaration:
			if s.Exported {
				m.expEnums = append(m.expEnums, s)
			}
		}
	}
	return m
}

// ExportNames lists the symbols the module declares with exp.
func (m *Module) ExportNames() []string {
	var names []string
	for _, f := range m.expFunctions {
		names = append(names, f.Name.Value)
	}
	for _, l := range m.expLayouts {
		names = append(names, l.Name.Value)
	}
	for _, e := range m.expEnums {
		names = append(names, e.Name.Value)
	}
	return names
}

func (m *Module) Resolved() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == resolved
}

// Resolve evaluates the module once, in a fresh root scope, and returns the
// memoized value on every later call. Importing a module that is still being
// evaluated is an error.
func (m *Module) Resolve(eval Evaluator, natives *object.NativeRegistry) (object.Object, error) {
	return m.resolve(eval, func() *object.Scope { return object.NewRootScope(m.Name, natives) })
}

// ResolveIn is Resolve with a caller prepared scope. The runner uses it for
// the entry module so a later import of that module is not evaluated twice.
func (m *Module) ResolveIn(eval Evaluator, scope *object.Scope) (object.Object, error) {
	return m.resolve(eval, func() *object.Scope { return scope })
}

func (m *Module) resolve(eval Evaluator, newScope func() *object.Scope) (object.Object, error) {
	m.mu.Lock()
	switch m.state {
	case resolved:
		m.mu.Unlock()
		return m.value, m.err
	case resolving:
		m.mu.Unlock()
		return nil, object.NewError(object.CyclicImport, "module `%s` imports itself while it is being evaluated", m.Name)
	}
	m.state = resolving
	m.scope = newScope()
	m.mu.Unlock()

	slog.Debug("resolving module", slog.String("module", m.Name), slog.String("path", m.Path))

	m.registerExports()
	value, err := eval(m.Program, m.scope)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = resolved
	m.value, m.err = value, err
	if err == nil {
		// evaluation redeclares layouts and may have mixed into them
		for _, decl := range m.expLayouts {
			if ld, ok := m.scope.LocalLayout(decl.Name.Value); ok {
				m.exports[decl.Name.Value] = &object.Export{Layout: ld}
			}
		}
	}
	return value, err
}

func (m *Module) registerExports() {
	for _, decl := range m.expFunctions {
		params := object.ParametersFromNode(decl.Parameters)
		fd := m.scope.DeclareFunction(decl.Name.Value, params, decl.Body, object.ReturnTypeFromNode(decl.ReturnType))
		m.exports[decl.Name.Value] = &object.Export{Function: fd}
	}
	for _, decl := range m.expLayouts {
		ld := object.NewLayoutDeclaration(decl.Name.Value, object.LayoutFieldsFromNode(decl))
		m.scope.DeclareLayout(ld)
		m.exports[decl.Name.Value] = &object.Export{Layout: ld}
	}
	for _, decl := range m.expEnums {
		ed := m.scope.DeclareEnum(decl.Name.Value, decl.Entries)
		m.exports[decl.Name.Value] = &object.Export{Enum: ed}
	}
}

// Export returns an exported symbol. The module must be resolved first.
func (m *Module) Export(symbol string) (*object.Export, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if exp, ok := m.exports[symbol]; ok {
		return exp, nil
	}
	return nil, object.NewError(object.UnknownExport, "module `%s` does not export `%s`", m.Name, symbol)
}
