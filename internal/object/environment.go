package object

import (
	"log/slog"
	"mosa/internal/ast"
	"sort"
	"sync"
	"sync/atomic"
)

var nextID atomic.Uint64

type Variable struct {
	Immutable    bool
	DeclaredType DataType
	Value        Object
}

// Scope is one lexical environment. Lookups walk Parent; the import cache is
// consulted only by the outermost scope of a chain.
type Scope struct {
	ID     uint64
	Parent *Scope
	// Module names the source file the scope belongs to, used to locate errors.
	Module string

	variables     map[string]*Variable
	functions     map[string]*FunctionData
	nativeAliases map[string]string
	natives       *NativeRegistry
	bindings      map[string]Object
	enums         map[string]*EnumDeclaration
	layouts       map[string]*LayoutDeclaration
	imports       map[string]*Export

	mu sync.RWMutex
}

func newScope() *Scope {
	return &Scope{
		ID:            nextID.Add(1),
		variables:     make(map[string]*Variable),
		functions:     make(map[string]*FunctionData),
		nativeAliases: make(map[string]string),
		bindings:      make(map[string]Object),
		enums:         make(map[string]*EnumDeclaration),
		layouts:       make(map[string]*LayoutDeclaration),
		imports:       make(map[string]*Export),
	}
}

// NewRootScope creates a scope without parent. Module roots and the program
// root share one native registry.
func NewRootScope(module string, natives *NativeRegistry) *Scope {
	if natives == nil {
		natives = NewNativeRegistry()
	}
	s := newScope()
	s.Module = module
	s.natives = natives
	slog.Debug("new root scope", slog.Any("id", s.ID), slog.String("module", module))
	return s
}

func NewEnclosedScope(parent *Scope) *Scope {
	s := newScope()
	s.Parent = parent
	s.Module = parent.Module
	s.natives = parent.natives
	return s
}

func (s *Scope) Natives() *NativeRegistry { return s.natives }

// DeclareVariable binds name in this scope, shadowing any outer variable.
// An InferType declaration adopts the type of value.
func (s *Scope) DeclareVariable(name string, declared DataType, value Object, immutable bool) error {
	actual := TypeOf(value)
	if !declared.IsInfer() && !declared.Matches(actual) {
		return NewError(TypeMismatch,
			"cannot declare variable `%s` of type `%s` with a value of type `%s`", name, declared, actual)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables[name] = &Variable{
		Immutable:    immutable,
		DeclaredType: declared.Or(actual),
		Value:        value,
	}
	return nil
}

func (s *Scope) ReadVariable(name string) (Object, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		sc.mu.RLock()
		v, ok := sc.variables[name]
		var value Object
		if ok {
			value = v.Value
		}
		sc.mu.RUnlock()
		if ok {
			return value, true
		}
	}
	return nil, false
}

// lookupVariable returns the slot for name and the scope that owns it.
func (s *Scope) lookupVariable(name string) (*Scope, *Variable, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		sc.mu.RLock()
		v, ok := sc.variables[name]
		sc.mu.RUnlock()
		if ok {
			return sc, v, true
		}
	}
	return nil, nil, false
}

// AssignVariable updates the slot in the nearest scope that owns name.
func (s *Scope) AssignVariable(name string, value Object) error {
	owner, v, ok := s.lookupVariable(name)
	if !ok {
		return NewError(UndeclaredVariable, "cannot assign `%s`, it is not declared", name)
	}
	if v.Immutable {
		return NewError(ImmutableAssignment, "cannot reassign `%s`, it is declared immutable", name)
	}
	actual := TypeOf(value)
	if !v.DeclaredType.Matches(actual) {
		return NewError(TypeMismatch,
			"cannot assign a value of type `%s` to variable `%s` of type `%s`", actual, name, v.DeclaredType)
	}

	owner.mu.Lock()
	v.Value = value
	owner.mu.Unlock()
	return nil
}

// VisibleVariables lists every variable name reachable from s, sorted.
func (s *Scope) VisibleVariables() []string {
	seen := map[string]bool{}
	for sc := s; sc != nil; sc = sc.Parent {
		sc.mu.RLock()
		for name := range sc.variables {
			seen[name] = true
		}
		sc.mu.RUnlock()
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewFunction builds a function value closing over s without registering it.
func (s *Scope) NewFunction(name string, params []Parameter, body *ast.BlockStatement, ret DataType) *FunctionData {
	return &FunctionData{
		Name:       name,
		Parameters: params,
		Body:       body,
		ReturnType: ret,
		Scope:      s,
		Accesses:   s.VisibleVariables(),
	}
}

func (s *Scope) DeclareFunction(name string, params []Parameter, body *ast.BlockStatement, ret DataType) *FunctionData {
	fd := s.NewFunction(name, params, body, ret)
	s.mu.Lock()
	s.functions[name] = fd
	s.mu.Unlock()
	return fd
}

func (s *Scope) GetFunction(name string) (*FunctionData, bool) {
	s.mu.RLock()
	fd, ok := s.functions[name]
	s.mu.RUnlock()
	if ok {
		return fd, true
	}
	if s.Parent != nil {
		return s.Parent.GetFunction(name)
	}
	if exp, ok := s.GetImport(name); ok && exp.Function != nil {
		return exp.Function, true
	}
	return nil, false
}

// DefineNativeFunction aliases a source identifier to a registered native path.
func (s *Scope) DefineNativeFunction(ident, path string) {
	s.mu.Lock()
	s.nativeAliases[ident] = path
	s.mu.Unlock()
}

// AddNativeFunction registers a host implementation for every scope sharing
// this scope's registry.
func (s *Scope) AddNativeFunction(path string, fn NativeFunction) {
	s.natives.Add(path, fn)
}

func (s *Scope) nativePath(ident string) (string, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		sc.mu.RLock()
		path, ok := sc.nativeAliases[ident]
		sc.mu.RUnlock()
		if ok {
			return path, true
		}
	}
	return "", false
}

func (s *Scope) GetNativeFunctionFromIdent(ident string) (NativeFunction, bool) {
	path, ok := s.nativePath(ident)
	if !ok {
		return nil, false
	}
	return s.natives.Get(path)
}

func (s *Scope) DeclareEnum(name string, entries []string) *EnumDeclaration {
	ed := &EnumDeclaration{Name: name, Entries: entries}
	s.mu.Lock()
	s.enums[name] = ed
	s.mu.Unlock()
	return ed
}

func (s *Scope) GetEnum(name string) (*EnumDeclaration, bool) {
	s.mu.RLock()
	ed, ok := s.enums[name]
	s.mu.RUnlock()
	if ok {
		return ed, true
	}
	if s.Parent != nil {
		return s.Parent.GetEnum(name)
	}
	if exp, ok := s.GetImport(name); ok && exp.Enum != nil {
		return exp.Enum, true
	}
	return nil, false
}

func (s *Scope) DeclareLayout(decl *LayoutDeclaration) {
	decl.Scope = s
	s.mu.Lock()
	s.layouts[decl.Name] = decl
	s.mu.Unlock()
}

func (s *Scope) GetLayout(name string) (*LayoutDeclaration, bool) {
	s.mu.RLock()
	ld, ok := s.layouts[name]
	s.mu.RUnlock()
	if ok {
		return ld, true
	}
	if s.Parent != nil {
		return s.Parent.GetLayout(name)
	}
	if exp, ok := s.GetImport(name); ok && exp.Layout != nil {
		return exp.Layout, true
	}
	return nil, false
}

// LocalLayout looks at this scope only.
func (s *Scope) LocalLayout(name string) (*LayoutDeclaration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ld, ok := s.layouts[name]
	return ld, ok
}

// MixIntoLayout attaches fns to a layout declared in this exact scope. The
// functions close over s; tied ones receive `self` as first parameter.
func (s *Scope) MixIntoLayout(layoutID string, fns []*FunctionData) error {
	ld, ok := s.LocalLayout(layoutID)
	if !ok {
		return NewError(UndeclaredLayout, "cannot mix into `%s`, it is not declared in this scope", layoutID)
	}

	accesses := s.VisibleVariables()
	for _, fd := range fns {
		fd.Scope = s
		fd.Accesses = accesses
		if fd.Tied {
			self := Parameter{Name: "self", Type: LayoutOrEnumType(layoutID)}
			fd.Parameters = append([]Parameter{self}, fd.Parameters...)
		}
		ld.methods.set(fd)
	}
	return nil
}

func (s *Scope) AssignBinding(name string, value Object) {
	s.mu.Lock()
	s.bindings[name] = value
	s.mu.Unlock()
}

func (s *Scope) GetBinding(name string) (Object, bool) {
	for sc := s; sc != nil; sc = sc.Parent {
		sc.mu.RLock()
		v, ok := sc.bindings[name]
		sc.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

func (s *Scope) Import(symbol string, export *Export) {
	s.mu.Lock()
	s.imports[symbol] = export
	s.mu.Unlock()
}

func (s *Scope) GetImport(symbol string) (*Export, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.imports[symbol]
	return exp, ok
}
