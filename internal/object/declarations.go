package object

import (
	"bytes"
	"mosa/internal/ast"
	"strings"
	"sync"
)

type Parameter struct {
	Name string
	Type DataType
}

// FunctionData is a declared function or lambda. Scope is the scope the
// function was declared in; calls evaluate the body in a child of it.
type FunctionData struct {
	Name       string
	Parameters []Parameter
	Body       *ast.BlockStatement
	ReturnType DataType
	Scope      *Scope
	Tied       bool
	// Accesses lists the variable names visible at declaration, for inspection only.
	Accesses []string
}

func (fd *FunctionData) Signature() string {
	var out bytes.Buffer
	params := []string{}
	for _, p := range fd.Parameters {
		params = append(params, p.Name+": "+p.Type.String())
	}
	out.WriteString("fn ")
	out.WriteString(fd.Name)
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(") -> ")
	out.WriteString(fd.ReturnType.String())
	return out.String()
}

type EnumDeclaration struct {
	Name    string
	Entries []string
}

func (ed *EnumDeclaration) Has(entry string) bool {
	for _, e := range ed.Entries {
		if e == entry {
			return true
		}
	}
	return false
}

type LayoutField struct {
	Name    string
	Type    DataType
	Default ast.Expression // nil when the field has no default
}

// LayoutDeclaration is shared by every instance; methods mixed in later are
// visible through instances created before the mix.
type LayoutDeclaration struct {
	Name   string
	Fields []LayoutField
	// Scope is where the layout was declared; field defaults are evaluated
	// below it.
	Scope   *Scope
	methods *methodTable
}

func NewLayoutDeclaration(name string, fields []LayoutField) *LayoutDeclaration {
	return &LayoutDeclaration{
		Name:    name,
		Fields:  fields,
		methods: &methodTable{fns: make(map[string]*FunctionData)},
	}
}

func (ld *LayoutDeclaration) Field(name string) (LayoutField, bool) {
	for _, f := range ld.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return LayoutField{}, false
}

func (ld *LayoutDeclaration) Method(name string) (*FunctionData, bool) {
	return ld.methods.get(name)
}

type methodTable struct {
	mu  sync.RWMutex
	fns map[string]*FunctionData
}

func (mt *methodTable) get(name string) (*FunctionData, bool) {
	mt.mu.RLock()
	defer mt.mu.RUnlock()
	fd, ok := mt.fns[name]
	return fd, ok
}

func (mt *methodTable) set(fd *FunctionData) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.fns[fd.Name] = fd
}

// Export is one symbol a module makes available to importers.
type Export struct {
	Function *FunctionData
	Layout   *LayoutDeclaration
	Enum     *EnumDeclaration
}

type NativeFunction func(args []Object) Object

// NativeRegistry maps host paths like "io:print" to implementations.
type NativeRegistry struct {
	mu  sync.RWMutex
	fns map[string]NativeFunction
}

func NewNativeRegistry() *NativeRegistry {
	return &NativeRegistry{fns: make(map[string]NativeFunction)}
}

func (nr *NativeRegistry) Add(path string, fn NativeFunction) {
	nr.mu.Lock()
	defer nr.mu.Unlock()
	nr.fns[path] = fn
}

func (nr *NativeRegistry) Get(path string) (NativeFunction, bool) {
	nr.mu.RLock()
	defer nr.mu.RUnlock()
	fn, ok := nr.fns[path]
	return fn, ok
}

func ParametersFromNode(params []*ast.FunctionParameter) []Parameter {
	result := make([]Parameter, len(params))
	for i, p := range params {
		result[i] = Parameter{Name: p.Name.Value, Type: DataTypeFromNode(p.Type)}
	}
	return result
}

func LayoutFieldsFromNode(decl *ast.LayoutDeclaration) []LayoutField {
	fields := make([]LayoutField, len(decl.Fields))
	for i, f := range decl.Fields {
		fields[i] = LayoutField{
			Name:    f.Name.Value,
			Type:    DataTypeFromNode(f.Type),
			Default: f.Default,
		}
	}
	return fields
}
