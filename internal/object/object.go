package object

import (
	"bytes"
	"strconv"
	"strings"
	"sync"
)

type ObjectType string

const (
	NUMBER_OBJ       = "NUMBER"
	NULL_OBJ         = "NULL"
	STRING_OBJ       = "STRING"
	BOOLEAN_OBJ      = "BOOLEAN"
	ITERABLE_OBJ     = "ITERABLE"
	ENUM_OBJ         = "ENUM"
	LAYOUT_OBJ       = "LAYOUT"
	FUNCTION_OBJ     = "FUNCTION"
	BOUND_METHOD_OBJ = "BOUND_METHOD"
)

var (
	NULL  = &Null{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return strconv.FormatFloat(n.Value, 'f', -1, 64) }

type Null struct{}

func (n *Null) Type() ObjectType { return NULL_OBJ }
func (n *Null) Inspect() string  { return "null" }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return strconv.FormatBool(b.Value) }

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

type Pair struct {
	Index Object
	Value Object
}

// Iterable is an ordered sequence of (index, value) pairs.
type Iterable struct {
	Pairs []Pair
}

func (it *Iterable) Type() ObjectType { return ITERABLE_OBJ }
func (it *Iterable) Inspect() string { return it.inspect(map[*FieldTable]bool{}) }

func (it *Iterable) inspect(open map[*FieldTable]bool) string {
	var out bytes.Buffer
	items := []string{}
	for _, p := range it.Pairs {
		items = append(items, inspect(p.Index, open)+": "+inspect(p.Value, open))
	}
	out.WriteString("[")
	out.WriteString(strings.Join(items, ", "))
	out.WriteString("]")
	return out.String()
}

// NewIterableOf indexes values from zero.
func NewIterableOf(values ...Object) *Iterable {
	pairs := make([]Pair, len(values))
	for i, v := range values {
		pairs[i] = Pair{Index: &Number{Value: float64(i)}, Value: v}
	}
	return &Iterable{Pairs: pairs}
}

type Enum struct {
	EnumID string
	Entry  string
}

func (e *Enum) Type() ObjectType { return ENUM_OBJ }
func (e *Enum) Inspect() string  { return e.EnumID + "->" + e.Entry }

// FieldTable is the storage behind a layout instance. Every Layout value
// created by copying a handle points at the same table.
type FieldTable struct {
	mu     sync.RWMutex
	order  []string
	values map[string]Object
}

func NewFieldTable() *FieldTable {
	return &FieldTable{values: make(map[string]Object)}
}

func (ft *FieldTable) Get(name string) (Object, bool) {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	v, ok := ft.values[name]
	return v, ok
}

func (ft *FieldTable) Set(name string, value Object) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if _, ok := ft.values[name]; !ok {
		ft.order = append(ft.order, name)
	}
	ft.values[name] = value
}

// Names returns field names in insertion order.
func (ft *FieldTable) Names() []string {
	ft.mu.RLock()
	defer ft.mu.RUnlock()
	names := make([]string, len(ft.order))
	copy(names, ft.order)
	return names
}

type Layout struct {
	LayoutID string
	Fields   *FieldTable
	Decl     *LayoutDeclaration
}

func (l *Layout) Type() ObjectType { return LAYOUT_OBJ }
func (l *Layout) Inspect() string { return l.inspect(map[*FieldTable]bool{}) }

// inspect prints an instance that is already being printed as `Name { ... }`.
func (l *Layout) inspect(open map[*FieldTable]bool) string {
	if open[l.Fields] {
		return l.LayoutID + " { ... }"
	}
	open[l.Fields] = true
	defer delete(open, l.Fields)

	var out bytes.Buffer
	fields := []string{}
	for _, name := range l.Fields.Names() {
		v, _ := l.Fields.Get(name)
		fields = append(fields, name+": "+inspect(v, open))
	}
	out.WriteString(l.LayoutID)
	out.WriteString(" { ")
	out.WriteString(strings.Join(fields, ", "))
	out.WriteString(" }")
	return out.String()
}

type Function struct {
	Data *FunctionData
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return f.Data.Signature() }

// BoundMethod is a tied method read through an instance. When ReceiverName is
// set the receiver is re-read from ReceiverScope at call time, otherwise
// Receiver is used as is.
type BoundMethod struct {
	Data          *FunctionData
	ReceiverName  string
	ReceiverScope *Scope
	Receiver      Object
}

func (bm *BoundMethod) Type() ObjectType { return BOUND_METHOD_OBJ }
func (bm *BoundMethod) Inspect() string {
	recv := bm.ReceiverName
	if recv == "" && bm.Receiver != nil {
		recv = bm.Receiver.Inspect()
	}
	return recv + "." + bm.Data.Signature()
}

func inspect(o Object, open map[*FieldTable]bool) string {
	switch v := o.(type) {
	case *Layout:
		return v.inspect(open)
	case *Iterable:
		return v.inspect(open)
	}
	return o.Inspect()
}

type fieldTablePair struct{ l, r *FieldTable }

// Equals compares two values. Values of different kinds are never equal.
// Layouts compare field by field; a pair of instances met again while it is
// still being compared counts as equal, so cyclic layouts terminate.
func Equals(a, b Object) bool {
	return equals(a, b, map[fieldTablePair]bool{})
}

func equals(a, b Object, open map[fieldTablePair]bool) bool {
	switch l := a.(type) {
	case *Number:
		r, ok := b.(*Number)
		return ok && l.Value == r.Value
	case *Null:
		_, ok := b.(*Null)
		return ok
	case *String:
		r, ok := b.(*String)
		return ok && l.Value == r.Value
	case *Boolean:
		r, ok := b.(*Boolean)
		return ok && l.Value == r.Value
	case *Iterable:
		r, ok := b.(*Iterable)
		if !ok || len(l.Pairs) != len(r.Pairs) {
			return false
		}
		for i := range l.Pairs {
			if !equals(l.Pairs[i].Index, r.Pairs[i].Index, open) || !equals(l.Pairs[i].Value, r.Pairs[i].Value, open) {
				return false
			}
		}
		return true
	case *Enum:
		r, ok := b.(*Enum)
		return ok && l.EnumID == r.EnumID && l.Entry == r.Entry
	case *Layout:
		r, ok := b.(*Layout)
		if !ok || l.LayoutID != r.LayoutID {
			return false
		}
		pair := fieldTablePair{l.Fields, r.Fields}
		if l.Fields == r.Fields || open[pair] {
			return true
		}
		open[pair] = true
		defer delete(open, pair)

		names := l.Fields.Names()
		if len(names) != len(r.Fields.Names()) {
			return false
		}
		for _, name := range names {
			lv, _ := l.Fields.Get(name)
			rv, ok := r.Fields.Get(name)
			if !ok || !equals(lv, rv, open) {
				return false
			}
		}
		return true
	case *Function:
		r, ok := b.(*Function)
		return ok && l.Data == r.Data
	case *BoundMethod:
		r, ok := b.(*BoundMethod)
		return ok && l.Data == r.Data && l.ReceiverName == r.ReceiverName && l.ReceiverScope == r.ReceiverScope && l.Receiver == r.Receiver
	}
	return false
}
