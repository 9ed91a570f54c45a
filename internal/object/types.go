package object

import (
	"mosa/internal/ast"
)

type Kind int

const (
	KindNum Kind = iota
	KindStr
	KindBool
	KindNull
	KindNullable
	KindIterable
	KindLayoutOrEnum
	KindIndefinite
	KindFunction
	KindNullReference
	KindInfer
)

// DataType describes the shape of a value. Elem is set for KindNullable and
// KindIterable, Name for KindLayoutOrEnum.
type DataType struct {
	Kind Kind
	Name string
	Elem *DataType
}

var (
	NumType           = DataType{Kind: KindNum}
	StrType           = DataType{Kind: KindStr}
	BoolType          = DataType{Kind: KindBool}
	NullType          = DataType{Kind: KindNull}
	IndefiniteType    = DataType{Kind: KindIndefinite}
	FunctionType      = DataType{Kind: KindFunction}
	NullReferenceType = DataType{Kind: KindNullReference}
	// InferType is a declaration placeholder: adopt the initializer's type.
	InferType = DataType{Kind: KindInfer}
)

func NullableOf(t DataType) DataType {
	return DataType{Kind: KindNullable, Elem: &t}
}

func IterableOf(t DataType) DataType {
	return DataType{Kind: KindIterable, Elem: &t}
}

func LayoutOrEnumType(name string) DataType {
	return DataType{Kind: KindLayoutOrEnum, Name: name}
}

func (t DataType) IsInfer() bool { return t.Kind == KindInfer }

// Equal is structural equality.
func (t DataType) Equal(o DataType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindNullable, KindIterable:
		return t.Elem.Equal(*o.Elem)
	case KindLayoutOrEnum:
		return t.Name == o.Name
	}
	return true
}

// Matches reports whether a value of type actual may be stored where t is
// declared. The relation is one-directional: nul T accepts T and null, T
// does not accept nul T.
func (t DataType) Matches(actual DataType) bool {
	if t.Equal(actual) {
		return true
	}
	if t.Kind == KindNullable {
		return actual.Kind == KindNull || t.Elem.Equal(actual)
	}
	return false
}

// Or returns t unless it is the infer placeholder.
func (t DataType) Or(other DataType) DataType {
	if t.IsInfer() {
		return other
	}
	return t
}

func (t DataType) String() string {
	switch t.Kind {
	case KindNum:
		return "num"
	case KindStr:
		return "str"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindNullable:
		return "nul " + t.Elem.String()
	case KindIterable:
		return "iter<" + t.Elem.String() + ">"
	case KindLayoutOrEnum:
		return t.Name
	case KindIndefinite:
		return "indefinite"
	case KindFunction:
		return "fn"
	case KindNullReference:
		return "ref null"
	}
	panic("an inferred type has no display form")
}

// DataTypeFromString maps a type name and its generic arguments to a
// DataType. Names that are not built in are assumed to be layouts or enums
// and are only checked when a value meets them.
func DataTypeFromString(name string, generics []DataType) DataType {
	switch name {
	case "num":
		return NumType
	case "str":
		return StrType
	case "bool":
		return BoolType
	case "null":
		return NullType
	case "fn":
		return FunctionType
	case "indefinite":
		return IndefiniteType
	case "iter":
		// a bare iter is the type of ranges and empty iterables
		if len(generics) == 0 {
			return IterableOf(NumType)
		}
		return IterableOf(generics[0])
	}
	return LayoutOrEnumType(name)
}

// DataTypeFromNode converts a source annotation; a nil node means infer.
func DataTypeFromNode(n *ast.TypeNode) DataType {
	if n == nil {
		return InferType
	}
	generics := make([]DataType, 0, len(n.Generics))
	for _, g := range n.Generics {
		generics = append(generics, DataTypeFromNode(g))
	}
	t := DataTypeFromString(n.Name, generics)
	if n.Nullable {
		return NullableOf(t)
	}
	return t
}

// ReturnTypeFromNode is DataTypeFromNode except that a missing annotation
// declares a null return.
func ReturnTypeFromNode(n *ast.TypeNode) DataType {
	if n == nil {
		return NullType
	}
	return DataTypeFromNode(n)
}

// TypeOf computes the runtime type of any value.
func TypeOf(v Object) DataType {
	switch v := v.(type) {
	case *Number:
		return NumType
	case *Null:
		return NullType
	case *String:
		return StrType
	case *Boolean:
		return BoolType
	case *Iterable:
		// element types are not tracked; every iterable is an iter<num>
		return IterableOf(NumType)
	case *Enum:
		return LayoutOrEnumType(v.EnumID)
	case *Layout:
		return LayoutOrEnumType(v.LayoutID)
	case *Function, *BoundMethod:
		return FunctionType
	}
	return IndefiniteType
}
