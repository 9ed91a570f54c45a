package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleTypes = []DataType{
	NumType,
	StrType,
	BoolType,
	IterableOf(NumType),
	IterableOf(StrType),
	LayoutOrEnumType("Point"),
	LayoutOrEnumType("Color"),
	FunctionType,
	IndefiniteType,
}

func TestNullableMatching(t *testing.T) {
	for _, typ := range sampleTypes {
		nullable := NullableOf(typ)

		assert.True(t, nullable.Matches(NullType), "nul %s accepts null", typ)
		assert.True(t, nullable.Matches(typ), "nul %s accepts %s", typ, typ)
		assert.True(t, typ.Matches(typ), "%s accepts itself", typ)
		assert.False(t, typ.Matches(nullable), "%s must not accept nul %s", typ, typ)
		assert.True(t, nullable.Matches(nullable), "nul %s accepts itself", typ)

		for _, other := range sampleTypes {
			if other.Equal(typ) {
				continue
			}
			assert.False(t, nullable.Matches(other), "nul %s must not accept %s", typ, other)
		}
	}
}

func TestNonNullableRejectsNull(t *testing.T) {
	for _, typ := range sampleTypes {
		assert.False(t, typ.Matches(NullType), "%s must not accept null", typ)
	}
	assert.True(t, NullType.Matches(NullType))
}

func TestDataTypeFromString(t *testing.T) {
	tests := []struct {
		name     string
		generics []DataType
		expected DataType
	}{
		{"num", nil, NumType},
		{"str", nil, StrType},
		{"bool", nil, BoolType},
		{"null", nil, NullType},
		{"fn", nil, FunctionType},
		{"iter", []DataType{StrType}, IterableOf(StrType)},
		{"iter", nil, IterableOf(NumType)},
		{"indefinite", nil, IndefiniteType},
		{"Point", nil, LayoutOrEnumType("Point")},
	}

	for _, tt := range tests {
		got := DataTypeFromString(tt.name, tt.generics)
		assert.True(t, got.Equal(tt.expected), "%s: got %s, want %s", tt.name, got, tt.expected)
	}
}

func TestTypeOf(t *testing.T) {
	fd := &FunctionData{Name: "f", ReturnType: NullType}

	tests := []struct {
		value    Object
		expected DataType
	}{
		{&Number{Value: 1}, NumType},
		{NULL, NullType},
		{&String{Value: "a"}, StrType},
		{TRUE, BoolType},
		{NewIterableOf(), IterableOf(NumType)},
		{NewIterableOf(&String{Value: "a"}, &String{Value: "b"}), IterableOf(NumType)},
		{NewIterableOf(&String{Value: "a"}, &Number{Value: 1}), IterableOf(NumType)},
		{&Enum{EnumID: "Color", Entry: "Red"}, LayoutOrEnumType("Color")},
		{&Layout{LayoutID: "Point", Fields: NewFieldTable()}, LayoutOrEnumType("Point")},
		{&Function{Data: fd}, FunctionType},
		{&BoundMethod{Data: fd}, FunctionType},
	}

	for _, tt := range tests {
		got := TypeOf(tt.value)
		assert.True(t, got.Equal(tt.expected), "TypeOf(%s) = %s, want %s", tt.value.Inspect(), got, tt.expected)
	}
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "nul iter<str>", NullableOf(IterableOf(StrType)).String())
	assert.Equal(t, "Point", LayoutOrEnumType("Point").String())
	require.Panics(t, func() { _ = InferType.String() })
}

func TestInferAdoptsOther(t *testing.T) {
	assert.True(t, InferType.Or(StrType).Equal(StrType))
	assert.True(t, NumType.Or(StrType).Equal(NumType))
}
