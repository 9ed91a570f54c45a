package foreign

import (
	"bytes"
	"mosa/internal/object"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) object.Object  { return &object.String{Value: s} }
func num(n float64) object.Object { return &object.Number{Value: n} }

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	h := NewHost(&out)
	natives := h.Natives()

	natives["io:print"]([]object.Object{str("a"), num(1.5)})
	natives["io:printLn"]([]object.Object{object.TRUE})
	natives["io:printLn"](nil)

	assert.Equal(t, "a 1.5true\n\n", out.String())
}

func TestStringNatives(t *testing.T) {
	tests := []struct {
		native   string
		input    object.Object
		expected object.Object
	}{
		{"str:len", str("héllo"), num(5)},
		{"str:upper", str("mosa"), str("MOSA")},
		{"str:lower", str("MoSa"), str("mosa")},
		{"str:title", str("hello world"), str("Hello World")},
		{"str:trim", str("  x \n"), str("x")},
		{"str:from", num(3), str("3")},
		{"str:upper", num(3), object.NULL},
	}

	natives := NewHost(nil).Natives()
	for _, tt := range tests {
		got := natives[tt.native]([]object.Object{tt.input})
		if !object.Equals(got, tt.expected) {
			t.Errorf("%s(%s) = %s, want %s", tt.native, tt.input.Inspect(), got.Inspect(), tt.expected.Inspect())
		}
	}
}

func TestMathNatives(t *testing.T) {
	natives := NewHost(nil).Natives()

	assert.Equal(t, num(2), natives["math:floor"]([]object.Object{num(2.9)}))
	assert.Equal(t, num(4), natives["math:abs"]([]object.Object{num(-4)}))
	assert.Equal(t, num(3), natives["math:sqrt"]([]object.Object{num(9)}))
	assert.Equal(t, num(8), natives["math:pow"]([]object.Object{num(2), num(3)}))
	assert.Equal(t, num(1), natives["math:mod"]([]object.Object{num(7), num(3)}))

	assert.Same(t, object.NULL, natives["math:sqrt"]([]object.Object{num(-1)}))
	assert.Same(t, object.NULL, natives["math:mod"]([]object.Object{num(1), num(0)}))
	assert.Same(t, object.NULL, natives["math:pow"]([]object.Object{num(1)}))
}

func TestIterNatives(t *testing.T) {
	natives := NewHost(nil).Natives()

	it := natives["iter:of"]([]object.Object{str("a"), str("b")})
	require.IsType(t, &object.Iterable{}, it)
	assert.Equal(t, "iter<num>", object.TypeOf(it).String())

	assert.Equal(t, num(2), natives["iter:len"]([]object.Object{it}))
	assert.Equal(t, str("b"), natives["iter:at"]([]object.Object{it, num(1.2)}))
	assert.Same(t, object.NULL, natives["iter:at"]([]object.Object{it, num(5)}))
}

func TestRegister(t *testing.T) {
	reg := object.NewNativeRegistry()
	NewHost(nil).Register(reg)

	for _, path := range []string{"io:print", "str:len", "math:pow", "iter:of", "db:open", "db:close"} {
		_, ok := reg.Get(path)
		assert.True(t, ok, path)
	}
}
