package evaluator

import (
	"bytes"
	"fmt"
	"mosa/internal/foreign"
	"mosa/internal/modules"
	"mosa/internal/object"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prelude = `use native fn print#"io:print"
use native fn printLn#"io:printLn"
`

func newScope(t *testing.T, out *bytes.Buffer) *object.Scope {
	t.Helper()
	natives := object.NewNativeRegistry()
	foreign.NewHost(out).Register(natives)
	scope := object.NewRootScope("main", natives)
	require.NoError(t, DeclareGlobals(scope))
	return scope
}

func testEval(t *testing.T, src string) (object.Object, string, error) {
	t.Helper()
	program, err := modules.Parse("main", prelude+src)
	require.NoError(t, err)

	var out bytes.Buffer
	result, err := New(program, nil).EvalProgram(newScope(t, &out))
	return result, out.String(), err
}

func mustEval(t *testing.T, src string) object.Object {
	t.Helper()
	result, _, err := testEval(t, src)
	require.NoError(t, err, src)
	return result
}

func TestEvalExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1 + 2 * 3", "7"},
		{"(1 + 2) * 3", "9"},
		{"-5 + 2", "-3"},
		{"7 / 2", "3.5"},
		{`"mo" + "sa"`, "mosa"},
		{`"ab" * 2.5`, "abab"},
		{`"ab" * -1`, ""},
		{"3 >= 3", "true"},
		{"3 > 3", "false"},
		{"2 <= 1", "false"},
		{"!true", "false"},
		{`1 == "1"`, "false"},
		{`"a" != "b"`, "true"},
		{"typeof 1", "num"},
		{`typeof "x"`, "str"},
		{"typeof (1..3)", "iter<num>"},
		{"typeof null", "null"},
		{"typeof :: () { }", "fn"},
		{"block { let a = 2\n a * a }", "4"},
	}

	for _, tt := range tests {
		if got := mustEval(t, tt.input).Inspect(); got != tt.expected {
			t.Errorf("%q: got %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestArithmeticFallsBackToNull(t *testing.T) {
	for _, input := range []string{"true + 1", `"a" - 1`, "null * 2", `1 < "2"`, "-true", "!1"} {
		result, _, err := testEval(t, input)
		require.NoError(t, err, input)
		assert.Same(t, NULL, result, input)
	}
}

func TestVariables(t *testing.T) {
	assert.Equal(t, "2", mustEval(t, "let x = 1\nblock { x = 2 }\nx").Inspect())
	assert.Equal(t, "1", mustEval(t, "let x = 1\nblock { let x = 2 }\nx").Inspect())
	assert.Equal(t, "null", mustEval(t, "let x: nul num = 1\nx = null\nx").Inspect())

	_, _, err := testEval(t, "immut let x: num = 1\nx = 2")
	assert.ErrorIs(t, err, object.ErrImmutableAssignment)

	_, _, err = testEval(t, "let x = 1\nx = \"one\"")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	_, _, err = testEval(t, "let x: str = 1")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	_, _, err = testEval(t, "y = 1")
	assert.ErrorIs(t, err, object.ErrUndeclaredVariable)

	_, _, err = testEval(t, "y")
	assert.ErrorIs(t, err, object.ErrUndeclaredVariable)
}

func TestFunctions(t *testing.T) {
	assert.Equal(t, "6", mustEval(t, "fn add(a: num, b: num) -> num { a + b }\nadd(2, 4)").Inspect())
	assert.Equal(t, "8", mustEval(t, "fn double(n: num) -> num { n * 2 }\n4 ->> double").Inspect())
	assert.Equal(t, "1", mustEval(t, "fn id(n: num) -> num { n }\nid(1, 2)").Inspect(), "surplus arguments are ignored")
	assert.Equal(t, "1", mustEval(t, "fn maybe() -> nul num { 1 }\nmaybe()").Inspect())
	assert.Equal(t, "null", mustEval(t, "fn nothing() { }\nnothing()").Inspect())
	assert.Equal(t, "120", mustEval(t, `
fn fact(n: num) -> num {
	if n < 2 { 1 } else { n * fact(n - 1) }
}
fact(5)`).Inspect())

	_, _, err := testEval(t, "fn id(n: num) -> num { n }\nid(\"a\")")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	_, _, err = testEval(t, "fn id(n: nul num) -> nul num { n }\nid(1)")
	assert.ErrorIs(t, err, object.ErrTypeMismatch, "parameters need the exact type")

	_, _, err = testEval(t, "fn id(n: num) -> num { n }\nid()")
	assert.ErrorIs(t, err, object.ErrArityOrShape)

	_, _, err = testEval(t, "fn bad() -> str { 1 }\nbad()")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	_, _, err = testEval(t, "let x = 1\nx()")
	assert.ErrorIs(t, err, object.ErrNotCallable)

	_, _, err = testEval(t, "fn p(n: num) { immut let k: num = 1\n n = 2 }\np(1)")
	assert.ErrorIs(t, err, object.ErrImmutableAssignment, "parameters are immutable")
}

func TestClosureCapturesDeclaringScope(t *testing.T) {
	result := mustEval(t, `
let v = "outer"
let get = :: () -> str { v }
fn call(f: fn) -> str {
	let v = "inner"
	f()
}
call(get)`)
	assert.Equal(t, "outer", result.Inspect())
}

func TestClosureSeesLaterAssignments(t *testing.T) {
	result := mustEval(t, `
let count = 0
fn next() -> num { count = count + 1; count }
next()
next()
count`)
	assert.Equal(t, "2", result.Inspect())
}

func TestNatives(t *testing.T) {
	_, out, err := testEval(t, `printLn("a", 1, true)
print("b")`)
	require.NoError(t, err)
	assert.Equal(t, "a 1 true\nb", out)

	_, _, err = testEval(t, `use native fn nope#"no:where"`)
	assert.ErrorIs(t, err, object.ErrUndeclaredFunction)

	// natives skip type checks
	assert.Equal(t, "4", mustEval(t, "use native fn len#\"str:len\"\nlen(\"mosa\")").Inspect())
}

func TestIterablesAreIterOfNum(t *testing.T) {
	assert.Equal(t, "iter<num>", mustEval(t, "use native fn of#\"iter:of\"\ntypeof (of(\"a\", \"b\"))").Inspect())

	result := mustEval(t, `use native fn of#"iter:of"
use native fn len#"iter:len"
fn count(xs: iter) -> num { len(xs) }
count(of("a", "b", "c"))`)
	assert.Equal(t, "3", result.Inspect())

	result = mustEval(t, `use native fn of#"iter:of"
use native fn len#"iter:len"
let xs: iter<num> = of(1, "a")
len(xs)`)
	assert.Equal(t, "2", result.Inspect())
}

func TestControlFlow(t *testing.T) {
	assert.Equal(t, "a", mustEval(t, `if 1 < 2 { "a" } else { "b" }`).Inspect())
	assert.Equal(t, "b", mustEval(t, `if 1 > 2 { "a" } else { "b" }`).Inspect())
	assert.Equal(t, "c", mustEval(t, `if false { "a" } else if true { "c" } else { "b" }`).Inspect())
	assert.Same(t, NULL, mustEval(t, `if false { "a" }`))

	once := `
let x = %s
once {
	if x > 10 { "big" }
	if x > 3 { "mid" }
} else { "small" }`
	assert.Equal(t, "big", mustEval(t, fmt.Sprintf(once, "50")).Inspect())
	assert.Equal(t, "mid", mustEval(t, fmt.Sprintf(once, "5")).Inspect())
	assert.Equal(t, "small", mustEval(t, fmt.Sprintf(once, "1")).Inspect())

	_, _, err := testEval(t, "if 1 { 2 }")
	assert.ErrorIs(t, err, object.ErrNonBooleanCondition)

	_, _, err = testEval(t, "once { if null { 1 } }")
	assert.ErrorIs(t, err, object.ErrNonBooleanCondition)
}

func TestRange(t *testing.T) {
	it, ok := mustEval(t, "0..5").(*object.Iterable)
	require.True(t, ok)
	require.Len(t, it.Pairs, 5)
	for i, p := range it.Pairs {
		assert.Equal(t, float64(i), p.Index.(*object.Number).Value)
		assert.Equal(t, float64(i), p.Value.(*object.Number).Value)
	}

	for _, input := range []string{"3..3", "5..3"} {
		it, ok := mustEval(t, input).(*object.Iterable)
		require.True(t, ok, input)
		assert.Empty(t, it.Pairs, input)
	}

	assert.Equal(t, "[0: 2, 1: 3, 2: 4]", mustEval(t, "2.7..5.2").Inspect())
	assert.Same(t, NULL, mustEval(t, `1.."3"`))
}

func TestRangeWithLargeBounds(t *testing.T) {
	it, ok := mustEval(t, "let big = 10000000000000000\nbig..big + 10").(*object.Iterable)
	require.True(t, ok)
	assert.Len(t, it.Pairs, 10)

	assert.Same(t, NULL, mustEval(t, "(0 - 1 / 0)..0"))
	assert.Same(t, NULL, mustEval(t, "0..(1 / 0)"))
	assert.Same(t, NULL, mustEval(t, "(0 / 0)..3"))
}

func TestFor(t *testing.T) {
	assert.Equal(t, "6", mustEval(t, "let total = 0\nfor 1..4 { total = total + ^value }\ntotal").Inspect())

	_, out, err := testEval(t, `for 5..8 { print(^index, ^value, "") }`)
	require.NoError(t, err)
	assert.Equal(t, "0 5 1 6 2 7 ", out)

	_, _, err = testEval(t, "for 3 { 1 }")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)
}

func TestLoopBindingsAreShared(t *testing.T) {
	result := mustEval(t, `
let f: nul fn = null
for 0..3 { f = :: () -> num { ^index } }
f()`)
	assert.Equal(t, "2", result.Inspect())
}

func TestRepeat(t *testing.T) {
	_, out, err := testEval(t, "(print(^index)) ?: 3.7")
	require.NoError(t, err)
	assert.Equal(t, "012", out)

	_, out, err = testEval(t, "(print(\"x\")) ?: -2.5")
	require.NoError(t, err)
	assert.Equal(t, "xx", out)

	_, _, err = testEval(t, `(1) ?: "3"`)
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	_, _, err = testEval(t, "(1) ?: (0 / 0)")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)
}

func TestRepeatInfiniteRunsUntilFailure(t *testing.T) {
	_, out, err := testEval(t, `(block {
	print(^index);
	if ^index == 3 { let stop: str = 1 }
}) ?: (1 / 0)`)
	assert.ErrorIs(t, err, object.ErrTypeMismatch)
	assert.Equal(t, "0123", out)
}

func TestUnboundBinding(t *testing.T) {
	_, _, err := testEval(t, "^index")
	assert.ErrorIs(t, err, object.ErrUnboundBinding)
}

func TestLayouts(t *testing.T) {
	assert.Equal(t, "P { x: 1, y: 0 }", mustEval(t, "layout P { x: num, y: num = 0 }\nP { x: 1 }").Inspect())
	assert.Equal(t, "P { x: 1, y: 2 }", mustEval(t, "layout P { x: num, y: num = 0 }\nP { y: 2, x: 1 }").Inspect())
	assert.Equal(t, "true", mustEval(t, "layout P { x: num }\nP { x: 1 } == P { x: 1 }").Inspect())

	_, _, err := testEval(t, "layout P { x: num, y: num = 0 }\nP { y: 1 }")
	assert.ErrorIs(t, err, object.ErrArityOrShape)

	_, _, err = testEval(t, "layout P { x: num }\nP { x: 1, z: 2 }")
	assert.ErrorIs(t, err, object.ErrUnknownField)

	_, _, err = testEval(t, "layout P { x: num }\nP { x: \"1\" }")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)

	_, _, err = testEval(t, "Q { x: 1 }")
	assert.ErrorIs(t, err, object.ErrUndeclaredLayout)

	_, _, err = testEval(t, "layout P { x: num }\nlet p = P { x: 1 }\np.z")
	assert.ErrorIs(t, err, object.ErrUnknownField)

	_, _, err = testEval(t, "let n = 1\nn.x")
	assert.ErrorIs(t, err, object.ErrUnknownField)

	_, _, err = testEval(t, "layout P { x: num }\nlet p = P { x: 1 }\np.x = \"s\"")
	assert.ErrorIs(t, err, object.ErrTypeMismatch)
}

func TestLayoutAliasing(t *testing.T) {
	result := mustEval(t, `
layout P { x: num }
let a = P { x: 1 }
let b = a
b.x = 5
a.x`)
	assert.Equal(t, "5", result.Inspect())
}

func TestLayoutDefaultsAreFreshPerInstance(t *testing.T) {
	result := mustEval(t, `
let count = 0
fn next() -> num { count = count + 1; count }
layout T { id: num = next() }
let a = T {}
let b = T {}
a.id + b.id * 10`)
	assert.Equal(t, "21", result.Inspect())
}

func TestCyclicLayoutsCompare(t *testing.T) {
	result := mustEval(t, `
layout N { v: num, next: nul N = null }
let a = N { v: 1 }
let b = N { v: 1 }
a.next = b
b.next = a
a == b`)
	assert.Equal(t, "true", result.Inspect())
}

func TestLayoutDefaultsUseDeclaringScope(t *testing.T) {
	result := mustEval(t, `
let base = 1
layout T { v: num = base }
fn make() -> T {
	let base = 2
	T {}
}
make().v`)
	assert.Equal(t, "1", result.Inspect())
}

func TestMix(t *testing.T) {
	result := mustEval(t, `
layout Counter { n: num = 0 }
mix Counter {
	tied fn inc() { self.n = self.n + 1 }
	fn make() -> Counter { Counter {} }
}
let c = Counter->make()
c.inc()
c.inc()
c.n`)
	assert.Equal(t, "2", result.Inspect())

	assert.Equal(t, "3", mustEval(t, `
layout L { v: num }
let l = L { v: 3 }
mix L { tied fn get() -> num { self.v } }
l.get()`).Inspect(), "instances see methods mixed in later")

	assert.Equal(t, "9", mustEval(t, `
layout L { v: num } mix @ { tied fn sq() -> num { self.v * self.v } }
L { v: 3 }.sq()`).Inspect())

	assert.Equal(t, "2", mustEval(t, `
layout L { v: num }
mix L { fn f() -> num { 1 } }
mix L { fn f() -> num { 2 } }
L->f()`).Inspect(), "last mix wins")

	_, _, err := testEval(t, `
layout L { v: num }
mix L { fn f() -> num { 1 } }
let l = L { v: 1 }
l.f()`)
	assert.ErrorIs(t, err, object.ErrUnknownField, "untied methods are not reachable through instances")

	_, _, err = testEval(t, `
layout L { v: num }
block { mix L { fn f() { } } }`)
	assert.ErrorIs(t, err, object.ErrUndeclaredLayout)
}

func TestBoundMethodRereadsReceiver(t *testing.T) {
	result := mustEval(t, `
layout L { v: num }
mix L { tied fn get() -> num { self.v } }
let l = L { v: 1 }
let g = l.get
l = L { v: 7 }
g()`)
	assert.Equal(t, "7", result.Inspect())
}

func TestEnums(t *testing.T) {
	assert.Equal(t, "Color->Red", mustEval(t, "enum Color { Red, Green, }\nColor->Red").Inspect())
	assert.Equal(t, "true", mustEval(t, "enum Color { Red, Green }\nlet c = Color->Red\nc == Color->Red").Inspect())
	assert.Equal(t, "false", mustEval(t, "enum Color { Red, Green }\nColor->Red == Color->Green").Inspect())
	assert.Equal(t, "Color", mustEval(t, "enum Color { Red }\ntypeof Color->Red").Inspect())
	assert.Equal(t, "Color->Red", mustEval(t, `
enum Color { Red }
fn pick(c: Color) -> Color { c }
pick(Color->Red)`).Inspect())

	_, _, err := testEval(t, "enum Color { Red }\nColor->Blue")
	assert.ErrorIs(t, err, object.ErrUnknownField)

	_, _, err = testEval(t, "Shade->Dark")
	assert.ErrorIs(t, err, object.ErrUndeclaredEnum)
}

func TestErrorsCarryPosition(t *testing.T) {
	_, _, err := testEval(t, "let a = 1\nlet b: str = a")
	var evalErr *object.EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "main", evalErr.Module)
	assert.Equal(t, len(prelude)+10, evalErr.Position)
}
