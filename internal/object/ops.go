package object

import (
	"math"
	"strings"
)

// Arithmetic and ordering between values. Any combination not listed
// evaluates to NULL instead of failing.

func Add(left, right Object) Object {
	switch l := left.(type) {
	case *Number:
		if r, ok := right.(*Number); ok {
			return &Number{Value: l.Value + r.Value}
		}
	case *String:
		if r, ok := right.(*String); ok {
			return &String{Value: l.Value + r.Value}
		}
	}
	return NULL
}

func Sub(left, right Object) Object {
	l, r, ok := numbers(left, right)
	if !ok {
		return NULL
	}
	return &Number{Value: l - r}
}

// maxRepeatLen bounds the result of str * num.
const maxRepeatLen = 1 << 30

// Mul multiplies numbers or repeats a string floor(count) times. A repeat
// that is not finite or would exceed maxRepeatLen bytes is null.
func Mul(left, right Object) Object {
	switch l := left.(type) {
	case *Number:
		if r, ok := right.(*Number); ok {
			return &Number{Value: l.Value * r.Value}
		}
	case *String:
		if r, ok := right.(*Number); ok {
			count := math.Floor(r.Value)
			if math.IsNaN(count) || math.IsInf(count, 1) {
				return NULL
			}
			if count <= 0 || l.Value == "" {
				return &String{Value: ""}
			}
			if count > float64(maxRepeatLen/len(l.Value)) {
				return NULL
			}
			return &String{Value: strings.Repeat(l.Value, int(count))}
		}
	}
	return NULL
}

func Div(left, right Object) Object {
	l, r, ok := numbers(left, right)
	if !ok {
		return NULL
	}
	return &Number{Value: l / r}
}

// Bigger is left > right, or left >= right when equal is set.
func Bigger(left, right Object, equal bool) Object {
	l, r, ok := numbers(left, right)
	if !ok {
		return NULL
	}
	if equal {
		return NativeBoolToBooleanObject(l >= r)
	}
	return NativeBoolToBooleanObject(l > r)
}

// Smaller is left < right, or left <= right when equal is set.
func Smaller(left, right Object, equal bool) Object {
	l, r, ok := numbers(left, right)
	if !ok {
		return NULL
	}
	if equal {
		return NativeBoolToBooleanObject(l <= r)
	}
	return NativeBoolToBooleanObject(l < r)
}

func Negate(value Object) Object {
	if n, ok := value.(*Number); ok {
		return &Number{Value: -n.Value}
	}
	return NULL
}

func Not(value Object) Object {
	if b, ok := value.(*Boolean); ok {
		return NativeBoolToBooleanObject(!b.Value)
	}
	return NULL
}

func numbers(left, right Object) (float64, float64, bool) {
	l, ok := left.(*Number)
	if !ok {
		return 0, 0, false
	}
	r, ok := right.(*Number)
	if !ok {
		return 0, 0, false
	}
	return l.Value, r.Value, true
}
