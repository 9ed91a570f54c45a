package foreign

import (
	"math"
	"mosa/internal/object"
)

func mathFloor(args []object.Object) object.Object {
	return unary("math:floor", args, math.Floor)
}

func mathAbs(args []object.Object) object.Object {
	return unary("math:abs", args, math.Abs)
}

func mathSqrt(args []object.Object) object.Object {
	return unary("math:sqrt", args, math.Sqrt)
}

func mathPow(args []object.Object) object.Object {
	return binary("math:pow", args, math.Pow)
}

// mathMod keeps the sign of the dividend; a zero divisor yields null.
func mathMod(args []object.Object) object.Object {
	return binary("math:mod", args, math.Mod)
}

func unary(native string, args []object.Object, fn func(float64) float64) object.Object {
	if !arity(native, args, 1) {
		return object.NULL
	}
	x, err := unpackNumber(args[0], "x")
	if err != nil {
		return invalid(native, "%v", err)
	}
	return result(native, fn(x))
}

func binary(native string, args []object.Object, fn func(float64, float64) float64) object.Object {
	if !arity(native, args, 2) {
		return object.NULL
	}
	a, err := unpackNumber(args[0], "a")
	if err != nil {
		return invalid(native, "%v", err)
	}
	b, err := unpackNumber(args[1], "b")
	if err != nil {
		return invalid(native, "%v", err)
	}
	return result(native, fn(a, b))
}

func result(native string, v float64) object.Object {
	if math.IsNaN(v) {
		return invalid(native, "result is not a number")
	}
	return number(v)
}
