package foreign

import (
	"fmt"
	"log/slog"
	"math"
	"mosa/internal/object"
)

// invalid logs why a native gave up and returns null in its place.
func invalid(native string, format string, args ...interface{}) object.Object {
	slog.Warn("native call returned null",
		slog.String("native", native),
		slog.String("reason", fmt.Sprintf(format, args...)))
	return object.NULL
}

func arity(native string, args []object.Object, want int) bool {
	if len(args) < want {
		invalid(native, "wrong number of arguments. got=%d, want=%d", len(args), want)
		return false
	}
	return true
}

func unpackString(arg object.Object, argName string) (string, error) {
	value, ok := arg.(*object.String)
	if !ok {
		return "", fmt.Errorf("argument `%s` must be a STRING, got=%s", argName, arg.Type())
	}
	return value.Value, nil
}

func unpackNumber(arg object.Object, argName string) (float64, error) {
	value, ok := arg.(*object.Number)
	if !ok {
		return 0, fmt.Errorf("argument `%s` must be a NUMBER, got=%s", argName, arg.Type())
	}
	return value.Value, nil
}

func unpackHandle(arg object.Object) (int64, error) {
	n, err := unpackNumber(arg, "handle")
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) {
		return 0, fmt.Errorf("handle %v is not a whole number", n)
	}
	return int64(n), nil
}

func unpackIterable(arg object.Object, argName string) (*object.Iterable, error) {
	value, ok := arg.(*object.Iterable)
	if !ok {
		return nil, fmt.Errorf("argument `%s` must be an ITERABLE, got=%s", argName, arg.Type())
	}
	return value, nil
}

func number(v float64) *object.Number {
	return &object.Number{Value: v}
}
