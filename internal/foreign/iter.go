package foreign

import (
	"math"
	"mosa/internal/object"
)

// iterOf builds an iterable from its arguments, indexed from zero.
func iterOf(args []object.Object) object.Object {
	values := make([]object.Object, len(args))
	copy(values, args)
	return object.NewIterableOf(values...)
}

func iterLen(args []object.Object) object.Object {
	if !arity("iter:len", args, 1) {
		return object.NULL
	}
	it, err := unpackIterable(args[0], "iterable")
	if err != nil {
		return invalid("iter:len", "%v", err)
	}
	return number(float64(len(it.Pairs)))
}

// iterAt returns the value stored under index, matched by value equality.
func iterAt(args []object.Object) object.Object {
	if !arity("iter:at", args, 2) {
		return object.NULL
	}
	it, err := unpackIterable(args[0], "iterable")
	if err != nil {
		return invalid("iter:at", "%v", err)
	}
	index := args[1]
	if n, ok := index.(*object.Number); ok {
		index = number(math.Floor(n.Value))
	}
	for _, p := range it.Pairs {
		if object.Equals(p.Index, index) {
			return p.Value
		}
	}
	return invalid("iter:at", "no value at index %s", index.Inspect())
}
