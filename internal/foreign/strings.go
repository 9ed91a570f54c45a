package foreign

import (
	"mosa/internal/object"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
	title = cases.Title(language.Und)
)

// strLen counts runes, not bytes.
func strLen(args []object.Object) object.Object {
	if !arity("str:len", args, 1) {
		return object.NULL
	}
	s, err := unpackString(args[0], "value")
	if err != nil {
		return invalid("str:len", "%v", err)
	}
	return number(float64(utf8.RuneCountInString(s)))
}

func strUpper(args []object.Object) object.Object {
	return mapString("str:upper", args, upper.String)
}

func strLower(args []object.Object) object.Object {
	return mapString("str:lower", args, lower.String)
}

func strTitle(args []object.Object) object.Object {
	return mapString("str:title", args, title.String)
}

func strTrim(args []object.Object) object.Object {
	return mapString("str:trim", args, func(s string) string {
		return strings.TrimFunc(s, unicode.IsSpace)
	})
}

// strFrom is the display form of any value.
func strFrom(args []object.Object) object.Object {
	if !arity("str:from", args, 1) {
		return object.NULL
	}
	return &object.String{Value: args[0].Inspect()}
}

func mapString(native string, args []object.Object, fn func(string) string) object.Object {
	if !arity(native, args, 1) {
		return object.NULL
	}
	s, err := unpackString(args[0], "value")
	if err != nil {
		return invalid(native, "%v", err)
	}
	return &object.String{Value: fn(s)}
}
