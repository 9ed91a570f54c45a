package object

import (
	"fmt"
)

type ErrorKind int

const (
	TypeMismatch ErrorKind = iota + 1
	ImmutableAssignment
	UndeclaredVariable
	UndeclaredFunction
	UndeclaredEnum
	UndeclaredLayout
	UnknownField
	ArityOrShapeError
	NonBooleanCondition
	NotCallable
	UnboundBinding
	UnknownModule
	UnknownExport
	CyclicImport
)

var errorKindNames = map[ErrorKind]string{
	TypeMismatch:        "type mismatch",
	ImmutableAssignment: "immutable assignment",
	UndeclaredVariable:  "undeclared variable",
	UndeclaredFunction:  "undeclared function",
	UndeclaredEnum:      "undeclared enum",
	UndeclaredLayout:    "undeclared layout",
	UnknownField:        "unknown field",
	ArityOrShapeError:   "arity or shape error",
	NonBooleanCondition: "non-boolean condition",
	NotCallable:         "not callable",
	UnboundBinding:      "unbound binding",
	UnknownModule:       "unknown module",
	UnknownExport:       "unknown export",
	CyclicImport:        "cyclic import",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error(%d)", int(k))
}

// EvaluationError is the single failure type of evaluation. Position is a
// byte offset into the source of Module, -1 when unknown.
type EvaluationError struct {
	Kind     ErrorKind
	Message  string
	Module   string
	Position int
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches any EvaluationError of the same kind, so sentinels like
// ErrTypeMismatch work with errors.Is.
func (e *EvaluationError) Is(target error) bool {
	t, ok := target.(*EvaluationError)
	return ok && t.Kind == e.Kind
}

// At fills in the location unless a deeper call already did.
func (e *EvaluationError) At(module string, pos int) *EvaluationError {
	if e.Position < 0 {
		e.Module = module
		e.Position = pos
	}
	return e
}

func NewError(kind ErrorKind, format string, a ...interface{}) *EvaluationError {
	return &EvaluationError{Kind: kind, Message: fmt.Sprintf(format, a...), Position: -1}
}

var (
	ErrTypeMismatch        = &EvaluationError{Kind: TypeMismatch}
	ErrImmutableAssignment = &EvaluationError{Kind: ImmutableAssignment}
	ErrUndeclaredVariable  = &EvaluationError{Kind: UndeclaredVariable}
	ErrUndeclaredFunction  = &EvaluationError{Kind: UndeclaredFunction}
	ErrUndeclaredEnum      = &EvaluationError{Kind: UndeclaredEnum}
	ErrUndeclaredLayout    = &EvaluationError{Kind: UndeclaredLayout}
	ErrUnknownField        = &EvaluationError{Kind: UnknownField}
	ErrArityOrShape        = &EvaluationError{Kind: ArityOrShapeError}
	ErrNonBooleanCondition = &EvaluationError{Kind: NonBooleanCondition}
	ErrNotCallable         = &EvaluationError{Kind: NotCallable}
	ErrUnboundBinding      = &EvaluationError{Kind: UnboundBinding}
	ErrUnknownModule       = &EvaluationError{Kind: UnknownModule}
	ErrUnknownExport       = &EvaluationError{Kind: UnknownExport}
	ErrCyclicImport        = &EvaluationError{Kind: CyclicImport}
)
