package evaluator

import (
	"mosa/internal/ast"
	"mosa/internal/object"
)

// evalLayoutLiteral builds a new instance. Defaults are evaluated for every
// instance in a fresh scope below the declaring one, then the given fields
// are laid over them; each declared field must end up with a value.
func (in *Interpreter) evalLayoutLiteral(node *ast.LayoutLiteral, scope *object.Scope) (object.Object, error) {
	decl, ok := scope.GetLayout(node.Name.Value)
	if !ok {
		return nil, located(object.NewError(object.UndeclaredLayout,
			"layout `%s` is not declared", node.Name.Value), scope, node)
	}

	defaultScope := scope
	if decl.Scope != nil {
		defaultScope = object.NewEnclosedScope(decl.Scope)
	}

	values := make(map[string]object.Object, len(decl.Fields))
	for _, f := range decl.Fields {
		if f.Default == nil {
			continue
		}
		val, err := in.Eval(f.Default, defaultScope)
		if err != nil {
			return nil, err
		}
		values[f.Name] = val
	}

	for _, fv := range node.Fields {
		if _, ok := decl.Field(fv.Name.Value); !ok {
			return nil, located(object.NewError(object.UnknownField,
				"layout `%s` has no field `%s`", decl.Name, fv.Name.Value), scope, fv.Value)
		}
		val, err := in.Eval(fv.Value, scope)
		if err != nil {
			return nil, err
		}
		values[fv.Name.Value] = val
	}

	fields := object.NewFieldTable()
	for _, f := range decl.Fields {
		val, ok := values[f.Name]
		if !ok {
			return nil, located(object.NewError(object.ArityOrShapeError,
				"field `%s` of `%s` has no default and was not given", f.Name, decl.Name), scope, node)
		}
		if err := checkField(decl, f, val); err != nil {
			return nil, located(err, scope, node)
		}
		fields.Set(f.Name, val)
	}

	return &object.Layout{LayoutID: decl.Name, Fields: fields, Decl: decl}, nil
}

func checkField(decl *object.LayoutDeclaration, f object.LayoutField, val object.Object) error {
	if f.Type.IsInfer() {
		return nil
	}
	if actual := object.TypeOf(val); !f.Type.Matches(actual) {
		return object.NewError(object.TypeMismatch,
			"field `%s` of `%s` is `%s`, got `%s`", f.Name, decl.Name, f.Type, actual)
	}
	return nil
}

// evalFieldAccess reads a field or binds a tied method to its receiver.
func (in *Interpreter) evalFieldAccess(node *ast.FieldAccess, scope *object.Scope) (object.Object, error) {
	left, err := in.Eval(node.Left, scope)
	if err != nil {
		return nil, err
	}
	layout, ok := left.(*object.Layout)
	if !ok {
		return nil, located(object.NewError(object.UnknownField,
			"cannot read `%s` of a `%s` value", node.Field.Value, object.TypeOf(left)), scope, node)
	}

	name := node.Field.Value
	if layout.Decl != nil {
		if fd, ok := layout.Decl.Method(name); ok {
			if !fd.Tied {
				return nil, located(object.NewError(object.UnknownField,
					"`%s` is not tied to `%s`, call it as %s->%s", name, layout.LayoutID, layout.LayoutID, name), scope, node)
			}
			bm := &object.BoundMethod{Data: fd, Receiver: layout}
			if ident, ok := node.Left.(*ast.Identifier); ok {
				bm.ReceiverName = ident.Value
				bm.ReceiverScope = scope
			}
			return bm, nil
		}
	}

	val, ok := layout.Fields.Get(name)
	if !ok {
		return nil, located(object.NewError(object.UnknownField,
			"layout `%s` has no field `%s`", layout.LayoutID, name), scope, node)
	}
	return val, nil
}

func (in *Interpreter) evalFieldAssignment(node *ast.FieldAssignment, scope *object.Scope) (object.Object, error) {
	left, err := in.Eval(node.Target.Left, scope)
	if err != nil {
		return nil, err
	}
	layout, ok := left.(*object.Layout)
	if !ok {
		return nil, located(object.NewError(object.UnknownField,
			"cannot set `%s` of a `%s` value", node.Target.Field.Value, object.TypeOf(left)), scope, node)
	}

	val, err := in.Eval(node.Value, scope)
	if err != nil {
		return nil, err
	}

	name := node.Target.Field.Value
	if _, ok := layout.Fields.Get(name); !ok {
		return nil, located(object.NewError(object.UnknownField,
			"layout `%s` has no field `%s`", layout.LayoutID, name), scope, node)
	}
	if layout.Decl != nil {
		if f, ok := layout.Decl.Field(name); ok {
			if err := checkField(layout.Decl, f, val); err != nil {
				return nil, located(err, scope, node)
			}
		}
	}

	layout.Fields.Set(name, val)
	return NULL, nil
}

// evalArrowAccess handles Enum->Entry and Layout->method.
func (in *Interpreter) evalArrowAccess(node *ast.ArrowAccess, scope *object.Scope) (object.Object, error) {
	target, member := node.Target.Value, node.Member.Value

	if ed, ok := scope.GetEnum(target); ok {
		if !ed.Has(member) {
			return nil, located(object.NewError(object.UnknownField,
				"enum `%s` has no entry `%s`", target, member), scope, node)
		}
		return &object.Enum{EnumID: target, Entry: member}, nil
	}

	if ld, ok := scope.GetLayout(target); ok {
		fd, ok := ld.Method(member)
		if !ok {
			return nil, located(object.NewError(object.UnknownField,
				"nothing named `%s` is mixed into `%s`", member, target), scope, node)
		}
		return &object.Function{Data: fd}, nil
	}

	return nil, located(object.NewError(object.UndeclaredEnum,
		"`%s` is neither an enum nor a layout", target), scope, node)
}
