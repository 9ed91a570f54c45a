package evaluator

import (
	"mosa/internal/ast"
	"mosa/internal/object"
)

func (in *Interpreter) evalCallExpression(node *ast.CallExpression, scope *object.Scope) (object.Object, error) {
	// natives take their arguments as is, no type checks
	if ident, ok := node.Function.(*ast.Identifier); ok {
		if native, ok := scope.GetNativeFunctionFromIdent(ident.Value); ok {
			args, err := in.evalExpressions(node.Arguments, scope)
			if err != nil {
				return nil, err
			}
			if result := native(args); result != nil {
				return result, nil
			}
			return NULL, nil
		}
	}

	callee, err := in.Eval(node.Function, scope)
	if err != nil {
		return nil, err
	}

	switch fn := callee.(type) {
	case *object.Function:
		return in.applyFunction(fn.Data, nil, node.Arguments, scope, node)

	case *object.BoundMethod:
		receiver := fn.Receiver
		if fn.ReceiverName != "" {
			val, ok := fn.ReceiverScope.ReadVariable(fn.ReceiverName)
			if !ok {
				return nil, located(object.NewError(object.UndeclaredVariable,
					"receiver `%s` of `%s` is no longer declared", fn.ReceiverName, fn.Data.Name), scope, node)
			}
			receiver = val
		}
		return in.applyFunction(fn.Data, []object.Object{receiver}, node.Arguments, scope, node)
	}

	return nil, located(object.NewError(object.NotCallable,
		"`%s` is not a function, it is `%s`", node.Function.String(), object.TypeOf(callee)), scope, node)
}

// applyFunction runs fd in a fresh child of the scope it was declared in.
// Arguments are evaluated in the caller's scope and must have exactly the
// parameter's type. Surplus arguments are not evaluated.
func (in *Interpreter) applyFunction(
	fd *object.FunctionData,
	bound []object.Object,
	args []ast.Expression,
	caller *object.Scope,
	node ast.Node,
) (object.Object, error) {
	need := len(fd.Parameters) - len(bound)
	if len(args) < need {
		return nil, located(object.NewError(object.ArityOrShapeError,
			"`%s` expects %d arguments, got %d", fd.Name, need, len(args)), caller, node)
	}

	callScope := object.NewEnclosedScope(fd.Scope)
	for i, param := range fd.Parameters {
		var arg object.Object
		if i < len(bound) {
			arg = bound[i]
		} else {
			argNode := args[i-len(bound)]
			val, err := in.Eval(argNode, caller)
			if err != nil {
				return nil, err
			}
			arg = val
		}

		actual := object.TypeOf(arg)
		if !param.Type.IsInfer() && !param.Type.Equal(actual) {
			return nil, located(object.NewError(object.TypeMismatch,
				"parameter `%s` of `%s` expects `%s`, got `%s`", param.Name, fd.Name, param.Type, actual), caller, node)
		}
		if err := callScope.DeclareVariable(param.Name, param.Type, arg, true); err != nil {
			return nil, located(err, caller, node)
		}
	}

	result, err := in.evalStatements(fd.Body.Statements, callScope)
	if err != nil {
		return nil, err
	}

	if actual := object.TypeOf(result); !fd.ReturnType.Matches(actual) {
		return nil, located(object.NewError(object.TypeMismatch,
			"`%s` must return `%s`, got `%s`", fd.Name, fd.ReturnType, actual), caller, node)
	}
	return result, nil
}

func (in *Interpreter) evalExpressions(exps []ast.Expression, scope *object.Scope) ([]object.Object, error) {
	result := make([]object.Object, 0, len(exps))
	for _, e := range exps {
		val, err := in.Eval(e, scope)
		if err != nil {
			return nil, err
		}
		result = append(result, val)
	}
	return result, nil
}
