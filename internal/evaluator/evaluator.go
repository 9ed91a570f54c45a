package evaluator

import (
	"log/slog"
	"math"
	"mosa/internal/ast"
	"mosa/internal/modules"
	"mosa/internal/object"

	"github.com/pkg/errors"
)

var (
	NULL  = object.NULL
	TRUE  = object.TRUE
	FALSE = object.FALSE
)

// Binding names set by for and repeat.
const (
	IndexBinding = "index"
	ValueBinding = "value"
)

// Interpreter evaluates one program. Imports are resolved against storage,
// which the loader filled before evaluation starts.
type Interpreter struct {
	program *ast.Program
	storage *modules.Storage
}

func New(program *ast.Program, storage *modules.Storage) *Interpreter {
	if storage == nil {
		storage = modules.NewStorage()
	}
	return &Interpreter{program: program, storage: storage}
}

// EvalProgram runs every statement in scope and returns the value of the last.
func (in *Interpreter) EvalProgram(scope *object.Scope) (object.Object, error) {
	return in.Eval(in.program, scope)
}

// ModuleEvaluator evaluates module sources that share storage. Each module
// scope gets the global declarations before its statements run.
func ModuleEvaluator(storage *modules.Storage) modules.Evaluator {
	return func(program *ast.Program, scope *object.Scope) (object.Object, error) {
		if err := DeclareGlobals(scope); err != nil {
			return nil, err
		}
		return New(program, storage).EvalProgram(scope)
	}
}

// DeclareGlobals adds the names every root scope starts with.
func DeclareGlobals(scope *object.Scope) error {
	return scope.DeclareVariable("null", object.NullType, NULL, true)
}

func (in *Interpreter) Eval(node ast.Node, scope *object.Scope) (object.Object, error) {
	switch node := node.(type) {

	// Statements
	case *ast.Program:
		return in.evalStatements(node.Statements, scope)

	case *ast.BlockStatement:
		return in.evalStatements(node.Statements, scope)

	case *ast.ExpressionStatement:
		return in.Eval(node.Expression, scope)

	case *ast.VariableDeclaration:
		val, err := in.Eval(node.Value, scope)
		if err != nil {
			return nil, err
		}
		declared := object.DataTypeFromNode(node.Type)
		if err := scope.DeclareVariable(node.Name.Value, declared, val, node.Immutable); err != nil {
			return nil, located(err, scope, node)
		}
		return NULL, nil

	case *ast.FunctionDeclaration:
		scope.DeclareFunction(node.Name.Value,
			object.ParametersFromNode(node.Parameters),
			node.Body,
			object.ReturnTypeFromNode(node.ReturnType))
		return NULL, nil

	case *ast.EnumDeclaration:
		scope.DeclareEnum(node.Name.Value, node.Entries)
		return NULL, nil

	case *ast.LayoutDeclaration:
		scope.DeclareLayout(object.NewLayoutDeclaration(node.Name.Value, object.LayoutFieldsFromNode(node)))
		if node.Mix != nil {
			return in.evalMix(node.Mix, scope)
		}
		return NULL, nil

	case *ast.MixStatement:
		return in.evalMix(node, scope)

	case *ast.UseModule:
		return in.evalUseModule(node, scope)

	case *ast.UseNative:
		if _, ok := scope.Natives().Get(node.Path); !ok {
			return nil, located(object.NewError(object.UndeclaredFunction,
				"no native function is registered at `%s`", node.Path), scope, node)
		}
		scope.DefineNativeFunction(node.Name, node.Path)
		return NULL, nil

	// Expressions
	case *ast.NumberLiteral:
		return &object.Number{Value: node.Value}, nil

	case *ast.StringLiteral:
		return &object.String{Value: node.Value}, nil

	case *ast.Boolean:
		return object.NativeBoolToBooleanObject(node.Value), nil

	case *ast.Identifier:
		return in.evalIdentifier(node, scope)

	case *ast.AssignmentExpression:
		val, err := in.Eval(node.Value, scope)
		if err != nil {
			return nil, err
		}
		if err := scope.AssignVariable(node.Name.Value, val); err != nil {
			return nil, located(err, scope, node)
		}
		return NULL, nil

	case *ast.FieldAssignment:
		return in.evalFieldAssignment(node, scope)

	case *ast.PrefixExpression:
		right, err := in.Eval(node.Right, scope)
		if err != nil {
			return nil, err
		}
		return evalPrefixExpression(node.Operator, right), nil

	case *ast.InfixExpression:
		left, err := in.Eval(node.Left, scope)
		if err != nil {
			return nil, err
		}
		right, err := in.Eval(node.Right, scope)
		if err != nil {
			return nil, err
		}
		return evalInfixExpression(node.Operator, left, right), nil

	case *ast.RangeExpression:
		return in.evalRangeExpression(node, scope)

	case *ast.CodeBlock:
		return in.evalStatements(node.Body.Statements, object.NewEnclosedScope(scope))

	case *ast.IfExpression:
		return in.evalIfExpression(node, scope)

	case *ast.OnceExpression:
		return in.evalOnceExpression(node, scope)

	case *ast.ForExpression:
		return in.evalForExpression(node, scope)

	case *ast.RepeatExpression:
		return in.evalRepeatExpression(node, scope)

	case *ast.BindingAccess:
		val, ok := scope.GetBinding(node.Name)
		if !ok {
			return nil, located(object.NewError(object.UnboundBinding,
				"cannot find binding `^%s` in this context", node.Name), scope, node)
		}
		return val, nil

	case *ast.TypeofExpression:
		val, err := in.Eval(node.Value, scope)
		if err != nil {
			return nil, err
		}
		return &object.String{Value: object.TypeOf(val).String()}, nil

	case *ast.FunctionLiteral:
		fd := scope.NewFunction("lambda",
			object.ParametersFromNode(node.Parameters),
			node.Body,
			object.ReturnTypeFromNode(node.ReturnType))
		return &object.Function{Data: fd}, nil

	case *ast.CallExpression:
		return in.evalCallExpression(node, scope)

	case *ast.LayoutLiteral:
		return in.evalLayoutLiteral(node, scope)

	case *ast.FieldAccess:
		return in.evalFieldAccess(node, scope)

	case *ast.ArrowAccess:
		return in.evalArrowAccess(node, scope)
	}

	return nil, errors.Errorf("cannot evaluate node %T", node)
}

func (in *Interpreter) evalStatements(stmts []ast.Statement, scope *object.Scope) (object.Object, error) {
	var result object.Object = NULL
	for _, stmt := range stmts {
		val, err := in.Eval(stmt, scope)
		if err != nil {
			return nil, err
		}
		result = val
	}
	return result, nil
}

func (in *Interpreter) evalIdentifier(node *ast.Identifier, scope *object.Scope) (object.Object, error) {
	if val, ok := scope.ReadVariable(node.Value); ok {
		return val, nil
	}
	if fd, ok := scope.GetFunction(node.Value); ok {
		return &object.Function{Data: fd}, nil
	}
	return nil, located(object.NewError(object.UndeclaredVariable,
		"cannot find `%s` in this scope", node.Value), scope, node)
}

func evalPrefixExpression(operator string, right object.Object) object.Object {
	switch operator {
	case "!":
		return object.Not(right)
	case "-":
		return object.Negate(right)
	}
	return NULL
}

func evalInfixExpression(operator string, left, right object.Object) object.Object {
	switch operator {
	case "+":
		return object.Add(left, right)
	case "-":
		return object.Sub(left, right)
	case "*":
		return object.Mul(left, right)
	case "/":
		return object.Div(left, right)
	case "==":
		return object.NativeBoolToBooleanObject(object.Equals(left, right))
	case "!=":
		return object.NativeBoolToBooleanObject(!object.Equals(left, right))
	case ">":
		return object.Bigger(left, right, false)
	case ">=":
		return object.Bigger(left, right, true)
	case "<":
		return object.Smaller(left, right, false)
	case "<=":
		return object.Smaller(left, right, true)
	}
	return NULL
}

func (in *Interpreter) evalRangeExpression(node *ast.RangeExpression, scope *object.Scope) (object.Object, error) {
	start, err := in.Eval(node.Start, scope)
	if err != nil {
		return nil, err
	}
	end, err := in.Eval(node.End, scope)
	if err != nil {
		return nil, err
	}

	from, okFrom := start.(*object.Number)
	to, okTo := end.(*object.Number)
	if !okFrom || !okTo {
		return NULL, nil
	}

	first, last := math.Floor(from.Value), math.Floor(to.Value)
	if math.IsNaN(first) || math.IsNaN(last) || math.IsInf(first, 0) || math.IsInf(last, 0) {
		return NULL, nil
	}
	n := last - first
	if n >= float64(math.MaxInt) {
		return NULL, nil
	}
	values := []object.Object{}
	for i := 0; i < int(n); i++ {
		values = append(values, &object.Number{Value: first + float64(i)})
	}
	return object.NewIterableOf(values...), nil
}

func (in *Interpreter) evalCondition(cond ast.Expression, scope *object.Scope) (bool, error) {
	val, err := in.Eval(cond, scope)
	if err != nil {
		return false, err
	}
	b, ok := val.(*object.Boolean)
	if !ok {
		return false, located(object.NewError(object.NonBooleanCondition,
			"condition must be a bool, got `%s`", object.TypeOf(val)), scope, cond)
	}
	return b.Value, nil
}

func (in *Interpreter) evalIfExpression(node *ast.IfExpression, scope *object.Scope) (object.Object, error) {
	ok, err := in.evalCondition(node.Condition, scope)
	if err != nil {
		return nil, err
	}
	if ok {
		return in.evalStatements(node.Consequence.Statements, object.NewEnclosedScope(scope))
	}
	if node.Alternative != nil {
		return in.evalStatements(node.Alternative.Statements, object.NewEnclosedScope(scope))
	}
	return NULL, nil
}

// once runs the first branch whose condition holds, else the alternative.
func (in *Interpreter) evalOnceExpression(node *ast.OnceExpression, scope *object.Scope) (object.Object, error) {
	for _, branch := range node.Branches {
		ok, err := in.evalCondition(branch.Condition, scope)
		if err != nil {
			return nil, err
		}
		if ok {
			return in.evalStatements(branch.Consequence.Statements, object.NewEnclosedScope(scope))
		}
	}
	if node.Alternative != nil {
		return in.evalStatements(node.Alternative.Statements, object.NewEnclosedScope(scope))
	}
	return NULL, nil
}

// for shares one child scope between all iterations. A closure created in
// the body sees the bindings of the last iteration.
func (in *Interpreter) evalForExpression(node *ast.ForExpression, scope *object.Scope) (object.Object, error) {
	val, err := in.Eval(node.Iterable, scope)
	if err != nil {
		return nil, err
	}
	iterable, ok := val.(*object.Iterable)
	if !ok {
		return nil, located(object.NewError(object.TypeMismatch,
			"for expects an iterable, got `%s`", object.TypeOf(val)), scope, node.Iterable)
	}

	loopScope := object.NewEnclosedScope(scope)
	for _, pair := range iterable.Pairs {
		loopScope.AssignBinding(IndexBinding, pair.Index)
		loopScope.AssignBinding(ValueBinding, pair.Value)
		if _, err := in.evalStatements(node.Body.Statements, loopScope); err != nil {
			return nil, err
		}
	}
	return NULL, nil
}

func (in *Interpreter) evalRepeatExpression(node *ast.RepeatExpression, scope *object.Scope) (object.Object, error) {
	val, err := in.Eval(node.Count, scope)
	if err != nil {
		return nil, err
	}
	count, ok := val.(*object.Number)
	if !ok {
		return nil, located(object.NewError(object.TypeMismatch,
			"repeat count must be a number, got `%s`", object.TypeOf(val)), scope, node.Count)
	}

	if math.IsNaN(count.Value) {
		return nil, located(object.NewError(object.TypeMismatch,
			"repeat count must be a number, got NaN"), scope, node.Count)
	}

	// an infinite count repeats until the body fails
	times := math.Floor(math.Abs(count.Value))
	loopScope := object.NewEnclosedScope(scope)
	for i := 0.0; i < times; i++ {
		loopScope.AssignBinding(IndexBinding, &object.Number{Value: i})
		if _, err := in.Eval(node.Body, loopScope); err != nil {
			return nil, err
		}
	}
	return NULL, nil
}

func (in *Interpreter) evalMix(node *ast.MixStatement, scope *object.Scope) (object.Object, error) {
	fns := make([]*object.FunctionData, 0, len(node.Functions))
	for _, decl := range node.Functions {
		fns = append(fns, &object.FunctionData{
			Name:       decl.Name.Value,
			Parameters: object.ParametersFromNode(decl.Parameters),
			Body:       decl.Body,
			ReturnType: object.ReturnTypeFromNode(decl.ReturnType),
			Tied:       decl.Tied,
		})
	}
	if err := scope.MixIntoLayout(node.Layout.Value, fns); err != nil {
		return nil, located(err, scope, node)
	}
	slog.Debug("mixed into layout",
		slog.String("layout", node.Layout.Value),
		slog.Int("functions", len(fns)))
	return NULL, nil
}

// evalUseModule resolves the module on first use and copies the requested
// symbol into this scope's import cache.
func (in *Interpreter) evalUseModule(node *ast.UseModule, scope *object.Scope) (object.Object, error) {
	mod, ok := in.storage.Get(node.Path)
	if !ok {
		return nil, located(object.NewError(object.UnknownModule,
			"module `%s` was not loaded", node.Path), scope, node)
	}

	value, err := mod.Resolve(ModuleEvaluator(in.storage), scope.Natives())
	if err != nil {
		return nil, located(err, scope, node)
	}

	export, err := mod.Export(node.Symbol)
	if err != nil {
		return nil, located(err, scope, node)
	}
	scope.Import(node.Symbol, export)
	return value, nil
}

// located attaches the node's position to evaluation errors that do not
// carry one yet.
func located(err error, scope *object.Scope, node ast.Node) error {
	var evalErr *object.EvaluationError
	if errors.As(err, &evalErr) {
		evalErr.At(scope.Module, node.Pos())
	}
	return err
}
