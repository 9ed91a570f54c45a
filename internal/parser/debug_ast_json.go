package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mosa/internal/ast"
	"reflect"
)

// WalkAST recursively traverses an AST and serializes it into a machine-centric map structure.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"type":       "Program",
			"statements": walkStatements(n.Statements),
		}

	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"position":   n.Pos(),
			"expression": WalkAST(n.Expression),
		}

	case *ast.VariableDeclaration:
		return map[string]interface{}{
			"type":      "VariableDeclaration",
			"position":  n.Pos(),
			"immutable": n.Immutable,
			"name":      n.Name.Value,
			"dataType":  walkType(n.Type),
			"value":     WalkAST(n.Value),
		}

	case *ast.AssignmentExpression:
		return map[string]interface{}{
			"type":     "AssignmentExpression",
			"position": n.Pos(),
			"name":     n.Name.Value,
			"value":    WalkAST(n.Value),
		}

	case *ast.FieldAssignment:
		return map[string]interface{}{
			"type":     "FieldAssignment",
			"position": n.Pos(),
			"target":   WalkAST(n.Target),
			"value":    WalkAST(n.Value),
		}

	case *ast.Identifier:
		return map[string]interface{}{
			"type":     "Identifier",
			"position": n.Pos(),
			"value":    n.Value,
		}

	case *ast.NumberLiteral:
		return map[string]interface{}{
			"type":     "NumberLiteral",
			"position": n.Pos(),
			"value":    n.Value,
		}

	case *ast.StringLiteral:
		return map[string]interface{}{
			"type":     "StringLiteral",
			"position": n.Pos(),
			"value":    n.Value,
		}

	case *ast.Boolean:
		return map[string]interface{}{
			"type":     "Boolean",
			"position": n.Pos(),
			"value":    n.Value,
		}

	case *ast.PrefixExpression:
		return map[string]interface{}{
			"type":     "PrefixExpression",
			"position": n.Pos(),
			"operator": n.Operator,
			"right":    WalkAST(n.Right),
		}

	case *ast.InfixExpression:
		return map[string]interface{}{
			"type":     "InfixExpression",
			"position": n.Pos(),
			"operator": n.Operator,
			"left":     WalkAST(n.Left),
			"right":    WalkAST(n.Right),
		}

	case *ast.RangeExpression:
		return map[string]interface{}{
			"type":     "RangeExpression",
			"position": n.Pos(),
			"start":    WalkAST(n.Start),
			"end":      WalkAST(n.End),
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"type":       "BlockStatement",
			"position":   n.Pos(),
			"statements": walkStatements(n.Statements),
		}

	case *ast.CodeBlock:
		return map[string]interface{}{
			"type":     "CodeBlock",
			"position": n.Pos(),
			"body":     WalkAST(n.Body),
		}

	case *ast.IfExpression:
		return map[string]interface{}{
			"type":        "IfExpression",
			"position":    n.Pos(),
			"condition":   WalkAST(n.Condition),
			"consequence": WalkAST(n.Consequence),
			"alternative": WalkAST(n.Alternative),
		}

	case *ast.OnceExpression:
		branches := make([]interface{}, len(n.Branches))
		for i, b := range n.Branches {
			branches[i] = WalkAST(b)
		}
		return map[string]interface{}{
			"type":        "OnceExpression",
			"position":    n.Pos(),
			"branches":    branches,
			"alternative": WalkAST(n.Alternative),
		}

	case *ast.ForExpression:
		return map[string]interface{}{
			"type":     "ForExpression",
			"position": n.Pos(),
			"iterable": WalkAST(n.Iterable),
			"body":     WalkAST(n.Body),
		}

	case *ast.RepeatExpression:
		return map[string]interface{}{
			"type":     "RepeatExpression",
			"position": n.Pos(),
			"body":     WalkAST(n.Body),
			"count":    WalkAST(n.Count),
		}

	case *ast.BindingAccess:
		return map[string]interface{}{
			"type":     "BindingAccess",
			"position": n.Pos(),
			"name":     n.Name,
		}

	case *ast.TypeofExpression:
		return map[string]interface{}{
			"type":     "TypeofExpression",
			"position": n.Pos(),
			"value":    WalkAST(n.Value),
		}

	case *ast.FunctionDeclaration:
		return map[string]interface{}{
			"type":       "FunctionDeclaration",
			"position":   n.Pos(),
			"name":       n.Name.Value,
			"exported":   n.Exported,
			"tied":       n.Tied,
			"parameters": walkParameters(n.Parameters),
			"returnType": walkType(n.ReturnType),
			"body":       WalkAST(n.Body),
		}

	case *ast.FunctionLiteral:
		return map[string]interface{}{
			"type":       "FunctionLiteral",
			"position":   n.Pos(),
			"parameters": walkParameters(n.Parameters),
			"returnType": walkType(n.ReturnType),
			"body":       WalkAST(n.Body),
		}

	case *ast.CallExpression:
		args := make([]interface{}, len(n.Arguments))
		for i, a := range n.Arguments {
			args[i] = WalkAST(a)
		}
		return map[string]interface{}{
			"type":      "CallExpression",
			"position":  n.Pos(),
			"function":  WalkAST(n.Function),
			"arguments": args,
		}

	case *ast.EnumDeclaration:
		return map[string]interface{}{
			"type":     "EnumDeclaration",
			"position": n.Pos(),
			"name":     n.Name.Value,
			"exported": n.Exported,
			"entries":  n.Entries,
		}

	case *ast.LayoutDeclaration:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{
				"name":     f.Name.Value,
				"dataType": walkType(f.Type),
				"default":  WalkAST(f.Default),
			}
		}
		return map[string]interface{}{
			"type":     "LayoutDeclaration",
			"position": n.Pos(),
			"name":     n.Name.Value,
			"exported": n.Exported,
			"fields":   fields,
			"mix":      WalkAST(n.Mix),
		}

	case *ast.MixStatement:
		fns := make([]interface{}, len(n.Functions))
		for i, f := range n.Functions {
			fns[i] = WalkAST(f)
		}
		return map[string]interface{}{
			"type":      "MixStatement",
			"position":  n.Pos(),
			"layout":    n.Layout.Value,
			"functions": fns,
		}

	case *ast.LayoutLiteral:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{
				"name":  f.Name.Value,
				"value": WalkAST(f.Value),
			}
		}
		return map[string]interface{}{
			"type":     "LayoutLiteral",
			"position": n.Pos(),
			"name":     n.Name.Value,
			"fields":   fields,
		}

	case *ast.FieldAccess:
		return map[string]interface{}{
			"type":     "FieldAccess",
			"position": n.Pos(),
			"left":     WalkAST(n.Left),
			"field":    n.Field.Value,
		}

	case *ast.ArrowAccess:
		return map[string]interface{}{
			"type":     "ArrowAccess",
			"position": n.Pos(),
			"target":   n.Target.Value,
			"member":   n.Member.Value,
		}

	case *ast.UseModule:
		return map[string]interface{}{
			"type":     "UseModule",
			"position": n.Pos(),
			"path":     n.Path,
			"symbol":   n.Symbol,
		}

	case *ast.UseNative:
		return map[string]interface{}{
			"type":     "UseNative",
			"position": n.Pos(),
			"name":     n.Name,
			"path":     n.Path,
		}

	default:
		return map[string]interface{}{
			"type":  fmt.Sprintf("%T", node),
			"token": node.TokenLiteral(),
		}
	}
}

func walkStatements(stmts []ast.Statement) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = WalkAST(s)
	}
	return result
}

func walkParameters(params []*ast.FunctionParameter) []interface{} {
	result := make([]interface{}, len(params))
	for i, p := range params {
		result[i] = map[string]interface{}{
			"name":     p.Name.Value,
			"dataType": walkType(p.Type),
		}
	}
	return result
}

func walkType(t *ast.TypeNode) interface{} {
	if t == nil {
		return nil
	}
	return t.String()
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}
