package ast

// Walk visits node and its children depth first. Returning false from fn
// skips the children of that node.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *ExpressionStatement:
		walkExpr(n.Expression, fn)
	case *VariableDeclaration:
		walkExpr(n.Value, fn)
	case *AssignmentExpression:
		walkExpr(n.Value, fn)
	case *FieldAssignment:
		Walk(n.Target, fn)
		walkExpr(n.Value, fn)
	case *PrefixExpression:
		walkExpr(n.Right, fn)
	case *InfixExpression:
		walkExpr(n.Left, fn)
		walkExpr(n.Right, fn)
	case *RangeExpression:
		walkExpr(n.Start, fn)
		walkExpr(n.End, fn)
	case *BlockStatement:
		for _, s := range n.Statements {
			Walk(s, fn)
		}
	case *CodeBlock:
		walkBlock(n.Body, fn)
	case *IfExpression:
		walkExpr(n.Condition, fn)
		walkBlock(n.Consequence, fn)
		walkBlock(n.Alternative, fn)
	case *OnceExpression:
		for _, b := range n.Branches {
			Walk(b, fn)
		}
		walkBlock(n.Alternative, fn)
	case *ForExpression:
		walkExpr(n.Iterable, fn)
		walkBlock(n.Body, fn)
	case *RepeatExpression:
		walkExpr(n.Body, fn)
		walkExpr(n.Count, fn)
	case *TypeofExpression:
		walkExpr(n.Value, fn)
	case *FunctionDeclaration:
		walkBlock(n.Body, fn)
	case *FunctionLiteral:
		walkBlock(n.Body, fn)
	case *CallExpression:
		walkExpr(n.Function, fn)
		for _, a := range n.Arguments {
			walkExpr(a, fn)
		}
	case *LayoutDeclaration:
		for _, f := range n.Fields {
			walkExpr(f.Default, fn)
		}
		if n.Mix != nil {
			Walk(n.Mix, fn)
		}
	case *MixStatement:
		for _, f := range n.Functions {
			Walk(f, fn)
		}
	case *LayoutLiteral:
		for _, f := range n.Fields {
			walkExpr(f.Value, fn)
		}
	case *FieldAccess:
		walkExpr(n.Left, fn)
	}
}

func walkExpr(e Expression, fn func(Node) bool) {
	if e != nil {
		Walk(e, fn)
	}
}

func walkBlock(b *BlockStatement, fn func(Node) bool) {
	if b != nil {
		Walk(b, fn)
	}
}
