package ast

import (
	"bytes"
	"mosa/internal/token"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
	// Pos is the byte offset of the node's first token in its source file.
	Pos() int
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	} else {
		return ""
	}
}

func (p *Program) Pos() int {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return 0
}

func (p *Program) String() string {
	var out bytes.Buffer

	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}

	return out.String()
}

// TypeNode is a type annotation as written in source: `num`, `nul str`, `iter<num>`.
type TypeNode struct {
	Token    token.Token
	Name     string
	Nullable bool
	Generics []*TypeNode
}

func (t *TypeNode) TokenLiteral() string { return t.Token.Literal }
func (t *TypeNode) Pos() int             { return t.Token.Position }
func (t *TypeNode) String() string {
	var out bytes.Buffer
	if t.Nullable {
		out.WriteString("nul ")
	}
	out.WriteString(t.Name)
	if len(t.Generics) > 0 {
		gs := []string{}
		for _, g := range t.Generics {
			gs = append(gs, g.String())
		}
		out.WriteString("<" + strings.Join(gs, ", ") + ">")
	}
	return out.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) Pos() int             { return es.Token.Position }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

type VariableDeclaration struct {
	Token     token.Token // the token.LET, token.CONST or token.IMMUT token
	Immutable bool
	Name      *Identifier
	Type      *TypeNode // nil when the type is inferred from Value
	Value     Expression
}

func (vd *VariableDeclaration) statementNode()       {}
func (vd *VariableDeclaration) TokenLiteral() string { return vd.Token.Literal }
func (vd *VariableDeclaration) Pos() int             { return vd.Token.Position }
func (vd *VariableDeclaration) String() string {
	var out bytes.Buffer
	if vd.Immutable {
		out.WriteString("immut ")
	}
	out.WriteString("let ")
	out.WriteString(vd.Name.String())
	if vd.Type != nil {
		out.WriteString(": " + vd.Type.String())
	}
	out.WriteString(" = ")
	if vd.Value != nil {
		out.WriteString(vd.Value.String())
	}
	return out.String()
}

type AssignmentExpression struct {
	Token token.Token // the identifier token
	Name  *Identifier
	Value Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) Pos() int             { return ae.Token.Position }
func (ae *AssignmentExpression) String() string {
	return ae.Name.String() + " = " + ae.Value.String()
}

// FieldAssignment writes through a layout handle: `p.x = 3`.
type FieldAssignment struct {
	Token  token.Token // the '=' token
	Target *FieldAccess
	Value  Expression
}

func (fa *FieldAssignment) expressionNode()      {}
func (fa *FieldAssignment) TokenLiteral() string { return fa.Token.Literal }
func (fa *FieldAssignment) Pos() int             { return fa.Target.Pos() }
func (fa *FieldAssignment) String() string {
	return fa.Target.String() + " = " + fa.Value.String()
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) Pos() int             { return i.Token.Position }
func (i *Identifier) String() string       { return i.Value }

type Boolean struct {
	Token token.Token
	Value bool
}

func (b *Boolean) expressionNode()      {}
func (b *Boolean) TokenLiteral() string { return b.Token.Literal }
func (b *Boolean) Pos() int             { return b.Token.Position }
func (b *Boolean) String() string       { return b.Token.Literal }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (nl *NumberLiteral) expressionNode()      {}
func (nl *NumberLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLiteral) Pos() int             { return nl.Token.Position }
func (nl *NumberLiteral) String() string       { return nl.Token.Literal }

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()      {}
func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Pos() int             { return sl.Token.Position }
func (sl *StringLiteral) String() string       { return "\"" + sl.Value + "\"" }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) Pos() int             { return pe.Token.Position }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) Pos() int             { return ie.Left.Pos() }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// RangeExpression is `a..b`.
type RangeExpression struct {
	Token token.Token // the '..' token
	Start Expression
	End   Expression
}

func (re *RangeExpression) expressionNode()      {}
func (re *RangeExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RangeExpression) Pos() int             { return re.Start.Pos() }
func (re *RangeExpression) String() string {
	return "(" + re.Start.String() + ".." + re.End.String() + ")"
}

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) expressionNode()      {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) Pos() int             { return bs.Token.Position }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer
	out.WriteString("{ ")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString("; ")
	}
	out.WriteString("}")
	return out.String()
}

// CodeBlock is `block { ... }`, evaluated in its own child scope.
type CodeBlock struct {
	Token token.Token // the token.BLOCK token
	Body  *BlockStatement
}

func (cb *CodeBlock) expressionNode()      {}
func (cb *CodeBlock) TokenLiteral() string { return cb.Token.Literal }
func (cb *CodeBlock) Pos() int             { return cb.Token.Position }
func (cb *CodeBlock) String() string       { return "block " + cb.Body.String() }

type IfExpression struct {
	Token       token.Token // The 'if' token
	Condition   Expression
	Consequence *BlockStatement
	Alternative *BlockStatement
}

func (ie *IfExpression) expressionNode()      {}
func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) Pos() int             { return ie.Token.Position }
func (ie *IfExpression) String() string {
	var out bytes.Buffer
	out.WriteString("if ")
	out.WriteString(ie.Condition.String())
	out.WriteString(" ")
	out.WriteString(ie.Consequence.String())
	if ie.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(ie.Alternative.String())
	}
	return out.String()
}

// OnceExpression runs the first branch whose condition holds.
type OnceExpression struct {
	Token       token.Token // The 'once' token
	Branches    []*IfExpression
	Alternative *BlockStatement
}

func (oe *OnceExpression) expressionNode()      {}
func (oe *OnceExpression) TokenLiteral() string { return oe.Token.Literal }
func (oe *OnceExpression) Pos() int             { return oe.Token.Position }
func (oe *OnceExpression) String() string {
	var out bytes.Buffer
	out.WriteString("once { ")
	for _, b := range oe.Branches {
		out.WriteString(b.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	if oe.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(oe.Alternative.String())
	}
	return out.String()
}

type ForExpression struct {
	Token    token.Token // The 'for' token
	Iterable Expression
	Body     *BlockStatement
}

func (fe *ForExpression) expressionNode()      {}
func (fe *ForExpression) TokenLiteral() string { return fe.Token.Literal }
func (fe *ForExpression) Pos() int             { return fe.Token.Position }
func (fe *ForExpression) String() string {
	return "for " + fe.Iterable.String() + " " + fe.Body.String()
}

// RepeatExpression is `(body) ?: count`.
type RepeatExpression struct {
	Token token.Token // the '?:' token
	Body  Expression
	Count Expression
}

func (re *RepeatExpression) expressionNode()      {}
func (re *RepeatExpression) TokenLiteral() string { return re.Token.Literal }
func (re *RepeatExpression) Pos() int             { return re.Body.Pos() }
func (re *RepeatExpression) String() string {
	return "(" + re.Body.String() + ") ?: " + re.Count.String()
}

type BindingAccess struct {
	Token token.Token // the '^' token
	Name  string
}

func (ba *BindingAccess) expressionNode()      {}
func (ba *BindingAccess) TokenLiteral() string { return ba.Token.Literal }
func (ba *BindingAccess) Pos() int             { return ba.Token.Position }
func (ba *BindingAccess) String() string       { return "^" + ba.Name }

type TypeofExpression struct {
	Token token.Token // the 'typeof' token
	Value Expression
}

func (te *TypeofExpression) expressionNode()      {}
func (te *TypeofExpression) TokenLiteral() string { return te.Token.Literal }
func (te *TypeofExpression) Pos() int             { return te.Token.Position }
func (te *TypeofExpression) String() string       { return "typeof " + te.Value.String() }

type FunctionParameter struct {
	Name *Identifier
	Type *TypeNode
}

func (fp *FunctionParameter) String() string {
	return fp.Name.String() + ": " + fp.Type.String()
}

// FunctionDeclaration is `fn name(a: T) -> R { }`. Tied is only meaningful inside a mix.
type FunctionDeclaration struct {
	Token      token.Token // the 'fn' token
	Name       *Identifier
	Parameters []*FunctionParameter
	ReturnType *TypeNode // nil means the function returns null
	Body       *BlockStatement
	Exported   bool
	Tied       bool
}

func (fd *FunctionDeclaration) statementNode()       {}
func (fd *FunctionDeclaration) TokenLiteral() string { return fd.Token.Literal }
func (fd *FunctionDeclaration) Pos() int             { return fd.Token.Position }
func (fd *FunctionDeclaration) String() string {
	var out bytes.Buffer
	if fd.Exported {
		out.WriteString("exp ")
	}
	if fd.Tied {
		out.WriteString("tied ")
	}
	out.WriteString("fn ")
	out.WriteString(fd.Name.String())
	out.WriteString(signature(fd.Parameters, fd.ReturnType))
	out.WriteString(" ")
	out.WriteString(fd.Body.String())
	return out.String()
}

// FunctionLiteral is a lambda: `:: (a: T) -> R { }`.
type FunctionLiteral struct {
	Token      token.Token // the '::' token
	Parameters []*FunctionParameter
	ReturnType *TypeNode
	Body       *BlockStatement
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) Pos() int             { return fl.Token.Position }
func (fl *FunctionLiteral) String() string {
	return ":: " + signature(fl.Parameters, fl.ReturnType) + " " + fl.Body.String()
}

func signature(params []*FunctionParameter, ret *TypeNode) string {
	ps := []string{}
	for _, p := range params {
		ps = append(ps, p.String())
	}
	out := "(" + strings.Join(ps, ", ") + ") ->"
	if ret != nil {
		out += " " + ret.String()
	}
	return out
}

type CallExpression struct {
	Token     token.Token // The '(' token, or '->>' for pipes
	Function  Expression  // Identifier, FunctionLiteral, FieldAccess, ...
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) Pos() int             { return ce.Function.Pos() }
func (ce *CallExpression) String() string {
	args := []string{}
	for _, a := range ce.Arguments {
		args = append(args, a.String())
	}
	return ce.Function.String() + "(" + strings.Join(args, ", ") + ")"
}

type EnumDeclaration struct {
	Token    token.Token // the 'enum' token
	Name     *Identifier
	Entries  []string
	Exported bool
}

func (ed *EnumDeclaration) statementNode()       {}
func (ed *EnumDeclaration) TokenLiteral() string { return ed.Token.Literal }
func (ed *EnumDeclaration) Pos() int             { return ed.Token.Position }
func (ed *EnumDeclaration) String() string {
	prefix := ""
	if ed.Exported {
		prefix = "exp "
	}
	return prefix + "enum " + ed.Name.String() + " { " + strings.Join(ed.Entries, ", ") + " }"
}

type LayoutField struct {
	Name    *Identifier
	Type    *TypeNode
	Default Expression // nil when the field is required at creation
}

func (lf *LayoutField) String() string {
	out := lf.Name.String() + ": " + lf.Type.String()
	if lf.Default != nil {
		out += " = " + lf.Default.String()
	}
	return out
}

type LayoutDeclaration struct {
	Token    token.Token // the 'layout' token
	Name     *Identifier
	Fields   []*LayoutField
	Exported bool
	// Mix is the optional `mix @ { }` written right after the declaration.
	Mix *MixStatement
}

func (ld *LayoutDeclaration) statementNode()       {}
func (ld *LayoutDeclaration) TokenLiteral() string { return ld.Token.Literal }
func (ld *LayoutDeclaration) Pos() int             { return ld.Token.Position }
func (ld *LayoutDeclaration) String() string {
	var out bytes.Buffer
	if ld.Exported {
		out.WriteString("exp ")
	}
	out.WriteString("layout ")
	out.WriteString(ld.Name.String())
	out.WriteString(" { ")
	fs := []string{}
	for _, f := range ld.Fields {
		fs = append(fs, f.String())
	}
	out.WriteString(strings.Join(fs, ", "))
	out.WriteString(" }")
	if ld.Mix != nil {
		out.WriteString(" ")
		out.WriteString(ld.Mix.String())
	}
	return out.String()
}

type MixStatement struct {
	Token     token.Token // the 'mix' token
	Layout    *Identifier
	Functions []*FunctionDeclaration
}

func (ms *MixStatement) statementNode()       {}
func (ms *MixStatement) TokenLiteral() string { return ms.Token.Literal }
func (ms *MixStatement) Pos() int             { return ms.Token.Position }
func (ms *MixStatement) String() string {
	var out bytes.Buffer
	out.WriteString("mix ")
	out.WriteString(ms.Layout.String())
	out.WriteString(" { ")
	for _, f := range ms.Functions {
		out.WriteString(f.String())
		out.WriteString(" ")
	}
	out.WriteString("}")
	return out.String()
}

type FieldValue struct {
	Name  *Identifier
	Value Expression
}

// LayoutLiteral creates an instance: `Point { x: 1, y: 2 }`.
type LayoutLiteral struct {
	Token  token.Token // the layout name token
	Name   *Identifier
	Fields []*FieldValue
}

func (ll *LayoutLiteral) expressionNode()      {}
func (ll *LayoutLiteral) TokenLiteral() string { return ll.Token.Literal }
func (ll *LayoutLiteral) Pos() int             { return ll.Token.Position }
func (ll *LayoutLiteral) String() string {
	fs := []string{}
	for _, f := range ll.Fields {
		fs = append(fs, f.Name.String()+": "+f.Value.String())
	}
	return ll.Name.String() + " { " + strings.Join(fs, ", ") + " }"
}

// FieldAccess is `value.field`.
type FieldAccess struct {
	Token token.Token // the '.' token
	Left  Expression
	Field *Identifier
}

func (fa *FieldAccess) expressionNode()      {}
func (fa *FieldAccess) TokenLiteral() string { return fa.Token.Literal }
func (fa *FieldAccess) Pos() int             { return fa.Left.Pos() }
func (fa *FieldAccess) String() string {
	return fa.Left.String() + "." + fa.Field.String()
}

// ArrowAccess is `Enum->Entry` or `Layout->method`.
type ArrowAccess struct {
	Token  token.Token // the '->' token
	Target *Identifier
	Member *Identifier
}

func (aa *ArrowAccess) expressionNode()      {}
func (aa *ArrowAccess) TokenLiteral() string { return aa.Token.Literal }
func (aa *ArrowAccess) Pos() int             { return aa.Target.Pos() }
func (aa *ArrowAccess) String() string {
	return aa.Target.String() + "->" + aa.Member.String()
}

// UseModule is `use a:b ~> symbol`.
type UseModule struct {
	Token  token.Token // the 'use' token
	Path   string
	Symbol string
}

func (um *UseModule) statementNode()       {}
func (um *UseModule) TokenLiteral() string { return um.Token.Literal }
func (um *UseModule) Pos() int             { return um.Token.Position }
func (um *UseModule) String() string       { return "use " + um.Path + " ~> " + um.Symbol }

// UseNative is `use native fn name#"host:path"`.
type UseNative struct {
	Token token.Token // the 'use' token
	Name  string
	Path  string
}

func (un *UseNative) statementNode()       {}
func (un *UseNative) TokenLiteral() string { return un.Token.Literal }
func (un *UseNative) Pos() int             { return un.Token.Position }
func (un *UseNative) String() string {
	return "use native fn " + un.Name + "#\"" + un.Path + "\""
}
