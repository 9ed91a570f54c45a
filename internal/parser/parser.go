package parser

import (
	"fmt"
	"mosa/internal/ast"
	"mosa/internal/lexer"
	"mosa/internal/token"
	"mosa/internal/util"
	"strconv"
	"strings"
)

const (
	_          int = iota
	LOWEST
	ASSIGN         // p.x = 1
	PIPE           // x ->> f
	REPEAT         // (x) ?: 3
	EQUALS         // ==
	COMPARISON     // > or <
	RANGE          // 0..10
	SUM            // +
	PRODUCT        // *
	PREFIX         // -X or !X
	CALL           // myFunction(X), p.x
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGN,
	token.PIPE:     PIPE,
	token.REPEAT:   REPEAT,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.RANGE:    RANGE,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.PERIOD:   CALL,
	token.LPAREN:   CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	tokenizer lexer.Tokenizer
	src       string // source code here
	errors    []string

	curToken  token.Token
	peekToken token.Token

	// set while parsing if/for conditions so `x {` opens the body
	// instead of a layout literal
	noLayoutLiteral bool

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l lexer.Tokenizer, source string) *Parser {
	p := &Parser{
		tokenizer: l,
		src:       source,
		errors:    []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.ONCE, p.parseOnceExpression)
	p.registerPrefix(token.FOR, p.parseForExpression)
	p.registerPrefix(token.BLOCK, p.parseCodeBlock)
	p.registerPrefix(token.TYPEOF, p.parseTypeofExpression)
	p.registerPrefix(token.DOUBLE_COLON, p.parseFunctionLiteral)
	p.registerPrefix(token.CARET, p.parseBindingAccess)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)

	p.registerInfix(token.RANGE, p.parseRangeExpression)
	p.registerInfix(token.REPEAT, p.parseRepeatExpression)
	p.registerInfix(token.PIPE, p.parsePipeExpression)
	p.registerInfix(token.PERIOD, p.parseFieldAccess)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.ASSIGN, p.parseFieldAssignment)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.tokenizer.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) addError(message string, args ...interface{}) {
	p.addErrorAt(p.curToken.Position, message, args...)
}

func (p *Parser) addErrorAt(pos int, message string, args ...interface{}) {
	line, col := util.GetLineAndColumn(p.src, pos)
	m := fmt.Sprintf(message, args...)
	msg := fmt.Sprintf("[%3d:%2d] %s", line, col, m)
	p.errors = append(p.errors, msg)
}

func (p *Parser) peekError(t token.TokenType) {
	p.addErrorAt(p.peekToken.Position, "expected next token to be %s, got %s instead", t, p.peekToken.Type)
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	p.addError("no prefix parse function for %s found", t)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	} else {
		p.peekError(t)
		return false
	}
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.ILLEGAL) {
			p.addError("illegal token %q", p.curToken.Literal)
			break
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.SEMICOLON:
		return nil
	case token.LET, token.CONST, token.IMMUT:
		return p.parseVariableDeclaration()
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.ENUM:
		return p.parseEnumDeclaration()
	case token.LAYOUT:
		return p.parseLayoutDeclaration()
	case token.MIX:
		if mix := p.parseMixStatement(""); mix != nil {
			return mix
		}
		return nil
	case token.EXP:
		return p.parseExport()
	case token.USE:
		return p.parseUse()
	default:
		if stmt := p.parseExpressionStatement(); stmt != nil {
			return stmt
		}
		return nil
	}
}

func (p *Parser) parseVariableDeclaration() ast.Statement {
	decl := &ast.VariableDeclaration{Token: p.curToken}

	if p.curTokenIs(token.IMMUT) {
		decl.Immutable = true
		if !p.expectPeek(token.LET) {
			return nil
		}
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		decl.Type = p.parseType()
		if decl.Type == nil {
			return nil
		}
	} else if decl.Immutable {
		p.addErrorAt(p.peekToken.Position, "cannot declare an immutable without a type")
		return nil
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	decl.Value = p.parseExpression(LOWEST)
	if decl.Value == nil {
		return nil
	}

	return decl
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	switch {
	case p.peekTokenIs(token.ASSIGN):
		p.nextToken()
		return p.parseAssignmentExpression(ident)
	case p.peekTokenIs(token.ARROW):
		p.nextToken()
		access := &ast.ArrowAccess{Token: p.curToken, Target: ident}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		access.Member = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		return access
	case p.peekTokenIs(token.LBRACE) && !p.noLayoutLiteral:
		p.nextToken()
		return p.parseLayoutLiteral(ident)
	}

	return ident
}

func (p *Parser) parseAssignmentExpression(left *ast.Identifier) ast.Expression {
	expression := &ast.AssignmentExpression{Token: left.Token, Name: left}

	p.nextToken()
	expression.Value = p.parseExpression(LOWEST)
	if expression.Value == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseFieldAssignment(left ast.Expression) ast.Expression {
	target, ok := left.(*ast.FieldAccess)
	if !ok {
		p.addError("cannot assign to %s", left.String())
		return nil
	}
	expression := &ast.FieldAssignment{Token: p.curToken, Target: target}

	p.nextToken()
	expression.Value = p.parseExpression(LOWEST)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	lit := &ast.NumberLiteral{Token: p.curToken}

	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addError("could not parse %q as number", p.curToken.Literal)
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.Boolean{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()

	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}

	return expression
}

func (p *Parser) parseRangeExpression(left ast.Expression) ast.Expression {
	expression := &ast.RangeExpression{Token: p.curToken, Start: left}

	p.nextToken()
	expression.End = p.parseExpression(RANGE)
	if expression.End == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseRepeatExpression(left ast.Expression) ast.Expression {
	expression := &ast.RepeatExpression{Token: p.curToken, Body: left}

	p.nextToken()
	expression.Count = p.parseExpression(REPEAT)
	if expression.Count == nil {
		return nil
	}
	return expression
}

// x ->> f is sugar for f(x)
func (p *Parser) parsePipeExpression(left ast.Expression) ast.Expression {
	tok := p.curToken

	p.nextToken()
	fn := p.parseExpression(PIPE)
	if fn == nil {
		return nil
	}
	return &ast.CallExpression{Token: tok, Function: fn, Arguments: []ast.Expression{left}}
}

func (p *Parser) parseFieldAccess(left ast.Expression) ast.Expression {
	access := &ast.FieldAccess{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	access.Field = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return access
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	saved := p.noLayoutLiteral
	p.noLayoutLiteral = false
	exp := p.parseExpression(LOWEST)
	p.noLayoutLiteral = saved

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

// parseCondition parses an expression that is directly followed by a block.
func (p *Parser) parseCondition() ast.Expression {
	saved := p.noLayoutLiteral
	p.noLayoutLiteral = true
	exp := p.parseExpression(LOWEST)
	p.noLayoutLiteral = saved
	return exp
}

func (p *Parser) parseIfExpression() ast.Expression {
	expression := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	expression.Condition = p.parseCondition()
	if expression.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	expression.Consequence = p.parseBlockStatement()

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()

		if p.peekTokenIs(token.IF) {
			p.nextToken()
			elseIf := p.parseIfExpression()
			if elseIf == nil {
				return nil
			}
			expression.Alternative = &ast.BlockStatement{
				Token: p.curToken,
				Statements: []ast.Statement{
					&ast.ExpressionStatement{Token: elseIf.(*ast.IfExpression).Token, Expression: elseIf},
				},
			}
		} else if !p.expectPeek(token.LBRACE) {
			return nil
		} else {
			expression.Alternative = p.parseBlockStatement()
		}
	}

	return expression
}

func (p *Parser) parseOnceExpression() ast.Expression {
	expression := &ast.OnceExpression{Token: p.curToken}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(token.IF) {
			return nil
		}
		branch := p.parseIfExpression()
		if branch == nil {
			return nil
		}
		ifExp := branch.(*ast.IfExpression)
		if ifExp.Alternative != nil {
			p.addErrorAt(ifExp.Token.Position, "branches of once cannot have an else")
			return nil
		}
		expression.Branches = append(expression.Branches, ifExp)
	}
	p.nextToken() // the closing }

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		expression.Alternative = p.parseBlockStatement()
	}

	return expression
}

func (p *Parser) parseForExpression() ast.Expression {
	expression := &ast.ForExpression{Token: p.curToken}

	p.nextToken()
	expression.Iterable = p.parseCondition()
	if expression.Iterable == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlockStatement()

	return expression
}

func (p *Parser) parseCodeBlock() ast.Expression {
	block := &ast.CodeBlock{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	block.Body = p.parseBlockStatement()
	return block
}

func (p *Parser) parseTypeofExpression() ast.Expression {
	expression := &ast.TypeofExpression{Token: p.curToken}
	p.nextToken()
	expression.Value = p.parseExpression(PREFIX)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseBindingAccess() ast.Expression {
	access := &ast.BindingAccess{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	access.Name = p.curToken.Literal
	return access
}

func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	saved := p.noLayoutLiteral
	p.noLayoutLiteral = false
	defer func() { p.noLayoutLiteral = saved }()

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.ILLEGAL) {
			p.addError("illegal token %q", p.curToken.Literal)
			return block
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.addError("expected } to close the block opened at %s", p.position(block.Token.Position))
	}

	return block
}

func (p *Parser) position(pos int) string {
	line, col := util.GetLineAndColumn(p.src, pos)
	return fmt.Sprintf("%d:%d", line, col)
}

// parseType parses `nul`? NAME (`<` type, ... `>`)? starting at the current token.
func (p *Parser) parseType() *ast.TypeNode {
	t := &ast.TypeNode{Token: p.curToken}

	if p.curTokenIs(token.NUL) {
		t.Nullable = true
		p.nextToken()
	}

	switch p.curToken.Type {
	case token.IDENT, token.FUNCTION:
		t.Name = p.curToken.Literal
	default:
		p.addError("expected a type name, got %s", p.curToken.Type)
		return nil
	}

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		for {
			p.nextToken()
			g := p.parseType()
			if g == nil {
				return nil
			}
			t.Generics = append(t.Generics, g)
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.GT) {
			return nil
		}
	}

	return t
}

func (p *Parser) parseFunctionDeclaration() ast.Statement {
	fn := &ast.FunctionDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, ret, body, ok := p.parseFunctionRest()
	if !ok {
		return nil
	}
	fn.Parameters, fn.ReturnType, fn.Body = params, ret, body
	return fn
}

func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	params, ret, body, ok := p.parseFunctionRest()
	if !ok {
		return nil
	}
	lit.Parameters, lit.ReturnType, lit.Body = params, ret, body
	return lit
}

// parseFunctionRest parses `(params) -> T { body }` with the current token on '('.
// Both `-> {` and a bare `{` declare a null return type.
func (p *Parser) parseFunctionRest() ([]*ast.FunctionParameter, *ast.TypeNode, *ast.BlockStatement, bool) {
	params := p.parseFunctionParameters()
	if params == nil {
		return nil, nil, nil, false
	}

	var ret *ast.TypeNode
	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		if !p.peekTokenIs(token.LBRACE) {
			p.nextToken()
			ret = p.parseType()
			if ret == nil {
				return nil, nil, nil, false
			}
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil, nil, nil, false
	}

	return params, ret, p.parseBlockStatement(), true
}

func (p *Parser) parseFunctionParameters() []*ast.FunctionParameter {
	params := []*ast.FunctionParameter{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		param := &ast.FunctionParameter{
			Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal},
		}
		if !p.expectPeek(token.COLON) {
			p.addError("parameter %s needs a type", param.Name.Value)
			return nil
		}
		p.nextToken()
		param.Type = p.parseType()
		if param.Type == nil {
			return nil
		}
		params = append(params, param)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return params
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	var list []ast.Expression

	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}

	saved := p.noLayoutLiteral
	p.noLayoutLiteral = false
	defer func() { p.noLayoutLiteral = saved }()

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil, false
	}
	list = append(list, first)

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		next := p.parseExpression(LOWEST)
		if next == nil {
			return nil, false
		}
		list = append(list, next)
	}

	if !p.expectPeek(end) {
		return nil, false
	}

	return list, true
}

func (p *Parser) parseEnumDeclaration() ast.Statement {
	decl := &ast.EnumDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		decl.Entries = append(decl.Entries, p.curToken.Literal)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken()

	return decl
}

func (p *Parser) parseLayoutDeclaration() ast.Statement {
	decl := &ast.LayoutDeclaration{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		field := &ast.LayoutField{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if !p.expectPeek(token.COLON) {
			p.addError("layout field %s needs a type", field.Name.Value)
			return nil
		}
		p.nextToken()
		field.Type = p.parseType()
		if field.Type == nil {
			return nil
		}
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			field.Default = p.parseExpression(LOWEST)
			if field.Default == nil {
				return nil
			}
		}
		decl.Fields = append(decl.Fields, field)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken()

	if p.peekTokenIs(token.MIX) {
		p.nextToken()
		mix := p.parseMixStatement(decl.Name.Value)
		if mix == nil {
			return nil
		}
		decl.Mix = mix
	}

	return decl
}

// parseMixStatement parses `mix Name { ... }`. `@` stands for the layout
// declared right before, passed in as self.
func (p *Parser) parseMixStatement(self string) *ast.MixStatement {
	mix := &ast.MixStatement{Token: p.curToken}

	switch {
	case p.peekTokenIs(token.AT):
		p.nextToken()
		if self == "" {
			p.addError("mix @ is only allowed right after a layout declaration")
			return nil
		}
		mix.Layout = &ast.Identifier{Token: p.curToken, Value: self}
	case p.peekTokenIs(token.IDENT):
		p.nextToken()
		mix.Layout = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
	default:
		p.peekError(token.IDENT)
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		tied := false
		if p.peekTokenIs(token.TIED) {
			p.nextToken()
			tied = true
		}
		if !p.expectPeek(token.FUNCTION) {
			return nil
		}
		fn := p.parseFunctionDeclaration()
		if fn == nil {
			return nil
		}
		decl := fn.(*ast.FunctionDeclaration)
		decl.Tied = tied
		mix.Functions = append(mix.Functions, decl)
	}
	p.nextToken()

	return mix
}

func (p *Parser) parseExport() ast.Statement {
	p.nextToken()

	switch p.curToken.Type {
	case token.FUNCTION:
		if fn, ok := p.parseFunctionDeclaration().(*ast.FunctionDeclaration); ok {
			fn.Exported = true
			return fn
		}
	case token.LAYOUT:
		if l, ok := p.parseLayoutDeclaration().(*ast.LayoutDeclaration); ok {
			l.Exported = true
			return l
		}
	case token.ENUM:
		if e, ok := p.parseEnumDeclaration().(*ast.EnumDeclaration); ok {
			e.Exported = true
			return e
		}
	default:
		p.addError("only fn, layout and enum can be exported, got %s", p.curToken.Type)
	}
	return nil
}

func (p *Parser) parseUse() ast.Statement {
	tok := p.curToken

	if p.peekTokenIs(token.NATIVE) {
		p.nextToken()
		if !p.expectPeek(token.FUNCTION) {
			return nil
		}
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		use := &ast.UseNative{Token: tok, Name: p.curToken.Literal}
		if !p.expectPeek(token.HASH) {
			return nil
		}
		if !p.expectPeek(token.STRING) {
			return nil
		}
		use.Path = p.curToken.Literal
		return use
	}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	segments := []string{p.curToken.Literal}
	for p.peekTokenIs(token.COLON) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		segments = append(segments, p.curToken.Literal)
	}

	if !p.expectPeek(token.TILDE_ARROW) {
		return nil
	}
	if !p.expectPeek(token.IDENT) {
		return nil
	}

	return &ast.UseModule{Token: tok, Path: strings.Join(segments, ":"), Symbol: p.curToken.Literal}
}

func (p *Parser) parseLayoutLiteral(name *ast.Identifier) ast.Expression {
	lit := &ast.LayoutLiteral{Token: name.Token, Name: name}

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		fv := &ast.FieldValue{Name: &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		fv.Value = p.parseExpression(LOWEST)
		if fv.Value == nil {
			return nil
		}
		lit.Fields = append(lit.Fields, fv)

		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken()

	return lit
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
