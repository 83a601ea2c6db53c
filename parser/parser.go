package parser

import (
	"fmt"
	"strconv"

	"cool-semant/ast"
	"cool-semant/intern"
	"cool-semant/lexer"
)

const (
	_ int = iota
	LOWEST
	ASSIGN  // <-
	NOT     // not
	COMPARE // <=, <, =
	SUM     // +, -
	PRODUCT // *, /
	ISVOID  // isvoid
	NEG     // ~
	AT      // @
	DOT     // .
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN: ASSIGN,
	lexer.EQ:     COMPARE,
	lexer.LE:     COMPARE,
	lexer.LT:     COMPARE,
	lexer.PLUS:   SUM,
	lexer.MINUS:  SUM,
	lexer.TIMES:  PRODUCT,
	lexer.DIVIDE: PRODUCT,
	lexer.AT:     AT,
	lexer.DOT:    DOT,
}

var (
	selfName   = intern.Of("self")
	objectName = intern.Of("Object")
)

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l        *lexer.Lexer
	filename string

	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// New creates a parser reading tokens from l. Classes it produces carry
// filename for diagnostics.
func New(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{
		l:              l,
		filename:       filename,
		errors:         []string{},
		prefixParseFns: make(map[lexer.TokenType]prefixParseFn),
		infixParseFns:  make(map[lexer.TokenType]infixParseFn),
	}

	p.nextToken()
	p.nextToken()

	p.registerPrefix(lexer.INT_CONST, p.parseIntegerExpression)
	p.registerPrefix(lexer.STR_CONST, p.parseStringExpression)
	p.registerPrefix(lexer.BOOL_CONST, p.parseBoolExpression)
	p.registerPrefix(lexer.OBJECTID, p.parseObjectIdentifier)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.IF, p.parseIfExpression)
	p.registerPrefix(lexer.WHILE, p.parseWhileExpression)
	p.registerPrefix(lexer.LET, p.parseLetExpression)
	p.registerPrefix(lexer.CASE, p.parseCaseExpression)
	p.registerPrefix(lexer.NEW, p.parseNewExpression)
	p.registerPrefix(lexer.ISVOID, p.parseIsvoidExpression)
	p.registerPrefix(lexer.NOT, p.parseNotExpression)
	p.registerPrefix(lexer.NEG, p.parseNegExpression)
	p.registerPrefix(lexer.LBRACE, p.parseBlockExpression)

	for _, tt := range []lexer.TokenType{lexer.PLUS, lexer.MINUS, lexer.TIMES, lexer.DIVIDE, lexer.LT, lexer.LE, lexer.EQ} {
		p.registerInfix(tt, p.parseInfixExpression)
	}
	p.registerInfix(lexer.ASSIGN, p.parseAssignment)
	p.registerInfix(lexer.DOT, p.parseMethodCall)
	p.registerInfix(lexer.AT, p.parseMethodCall)

	return p
}

func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectAndPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) errorAt(tok lexer.Token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s:%d: %s", p.filename, tok.Line, msg))
}

func (p *Parser) peekError(t lexer.TokenType) {
	if p.peekToken.Type == lexer.ERROR {
		p.errorAt(p.peekToken, "%s", p.peekToken.Literal)
		return
	}
	p.errorAt(p.peekToken, "expected next token to be %v, got %v %q", t, p.peekToken.Type, p.peekToken.Literal)
}

// ParseProgram parses classes until EOF. A class with a syntax error is
// skipped and parsing resumes at the next `class` keyword.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Classes: []*ast.Class{}}

	for !p.curTokenIs(lexer.EOF) {
		class := p.ParseClass()
		if class == nil || !p.expectAndPeek(lexer.SEMI) {
			p.skipToNextClass()
			continue
		}
		prog.Classes = append(prog.Classes, class)
		p.nextToken()
	}

	return prog
}

func (p *Parser) skipToNextClass() {
	p.nextToken()
	for !p.curTokenIs(lexer.EOF) && !p.curTokenIs(lexer.CLASS) {
		p.nextToken()
	}
}

func (p *Parser) typeIdentifier() *ast.TypeIdentifier {
	return &ast.TypeIdentifier{Token: p.curToken, Value: intern.Of(p.curToken.Literal)}
}

func (p *Parser) objectIdentifier() *ast.ObjectIdentifier {
	return &ast.ObjectIdentifier{Token: p.curToken, Value: intern.Of(p.curToken.Literal)}
}

// ParseClass parses `class TYPE [inherits TYPE] { feature; ... }`. A class
// without an inherits clause gets Object as its parent.
func (p *Parser) ParseClass() *ast.Class {
	if !p.curTokenIs(lexer.CLASS) {
		p.errorAt(p.curToken, "expected class, got %s", p.curToken.Type)
		return nil
	}

	c := &ast.Class{Token: p.curToken, Filename: p.filename}

	if !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	c.Name = p.typeIdentifier()

	if p.peekTokenIs(lexer.INHERITS) {
		p.nextToken()
		if !p.expectAndPeek(lexer.TYPEID) {
			return nil
		}
		c.Parent = p.typeIdentifier()
	} else {
		c.Parent = &ast.TypeIdentifier{
			Token: lexer.Token{Type: lexer.TYPEID, Literal: "Object", Line: c.Token.Line},
			Value: objectName,
		}
	}

	if !p.expectAndPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()

	c.Features = []ast.Feature{}
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		feature := p.parseFeature()
		if feature == nil {
			return nil
		}
		c.Features = append(c.Features, feature)

		if !p.expectAndPeek(lexer.SEMI) {
			return nil
		}
		p.nextToken()
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.errorAt(p.curToken, "expected closing brace of class %s", c.Name.Value)
		return nil
	}
	return c
}

func (p *Parser) parseFeature() ast.Feature {
	if !p.curTokenIs(lexer.OBJECTID) {
		p.errorAt(p.curToken, "expected feature name, got %s %q", p.curToken.Type, p.curToken.Literal)
		return nil
	}
	if p.peekTokenIs(lexer.LPAREN) {
		if m := p.parseMethod(); m != nil {
			return m
		}
		return nil
	}
	if a := p.parseAttribute(); a != nil {
		return a
	}
	return nil
}

// id(formals) : TYPE { expr }
func (p *Parser) parseMethod() *ast.Method {
	m := &ast.Method{Token: p.curToken, Name: p.objectIdentifier()}

	p.nextToken() // (
	m.Parameters = []*ast.Formal{}
	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
	} else {
		for {
			if !p.expectAndPeek(lexer.OBJECTID) {
				return nil
			}
			formal := p.parseFormal()
			if formal == nil {
				return nil
			}
			m.Parameters = append(m.Parameters, formal)

			if p.peekTokenIs(lexer.RPAREN) {
				p.nextToken()
				break
			}
			if !p.expectAndPeek(lexer.COMMA) {
				return nil
			}
		}
	}

	if !p.expectAndPeek(lexer.COLON) || !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	m.ReturnType = p.typeIdentifier()

	if !p.expectAndPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken()

	m.Body = p.parseExpression(LOWEST)
	if m.Body == nil || !p.expectAndPeek(lexer.RBRACE) {
		return nil
	}
	return m
}

// id : TYPE, with the current token on id.
func (p *Parser) parseFormal() *ast.Formal {
	f := &ast.Formal{Token: p.curToken, Name: p.objectIdentifier()}
	if !p.expectAndPeek(lexer.COLON) || !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	f.Type = p.typeIdentifier()
	return f
}

// id : TYPE [<- expr]
func (p *Parser) parseAttribute() *ast.Attribute {
	a := &ast.Attribute{Token: p.curToken, Name: p.objectIdentifier()}

	if !p.expectAndPeek(lexer.COLON) || !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	a.Type = p.typeIdentifier()

	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		p.nextToken()
		a.Init = p.parseExpression(LOWEST)
		if a.Init == nil {
			return nil
		}
	}
	return a
}

// parseExpression is the Pratt loop: a prefix parse followed by infix
// parses for every operator binding tighter than precedence.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}

	leftExp := prefix()
	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}
	return leftExp
}

// (expr)
func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectAndPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	exp := &ast.BinaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	exp.Right = p.parseExpression(precedence)
	if exp.Right == nil {
		return nil
	}
	return exp
}

// { expr; ... } with at least one expression. The last semicolon may be
// omitted.
func (p *Parser) parseBlockExpression() ast.Expression {
	be := &ast.BlockExpression{Token: p.curToken, Expressions: []ast.Expression{}}
	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) {
		expr := p.parseExpression(LOWEST)
		if expr == nil {
			return nil
		}
		be.Expressions = append(be.Expressions, expr)

		if p.peekTokenIs(lexer.SEMI) {
			p.nextToken()
		} else if !p.peekTokenIs(lexer.RBRACE) {
			p.peekError(lexer.SEMI)
			return nil
		}
		p.nextToken()
	}

	if len(be.Expressions) == 0 {
		p.errorAt(be.Token, "empty block")
		return nil
	}
	return be
}

// if expr then expr else expr fi
func (p *Parser) parseIfExpression() ast.Expression {
	ife := &ast.IfExpression{Token: p.curToken}

	p.nextToken()
	if ife.Condition = p.parseExpression(LOWEST); ife.Condition == nil || !p.expectAndPeek(lexer.THEN) {
		return nil
	}
	p.nextToken()
	if ife.Consequence = p.parseExpression(LOWEST); ife.Consequence == nil || !p.expectAndPeek(lexer.ELSE) {
		return nil
	}
	p.nextToken()
	if ife.Alternative = p.parseExpression(LOWEST); ife.Alternative == nil || !p.expectAndPeek(lexer.FI) {
		return nil
	}
	return ife
}

// while expr loop expr pool
func (p *Parser) parseWhileExpression() ast.Expression {
	we := &ast.WhileExpression{Token: p.curToken}

	p.nextToken()
	if we.Condition = p.parseExpression(LOWEST); we.Condition == nil || !p.expectAndPeek(lexer.LOOP) {
		return nil
	}
	p.nextToken()
	if we.Body = p.parseExpression(LOWEST); we.Body == nil || !p.expectAndPeek(lexer.POOL) {
		return nil
	}
	return we
}

// let ID : TYPE [<- expr] [, ID : TYPE [<- expr]]* in expr
//
// Each binding becomes its own LetExpression whose body is the next binding,
// so `let a : A, b : B in e` is `let a : A in let b : B in e`.
func (p *Parser) parseLetExpression() ast.Expression {
	letTok := p.curToken
	var bindings []*ast.LetExpression

	for {
		if !p.expectAndPeek(lexer.OBJECTID) {
			return nil
		}
		le := &ast.LetExpression{Token: letTok, Name: p.objectIdentifier()}
		if !p.expectAndPeek(lexer.COLON) || !p.expectAndPeek(lexer.TYPEID) {
			return nil
		}
		le.Type = p.typeIdentifier()

		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken()
			p.nextToken()
			if le.Init = p.parseExpression(LOWEST); le.Init == nil {
				return nil
			}
		}
		bindings = append(bindings, le)

		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectAndPeek(lexer.IN) {
		return nil
	}
	p.nextToken()
	body := p.parseExpression(LOWEST)
	if body == nil {
		return nil
	}

	for i := len(bindings) - 1; i >= 0; i-- {
		bindings[i].Body = body
		body = bindings[i]
	}
	return body
}

// case expr of [ID : TYPE => expr;]+ esac
func (p *Parser) parseCaseExpression() ast.Expression {
	ce := &ast.CaseExpression{Token: p.curToken}

	p.nextToken()
	if ce.Expression = p.parseExpression(LOWEST); ce.Expression == nil || !p.expectAndPeek(lexer.OF) {
		return nil
	}

	ce.Cases = []*ast.Case{}
	for p.peekTokenIs(lexer.OBJECTID) {
		p.nextToken()
		branch := p.parseCase()
		if branch == nil || !p.expectAndPeek(lexer.SEMI) {
			return nil
		}
		ce.Cases = append(ce.Cases, branch)
	}

	if len(ce.Cases) == 0 {
		p.errorAt(ce.Token, "case expression has no branches")
		return nil
	}
	if !p.expectAndPeek(lexer.ESAC) {
		return nil
	}
	return ce
}

func (p *Parser) parseCase() *ast.Case {
	c := &ast.Case{Token: p.curToken, Name: p.objectIdentifier()}

	if !p.expectAndPeek(lexer.COLON) || !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	c.Type = p.typeIdentifier()

	if !p.expectAndPeek(lexer.DARROW) {
		return nil
	}
	p.nextToken()
	if c.Expression = p.parseExpression(LOWEST); c.Expression == nil {
		return nil
	}
	return c
}

// new TYPE
func (p *Parser) parseNewExpression() ast.Expression {
	ne := &ast.NewExpression{Token: p.curToken}
	if !p.expectAndPeek(lexer.TYPEID) {
		return nil
	}
	ne.Type = p.typeIdentifier()
	return ne
}

// isvoid expr
func (p *Parser) parseIsvoidExpression() ast.Expression {
	ie := &ast.IsVoidExpression{Token: p.curToken}
	p.nextToken()
	if ie.Expression = p.parseExpression(ISVOID); ie.Expression == nil {
		return nil
	}
	return ie
}

// not expr
func (p *Parser) parseNotExpression() ast.Expression {
	ne := &ast.NotExpression{Token: p.curToken}
	p.nextToken()
	if ne.Expression = p.parseExpression(NOT); ne.Expression == nil {
		return nil
	}
	return ne
}

// ~expr
func (p *Parser) parseNegExpression() ast.Expression {
	ne := &ast.NegExpression{Token: p.curToken}
	p.nextToken()
	if ne.Expression = p.parseExpression(NEG); ne.Expression == nil {
		return nil
	}
	return ne
}

func (p *Parser) parseBoolExpression() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curToken.Literal[0] == 't'}
}

func (p *Parser) parseIntegerExpression() ast.Expression {
	value, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		p.errorAt(p.curToken, "could not parse integer %q", p.curToken.Literal)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringExpression() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

// ID, or ID(args) which dispatches on self.
func (p *Parser) parseObjectIdentifier() ast.Expression {
	oi := p.objectIdentifier()
	if !p.peekTokenIs(lexer.LPAREN) {
		return oi
	}

	selfTok := p.curToken
	selfTok.Literal = "self"
	call := &ast.MethodCall{
		Token:  p.curToken,
		Object: &ast.ObjectIdentifier{Token: selfTok, Value: selfName},
		Method: oi,
	}
	p.nextToken()
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	return call
}

// .ID(args) or @TYPE.ID(args), with the current token on the . or @.
func (p *Parser) parseMethodCall(object ast.Expression) ast.Expression {
	exp := &ast.MethodCall{Token: p.curToken, Object: object}

	if p.curTokenIs(lexer.AT) {
		if !p.expectAndPeek(lexer.TYPEID) {
			return nil
		}
		exp.Type = p.typeIdentifier()
		if !p.expectAndPeek(lexer.DOT) {
			return nil
		}
	}

	if !p.expectAndPeek(lexer.OBJECTID) {
		return nil
	}
	exp.Method = p.objectIdentifier()

	if !p.expectAndPeek(lexer.LPAREN) {
		return nil
	}
	args, ok := p.parseExpressionList(lexer.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

// parseExpressionList parses comma separated expressions up to end, with the
// current token on the opening delimiter.
func (p *Parser) parseExpressionList(end lexer.TokenType) ([]ast.Expression, bool) {
	exps := []ast.Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return exps, true
	}

	for {
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil, false
		}
		exps = append(exps, exp)
		if !p.peekTokenIs(lexer.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectAndPeek(end) {
		return nil, false
	}
	return exps, true
}

// ID <- expr. Assignment is right associative.
func (p *Parser) parseAssignment(left ast.Expression) ast.Expression {
	identifier, ok := left.(*ast.ObjectIdentifier)
	if !ok {
		p.errorAt(p.curToken, "left side of assignment must be an identifier")
		return nil
	}

	a := &ast.Assignment{Token: p.curToken, Name: identifier}
	p.nextToken()
	if a.Expression = p.parseExpression(ASSIGN - 1); a.Expression == nil {
		return nil
	}
	return a
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

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	if tok.Type == lexer.ERROR {
		p.errorAt(tok, "%s", tok.Literal)
		return
	}
	p.errorAt(tok, "syntax error at or near %s %q", tok.Type, tok.Literal)
}
