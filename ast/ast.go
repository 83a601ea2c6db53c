// Package ast defines the syntax tree produced by the parser and annotated by
// the semantic analyzer. Expressions form a closed set: only the types in this
// file implement Expression.
package ast

import (
	"cool-semant/intern"
	"cool-semant/lexer"
)

type Node interface {
	TokenLiteral() string
	Line() int
}

type Expression interface {
	Node
	expressionNode()
	// StaticType is the type inferred by the checker; zero until visited.
	StaticType() intern.Symbol
	SetStaticType(intern.Symbol)
}

type Feature interface {
	Node
	featureNode()
	FeatureName() intern.Symbol
}

// annotation is the inferred-type slot shared by every expression.
type annotation struct {
	static intern.Symbol
}

func (a *annotation) StaticType() intern.Symbol     { return a.static }
func (a *annotation) SetStaticType(t intern.Symbol) { a.static = t }

type TypeIdentifier struct {
	Token lexer.Token
	Value intern.Symbol
}

func (ti *TypeIdentifier) TokenLiteral() string { return ti.Token.Literal }
func (ti *TypeIdentifier) Line() int            { return ti.Token.Line }

type ObjectIdentifier struct {
	annotation
	Token lexer.Token
	Value intern.Symbol
}

func (oi *ObjectIdentifier) TokenLiteral() string { return oi.Token.Literal }
func (oi *ObjectIdentifier) Line() int            { return oi.Token.Line }
func (oi *ObjectIdentifier) expressionNode()      {}

type Program struct {
	Classes []*Class
}

func (p *Program) TokenLiteral() string { return "" }
func (p *Program) Line() int            { return 0 }

type Class struct {
	Token    lexer.Token
	Name     *TypeIdentifier
	Parent   *TypeIdentifier
	Features []Feature
	Filename string
}

func (c *Class) TokenLiteral() string { return c.Token.Literal }
func (c *Class) Line() int            { return c.Token.Line }

// ParentName returns the declared parent, or the zero symbol when the class
// has none (only the root class).
func (c *Class) ParentName() intern.Symbol {
	if c.Parent == nil {
		return intern.Symbol{}
	}
	return c.Parent.Value
}

type Attribute struct {
	Token lexer.Token
	Name  *ObjectIdentifier
	Type  *TypeIdentifier
	Init  Expression
}

func (a *Attribute) TokenLiteral() string        { return a.Token.Literal }
func (a *Attribute) Line() int                   { return a.Token.Line }
func (a *Attribute) featureNode()                {}
func (a *Attribute) FeatureName() intern.Symbol { return a.Name.Value }

type Method struct {
	Token      lexer.Token
	Name       *ObjectIdentifier
	Parameters []*Formal
	ReturnType *TypeIdentifier
	Body       Expression
}

func (m *Method) TokenLiteral() string        { return m.Token.Literal }
func (m *Method) Line() int                   { return m.Token.Line }
func (m *Method) featureNode()                {}
func (m *Method) FeatureName() intern.Symbol { return m.Name.Value }

type Formal struct {
	Token lexer.Token
	Name  *ObjectIdentifier
	Type  *TypeIdentifier
}

func (f *Formal) TokenLiteral() string { return f.Token.Literal }
func (f *Formal) Line() int            { return f.Token.Line }

type IntegerLiteral struct {
	annotation
	Token lexer.Token
	Value int
}

func (il *IntegerLiteral) TokenLiteral() string { return il.Token.Literal }
func (il *IntegerLiteral) Line() int            { return il.Token.Line }
func (il *IntegerLiteral) expressionNode()      {}

type StringLiteral struct {
	annotation
	Token lexer.Token
	Value string
}

func (sl *StringLiteral) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLiteral) Line() int            { return sl.Token.Line }
func (sl *StringLiteral) expressionNode()      {}

type BooleanLiteral struct {
	annotation
	Token lexer.Token
	Value bool
}

func (bl *BooleanLiteral) TokenLiteral() string { return bl.Token.Literal }
func (bl *BooleanLiteral) Line() int            { return bl.Token.Line }
func (bl *BooleanLiteral) expressionNode()      {}

// Assignment is `Name <- Expression`.
type Assignment struct {
	annotation
	Token      lexer.Token
	Name       *ObjectIdentifier
	Expression Expression
}

func (a *Assignment) TokenLiteral() string { return a.Token.Literal }
func (a *Assignment) Line() int            { return a.Token.Line }
func (a *Assignment) expressionNode()      {}

// MethodCall is a dispatch. Type is set for static dispatch (`e@T.m()`) and
// nil otherwise. A call written without a receiver has a `self` Object.
type MethodCall struct {
	annotation
	Token     lexer.Token
	Object    Expression
	Type      *TypeIdentifier
	Method    *ObjectIdentifier
	Arguments []Expression
}

func (mc *MethodCall) TokenLiteral() string { return mc.Token.Literal }
func (mc *MethodCall) Line() int            { return mc.Token.Line }
func (mc *MethodCall) expressionNode()      {}

type IfExpression struct {
	annotation
	Token       lexer.Token
	Condition   Expression
	Consequence Expression
	Alternative Expression
}

func (ie *IfExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IfExpression) Line() int            { return ie.Token.Line }
func (ie *IfExpression) expressionNode()      {}

type WhileExpression struct {
	annotation
	Token     lexer.Token
	Condition Expression
	Body      Expression
}

func (we *WhileExpression) TokenLiteral() string { return we.Token.Literal }
func (we *WhileExpression) Line() int            { return we.Token.Line }
func (we *WhileExpression) expressionNode()      {}

type BlockExpression struct {
	annotation
	Token       lexer.Token
	Expressions []Expression
}

func (be *BlockExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BlockExpression) Line() int            { return be.Token.Line }
func (be *BlockExpression) expressionNode()      {}

// LetExpression binds a single identifier. The parser nests one
// LetExpression per binding of a multi-binding let.
type LetExpression struct {
	annotation
	Token lexer.Token
	Name  *ObjectIdentifier
	Type  *TypeIdentifier
	Init  Expression
	Body  Expression
}

func (le *LetExpression) TokenLiteral() string { return le.Token.Literal }
func (le *LetExpression) Line() int            { return le.Token.Line }
func (le *LetExpression) expressionNode()      {}

type CaseExpression struct {
	annotation
	Token      lexer.Token
	Expression Expression
	Cases      []*Case
}

func (ce *CaseExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CaseExpression) Line() int            { return ce.Token.Line }
func (ce *CaseExpression) expressionNode()      {}

// Case is one `Name : Type => Expression` branch.
type Case struct {
	Token      lexer.Token
	Name       *ObjectIdentifier
	Type       *TypeIdentifier
	Expression Expression
}

func (c *Case) TokenLiteral() string { return c.Token.Literal }
func (c *Case) Line() int            { return c.Token.Line }

type NewExpression struct {
	annotation
	Token lexer.Token
	Type  *TypeIdentifier
}

func (ne *NewExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NewExpression) Line() int            { return ne.Token.Line }
func (ne *NewExpression) expressionNode()      {}

type IsVoidExpression struct {
	annotation
	Token      lexer.Token
	Expression Expression
}

func (ie *IsVoidExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IsVoidExpression) Line() int            { return ie.Token.Line }
func (ie *IsVoidExpression) expressionNode()      {}

// NegExpression is integer negation `~e`.
type NegExpression struct {
	annotation
	Token      lexer.Token
	Expression Expression
}

func (ne *NegExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NegExpression) Line() int            { return ne.Token.Line }
func (ne *NegExpression) expressionNode()      {}

type NotExpression struct {
	annotation
	Token      lexer.Token
	Expression Expression
}

func (ne *NotExpression) TokenLiteral() string { return ne.Token.Literal }
func (ne *NotExpression) Line() int            { return ne.Token.Line }
func (ne *NotExpression) expressionNode()      {}

// BinaryExpression covers arithmetic (+ - * /), comparison (< <=) and
// equality (=). Operator holds the operator's source spelling.
type BinaryExpression struct {
	annotation
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (be *BinaryExpression) TokenLiteral() string { return be.Token.Literal }
func (be *BinaryExpression) Line() int            { return be.Token.Line }
func (be *BinaryExpression) expressionNode()      {}
