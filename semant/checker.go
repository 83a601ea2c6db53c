package semant

import (
	"fmt"

	"cool-semant/ast"
	"cool-semant/intern"
)

// checker holds the state of one type checking pass over a program whose
// class hierarchy is already known to be valid.
type checker struct {
	classes *ClassTable
	opts    Options
	diags   *Diagnostics

	// attrs binds attributes, formals and let/case variables to their
	// declared types.
	attrs *SymbolTable[intern.Symbol, intern.Symbol]
	// methods maps a method name to its declared return type. It is flat:
	// one entry per name across the whole program.
	methods *SymbolTable[intern.Symbol, intern.Symbol]

	frames  map[intern.Symbol]Frame[intern.Symbol, intern.Symbol]
	aborted map[intern.Symbol]bool

	cur *ast.Class
}

func newChecker(classes *ClassTable, opts Options, diags *Diagnostics) *checker {
	return &checker{
		classes: classes,
		opts:    opts,
		diags:   diags,
		attrs:   NewSymbolTable[intern.Symbol, intern.Symbol](),
		methods: NewSymbolTable[intern.Symbol, intern.Symbol](),
		frames:  map[intern.Symbol]Frame[intern.Symbol, intern.Symbol]{},
		aborted: map[intern.Symbol]bool{},
	}
}

func (c *checker) check() {
	c.collectSignatures()
	for _, name := range c.classes.UserClasses() {
		if c.aborted[name] {
			continue
		}
		cls, _ := c.classes.Lookup(name)
		c.checkClass(cls)
	}
}

func (c *checker) errorf(node ast.Node, format string, args ...any) {
	c.diags.Errorf(c.cur.Filename, node.Line(), format, args...)
}

func (c *checker) warnf(node ast.Node, format string, args ...any) {
	c.diags.Warnf(c.cur.Filename, node.Line(), format, args...)
}

func (c *checker) selfClass() intern.Symbol {
	return c.cur.Name.Value
}

// resolve replaces SELF_TYPE with the class being checked.
func (c *checker) resolve(t intern.Symbol) intern.Symbol {
	if t == SelfType {
		return c.selfClass()
	}
	return t
}

func (c *checker) conforms(sub, super intern.Symbol) bool {
	return c.classes.Conforms(sub, super, c.selfClass())
}

func (c *checker) knownType(t intern.Symbol) bool {
	if t == SelfType {
		return true
	}
	_, ok := c.classes.Lookup(t)
	return ok
}

// Signature collection

// collectSignatures fills the method table. User methods go in the outer
// frame and the built-in signatures in the frame above it, so a user method
// never hides a built-in one of the same name.
func (c *checker) collectSignatures() {
	c.methods.EnterScope()
	for _, name := range c.classes.UserClasses() {
		cls, _ := c.classes.Lookup(name)
		c.cur = cls
		c.collectClass(cls)
	}

	c.methods.EnterScope()
	for _, name := range []intern.Symbol{Object, IO, String} {
		cls, _ := c.classes.Lookup(name)
		for _, f := range cls.Features {
			if m, ok := f.(*ast.Method); ok {
				c.addMethod(m)
			}
		}
	}
}

// addMethod registers m unless a method of the same name is already in the
// innermost frame. Classes are walked child first, so an override is seen
// before the method it replaces.
func (c *checker) addMethod(m *ast.Method) {
	if _, ok := c.methods.LookupLocal(m.Name.Value); ok {
		return
	}
	c.methods.AddID(m.Name.Value, m.ReturnType.Value)
}

// collectClass builds the attribute frame of cls by walking from cls up to,
// but not including, Object.
func (c *checker) collectClass(cls *ast.Class) {
	name := cls.Name.Value
	c.attrs.EnterScope()
	defer func() {
		c.frames[name] = c.attrs.TopFrame()
		c.attrs.ExitScope()
	}()

	owners := map[intern.Symbol]intern.Symbol{}
	decls := map[intern.Symbol]*ast.Attribute{}

	for _, owner := range c.classes.Ancestors(name) {
		if owner == Object {
			break
		}
		ancestor, _ := c.classes.Lookup(owner)
		for _, f := range ancestor.Features {
			switch f := f.(type) {
			case *ast.Method:
				c.addMethod(f)
			case *ast.Attribute:
				attr := f.Name.Value
				if attr == self {
					if owner == name {
						c.errorf(f, "'self' cannot be the name of an attribute.")
					}
					c.aborted[name] = true
					return
				}
				if _, dup := c.attrs.LookupLocal(attr); dup {
					// errors belong to the class that declares the clash
					switch {
					case owners[attr] != name:
					case owner == name:
						c.errorf(f, "Attribute %s is multiply defined in class.", attr)
					default:
						c.errorf(decls[attr], "Attribute %s is an attribute of an inherited class.", attr)
					}
					continue
				}
				owners[attr] = owner
				decls[attr] = f
				c.attrs.AddID(attr, f.Type.Value)
			}
		}
	}
}

// Inference

func (c *checker) checkClass(cls *ast.Class) {
	c.cur = cls
	c.attrs.PushFrame(c.frames[cls.Name.Value])
	defer c.attrs.ExitScope()

	for _, f := range cls.Features {
		switch f := f.(type) {
		case *ast.Method:
			c.checkMethod(f)
		case *ast.Attribute:
			c.checkAttribute(f)
		}
	}
}

func (c *checker) checkMethod(m *ast.Method) {
	c.attrs.EnterScope()
	defer c.attrs.ExitScope()

	ret := m.ReturnType.Value
	if c.opts.StrictNames && !c.knownType(ret) {
		c.errorf(m, "Undefined return type %s in method %s.", ret, m.Name.Value)
	}

	for _, formal := range m.Parameters {
		name, typ := formal.Name.Value, formal.Type.Value
		if name == self {
			c.errorf(formal, "'self' cannot be the name of a formal parameter.")
			continue
		}
		if typ == SelfType {
			c.errorf(formal, "Formal parameter %s cannot have type SELF_TYPE.", name)
		} else if c.opts.StrictNames && !c.knownType(typ) {
			c.errorf(formal, "Class %s of formal parameter %s is undefined.", typ, name)
		}
		if _, dup := c.attrs.LookupLocal(name); dup {
			c.errorf(formal, "Formal parameter %s is multiply defined.", name)
			continue
		}
		c.attrs.AddID(name, typ)
	}

	if m.Body == nil {
		return
	}
	got := c.infer(m.Body)
	if c.opts.CheckMethodReturns && !c.conforms(got, ret) {
		c.errorf(m, "Inferred return type %s of method %s does not conform to declared return type %s.",
			got, m.Name.Value, ret)
	}
}

func (c *checker) checkAttribute(a *ast.Attribute) {
	declared := a.Type.Value
	if c.opts.StrictNames && !c.knownType(declared) {
		c.errorf(a, "Class %s of attribute %s is undefined.", declared, a.Name.Value)
	}
	if a.Init == nil {
		return
	}
	got := c.infer(a.Init)
	if !c.conforms(got, declared) {
		c.errorf(a, "Inferred type %s of initialization of attribute %s does not conform to declared type %s.",
			got, a.Name.Value, declared)
	}
}

// infer computes the static type of e and records it on the node.
func (c *checker) infer(e ast.Expression) intern.Symbol {
	t := c.typeOf(e)
	e.SetStaticType(t)
	return t
}

func (c *checker) typeOf(e ast.Expression) intern.Symbol {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return Int
	case *ast.StringLiteral:
		return String
	case *ast.BooleanLiteral:
		return Bool
	case *ast.ObjectIdentifier:
		return c.identifier(e)
	case *ast.Assignment:
		return c.assignment(e)
	case *ast.MethodCall:
		return c.dispatch(e)
	case *ast.IfExpression:
		return c.conditional(e)
	case *ast.WhileExpression:
		return c.loop(e)
	case *ast.BlockExpression:
		return c.block(e)
	case *ast.LetExpression:
		return c.let(e)
	case *ast.CaseExpression:
		return c.typecase(e)
	case *ast.NewExpression:
		return c.newObject(e)
	case *ast.IsVoidExpression:
		c.infer(e.Expression)
		return Bool
	case *ast.NegExpression:
		if t := c.infer(e.Expression); t != Int {
			c.errorf(e, "Argument of '~' has type %s instead of Int.", t)
		}
		return Int
	case *ast.NotExpression:
		if t := c.infer(e.Expression); t != Bool {
			c.errorf(e, "Argument of 'not' has type %s instead of Bool.", t)
		}
		return Bool
	case *ast.BinaryExpression:
		return c.binary(e)
	default:
		panic(fmt.Sprintf("semant: unexpected expression %T", e))
	}
}

func (c *checker) identifier(e *ast.ObjectIdentifier) intern.Symbol {
	if e.Value == self {
		return SelfType
	}
	if t, ok := c.attrs.Lookup(e.Value); ok {
		return t
	}
	if c.opts.StrictNames {
		c.errorf(e, "Undeclared identifier %s.", e.Value)
	} else {
		c.warnf(e, "Undeclared identifier %s is typed Object.", e.Value)
	}
	return Object
}

func (c *checker) assignment(e *ast.Assignment) intern.Symbol {
	got := c.infer(e.Expression)
	if e.Name.Value == self {
		c.errorf(e, "Cannot assign to 'self'.")
		return got
	}

	declared, ok := c.attrs.Lookup(e.Name.Value)
	if !ok {
		if c.opts.StrictNames {
			c.errorf(e, "Undeclared identifier %s.", e.Name.Value)
		} else {
			c.warnf(e, "Undeclared identifier %s is typed Object.", e.Name.Value)
		}
		declared = Object
	}
	if got == declared {
		return declared
	}
	if !c.conforms(got, declared) {
		c.errorf(e, "Type %s of assigned expression does not conform to declared type %s of identifier %s.",
			got, declared, e.Name.Value)
	}
	return declared
}

func (c *checker) dispatch(e *ast.MethodCall) intern.Symbol {
	recv := c.resolve(c.infer(e.Object))
	args := make([]intern.Symbol, len(e.Arguments))
	for i, arg := range e.Arguments {
		args[i] = c.infer(arg)
	}

	from := recv
	if e.Type != nil {
		from = e.Type.Value
		if !c.classes.IsAncestor(from, recv) {
			c.errorf(e, "Expression type %s does not conform to declared static dispatch type %s.", recv, from)
		}
	}

	name := e.Method.Value
	if c.opts.StrictDispatch {
		return c.checkedDispatch(e, recv, from, args)
	}
	if passThrough[name] {
		return recv
	}

	ret, ok := c.methods.Lookup(name)
	if !ok {
		c.errorf(e, "Dispatch to undefined method %s.", name)
		return Object
	}
	if ret == SelfType {
		return recv
	}
	return ret
}

// checkedDispatch resolves the method along the class chain of from and
// checks the call against its formals.
func (c *checker) checkedDispatch(e *ast.MethodCall, recv, from intern.Symbol, args []intern.Symbol) intern.Symbol {
	name := e.Method.Value
	m, _, ok := c.classes.LookupMethod(from, name)
	if !ok {
		c.errorf(e, "Dispatch to undefined method %s.", name)
		return Object
	}

	if len(m.Parameters) != len(args) {
		c.errorf(e, "Method %s called with wrong number of arguments.", name)
	} else {
		for i, formal := range m.Parameters {
			if !c.conforms(args[i], formal.Type.Value) {
				c.errorf(e, "In call of method %s, type %s of parameter %s does not conform to declared type %s.",
					name, args[i], formal.Name.Value, formal.Type.Value)
			}
		}
	}

	if ret := m.ReturnType.Value; ret != SelfType {
		return ret
	}
	return recv
}

func (c *checker) conditional(e *ast.IfExpression) intern.Symbol {
	if t := c.infer(e.Condition); t != Bool {
		c.errorf(e, "Predicate of 'if' does not have type Bool.")
	}
	then := c.infer(e.Consequence)
	otherwise := c.infer(e.Alternative)
	if c.opts.JoinBranches {
		return c.classes.LeastUpperBound(then, otherwise, c.selfClass())
	}
	return Int
}

func (c *checker) loop(e *ast.WhileExpression) intern.Symbol {
	if t := c.infer(e.Condition); t != Bool {
		c.errorf(e, "Loop condition does not have type Bool.")
	}
	c.infer(e.Body)
	if c.opts.JoinBranches {
		return Object
	}
	return Int
}

func (c *checker) block(e *ast.BlockExpression) intern.Symbol {
	last := Object
	for _, expr := range e.Expressions {
		last = c.infer(expr)
	}
	return last
}

func (c *checker) let(e *ast.LetExpression) intern.Symbol {
	name, declared := e.Name.Value, e.Type.Value
	if name == self {
		c.errorf(e, "'self' cannot be bound in a 'let' expression.")
	}
	if c.opts.StrictNames && !c.knownType(declared) {
		c.errorf(e, "Class %s of let-bound identifier %s is undefined.", declared, name)
	}
	if e.Init != nil {
		if got := c.infer(e.Init); !c.conforms(got, declared) {
			c.errorf(e, "Inferred type %s of initialization of %s does not conform to identifier's declared type %s.",
				got, name, declared)
		}
	}

	c.attrs.EnterScope()
	defer c.attrs.ExitScope()
	if name != self {
		c.attrs.AddID(name, declared)
	}
	return c.infer(e.Body)
}

func (c *checker) typecase(e *ast.CaseExpression) intern.Symbol {
	c.infer(e.Expression)

	seen := map[intern.Symbol]bool{}
	var joined intern.Symbol
	for i, br := range e.Cases {
		t := c.branch(br, seen)
		if i == 0 {
			joined = t
		} else {
			joined = c.classes.LeastUpperBound(joined, t, c.selfClass())
		}
	}

	if !c.opts.JoinBranches {
		return Int
	}
	if joined.IsZero() {
		return Object
	}
	return joined
}

func (c *checker) branch(br *ast.Case, seen map[intern.Symbol]bool) intern.Symbol {
	name, typ := br.Name.Value, br.Type.Value
	switch {
	case name == self:
		c.errorf(br, "'self' bound in 'case'.")
	case typ == SelfType:
		c.errorf(br, "Identifier %s declared with type SELF_TYPE in case branch.", name)
	case seen[typ]:
		c.errorf(br, "Duplicate branch %s in case statement.", typ)
	case c.opts.StrictNames && !c.knownType(typ):
		c.errorf(br, "Class %s of case branch is undefined.", typ)
	}
	seen[typ] = true

	c.attrs.EnterScope()
	defer c.attrs.ExitScope()
	if name != self {
		c.attrs.AddID(name, typ)
	}
	return c.infer(br.Expression)
}

func (c *checker) newObject(e *ast.NewExpression) intern.Symbol {
	t := e.Type.Value
	if t == SelfType {
		return SelfType
	}
	if _, ok := c.classes.Lookup(t); ok {
		return t
	}
	if c.opts.StrictNames {
		c.errorf(e, "'new' used with undefined class %s.", t)
	} else {
		c.warnf(e, "'new' used with undefined class %s is typed Object.", t)
	}
	return Object
}

func (c *checker) binary(e *ast.BinaryExpression) intern.Symbol {
	l := c.infer(e.Left)
	r := c.infer(e.Right)

	switch e.Operator {
	case "+", "-", "*", "/":
		if l != Int || r != Int {
			c.errorf(e, "non-Int arguments: %s %s %s", l, e.Operator, r)
		}
		return Int
	case "<", "<=":
		if l != Int || r != Int {
			c.errorf(e, "non-Int arguments: %s %s %s", l, e.Operator, r)
		}
		return Bool
	case "=":
		if (isPrimitive(l) || isPrimitive(r)) && l != r {
			c.errorf(e, "Illegal comparison with a basic type.")
		}
		return Bool
	default:
		panic(fmt.Sprintf("semant: unexpected operator %q", e.Operator))
	}
}
