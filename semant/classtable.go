package semant

import (
	"cool-semant/ast"
	"cool-semant/intern"
)

// ClassTable owns every class declaration of a program, built-ins included,
// and validates the inheritance graph while it is built. It is read-only
// once NewClassTable returns.
type ClassTable struct {
	classes map[intern.Symbol]*ast.Class
	// basic classes then accepted user classes, in declaration order
	order []intern.Symbol
	user  []intern.Symbol
}

// NewClassTable installs the built-in classes, then the user classes, and
// records every hierarchy error in diags.
func NewClassTable(classes []*ast.Class, diags *Diagnostics) *ClassTable {
	ct := &ClassTable{classes: map[intern.Symbol]*ast.Class{}}

	for _, c := range basicClasses() {
		ct.install(c)
	}

	for _, c := range classes {
		if c.Parent == nil {
			c.Parent = &ast.TypeIdentifier{Token: c.Token, Value: Object}
		}
		name := c.Name.Value
		switch {
		case name == Object:
			diags.Errorf(c.Filename, c.Line(), "Redefinition of basic class %s.", name)
		case name == SelfType:
			diags.Errorf(c.Filename, c.Line(), "Class name cannot be SELF_TYPE.")
		case ct.classes[name] != nil:
			diags.Errorf(c.Filename, c.Line(), "Class %s is redefined.", name)
		default:
			ct.install(c)
			ct.user = append(ct.user, name)
		}
	}

	if ct.classes[Main] == nil {
		diags.Errorf("", 0, "Class Main is not defined.")
	}

	for _, name := range ct.user {
		c := ct.classes[name]
		parent := c.ParentName()
		switch {
		case parent == Int || parent == Bool || parent == String || parent == SelfType:
			diags.Errorf(c.Filename, c.Line(), "Class %s cannot inherit class %s.", name, parent)
		case ct.classes[parent] == nil:
			diags.Errorf(c.Filename, c.Line(), "Class %s inherits from an undefined class %s.", name, parent)
		}
	}

	for _, name := range ct.user {
		if ct.onCycle(name) {
			c := ct.classes[name]
			diags.Errorf(c.Filename, c.Line(),
				"Class %s, or an ancestor of %s, is involved in an inheritance cycle.", name, name)
		}
	}

	return ct
}

func (ct *ClassTable) install(c *ast.Class) {
	ct.classes[c.Name.Value] = c
	ct.order = append(ct.order, c.Name.Value)
}

// onCycle reports whether following parents from name leads back to name.
// Chains that leave the table or reach Object end the walk.
func (ct *ClassTable) onCycle(name intern.Symbol) bool {
	seen := map[intern.Symbol]bool{}
	for cur := name; !seen[cur]; {
		seen[cur] = true
		c := ct.classes[cur]
		if c == nil || cur == Object {
			return false
		}
		cur = c.ParentName()
		if cur == name {
			return true
		}
	}
	return false
}

// Lookup returns the declaration of name.
func (ct *ClassTable) Lookup(name intern.Symbol) (*ast.Class, bool) {
	c, ok := ct.classes[name]
	return c, ok
}

// Parent returns the declared parent of name. Object's parent is NoClass.
func (ct *ClassTable) Parent(name intern.Symbol) (intern.Symbol, bool) {
	c, ok := ct.classes[name]
	if !ok {
		return intern.Symbol{}, false
	}
	return c.ParentName(), true
}

// IsBasic reports whether name is one of the built-in classes.
func (ct *ClassTable) IsBasic(name intern.Symbol) bool {
	return isBasic(name)
}

// UserClasses lists the accepted user classes in declaration order.
func (ct *ClassTable) UserClasses() []intern.Symbol {
	return ct.user
}

// Ancestors returns name followed by its ancestors up to and including
// Object. The walk stops early at an unknown class and never repeats a
// class.
func (ct *ClassTable) Ancestors(name intern.Symbol) []intern.Symbol {
	var chain []intern.Symbol
	seen := map[intern.Symbol]bool{}
	for cur := name; !seen[cur]; {
		c, ok := ct.classes[cur]
		if !ok {
			break
		}
		seen[cur] = true
		chain = append(chain, cur)
		cur = c.ParentName()
	}
	return chain
}

// Order lists the classes reachable from Object, parents before children
// and siblings in declaration order.
func (ct *ClassTable) Order() []intern.Symbol {
	children := map[intern.Symbol][]intern.Symbol{}
	for _, name := range ct.order {
		if name == Object {
			continue
		}
		parent := ct.classes[name].ParentName()
		children[parent] = append(children[parent], name)
	}

	var out []intern.Symbol
	visited := map[intern.Symbol]bool{}
	var visit func(intern.Symbol)
	visit = func(name intern.Symbol) {
		if visited[name] {
			return
		}
		visited[name] = true
		out = append(out, name)
		for _, child := range children[name] {
			visit(child)
		}
	}
	visit(Object)
	return out
}

// LookupMethod finds the declaration of method along the parent chain of
// class, returning the method and the class that declares it.
func (ct *ClassTable) LookupMethod(class, method intern.Symbol) (*ast.Method, intern.Symbol, bool) {
	for _, name := range ct.Ancestors(class) {
		for _, f := range ct.classes[name].Features {
			if m, ok := f.(*ast.Method); ok && m.Name.Value == method {
				return m, name, true
			}
		}
	}
	return nil, intern.Symbol{}, false
}

// Attributes returns the attributes of class, inherited ones first. An
// attribute redeclared below its first declaration is listed once.
func (ct *ClassTable) Attributes(class intern.Symbol) []*ast.Attribute {
	chain := ct.Ancestors(class)
	var out []*ast.Attribute
	seen := map[intern.Symbol]bool{}
	for i := len(chain) - 1; i >= 0; i-- {
		for _, f := range ct.classes[chain[i]].Features {
			if a, ok := f.(*ast.Attribute); ok && !seen[a.Name.Value] {
				seen[a.Name.Value] = true
				out = append(out, a)
			}
		}
	}
	return out
}
