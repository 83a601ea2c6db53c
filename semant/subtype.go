package semant

import "cool-semant/intern"

// IsAncestor reports whether ancestor is descendant or one of its
// ancestors. Unknown descendants have no ancestors, and the walk gives up
// after visiting every class once so a cyclic graph cannot hang it.
func (ct *ClassTable) IsAncestor(ancestor, descendant intern.Symbol) bool {
	cur := descendant
	for steps := 0; steps <= len(ct.classes); steps++ {
		if cur == ancestor {
			return true
		}
		c, ok := ct.classes[cur]
		if !ok || cur == Object {
			return false
		}
		cur = c.ParentName()
	}
	return false
}

// Conforms is the subtype test with SELF_TYPE resolved against curClass.
func (ct *ClassTable) Conforms(sub, super, curClass intern.Symbol) bool {
	if super == SelfType {
		return sub == SelfType
	}
	if sub == SelfType {
		sub = curClass
	}
	return ct.IsAncestor(super, sub)
}

// LeastUpperBound returns the closest class that both a and b conform to.
func (ct *ClassTable) LeastUpperBound(a, b, curClass intern.Symbol) intern.Symbol {
	if a == SelfType && b == SelfType {
		return SelfType
	}
	if a == SelfType {
		a = curClass
	}
	if b == SelfType {
		b = curClass
	}
	for _, candidate := range ct.Ancestors(a) {
		if ct.IsAncestor(candidate, b) {
			return candidate
		}
	}
	return Object
}
