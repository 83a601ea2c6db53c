package codegen

import (
	"fmt"
	"slices"

	"cool-semant/ast"
	"cool-semant/intern"
)

// ClassInfo holds the layout and dispatch data for a class.
type ClassInfo struct {
	Name       intern.Symbol
	Parent     intern.Symbol
	Attributes []AttributeInfo
	// Methods is indexed by vtable slot.
	Methods    []MethodInfo
	ObjectSize int
}

// AttributeInfo represents an attribute with its type and field index in
// the object struct. Field 0 holds the vtable pointer.
type AttributeInfo struct {
	Name   intern.Symbol
	Type   intern.Symbol
	Offset int
}

// MethodInfo represents a method with its fixed slot in the vtable.
type MethodInfo struct {
	Name  intern.Symbol
	Owner intern.Symbol
	// Impl is the name of the function filling the slot.
	Impl  string
	Index int
	Decl  *ast.Method
}

// Slot returns the vtable entry of method.
func (ci *ClassInfo) Slot(method intern.Symbol) (MethodInfo, bool) {
	if i := ci.slotIndex(method); i >= 0 {
		return ci.Methods[i], true
	}
	return MethodInfo{}, false
}

func (ci *ClassInfo) slotIndex(method intern.Symbol) int {
	return slices.IndexFunc(ci.Methods, func(m MethodInfo) bool { return m.Name == method })
}

func implName(class, method intern.Symbol) string {
	return fmt.Sprintf("%s_%s", class, method)
}

// buildLayouts computes the layout of every class in order, which must list
// parents before children.
func (g *CodeGenerator) buildLayouts(order []intern.Symbol) {
	for _, name := range order {
		class, _ := g.classes.Lookup(name)
		info := &ClassInfo{Name: name, Parent: class.ParentName()}

		// Attributes come back inherited first, so parent fields keep their
		// index in every subclass.
		for i, attr := range g.classes.Attributes(name) {
			info.Attributes = append(info.Attributes, AttributeInfo{
				Name:   attr.Name.Value,
				Type:   attr.Type.Value,
				Offset: i + 1,
			})
		}
		info.ObjectSize = len(info.Attributes) + 1

		if parent, ok := g.layouts[info.Parent]; ok {
			info.Methods = slices.Clone(parent.Methods)
		}
		for _, feature := range class.Features {
			m, ok := feature.(*ast.Method)
			if !ok {
				continue
			}
			slot := MethodInfo{
				Name:  m.Name.Value,
				Owner: name,
				Impl:  implName(name, m.Name.Value),
				Decl:  m,
			}
			if i := info.slotIndex(slot.Name); i >= 0 {
				// override: keep the parent's slot
				slot.Index = i
				info.Methods[i] = slot
			} else {
				slot.Index = len(info.Methods)
				info.Methods = append(info.Methods, slot)
			}
		}

		g.layouts[name] = info
	}
}
