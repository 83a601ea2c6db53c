package semant

import (
	"cool-semant/ast"
	"cool-semant/intern"
	"cool-semant/lexer"
)

// Names with fixed meaning in every program.
var (
	Object   = intern.Of("Object")
	IO       = intern.Of("IO")
	Int      = intern.Of("Int")
	Bool     = intern.Of("Bool")
	String   = intern.Of("String")
	SelfType = intern.Of("SELF_TYPE")
	// NoClass is the parent of Object.
	NoClass = intern.Of("_no_class")
	// PrimSlot is the type of the value slot of Int, Bool and String.
	PrimSlot = intern.Of("_prim_slot")
	Main     = intern.Of("Main")

	self = intern.Of("self")
)

// BasicFilename is the filename reported for built-in classes.
const BasicFilename = "<basic class>"

// passThrough names the built-in methods whose dispatch type is the
// receiver's type in the default checking mode.
var passThrough = map[intern.Symbol]bool{
	intern.Of("copy"):       true,
	intern.Of("out_int"):    true,
	intern.Of("out_string"): true,
}

func isPrimitive(t intern.Symbol) bool {
	return t == Int || t == Bool || t == String
}

func isBasic(t intern.Symbol) bool {
	return t == Object || t == IO || isPrimitive(t)
}

type formalSpec struct{ name, typ string }

func builtinMethod(name, ret string, formals ...formalSpec) *ast.Method {
	m := &ast.Method{
		Token:      lexer.Token{Type: lexer.OBJECTID, Literal: name},
		Name:       &ast.ObjectIdentifier{Value: intern.Of(name)},
		ReturnType: &ast.TypeIdentifier{Value: intern.Of(ret)},
		Parameters: []*ast.Formal{},
	}
	for _, f := range formals {
		m.Parameters = append(m.Parameters, &ast.Formal{
			Name: &ast.ObjectIdentifier{Value: intern.Of(f.name)},
			Type: &ast.TypeIdentifier{Value: intern.Of(f.typ)},
		})
	}
	return m
}

func builtinAttr(name string, typ intern.Symbol) *ast.Attribute {
	return &ast.Attribute{
		Token: lexer.Token{Type: lexer.OBJECTID, Literal: name},
		Name:  &ast.ObjectIdentifier{Value: intern.Of(name)},
		Type:  &ast.TypeIdentifier{Value: typ},
	}
}

func builtinClass(name, parent intern.Symbol, features ...ast.Feature) *ast.Class {
	return &ast.Class{
		Token:    lexer.Token{Type: lexer.CLASS, Literal: "class"},
		Name:     &ast.TypeIdentifier{Value: name},
		Parent:   &ast.TypeIdentifier{Value: parent},
		Features: features,
		Filename: BasicFilename,
	}
}

// basicClasses returns fresh declarations of the built-in classes, Object
// first. Their methods have signatures but no bodies.
func basicClasses() []*ast.Class {
	return []*ast.Class{
		builtinClass(Object, NoClass,
			builtinMethod("abort", "Object"),
			builtinMethod("type_name", "String"),
			builtinMethod("copy", "SELF_TYPE"),
		),
		builtinClass(IO, Object,
			builtinMethod("out_string", "SELF_TYPE", formalSpec{"arg", "String"}),
			builtinMethod("out_int", "SELF_TYPE", formalSpec{"arg", "Int"}),
			builtinMethod("in_string", "String"),
			builtinMethod("in_int", "Int"),
		),
		builtinClass(Int, Object,
			builtinAttr("_val", PrimSlot),
		),
		builtinClass(Bool, Object,
			builtinAttr("_val", PrimSlot),
		),
		builtinClass(String, Object,
			builtinAttr("_val", Int),
			builtinAttr("_str_field", PrimSlot),
			builtinMethod("length", "Int"),
			builtinMethod("concat", "String", formalSpec{"arg", "String"}),
			builtinMethod("substr", "String", formalSpec{"arg", "Int"}, formalSpec{"arg2", "Int"}),
		),
	}
}
