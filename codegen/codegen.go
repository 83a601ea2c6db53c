// Package codegen lays out the classes of a checked program as an LLVM
// module: one struct type per class, a vtable global per class and a
// function declaration per method. Method bodies are not lowered.
package codegen

import (
	"cool-semant/intern"
	"cool-semant/semant"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/pkg/errors"
)

var i8Ptr = types.NewPointer(types.I8)

type CodeGenerator struct {
	// TargetTriple is copied to the generated module when set.
	TargetTriple string

	classes    *semant.ClassTable
	module     *ir.Module
	classTypes map[intern.Symbol]*types.StructType
	layouts    map[intern.Symbol]*ClassInfo
	methods    map[string]*ir.Func
	vtables    map[intern.Symbol]*ir.Global
	strings    map[string]*ir.Global
}

// NewCodeGenerator prepares a generator for the classes of a program that
// passed semantic analysis.
func NewCodeGenerator(classes *semant.ClassTable) *CodeGenerator {
	return &CodeGenerator{
		classes:    classes,
		classTypes: make(map[intern.Symbol]*types.StructType),
		layouts:    make(map[intern.Symbol]*ClassInfo),
		methods:    make(map[string]*ir.Func),
		vtables:    make(map[intern.Symbol]*ir.Global),
		strings:    make(map[string]*ir.Global),
	}
}

func (g *CodeGenerator) Generate() (*ir.Module, error) {
	g.module = ir.NewModule()
	g.module.TargetTriple = g.TargetTriple

	order := g.classes.Order()
	if err := g.checkReachable(order); err != nil {
		return nil, err
	}

	// 1. Compute object layouts and vtable slots.
	g.buildLayouts(order)

	// 2. Declare the class structs, then fill them in so attributes can
	// refer to any class.
	g.declareClassTypes(order)
	g.buildClassTypes(order)

	// 3. Declare one function per method.
	g.declareMethods(order)

	// 4. Construct vtables.
	if err := g.constructVTables(order); err != nil {
		return nil, err
	}

	return g.module, nil
}

func (g *CodeGenerator) checkReachable(order []intern.Symbol) error {
	reachable := make(map[intern.Symbol]bool, len(order))
	for _, name := range order {
		reachable[name] = true
	}
	for _, name := range g.classes.UserClasses() {
		if !reachable[name] {
			return errors.Errorf("class %s does not descend from Object", name)
		}
	}
	return nil
}

func (g *CodeGenerator) declareClassTypes(order []intern.Symbol) {
	for _, name := range order {
		st := types.NewStruct()
		g.module.NewTypeDef(name.String(), st)
		g.classTypes[name] = st
	}
}

func (g *CodeGenerator) buildClassTypes(order []intern.Symbol) {
	for _, name := range order {
		// Start with the vtable pointer field.
		fields := []types.Type{i8Ptr}
		for _, attr := range g.layouts[name].Attributes {
			fields = append(fields, g.convertType(attr.Type, name))
		}
		g.classTypes[name].Fields = fields
	}
}

// convertType maps a Cool type to its LLVM representation inside class
// self. Int and Bool are unboxed, String is a C string and every other
// class is a pointer to its struct.
func (g *CodeGenerator) convertType(typ, self intern.Symbol) types.Type {
	switch typ {
	case semant.Int:
		return types.I32
	case semant.Bool:
		return types.I1
	case semant.String:
		return i8Ptr
	case semant.PrimSlot:
		switch self {
		case semant.Int:
			return types.I32
		case semant.Bool:
			return types.I1
		}
		return i8Ptr
	case semant.SelfType:
		typ = self
	}
	if st, ok := g.classTypes[typ]; ok {
		return types.NewPointer(st)
	}
	return i8Ptr
}

func (g *CodeGenerator) declareMethods(order []intern.Symbol) {
	for _, name := range order {
		for _, slot := range g.layouts[name].Methods {
			if slot.Owner != name {
				continue
			}
			params := []*ir.Param{ir.NewParam("self", types.NewPointer(g.classTypes[name]))}
			for _, formal := range slot.Decl.Parameters {
				params = append(params, ir.NewParam(formal.Name.Value.String(), g.convertType(formal.Type.Value, name)))
			}
			ret := g.convertType(slot.Decl.ReturnType.Value, name)
			g.methods[slot.Impl] = g.module.NewFunc(slot.Impl, ret, params...)
		}
	}
}

func (g *CodeGenerator) constructVTables(order []intern.Symbol) error {
	for _, name := range order {
		info := g.layouts[name]

		var parentVtable constant.Constant
		if parent, ok := g.vtables[info.Parent]; ok {
			parentVtable = constant.NewBitCast(parent, i8Ptr)
		} else {
			parentVtable = constant.NewNull(i8Ptr)
		}

		methodList := make([]constant.Constant, 0, len(info.Methods))
		for _, slot := range info.Methods {
			fn := g.methods[slot.Impl]
			if fn == nil {
				return errors.Errorf("method %s not declared for class %s", slot.Impl, name)
			}
			methodList = append(methodList, constant.NewBitCast(fn, i8Ptr))
		}

		vtableArrayType := types.NewArray(uint64(len(methodList)), i8Ptr)
		vtableType := types.NewStruct(
			i8Ptr,           // class name
			i8Ptr,           // parent vtable
			vtableArrayType, // methods by slot
		)
		vtableInit := constant.NewStruct(vtableType,
			constant.NewBitCast(g.stringConstant(name.String()), i8Ptr),
			parentVtable,
			constant.NewArray(vtableArrayType, methodList...),
		)

		vtable := g.module.NewGlobalDef(name.String()+"_vtable", vtableInit)
		vtable.Immutable = true
		g.vtables[name] = vtable
	}
	return nil
}

func (g *CodeGenerator) stringConstant(s string) *ir.Global {
	if global, ok := g.strings[s]; ok {
		return global
	}
	global := g.module.NewGlobalDef(".str."+s, constant.NewCharArray([]byte(s+"\x00")))
	global.Immutable = true
	g.strings[s] = global
	return global
}

// Layout returns the layout computed for class by the last Generate.
func (g *CodeGenerator) Layout(class intern.Symbol) (*ClassInfo, bool) {
	info, ok := g.layouts[class]
	return info, ok
}

func (g *CodeGenerator) ClassType(class intern.Symbol) *types.StructType {
	return g.classTypes[class]
}

func (g *CodeGenerator) VTable(class intern.Symbol) *ir.Global {
	return g.vtables[class]
}

func (g *CodeGenerator) Method(impl string) *ir.Func {
	return g.methods[impl]
}
