// Package codegen is the domain-stack boundary named by spec.md §6: it
// maps ast.Type onto llir/llvm/ir/types.Type and emits the function
// signatures of an AnnotatedProgram into an *ir.Module. It stops there
// — lowering statement and expression bodies to IR is explicitly out
// of scope (spec.md §1's non-goal), so every function it declares is
// left bodyless, a forward-declaration skeleton a downstream compiler
// stage would fill in.
//
// Grounded on the teacher's tawa_types.go (the LLVMType wrapper table)
// for the type mapping, and builtins.go/codegen.go for the
// ir.NewFunc/ir.NewParam and GetElementPtr-based struct layout idiom.
// Trimmed: WACC's type system (spec §3) has no floating-point or
// 128-bit integer types, so Float16/32/64/128 and Int16/32/128 have no
// home here and are dropped rather than carried unused.
package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/moneytech/wacc/internal/ast"
)

// LLVMType pairs an llir/llvm type with the struct field layout the
// teacher's GEP-based field access needs; fields is nil for anything
// that isn't a struct.
type LLVMType struct {
	types.Type
	fields map[string]int
}

var (
	Int8    = LLVMType{Type: &types.IntType{BitSize: 8, TypeName: "char"}}
	Int64   = LLVMType{Type: &types.IntType{BitSize: 64, TypeName: "int"}}
	Boolean = LLVMType{Type: &types.IntType{BitSize: 1, TypeName: "bool"}}
	Void    = LLVMType{Type: &types.VoidType{TypeName: "niets"}}

	// StringType models WACC's string as the teacher's String struct:
	// a length-prefixed pointer to bytes, not a bare i8*.
	StringType = &types.StructType{
		TypeName: "string",
		Fields:   []types.Type{Int64.Type, types.NewPointer(Int8.Type)},
	}
)

// TypeTable maps an ast.Type to its llir/llvm representation. structs
// is consulted for TStruct lookups and must be populated (via
// RegisterStructs) before any TStruct is resolved.
type TypeTable struct {
	structs map[string]LLVMType
}

// NewTypeTable builds an empty table; call RegisterStructs before
// resolving any TStruct type.
func NewTypeTable() *TypeTable {
	return &TypeTable{structs: make(map[string]LLVMType)}
}

// RegisterStructs declares every TypeDef's layout up front, so struct
// types can reference each other regardless of definition order.
func (tt *TypeTable) RegisterStructs(defs []ast.Definition) {
	for _, def := range defs {
		td, ok := def.(ast.TypeDef)
		if !ok {
			continue
		}
		fieldTypes := make([]types.Type, len(td.Fields))
		fields := make(map[string]int, len(td.Fields))
		for i, f := range td.Fields {
			fieldTypes[i] = tt.Resolve(f.Type)
			fields[f.Name] = i
		}
		st := &types.StructType{TypeName: td.Name, Fields: fieldTypes}
		tt.structs[td.Name] = LLVMType{Type: st, fields: fields}
	}
}

// Resolve maps t to its llir/llvm/ir/types.Type. Pointers and arrays
// both lower to a flat pointer to the element type: WACC's runtime
// representation for arrays (length-prefixed, heap-allocated) is a
// downstream codegen concern this boundary does not model.
func (tt *TypeTable) Resolve(t ast.Type) types.Type {
	switch v := t.(type) {
	case ast.TInt:
		return Int64.Type
	case ast.TBool:
		return Boolean.Type
	case ast.TChar:
		return Int8.Type
	case ast.TString:
		return types.NewPointer(StringType)
	case ast.TArb:
		return types.NewPointer(types.I8)
	case ast.TArray:
		return types.NewPointer(tt.Resolve(v.Elem))
	case ast.TPair:
		return types.NewPointer(types.NewStruct(tt.Resolve(v.Fst), tt.Resolve(v.Snd)))
	case ast.TPtr:
		return types.NewPointer(tt.Resolve(v.Elem))
	case ast.TStruct:
		lt, ok := tt.structs[v.Name]
		if !ok {
			panic(fmt.Sprintf("codegen: struct type %q resolved before RegisterStructs ran", v.Name))
		}
		return types.NewPointer(lt.Type)
	case ast.TFun:
		params := make([]types.Type, len(v.Params))
		for i, p := range v.Params {
			params[i] = tt.Resolve(p.Type)
		}
		return types.NewFunc(tt.Resolve(v.Ret), params...)
	default:
		panic(fmt.Sprintf("codegen: unhandled type %T", t))
	}
}

// FieldIndex returns the GEP index of field within the struct named
// structName, mirroring the teacher's lookupField.
func (tt *TypeTable) FieldIndex(structName, field string) (int, bool) {
	lt, ok := tt.structs[structName]
	if !ok {
		return 0, false
	}
	idx, ok := lt.fields[field]
	return idx, ok
}

// StructElem computes the field pointer at idx within v, the
// teacher's getStructElm helper: a zero-index GEP followed by the
// field index, which is how llir/llvm addresses a struct member.
func StructElem(b *ir.Block, t types.Type, v value.Value, idx int64) *ir.InstGetElementPtr {
	return b.NewGetElementPtr(t, v,
		constant.NewInt(types.I32, 0),
		constant.NewInt(types.I32, idx),
	)
}

// Skeleton builds an *ir.Module declaring every struct layout and
// function signature in prog, with every function body left empty.
// Global variable definitions are declared as module-level globals
// with a zero initializer; filling them in from GlobalDef.Value is
// body-lowering work this boundary does not do.
func Skeleton(prog *ast.AnnotatedProgram) *ir.Module {
	tt := NewTypeTable()
	tt.RegisterStructs(prog.Definitions)

	m := ir.NewModule()
	for name, lt := range tt.structs {
		m.NewTypeDef(name, lt.Type)
	}

	for _, def := range prog.Definitions {
		switch v := def.(type) {
		case ast.FunDef:
			declareFunc(m, tt, v)
		case ast.GlobalDef:
			declareGlobal(m, tt, v)
		case ast.TypeDef:
			// already handled via RegisterStructs above.
		}
	}
	return m
}

func declareFunc(m *ir.Module, tt *TypeTable, fd ast.FunDef) {
	fun, ok := fd.Decl.Type.(ast.TFun)
	if !ok {
		panic(fmt.Sprintf("codegen: FunDef %q has non-function type %T", fd.Decl.Name, fd.Decl.Type))
	}
	params := make([]*ir.Param, len(fun.Params))
	for i, p := range fun.Params {
		params[i] = ir.NewParam(p.Name, tt.Resolve(p.Type))
	}
	m.NewFunc(fd.Decl.Name, tt.Resolve(fun.Ret), params...)
}

func declareGlobal(m *ir.Module, tt *TypeTable, gd ast.GlobalDef) {
	llt := tt.Resolve(gd.Decl.Type)
	m.NewGlobalDef(gd.Decl.Name, constant.NewZeroInitializer(llt))
}
