// Package interchange is the §6 downstream-codegen handoff: JSON
// marshaling for ast.AnnotatedProgram. The sum types in internal/ast
// are closed marker interfaces with no JSON tags of their own, so this
// package hand-rolls a tagged-union wire format ({"kind": "...", ...})
// and converts to/from it explicitly, rather than leaning on
// encoding/json's struct-tag reflection, which has no notion of a
// closed interface.
//
// Grounded on the teacher's typeinfo.go, which also marshals a small
// Go value with encoding/json; repointed here from "embed JSON bytes
// into a compiled binary's global, dlopen it back out of a shared
// object" (impossible without a linker, and codegen is out of scope)
// to "marshal to a file or stream, unmarshal on the other end."
package interchange

import (
	"encoding/json"
	"fmt"

	"github.com/moneytech/wacc/internal/ast"
	"github.com/moneytech/wacc/internal/token"
)

// wireProgram is AnnotatedProgram's JSON shape.
type wireProgram struct {
	Definitions []json.RawMessage    `json:"definitions"`
	Locations   map[string]wireLoc   `json:"locations"`
	Counter     int                  `json:"counter"`
}

type wireLoc struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Marshal converts prog to its wire JSON form.
func Marshal(prog *ast.AnnotatedProgram) ([]byte, error) {
	wp := wireProgram{
		Locations: make(map[string]wireLoc, len(prog.Locations.Locs)),
		Counter:   prog.Locations.Counter(),
	}
	for id, loc := range prog.Locations.Locs {
		wp.Locations[fmt.Sprint(int(id))] = wireLoc{Line: loc.Line, Column: loc.Column}
	}
	for _, def := range prog.Definitions {
		raw, err := marshalDefinition(def)
		if err != nil {
			return nil, err
		}
		wp.Definitions = append(wp.Definitions, raw)
	}
	return json.MarshalIndent(wp, "", "  ")
}

// Unmarshal is Marshal's inverse.
func Unmarshal(data []byte) (*ast.AnnotatedProgram, error) {
	var wp wireProgram
	if err := json.Unmarshal(data, &wp); err != nil {
		return nil, err
	}
	locs := ast.NewLocationData()
	for idStr, loc := range wp.Locations {
		var id int
		if _, err := fmt.Sscan(idStr, &id); err != nil {
			return nil, err
		}
		locs.Save(ast.StatementId(id), token.Position{Line: loc.Line, Column: loc.Column})
	}
	for locs.Counter() < wp.Counter {
		locs.NextID()
	}
	prog := &ast.AnnotatedProgram{Locations: locs}
	for _, raw := range wp.Definitions {
		def, err := unmarshalDefinition(raw)
		if err != nil {
			return nil, err
		}
		prog.Definitions = append(prog.Definitions, def)
	}
	return prog, nil
}

// tagged is the common envelope every node in the wire tree carries.
type tagged struct {
	Kind string `json:"kind"`
}

func marshalTyped(kind string, fields map[string]interface{}) ([]byte, error) {
	m := map[string]interface{}{"kind": kind}
	for k, v := range fields {
		m[k] = v
	}
	return json.Marshal(m)
}

func kindOf(raw json.RawMessage) (string, error) {
	var t tagged
	if err := json.Unmarshal(raw, &t); err != nil {
		return "", err
	}
	return t.Kind, nil
}

// ---------------------------------------------------------------------------
// Type
// ---------------------------------------------------------------------------

func marshalType(t ast.Type) (json.RawMessage, error) {
	switch v := t.(type) {
	case ast.TInt:
		return marshalTyped("TInt", nil)
	case ast.TBool:
		return marshalTyped("TBool", nil)
	case ast.TChar:
		return marshalTyped("TChar", nil)
	case ast.TString:
		return marshalTyped("TString", nil)
	case ast.TArb:
		return marshalTyped("TArb", nil)
	case ast.TArray:
		elem, err := marshalType(v.Elem)
		if err != nil {
			return nil, err
		}
		return marshalTyped("TArray", map[string]interface{}{"elem": elem})
	case ast.TPair:
		fst, err := marshalType(v.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := marshalType(v.Snd)
		if err != nil {
			return nil, err
		}
		return marshalTyped("TPair", map[string]interface{}{"fst": fst, "snd": snd})
	case ast.TPtr:
		elem, err := marshalType(v.Elem)
		if err != nil {
			return nil, err
		}
		return marshalTyped("TPtr", map[string]interface{}{"elem": elem})
	case ast.TStruct:
		return marshalTyped("TStruct", map[string]interface{}{"name": v.Name})
	case ast.TFun:
		ret, err := marshalType(v.Ret)
		if err != nil {
			return nil, err
		}
		params, err := marshalDeclarations(v.Params)
		if err != nil {
			return nil, err
		}
		return marshalTyped("TFun", map[string]interface{}{"ret": ret, "params": params})
	default:
		return nil, fmt.Errorf("interchange: unhandled type %T", t)
	}
}

func unmarshalType(raw json.RawMessage) (ast.Type, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "TInt":
		return ast.TInt{}, nil
	case "TBool":
		return ast.TBool{}, nil
	case "TChar":
		return ast.TChar{}, nil
	case "TString":
		return ast.TString{}, nil
	case "TArb":
		return ast.TArb{}, nil
	case "TArray":
		var w struct{ Elem json.RawMessage `json:"elem"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elem, err := unmarshalType(w.Elem)
		if err != nil {
			return nil, err
		}
		return ast.TArray{Elem: elem}, nil
	case "TPair":
		var w struct {
			Fst json.RawMessage `json:"fst"`
			Snd json.RawMessage `json:"snd"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fst, err := unmarshalType(w.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := unmarshalType(w.Snd)
		if err != nil {
			return nil, err
		}
		return ast.TPair{Fst: fst, Snd: snd}, nil
	case "TPtr":
		var w struct{ Elem json.RawMessage `json:"elem"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elem, err := unmarshalType(w.Elem)
		if err != nil {
			return nil, err
		}
		return ast.TPtr{Elem: elem}, nil
	case "TStruct":
		var w struct{ Name string `json:"name"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.TStruct{Name: w.Name}, nil
	case "TFun":
		var w struct {
			Ret    json.RawMessage   `json:"ret"`
			Params []json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		ret, err := unmarshalType(w.Ret)
		if err != nil {
			return nil, err
		}
		params, err := unmarshalDeclarations(w.Params)
		if err != nil {
			return nil, err
		}
		return ast.TFun{Ret: ret, Params: params}, nil
	default:
		return nil, fmt.Errorf("interchange: unknown type kind %q", kind)
	}
}

// ---------------------------------------------------------------------------
// Declaration
// ---------------------------------------------------------------------------

func marshalDeclaration(d ast.Declaration) (json.RawMessage, error) {
	typ, err := marshalType(d.Type)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]interface{}{"name": d.Name, "type": typ})
}

func marshalDeclarations(ds []ast.Declaration) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(ds))
	for _, d := range ds {
		raw, err := marshalDeclaration(d)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func unmarshalDeclaration(raw json.RawMessage) (ast.Declaration, error) {
	var w struct {
		Name string          `json:"name"`
		Type json.RawMessage `json:"type"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return ast.Declaration{}, err
	}
	typ, err := unmarshalType(w.Type)
	if err != nil {
		return ast.Declaration{}, err
	}
	return ast.Declaration{Name: w.Name, Type: typ}, nil
}

func unmarshalDeclarations(raws []json.RawMessage) ([]ast.Declaration, error) {
	out := make([]ast.Declaration, 0, len(raws))
	for _, raw := range raws {
		d, err := unmarshalDeclaration(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Expr / Literal
// ---------------------------------------------------------------------------

func marshalExprs(es []ast.Expr) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(es))
	for _, e := range es {
		raw, err := marshalExpr(e)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func unmarshalExprs(raws []json.RawMessage) ([]ast.Expr, error) {
	out := make([]ast.Expr, 0, len(raws))
	for _, raw := range raws {
		e, err := unmarshalExpr(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func marshalExpr(e ast.Expr) (json.RawMessage, error) {
	switch v := e.(type) {
	case ast.Lit:
		lit, err := marshalLiteral(v.Literal)
		if err != nil {
			return nil, err
		}
		return marshalTyped("Lit", map[string]interface{}{"literal": lit})
	case ast.Ident:
		return marshalTyped("Ident", map[string]interface{}{"name": v.Name})
	case ast.ArrElem:
		idxs, err := marshalExprs(v.Indices)
		if err != nil {
			return nil, err
		}
		return marshalTyped("ArrElem", map[string]interface{}{"name": v.Name, "indices": idxs})
	case ast.PairElem:
		return marshalTyped("PairElem", map[string]interface{}{"side": int(v.Side), "name": v.Name})
	case ast.UnApp:
		operand, err := marshalExpr(v.Operand)
		if err != nil {
			return nil, err
		}
		return marshalTyped("UnApp", map[string]interface{}{"op": v.Op.String(), "operand": operand})
	case ast.BinApp:
		left, err := marshalExpr(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := marshalExpr(v.Right)
		if err != nil {
			return nil, err
		}
		return marshalTyped("BinApp", map[string]interface{}{"op": v.Op.String(), "left": left, "right": right})
	case ast.FunCall:
		args, err := marshalExprs(v.Args)
		if err != nil {
			return nil, err
		}
		return marshalTyped("FunCall", map[string]interface{}{"name": v.Name, "args": args})
	case ast.NewPair:
		fst, err := marshalExpr(v.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := marshalExpr(v.Snd)
		if err != nil {
			return nil, err
		}
		return marshalTyped("NewPair", map[string]interface{}{"fst": fst, "snd": snd})
	case ast.NewStruct:
		return marshalTyped("NewStruct", map[string]interface{}{"name": v.Name})
	default:
		return nil, fmt.Errorf("interchange: unhandled expr %T", e)
	}
}

func unmarshalExpr(raw json.RawMessage) (ast.Expr, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Lit":
		var w struct{ Literal json.RawMessage `json:"literal"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		lit, err := unmarshalLiteral(w.Literal)
		if err != nil {
			return nil, err
		}
		return ast.Lit{Literal: lit}, nil
	case "Ident":
		var w struct{ Name string `json:"name"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.Ident{Name: w.Name}, nil
	case "ArrElem":
		var w struct {
			Name    string            `json:"name"`
			Indices []json.RawMessage `json:"indices"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		idxs, err := unmarshalExprs(w.Indices)
		if err != nil {
			return nil, err
		}
		return ast.ArrElem{Name: w.Name, Indices: idxs}, nil
	case "PairElem":
		var w struct {
			Side int    `json:"side"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.PairElem{Side: ast.PairSide(w.Side), Name: w.Name}, nil
	case "UnApp":
		var w struct {
			Op      string          `json:"op"`
			Operand json.RawMessage `json:"operand"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		op, err := tokenKindByName(w.Op)
		if err != nil {
			return nil, err
		}
		operand, err := unmarshalExpr(w.Operand)
		if err != nil {
			return nil, err
		}
		return ast.UnApp{Op: op, Operand: operand}, nil
	case "BinApp":
		var w struct {
			Op    string          `json:"op"`
			Left  json.RawMessage `json:"left"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		op, err := tokenKindByName(w.Op)
		if err != nil {
			return nil, err
		}
		left, err := unmarshalExpr(w.Left)
		if err != nil {
			return nil, err
		}
		right, err := unmarshalExpr(w.Right)
		if err != nil {
			return nil, err
		}
		return ast.BinApp{Op: op, Left: left, Right: right}, nil
	case "FunCall":
		var w struct {
			Name string            `json:"name"`
			Args []json.RawMessage `json:"args"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		args, err := unmarshalExprs(w.Args)
		if err != nil {
			return nil, err
		}
		return ast.FunCall{Name: w.Name, Args: args}, nil
	case "NewPair":
		var w struct {
			Fst json.RawMessage `json:"fst"`
			Snd json.RawMessage `json:"snd"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fst, err := unmarshalExpr(w.Fst)
		if err != nil {
			return nil, err
		}
		snd, err := unmarshalExpr(w.Snd)
		if err != nil {
			return nil, err
		}
		return ast.NewPair{Fst: fst, Snd: snd}, nil
	case "NewStruct":
		var w struct{ Name string `json:"name"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.NewStruct{Name: w.Name}, nil
	default:
		return nil, fmt.Errorf("interchange: unknown expr kind %q", kind)
	}
}

func marshalLiteral(l ast.Literal) (json.RawMessage, error) {
	switch v := l.(type) {
	case ast.CHAR:
		return marshalTyped("CHAR", map[string]interface{}{"value": string(rune(v))})
	case ast.INT:
		return marshalTyped("INT", map[string]interface{}{"value": int64(v)})
	case ast.BOOL:
		return marshalTyped("BOOL", map[string]interface{}{"value": bool(v)})
	case ast.STR:
		return marshalTyped("STR", map[string]interface{}{"value": string(v)})
	case ast.ARRAY:
		elems, err := marshalExprs(v.Elems)
		if err != nil {
			return nil, err
		}
		return marshalTyped("ARRAY", map[string]interface{}{"elems": elems})
	case ast.NULLLit:
		return marshalTyped("NULLLit", nil)
	default:
		return nil, fmt.Errorf("interchange: unhandled literal %T", l)
	}
}

func unmarshalLiteral(raw json.RawMessage) (ast.Literal, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "CHAR":
		var w struct{ Value string `json:"value"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.CHAR([]rune(w.Value)[0]), nil
	case "INT":
		var w struct{ Value int64 `json:"value"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.INT(w.Value), nil
	case "BOOL":
		var w struct{ Value bool `json:"value"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.BOOL(w.Value), nil
	case "STR":
		var w struct{ Value string `json:"value"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.STR(w.Value), nil
	case "ARRAY":
		var w struct{ Elems []json.RawMessage `json:"elems"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		elems, err := unmarshalExprs(w.Elems)
		if err != nil {
			return nil, err
		}
		return ast.ARRAY{Elems: elems}, nil
	case "NULLLit":
		return ast.NULLLit{}, nil
	default:
		return nil, fmt.Errorf("interchange: unknown literal kind %q", kind)
	}
}

// ---------------------------------------------------------------------------
// Statement
// ---------------------------------------------------------------------------

func marshalStatements(ss []ast.Statement) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(ss))
	for _, s := range ss {
		raw, err := marshalStatement(s)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

func unmarshalStatements(raws []json.RawMessage) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(raws))
	for _, raw := range raws {
		s, err := unmarshalStatement(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func marshalStatement(s ast.Statement) (json.RawMessage, error) {
	switch v := s.(type) {
	case ast.Noop:
		return marshalTyped("Noop", nil)
	case ast.Block:
		stmts, err := marshalStatements(v.Stmts)
		if err != nil {
			return nil, err
		}
		return marshalTyped("Block", map[string]interface{}{"stmts": stmts})
	case ast.VarDef:
		decl, err := marshalDeclaration(v.Decl)
		if err != nil {
			return nil, err
		}
		val, err := marshalExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return marshalTyped("VarDef", map[string]interface{}{"decl": decl, "value": val})
	case ast.Ctrl:
		var val json.RawMessage
		if v.Value != nil {
			var err error
			val, err = marshalExpr(v.Value)
			if err != nil {
				return nil, err
			}
		}
		return marshalTyped("Ctrl", map[string]interface{}{"ctrl": int(v.Kind), "value": val})
	case ast.Cond:
		test, err := marshalExpr(v.Test)
		if err != nil {
			return nil, err
		}
		then, err := marshalStatement(v.Then)
		if err != nil {
			return nil, err
		}
		els, err := marshalStatement(v.Else)
		if err != nil {
			return nil, err
		}
		return marshalTyped("Cond", map[string]interface{}{"test": test, "then": then, "else": els})
	case ast.Loop:
		test, err := marshalExpr(v.Test)
		if err != nil {
			return nil, err
		}
		body, err := marshalStatement(v.Body)
		if err != nil {
			return nil, err
		}
		return marshalTyped("Loop", map[string]interface{}{"test": test, "body": body})
	case ast.Builtin:
		arg, err := marshalExpr(v.Arg)
		if err != nil {
			return nil, err
		}
		return marshalTyped("Builtin", map[string]interface{}{"op": int(v.Op), "arg": arg})
	case ast.ExpStmt:
		val, err := marshalExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return marshalTyped("ExpStmt", map[string]interface{}{"value": val})
	case ast.ExternDecl:
		return marshalTyped("ExternDecl", map[string]interface{}{"name": v.Name})
	case ast.InlineAssembly:
		return marshalTyped("InlineAssembly", map[string]interface{}{"lines": v.Lines})
	case ast.IdentifiedStatement:
		stmt, err := marshalStatement(v.Stmt)
		if err != nil {
			return nil, err
		}
		return marshalTyped("IdentifiedStatement", map[string]interface{}{"stmt": stmt, "id": int(v.ID)})
	default:
		return nil, fmt.Errorf("interchange: unhandled statement %T", s)
	}
}

func unmarshalStatement(raw json.RawMessage) (ast.Statement, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "Noop":
		return ast.Noop{}, nil
	case "Block":
		var w struct{ Stmts []json.RawMessage `json:"stmts"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		stmts, err := unmarshalStatements(w.Stmts)
		if err != nil {
			return nil, err
		}
		return ast.Block{Stmts: stmts}, nil
	case "VarDef":
		var w struct {
			Decl  json.RawMessage `json:"decl"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		decl, err := unmarshalDeclaration(w.Decl)
		if err != nil {
			return nil, err
		}
		val, err := unmarshalExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return ast.VarDef{Decl: decl, Value: val}, nil
	case "Ctrl":
		var w struct {
			Kind  int             `json:"ctrl"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		var val ast.Expr
		if len(w.Value) > 0 && string(w.Value) != "null" {
			val, err = unmarshalExpr(w.Value)
			if err != nil {
				return nil, err
			}
		}
		return ast.Ctrl{Kind: ast.CtrlKind(w.Kind), Value: val}, nil
	case "Cond":
		var w struct {
			Test json.RawMessage `json:"test"`
			Then json.RawMessage `json:"then"`
			Else json.RawMessage `json:"else"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		test, err := unmarshalExpr(w.Test)
		if err != nil {
			return nil, err
		}
		then, err := unmarshalStatement(w.Then)
		if err != nil {
			return nil, err
		}
		els, err := unmarshalStatement(w.Else)
		if err != nil {
			return nil, err
		}
		return ast.Cond{Test: test, Then: then, Else: els}, nil
	case "Loop":
		var w struct {
			Test json.RawMessage `json:"test"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		test, err := unmarshalExpr(w.Test)
		if err != nil {
			return nil, err
		}
		body, err := unmarshalStatement(w.Body)
		if err != nil {
			return nil, err
		}
		return ast.Loop{Test: test, Body: body}, nil
	case "Builtin":
		var w struct {
			Op  int             `json:"op"`
			Arg json.RawMessage `json:"arg"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		arg, err := unmarshalExpr(w.Arg)
		if err != nil {
			return nil, err
		}
		return ast.Builtin{Op: ast.BuiltinOp(w.Op), Arg: arg}, nil
	case "ExpStmt":
		var w struct{ Value json.RawMessage `json:"value"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		val, err := unmarshalExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return ast.ExpStmt{Value: val}, nil
	case "ExternDecl":
		var w struct{ Name string `json:"name"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.ExternDecl{Name: w.Name}, nil
	case "InlineAssembly":
		var w struct{ Lines []string `json:"lines"` }
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		return ast.InlineAssembly{Lines: w.Lines}, nil
	case "IdentifiedStatement":
		var w struct {
			Stmt json.RawMessage `json:"stmt"`
			ID   int             `json:"id"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		stmt, err := unmarshalStatement(w.Stmt)
		if err != nil {
			return nil, err
		}
		return ast.IdentifiedStatement{Stmt: stmt, ID: ast.StatementId(w.ID)}, nil
	default:
		return nil, fmt.Errorf("interchange: unknown statement kind %q", kind)
	}
}

// ---------------------------------------------------------------------------
// Definition
// ---------------------------------------------------------------------------

func marshalDefinition(d ast.Definition) (json.RawMessage, error) {
	switch v := d.(type) {
	case ast.FunDef:
		decl, err := marshalDeclaration(v.Decl)
		if err != nil {
			return nil, err
		}
		body, err := marshalStatement(v.Body)
		if err != nil {
			return nil, err
		}
		return marshalTyped("FunDef", map[string]interface{}{"decl": decl, "body": body})
	case ast.TypeDef:
		fields, err := marshalDeclarations(v.Fields)
		if err != nil {
			return nil, err
		}
		return marshalTyped("TypeDef", map[string]interface{}{"name": v.Name, "fields": fields})
	case ast.GlobalDef:
		decl, err := marshalDeclaration(v.Decl)
		if err != nil {
			return nil, err
		}
		val, err := marshalExpr(v.Value)
		if err != nil {
			return nil, err
		}
		return marshalTyped("GlobalDef", map[string]interface{}{"decl": decl, "value": val})
	default:
		return nil, fmt.Errorf("interchange: unhandled definition %T", d)
	}
}

func unmarshalDefinition(raw json.RawMessage) (ast.Definition, error) {
	kind, err := kindOf(raw)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "FunDef":
		var w struct {
			Decl json.RawMessage `json:"decl"`
			Body json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		decl, err := unmarshalDeclaration(w.Decl)
		if err != nil {
			return nil, err
		}
		body, err := unmarshalStatement(w.Body)
		if err != nil {
			return nil, err
		}
		return ast.FunDef{Decl: decl, Body: body}, nil
	case "TypeDef":
		var w struct {
			Name   string            `json:"name"`
			Fields []json.RawMessage `json:"fields"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		fields, err := unmarshalDeclarations(w.Fields)
		if err != nil {
			return nil, err
		}
		return ast.TypeDef{Name: w.Name, Fields: fields}, nil
	case "GlobalDef":
		var w struct {
			Decl  json.RawMessage `json:"decl"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, err
		}
		decl, err := unmarshalDeclaration(w.Decl)
		if err != nil {
			return nil, err
		}
		val, err := unmarshalExpr(w.Value)
		if err != nil {
			return nil, err
		}
		return ast.GlobalDef{Decl: decl, Value: val}, nil
	default:
		return nil, fmt.Errorf("interchange: unknown definition kind %q", kind)
	}
}

// tokenKindByName reverses token.Kind.String() for the operator tokens
// that appear in UnApp/BinApp; it only needs to cover the subset the
// expression grammar actually produces.
func tokenKindByName(name string) (token.Kind, error) {
	for _, op := range token.Operators {
		if op.Name == name {
			return op.Kind, nil
		}
	}
	if name == token.ASSIGN.String() {
		return token.ASSIGN, nil
	}
	return 0, fmt.Errorf("interchange: unknown operator token %q", name)
}
