package typecheck

import (
	"testing"

	"github.com/moneytech/wacc/internal/ast"
	"github.com/moneytech/wacc/internal/token"
)

func noSymbols(string) (ast.Type, bool) { return nil, false }

func lookupOf(m map[string]ast.Type) Lookup {
	return func(name string) (ast.Type, bool) {
		t, ok := m[name]
		return t, ok
	}
}

func TestEqualTypesReflexiveAndArbWildcard(t *testing.T) {
	if !EqualTypes(ast.TInt{}, ast.TInt{}) {
		t.Error("TInt should equal itself")
	}
	if !EqualTypes(ast.TArb{}, ast.TInt{}) {
		t.Error("TArb should equal any type on the left")
	}
	if !EqualTypes(ast.TArray{Elem: ast.TInt{}}, ast.TArray{Elem: ast.TArb{}}) {
		t.Error("TArb nested inside a structural type should still act as a wildcard")
	}
	if EqualTypes(ast.TInt{}, ast.TBool{}) {
		t.Error("TInt should not equal TBool")
	}
}

func TestEqualTypesStructural(t *testing.T) {
	a := ast.TPair{Fst: ast.TInt{}, Snd: ast.TArray{Elem: ast.TChar{}}}
	b := ast.TPair{Fst: ast.TInt{}, Snd: ast.TArray{Elem: ast.TChar{}}}
	if !EqualTypes(a, b) {
		t.Error("structurally identical pair types should be equal")
	}
	c := ast.TPair{Fst: ast.TInt{}, Snd: ast.TArray{Elem: ast.TBool{}}}
	if EqualTypes(a, c) {
		t.Error("pairs differing in a nested element type should not be equal")
	}
}

func TestEqualTypesStructByName(t *testing.T) {
	if !EqualTypes(ast.TStruct{Name: "Point"}, ast.TStruct{Name: "Point"}) {
		t.Error("same-named structs should be equal")
	}
	if EqualTypes(ast.TStruct{Name: "Point"}, ast.TStruct{Name: "Line"}) {
		t.Error("differently-named structs should not be equal")
	}
}

func TestTypeofLiteral(t *testing.T) {
	cases := []struct {
		lit  ast.Literal
		want ast.Type
	}{
		{ast.INT(5), ast.TInt{}},
		{ast.BOOL(true), ast.TBool{}},
		{ast.CHAR('a'), ast.TChar{}},
		{ast.STR("hi"), ast.TString{}},
	}
	for _, c := range cases {
		got, err := Typeof(ast.Lit{Literal: c.lit}, noSymbols)
		if err != nil {
			t.Fatalf("Typeof(%v) failed: %v", c.lit, err)
		}
		if !EqualTypes(got, c.want) {
			t.Errorf("Typeof(%v) = %v, want %v", c.lit, got, c.want)
		}
	}
}

func TestTypeofNullIsWildcardPair(t *testing.T) {
	got, err := Typeof(ast.Lit{Literal: ast.NULLLit{}}, noSymbols)
	if err != nil {
		t.Fatal(err)
	}
	pair, ok := got.(ast.TPair)
	if !ok {
		t.Fatalf("expected null to type as a pair, got %T", got)
	}
	if !EqualTypes(pair.Fst, ast.TArb{}) || !EqualTypes(pair.Snd, ast.TArb{}) {
		t.Errorf("expected null's pair sides to be TArb, got %+v", pair)
	}
}

func TestTypeofEmptyArrayIsWildcardElem(t *testing.T) {
	got, err := Typeof(ast.Lit{Literal: ast.ARRAY{}}, noSymbols)
	if err != nil {
		t.Fatal(err)
	}
	arr, ok := got.(ast.TArray)
	if !ok || !EqualTypes(arr.Elem, ast.TArb{}) {
		t.Errorf("expected an empty array literal to type as T[]{TArb}, got %+v", got)
	}
}

func TestTypeofArrayLiteralMismatchedElementsErrors(t *testing.T) {
	lit := ast.ARRAY{Elems: []ast.Expr{
		ast.Lit{Literal: ast.INT(1)},
		ast.Lit{Literal: ast.BOOL(true)},
	}}
	if _, err := Typeof(ast.Lit{Literal: lit}, noSymbols); err == nil {
		t.Fatal("expected mismatched array literal element types to fail")
	}
}

func TestTypeofUndefinedIdentifier(t *testing.T) {
	if _, err := Typeof(ast.Ident{Name: "x"}, noSymbols); err == nil {
		t.Fatal("expected an undefined identifier to error")
	}
}

func TestTypeofArrElem(t *testing.T) {
	lookup := lookupOf(map[string]ast.Type{"xs": ast.TArray{Elem: ast.TInt{}}})
	got, err := Typeof(ast.ArrElem{Name: "xs", Indices: []ast.Expr{ast.Lit{Literal: ast.INT(0)}}}, lookup)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(ast.TInt); !ok {
		t.Errorf("expected int, got %T", got)
	}
}

func TestTypeofArrElemNonArrayErrors(t *testing.T) {
	lookup := lookupOf(map[string]ast.Type{"x": ast.TInt{}})
	if _, err := Typeof(ast.ArrElem{Name: "x", Indices: []ast.Expr{ast.Lit{Literal: ast.INT(0)}}}, lookup); err == nil {
		t.Fatal("expected indexing a non-array to fail")
	}
}

func TestTypeofPairElem(t *testing.T) {
	lookup := lookupOf(map[string]ast.Type{"p": ast.TPair{Fst: ast.TInt{}, Snd: ast.TBool{}}})
	fst, err := Typeof(ast.PairElem{Side: ast.Fst, Name: "p"}, lookup)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fst.(ast.TInt); !ok {
		t.Errorf("expected fst to be int, got %T", fst)
	}
	snd, err := Typeof(ast.PairElem{Side: ast.Snd, Name: "p"}, lookup)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snd.(ast.TBool); !ok {
		t.Errorf("expected snd to be bool, got %T", snd)
	}
}

func TestTypeofUnaryOperators(t *testing.T) {
	notExpr := ast.UnApp{Op: token.NOT, Operand: ast.Lit{Literal: ast.BOOL(false)}}
	got, err := Typeof(notExpr, noSymbols)
	if err != nil || !EqualTypes(got, ast.TBool{}) {
		t.Errorf("!bool should type as bool, got %v, %v", got, err)
	}

	lenExpr := ast.UnApp{Op: token.LEN, Operand: ast.Lit{Literal: ast.ARRAY{Elems: []ast.Expr{ast.Lit{Literal: ast.INT(1)}}}}}
	got, err = Typeof(lenExpr, noSymbols)
	if err != nil || !EqualTypes(got, ast.TInt{}) {
		t.Errorf("len(array) should type as int, got %v, %v", got, err)
	}
}

func TestTypeofDerefAndAddrOf(t *testing.T) {
	lookup := lookupOf(map[string]ast.Type{"p": ast.TPtr{Elem: ast.TInt{}}})
	deref := ast.UnApp{Op: token.STAR, Operand: ast.Ident{Name: "p"}}
	got, err := Typeof(deref, lookup)
	if err != nil || !EqualTypes(got, ast.TInt{}) {
		t.Errorf("*p should type as int, got %v, %v", got, err)
	}

	addr := ast.UnApp{Op: token.AMP, Operand: ast.Ident{Name: "p"}}
	got, err = Typeof(addr, lookup)
	if err != nil {
		t.Fatal(err)
	}
	ptr, ok := got.(ast.TPtr)
	if !ok || !EqualTypes(ptr.Elem, ast.TPtr{Elem: ast.TInt{}}) {
		t.Errorf("&p should type as pointer-to-pointer-to-int, got %v", got)
	}
}

func TestTypeofDerefNonPointerErrors(t *testing.T) {
	deref := ast.UnApp{Op: token.STAR, Operand: ast.Lit{Literal: ast.INT(1)}}
	if _, err := Typeof(deref, noSymbols); err == nil {
		t.Fatal("expected dereferencing a non-pointer to fail")
	}
}

func TestTypeofBinaryArithmetic(t *testing.T) {
	add := ast.BinApp{Op: token.PLUS, Left: ast.Lit{Literal: ast.INT(1)}, Right: ast.Lit{Literal: ast.INT(2)}}
	got, err := Typeof(add, noSymbols)
	if err != nil || !EqualTypes(got, ast.TInt{}) {
		t.Errorf("1 + 2 should type as int, got %v, %v", got, err)
	}
}

func TestTypeofEqualityAcceptsAnyMatchingPair(t *testing.T) {
	eq := ast.BinApp{Op: token.EQ, Left: ast.Lit{Literal: ast.CHAR('a')}, Right: ast.Lit{Literal: ast.CHAR('b')}}
	got, err := Typeof(eq, noSymbols)
	if err != nil || !EqualTypes(got, ast.TBool{}) {
		t.Errorf("char == char should type as bool, got %v, %v", got, err)
	}
}

func TestTypeofBinaryTypeMismatchErrors(t *testing.T) {
	add := ast.BinApp{Op: token.PLUS, Left: ast.Lit{Literal: ast.INT(1)}, Right: ast.Lit{Literal: ast.BOOL(true)}}
	if _, err := Typeof(add, noSymbols); err == nil {
		t.Fatal("expected 1 + true to fail")
	}
}

func TestTypeofFunCall(t *testing.T) {
	fnType := ast.TFun{Ret: ast.TInt{}, Params: []ast.Declaration{{Name: "n", Type: ast.TInt{}}}}
	lookup := lookupOf(map[string]ast.Type{"f": fnType})
	call := ast.FunCall{Name: "f", Args: []ast.Expr{ast.Lit{Literal: ast.INT(3)}}}
	got, err := Typeof(call, lookup)
	if err != nil || !EqualTypes(got, ast.TInt{}) {
		t.Errorf("f(3) should type as int, got %v, %v", got, err)
	}
}

func TestTypeofFunCallArityMismatch(t *testing.T) {
	fnType := ast.TFun{Ret: ast.TInt{}, Params: []ast.Declaration{{Name: "n", Type: ast.TInt{}}}}
	lookup := lookupOf(map[string]ast.Type{"f": fnType})
	call := ast.FunCall{Name: "f", Args: nil}
	if _, err := Typeof(call, lookup); err == nil {
		t.Fatal("expected a wrong-arity call to fail")
	}
}

func TestTypeofNewPair(t *testing.T) {
	np := ast.NewPair{Fst: ast.Lit{Literal: ast.INT(1)}, Snd: ast.Lit{Literal: ast.BOOL(true)}}
	got, err := Typeof(np, noSymbols)
	if err != nil {
		t.Fatal(err)
	}
	pair, ok := got.(ast.TPair)
	if !ok || !EqualTypes(pair.Fst, ast.TInt{}) || !EqualTypes(pair.Snd, ast.TBool{}) {
		t.Errorf("newpair(1, true) should type as pair(int, bool), got %+v", got)
	}
}

func TestRequire(t *testing.T) {
	if err := Require(ast.TInt{}, ast.TInt{}, "test"); err != nil {
		t.Errorf("matching types should not error: %v", err)
	}
	if err := Require(ast.TInt{}, ast.TBool{}, "test"); err == nil {
		t.Error("mismatched types should error")
	}
}
