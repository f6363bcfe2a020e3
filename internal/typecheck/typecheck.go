// Package typecheck is C7, the typing rules: structural type equality
// with the TArb wildcard, the operator signature tables exposed as data,
// and Typeof, which computes an expression's type on demand against a
// symbol lookup function. Built-in statement arguments are checked by
// internal/semantic, not by a table here.
package typecheck

import (
	"fmt"

	"github.com/moneytech/wacc/internal/ast"
	"github.com/moneytech/wacc/internal/token"
)

// Lookup resolves an identifier to its type, or reports it undefined.
// internal/symtab.SymbolTable.Lookup satisfies this shape directly.
type Lookup func(name string) (ast.Type, bool)

// EqualTypes is spec §4.7's equal_types: structural equality with TArb
// acting as a wildcard at every position, in both directions. It is
// reflexive and symmetric (spec §8 invariant 3).
func EqualTypes(expected, actual ast.Type) bool {
	if _, ok := expected.(ast.TArb); ok {
		return true
	}
	if _, ok := actual.(ast.TArb); ok {
		return true
	}
	switch e := expected.(type) {
	case ast.TInt:
		_, ok := actual.(ast.TInt)
		return ok
	case ast.TBool:
		_, ok := actual.(ast.TBool)
		return ok
	case ast.TChar:
		_, ok := actual.(ast.TChar)
		return ok
	case ast.TString:
		_, ok := actual.(ast.TString)
		return ok
	case ast.TArray:
		a, ok := actual.(ast.TArray)
		return ok && EqualTypes(e.Elem, a.Elem)
	case ast.TPair:
		a, ok := actual.(ast.TPair)
		return ok && EqualTypes(e.Fst, a.Fst) && EqualTypes(e.Snd, a.Snd)
	case ast.TPtr:
		a, ok := actual.(ast.TPtr)
		return ok && EqualTypes(e.Elem, a.Elem)
	case ast.TStruct:
		a, ok := actual.(ast.TStruct)
		return ok && e.Name == a.Name
	case ast.TFun:
		a, ok := actual.(ast.TFun)
		if !ok || len(e.Params) != len(a.Params) {
			return false
		}
		if !EqualTypes(e.Ret, a.Ret) {
			return false
		}
		for i := range e.Params {
			if !EqualTypes(e.Params[i].Type, a.Params[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// TypeError reports an EqualTypes mismatch; internal/semantic wraps it
// into a *errors.CheckerError of Kind Type.
type TypeError struct {
	Expected, Actual ast.Type
	Context          string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected type %s but found %s%s", describe(e.Expected), describe(e.Actual), ctxSuffix(e.Context))
}

func ctxSuffix(ctx string) string {
	if ctx == "" {
		return ""
	}
	return " (" + ctx + ")"
}

func describe(t ast.Type) string {
	switch v := t.(type) {
	case ast.TInt:
		return "int"
	case ast.TBool:
		return "bool"
	case ast.TChar:
		return "char"
	case ast.TString:
		return "string"
	case ast.TArb:
		return "?"
	case ast.TArray:
		return describe(v.Elem) + "[]"
	case ast.TPair:
		return fmt.Sprintf("pair(%s, %s)", describe(v.Fst), describe(v.Snd))
	case ast.TPtr:
		return describe(v.Elem) + "*"
	case ast.TStruct:
		return "struct " + v.Name
	case ast.TFun:
		return "func"
	default:
		return "<unknown>"
	}
}

// Require returns a *TypeError if actual doesn't satisfy EqualTypes
// against expected, else nil.
func Require(expected, actual ast.Type, context string) error {
	if !EqualTypes(expected, actual) {
		return &TypeError{Expected: expected, Actual: actual, Context: context}
	}
	return nil
}

// SemanticError is for the non-type-mismatch failures Typeof itself can
// raise (undefined identifier, wrong arity, array-nesting overrun). The
// walker (internal/semantic) decorates these into Semantic CheckerErrors.
type SemanticError struct {
	Msg string
}

func (e *SemanticError) Error() string { return e.Msg }

func semErr(format string, args ...interface{}) error {
	return &SemanticError{Msg: fmt.Sprintf(format, args...)}
}

// Typeof computes expr's type per spec §4.7.
func Typeof(expr ast.Expr, lookup Lookup) (ast.Type, error) {
	switch e := expr.(type) {
	case ast.Lit:
		return typeofLiteral(e.Literal, lookup)
	case ast.Ident:
		t, ok := lookup(e.Name)
		if !ok {
			return nil, semErr("undefined identifier %q", e.Name)
		}
		return t, nil
	case ast.ArrElem:
		t, ok := lookup(e.Name)
		if !ok {
			return nil, semErr("undefined identifier %q", e.Name)
		}
		for range e.Indices {
			arr, ok := t.(ast.TArray)
			if !ok {
				return nil, semErr("cannot index into non-array %q", e.Name)
			}
			t = arr.Elem
		}
		return t, nil
	case ast.PairElem:
		t, ok := lookup(e.Name)
		if !ok {
			return nil, semErr("undefined identifier %q", e.Name)
		}
		pair, ok := t.(ast.TPair)
		if !ok {
			return nil, semErr("%q is not a pair", e.Name)
		}
		if e.Side == ast.Fst {
			return pair.Fst, nil
		}
		return pair.Snd, nil
	case ast.UnApp:
		return typeofUnary(e, lookup)
	case ast.BinApp:
		return typeofBinary(e, lookup)
	case ast.FunCall:
		t, ok := lookup(e.Name)
		if !ok {
			return nil, semErr("undefined function %q", e.Name)
		}
		fn, ok := t.(ast.TFun)
		if !ok {
			return nil, semErr("%q is not a function", e.Name)
		}
		if len(e.Args) != len(fn.Params) {
			return nil, semErr("function %q expects %d arguments but got %d", e.Name, len(fn.Params), len(e.Args))
		}
		for i, arg := range e.Args {
			at, err := Typeof(arg, lookup)
			if err != nil {
				return nil, err
			}
			if err := Require(fn.Params[i].Type, at, fmt.Sprintf("argument %d of %q", i+1, e.Name)); err != nil {
				return nil, err
			}
		}
		return fn.Ret, nil
	case ast.NewPair:
		ft, err := Typeof(e.Fst, lookup)
		if err != nil {
			return nil, err
		}
		st, err := Typeof(e.Snd, lookup)
		if err != nil {
			return nil, err
		}
		return ast.TPair{Fst: ft, Snd: st}, nil
	case ast.NewStruct:
		// Not type-checked beyond existing as a pointer-to-struct value:
		// spec §4.8/§9 leaves struct-field validation to codegen.
		return ast.TPtr{Elem: ast.TStruct{Name: e.Name}}, nil
	default:
		return nil, semErr("unhandled expression form %T", expr)
	}
}

func typeofLiteral(lit ast.Literal, lookup Lookup) (ast.Type, error) {
	switch l := lit.(type) {
	case ast.INT:
		return ast.TInt{}, nil
	case ast.BOOL:
		return ast.TBool{}, nil
	case ast.CHAR:
		return ast.TChar{}, nil
	case ast.STR:
		return ast.TString{}, nil
	case ast.NULLLit:
		return ast.TPair{Fst: ast.TArb{}, Snd: ast.TArb{}}, nil
	case ast.ARRAY:
		if len(l.Elems) == 0 {
			return ast.TArray{Elem: ast.TArb{}}, nil
		}
		first, err := Typeof(l.Elems[0], lookup)
		if err != nil {
			return nil, err
		}
		for _, elem := range l.Elems[1:] {
			t, err := Typeof(elem, lookup)
			if err != nil {
				return nil, err
			}
			if !EqualTypes(first, t) {
				return nil, &TypeError{Expected: first, Actual: t, Context: "array literal elements must share a type"}
			}
		}
		return ast.TArray{Elem: first}, nil
	default:
		return nil, semErr("unhandled literal form %T", lit)
	}
}

// UnarySignature is one row of the unary operator-signature table.
type UnarySignature struct {
	Arg, Result ast.Type
}

// BinarySignature is one row of the binary operator-signature table.
type BinarySignature struct {
	Left, Right, Result ast.Type
}

// unarySignatures and binarySignatures are spec §4.7's "primitives
// operator-signature table", exposed as data per §4.3's instruction that
// the implementer must expose the operator table as data. ast.TArb
// entries act as a wildcard accepting (and propagating) any type, which
// is how polymorphic operators like equality and len are expressed
// without a dedicated generics mechanism. '*'/'&' (deref/addr-of) have
// no rows here; typeofUnary handles them directly.
var unarySignatures = map[token.Kind][]UnarySignature{
	token.NOT:   {{ast.TBool{}, ast.TBool{}}},
	token.MINUS: {{ast.TInt{}, ast.TInt{}}},
	token.LEN:   {{ast.TArray{Elem: ast.TArb{}}, ast.TInt{}}},
	token.ORD:   {{ast.TChar{}, ast.TInt{}}},
	token.CHR:   {{ast.TInt{}, ast.TChar{}}},
}

var binarySignatures = map[token.Kind][]BinarySignature{
	token.PLUS:    {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.MINUS:   {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.STAR:    {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.SLASH:   {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.PERCENT: {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.SHL:     {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.SHR:     {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.LT:      {{ast.TInt{}, ast.TInt{}, ast.TBool{}}, {ast.TChar{}, ast.TChar{}, ast.TBool{}}},
	token.LTE:     {{ast.TInt{}, ast.TInt{}, ast.TBool{}}, {ast.TChar{}, ast.TChar{}, ast.TBool{}}},
	token.GT:      {{ast.TInt{}, ast.TInt{}, ast.TBool{}}, {ast.TChar{}, ast.TChar{}, ast.TBool{}}},
	token.GTE:     {{ast.TInt{}, ast.TInt{}, ast.TBool{}}, {ast.TChar{}, ast.TChar{}, ast.TBool{}}},
	token.EQ:      {{ast.TArb{}, ast.TArb{}, ast.TBool{}}},
	token.NEQ:     {{ast.TArb{}, ast.TArb{}, ast.TBool{}}},
	token.AMP:     {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.BITXOR:  {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.BITOR:   {{ast.TInt{}, ast.TInt{}, ast.TInt{}}},
	token.AND:     {{ast.TBool{}, ast.TBool{}, ast.TBool{}}},
	token.OR:      {{ast.TBool{}, ast.TBool{}, ast.TBool{}}},
}

func typeofUnary(e ast.UnApp, lookup Lookup) (ast.Type, error) {
	operandType, err := Typeof(e.Operand, lookup)
	if err != nil {
		return nil, err
	}

	// '*' (deref) and '&' (addr-of) move one TPtr level and so can't be
	// expressed as a fixed-result-type table row; they're peeled here
	// instead of consulting unarySignatures.
	switch e.Op {
	case token.STAR:
		ptr, ok := operandType.(ast.TPtr)
		if !ok {
			return nil, &TypeError{Expected: ast.TPtr{Elem: ast.TArb{}}, Actual: operandType, Context: "operand of '*'"}
		}
		return ptr.Elem, nil
	case token.AMP:
		return ast.TPtr{Elem: operandType}, nil
	}

	sigs, ok := unarySignatures[e.Op]
	if !ok {
		return nil, semErr("unknown unary operator %s", e.Op)
	}
	for _, sig := range sigs {
		if EqualTypes(sig.Arg, operandType) {
			return sig.Result, nil
		}
	}
	return nil, &TypeError{Expected: sigs[0].Arg, Actual: operandType, Context: fmt.Sprintf("operand of %q", e.Op)}
}

func typeofBinary(e ast.BinApp, lookup Lookup) (ast.Type, error) {
	leftType, err := Typeof(e.Left, lookup)
	if err != nil {
		return nil, err
	}
	rightType, err := Typeof(e.Right, lookup)
	if err != nil {
		return nil, err
	}
	sigs, ok := binarySignatures[e.Op]
	if !ok {
		return nil, semErr("unknown binary operator %s", e.Op)
	}
	for _, sig := range sigs {
		if EqualTypes(sig.Left, leftType) && EqualTypes(sig.Right, rightType) {
			return sig.Result, nil
		}
	}
	if err := Require(sigs[0].Left, leftType, fmt.Sprintf("left operand of %q", e.Op)); err != nil {
		return nil, err
	}
	return nil, &TypeError{Expected: sigs[0].Right, Actual: rightType, Context: fmt.Sprintf("right operand of %q", e.Op)}
}
