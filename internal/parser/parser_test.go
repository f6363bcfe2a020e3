package parser

import (
	"strings"
	"testing"

	"github.com/moneytech/wacc/internal/ast"
	checkerrors "github.com/moneytech/wacc/internal/errors"
	"github.com/moneytech/wacc/internal/lexer"
	"github.com/moneytech/wacc/internal/token"
)

func newLexer(src string) *lexer.Lexer {
	return lexer.New(strings.NewReader(src))
}

func tokensOf(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := Tokenize(newLexer(src))
	if err != nil {
		t.Fatalf("Tokenize(%q) failed: %v", src, err)
	}
	return toks
}

func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	p := New(tokensOf(t, src))
	e, err := p.ParseExpr()
	if err != nil {
		t.Fatalf("ParseExpr(%q) failed: %v", src, err)
	}
	return e
}

func TestParseExprPrecedenceMultiplyBindsTighterThanPlus(t *testing.T) {
	e := parseExpr(t, "1 + 2 * 3")
	bin, ok := e.(ast.BinApp)
	if !ok || bin.Op != token.PLUS {
		t.Fatalf("expected top-level PLUS, got %+v", e)
	}
	rhs, ok := bin.Right.(ast.BinApp)
	if !ok || rhs.Op != token.STAR {
		t.Fatalf("expected right-hand side to be a STAR, got %+v", bin.Right)
	}
}

func TestParseExprLeftAssociative(t *testing.T) {
	e := parseExpr(t, "1 - 2 - 3")
	outer, ok := e.(ast.BinApp)
	if !ok || outer.Op != token.MINUS {
		t.Fatalf("expected outer MINUS, got %+v", e)
	}
	if _, ok := outer.Left.(ast.BinApp); !ok {
		t.Fatalf("expected left-associative nesting on the left, got %+v", outer.Left)
	}
	if _, ok := outer.Right.(ast.Lit); !ok {
		t.Fatalf("expected a bare literal on the right, got %+v", outer.Right)
	}
}

func TestParseExprUnaryMinus(t *testing.T) {
	// A space between the sign and the digit keeps the lexer from
	// folding it into a signed integer literal, forcing a real MINUS
	// token the parser must treat as a unary operator.
	e := parseExpr(t, "- 5")
	un, ok := e.(ast.UnApp)
	if !ok || un.Op != token.MINUS {
		t.Fatalf("expected a unary MINUS, got %+v", e)
	}
}

func TestParseExprParenOverridesPrecedence(t *testing.T) {
	e := parseExpr(t, "(1 + 2) * 3")
	bin, ok := e.(ast.BinApp)
	if !ok || bin.Op != token.STAR {
		t.Fatalf("expected top-level STAR, got %+v", e)
	}
	if _, ok := bin.Left.(ast.BinApp); !ok {
		t.Fatalf("expected the parenthesized sum on the left, got %+v", bin.Left)
	}
}

func TestParseExprArrayElement(t *testing.T) {
	e := parseExpr(t, "xs[1][2]")
	arr, ok := e.(ast.ArrElem)
	if !ok {
		t.Fatalf("expected ArrElem, got %+v", e)
	}
	if arr.Name != "xs" || len(arr.Indices) != 2 {
		t.Fatalf("expected xs with 2 indices, got %+v", arr)
	}
}

func TestParseExprBareIdentNotConfusedWithArrayElement(t *testing.T) {
	e := parseExpr(t, "x")
	if _, ok := e.(ast.Ident); !ok {
		t.Fatalf("expected a bare Ident, got %+v", e)
	}
}

func TestParseExprCall(t *testing.T) {
	e := parseExpr(t, "call f(1, 2)")
	call, ok := e.(ast.FunCall)
	if !ok || call.Name != "f" || len(call.Args) != 2 {
		t.Fatalf("expected call f(1, 2), got %+v", e)
	}
}

func TestParseExprPairElem(t *testing.T) {
	e := parseExpr(t, "fst p")
	pe, ok := e.(ast.PairElem)
	if !ok || pe.Side != ast.Fst || pe.Name != "p" {
		t.Fatalf("expected fst p, got %+v", e)
	}
}

func TestParseExprNewPair(t *testing.T) {
	e := parseExpr(t, "newpair(1, true)")
	np, ok := e.(ast.NewPair)
	if !ok {
		t.Fatalf("expected NewPair, got %+v", e)
	}
	if _, ok := np.Fst.(ast.Lit); !ok {
		t.Fatalf("expected fst to be a literal, got %+v", np.Fst)
	}
}

func TestParseExprArrayLiteral(t *testing.T) {
	e := parseExpr(t, "[1, 2, 3]")
	lit, ok := e.(ast.Lit)
	if !ok {
		t.Fatalf("expected Lit, got %+v", e)
	}
	arr, ok := lit.Literal.(ast.ARRAY)
	if !ok || len(arr.Elems) != 3 {
		t.Fatalf("expected a 3-element array literal, got %+v", lit.Literal)
	}
}

func parseSingleStatement(t *testing.T, src string) ast.Statement {
	t.Helper()
	p := New(tokensOf(t, src))
	s, err := p.parseStatement()
	if err != nil {
		t.Fatalf("parseStatement(%q) failed: %v", src, err)
	}
	return s
}

func unwrapStmt(t *testing.T, s ast.Statement) ast.Statement {
	t.Helper()
	is, ok := s.(ast.IdentifiedStatement)
	if !ok {
		t.Fatalf("expected an IdentifiedStatement wrapper, got %T", s)
	}
	return is.Stmt
}

func TestParseStatementVarDef(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "int x = 5"))
	vd, ok := s.(ast.VarDef)
	if !ok || vd.Decl.Name != "x" {
		t.Fatalf("expected a VarDef for x, got %+v", s)
	}
	if _, ok := vd.Decl.Type.(ast.TInt); !ok {
		t.Fatalf("expected int type, got %+v", vd.Decl.Type)
	}
}

func TestParseStatementAssignmentIsBinAppAssign(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "x = 5"))
	es, ok := s.(ast.ExpStmt)
	if !ok {
		t.Fatalf("expected an ExpStmt, got %+v", s)
	}
	bin, ok := es.Value.(ast.BinApp)
	if !ok || bin.Op != token.ASSIGN {
		t.Fatalf("expected a BinApp(ASSIGN, ...), got %+v", es.Value)
	}
	if _, ok := bin.Left.(ast.Ident); !ok {
		t.Fatalf("expected the assignment target to be an Ident, got %+v", bin.Left)
	}
}

func TestParseStatementCondWithElse(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "if true then skip else skip fi"))
	cond, ok := s.(ast.Cond)
	if !ok {
		t.Fatalf("expected a Cond, got %+v", s)
	}
	if _, ok := cond.Else.(ast.Block); !ok {
		t.Fatalf("expected an explicit else to produce a Block, got %+v", cond.Else)
	}
}

func TestParseStatementCondWithoutElseIsNoop(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "if true then skip fi"))
	cond, ok := s.(ast.Cond)
	if !ok {
		t.Fatalf("expected a Cond, got %+v", s)
	}
	if _, ok := cond.Else.(ast.Noop); !ok {
		t.Fatalf("expected an omitted else to default to Noop, got %+v", cond.Else)
	}
}

func TestParseStatementWhile(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "while true do skip done"))
	loop, ok := s.(ast.Loop)
	if !ok {
		t.Fatalf("expected a Loop, got %+v", s)
	}
	if _, ok := loop.Test.(ast.Lit); !ok {
		t.Fatalf("expected a literal test, got %+v", loop.Test)
	}
}

func TestParseStatementBuiltinExit(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "exit 0"))
	b, ok := s.(ast.Builtin)
	if !ok || b.Op != ast.BuiltinExit {
		t.Fatalf("expected a BuiltinExit, got %+v", s)
	}
}

func TestParseStatementReturn(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "return 1"))
	ctrl, ok := s.(ast.Ctrl)
	if !ok || ctrl.Kind != ast.CtrlReturn {
		t.Fatalf("expected a CtrlReturn, got %+v", s)
	}
}

func TestParseStatementSkip(t *testing.T) {
	s := unwrapStmt(t, parseSingleStatement(t, "skip"))
	if _, ok := s.(ast.Noop); !ok {
		t.Fatalf("expected a Noop, got %+v", s)
	}
}

// parseFor's desugaring does not go through parseStatement's generic
// identified() wrapping, so it is exercised directly here rather than
// through unwrapStmt.
func TestParseForDesugarsIntoInitLoopWithSharedID(t *testing.T) {
	p := New(tokensOf(t, "for (int i = 0; i < 10; i = i + 1) do skip done"))
	s, err := p.parseStatement()
	if err != nil {
		t.Fatalf("parseStatement(for) failed: %v", err)
	}
	outer, ok := s.(ast.Block)
	if !ok || len(outer.Stmts) != 2 {
		t.Fatalf("expected a 2-statement outer block, got %+v", s)
	}

	initWrapped, ok := outer.Stmts[0].(ast.IdentifiedStatement)
	if !ok {
		t.Fatalf("expected init to be wrapped, got %T", outer.Stmts[0])
	}
	if _, ok := initWrapped.Stmt.(ast.VarDef); !ok {
		t.Fatalf("expected init to be a VarDef, got %+v", initWrapped.Stmt)
	}

	loopWrapped, ok := outer.Stmts[1].(ast.IdentifiedStatement)
	if !ok {
		t.Fatalf("expected the loop to be wrapped, got %T", outer.Stmts[1])
	}
	if loopWrapped.ID != initWrapped.ID {
		t.Errorf("expected init and loop to share a StatementId, got %d and %d", initWrapped.ID, loopWrapped.ID)
	}

	loop, ok := loopWrapped.Stmt.(ast.Loop)
	if !ok {
		t.Fatalf("expected a Loop, got %+v", loopWrapped.Stmt)
	}
	body, ok := loop.Body.(ast.Block)
	if !ok {
		t.Fatalf("expected the loop body to be a Block, got %T", loop.Body)
	}
	if len(body.Stmts) != 2 {
		t.Fatalf("expected the loop body to hold the body statement plus the step, got %+v", body.Stmts)
	}
	stepWrapped, ok := body.Stmts[1].(ast.IdentifiedStatement)
	if !ok || stepWrapped.ID != initWrapped.ID {
		t.Fatalf("expected the step to share the same id, got %+v", body.Stmts[1])
	}
}

func TestParseInlineAssemblyGroupsByLine(t *testing.T) {
	src := "begin inline\nmov eax, 1\nmov ebx, 2\nend"
	p := New(tokensOf(t, src))
	s, err := p.identified(p.parseInlineAssembly)
	if err != nil {
		t.Fatalf("parseInlineAssembly failed: %v", err)
	}
	is := s.(ast.IdentifiedStatement)
	asm, ok := is.Stmt.(ast.InlineAssembly)
	if !ok {
		t.Fatalf("expected InlineAssembly, got %+v", is.Stmt)
	}
	if len(asm.Lines) != 2 {
		t.Fatalf("expected 2 grouped lines, got %+v", asm.Lines)
	}
}

func TestParseProgramFull(t *testing.T) {
	src := `begin
int f(int n) is
  return n
end

int main() is
  int x = call f(1);
  return x
end
end`
	prog, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(prog.Definitions) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(prog.Definitions))
	}
	fd, ok := prog.Definitions[0].(ast.FunDef)
	if !ok || fd.Decl.Name != "f" {
		t.Fatalf("expected the first definition to be f, got %+v", prog.Definitions[0])
	}
	main, ok := prog.Definitions[1].(ast.FunDef)
	if !ok || main.Decl.Name != "main" {
		t.Fatalf("expected the second definition to be main, got %+v", prog.Definitions[1])
	}
}

func TestParseProgramStructDefinition(t *testing.T) {
	src := `begin
struct Point is
  int x;
  int y
end
end`
	prog, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	td, ok := prog.Definitions[0].(ast.TypeDef)
	if !ok || td.Name != "Point" || len(td.Fields) != 2 {
		t.Fatalf("expected a 2-field Point struct, got %+v", prog.Definitions[0])
	}
}

func TestParseProgramGlobalDefinition(t *testing.T) {
	src := `begin
int counter = 0
end`
	prog, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	gd, ok := prog.Definitions[0].(ast.GlobalDef)
	if !ok || gd.Decl.Name != "counter" {
		t.Fatalf("expected a counter global, got %+v", prog.Definitions[0])
	}
}

func TestParseTypeArrayAndPointerSuffixes(t *testing.T) {
	p := New(tokensOf(t, "int[]*"))
	typ, err := p.parseType()
	if err != nil {
		t.Fatalf("parseType failed: %v", err)
	}
	ptr, ok := typ.(ast.TPtr)
	if !ok {
		t.Fatalf("expected a TPtr, got %+v", typ)
	}
	if _, ok := ptr.Elem.(ast.TArray); !ok {
		t.Fatalf("expected a pointer to an array, got %+v", ptr.Elem)
	}
}

func TestParseTypePair(t *testing.T) {
	p := New(tokensOf(t, "pair(int, bool)"))
	typ, err := p.parseType()
	if err != nil {
		t.Fatalf("parseType failed: %v", err)
	}
	pair, ok := typ.(ast.TPair)
	if !ok {
		t.Fatalf("expected a TPair, got %+v", typ)
	}
	if _, ok := pair.Fst.(ast.TInt); !ok {
		t.Fatalf("expected fst to be int, got %+v", pair.Fst)
	}
	if _, ok := pair.Snd.(ast.TBool); !ok {
		t.Fatalf("expected snd to be bool, got %+v", pair.Snd)
	}
}

func TestParseProgramMissingEndErrors(t *testing.T) {
	if _, err := Parse(strings.NewReader("begin int x = 1")); err == nil {
		t.Fatal("expected a missing 'end' to fail")
	}
}

// The lexer panics on malformed lexical input (internal/lexer.Error);
// Tokenize must recover that into a Syntax CheckerError so Parse never
// lets a bare panic escape past the documented Program-or-CheckerError
// outcome.
func TestParseRecoversLexicalErrorAsSyntaxCheckerError(t *testing.T) {
	src := "begin int x = 99999999999999999999\nend"
	_, err := Parse(strings.NewReader(src))
	if err == nil {
		t.Fatal("expected an overflowing integer literal to fail")
	}
	ce, ok := checkerrors.AsCheckerError(err)
	if !ok {
		t.Fatalf("expected a *CheckerError, got %T: %v", err, err)
	}
	if ce.CheckKind != checkerrors.Syntax {
		t.Errorf("expected a Syntax error, got %v", ce.CheckKind)
	}
}

func TestTokenizeRecoversUnterminatedStringAsSyntaxCheckerError(t *testing.T) {
	_, err := Tokenize(newLexer(`"unterminated`))
	if err == nil {
		t.Fatal("expected an unterminated string literal to fail")
	}
	ce, ok := checkerrors.AsCheckerError(err)
	if !ok {
		t.Fatalf("expected a *CheckerError, got %T: %v", err, err)
	}
	if ce.CheckKind != checkerrors.Syntax {
		t.Errorf("expected a Syntax error, got %v", ce.CheckKind)
	}
}
