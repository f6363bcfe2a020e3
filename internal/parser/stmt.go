// stmt.go is C4's statement grammar: the ordered-choice dispatch spec
// §4.4 lists, the `for` desugaring that shares one StatementId across
// its four generated inner statements, and the semicolon-separated
// statement-sequence helper blocks and loop bodies are built from.
package parser

import (
	"strings"

	"github.com/moneytech/wacc/internal/ast"
	"github.com/moneytech/wacc/internal/token"
)

// parseStatement allocates a fresh id and wraps whatever the ordered
// choice below produces, except `for`, which manages its own shared id
// internally and must not be wrapped again (spec §4.4's desugaring
// names only four embedded statements, not a fifth outer one).
func (p *Parser) parseStatement() (ast.Statement, error) {
	if p.at(token.FOR) {
		return p.parseFor()
	}
	return p.identified(p.parseStatementInner)
}

func (p *Parser) parseStatementInner() (ast.Statement, error) {
	type stmtFn func() (ast.Statement, error)
	alts := []stmtFn{
		p.parseInlineAssembly,
		p.parseBeginEndBlock,
		p.parseVarDef,
		p.parseControl,
		p.parseCond,
		p.parseExternDecl,
		p.parseLoop,
		p.parseBuiltin,
		p.parseSkip,
		p.parseExpressionStatement,
	}
	var lastErr error
	for _, alt := range alts {
		v, err := attempt(p, alt)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = syntaxErr(p.peek().Pos, "expected a statement but found %s", p.peek().Kind)
	}
	return nil, lastErr
}

// parseStmtSeq parses a semicolon-separated run of statements up to
// (but not consuming) one of terminators or end-of-input.
func (p *Parser) parseStmtSeq(terminators ...token.Kind) ([]ast.Statement, error) {
	var stmts []ast.Statement
	for {
		if p.at(token.EOF) || p.at(terminators...) {
			return stmts, nil
		}
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if p.at(token.SEMI) {
			p.advance()
			continue
		}
		return stmts, nil
	}
}

func (p *Parser) parseInlineAssembly() (ast.Statement, error) {
	if _, err := p.expect(token.BEGIN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.INLINE); err != nil {
		return nil, err
	}
	var lines []string
	curLine := -1
	var buf strings.Builder
	for !p.at(token.END) {
		if p.at(token.EOF) {
			return nil, syntaxErr(p.peek().Pos, "unterminated inline assembly block")
		}
		t := p.advance()
		if t.Pos.Line != curLine {
			if curLine != -1 {
				lines = append(lines, buf.String())
				buf.Reset()
			}
			curLine = t.Pos.Line
		} else if buf.Len() > 0 {
			buf.WriteString(" ")
		}
		buf.WriteString(tokenText(t))
	}
	if curLine != -1 {
		lines = append(lines, buf.String())
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return ast.InlineAssembly{Lines: lines}, nil
}

// tokenText recovers the verbatim-ish source text of a single token for
// inline assembly capture, since the parser works over tokens rather
// than raw characters once lexing has run.
func tokenText(t token.Token) string {
	if t.Lit != "" {
		return t.Lit
	}
	return t.Kind.String()
}

func (p *Parser) parseBeginEndBlock() (ast.Statement, error) {
	if _, err := p.expect(token.BEGIN); err != nil {
		return nil, err
	}
	stmts, err := p.parseStmtSeq(token.END)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return ast.Block{Stmts: stmts}, nil
}

func (p *Parser) parseVarDef() (ast.Statement, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.ASSIGN); err != nil {
		return nil, err
	}
	val, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	return ast.VarDef{Decl: ast.Declaration{Name: name.Lit, Type: typ}, Value: val}, nil
}

func (p *Parser) parseControl() (ast.Statement, error) {
	t := p.peek()
	switch t.Kind {
	case token.RETURN:
		p.advance()
		val, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		return ast.Ctrl{Kind: ast.CtrlReturn, Value: val}, nil
	case token.BREAK:
		p.advance()
		return ast.Ctrl{Kind: ast.CtrlBreak}, nil
	case token.CONTINUE:
		p.advance()
		return ast.Ctrl{Kind: ast.CtrlContinue}, nil
	}
	return nil, syntaxErr(t.Pos, "expected 'return', 'break', or 'continue'")
}

func (p *Parser) parseCond() (ast.Statement, error) {
	if _, err := p.expect(token.IF); err != nil {
		return nil, err
	}
	test, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	thenStmts, err := p.parseStmtSeq(token.ELSE, token.FI)
	if err != nil {
		return nil, err
	}
	var elseStmt ast.Statement = ast.Noop{}
	if p.at(token.ELSE) {
		p.advance()
		elseStmts, err := p.parseStmtSeq(token.FI)
		if err != nil {
			return nil, err
		}
		elseStmt = ast.Block{Stmts: elseStmts}
	}
	if _, err := p.expect(token.FI); err != nil {
		return nil, err
	}
	return ast.Cond{Test: test, Then: ast.Block{Stmts: thenStmts}, Else: elseStmt}, nil
}

func (p *Parser) parseExternDecl() (ast.Statement, error) {
	if _, err := p.expect(token.EXTERN); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return ast.ExternDecl{Name: name.Lit}, nil
}

// parseLoop handles only `while`; `for` is desugared separately by
// parseFor before this alternative is ever tried.
func (p *Parser) parseLoop() (ast.Statement, error) {
	if _, err := p.expect(token.WHILE); err != nil {
		return nil, err
	}
	test, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	body, err := p.parseStmtSeq(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
		return nil, err
	}
	return ast.Loop{Test: test, Body: ast.Block{Stmts: body}}, nil
}

func (p *Parser) parseBuiltin() (ast.Statement, error) {
	t := p.peek()
	var op ast.BuiltinOp
	switch t.Kind {
	case token.READ:
		op = ast.BuiltinRead
	case token.FREE:
		op = ast.BuiltinFree
	case token.EXIT:
		op = ast.BuiltinExit
	case token.PRINT:
		op = ast.BuiltinPrint
	case token.PRINTLN:
		op = ast.BuiltinPrintLn
	default:
		return nil, syntaxErr(t.Pos, "expected a built-in statement")
	}
	p.advance()
	arg, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	return ast.Builtin{Op: op, Arg: arg}, nil
}

func (p *Parser) parseSkip() (ast.Statement, error) {
	if _, err := p.expect(token.SKIP); err != nil {
		return nil, err
	}
	return ast.Noop{}, nil
}

// parseExpressionStatement covers both a bare expression-statement and
// the reassignment form `lhs = rhs`, which the grammar has no
// dedicated statement node for: it is carried as ExpStmt wrapping a
// BinApp(ASSIGN, lhs, rhs), and internal/semantic special-cases that
// shape rather than treating ASSIGN as an ordinary operator.
func (p *Parser) parseExpressionStatement() (ast.Statement, error) {
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if p.at(token.ASSIGN) {
		p.advance()
		rhs, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		return ast.ExpStmt{Value: ast.BinApp{Op: token.ASSIGN, Left: e, Right: rhs}}, nil
	}
	return ast.ExpStmt{Value: e}, nil
}

// parseFor desugars `for (init ; cond ; step) do body done` into
// Block[IS(init,i), IS(Loop(cond, Block[IS(body,i), IS(step,i)]), i)]
// per spec §4.4, with a single id i allocated at the `for` keyword's
// position and shared by all four wrapped statements. init/step are
// parsed as ordinary (unwrapped) statements via parseStatementInner so
// that the shared id — not a fresh one — becomes their wrapper; body's
// own inner statements still get their usual individual ids.
func (p *Parser) parseFor() (ast.Statement, error) {
	forTok, err := p.expect(token.FOR)
	if err != nil {
		return nil, err
	}
	id := p.locs.NextID()
	p.locs.Save(id, forTok.Pos)

	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	init, err := p.parseStatementInner()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	cond, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	step, err := p.parseStatementInner()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DO); err != nil {
		return nil, err
	}
	bodyStmts, err := p.parseStmtSeq(token.DONE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.DONE); err != nil {
		return nil, err
	}

	initWrapped := ast.IdentifiedStatement{Stmt: init, ID: id}
	bodyWrapped := ast.IdentifiedStatement{Stmt: ast.Block{Stmts: bodyStmts}, ID: id}
	stepWrapped := ast.IdentifiedStatement{Stmt: step, ID: id}
	loop := ast.Loop{Test: cond, Body: ast.Block{Stmts: []ast.Statement{bodyWrapped, stepWrapped}}}
	loopWrapped := ast.IdentifiedStatement{Stmt: loop, ID: id}

	return ast.Block{Stmts: []ast.Statement{initWrapped, loopWrapped}}, nil
}
