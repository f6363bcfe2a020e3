// Package parser is C2+C3+C4: a combinator-style recursive-descent
// parser that simultaneously builds the AST and assigns each statement a
// monotonically increasing StatementId with a saved source position
// (spec §4.2).
//
// Tokens are lexed fully upfront into a slice (internal/lexer already
// does one-token-at-a-time lexing; Tokenize just drives it to EOF), so
// backtracking ("try" in spec §4.3/§4.4's sense) is a cheap save/restore
// of an integer index rather than a stream checkpoint — the same
// mechanism the teacher's own Peek/Lex one-token lookahead approximates
// with a single slot, generalized here to arbitrary-depth backtracking
// since WACC's grammar needs it (e.g. bare identifier vs array element).
package parser

import (
	"fmt"
	"io"

	"github.com/moneytech/wacc/internal/ast"
	checkerrors "github.com/moneytech/wacc/internal/errors"
	"github.com/moneytech/wacc/internal/lexer"
	"github.com/moneytech/wacc/internal/token"
)

// Parser holds the state threaded through every recursive-descent
// production: the token cursor and the location tracker (C2). Per spec
// §5, a Parser is owned start-to-finish by a single analysis; there is
// no shared mutable state across parses.
type Parser struct {
	toks []token.Token
	pos  int
	locs *ast.LocationData
}

// Tokenize drains l to EOF, inclusive, into a token slice. Malformed
// lexical input panics with a *lexer.Error (spec §4.1); Tokenize
// recovers it into a Syntax CheckerError, so this front end's only two
// outcomes are a validated Program or a CheckerError, never a bare
// panic — mirroring the teacher's own Parse recovering at lex time.
func Tokenize(l *lexer.Lexer) (toks []token.Token, err error) {
	defer func() {
		if r := recover(); r != nil {
			if lerr, ok := r.(*lexer.Error); ok {
				err = checkerrors.NewAt(checkerrors.Syntax,
					checkerrors.Location{Line: lerr.Pos.Line, Column: lerr.Pos.Column}, lerr.Msg)
				return
			}
			panic(r)
		}
	}()
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks, nil
		}
	}
}

// New creates a Parser over an already-tokenized source.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, locs: ast.NewLocationData()}
}

// Parse lexes and parses r as a complete WACC program (spec §4.4's
// `begin definition* end` followed by end-of-input).
func Parse(r io.Reader) (*ast.AnnotatedProgram, error) {
	toks, err := Tokenize(lexer.New(r))
	if err != nil {
		return nil, err
	}
	p := New(toks)
	defs, err := p.parseProgram()
	if err != nil {
		return nil, err
	}
	return &ast.AnnotatedProgram{Definitions: defs, Locations: p.locs}, nil
}

// ---------------------------------------------------------------------------
// Token cursor
// ---------------------------------------------------------------------------

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) token.Token {
	idx := p.pos + n
	if idx < len(p.toks) {
		return p.toks[idx]
	}
	return token.Token{Kind: token.EOF}
}

func (p *Parser) advance() token.Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) at(kinds ...token.Kind) bool {
	cur := p.peek().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

func syntaxErr(pos token.Position, format string, args ...interface{}) error {
	return checkerrors.NewAt(checkerrors.Syntax, checkerrors.Location{Line: pos.Line, Column: pos.Column}, fmt.Sprintf(format, args...))
}

// expect consumes and returns the next token if its Kind is one of
// kinds, else fails with a Syntax Error at the current position.
func (p *Parser) expect(kinds ...token.Kind) (token.Token, error) {
	t := p.peek()
	for _, k := range kinds {
		if t.Kind == k {
			return p.advance(), nil
		}
	}
	return token.Token{}, syntaxErr(t.Pos, "expected %s but found %s", kindList(kinds), t.Kind)
}

func kindList(kinds []token.Kind) string {
	if len(kinds) == 1 {
		return kinds[0].String()
	}
	s := "one of "
	for i, k := range kinds {
		if i > 0 {
			s += ", "
		}
		s += k.String()
	}
	return s
}

// attempt runs fn, restoring the cursor if fn fails, so callers can try
// the next grammar alternative with the backtracking "try" combinator
// spec §4.3 calls for wherever alternatives share a prefix.
func attempt[T any](p *Parser, fn func() (T, error)) (T, error) {
	save := p.pos
	v, err := fn()
	if err != nil {
		p.pos = save
	}
	return v, err
}

// identified is C2's per-statement wrapper: it draws a fresh id and
// saves the position of the next token *before* fn runs, exactly as
// spec §4.2 requires, so the id's saved position is the statement's
// first token even if fn itself backtracks through several failed
// internal alternatives before succeeding (or fails outright — the
// allocated id is simply never referenced from the final tree in that
// case, which spec §9's design note says is harmless).
func (p *Parser) identified(fn func() (ast.Statement, error)) (ast.Statement, error) {
	id := p.locs.NextID()
	p.locs.Save(id, p.peek().Pos)
	stmt, err := fn()
	if err != nil {
		return nil, err
	}
	return ast.IdentifiedStatement{Stmt: stmt, ID: id}, nil
}
