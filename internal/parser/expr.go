// expr.go is C3, the operator-precedence expression grammar, and the
// term grammar it bottoms out in: parenthesized expression, `call`,
// `newpair`, `news`, literal, array element, pair element, bare
// identifier — each tried in turn via the backtracking `attempt`
// combinator wherever alternatives share a leading token (spec §4.3).
package parser

import (
	"strconv"

	"github.com/moneytech/wacc/internal/ast"
	"github.com/moneytech/wacc/internal/token"
)

// ParseExpr parses a full expression at the lowest precedence.
func (p *Parser) ParseExpr() (ast.Expr, error) {
	return p.parseBinary(0)
}

// parseBinary is the precedence-climbing driver: it parses one unary
// term, then repeatedly consumes a binary operator at or above minPrec
// and its right-hand side, left-associating by requiring the recursive
// call to bind only strictly tighter operators (spec §4.3 — "left-
// associative unless otherwise needed").
func (p *Parser) parseBinary(minPrec int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		opTok := p.peek()
		prec, ok := token.BinaryPrecedence(opTok.Kind)
		if !ok || prec < minPrec {
			return left, nil
		}
		p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = ast.BinApp{Op: opTok.Kind, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if token.IsUnaryOp(p.peek().Kind) {
		op := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnApp{Op: op.Kind, Operand: operand}, nil
	}
	return p.parseTerm()
}

// parseTerm tries each term alternative in the priority order spec
// §4.3 lists, backtracking between them.
func (p *Parser) parseTerm() (ast.Expr, error) {
	type termFn func() (ast.Expr, error)
	alts := []termFn{
		p.parseParenExpr,
		p.parseCall,
		p.parseNewPair,
		p.parseNewStruct,
		p.parseLiteral,
		p.parseArrElem,
		p.parsePairElem,
		p.parseIdentExpr,
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
		lastErr = syntaxErr(p.peek().Pos, "expected an expression but found %s", p.peek().Kind)
	}
	return nil, lastErr
}

func (p *Parser) parseParenExpr() (ast.Expr, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	e, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return e, nil
}

func (p *Parser) parseCall() (ast.Expr, error) {
	if _, err := p.expect(token.CALL); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	args, err := p.parseExprList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.FunCall{Name: name.Lit, Args: args}, nil
}

func (p *Parser) parseExprList(terminator token.Kind) ([]ast.Expr, error) {
	var args []ast.Expr
	if p.at(terminator) {
		return args, nil
	}
	for {
		e, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if !p.at(token.COMMA) {
			return args, nil
		}
		p.advance()
	}
}

func (p *Parser) parseNewPair() (ast.Expr, error) {
	if _, err := p.expect(token.NEWPAIR); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	fst, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.COMMA); err != nil {
		return nil, err
	}
	snd, err := p.ParseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return ast.NewPair{Fst: fst, Snd: snd}, nil
}

func (p *Parser) parseNewStruct() (ast.Expr, error) {
	if _, err := p.expect(token.NEWS); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return ast.NewStruct{Name: name.Lit}, nil
}

func (p *Parser) parseLiteral() (ast.Expr, error) {
	t := p.peek()
	switch t.Kind {
	case token.INT:
		p.advance()
		v, err := strconv.ParseInt(t.Lit, 10, 64)
		if err != nil {
			return nil, syntaxErr(t.Pos, "malformed integer literal %q", t.Lit)
		}
		return ast.Lit{Literal: ast.INT(v)}, nil
	case token.TRUE:
		p.advance()
		return ast.Lit{Literal: ast.BOOL(true)}, nil
	case token.FALSE:
		p.advance()
		return ast.Lit{Literal: ast.BOOL(false)}, nil
	case token.CHAR:
		p.advance()
		return ast.Lit{Literal: ast.CHAR([]rune(t.Lit)[0])}, nil
	case token.STRING:
		p.advance()
		return ast.Lit{Literal: ast.STR(t.Lit)}, nil
	case token.NULL:
		p.advance()
		return ast.Lit{Literal: ast.NULLLit{}}, nil
	case token.LBRACKET:
		return p.parseArrayLiteral()
	}
	return nil, syntaxErr(t.Pos, "expected a literal but found %s", t.Kind)
}

func (p *Parser) parseArrayLiteral() (ast.Expr, error) {
	if _, err := p.expect(token.LBRACKET); err != nil {
		return nil, err
	}
	elems, err := p.parseExprList(token.RBRACKET)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return ast.Lit{Literal: ast.ARRAY{Elems: elems}}, nil
}

func (p *Parser) parseArrElem() (ast.Expr, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if !p.at(token.LBRACKET) {
		return nil, syntaxErr(name.Pos, "expected an array index")
	}
	var idxs []ast.Expr
	for p.at(token.LBRACKET) {
		p.advance()
		idx, err := p.ParseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		idxs = append(idxs, idx)
	}
	return ast.ArrElem{Name: name.Lit, Indices: idxs}, nil
}

func (p *Parser) parsePairElem() (ast.Expr, error) {
	t := p.peek()
	var side ast.PairSide
	switch t.Kind {
	case token.FST:
		side = ast.Fst
	case token.SND:
		side = ast.Snd
	default:
		return nil, syntaxErr(t.Pos, "expected 'fst' or 'snd'")
	}
	p.advance()
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return ast.PairElem{Side: side, Name: name.Lit}, nil
}

func (p *Parser) parseIdentExpr() (ast.Expr, error) {
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	return ast.Ident{Name: name.Lit}, nil
}
