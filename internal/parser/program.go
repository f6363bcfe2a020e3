// program.go covers the remainder of C4: the type grammar declarations
// and parameter lists draw on, and the top-level `begin definition*
// end` program grammar that distinguishes function, struct, and global
// definitions by ordered choice.
package parser

import (
	"github.com/moneytech/wacc/internal/ast"
	"github.com/moneytech/wacc/internal/token"
)

// parseProgram parses `begin definition* end` followed by end-of-input
// (spec §4.4). An optional `;` may separate consecutive definitions.
func (p *Parser) parseProgram() ([]ast.Definition, error) {
	if _, err := p.expect(token.BEGIN); err != nil {
		return nil, err
	}
	var defs []ast.Definition
	for !p.at(token.END) {
		if p.at(token.EOF) {
			return nil, syntaxErr(p.peek().Pos, "expected 'end' but found end of input")
		}
		def, err := p.parseDefinition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		if p.at(token.SEMI) {
			p.advance()
		}
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	return defs, nil
}

// parseDefinition is the top-level ordered choice: struct definitions
// are unambiguous on their leading `struct` keyword; function and
// global definitions share a `Type name` prefix, so function is tried
// first and global is the fallback.
func (p *Parser) parseDefinition() (ast.Definition, error) {
	if p.at(token.STRUCT) {
		return p.parseTypeDef()
	}
	fd, err := attempt(p, p.parseFunDef)
	if err == nil {
		return fd, nil
	}
	gd, gerr := p.parseGlobalDef()
	if gerr != nil {
		return nil, gerr
	}
	return gd, nil
}

func (p *Parser) parseFunDef() (ast.Definition, error) {
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamList(token.RPAREN)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IS); err != nil {
		return nil, err
	}
	body, err := p.parseStmtSeq(token.END)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return ast.FunDef{
		Decl: ast.Declaration{Name: name.Lit, Type: ast.TFun{Ret: ret, Params: params}},
		Body: ast.Block{Stmts: body},
	}, nil
}

func (p *Parser) parseTypeDef() (ast.Definition, error) {
	if _, err := p.expect(token.STRUCT); err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IS); err != nil {
		return nil, err
	}
	var fields []ast.Declaration
	for !p.at(token.END) {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		fields = append(fields, ast.Declaration{Name: fname.Lit, Type: typ})
		if p.at(token.SEMI) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.END); err != nil {
		return nil, err
	}
	return ast.TypeDef{Name: name.Lit, Fields: fields}, nil
}

func (p *Parser) parseGlobalDef() (ast.Definition, error) {
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
	return ast.GlobalDef{Decl: ast.Declaration{Name: name.Lit, Type: typ}, Value: val}, nil
}

func (p *Parser) parseParamList(terminator token.Kind) ([]ast.Declaration, error) {
	var decls []ast.Declaration
	if p.at(terminator) {
		return decls, nil
	}
	for {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		decls = append(decls, ast.Declaration{Name: name.Lit, Type: typ})
		if !p.at(token.COMMA) {
			return decls, nil
		}
		p.advance()
	}
}

// parseType parses a type: a base type followed by any number of `[]`
// (array) or `*` (pointer) suffixes.
func (p *Parser) parseType() (ast.Type, error) {
	base, err := p.parseBaseType()
	if err != nil {
		return nil, err
	}
	for {
		if p.at(token.LBRACKET) {
			p.advance()
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			base = ast.TArray{Elem: base}
			continue
		}
		if p.at(token.STAR) {
			p.advance()
			base = ast.TPtr{Elem: base}
			continue
		}
		break
	}
	return base, nil
}

func (p *Parser) parseBaseType() (ast.Type, error) {
	t := p.peek()
	switch t.Kind {
	case token.INTTYPE:
		p.advance()
		return ast.TInt{}, nil
	case token.BOOLTYPE:
		p.advance()
		return ast.TBool{}, nil
	case token.CHARTYPE:
		p.advance()
		return ast.TChar{}, nil
	case token.STRINGTYPE:
		p.advance()
		return ast.TString{}, nil
	case token.PAIR:
		p.advance()
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		fst, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COMMA); err != nil {
			return nil, err
		}
		snd, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return ast.TPair{Fst: fst, Snd: snd}, nil
	case token.IDENT:
		p.advance()
		return ast.TStruct{Name: t.Lit}, nil
	}
	return nil, syntaxErr(t.Pos, "expected a type but found %s", t.Kind)
}
