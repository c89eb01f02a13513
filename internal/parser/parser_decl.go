package parser

import (
	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/lexer"
)

// parseTypeDecl parses `type Name<tyArgs...> { Ctor(argTypes...), ... }`.
func (p *Parser) parseTypeDecl() (*ast.TypeDecl, error) {
	pos := p.pos()
	if _, err := p.expect(lexer.TYPE); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	var tyArgs []string
	if p.cur.Kind == lexer.LANGLE {
		if err := p.next(); err != nil {
			return nil, err
		}
		for p.cur.Kind != lexer.RANGLE {
			arg, err := p.expect(lexer.IDENT)
			if err != nil {
				return nil, err
			}
			tyArgs = append(tyArgs, arg.Literal)
			if p.cur.Kind == lexer.COMMA {
				if err := p.next(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.expect(lexer.RANGLE); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return nil, err
	}
	var ctors []ast.ConstructorDecl
	for p.cur.Kind != lexer.RBRACE {
		ctor, err := p.parseConstructorDecl()
		if err != nil {
			return nil, err
		}
		ctors = append(ctors, *ctor)
		if p.cur.Kind == lexer.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.RBRACE); err != nil {
		return nil, err
	}
	return &ast.TypeDecl{Pos: pos, Name: name.Literal, TyArgs: tyArgs, Constructors: ctors}, nil
}

func (p *Parser) parseConstructorDecl() (*ast.ConstructorDecl, error) {
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var argTypes []ast.TypeExpr
	for p.cur.Kind != lexer.RPAREN {
		te, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		argTypes = append(argTypes, te)
		if p.cur.Kind == lexer.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &ast.ConstructorDecl{Name: name.Literal, ArgTypes: argTypes}, nil
}
