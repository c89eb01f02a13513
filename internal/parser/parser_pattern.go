package parser

import (
	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/lexer"
)

// parsePattern parses one match-arm pattern: either a plain variable binder
// or a constructor pattern `Type::Ctor(subpatterns...)`.
func (p *Parser) parsePattern() (ast.Pattern, error) {
	pos := p.pos()
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != lexer.COLONCOLON {
		return &ast.PVar{Node: ast.Node{NodePos: pos}, Name: name.Literal}, nil
	}
	if _, err := p.expect(lexer.COLONCOLON); err != nil {
		return nil, err
	}
	ctor, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	fields, err := p.parseFieldPatterns()
	if err != nil {
		return nil, err
	}
	return &ast.PConstructor{Node: ast.Node{NodePos: pos}, Type: name.Literal, Constructor: ctor.Literal, Fields: fields}, nil
}

func (p *Parser) parseFieldPatterns() ([]ast.Pattern, error) {
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var fields []ast.Pattern
	for p.cur.Kind != lexer.RPAREN {
		f, err := p.parsePattern()
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
		if p.cur.Kind == lexer.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return fields, nil
}
