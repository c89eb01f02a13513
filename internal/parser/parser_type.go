package parser

import (
	"unicode"

	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/lexer"
)

// parseTypeExpr parses one type annotation inside a constructor's argument
// list. A lowercase identifier not followed by `<...>` is taken to be a
// reference to one of the enclosing declaration's type parameters (TEVar);
// anything else is an applied type constructor (TECon).
func (p *Parser) parseTypeExpr() (ast.TypeExpr, error) {
	name, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != lexer.LANGLE {
		if isLowerIdent(name.Literal) {
			return ast.TEVar{Name: name.Literal}, nil
		}
		return ast.TECon{Name: name.Literal}, nil
	}
	if _, err := p.expect(lexer.LANGLE); err != nil {
		return nil, err
	}
	var args []ast.TypeExpr
	for p.cur.Kind != lexer.RANGLE {
		arg, err := p.parseTypeExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Kind == lexer.COMMA {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(lexer.RANGLE); err != nil {
		return nil, err
	}
	return ast.TECon{Name: name.Literal, Args: args}, nil
}

func isLowerIdent(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsLower(rune(s[0]))
}
