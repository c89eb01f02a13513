// Package parser is a recursive-descent parser over the token stream
// internal/lexer produces, building the internal/ast tree the type checker
// consumes. Like internal/lexer, it is the external collaborator spec.md
// section 1 excludes from the core proper. Grounded on the teacher's
// split-by-concern parser (parser.go driving parser_expr.go/
// parser_pattern.go/parser_decl.go/parser_type.go).
package parser

import (
	"fmt"

	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/lexer"
)

// Parser holds one token of lookahead over a Lexer.
type Parser struct {
	lex  *lexer.Lexer
	file string
	cur  lexer.Token
	err  error
}

// New returns a Parser ready to parse src.
func New(src []byte, file string) (*Parser, error) {
	p := &Parser{lex: lexer.New(src, file), file: file}
	if err := p.next(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) pos() ast.Pos {
	return ast.Pos{Line: p.cur.Line, Column: p.cur.Column, File: p.file}
}

func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	if p.cur.Kind != kind {
		return lexer.Token{}, p.errorf("expected %s, got %s %q", kind, p.cur.Kind, p.cur.Literal)
	}
	tok := p.cur
	if err := p.next(); err != nil {
		return lexer.Token{}, err
	}
	return tok, nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("parse error at %s: %s", p.pos(), fmt.Sprintf(format, args...))
}

// ParseProgram parses a full program: zero or more ADT declarations
// followed by the expression to compile (spec.md section 6).
func ParseProgram(src []byte, file string) (*ast.Program, error) {
	p, err := New(src, file)
	if err != nil {
		return nil, err
	}
	var decls []ast.TypeDecl
	for p.cur.Kind == lexer.TYPE {
		d, err := p.parseTypeDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, *d)
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Kind != lexer.EOF {
		return nil, p.errorf("unexpected trailing token %s %q", p.cur.Kind, p.cur.Literal)
	}
	return &ast.Program{Decls: decls, Expr: expr}, nil
}
