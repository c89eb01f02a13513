// Package ast is the surface syntax model: expressions, patterns, type
// declarations and names produced by the lexer/parser and consumed by the
// type checker. spec.md section 1 treats lexing and parsing as external
// collaborators; this package plus internal/lexer and internal/parser
// supply a concrete (if minimal) instance of that collaborator so the core
// can be driven end to end.
package ast

import "fmt"

// Pos is a source position, grounded on the teacher's internal/ast.Pos.
type Pos struct {
	Line   int
	Column int
	File   string
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Expr is the base interface for every surface expression form named in
// spec.md section 4.5.
type Expr interface {
	Position() Pos
	exprNode()
}

// Node is the embedded base every Expr/Pattern variant carries, giving it
// a Position(). Exported (unlike the teacher's lowercase node) so
// internal/parser can construct literals directly.
type Node struct{ NodePos Pos }

func (n Node) Position() Pos { return n.NodePos }

// Int is an integer literal.
type Int struct {
	Node
	Value int32
}

func (*Int) exprNode() {}

// Bool is a boolean literal.
type Bool struct {
	Node
	Value bool
}

func (*Bool) exprNode() {}

// Var is a variable reference.
type Var struct {
	Node
	Name string
}

func (*Var) exprNode() {}

// Lambda is a single-argument function literal `\x. body`.
type Lambda struct {
	Node
	Param string
	Body  Expr
}

func (*Lambda) exprNode() {}

// App is function application.
type App struct {
	Node
	Func Expr
	Arg  Expr
}

func (*App) exprNode() {}

// Let is a non-recursive binding.
type Let struct {
	Node
	Name  string
	Value Expr
	Body  Expr
}

func (*Let) exprNode() {}

// LetRec is a self-recursive binding: `let rec f = \x. ... in body`.
type LetRec struct {
	Node
	Name  string
	Value Expr
	Body  Expr
}

func (*LetRec) exprNode() {}

// If is a conditional.
type If struct {
	Node
	Cond Expr
	Then Expr
	Else Expr
}

func (*If) exprNode() {}

// MatchCase is one arm of a Match.
type MatchCase struct {
	Pattern Pattern
	Body    Expr
}

// Match is pattern matching over an ADT value. Empty Cases is permitted
// (spec.md section 4.5) and types as a fresh unknown.
type Match struct {
	Node
	Scrutinee Expr
	Cases     []MatchCase
}

func (*Match) exprNode() {}

// Construction builds an ADT value: T::C(args...).
type Construction struct {
	Node
	Type        string
	Constructor string
	Args        []Expr
}

func (*Construction) exprNode() {}

// Pattern is the base interface for patterns (spec.md section 4.5,
// inferPattern).
type Pattern interface {
	Position() Pos
	patternNode()
}

// PVar binds the whole scrutinee (or sub-value) to a name.
type PVar struct {
	Node
	Name string
}

func (*PVar) patternNode() {}

// PConstructor matches one ADT constructor and recursively patterns over
// its fields.
type PConstructor struct {
	Node
	Type        string
	Constructor string
	Fields      []Pattern
}

func (*PConstructor) patternNode() {}

// ConstructorDecl is one constructor of a TypeDecl.
type ConstructorDecl struct {
	Name     string
	ArgTypes []TypeExpr
}

// TypeDecl is an ADT declaration: `type Name<tyArgs> { Ctor(args), ... }`.
type TypeDecl struct {
	Pos          Pos
	Name         string
	TyArgs       []string
	Constructors []ConstructorDecl
}

// TypeExpr is the surface syntax for a type annotation appearing inside a
// TypeDecl's constructor argument list.
type TypeExpr interface {
	typeExprNode()
}

// TEVar references one of the enclosing declaration's TyArgs.
type TEVar struct{ Name string }

func (TEVar) typeExprNode() {}

// TECon references a (possibly applied) type constructor, e.g. Int,
// List<a>.
type TECon struct {
	Name string
	Args []TypeExpr
}

func (TECon) typeExprNode() {}

// Program is the core's input per spec.md section 6: a list of ADT
// declarations followed by the expression to type and compile.
type Program struct {
	Decls []TypeDecl
	Expr  Expr
}
