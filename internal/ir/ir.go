// Package ir is the locally-nameless intermediate representation internal/
// lower produces and internal/wasm consumes: a flat list of top-level
// Declarations (closures already converted) plus the residual Expr that
// drives the exported entry point. Grounded on the teacher's internal/core
// package (internal/core/core.go) for the "interface-per-node-kind with an
// unexported marker method" shape, generalized from ANF-with-let-bindings to
// the flatter Int/Bool/Var/Application/Pack/Match/If/Let/GetLocal set
// spec.md section 3 names.
package ir

import "fmt"

// LNName is either a Bound de Bruijn index or a Free top-level reference.
type LNName interface {
	lnName()
	String() string
}

// Bound is a de Bruijn index counting enclosing IR binders (Declaration
// argument lists, Let, Match Case), innermost first.
type Bound struct{ Index int }

func (Bound) lnName()          {}
func (b Bound) String() string { return fmt.Sprintf("#%d", b.Index) }

// Free names a top-level Declaration.
type Free struct{ Name string }

func (Free) lnName()          {}
func (f Free) String() string { return f.Name }

// Expr is one IR node.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// Int is an integer literal.
type Int struct{ Value int32 }

func (*Int) exprNode()        {}
func (e *Int) String() string { return fmt.Sprintf("%d", e.Value) }

// Bool is a boolean literal.
type Bool struct{ Value bool }

func (*Bool) exprNode()        {}
func (e *Bool) String() string { return fmt.Sprintf("%t", e.Value) }

// Var references a name, bound or free.
type Var struct{ Name LNName }

func (*Var) exprNode()        {}
func (e *Var) String() string { return e.Name.String() }

// Application is a single-argument function application; n-ary surface
// applications unfold to a left-leaning chain of these at lowering time.
type Application struct {
	Func Expr
	Arg  Expr
}

func (*Application) exprNode()        {}
func (e *Application) String() string { return fmt.Sprintf("(%s %s)", e.Func, e.Arg) }

// Pack constructs a tagged ADT value.
type Pack struct {
	Tag    int
	Values []Expr
}

func (*Pack) exprNode() {}
func (e *Pack) String() string {
	return fmt.Sprintf("pack(%d, %v)", e.Tag, e.Values)
}

// Case is one arm of a Match: a constructor tag, the number of fields it
// binds (in the order they were declared), and a body under those Binders
// additional locally-nameless binders.
type Case struct {
	Tag     int
	Binders int
	Body    Expr
}

// Match dispatches on a scrutinee's runtime tag.
type Match struct {
	Scrutinee Expr
	Cases     []Case
}

func (*Match) exprNode() {}
func (e *Match) String() string {
	return fmt.Sprintf("match(%s, %d cases)", e.Scrutinee, len(e.Cases))
}

// If is a conditional.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*If) exprNode() {}
func (e *If) String() string {
	return fmt.Sprintf("if(%s, %s, %s)", e.Cond, e.Then, e.Else)
}

// Let evaluates Value, binds it as a single new locally-nameless slot
// (Bound(0) within Body), and evaluates Body.
type Let struct {
	Value Expr
	Body  Expr
}

func (*Let) exprNode() {}
func (e *Let) String() string {
	return fmt.Sprintf("let(%s, %s)", e.Value, e.Body)
}

// GetLocal reads a WASM local by index. It never appears in the output of
// internal/lower, and internal/wasm does not create it either: code
// generation turns Bound references into local reads directly.
type GetLocal struct{ Index int }

func (*GetLocal) exprNode()        {}
func (e *GetLocal) String() string { return fmt.Sprintf("local[%d]", e.Index) }

// Declaration is one top-level hoisted function: Arguments names its
// parameters (used only for documentation/debugging - Body refers to them
// positionally via Bound indices), Body is the function's locally-nameless
// expression.
type Declaration struct {
	Name      string
	Arguments []string
	Body      Expr
}

// Program is the output of internal/lower: every hoisted Declaration plus
// the residual expression to evaluate (spec.md section 6's IR output).
type Program struct {
	Declarations []Declaration
	Expr         Expr
}
