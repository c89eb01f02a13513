package ast

import (
	"fmt"
	"strings"
)

// Print renders an expression as source-like text, used by diagnostics that
// need to name "the offending term" (spec.md section 7). Grounded on the
// teacher's internal/ast/print.go recursive-dispatch shape.
func Print(e Expr) string {
	switch e := e.(type) {
	case *Int:
		return fmt.Sprintf("%d", e.Value)
	case *Bool:
		return fmt.Sprintf("%t", e.Value)
	case *Var:
		return e.Name
	case *Lambda:
		return fmt.Sprintf("\\%s. %s", e.Param, Print(e.Body))
	case *App:
		return fmt.Sprintf("(%s %s)", Print(e.Func), Print(e.Arg))
	case *Let:
		return fmt.Sprintf("let %s = %s in %s", e.Name, Print(e.Value), Print(e.Body))
	case *LetRec:
		return fmt.Sprintf("let rec %s = %s in %s", e.Name, Print(e.Value), Print(e.Body))
	case *If:
		return fmt.Sprintf("if %s then %s else %s", Print(e.Cond), Print(e.Then), Print(e.Else))
	case *Match:
		cases := make([]string, len(e.Cases))
		for i, c := range e.Cases {
			cases[i] = fmt.Sprintf("%s -> %s", PrintPattern(c.Pattern), Print(c.Body))
		}
		return fmt.Sprintf("match %s { %s }", Print(e.Scrutinee), strings.Join(cases, ", "))
	case *Construction:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = Print(a)
		}
		return fmt.Sprintf("%s::%s(%s)", e.Type, e.Constructor, strings.Join(args, ", "))
	default:
		return "<?>"
	}
}

// PrintPattern renders a pattern as source-like text.
func PrintPattern(p Pattern) string {
	switch p := p.(type) {
	case *PVar:
		return p.Name
	case *PConstructor:
		fields := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = PrintPattern(f)
		}
		return fmt.Sprintf("%s::%s(%s)", p.Type, p.Constructor, strings.Join(fields, ", "))
	default:
		return "<?>"
	}
}
