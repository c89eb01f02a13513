// Package lower implements closure conversion (spec.md section 4.6): it
// hoists every lambda body to a named top-level ir.Declaration, capturing
// the lambda's free variables as extra leading parameters, and rewrites
// pattern matches into tag-dispatched ir.Match nodes. Grounded on the
// hoisting pass in the teacher's internal/elaborate/elaborate.go (lift free
// variables, rewrite the call site to supply them) and, for the
// match-arm-to-tag-dispatch compilation, on the shape of the teacher's
// internal/dtree/decision_tree.go ("compile arms before interpreting"),
// simplified from a general decision tree to the flat per-constructor
// switch spec.md section 4.6 describes.
package lower

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/ir"
)

// Lower runs closure conversion over prog, returning the flat set of hoisted
// declarations plus the residual top-level expression (spec.md section 6's
// IR output).
func Lower(prog *ast.Program) (*ir.Program, error) {
	lw := &lowering{ctorTags: buildCtorTags(prog.Decls)}
	expr, err := lw.lowerExpr(nil, prog.Expr)
	if err != nil {
		return nil, err
	}
	return &ir.Program{Declarations: lw.decls, Expr: expr}, nil
}

// lowering carries the closure-conversion pass's own state: the
// accumulating list of hoisted declarations and the constructor-tag index
// built once from the program's ADT declarations.
type lowering struct {
	decls    []ir.Declaration
	ctorTags map[string]map[string]ctorInfo
}

type ctorInfo struct {
	tag   int
	arity int
}

func buildCtorTags(decls []ast.TypeDecl) map[string]map[string]ctorInfo {
	tags := make(map[string]map[string]ctorInfo, len(decls))
	for _, d := range decls {
		byName := make(map[string]ctorInfo, len(d.Constructors))
		for i, c := range d.Constructors {
			byName[c.Name] = ctorInfo{tag: i, arity: len(c.ArgTypes)}
		}
		tags[d.Name] = byName
	}
	return tags
}

func (lw *lowering) ctorTag(typeName, ctorName string) (ctorInfo, error) {
	byName, ok := lw.ctorTags[typeName]
	if !ok {
		return ctorInfo{}, fmt.Errorf("lower: unknown type %q", typeName)
	}
	info, ok := byName[ctorName]
	if !ok {
		return ctorInfo{}, fmt.Errorf("lower: unknown constructor %q on type %q", ctorName, typeName)
	}
	return info, nil
}

// lowerExpr dispatches on the surface expression's concrete type, threading
// the lexical scope (internal/lower/scope.go) that resolves a surface name
// to either a locally-nameless Bound reference or a compile-time alias.
func (lw *lowering) lowerExpr(scope []scopeEntry, e ast.Expr) (ir.Expr, error) {
	switch e := e.(type) {
	case *ast.Int:
		return &ir.Int{Value: e.Value}, nil

	case *ast.Bool:
		return &ir.Bool{Value: e.Value}, nil

	case *ast.Var:
		if resolved, ok := resolve(scope, e.Name); ok {
			return resolved, nil
		}
		// Not lexically bound: a runtime primitive (add/sub/div/eq_int) or
		// other embedder-provided global, per internal/lower/scope.go.
		return &ir.Var{Name: ir.Free{Name: e.Name}}, nil

	case *ast.Lambda:
		return lw.lowerLambda(scope, e)

	case *ast.App:
		fn, err := lw.lowerExpr(scope, e.Func)
		if err != nil {
			return nil, err
		}
		arg, err := lw.lowerExpr(scope, e.Arg)
		if err != nil {
			return nil, err
		}
		return &ir.Application{Func: fn, Arg: arg}, nil

	case *ast.Let:
		return lw.lowerLet(scope, e)

	case *ast.LetRec:
		return lw.lowerLetRec(scope, e)

	case *ast.If:
		cond, err := lw.lowerExpr(scope, e.Cond)
		if err != nil {
			return nil, err
		}
		then, err := lw.lowerExpr(scope, e.Then)
		if err != nil {
			return nil, err
		}
		els, err := lw.lowerExpr(scope, e.Else)
		if err != nil {
			return nil, err
		}
		return &ir.If{Cond: cond, Then: then, Else: els}, nil

	case *ast.Match:
		return lw.lowerMatch(scope, e)

	case *ast.Construction:
		info, err := lw.ctorTag(e.Type, e.Constructor)
		if err != nil {
			return nil, err
		}
		values := make([]ir.Expr, len(e.Args))
		for i, a := range e.Args {
			v, err := lw.lowerExpr(scope, a)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return &ir.Pack{Tag: info.tag, Values: values}, nil

	default:
		return nil, fmt.Errorf("lower: unhandled expression form %T", e)
	}
}

// lowerLambda hoists a non-recursive lambda: its free variables (those
// resolvable in the enclosing scope) become the hoisted declaration's
// leading parameters, followed by the lambda's own binder. The call site is
// rewritten to a closure construction applied over the captured values, per
// spec.md section 4.6.
func (lw *lowering) lowerLambda(scope []scopeEntry, lam *ast.Lambda) (ir.Expr, error) {
	captured := lw.capturedFreeVars(scope, lam.Body, map[string]bool{lam.Param: true})
	declArgs := append(append([]string{}, captured...), lam.Param)
	declName := "lambda_" + uuid.NewString()

	innerScope := []scopeEntry{frameEntry{names: declArgs}}
	body, err := lw.lowerExpr(innerScope, lam.Body)
	if err != nil {
		return nil, err
	}
	lw.decls = append(lw.decls, ir.Declaration{Name: declName, Arguments: declArgs, Body: body})

	return lw.buildClosureExpr(scope, declName, captured)
}

// lowerLet binds e.Value (an ordinary, non-recursive value) into a single
// new locally-nameless slot for e.Body.
func (lw *lowering) lowerLet(scope []scopeEntry, e *ast.Let) (ir.Expr, error) {
	val, err := lw.lowerExpr(scope, e.Value)
	if err != nil {
		return nil, err
	}
	body, err := lw.lowerExpr(pushFrame(scope, []string{e.Name}), e.Body)
	if err != nil {
		return nil, err
	}
	return &ir.Let{Value: val, Body: body}, nil
}

// lowerLetRec hoists e's recursive function before lowering e.Body, so the
// name is resolvable (spec.md section 4.6). A self-call at the lambda's own
// arity is resolved through an aliasEntry re-supplying the hoisted
// declaration's own captured arguments, rather than rebuilding a closure -
// this is what lets a recursive call of matching arity compile to a direct
// call at code-generation time (spec.md section 4.7's "head is a free
// variable whose arity equals args.size" direct-call optimization).
//
// If e.Value is not syntactically a lambda, there is no function to hoist
// and no forward self-reference to resolve; this falls back to ordinary
// (non-recursive) let semantics, since spec.md's only recursive-let idiom
// (scenario 5, fib) is always a recursive function.
func (lw *lowering) lowerLetRec(scope []scopeEntry, e *ast.LetRec) (ir.Expr, error) {
	lam, ok := e.Value.(*ast.Lambda)
	if !ok {
		return lw.lowerLet(scope, &ast.Let{Node: e.Node, Name: e.Name, Value: e.Value, Body: e.Body})
	}

	bound := map[string]bool{lam.Param: true, e.Name: true}
	captured := lw.capturedFreeVars(scope, lam.Body, bound)
	declArgs := append(append([]string{}, captured...), lam.Param)
	declName := e.Name + "_" + uuid.NewString()

	innerScope := []scopeEntry{
		aliasEntry{name: e.Name, declName: declName, captureCount: len(captured)},
		frameEntry{names: declArgs},
	}
	body, err := lw.lowerExpr(innerScope, lam.Body)
	if err != nil {
		return nil, err
	}
	lw.decls = append(lw.decls, ir.Declaration{Name: declName, Arguments: declArgs, Body: body})

	closureExpr, err := lw.buildClosureExpr(scope, declName, captured)
	if err != nil {
		return nil, err
	}
	restBody, err := lw.lowerExpr(pushFrame(scope, []string{e.Name}), e.Body)
	if err != nil {
		return nil, err
	}
	return &ir.Let{Value: closureExpr, Body: restBody}, nil
}

// buildClosureExpr constructs the IR value standing in for a hoisted
// declaration at its point of definition: a zero-arg closure over declName
// (make_closure(arity, code_ptr) at code-generation time, per spec.md
// section 4.7), partially applied over each captured free variable
// resolved in the *enclosing* scope.
func (lw *lowering) buildClosureExpr(scope []scopeEntry, declName string, captured []string) (ir.Expr, error) {
	var expr ir.Expr = &ir.Var{Name: ir.Free{Name: declName}}
	for _, name := range captured {
		argExpr, ok := resolve(scope, name)
		if !ok {
			return nil, fmt.Errorf("lower: captured name %q not resolvable in enclosing scope", name)
		}
		expr = &ir.Application{Func: expr, Arg: argExpr}
	}
	return expr, nil
}

// capturedFreeVars returns, in stable first-occurrence order, every name
// free in body (relative to bound) that resolves to an actual local value
// in scope - i.e. excluding both names bound within body itself and
// references to runtime primitives/other unresolved globals, which are
// never captured (internal/lower/scope.go's isCapturable).
func (lw *lowering) capturedFreeVars(scope []scopeEntry, body ast.Expr, bound map[string]bool) []string {
	var order []string
	seen := make(map[string]bool)
	collectFreeVars(body, bound, &order, seen)

	captured := make([]string, 0, len(order))
	for _, name := range order {
		if isCapturable(scope, name) {
			captured = append(captured, name)
		}
	}
	return captured
}

func collectFreeVars(e ast.Expr, bound map[string]bool, order *[]string, seen map[string]bool) {
	switch e := e.(type) {
	case *ast.Int, *ast.Bool:
	case *ast.Var:
		if !bound[e.Name] && !seen[e.Name] {
			seen[e.Name] = true
			*order = append(*order, e.Name)
		}
	case *ast.Lambda:
		collectFreeVars(e.Body, extend(bound, e.Param), order, seen)
	case *ast.App:
		collectFreeVars(e.Func, bound, order, seen)
		collectFreeVars(e.Arg, bound, order, seen)
	case *ast.Let:
		collectFreeVars(e.Value, bound, order, seen)
		collectFreeVars(e.Body, extend(bound, e.Name), order, seen)
	case *ast.LetRec:
		inner := extend(bound, e.Name)
		collectFreeVars(e.Value, inner, order, seen)
		collectFreeVars(e.Body, inner, order, seen)
	case *ast.If:
		collectFreeVars(e.Cond, bound, order, seen)
		collectFreeVars(e.Then, bound, order, seen)
		collectFreeVars(e.Else, bound, order, seen)
	case *ast.Match:
		collectFreeVars(e.Scrutinee, bound, order, seen)
		for _, c := range e.Cases {
			inner := bound
			for _, n := range patternVars(c.Pattern) {
				inner = extend(inner, n)
			}
			collectFreeVars(c.Body, inner, order, seen)
		}
	case *ast.Construction:
		for _, a := range e.Args {
			collectFreeVars(a, bound, order, seen)
		}
	}
}

func patternVars(p ast.Pattern) []string {
	switch p := p.(type) {
	case *ast.PVar:
		return []string{p.Name}
	case *ast.PConstructor:
		var names []string
		for _, f := range p.Fields {
			names = append(names, patternVars(f)...)
		}
		return names
	default:
		return nil
	}
}

func extend(bound map[string]bool, name string) map[string]bool {
	next := make(map[string]bool, len(bound)+1)
	for k := range bound {
		next[k] = true
	}
	next[name] = true
	return next
}

func pushFrame(scope []scopeEntry, names []string) []scopeEntry {
	next := make([]scopeEntry, len(scope)+1)
	copy(next, scope)
	next[len(scope)] = frameEntry{names: names}
	return next
}

// lowerMatch lowers a surface Match into a single ir.Match dispatching on
// the scrutinee's runtime tag. Every case pattern must be a constructor
// pattern (a bare variable/wildcard arm has no tag to dispatch on and is
// not required by any scenario spec.md names).
func (lw *lowering) lowerMatch(scope []scopeEntry, e *ast.Match) (ir.Expr, error) {
	scrut, err := lw.lowerExpr(scope, e.Scrutinee)
	if err != nil {
		return nil, err
	}
	cases := make([]ir.Case, 0, len(e.Cases))
	for _, c := range e.Cases {
		pc, ok := c.Pattern.(*ast.PConstructor)
		if !ok {
			return nil, fmt.Errorf("lower: match arms must be constructor patterns, got %T", c.Pattern)
		}
		irCase, err := lw.lowerCase(scope, pc, c.Body)
		if err != nil {
			return nil, err
		}
		cases = append(cases, irCase)
	}
	return &ir.Match{Scrutinee: scrut, Cases: cases}, nil
}

// lowerCase lowers one constructor-pattern match arm. The pattern's direct
// fields become one new locally-nameless frame (IR.Case.Binders fields,
// positionally); any field that is itself a nested constructor pattern is
// flattened via flattenFields into an intermediate ir.Match scrutinizing
// that field's freshly-bound slot, per spec.md section 4.6.
func (lw *lowering) lowerCase(scope []scopeEntry, pat *ast.PConstructor, rhs ast.Expr) (ir.Case, error) {
	info, err := lw.ctorTag(pat.Type, pat.Constructor)
	if err != nil {
		return ir.Case{}, err
	}
	fieldNames := placeholderNames(pat.Fields)
	innerScope := pushFrame(scope, fieldNames)
	body, err := lw.flattenFields(innerScope, pat.Fields, fieldNames, 0, func(finalScope []scopeEntry) (ir.Expr, error) {
		return lw.lowerExpr(finalScope, rhs)
	})
	if err != nil {
		return ir.Case{}, err
	}
	return ir.Case{Tag: info.tag, Binders: len(pat.Fields), Body: body}, nil
}

// flattenFields walks fields left to right. A plain variable field needs no
// further action (its name is already bound in the frame pushed by the
// caller). A nested constructor field wraps the remaining computation - the
// rest of this level's fields, any deeper nesting they introduce, and
// finally k - inside an intermediate one-case ir.Match scrutinizing that
// field's bound slot, so every Bound index the final continuation uses is
// computed relative to the fully extended scope at the point k actually
// runs (the standard locally-nameless "thread the scope, don't
// re-lift after the fact" discipline).
func (lw *lowering) flattenFields(scope []scopeEntry, fields []ast.Pattern, names []string, idx int, k func([]scopeEntry) (ir.Expr, error)) (ir.Expr, error) {
	if idx == len(fields) {
		return k(scope)
	}
	switch f := fields[idx].(type) {
	case *ast.PVar:
		return lw.flattenFields(scope, fields, names, idx+1, k)

	case *ast.PConstructor:
		info, err := lw.ctorTag(f.Type, f.Constructor)
		if err != nil {
			return nil, err
		}
		nestedNames := placeholderNames(f.Fields)
		nestedScope := pushFrame(scope, nestedNames)
		innerBody, err := lw.flattenFields(nestedScope, f.Fields, nestedNames, 0, func(finalScope []scopeEntry) (ir.Expr, error) {
			return lw.flattenFields(finalScope, fields, names, idx+1, k)
		})
		if err != nil {
			return nil, err
		}
		// names[idx] is this field's placeholder binder. Resolving it in the
		// current scope accounts for any frames that earlier nested fields
		// of the same list have pushed since that list's frame.
		scrutinee, ok := resolve(scope, names[idx])
		if !ok {
			return nil, fmt.Errorf("lower: pattern placeholder %q not in scope", names[idx])
		}
		return &ir.Match{
			Scrutinee: scrutinee,
			Cases:     []ir.Case{{Tag: info.tag, Binders: len(f.Fields), Body: innerBody}},
		}, nil

	default:
		return nil, fmt.Errorf("lower: unhandled pattern form %T", f)
	}
}

// placeholderNames returns one binder name per field: a PVar field's own
// name (so later references in the same pattern resolve), or a fresh
// synthetic name for a nested constructor field (only ever consulted as a
// Bound scrutinee by flattenFields, never looked up by surface name).
func placeholderNames(fields []ast.Pattern) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		if pv, ok := f.(*ast.PVar); ok {
			names[i] = pv.Name
		} else {
			names[i] = "_match_" + uuid.NewString()
		}
	}
	return names
}
