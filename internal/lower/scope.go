package lower

import "github.com/lucidlang/lucidc/internal/ir"

// scopeEntry is one frame of the lowering-time lexical scope stack.
// frameEntry corresponds to an actual IR binder (Declaration argument list,
// Let, or a flattened Match case) and consumes Bound-index depth for
// anything below it; aliasEntry is a compile-time-only name introduced by a
// `let rec` binding and consumes no depth (spec.md section 4.6: "the
// recursive function is hoisted before its body is lowered so the name is
// resolvable").
type scopeEntry interface{ isScopeEntry() }

type frameEntry struct{ names []string }

func (frameEntry) isScopeEntry() {}

// aliasEntry resolves name to a direct call against the already-hoisted
// declName, re-supplying declName's own leading captureCount arguments
// (its own argument frame, which sits directly inside this alias - see
// lowerLetRec - so their Bound indices are offset by every binder pushed
// inside the body since). This lets a recursive closure that captures free variables
// call itself without needing access to an enclosing stack frame it no
// longer has once hoisted to a top-level WASM function.
type aliasEntry struct {
	name         string
	declName     string
	captureCount int
}

func (aliasEntry) isScopeEntry() {}

// resolve looks up name in scope, innermost entry first. found is false
// when name is not lexically bound at all (assumed to be a runtime
// primitive or other embedder-provided global, which the caller falls back
// to treating as Var(Free(name))).
func resolve(scope []scopeEntry, name string) (ir.Expr, bool) {
	depth := 0
	for i := len(scope) - 1; i >= 0; i-- {
		switch f := scope[i].(type) {
		case frameEntry:
			for pos, n := range f.names {
				if n == name {
					return &ir.Var{Name: ir.Bound{Index: depth + pos}}, true
				}
			}
			depth += len(f.names)
		case aliasEntry:
			if f.name == name {
				var e ir.Expr = &ir.Var{Name: ir.Free{Name: f.declName}}
				for i := 0; i < f.captureCount; i++ {
					// depth includes declName's own argument frame of
					// captureCount captured names plus the lambda parameter.
					e = &ir.Application{Func: e, Arg: &ir.Var{Name: ir.Bound{Index: depth - f.captureCount - 1 + i}}}
				}
				return e, true
			}
		}
	}
	return nil, false
}

// isCapturable reports whether name resolves to an actual local value (a
// frameEntry) as opposed to a compile-time alias or an unresolved global -
// only capturable names become extra closure parameters in lowerLambda.
func isCapturable(scope []scopeEntry, name string) bool {
	for i := len(scope) - 1; i >= 0; i-- {
		switch f := scope[i].(type) {
		case frameEntry:
			for _, n := range f.names {
				if n == name {
					return true
				}
			}
		case aliasEntry:
			if f.name == name {
				return false
			}
		}
	}
	return false
}
