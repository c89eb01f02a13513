// Package driver wires the pipeline spec.md section 6 describes - parse,
// typecheck, lower, generate, encode - into the handful of entry points
// cmd/lucidc and internal/repl both need. Grounded on the teacher's
// cmd/ailang/main.go, which inlines the same kind of "parse then run the
// next stage" sequencing directly in its command handlers; this package
// exists so that sequencing isn't duplicated between the CLI and the REPL.
package driver

import (
	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/check"
	"github.com/lucidlang/lucidc/internal/ir"
	"github.com/lucidlang/lucidc/internal/lower"
	"github.com/lucidlang/lucidc/internal/parser"
	"github.com/lucidlang/lucidc/internal/report"
	"github.com/lucidlang/lucidc/internal/types"
	"github.com/lucidlang/lucidc/internal/wasm"
	"github.com/lucidlang/lucidc/internal/wasmencode"
)

// CheckResult is everything a caller needs after a successful typecheck:
// the parsed program (for printing or lowering) and the expression's
// principal type, fully zonked against the checker's final substitution.
type CheckResult struct {
	Program *ast.Program
	Type    types.Monotype
	State   *check.CheckState
}

// Parse parses src and reports a *report.Report on failure (spec.md
// section 7's PAR001).
func Parse(src []byte, file string) (*ast.Program, error) {
	prog, err := parser.ParseProgram(src, file)
	if err != nil {
		return nil, report.Wrap(report.New(report.PhaseParse, report.PAR001Syntax, err.Error(), nil))
	}
	return prog, nil
}

// Check parses and typechecks src, returning the principal type of its
// top-level expression. The arithmetic/comparison runtime primitives
// (add/sub/div/eq_int) are bound into the environment for the extent of
// inference - they are embedder-provided globals, not surface
// declarations, mirroring how internal/wasm registers them as fixed
// two-argument functions rather than anything the parser produces.
func Check(src []byte, file string) (*CheckResult, error) {
	prog, err := Parse(src, file)
	if err != nil {
		return nil, err
	}
	cs := check.NewCheckState(check.TypeMapFromDecls(prog.Decls))
	env := types.NewEnvironment()

	var ty types.Monotype
	err = bindArithmeticPrimitives(env, func() error {
		var innerErr error
		ty, innerErr = cs.Infer(env, prog.Expr)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return &CheckResult{Program: prog, Type: cs.Sub.Apply(ty), State: cs}, nil
}

// bindArithmeticPrimitives binds add, sub, div (Int -> Int -> Int) and
// eq_int (Int -> Int -> Bool) for the dynamic extent of action.
func bindArithmeticPrimitives(env *types.Environment, action func() error) error {
	intToIntToInt := types.Mono(&types.Function{Arg: types.Int(), Result: &types.Function{Arg: types.Int(), Result: types.Int()}})
	intToIntToBool := types.Mono(&types.Function{Arg: types.Int(), Result: &types.Function{Arg: types.Int(), Result: types.Bool()}})
	return env.BindName("add", intToIntToInt, func() error {
		return env.BindName("sub", intToIntToInt, func() error {
			return env.BindName("div", intToIntToInt, func() error {
				return env.BindName("eq_int", intToIntToBool, action)
			})
		})
	})
}

// Lower typechecks src and runs closure conversion, returning the flat IR
// program internal/wasm consumes. Typechecking gates lowering (spec.md
// section 6): a program that doesn't typecheck is never lowered or
// codegenned.
func Lower(src []byte, file string) (*ir.Program, error) {
	res, err := Check(src, file)
	if err != nil {
		return nil, err
	}
	return lower.Lower(res.Program)
}

// Build runs the full pipeline and returns the encoded WASM binary.
func Build(src []byte, file string) ([]byte, error) {
	irProg, err := Lower(src, file)
	if err != nil {
		return nil, err
	}
	mod, err := wasm.Generate(irProg)
	if err != nil {
		return nil, report.Wrap(report.Newf(report.PhaseCodegen, report.COD001InternalBound, nil, "generate: %v", err))
	}
	out, err := wasmencode.Encode(mod)
	if err != nil {
		return nil, report.Wrap(report.Newf(report.PhaseCodegen, report.COD001InternalBound, nil, "encode: %v", err))
	}
	return out, nil
}

// Validate runs parse, typecheck, lower and codegen (but not encoding) and
// reports any failure, without producing a binary - the check behind
// `lucidc run` (spec.md section 8; no WASM VM is bundled, so "run" only
// validates that every stage succeeds).
func Validate(src []byte, file string) (*ir.Program, *wasm.Module, error) {
	irProg, err := Lower(src, file)
	if err != nil {
		return nil, nil, err
	}
	mod, err := wasm.Generate(irProg)
	if err != nil {
		return nil, nil, report.Wrap(report.Newf(report.PhaseCodegen, report.COD001InternalBound, nil, "generate: %v", err))
	}
	return irProg, mod, nil
}
