package check

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidlang/lucidc/internal/parser"
	"github.com/lucidlang/lucidc/internal/report"
	"github.com/lucidlang/lucidc/internal/types"
)

func checkSource(t *testing.T, src string) (types.Monotype, *CheckState, error) {
	t.Helper()
	prog, err := parser.ParseProgram([]byte(src), "test.lucid")
	require.NoError(t, err)

	cs := NewCheckState(TypeMapFromDecls(prog.Decls))
	env := types.NewEnvironment()
	ty, err := cs.Infer(env, prog.Expr)
	return ty, cs, err
}

func TestIdentityPolymorphism(t *testing.T) {
	ty, cs, err := checkSource(t, "let id = \\x. x in id")
	require.NoError(t, err)
	scheme := cs.Generalise(ty, types.NewEnvironment())
	fn, ok := scheme.Body.(*types.Function)
	require.True(t, ok, "expected a function type, got %s", scheme.Body)
	require.Len(t, scheme.Vars, 1)
	argVar, ok := fn.Arg.(*types.Var)
	require.True(t, ok)
	resVar, ok := fn.Result.(*types.Var)
	require.True(t, ok)
	assert.Equal(t, argVar.Name, resVar.Name)
}

func TestOccursCheckFailure(t *testing.T) {
	_, _, err := checkSource(t, "\\x. x x")
	require.Error(t, err)
	rep, ok := report.As(err)
	require.True(t, ok)
	assert.Equal(t, report.TYP004OccursCheck, rep.Code)
}

func TestIfBranchAgreement(t *testing.T) {
	ty, cs, err := checkSource(t, "if true then 1 else 2")
	require.NoError(t, err)
	assert.True(t, types.IsInt(cs.Sub.Apply(ty)))
}

func TestIfBranchMismatch(t *testing.T) {
	_, _, err := checkSource(t, "if 1 then 1 else 2")
	require.Error(t, err)
	rep, ok := report.As(err)
	require.True(t, ok)
	assert.Equal(t, report.TYP005UnifyMismatch, rep.Code)
}

func TestMaybeMatch(t *testing.T) {
	src := "type Maybe<a> { Nothing(), Just(a) }\n" +
		"\\m. match m { Maybe::Just(x) -> x, Maybe::Nothing() -> 0 }"
	ty, cs, err := checkSource(t, src)
	require.NoError(t, err)
	zonked := cs.Sub.Apply(ty)
	fn, ok := zonked.(*types.Function)
	require.True(t, ok)
	argCon, ok := fn.Arg.(*types.Constructor)
	require.True(t, ok)
	assert.Equal(t, "Maybe", argCon.Name)
	require.Len(t, argCon.Arguments, 1)
	assert.True(t, types.IsInt(argCon.Arguments[0]))
	assert.True(t, types.IsInt(fn.Result))
}

func TestFibonacciTypeChecksAsInt(t *testing.T) {
	src := "let rec fib = \\x. if eq_int x 1 then 1 else if eq_int x 2 then 1 else " +
		"add (fib (sub x 1)) (fib (sub x 2)) in fib 10"
	prog, err := parser.ParseProgram([]byte(src), "test.lucid")
	require.NoError(t, err)

	cs := NewCheckState(types.NewTypeMap())
	env := types.NewEnvironment()
	intToIntToInt := types.Mono(&types.Function{Arg: types.Int(), Result: &types.Function{Arg: types.Int(), Result: types.Int()}})
	intToIntToBool := types.Mono(&types.Function{Arg: types.Int(), Result: &types.Function{Arg: types.Int(), Result: types.Bool()}})

	var ty types.Monotype
	err = env.BindName("add", intToIntToInt, func() error {
		return env.BindName("sub", intToIntToInt, func() error {
			return env.BindName("eq_int", intToIntToBool, func() error {
				var innerErr error
				ty, innerErr = cs.Infer(env, prog.Expr)
				return innerErr
			})
		})
	})
	require.NoError(t, err)
	assert.True(t, types.IsInt(cs.Sub.Apply(ty)))
}

func TestEmptyMatchYieldsFreshUnknown(t *testing.T) {
	src := "type Maybe<a> { Nothing(), Just(a) }\n" +
		"match Maybe::Nothing() { }"
	ty, _, err := checkSource(t, src)
	require.NoError(t, err)
	_, ok := ty.(*types.Unknown)
	assert.True(t, ok)
}

func TestGeneraliseInstantiateRoundTrip(t *testing.T) {
	cs := NewCheckState(types.NewTypeMap())
	env := types.NewEnvironment()
	p := &types.Polytype{Vars: []string{"a"}, Body: &types.Function{Arg: &types.Var{Name: "a"}, Result: &types.Var{Name: "a"}}}
	inst := cs.Instantiate(p)
	back := cs.Generalise(inst, env)
	assert.Len(t, back.Vars, 1)
	fn := back.Body.(*types.Function)
	assert.Equal(t, fn.Arg.(*types.Var).Name, fn.Result.(*types.Var).Name)
}

func TestApplyIsIdempotent(t *testing.T) {
	sub := types.NewSubstitution()
	u := &types.Unknown{ID: 0}
	require.NoError(t, sub.Solve(0, types.Int()))
	once := sub.Apply(u)
	twice := sub.Apply(once)
	assert.Equal(t, once.String(), twice.String())
}
