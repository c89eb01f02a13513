package wasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidlang/lucidc/internal/ir"
)

func TestGenerateRegistersRuntimeAndMainFunctions(t *testing.T) {
	prog := &ir.Program{Expr: &ir.Int{Value: 42}}
	mod, err := Generate(prog)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range mod.Functions {
		names[f.Name] = true
	}
	for _, want := range []string{
		fnAllocate, fnMakeClosure, fnCopyClosure, fnApplyClosure,
		fnMakePack, fnWritePackField, fnReadPackField, fnReadPackTag,
		fnAdd, fnSub, fnDiv, fnEqInt,
		"main$inner", "main",
	} {
		assert.True(t, names[want], "expected function %q to be registered", want)
	}

	var mainExported bool
	for _, e := range mod.Exports {
		if e.Name == "main" {
			mainExported = true
		}
	}
	assert.True(t, mainExported)
}

func TestGenerateDirectRecursiveCall(t *testing.T) {
	// fib$inner(x) = if eq_int(x,1) then 1 else add(fib$inner(sub(x,1)), fib$inner(sub(x,2)))
	fibBody := &ir.If{
		Cond: &ir.Application{
			Func: &ir.Application{Func: &ir.Var{Name: ir.Free{Name: "eq_int"}}, Arg: &ir.Var{Name: ir.Bound{Index: 0}}},
			Arg:  &ir.Int{Value: 1},
		},
		Then: &ir.Int{Value: 1},
		Else: &ir.Application{
			Func: &ir.Application{Func: &ir.Var{Name: ir.Free{Name: "add"}}, Arg: &ir.Application{Func: &ir.Var{Name: ir.Free{Name: "fib"}}, Arg: &ir.Application{Func: &ir.Application{Func: &ir.Var{Name: ir.Free{Name: "sub"}}, Arg: &ir.Var{Name: ir.Bound{Index: 0}}}, Arg: &ir.Int{Value: 1}}}},
			Arg:  &ir.Application{Func: &ir.Var{Name: ir.Free{Name: "fib"}}, Arg: &ir.Application{Func: &ir.Application{Func: &ir.Var{Name: ir.Free{Name: "sub"}}, Arg: &ir.Var{Name: ir.Bound{Index: 0}}}, Arg: &ir.Int{Value: 2}}},
		},
	}
	prog := &ir.Program{
		Declarations: []ir.Declaration{{Name: "fib", Arguments: []string{"x"}, Body: fibBody}},
		Expr:         &ir.Application{Func: &ir.Var{Name: ir.Free{Name: "fib"}}, Arg: &ir.Int{Value: 10}},
	}
	mod, err := Generate(prog)
	require.NoError(t, err)

	var fibInner *Function
	for i := range mod.Functions {
		if mod.Functions[i].Name == "fib$inner" {
			fibInner = &mod.Functions[i]
		}
	}
	require.NotNil(t, fibInner)

	// The else branch must contain a direct Call (not an apply_closure
	// dance) to fib$inner somewhere in its instruction tree.
	var found bool
	var walk func([]Instr)
	walk = func(instrs []Instr) {
		for _, ins := range instrs {
			switch ins := ins.(type) {
			case Call:
				if mod.Functions[ins.FuncIndex].Name == "fib$inner" {
					found = true
				}
			case If:
				walk(ins.Then)
				walk(ins.Else)
			}
		}
	}
	walk(fibInner.Body)
	assert.True(t, found, "expected a direct call to fib$inner")
}
