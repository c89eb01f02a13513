package wasm

import (
	"testing"

	"github.com/lucidlang/lucidc/internal/ir"
	"github.com/lucidlang/lucidc/testutil"
)

// TestGenerateFunctionNamesGolden locks down the fixed set of function
// names every generated module carries regardless of the input program
// (the runtime primitives plus main's $inner/trampoline pair) - a
// regression net for accidental renames of the runtime contract spec.md
// section 4.7 names explicitly.
func TestGenerateFunctionNamesGolden(t *testing.T) {
	mod, err := Generate(&ir.Program{Expr: &ir.Int{Value: 1}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	names := make([]string, len(mod.Functions))
	for i, f := range mod.Functions {
		names[i] = f.Name
	}
	testutil.CompareWithGolden(t, "wasm", "runtime_function_names", names)
}
