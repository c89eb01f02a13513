package check

import (
	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/types"
)

// TypeMapFromDecls translates a program's surface ADT declarations into the
// types.TypeMap the checker (and, downstream, internal/lower's constructor
// tag lookup) needs. internal/driver (and through it cmd/lucidc) and the
// tests use it; the REPL, which merges each line's declarations into its
// session TypeMap, builds the TypeInfo itself from ResolveTypeExpr.
func TypeMapFromDecls(decls []ast.TypeDecl) types.TypeMap {
	tm := types.NewTypeMap()
	for _, decl := range decls {
		info := &types.TypeInfo{TyArgs: decl.TyArgs}
		for _, c := range decl.Constructors {
			argTypes := make([]types.Monotype, len(c.ArgTypes))
			for i, te := range c.ArgTypes {
				argTypes[i] = ResolveTypeExpr(te)
			}
			info.Constructors = append(info.Constructors, types.DataConstructor{Name: c.Name, ArgTypes: argTypes})
		}
		tm.Declare(decl.Name, info)
	}
	return tm
}

// ResolveTypeExpr converts one surface type annotation into a Monotype. A
// TEVar names one of the enclosing declaration's own type parameters; a
// TECon is a concrete (possibly applied) type constructor reference.
func ResolveTypeExpr(te ast.TypeExpr) types.Monotype {
	switch te := te.(type) {
	case ast.TEVar:
		return &types.Var{Name: te.Name}
	case ast.TECon:
		if te.Name == "Int" {
			return types.Int()
		}
		if te.Name == "Bool" {
			return types.Bool()
		}
		args := make([]types.Monotype, len(te.Args))
		for i, a := range te.Args {
			args[i] = ResolveTypeExpr(a)
		}
		return &types.Constructor{Name: te.Name, Arguments: args}
	default:
		return types.Int()
	}
}
