package check

import (
	"github.com/lucidlang/lucidc/internal/ast"
	"github.com/lucidlang/lucidc/internal/report"
	"github.com/lucidlang/lucidc/internal/types"
)

// inferPattern types a pattern against an expected scrutinee type, returning
// the bindings it introduces in left-to-right order (spec.md section 4.5).
// Shadowing within one pattern is permitted: later bindings simply appear
// later in the slice, and bindWithRestore installs them in that order so
// the later one wins at lookup time.
func (cs *CheckState) inferPattern(p ast.Pattern, expected types.Monotype) ([]binding, error) {
	switch p := p.(type) {
	case *ast.PVar:
		return []binding{{Name: p.Name, Type: expected}}, nil

	case *ast.PConstructor:
		info, ok := cs.Types[p.Type]
		if !ok {
			return nil, report.Wrap(report.Newf(report.PhaseTypecheck, report.TYP002UnknownType,
				map[string]any{"type": p.Type}, "unknown type %q", p.Type))
		}
		_, ctor, ok := info.ConstructorTag(p.Constructor)
		if !ok {
			return nil, report.Wrap(report.Newf(report.PhaseTypecheck, report.TYP003UnknownConstructor,
				map[string]any{"type": p.Type, "constructor": p.Constructor},
				"unknown constructor %q on type %q", p.Constructor, p.Type))
		}

		tyArgs := make(map[string]types.Monotype, len(info.TyArgs))
		applied := make([]types.Monotype, len(info.TyArgs))
		for i, v := range info.TyArgs {
			fresh := cs.Fresh()
			tyArgs[v] = fresh
			applied[i] = fresh
		}
		if err := types.Unify(cs.Sub, expected, &types.Constructor{Name: p.Type, Arguments: applied}); err != nil {
			return nil, err
		}

		if len(p.Fields) != len(ctor.ArgTypes) {
			return nil, report.Wrap(report.Newf(report.PhaseTypecheck, report.TYP003UnknownConstructor,
				map[string]any{"type": p.Type, "constructor": p.Constructor},
				"constructor %q expects %d field pattern(s), got %d", p.Constructor, len(ctor.ArgTypes), len(p.Fields)))
		}

		var all []binding
		for i, field := range p.Fields {
			fieldExpected := substVars(ctor.ArgTypes[i], tyArgs)
			bs, err := cs.inferPattern(field, fieldExpected)
			if err != nil {
				return nil, err
			}
			all = append(all, bs...)
		}
		return all, nil

	default:
		return nil, report.Wrap(report.Newf(report.PhaseTypecheck, report.TYP001UnknownVariable,
			nil, "unhandled pattern form %T", p))
	}
}
