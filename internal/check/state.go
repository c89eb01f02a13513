// Package check implements the type-checker: the inference judgement that
// traverses a parsed expression against a scoped types.Environment, owning
// the fresh-unknown supply and the mutable substitution spec.md section 5
// assigns to this phase (as opposed to internal/types, which owns the
// substitution's operations but not its lifecycle). Grounded on the
// teacher's internal/types.TypeChecker/InferenceContext split
// (internal/types/typechecker.go, inference.go), collapsed here into one
// CheckState since this language has no class/effect constraint solving to
// separate out.
package check

import (
	"github.com/lucidlang/lucidc/internal/types"
)

// CheckState is created per input program and discarded afterward
// (spec.md section 5).
type CheckState struct {
	Sub   *types.Substitution
	Types types.TypeMap
	next  int
}

// NewCheckState returns a CheckState seeded with tm (expected to already
// carry Int/Bool and any embedder-preseeded ADTs per spec.md section 6).
func NewCheckState(tm types.TypeMap) *CheckState {
	return &CheckState{Sub: types.NewSubstitution(), Types: tm}
}

// Fresh hands out a new Unknown from the monotonically increasing counter.
func (cs *CheckState) Fresh() *types.Unknown {
	u := &types.Unknown{ID: cs.next}
	cs.next++
	return u
}

// Instantiate substitutes a fresh Unknown for each of p's quantified
// variables (spec.md section 4.4).
func (cs *CheckState) Instantiate(p *types.Polytype) types.Monotype {
	if len(p.Vars) == 0 {
		return p.Body
	}
	fresh := make(map[string]types.Monotype, len(p.Vars))
	for _, v := range p.Vars {
		fresh[v] = cs.Fresh()
	}
	return substVars(p.Body, fresh)
}

func substVars(t types.Monotype, fresh map[string]types.Monotype) types.Monotype {
	switch t := t.(type) {
	case *types.Var:
		if r, ok := fresh[t.Name]; ok {
			return r
		}
		return t
	case *types.Function:
		return &types.Function{Arg: substVars(t.Arg, fresh), Result: substVars(t.Result, fresh)}
	case *types.Constructor:
		if len(t.Arguments) == 0 {
			return t
		}
		args := make([]types.Monotype, len(t.Arguments))
		for i, a := range t.Arguments {
			args[i] = substVars(a, fresh)
		}
		return &types.Constructor{Name: t.Name, Arguments: args}
	default:
		return t
	}
}

// Generalise zonks t, then quantifies every free unknown not also free in
// env, naming quantifiers deterministically a, b, c, ... in traversal order
// (spec.md section 4.4).
func (cs *CheckState) Generalise(t types.Monotype, env *types.Environment) *types.Polytype {
	zonked := cs.Sub.Apply(t)
	envFree := env.Unknowns(cs.Sub)

	names := make(map[int]string)
	var vars []string
	letters := newLetterSource()

	var walk func(types.Monotype) types.Monotype
	walk = func(m types.Monotype) types.Monotype {
		switch m := m.(type) {
		case *types.Unknown:
			if envFree[m.ID] {
				return m
			}
			if name, ok := names[m.ID]; ok {
				return &types.Var{Name: name}
			}
			name := letters.next()
			names[m.ID] = name
			vars = append(vars, name)
			return &types.Var{Name: name}
		case *types.Function:
			return &types.Function{Arg: walk(m.Arg), Result: walk(m.Result)}
		case *types.Constructor:
			if len(m.Arguments) == 0 {
				return m
			}
			args := make([]types.Monotype, len(m.Arguments))
			for i, a := range m.Arguments {
				args[i] = walk(a)
			}
			return &types.Constructor{Name: m.Name, Arguments: args}
		default:
			return m
		}
	}

	body := walk(zonked)
	return &types.Polytype{Vars: vars, Body: body}
}

// letterSource hands out a, b, ..., z, aa, ab, ... deterministically.
type letterSource struct{ n int }

func newLetterSource() *letterSource { return &letterSource{} }

func (l *letterSource) next() string {
	n := l.n
	l.n++
	s := make([]byte, 0, 2)
	for {
		s = append([]byte{byte('a' + n%26)}, s...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(s)
}

// binding is one (name, monotype) pair inferPattern introduces.
type binding struct {
	Name string
	Type types.Monotype
}
