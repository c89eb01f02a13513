package types

import (
	"fmt"

	"github.com/lucidlang/lucidc/internal/report"
)

// Substitution is a growing mapping from unknown id to monotype. It is
// mutated in place by Solve and never rolled back (spec.md section 5 - "no
// backtracking inference"); this is the teacher's own "mutable substitution
// as a union-find-like store" design (internal/types/unification.go),
// generalized here from a plain map[string]Type to an id-keyed map since
// spec.md identifies Unknowns by integer rather than by name.
type Substitution struct {
	m map[int]Monotype
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{m: make(map[int]Monotype)}
}

// Apply recursively resolves every Unknown reachable from t through the
// substitution ("zonking"). Structural types are rebuilt with applied
// children so the result never aliases an intermediate Unknown node.
func (s *Substitution) Apply(t Monotype) Monotype {
	switch t := t.(type) {
	case *Unknown:
		if resolved, ok := s.m[t.ID]; ok {
			return s.Apply(resolved)
		}
		return t
	case *Var:
		return t
	case *Function:
		return &Function{Arg: s.Apply(t.Arg), Result: s.Apply(t.Result)}
	case *Constructor:
		if len(t.Arguments) == 0 {
			return t
		}
		args := make([]Monotype, len(t.Arguments))
		for i, a := range t.Arguments {
			args[i] = s.Apply(a)
		}
		return &Constructor{Name: t.Name, Arguments: args}
	default:
		return t
	}
}

// ApplyPoly zonks the body of a polytype, leaving the quantifier untouched
// (quantified Vars never appear as substitution keys - they are not
// Unknowns).
func (s *Substitution) ApplyPoly(p *Polytype) *Polytype {
	return &Polytype{Vars: p.Vars, Body: s.Apply(p.Body)}
}

// Solve records u -> t after an occurs check. Per spec.md section 4.1, a
// direct unknown-to-unknown link (t is Unknown(u') with u' != u) is always
// allowed without further inspection; any other occurrence of u inside the
// zonked t is an OccursCheck failure. When t zonks to Unknown(u) itself,
// nothing is recorded.
func (s *Substitution) Solve(u int, t Monotype) error {
	if err := s.occursCheck(u, t); err != nil {
		return err
	}
	if z, ok := s.Apply(t).(*Unknown); ok && z.ID == u {
		return nil
	}
	s.m[u] = t
	return nil
}

// occursCheck fails when u appears anywhere inside t after zonking, unless
// t zonks to exactly Unknown(u) itself (the reflexive identity, which
// trivially "passes" since solving u to itself is a no-op) or to some other
// single Unknown(u') - spec.md section 4.1's direct-link exemption.
func (s *Substitution) occursCheck(u int, t Monotype) error {
	zonked := s.Apply(t)
	if _, ok := zonked.(*Unknown); ok {
		// A direct unknown-to-unknown link is always allowed, including
		// the reflexive case t == Unknown(u) itself.
		return nil
	}
	if occursIn(u, zonked) {
		return report.Wrap(report.Newf(report.PhaseTypecheck, "TYP004",
			map[string]any{"unknown": u, "type": zonked.String()},
			"occurs check failed: ?%d occurs in %s", u, zonked.String()))
	}
	return nil
}

func occursIn(u int, t Monotype) bool {
	switch t := t.(type) {
	case *Unknown:
		return t.ID == u
	case *Function:
		return occursIn(u, t.Arg) || occursIn(u, t.Result)
	case *Constructor:
		for _, a := range t.Arguments {
			if occursIn(u, a) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Unify zonks both sides, then dispatches structurally per spec.md section
// 4.2. It mutates sub in place via Solve and returns only an error, unlike
// the teacher's Unify(t1, t2, sub) (Substitution, error) signature.
func Unify(sub *Substitution, t1, t2 Monotype) error {
	t1 = sub.Apply(t1)
	t2 = sub.Apply(t2)

	if structurallyEqual(t1, t2) {
		return nil
	}

	if u1, ok := t1.(*Unknown); ok {
		return sub.Solve(u1.ID, t2)
	}
	if u2, ok := t2.(*Unknown); ok {
		return sub.Solve(u2.ID, t1)
	}

	c1, ok1 := t1.(*Constructor)
	c2, ok2 := t2.(*Constructor)
	if ok1 && ok2 {
		if c1.Name != c2.Name || len(c1.Arguments) != len(c2.Arguments) {
			return mismatch(t1, t2)
		}
		for i := range c1.Arguments {
			if err := Unify(sub, c1.Arguments[i], c2.Arguments[i]); err != nil {
				return err
			}
		}
		return nil
	}

	f1, ok1 := t1.(*Function)
	f2, ok2 := t2.(*Function)
	if ok1 && ok2 {
		if err := Unify(sub, f1.Arg, f2.Arg); err != nil {
			return err
		}
		return Unify(sub, f1.Result, f2.Result)
	}

	return mismatch(t1, t2)
}

func mismatch(t1, t2 Monotype) error {
	return report.Wrap(report.Newf(report.PhaseTypecheck, "TYP005",
		map[string]any{"left": t1.String(), "right": t2.String()},
		"cannot unify %s with %s", t1.String(), t2.String()))
}

// structurallyEqual is used only as the unify fast-path; it does not zonk.
func structurallyEqual(t1, t2 Monotype) bool {
	switch a := t1.(type) {
	case *Var:
		b, ok := t2.(*Var)
		return ok && a.Name == b.Name
	case *Unknown:
		b, ok := t2.(*Unknown)
		return ok && a.ID == b.ID
	case *Function:
		b, ok := t2.(*Function)
		return ok && structurallyEqual(a.Arg, b.Arg) && structurallyEqual(a.Result, b.Result)
	case *Constructor:
		b, ok := t2.(*Constructor)
		if !ok || a.Name != b.Name || len(a.Arguments) != len(b.Arguments) {
			return false
		}
		for i := range a.Arguments {
			if !structurallyEqual(a.Arguments[i], b.Arguments[i]) {
				return false
			}
		}
		return true
	default:
		return fmt.Sprintf("%v", t1) == fmt.Sprintf("%v", t2)
	}
}
