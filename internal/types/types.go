// Package types implements the Hindley-Milner type-system core: monotypes,
// polytypes, substitutions, unification, and the scoped type environment.
// It owns no mutable fresh-variable supply (that belongs to the checker,
// package internal/check); it owns the Substitution itself, a growing map
// that is mutated in place and never rolled back (spec.md section 5).
package types

import (
	"fmt"
	"strings"
)

// Name is a structural-equality identifier: constructor names, ADT names,
// variable names.
type Name = string

// Monotype is a type containing no universal quantification.
type Monotype interface {
	String() string
	monotype()
}

// Var is a rigid type variable. It appears only inside a Polytype's
// quantifier or inside a DataConstructor's declared argument types.
type Var struct {
	Name string
}

func (*Var) monotype()        {}
func (v *Var) String() string { return v.Name }

// Unknown is a unification (meta) variable, identified by a fresh integer
// handed out by the checker's fresh-name supply.
type Unknown struct {
	ID int
}

func (*Unknown) monotype()        {}
func (u *Unknown) String() string { return fmt.Sprintf("?%d", u.ID) }

// Function is a function type arg -> result.
type Function struct {
	Arg    Monotype
	Result Monotype
}

func (*Function) monotype() {}
func (f *Function) String() string {
	return fmt.Sprintf("(%s -> %s)", f.Arg.String(), f.Result.String())
}

// Constructor is an applied type constructor, e.g. Int, Bool, List<a>.
type Constructor struct {
	Name      string
	Arguments []Monotype
}

func (*Constructor) monotype() {}
func (c *Constructor) String() string {
	if len(c.Arguments) == 0 {
		return c.Name
	}
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", c.Name, strings.Join(args, ", "))
}

// Int and Bool are the two base type constructors the runtime knows about.
func Int() Monotype  { return &Constructor{Name: "Int"} }
func Bool() Monotype { return &Constructor{Name: "Bool"} }

// IsInt/IsBool report whether a (zonked, structural) monotype is the base
// Int/Bool constructor.
func IsInt(t Monotype) bool  { return isCon(t, "Int") }
func IsBool(t Monotype) bool { return isCon(t, "Bool") }

func isCon(t Monotype, name string) bool {
	c, ok := t.(*Constructor)
	return ok && c.Name == name && len(c.Arguments) == 0
}

// Polytype is a (possibly empty) prenex universal over a monotype.
type Polytype struct {
	Vars []string
	Body Monotype
}

func (p *Polytype) String() string {
	if len(p.Vars) == 0 {
		return p.Body.String()
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(p.Vars, " "), p.Body.String())
}

// Mono wraps a monotype as a Polytype with no quantified variables.
func Mono(t Monotype) *Polytype { return &Polytype{Body: t} }

// DataConstructor is one constructor of an ADT declaration. ArgTypes may
// reference the declaration's TyArgs via Var.
type DataConstructor struct {
	Name     string
	ArgTypes []Monotype
}

// TypeInfo describes one ADT declaration.
type TypeInfo struct {
	TyArgs       []string
	Constructors []DataConstructor
}

// ConstructorTag returns the declaration-order index of the named
// constructor, used as the Pack tag at lowering time.
func (ti *TypeInfo) ConstructorTag(ctorName string) (int, *DataConstructor, bool) {
	for i := range ti.Constructors {
		if ti.Constructors[i].Name == ctorName {
			return i, &ti.Constructors[i], true
		}
	}
	return 0, nil, false
}

// TypeMap maps ADT names to their declarations.
type TypeMap map[string]*TypeInfo

// NewTypeMap returns a TypeMap preseeded with Int and Bool as the embedder
// is expected to do (spec.md section 6); ADTs the embedder wants to preseed
// (e.g. Maybe<a>) are added on top via Declare.
func NewTypeMap() TypeMap {
	return TypeMap{
		"Int":  {},
		"Bool": {},
	}
}

// Declare registers a new ADT declaration.
func (tm TypeMap) Declare(name string, info *TypeInfo) {
	tm[name] = info
}
