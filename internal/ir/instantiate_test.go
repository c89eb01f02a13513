package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstantiateReplacesBoundZero(t *testing.T) {
	body := &Var{Name: Bound{Index: 0}}
	result := Instantiate(body, []Expr{&Int{Value: 7}})
	i, ok := result.(*Int)
	assert.True(t, ok)
	assert.EqualValues(t, 7, i.Value)
}

func TestInstantiateLeavesOuterBoundUntouched(t *testing.T) {
	// Simulates a nested Let: the outer Bound(1) refers to a frame beyond
	// these args and must survive unchanged.
	body := &Var{Name: Bound{Index: 1}}
	result := Instantiate(body, []Expr{&Int{Value: 7}})
	v, ok := result.(*Var)
	assert.True(t, ok)
	assert.Equal(t, Bound{Index: 1}, v.Name)
}

func TestInstantiateLiftsAcrossLet(t *testing.T) {
	// let _ = Bound(5) in Bound(1)  -- the value's Bound(5) lies beyond
	// these args and stays as it is; the inner Bound(1) refers to the
	// outer frame being instantiated, one level down from the Let's own
	// binder, so it must still resolve to args[0].
	body := &Let{
		Value: &Var{Name: Bound{Index: 5}},
		Body:  &Var{Name: Bound{Index: 1}},
	}
	result := Instantiate(body, []Expr{&Int{Value: 42}})
	let := result.(*Let)
	innerVal, ok := let.Value.(*Var)
	assert.True(t, ok)
	assert.Equal(t, Bound{Index: 5}, innerVal.Name)
	innerBody, ok := let.Body.(*Int)
	assert.True(t, ok)
	assert.EqualValues(t, 42, innerBody.Value)
}

func TestInstantiateLiftsAcrossMatchCaseBinders(t *testing.T) {
	body := &Match{
		Scrutinee: &Int{Value: 0},
		Cases: []Case{
			{Tag: 1, Binders: 2, Body: &Var{Name: Bound{Index: 2}}},
		},
	}
	result := Instantiate(body, []Expr{&Bool{Value: true}})
	m := result.(*Match)
	b := m.Cases[0].Body.(*Bool)
	assert.True(t, b.Value)
}
