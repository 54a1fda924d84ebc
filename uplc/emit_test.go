package uplc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/ir"
)

func TestEmitNestedLambdaDeBruijn(t *testing.T) {
	// \x -> \y -> x: the reference to x from inside y's body is one level
	// up, so it must get index 1, and y itself (unused) never appears.
	n := &ir.Lambda{Param: "x", Body: &ir.Lambda{Param: "y", Body: &ir.Variable{Name: "x"}}}
	term, err := Emit(n)
	require.NoError(t, err)

	outer, ok := term.(*Lambda)
	require.True(t, ok)
	inner, ok := outer.Body.(*Lambda)
	require.True(t, ok)
	v, ok := inner.Body.(*Var)
	require.True(t, ok)
	require.Equal(t, 1, v.Index)
}

func TestEmitInnermostBinderWins(t *testing.T) {
	// \x -> \x -> x: the inner x shadows the outer, reference resolves to
	// index 0 (nearest enclosing Lambda).
	n := &ir.Lambda{Param: "x", Body: &ir.Lambda{Param: "x", Body: &ir.Variable{Name: "x"}}}
	term, err := Emit(n)
	require.NoError(t, err)
	outer := term.(*Lambda)
	inner := outer.Body.(*Lambda)
	v := inner.Body.(*Var)
	require.Equal(t, 0, v.Index)
}

func TestEmitUnboundVariableIsError(t *testing.T) {
	n := &ir.Lambda{Param: "x", Body: &ir.Variable{Name: "z"}}
	_, err := Emit(n)
	require.Error(t, err)
}

func TestEmitBuiltinCallCurriesApplications(t *testing.T) {
	n := &ir.BuiltinCall{
		Builtin: ir.AddInteger,
		Args:    []ir.Node{&ir.Literal{Value: data.IntFromInt64(1)}, &ir.Literal{Value: data.IntFromInt64(2)}},
	}
	term, err := Emit(n)
	require.NoError(t, err)

	outerApply, ok := term.(*Apply)
	require.True(t, ok)
	_, ok = outerApply.Arg.(*Constant)
	require.True(t, ok)

	innerApply, ok := outerApply.Fn.(*Apply)
	require.True(t, ok)
	_, ok = innerApply.Arg.(*Constant)
	require.True(t, ok)

	builtin, ok := innerApply.Fn.(*BuiltinTerm)
	require.True(t, ok)
	require.Equal(t, ir.AddInteger, builtin.ID)
}

func TestEmitDelayForcePreservedVerbatim(t *testing.T) {
	n := &ir.Force{Body: &ir.Delay{Body: &ir.Literal{Value: data.IntFromInt64(9)}}}
	term, err := Emit(n)
	require.NoError(t, err)
	force, ok := term.(*Force)
	require.True(t, ok)
	delay, ok := force.Body.(*Delay)
	require.True(t, ok)
	c, ok := delay.Body.(*Constant)
	require.True(t, ok)
	require.True(t, data.Equal(data.IntFromInt64(9), c.Value))
}
