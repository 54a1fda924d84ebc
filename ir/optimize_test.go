package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
)

func lit(n int64) *Literal {
	return &Literal{Value: data.IntFromInt64(n)}
}

func TestOptimizeBetaReduction(t *testing.T) {
	// (\x -> x) 5 -> 5
	call := &Call{Fn: &Lambda{Param: "x", Body: &Variable{Name: "x"}}, Arg: lit(5)}
	out := Optimize(call)
	got, ok := out.(*Literal)
	require.True(t, ok)
	require.True(t, data.Equal(data.IntFromInt64(5), got.Value))
}

func TestOptimizeDropsUnusedBinding(t *testing.T) {
	// (\x -> 1) (expensive arg) -> 1, arg dropped without needing to be "simple"
	call := &Call{
		Fn:  &Lambda{Param: "x", Body: lit(1)},
		Arg: &BuiltinCall{Builtin: AddInteger, Args: []Node{&Variable{Name: "y"}, lit(1)}},
	}
	out := Optimize(call)
	got, ok := out.(*Literal)
	require.True(t, ok)
	require.True(t, data.Equal(data.IntFromInt64(1), got.Value))
}

func TestOptimizeDeadBranchElimination(t *testing.T) {
	// force(ifThenElse(true, delay(1), delay(2))) -> 1
	n := &Force{Body: &BuiltinCall{
		Builtin: IfThenElse,
		Args: []Node{
			&Literal{Value: data.True()},
			&Delay{Body: lit(1)},
			&Delay{Body: lit(2)},
		},
	}}
	out := Optimize(n)
	got, ok := out.(*Literal)
	require.True(t, ok)
	require.True(t, data.Equal(data.IntFromInt64(1), got.Value))
}

func TestOptimizeDeadBranchDoesNotForceLiveBranch(t *testing.T) {
	// force(ifThenElse(false, delay(error), delay(7))) -> 7, the error branch
	// is never reached by the optimizer even though it sits in the tree.
	n := &Force{Body: &BuiltinCall{
		Builtin: IfThenElse,
		Args: []Node{
			&Literal{Value: data.False()},
			&Delay{Body: &Error{Message: "boom"}},
			&Delay{Body: lit(7)},
		},
	}}
	out := Optimize(n)
	got, ok := out.(*Literal)
	require.True(t, ok)
	require.True(t, data.Equal(data.IntFromInt64(7), got.Value))
}

func TestOptimizeAlgebraicAddZero(t *testing.T) {
	// x + 0 -> x
	n := &BuiltinCall{Builtin: AddInteger, Args: []Node{&Variable{Name: "x"}, lit(0)}}
	out := Optimize(n)
	v, ok := out.(*Variable)
	require.True(t, ok)
	require.Equal(t, "x", v.Name)
}

func TestOptimizeAlgebraicMultiplyZero(t *testing.T) {
	// x * 0 -> 0, even though x is an opaque variable
	n := &BuiltinCall{Builtin: MultiplyInteger, Args: []Node{&Variable{Name: "x"}, lit(0)}}
	out := Optimize(n)
	got, ok := out.(*Literal)
	require.True(t, ok)
	require.True(t, data.Equal(data.IntFromInt64(0), got.Value))
}

func TestOptimizeConstantFolding(t *testing.T) {
	// 2 + 3 -> 5, folded through ir.Eval since both args are literals
	n := &BuiltinCall{Builtin: AddInteger, Args: []Node{lit(2), lit(3)}}
	out := Optimize(n)
	got, ok := out.(*Literal)
	require.True(t, ok)
	require.True(t, data.Equal(data.IntFromInt64(5), got.Value))
}

func TestOptimizeDoubleNegationElimination(t *testing.T) {
	notNode := func(x Node) Node {
		return &Force{Body: &BuiltinCall{
			Builtin: IfThenElse,
			Args: []Node{
				x,
				&Delay{Body: &Literal{Value: data.False()}},
				&Delay{Body: &Literal{Value: data.True()}},
			},
		}}
	}
	n := notNode(notNode(&Variable{Name: "x"}))
	out := Optimize(n)
	v, ok := out.(*Variable)
	require.True(t, ok)
	require.Equal(t, "x", v.Name)
}

func TestOptimizeIsIdempotent(t *testing.T) {
	n := &BuiltinCall{Builtin: AddInteger, Args: []Node{&Variable{Name: "x"}, lit(0)}}
	once := Optimize(n)
	twice := Optimize(once)
	require.Equal(t, once, twice)
}
