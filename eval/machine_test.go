package eval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/ir"
	"github.com/SamJeffrey8/helios/uplc"
)

func addIntegerProgram() *uplc.Program {
	// \x -> \y -> (addInteger x) y
	body := &uplc.Lambda{Body: &uplc.Lambda{Body: &uplc.Apply{
		Fn: &uplc.Apply{Fn: &uplc.BuiltinTerm{ID: ir.AddInteger}, Arg: &uplc.Var{Index: 1}},
		Arg: &uplc.Var{Index: 0},
	}}}
	return &uplc.Program{Major: 1, Body: body}
}

func TestRunAddInteger(t *testing.T) {
	prog := addIntegerProgram()
	result, remaining, err := Run(prog, []*data.Value{data.IntFromInt64(3), data.IntFromInt64(4)}, DefaultCostModel(), Budget{Mem: 10000, CPU: 10000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(7), result))
	require.Less(t, remaining.Mem, int64(10000))
	require.Less(t, remaining.CPU, int64(10000))
}

func TestRunIfThenElseIsLazyInUntakenBranch(t *testing.T) {
	// force(ifThenElse(false, delay(error), delay(42))): the error branch
	// must never be forced, so the run succeeds with 42.
	body := &uplc.Force{Body: &uplc.Apply{
		Fn: &uplc.Apply{
			Fn: &uplc.Apply{Fn: &uplc.BuiltinTerm{ID: ir.IfThenElse}, Arg: &uplc.Constant{Value: data.False()}},
			Arg: &uplc.Delay{Body: &uplc.ErrorTerm{}},
		},
		Arg: &uplc.Delay{Body: &uplc.Constant{Value: data.IntFromInt64(42)}},
	}}
	prog := &uplc.Program{Major: 1, Body: body}
	result, _, err := Run(prog, nil, DefaultCostModel(), Budget{Mem: 10000, CPU: 10000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(42), result))
}

func TestRunApplyArgumentIsLazy(t *testing.T) {
	// (\x -> 1) (0 `divideInteger` 0): the diverging argument is never
	// forced since the lambda body never references x.
	body := &uplc.Apply{
		Fn: &uplc.Lambda{Body: &uplc.Constant{Value: data.IntFromInt64(1)}},
		Arg: &uplc.Apply{
			Fn:  &uplc.Apply{Fn: &uplc.BuiltinTerm{ID: ir.DivideInteger}, Arg: &uplc.Constant{Value: data.IntFromInt64(0)}},
			Arg: &uplc.Constant{Value: data.IntFromInt64(0)},
		},
	}
	prog := &uplc.Program{Major: 1, Body: body}
	result, _, err := Run(prog, nil, DefaultCostModel(), Budget{Mem: 10000, CPU: 10000})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(1), result))
}

func TestRunDivisionByZeroPropagatesWhenForced(t *testing.T) {
	body := &uplc.Apply{
		Fn:  &uplc.Apply{Fn: &uplc.BuiltinTerm{ID: ir.DivideInteger}, Arg: &uplc.Constant{Value: data.IntFromInt64(1)}},
		Arg: &uplc.Constant{Value: data.IntFromInt64(0)},
	}
	prog := &uplc.Program{Major: 1, Body: body}
	_, _, err := Run(prog, nil, DefaultCostModel(), Budget{Mem: 10000, CPU: 10000})
	require.Error(t, err)
	rerr, ok := err.(*errs.RuntimeError)
	require.True(t, ok)
	require.Equal(t, errs.InfoDivisionByZero, rerr.Info)
}

func TestRunBudgetExhaustion(t *testing.T) {
	prog := addIntegerProgram()
	_, remaining, err := Run(prog, []*data.Value{data.IntFromInt64(1), data.IntFromInt64(2)}, DefaultCostModel(), Budget{Mem: 1, CPU: 1})
	require.Error(t, err)
	_, ok := err.(*errs.BudgetError)
	require.True(t, ok)
	require.Less(t, remaining.CPU, int64(0))
}

func TestRunTracedCollectsMessagesInOrder(t *testing.T) {
	// force(trace("a", force(trace("b", 1))))
	traceCall := func(msg string, rest uplc.Term) uplc.Term {
		return &uplc.Force{Body: &uplc.Apply{
			Fn:  &uplc.Apply{Fn: &uplc.BuiltinTerm{ID: ir.Trace}, Arg: &uplc.Constant{Value: data.Bytes([]byte(msg))}},
			Arg: &uplc.Delay{Body: rest},
		}}
	}
	body := traceCall("a", traceCall("b", &uplc.Constant{Value: data.IntFromInt64(1)}))
	prog := &uplc.Program{Major: 1, Body: body}

	var msgs []string
	result, _, err := RunTraced(prog, nil, DefaultCostModel(), Budget{Mem: 10000, CPU: 10000}, func(v *data.Value) {
		msgs = append(msgs, string(v.Bytes))
	})
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(1), result))
	require.Equal(t, []string{"a", "b"}, msgs)
}
