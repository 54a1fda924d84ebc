package eval

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
)

func addOracle(args []*data.Value) Outcome {
	return Outcome{Args: args, Value: data.Int(new(big.Int).Add(args[0].Int, args[1].Int))}
}

func TestRunPropertyMatchesOracle(t *testing.T) {
	prog := addIntegerProgram()
	all, mismatches, err := RunProperty(prog, DefaultCostModel(), Budget{Mem: 1_000_000, CPU: 1_000_000}, "add-integer-commutes",
		[]Generator{IntGenerator(-1000, 1000), IntGenerator(-1000, 1000)}, 50, addOracle)
	require.NoError(t, err)
	require.Len(t, all, 50)
	require.Empty(t, mismatches)
}

func TestRunPropertyDeterministicByRunName(t *testing.T) {
	prog := addIntegerProgram()
	all1, _, err := RunProperty(prog, DefaultCostModel(), Budget{Mem: 1_000_000, CPU: 1_000_000}, "same-seed",
		[]Generator{IntGenerator(-1000, 1000), IntGenerator(-1000, 1000)}, 10, addOracle)
	require.NoError(t, err)

	all2, _, err := RunProperty(prog, DefaultCostModel(), Budget{Mem: 1_000_000, CPU: 1_000_000}, "same-seed",
		[]Generator{IntGenerator(-1000, 1000), IntGenerator(-1000, 1000)}, 10, addOracle)
	require.NoError(t, err)

	require.Equal(t, len(all1), len(all2))
	for i := range all1 {
		require.True(t, data.Equal(all1[i].Args[0], all2[i].Args[0]))
		require.True(t, data.Equal(all1[i].Args[1], all2[i].Args[1]))
	}
}

func TestRunPropertyDetectsMismatch(t *testing.T) {
	prog := addIntegerProgram()
	wrongOracle := func(args []*data.Value) Outcome {
		return Outcome{Args: args, Value: data.IntFromInt64(0)}
	}
	_, mismatches, err := RunProperty(prog, DefaultCostModel(), Budget{Mem: 1_000_000, CPU: 1_000_000}, "wrong-oracle",
		[]Generator{IntGenerator(1, 10), IntGenerator(1, 10)}, 5, wrongOracle)
	require.NoError(t, err)
	require.Len(t, mismatches, 5)
}

func TestRunPropertyBudgetExhaustionSurfacesAsFailure(t *testing.T) {
	prog := addIntegerProgram()
	oracle := func(args []*data.Value) Outcome {
		return Outcome{Args: args, Failure: "out of budget"}
	}
	all, mismatches, err := RunProperty(prog, DefaultCostModel(), Budget{Mem: 1, CPU: 1}, "tiny-budget",
		[]Generator{IntGenerator(1, 10), IntGenerator(1, 10)}, 3, oracle)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Empty(t, mismatches)
	for _, o := range all {
		require.Equal(t, "out of budget", o.Failure)
	}
}
