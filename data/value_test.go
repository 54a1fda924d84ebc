package data

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualStructural(t *testing.T) {
	a := List([]*Value{IntFromInt64(1), Bytes([]byte("x"))})
	b := List([]*Value{IntFromInt64(1), Bytes([]byte("x"))})
	require.True(t, Equal(a, b))

	c := List([]*Value{IntFromInt64(1), Bytes([]byte("y"))})
	require.False(t, Equal(a, c))
}

func TestEqualMapOrderSensitive(t *testing.T) {
	m1 := Map([]Pair{{Key: IntFromInt64(1), Val: IntFromInt64(10)}, {Key: IntFromInt64(2), Val: IntFromInt64(20)}})
	m2 := Map([]Pair{{Key: IntFromInt64(2), Val: IntFromInt64(20)}, {Key: IntFromInt64(1), Val: IntFromInt64(10)}})
	require.False(t, Equal(m1, m2), "map equality must be order-sensitive since keys are not deduplicated")
}

func TestBoolAndOption(t *testing.T) {
	require.True(t, True().IsTrue())
	require.False(t, False().IsTrue())
	require.True(t, BoolValue(true).IsTrue())

	require.True(t, None().IsNone())
	require.False(t, Some(IntFromInt64(7)).IsNone())
}

func TestConstrEquality(t *testing.T) {
	a := Constr(3, []*Value{IntFromInt64(1)})
	b := Constr(3, []*Value{IntFromInt64(1)})
	c := Constr(4, []*Value{IntFromInt64(1)})
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestString(t *testing.T) {
	v := Constr(0, []*Value{IntFromInt64(1), Bytes([]byte{0xde, 0xad})})
	require.Contains(t, v.String(), "Constr0(")

	require.Equal(t, "5", Int(big.NewInt(5)).String())
}
