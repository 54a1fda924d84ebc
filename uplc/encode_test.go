package uplc

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/ir"
)

func roundTrip(t *testing.T, body Term) Term {
	t.Helper()
	prog := &Program{Major: 1, Minor: 0, Patch: 0, Body: body}
	b := Encode(prog)
	got, err := Decode(b)
	require.NoError(t, err)
	require.Equal(t, 1, got.Major)
	require.Equal(t, 0, got.Minor)
	require.Equal(t, 0, got.Patch)
	return got.Body
}

func TestEncodeDecodeVar(t *testing.T) {
	out := roundTrip(t, &Var{Index: 3})
	v, ok := out.(*Var)
	require.True(t, ok)
	require.Equal(t, 3, v.Index)
}

func TestEncodeDecodeLambdaApply(t *testing.T) {
	body := &Apply{Fn: &Lambda{Body: &Var{Index: 0}}, Arg: &Constant{Value: data.IntFromInt64(1)}}
	out := roundTrip(t, body)
	ap, ok := out.(*Apply)
	require.True(t, ok)
	lam, ok := ap.Fn.(*Lambda)
	require.True(t, ok)
	v := lam.Body.(*Var)
	require.Equal(t, 0, v.Index)
	c := ap.Arg.(*Constant)
	require.True(t, data.Equal(data.IntFromInt64(1), c.Value))
}

func TestEncodeDecodeDelayForceError(t *testing.T) {
	out := roundTrip(t, &Force{Body: &Delay{Body: &ErrorTerm{}}})
	f := out.(*Force)
	d := f.Body.(*Delay)
	_, ok := d.Body.(*ErrorTerm)
	require.True(t, ok)
}

func TestEncodeDecodeBuiltin(t *testing.T) {
	out := roundTrip(t, &BuiltinTerm{ID: ir.IfThenElse})
	b := out.(*BuiltinTerm)
	require.Equal(t, ir.IfThenElse, b.ID)
}

func TestEncodeDecodeConstantKinds(t *testing.T) {
	cases := []*data.Value{
		data.IntFromInt64(0),
		data.IntFromInt64(-12345),
		data.IntFromInt64(987654321),
		data.Bytes([]byte{0xde, 0xad, 0xbe, 0xef}),
		data.Bytes(nil),
		data.List([]*data.Value{data.IntFromInt64(1), data.IntFromInt64(2)}),
		data.List(nil),
		data.Map([]data.Pair{{Key: data.IntFromInt64(1), Val: data.Bytes([]byte("v"))}}),
		data.Constr(0, []*data.Value{data.IntFromInt64(1), data.Bytes([]byte{1})}),
		data.Constr(5, nil),
	}
	for _, v := range cases {
		out := roundTrip(t, &Constant{Value: v})
		c, ok := out.(*Constant)
		require.True(t, ok)
		require.True(t, data.Equal(v, c.Value), "round trip mismatch for %s", v.String())
	}
}

func TestEncodeDecodeNestedConstant(t *testing.T) {
	nested := data.List([]*data.Value{
		data.Constr(1, []*data.Value{data.Map([]data.Pair{{Key: data.Bytes([]byte("k")), Val: data.IntFromInt64(-7)}})}),
	})
	out := roundTrip(t, &Constant{Value: nested})
	c := out.(*Constant)
	require.True(t, data.Equal(nested, c.Value))
}

func TestZigzagRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, -1, 2, -2, 1000000, -1000000} {
		z := zigzag(big.NewInt(n))
		back := unzigzag(z)
		require.Equal(t, n, back.Int64())
	}
}
