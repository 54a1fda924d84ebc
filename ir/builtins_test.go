package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SamJeffrey8/helios/data"
	"github.com/SamJeffrey8/helios/errs"
	"github.com/SamJeffrey8/helios/source"
)

func TestEvalArithmetic(t *testing.T) {
	site := source.Site{}

	v, err := Eval(AddInteger, []*data.Value{data.IntFromInt64(2), data.IntFromInt64(3)}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(5), v))

	v, err = Eval(DivideInteger, []*data.Value{data.IntFromInt64(10), data.IntFromInt64(3)}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(3), v))
}

func TestEvalDivisionByZero(t *testing.T) {
	site := source.Site{}
	_, err := Eval(DivideInteger, []*data.Value{data.IntFromInt64(10), data.IntFromInt64(0)}, site)
	require.Error(t, err)
	rerr, ok := err.(*errs.RuntimeError)
	require.True(t, ok)
	require.Equal(t, errs.InfoDivisionByZero, rerr.Info)
}

func TestEvalHeadTailList(t *testing.T) {
	site := source.Site{}
	list := data.List([]*data.Value{data.IntFromInt64(1), data.IntFromInt64(2)})

	h, err := Eval(HeadList, []*data.Value{list}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(data.IntFromInt64(1), h))

	tl, err := Eval(TailList, []*data.Value{list}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(data.List([]*data.Value{data.IntFromInt64(2)}), tl))

	_, err = Eval(HeadList, []*data.Value{data.List(nil)}, site)
	require.Error(t, err)
	require.Equal(t, errs.InfoEmptyList, err.(*errs.RuntimeError).Info)
}

func TestEvalEqualsDataStructural(t *testing.T) {
	site := source.Site{}
	a := data.Constr(0, []*data.Value{data.IntFromInt64(1)})
	b := data.Constr(0, []*data.Value{data.IntFromInt64(1)})
	v, err := Eval(EqualsData, []*data.Value{a, b}, site)
	require.NoError(t, err)
	require.True(t, v.IsTrue())
}

func TestBuiltinArity(t *testing.T) {
	require.Equal(t, 2, AddInteger.Arity())
	require.Equal(t, 3, IfThenElse.Arity())
	require.Equal(t, 1, HeadList.Arity())
	require.Equal(t, 3, MkPairMap.Arity())
	require.Equal(t, 1, NullMap.Arity())
	require.Equal(t, 1, SerialiseData.Arity())
	require.Equal(t, 1, DeserialiseData.Arity())
}

func TestBuiltinPure(t *testing.T) {
	require.False(t, Trace.Pure())
	require.False(t, IfThenElse.Pure())
	require.True(t, AddInteger.Pure())
}

func TestEvalMapBuiltins(t *testing.T) {
	site := source.Site{}
	k1, v1 := data.IntFromInt64(1), data.Bytes([]byte("one"))
	k2, v2 := data.IntFromInt64(2), data.Bytes([]byte("two"))

	m, err := Eval(MkPairMap, []*data.Value{k1, v1, data.Map(nil)}, site)
	require.NoError(t, err)
	m, err = Eval(MkPairMap, []*data.Value{k2, v2, m}, site)
	require.NoError(t, err)

	n, err := Eval(NullMap, []*data.Value{m}, site)
	require.NoError(t, err)
	require.False(t, n.IsTrue())

	hk, err := Eval(HeadMapKey, []*data.Value{m}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(k2, hk), "mkPairMap prepends, so the most recent pair is first")

	hv, err := Eval(HeadMapVal, []*data.Value{m}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(v2, hv))

	tl, err := Eval(TailMap, []*data.Value{m}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(data.Map([]data.Pair{{Key: k1, Val: v1}}), tl))

	_, err = Eval(HeadMapKey, []*data.Value{data.Map(nil)}, site)
	require.Error(t, err)
	require.Equal(t, errs.InfoEmptyList, err.(*errs.RuntimeError).Info)
}

func TestEvalSerialiseDeserialiseDataRoundTrip(t *testing.T) {
	site := source.Site{}
	v := data.Constr(0, []*data.Value{data.IntFromInt64(42), data.Bytes([]byte("hi"))})

	enc, err := Eval(SerialiseData, []*data.Value{v}, site)
	require.NoError(t, err)
	require.Equal(t, data.KindBytes, enc.Kind)

	dec, err := Eval(DeserialiseData, []*data.Value{enc}, site)
	require.NoError(t, err)
	require.True(t, data.Equal(v, dec))
}
