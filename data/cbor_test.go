package data

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeCanonicalEmptyCollections(t *testing.T) {
	b, err := EncodeCanonical(List(nil))
	require.NoError(t, err)
	require.Equal(t, []byte{0x80}, b, "empty list is definite-length major type 4")

	b, err = EncodeCanonical(Map(nil))
	require.NoError(t, err)
	require.Equal(t, []byte{0xa0}, b, "empty map is definite-length major type 5")
}

func TestEncodeCanonicalNonEmptyListIsIndefinite(t *testing.T) {
	b, err := EncodeCanonical(List([]*Value{IntFromInt64(1)}))
	require.NoError(t, err)
	require.Equal(t, byte(0x9f), b[0], "non-empty list must open with the indefinite-array marker")
	require.Equal(t, byte(0xff), b[len(b)-1], "non-empty list must close with the break byte")
}

func TestEncodeCanonicalBytesShortForm(t *testing.T) {
	b, err := EncodeCanonical(Bytes([]byte{1, 2, 3}))
	require.NoError(t, err)
	require.Equal(t, []byte{0x43, 1, 2, 3}, b)
}

func TestEncodeCanonicalBytesChunked(t *testing.T) {
	big := make([]byte, 100)
	for i := range big {
		big[i] = byte(i)
	}
	b, err := EncodeCanonical(Bytes(big))
	require.NoError(t, err)
	require.Equal(t, byte(0x5f), b[0], "byte strings over the chunk size use indefinite framing")
	require.Equal(t, byte(0xff), b[len(b)-1])
}

func TestEncodeCanonicalConstrLowTag(t *testing.T) {
	// Constr(0, []) -> tag 121 (0x79, then one-byte length) over an empty array.
	b, err := EncodeCanonical(Constr(0, nil))
	require.NoError(t, err)
	require.Equal(t, []byte{0xd8, 0x79, 0x80}, b)
}

func TestEncodeCanonicalConstrFallbackTag(t *testing.T) {
	b, err := EncodeCanonical(Constr(200, []*Value{IntFromInt64(1)}))
	require.NoError(t, err)
	require.Equal(t, byte(0xd8), b[0])
	require.Equal(t, byte(102), b[1], "tags outside 0-127 fall back to the [tag, fields] pair under CBOR tag 102")
}

func roundTrip(t *testing.T, v *Value) *Value {
	t.Helper()
	b, err := EncodeCanonical(v)
	require.NoError(t, err)
	got, err := DecodeCanonical(b)
	require.NoError(t, err)
	return got
}

func TestDecodeCanonicalRoundTripsScalars(t *testing.T) {
	require.True(t, Equal(IntFromInt64(0), roundTrip(t, IntFromInt64(0))))
	require.True(t, Equal(IntFromInt64(42), roundTrip(t, IntFromInt64(42))))
	require.True(t, Equal(IntFromInt64(-1), roundTrip(t, IntFromInt64(-1))))
	require.True(t, Equal(IntFromInt64(-1000000), roundTrip(t, IntFromInt64(-1000000))))

	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	require.True(t, Equal(Int(huge), roundTrip(t, Int(huge))))
	negHuge := new(big.Int).Neg(huge)
	require.True(t, Equal(Int(negHuge), roundTrip(t, Int(negHuge))))

	require.True(t, Equal(Bytes([]byte{1, 2, 3}), roundTrip(t, Bytes([]byte{1, 2, 3}))))
	require.True(t, Equal(Bytes(nil), roundTrip(t, Bytes(nil))))

	big100 := make([]byte, 100)
	for i := range big100 {
		big100[i] = byte(i)
	}
	require.True(t, Equal(Bytes(big100), roundTrip(t, Bytes(big100))))
}

func TestDecodeCanonicalRoundTripsCollections(t *testing.T) {
	require.True(t, Equal(List(nil), roundTrip(t, List(nil))))
	require.True(t, Equal(Map(nil), roundTrip(t, Map(nil))))

	list := List([]*Value{IntFromInt64(1), Bytes([]byte("hi")), List(nil)})
	require.True(t, Equal(list, roundTrip(t, list)))

	m := Map([]Pair{
		{Key: IntFromInt64(1), Val: Bytes([]byte("one"))},
		{Key: IntFromInt64(2), Val: Bytes([]byte("two"))},
		{Key: IntFromInt64(1), Val: Bytes([]byte("dup"))},
	})
	require.True(t, Equal(m, roundTrip(t, m)))
}

func TestDecodeCanonicalRoundTripsConstr(t *testing.T) {
	require.True(t, Equal(Constr(0, nil), roundTrip(t, Constr(0, nil))))
	require.True(t, Equal(True(), roundTrip(t, True())))
	require.True(t, Equal(False(), roundTrip(t, False())))
	require.True(t, Equal(Some(IntFromInt64(7)), roundTrip(t, Some(IntFromInt64(7)))))
	require.True(t, Equal(None(), roundTrip(t, None())))

	// tag 7: 1280 + (7-7) = 1280, the first tag of the 1280-1400 branch
	// just past the low-tag range.
	c7 := Constr(7, []*Value{IntFromInt64(1), IntFromInt64(2)})
	require.True(t, Equal(c7, roundTrip(t, c7)))

	// outside 0-127: falls back to the [tag, fields] pair under tag 102.
	cFallback := Constr(200, []*Value{IntFromInt64(1), Bytes([]byte("x"))})
	require.True(t, Equal(cFallback, roundTrip(t, cFallback)))
}

func TestDecodeCanonicalDefiniteLengthArrayAndMap(t *testing.T) {
	// A definite-length array/map (as a non-canonical third-party encoder
	// might emit) must still decode, even though EncodeCanonical never
	// produces this shape itself for non-empty collections.
	arr := []byte{0x82, 0x01, 0x02} // [1, 2], definite length 2
	v, err := DecodeCanonical(arr)
	require.NoError(t, err)
	require.True(t, Equal(List([]*Value{IntFromInt64(1), IntFromInt64(2)}), v))

	mp := []byte{0xa1, 0x01, 0x02} // {1: 2}, definite length 1
	v, err = DecodeCanonical(mp)
	require.NoError(t, err)
	require.True(t, Equal(Map([]Pair{{Key: IntFromInt64(1), Val: IntFromInt64(2)}}), v))
}

func TestDecodeCanonicalRejectsTrailingBytes(t *testing.T) {
	_, err := DecodeCanonical([]byte{0x01, 0x01})
	require.Error(t, err)
}

func TestDecodeCanonicalRejectsTruncatedInput(t *testing.T) {
	_, err := DecodeCanonical([]byte{0x9f, 0x01})
	require.Error(t, err)
}
