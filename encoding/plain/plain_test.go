package plain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodeshop/parquet/deprecated"
	"github.com/kodeshop/parquet/encoding/plain"
)

func TestBooleanRoundTrip(t *testing.T) {
	values := make([]bool, 100)
	for i := range values {
		values[i] = i%2 != 0
	}

	buf := plain.EncodeBoolean(nil, values)
	require.Equal(t, []byte{
		0b10101010, 0b10101010, 0b10101010, 0b10101010, 0b10101010,
		0b10101010, 0b10101010, 0b10101010, 0b10101010, 0b10101010,
		0b10101010, 0b10101010, 0b00001010,
	}, buf)

	got, err := plain.DecodeBoolean(plain.NewCursor(buf), len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestInt32RoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2147483647, -2147483648}
	buf := plain.EncodeInt32(nil, values)
	require.Len(t, buf, 4*len(values))

	c := plain.NewCursor(buf)
	got, err := plain.DecodeInt32(c, len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
	require.Equal(t, len(buf), c.Offset)
}

func TestInt64RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 1 << 40, -(1 << 40)}
	buf := plain.EncodeInt64(nil, values)

	got, err := plain.DecodeInt64(plain.NewCursor(buf), len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestInt96RoundTrip(t *testing.T) {
	values := []deprecated.Int96{
		deprecated.Int96FromInt64(0),
		deprecated.Int96FromInt64(-1),
		deprecated.Int96FromInt64(1 << 40),
	}
	buf := plain.EncodeInt96(nil, values)
	require.Len(t, buf, 12*len(values))

	got, err := plain.DecodeInt96(plain.NewCursor(buf), len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestFloatDoubleRoundTrip(t *testing.T) {
	floats := []float32{0, 1.5, -1.5, 3.14159}
	fbuf := plain.EncodeFloat(nil, floats)
	gotFloats, err := plain.DecodeFloat(plain.NewCursor(fbuf), len(floats))
	require.NoError(t, err)
	require.Equal(t, floats, gotFloats)

	doubles := []float64{0, 1.5, -1.5, 3.14159265358979}
	dbuf := plain.EncodeDouble(nil, doubles)
	gotDoubles, err := plain.DecodeDouble(plain.NewCursor(dbuf), len(doubles))
	require.NoError(t, err)
	require.Equal(t, doubles, gotDoubles)
}

func TestByteArrayRoundTrip(t *testing.T) {
	values := [][]byte{[]byte("hello"), []byte(""), []byte("parquet")}
	buf := plain.EncodeByteArray(nil, values)

	got, err := plain.DecodeByteArray(plain.NewCursor(buf), len(values))
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestByteArrayTruncated(t *testing.T) {
	buf := []byte{5, 0, 0, 0, 'h', 'i'} // claims length 5, only 2 bytes follow
	_, err := plain.DecodeByteArray(plain.NewCursor(buf), 1)
	require.ErrorIs(t, err, plain.ErrTruncated)
}

func TestFixedLenByteArrayRoundTrip(t *testing.T) {
	values := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}}
	buf, err := plain.EncodeFixedLenByteArray(nil, values, 4)
	require.NoError(t, err)

	got, err := plain.DecodeFixedLenByteArray(plain.NewCursor(buf), len(values), 4)
	require.NoError(t, err)
	require.Equal(t, values, got)
}

func TestFixedLenByteArrayLengthMismatch(t *testing.T) {
	_, err := plain.EncodeFixedLenByteArray(nil, [][]byte{{1, 2, 3}}, 4)
	require.Error(t, err)
}
