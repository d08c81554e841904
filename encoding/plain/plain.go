// Package plain implements the PLAIN parquet encoding: the fixed-width,
// length-prefixed byte layout every other encoding in the format falls back
// to. See spec.md §4.4.
package plain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/kodeshop/parquet/deprecated"
	"github.com/kodeshop/parquet/format"
)

const ByteArrayLengthSize = 4

var ErrTruncated = errors.New("plain: truncated input")

// Cursor is the decode-side reading position spec.md §4.4 describes: a
// buffer plus an offset that every Decode* call advances by exactly the
// number of bytes it consumed.
type Cursor struct {
	Buf    []byte
	Offset int
}

func NewCursor(buf []byte) *Cursor { return &Cursor{Buf: buf} }

func (c *Cursor) take(n int) ([]byte, error) {
	if len(c.Buf)-c.Offset < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, len(c.Buf)-c.Offset)
	}
	b := c.Buf[c.Offset : c.Offset+n]
	c.Offset += n
	return b, nil
}

// Codec names the PLAIN encoding (String, Encoding), alongside the RLE
// codec in encoding/rle. The page writer/reader call the Encode*/Decode*
// functions directly and do not use it.
type Codec struct{}

func (Codec) String() string          { return "PLAIN" }
func (Codec) Encoding() format.Encoding { return format.Plain }

func EncodeBoolean(dst []byte, values []bool) []byte {
	n := (len(values) + 7) / 8
	dst = append(dst, make([]byte, n)...)
	for i, v := range values {
		if v {
			dst[len(dst)-n+i/8] |= 1 << uint(i%8)
		}
	}
	return dst
}

func DecodeBoolean(c *Cursor, n int) ([]bool, error) {
	nbytes := (n + 7) / 8
	b, err := c.take(nbytes)
	if err != nil {
		return nil, err
	}
	values := make([]bool, n)
	for i := range values {
		values[i] = (b[i/8]>>uint(i%8))&1 != 0
	}
	return values, nil
}

func EncodeInt32(dst []byte, values []int32) []byte {
	for _, v := range values {
		var x [4]byte
		binary.LittleEndian.PutUint32(x[:], uint32(v))
		dst = append(dst, x[:]...)
	}
	return dst
}

func DecodeInt32(c *Cursor, n int) ([]int32, error) {
	b, err := c.take(n * 4)
	if err != nil {
		return nil, err
	}
	values := make([]int32, n)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return values, nil
}

func EncodeInt64(dst []byte, values []int64) []byte {
	for _, v := range values {
		var x [8]byte
		binary.LittleEndian.PutUint64(x[:], uint64(v))
		dst = append(dst, x[:]...)
	}
	return dst
}

func DecodeInt64(c *Cursor, n int) ([]int64, error) {
	b, err := c.take(n * 8)
	if err != nil {
		return nil, err
	}
	values := make([]int64, n)
	for i := range values {
		values[i] = int64(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return values, nil
}

// EncodeInt96 writes each value's two's-complement int64 bit pattern into
// the first 8 bytes (LE) and sign-extends into the last 4, matching
// deprecated.Int96FromInt64; see spec.md §4.4 and deprecated/int96.go.
func EncodeInt96(dst []byte, values []deprecated.Int96) []byte {
	for _, v := range values {
		var x [12]byte
		binary.LittleEndian.PutUint32(x[0:4], v[0])
		binary.LittleEndian.PutUint32(x[4:8], v[1])
		binary.LittleEndian.PutUint32(x[8:12], v[2])
		dst = append(dst, x[:]...)
	}
	return dst
}

func DecodeInt96(c *Cursor, n int) ([]deprecated.Int96, error) {
	b, err := c.take(n * 12)
	if err != nil {
		return nil, err
	}
	values := make([]deprecated.Int96, n)
	for i := range values {
		off := i * 12
		values[i] = deprecated.Int96{
			binary.LittleEndian.Uint32(b[off:]),
			binary.LittleEndian.Uint32(b[off+4:]),
			binary.LittleEndian.Uint32(b[off+8:]),
		}
	}
	return values, nil
}

func EncodeFloat(dst []byte, values []float32) []byte {
	for _, v := range values {
		var x [4]byte
		binary.LittleEndian.PutUint32(x[:], math.Float32bits(v))
		dst = append(dst, x[:]...)
	}
	return dst
}

func DecodeFloat(c *Cursor, n int) ([]float32, error) {
	b, err := c.take(n * 4)
	if err != nil {
		return nil, err
	}
	values := make([]float32, n)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return values, nil
}

func EncodeDouble(dst []byte, values []float64) []byte {
	for _, v := range values {
		var x [8]byte
		binary.LittleEndian.PutUint64(x[:], math.Float64bits(v))
		dst = append(dst, x[:]...)
	}
	return dst
}

func DecodeDouble(c *Cursor, n int) ([]float64, error) {
	b, err := c.take(n * 8)
	if err != nil {
		return nil, err
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return values, nil
}

func EncodeByteArray(dst []byte, values [][]byte) []byte {
	for _, v := range values {
		var length [ByteArrayLengthSize]byte
		binary.LittleEndian.PutUint32(length[:], uint32(len(v)))
		dst = append(dst, length[:]...)
		dst = append(dst, v...)
	}
	return dst
}

func DecodeByteArray(c *Cursor, n int) ([][]byte, error) {
	values := make([][]byte, n)
	for i := range values {
		lenBytes, err := c.take(ByteArrayLengthSize)
		if err != nil {
			return nil, err
		}
		length := int(binary.LittleEndian.Uint32(lenBytes))
		if length < 0 {
			return nil, fmt.Errorf("%w: negative byte array length", ErrTruncated)
		}
		v, err := c.take(length)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// EncodeFixedLenByteArray fails if any value's length does not equal
// typeLength, per spec.md §4.4.
func EncodeFixedLenByteArray(dst []byte, values [][]byte, typeLength int) ([]byte, error) {
	for _, v := range values {
		if len(v) != typeLength {
			return dst, fmt.Errorf("plain: FIXED_LEN_BYTE_ARRAY value has length %d, want %d", len(v), typeLength)
		}
		dst = append(dst, v...)
	}
	return dst, nil
}

func DecodeFixedLenByteArray(c *Cursor, n int, typeLength int) ([][]byte, error) {
	if typeLength <= 0 {
		return nil, fmt.Errorf("plain: FIXED_LEN_BYTE_ARRAY requires a positive typeLength")
	}
	b, err := c.take(n * typeLength)
	if err != nil {
		return nil, err
	}
	values := make([][]byte, n)
	for i := range values {
		values[i] = b[i*typeLength : (i+1)*typeLength]
	}
	return values, nil
}
