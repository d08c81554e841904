// Package rle implements the RLE / bit-packed hybrid parquet encoding. See
// spec.md §4.5.
//
// Two source behaviors are preserved verbatim rather than "fixed", per
// spec.md §9:
//
//   - Trailing values that don't fill a full block of 8 are emitted as one
//     repeated run of count 1 per value, never folded into a bit-packed tail.
//   - The repeated-run body writer writes the value's low byte into every
//     byte of the run body instead of shifting right between bytes, so
//     repeated runs with bitWidth > 8 silently lose their high bits.
package rle

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/kodeshop/parquet/format"
)

var (
	ErrMissingBitWidth = errors.New("rle: missing required bitWidth")
	ErrInvalidRle      = errors.New("rle: invalid RLE stream")
	ErrTruncated       = errors.New("rle: truncated input")
)

// Codec names the RLE/bit-packed hybrid encoding (String, Encoding),
// alongside plain.Codec. The page writer/reader call the encode/decode
// functions directly and do not use it.
type Codec struct{}

func (Codec) String() string           { return "RLE" }
func (Codec) Encoding() format.Encoding { return format.RLE }

// Encode appends the hybrid-encoded run stream for values (each must fit in
// bitWidth bits) to dst. When disableEnvelope is false, the output is
// prefixed with a 4-byte LE length of the run stream (DATA_PAGE v1 framing);
// when true, the bare run stream is produced (used for DATA_PAGE_V2
// repetition/definition levels, and by callers that frame the length
// themselves).
func Encode(dst []byte, values []uint64, bitWidth int, disableEnvelope bool) ([]byte, error) {
	if bitWidth <= 0 {
		return dst, ErrMissingBitWidth
	}
	body := encodeBody(values, bitWidth)
	if disableEnvelope {
		return append(dst, body...), nil
	}
	var length [4]byte
	binary.LittleEndian.PutUint32(length[:], uint32(len(body)))
	dst = append(dst, length[:]...)
	return append(dst, body...), nil
}

func encodeBody(values []uint64, bitWidth int) []byte {
	var out []byte
	n := len(values)
	fullBlocks := n / 8
	block := 0
	for block < fullBlocks {
		start := block * 8
		v := values[start]
		if blockRepeats(values, start, v) {
			runBlocks := 1
			for block+runBlocks < fullBlocks && blockRepeats(values, (block+runBlocks)*8, v) {
				runBlocks++
			}
			out = appendRepeatedRun(out, v, runBlocks*8, bitWidth)
			block += runBlocks
		} else {
			runBlocks := 1
			for block+runBlocks < fullBlocks {
				s := (block + runBlocks) * 8
				if blockRepeats(values, s, values[s]) {
					break
				}
				runBlocks++
			}
			out = appendBitPackedRun(out, values[block*8:(block+runBlocks)*8], bitWidth)
			block += runBlocks
		}
	}
	for i := fullBlocks * 8; i < n; i++ {
		out = appendRepeatedRun(out, values[i], 1, bitWidth)
	}
	return out
}

func blockRepeats(values []uint64, start int, v uint64) bool {
	for k := 1; k < 8; k++ {
		if values[start+k] != v {
			return false
		}
	}
	return true
}

func appendRepeatedRun(dst []byte, value uint64, count, bitWidth int) []byte {
	dst = appendVarint(dst, uint64(count)<<1)
	nbytes := (bitWidth + 7) / 8
	// Bug preserved verbatim: the low byte is written nbytes times without
	// shifting, so a repeated run's value is truncated to 8 bits whenever
	// bitWidth > 8. See spec.md §9.
	low := byte(value)
	for i := 0; i < nbytes; i++ {
		dst = append(dst, low)
	}
	return dst
}

func appendBitPackedRun(dst []byte, values []uint64, bitWidth int) []byte {
	numBlocks := len(values) / 8
	dst = appendVarint(dst, uint64(numBlocks)<<1|1)
	body := make([]byte, bitWidth*numBlocks)
	for i, v := range values {
		for k := 0; k < bitWidth; k++ {
			if (v>>uint(k))&1 != 0 {
				bit := i*bitWidth + k
				body[bit/8] |= 1 << uint(bit%8)
			}
		}
	}
	return append(dst, body...)
}

// Decode reads count values encoded with the given bitWidth from buf,
// honoring the same disableEnvelope convention as Encode. It fails
// ErrInvalidRle if the run stream does not produce exactly count values.
func Decode(buf []byte, bitWidth, count int, disableEnvelope bool) ([]uint64, error) {
	if bitWidth <= 0 {
		return nil, ErrMissingBitWidth
	}
	body := buf
	if !disableEnvelope {
		if len(buf) < 4 {
			return nil, ErrTruncated
		}
		length := int(binary.LittleEndian.Uint32(buf))
		if len(buf)-4 < length {
			return nil, ErrTruncated
		}
		body = buf[4 : 4+length]
	}

	values := make([]uint64, 0, count)
	pos := 0
	for len(values) < count {
		header, n, err := readVarint(body[pos:])
		if err != nil {
			return nil, err
		}
		pos += n

		if header&1 == 1 {
			numBlocks := int(header >> 1)
			nvalues := numBlocks * 8
			nbytes := bitWidth * numBlocks
			if pos+nbytes > len(body) {
				return nil, ErrTruncated
			}
			chunk := body[pos : pos+nbytes]
			pos += nbytes
			for i := 0; i < nvalues; i++ {
				var v uint64
				for k := 0; k < bitWidth; k++ {
					bit := i*bitWidth + k
					if (chunk[bit/8]>>uint(bit%8))&1 != 0 {
						v |= 1 << uint(k)
					}
				}
				values = append(values, v)
			}
		} else {
			count8 := int(header >> 1)
			nbytes := (bitWidth + 7) / 8
			if pos+nbytes > len(body) {
				return nil, ErrTruncated
			}
			var v uint64
			for i, b := range body[pos : pos+nbytes] {
				v |= uint64(b) << uint(8*i)
			}
			pos += nbytes
			for i := 0; i < count8; i++ {
				values = append(values, v)
			}
		}

		if len(values) > count {
			return nil, fmt.Errorf("%w: run stream overshoots declared count", ErrInvalidRle)
		}
	}
	if len(values) != count {
		return nil, ErrInvalidRle
	}
	return values, nil
}

func appendVarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func readVarint(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(b); i++ {
		v |= uint64(b[i]&0x7F) << uint(7*i)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}

// BitWidth returns the minimal number of bits needed to represent values in
// [0, maxValue], the convention parquet uses for RLE-encoded levels and
// dictionary indices.
func BitWidth(maxValue uint64) int {
	width := 0
	for maxValue > 0 {
		width++
		maxValue >>= 1
	}
	return width
}

func EncodeBoolean(dst []byte, values []bool, disableEnvelope bool) ([]byte, error) {
	u := make([]uint64, len(values))
	for i, v := range values {
		if v {
			u[i] = 1
		}
	}
	return Encode(dst, u, 1, disableEnvelope)
}

func DecodeBoolean(buf []byte, count int, disableEnvelope bool) ([]bool, error) {
	u, err := Decode(buf, 1, count, disableEnvelope)
	if err != nil {
		return nil, err
	}
	values := make([]bool, len(u))
	for i, v := range u {
		values[i] = v != 0
	}
	return values, nil
}

func EncodeInt32(dst []byte, values []int32, bitWidth int, disableEnvelope bool) ([]byte, error) {
	u := make([]uint64, len(values))
	for i, v := range values {
		u[i] = uint64(uint32(v))
	}
	return Encode(dst, u, bitWidth, disableEnvelope)
}

func DecodeInt32(buf []byte, bitWidth, count int, disableEnvelope bool) ([]int32, error) {
	u, err := Decode(buf, bitWidth, count, disableEnvelope)
	if err != nil {
		return nil, err
	}
	values := make([]int32, len(u))
	for i, v := range u {
		values[i] = int32(uint32(v))
	}
	return values, nil
}

func EncodeInt64(dst []byte, values []int64, bitWidth int, disableEnvelope bool) ([]byte, error) {
	u := make([]uint64, len(values))
	for i, v := range values {
		u[i] = uint64(v)
	}
	return Encode(dst, u, bitWidth, disableEnvelope)
}

func DecodeInt64(buf []byte, bitWidth, count int, disableEnvelope bool) ([]int64, error) {
	u, err := Decode(buf, bitWidth, count, disableEnvelope)
	if err != nil {
		return nil, err
	}
	values := make([]int64, len(u))
	for i, v := range u {
		values[i] = int64(v)
	}
	return values, nil
}
