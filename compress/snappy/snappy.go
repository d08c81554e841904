// Package snappy implements the SNAPPY parquet compression codec from
// scratch: a hash-table LZ77 matcher over 64 KiB fragments, framed with a
// leading varint of the uncompressed length. See spec.md §4.6.
//
// Unlike gzip/brotli/lz4, this codec does not delegate to a third-party
// compression library — the spec calls for Snappy to be implemented
// in-tree, and no example repo in the retrieval pack ships a pure-Go
// from-scratch Snappy encoder to adopt instead (see DESIGN.md).
package snappy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/kodeshop/parquet/compress"
	"github.com/kodeshop/parquet/format"
)

const (
	maxBlockSize   = 65536
	minMatchLength = 4
	maxTableBits   = 14
)

var (
	ErrInvalidSnappy = errors.New("snappy: invalid compressed stream")
	ErrTruncated     = errors.New("snappy: truncated input")
)

// MaxEncodedLen returns an upper bound on the encoded size of an n-byte
// buffer, per spec.md §4.6.
func MaxEncodedLen(n int) int { return 32 + n + n/6 }

type Codec struct{}

func (c *Codec) String() string { return "SNAPPY" }

func (c *Codec) CompressionCodec() format.CompressionCodec { return format.Snappy }

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) { return &reader{src: r}, nil }

func (c *Codec) NewWriter(w io.Writer) (compress.Writer, error) { return &writer{dst: w}, nil }

func (c *Codec) Encode(dst, src []byte) ([]byte, error) { return Compress(dst, src), nil }

func (c *Codec) Decode(dst, src []byte) ([]byte, error) { return Decompress(dst, src) }

// Compress appends the Snappy encoding of src to dst.
func Compress(dst, src []byte) []byte {
	dst = appendUvarint(dst, uint64(len(src)))
	for len(src) > 0 {
		n := len(src)
		if n > maxBlockSize {
			n = maxBlockSize
		}
		dst = compressBlock(dst, src[:n])
		src = src[n:]
	}
	return dst
}

func tableBitsFor(fragmentSize int) uint {
	b := uint(1)
	for (1 << b) < fragmentSize {
		b++
	}
	if b < 1 {
		b = 1
	}
	if b > maxTableBits {
		b = maxTableBits
	}
	return b
}

func hash(x uint32, shift uint) uint32 { return (x * 0x1e35a7bd) >> shift }

// compressBlock runs the hash-table match finder described in spec.md §4.6
// over a single ≤64KiB fragment; copy offsets never cross a fragment
// boundary.
func compressBlock(dst, src []byte) []byte {
	if len(src) < minMatchLength+1 {
		return emitLiteral(dst, src)
	}

	tableBits := tableBitsFor(len(src))
	shift := uint(32 - tableBits)
	table := make([]int32, 1<<tableBits)
	for i := range table {
		table[i] = -1
	}

	nextEmit := 0
	s := 0
	skip := 32

	for s+minMatchLength < len(src) {
		h := hash(binary.LittleEndian.Uint32(src[s:]), shift)
		candidate := int(table[h])
		table[h] = int32(s)

		if candidate >= 0 && bytes.Equal(src[candidate:candidate+minMatchLength], src[s:s+minMatchLength]) {
			dst = emitLiteral(dst, src[nextEmit:s])

			base := s
			matchStart := candidate
			s += minMatchLength
			matchStart += minMatchLength
			for s < len(src) && src[s] == src[matchStart] {
				s++
				matchStart++
			}
			length := s - base
			offset := base - candidate
			dst = emitCopy(dst, offset, length)
			nextEmit = s
			skip = 32
			continue
		}

		// Google's "skip" heuristic: the longer we scan without a match,
		// the faster we advance.
		bytesBetween := skip >> 5
		skip += bytesBetween
		s += bytesBetween
	}

	if nextEmit < len(src) {
		dst = emitLiteral(dst, src[nextEmit:])
	}
	return dst
}

func emitLiteral(dst, lit []byte) []byte {
	n := len(lit)
	if n == 0 {
		return dst
	}
	n1 := n - 1
	if n1 < 60 {
		dst = append(dst, byte(n1<<2))
	} else {
		var lenBytes [4]byte
		nbytes := 0
		v := uint32(n1)
		for v > 0 {
			lenBytes[nbytes] = byte(v)
			v >>= 8
			nbytes++
		}
		if nbytes == 0 {
			nbytes = 1
		}
		dst = append(dst, byte((59+nbytes)<<2))
		dst = append(dst, lenBytes[:nbytes]...)
	}
	return append(dst, lit...)
}

// emitCopy always uses the 2-byte-offset copy instruction (tag&3 == 2),
// chunked to that format's 64-byte length limit. Every offset produced by
// compressBlock fits in 16 bits because fragments are capped at 64 KiB; the
// decoder still supports the 1-byte and 4-byte offset forms so it can read
// streams produced by other Snappy encoders (see Decompress's switch on
// tag&3).
func emitCopy(dst []byte, offset, length int) []byte {
	for length > 0 {
		chunk := length
		if chunk > 64 {
			chunk = 64
		}
		dst = append(dst, byte((chunk-1)<<2)|2)
		var off [2]byte
		binary.LittleEndian.PutUint16(off[:], uint16(offset))
		dst = append(dst, off[:]...)
		length -= chunk
	}
	return dst
}

// Decompress decodes a Snappy stream into dst, per spec.md §4.6.
func Decompress(dst, src []byte) ([]byte, error) {
	wantLen, n, err := readUvarint(src)
	if err != nil {
		return nil, err
	}
	src = src[n:]

	if cap(dst) < int(wantLen) {
		dst = make([]byte, 0, wantLen)
	} else {
		dst = dst[:0]
	}

	for len(src) > 0 {
		tag := src[0]
		switch tag & 3 {
		case 0: // literal
			x := tag >> 2
			hdr := 1
			var litLen int
			if x < 60 {
				litLen = int(x) + 1
			} else {
				nbytes := int(x) - 59
				if len(src) < 1+nbytes {
					return nil, ErrTruncated
				}
				var v uint32
				for i := 0; i < nbytes; i++ {
					v |= uint32(src[1+i]) << uint(8*i)
				}
				litLen = int(v) + 1
				hdr = 1 + nbytes
			}
			if len(src) < hdr+litLen {
				return nil, ErrTruncated
			}
			dst = append(dst, src[hdr:hdr+litLen]...)
			src = src[hdr+litLen:]

		case 1: // 1-byte offset copy
			if len(src) < 2 {
				return nil, ErrTruncated
			}
			length := int((tag>>2)&0x7) + 4
			offset := (int(tag>>5) << 8) | int(src[1])
			if dst, err = selfCopy(dst, offset, length); err != nil {
				return nil, err
			}
			src = src[2:]

		case 2: // 2-byte offset copy
			if len(src) < 3 {
				return nil, ErrTruncated
			}
			length := int(tag>>2) + 1
			offset := int(binary.LittleEndian.Uint16(src[1:3]))
			if dst, err = selfCopy(dst, offset, length); err != nil {
				return nil, err
			}
			src = src[3:]

		default: // 4-byte offset copy
			if len(src) < 5 {
				return nil, ErrTruncated
			}
			length := int(tag>>2) + 1
			offset := int(binary.LittleEndian.Uint32(src[1:5]))
			if dst, err = selfCopy(dst, offset, length); err != nil {
				return nil, err
			}
			src = src[5:]
		}
	}

	if len(dst) != int(wantLen) {
		return nil, ErrInvalidSnappy
	}
	return dst, nil
}

func selfCopy(dst []byte, offset, length int) ([]byte, error) {
	if offset <= 0 || offset > len(dst) {
		return dst, ErrInvalidSnappy
	}
	start := len(dst) - offset
	for i := 0; i < length; i++ {
		dst = append(dst, dst[start+i])
	}
	return dst, nil
}

func appendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

func readUvarint(b []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(b) && i < 10; i++ {
		v |= uint64(b[i]&0x7F) << uint(7*i)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, ErrTruncated
}

// reader and writer buffer the whole stream: the Snappy block format's
// leading length varint must be known before the first byte is written,
// and a block's matches can reference any earlier byte in the same
// fragment, so there is no benefit to incremental decoding here. lz4's
// reader/writer (compress/lz4/lz4.go) use the same whole-buffer shape for
// the same reason.
type writer struct {
	dst io.Writer
	buf []byte
}

func (w *writer) Write(b []byte) (int, error) {
	w.buf = append(w.buf, b...)
	return len(b), nil
}

func (w *writer) Close() error {
	if len(w.buf) == 0 {
		return nil
	}
	out := Compress(make([]byte, 0, MaxEncodedLen(len(w.buf))), w.buf)
	_, err := w.dst.Write(out)
	return err
}

func (w *writer) Reset(dst io.Writer) {
	w.dst = dst
	w.buf = w.buf[:0]
}

type reader struct {
	src  io.Reader
	data []byte
	off  int
}

func (r *reader) Read(b []byte) (int, error) {
	if r.data == nil {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	n := copy(b, r.data[r.off:])
	r.off += n
	if r.off == len(r.data) {
		return n, io.EOF
	}
	return n, nil
}

func (r *reader) fill() error {
	if r.src == nil {
		return io.EOF
	}
	compressed, err := io.ReadAll(r.src)
	if err != nil {
		return err
	}
	data, err := Decompress(nil, compressed)
	if err != nil {
		return err
	}
	r.data = data
	return nil
}

func (r *reader) Close() error { return nil }

func (r *reader) Reset(src io.Reader) error {
	r.src = src
	r.data = nil
	r.off = 0
	return nil
}
