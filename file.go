package parquet

import (
	"encoding/binary"
	"fmt"
	"io"
)

// magic is the 4-byte ASCII marker that opens and closes every parquet
// file (spec.md §6).
const magic = "PAR1"

// fileVersion is the only FileMetaData.Version this implementation writes
// or accepts.
const fileVersion int32 = 1

// writeMagic writes the magic header/trailer marker to w.
func writeMagic(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, magic)
	return int64(n), err
}

// readMagicHeader verifies the first 4 bytes of the file are the magic
// marker (spec.md §4.7's BadMagic failure mode).
func readMagicHeader(r io.ReaderAt) error {
	var b [4]byte
	if _, err := r.ReadAt(b[:], 0); err != nil {
		return fmt.Errorf("reading magic header: %w", err)
	}
	if string(b[:]) != magic {
		return fmt.Errorf("%w: header %q", ErrBadMagic, b[:])
	}
	return nil
}

// readTrailer reads the last 8 bytes of a size-byte file: a 4-byte LE
// footer length followed by the magic trailer marker. It returns the
// length of the FileMetaData blob that immediately precedes those 8 bytes.
func readTrailer(r io.ReaderAt, size int64) (footerSize int64, err error) {
	if size < 8 {
		return 0, fmt.Errorf("%w: file shorter than the trailer", ErrBadTrailer)
	}
	var b [8]byte
	if _, err := r.ReadAt(b[:], size-8); err != nil {
		return 0, fmt.Errorf("reading trailer: %w", err)
	}
	if string(b[4:8]) != magic {
		return 0, fmt.Errorf("%w: trailer %q", ErrBadMagic, b[4:8])
	}
	footerSize = int64(binary.LittleEndian.Uint32(b[:4]))
	if footerSize < 0 || footerSize > size-8-int64(len(magic)) {
		return 0, fmt.Errorf("%w: declared footer size %d would underflow the header", ErrBadTrailer, footerSize)
	}
	return footerSize, nil
}
