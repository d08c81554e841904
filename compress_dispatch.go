package parquet

import (
	"fmt"
	"io"

	"github.com/kodeshop/parquet/compress"
	"github.com/kodeshop/parquet/compress/brotli"
	"github.com/kodeshop/parquet/compress/gzip"
	"github.com/kodeshop/parquet/compress/lz4"
	"github.com/kodeshop/parquet/compress/snappy"
	"github.com/kodeshop/parquet/compress/uncompressed"
	"github.com/kodeshop/parquet/format"
)

// The five compression codecs spec.md §4.2/§4.6 requires schema.Build to
// recognize, plus LZO (accepted at the schema level but unsupported at
// compress time — see DESIGN.md).
var (
	codecUncompressed uncompressed.Codec
	codecSnappy       snappy.Codec
	codecGzip         = gzip.Codec{Level: gzip.DefaultCompression}
	codecBrotli       = brotli.Codec{Quality: brotli.DefaultQuality, LGWin: brotli.DefaultLGWin}
	codecLz4          = lz4.Codec{Level: lz4.DefaultLevel}

	compressionCodecs = [...]compress.Codec{
		format.Uncompressed: &codecUncompressed,
		format.Snappy:       &codecSnappy,
		format.Gzip:         &codecGzip,
		format.Brotli:       &codecBrotli,
		format.Lz4Raw:       &codecLz4,
	}
)

// lookupCodec returns the Codec registered for codec, or an unsupported
// stub (mirroring the teacher's compress.go) for codecs this core has no
// implementation for — notably LZO, see DESIGN.md.
func lookupCodec(codec format.CompressionCodec) compress.Codec {
	if codec >= 0 && int(codec) < len(compressionCodecs) {
		if c := compressionCodecs[codec]; c != nil {
			return c
		}
	}
	return &unsupportedCodec{codec}
}

type unsupportedCodec struct{ codec format.CompressionCodec }

func (u *unsupportedCodec) String() string                             { return u.codec.String() }
func (u *unsupportedCodec) CompressionCodec() format.CompressionCodec { return u.codec }

func (u *unsupportedCodec) err() error {
	return fmt.Errorf("%w: %s", ErrUnsupportedCompression, u.codec)
}

func (u *unsupportedCodec) Encode(dst, src []byte) ([]byte, error) { return dst, u.err() }
func (u *unsupportedCodec) Decode(dst, src []byte) ([]byte, error) { return dst, u.err() }

func (u *unsupportedCodec) NewReader(io.Reader) (compress.Reader, error) { return nil, u.err() }
func (u *unsupportedCodec) NewWriter(io.Writer) (compress.Writer, error) { return nil, u.err() }
