// Package uncompressed implements the UNCOMPRESSED parquet codec: a no-op
// passthrough that still satisfies compress.Codec so the dispatch table in
// compress_dispatch.go can treat it uniformly with the real codecs.
package uncompressed

import (
	"io"

	"github.com/kodeshop/parquet/compress"
	"github.com/kodeshop/parquet/format"
)

type Codec struct {
	compressor   compress.Compressor
	decompressor compress.Decompressor
}

func (c *Codec) String() string { return "UNCOMPRESSED" }

func (c *Codec) CompressionCodec() format.CompressionCodec { return format.Uncompressed }

func (c *Codec) NewReader(r io.Reader) (compress.Reader, error) { return &reader{r}, nil }

func (c *Codec) NewWriter(w io.Writer) (compress.Writer, error) { return &writer{w}, nil }

func (c *Codec) Encode(dst, src []byte) ([]byte, error) {
	return c.compressor.Encode(dst, src, func(w io.Writer) (compress.Writer, error) { return c.NewWriter(w) })
}

func (c *Codec) Decode(dst, src []byte) ([]byte, error) {
	return c.decompressor.Decode(dst, src, func(r io.Reader) (compress.Reader, error) { return c.NewReader(r) })
}

type reader struct{ io.Reader }

func (r *reader) Close() error             { return nil }
func (r *reader) Reset(rr io.Reader) error { r.Reader = rr; return nil }

type writer struct{ io.Writer }

func (w *writer) Close() error        { return nil }
func (w *writer) Reset(ww io.Writer) { w.Writer = ww }
