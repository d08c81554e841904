package parquet

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/thrift"

	"github.com/kodeshop/parquet/format"
)

// writeColumnChunk writes col's single data page followed by its
// ColumnMetaData (spec.md §4.7) to w, which must already be positioned at
// the chunk's start. offset is the absolute file offset of that position,
// used to populate ColumnMetaData.DataPageOffset and ColumnChunk.FileOffset.
// It returns the wire-ready ColumnChunk and the number of bytes written.
func writeColumnChunk(w io.Writer, proto *thrift.CompactProtocol, col *Column, cv *ColumnValues, offset int64, useV2 bool, codec format.CompressionCodec) (format.ColumnChunk, int64, error) {
	page, err := encodeDataPage(col, cv, useV2, lookupCodec(codec))
	if err != nil {
		return format.ColumnChunk{}, 0, err
	}

	headerBytes, err := thrift.Marshal(proto, &page.header)
	if err != nil {
		return format.ColumnChunk{}, 0, fmt.Errorf("marshaling page header for %q: %w", col.Key, err)
	}
	if _, err := w.Write(headerBytes); err != nil {
		return format.ColumnChunk{}, 0, err
	}
	if _, err := w.Write(page.body); err != nil {
		return format.ColumnChunk{}, 0, err
	}

	pathInSchema := append([]string(nil), col.Path...)
	metaData := format.ColumnMetaData{
		Type:                  col.Type().Primitive,
		Encodings:             []format.Encoding{format.Plain, format.RLE},
		PathInSchema:          pathInSchema,
		Codec:                 codec,
		NumValues:             int64(len(cv.DLevels)),
		TotalUncompressedSize: int64(page.header.UncompressedPageSize),
		TotalCompressedSize:   int64(page.header.CompressedPageSize),
		DataPageOffset:        offset,
	}
	metaDataBytes, err := thrift.Marshal(proto, &metaData)
	if err != nil {
		return format.ColumnChunk{}, 0, fmt.Errorf("marshaling column metadata for %q: %w", col.Key, err)
	}
	if _, err := w.Write(metaDataBytes); err != nil {
		return format.ColumnChunk{}, 0, err
	}

	chunk := format.ColumnChunk{
		FileOffset: offset,
		MetaData:   &metaData,
	}
	written := int64(len(headerBytes) + len(page.body) + len(metaDataBytes))
	return chunk, written, nil
}

// readColumnChunk reads the single data page addressed by chunk.MetaData
// (spec.md §4.7) and returns its decoded column values. r must be able to
// read starting at chunk.MetaData.DataPageOffset.
func readColumnChunk(r io.ReaderAt, proto *thrift.CompactProtocol, col *Column, chunk *format.ColumnChunk) (*ColumnValues, error) {
	if chunk.FilePath != nil {
		return nil, ErrExternalRef
	}
	meta := chunk.MetaData
	if meta == nil {
		return nil, fmt.Errorf("%w: column chunk has no metadata", ErrTruncated)
	}

	sr := io.NewSectionReader(r, meta.DataPageOffset, meta.TotalCompressedSize+maxPageHeaderSize)
	dec := thrift.NewDecoder(proto.NewReader(sr))

	var header format.PageHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("decoding page header for %q: %w", col.Key, err)
	}
	switch header.Type {
	case format.DataPage, format.DataPageV2:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPageType, header.Type)
	}

	body := make([]byte, header.CompressedPageSize)
	if _, err := io.ReadFull(sr, body); err != nil {
		return nil, fmt.Errorf("reading page body for %q: %w", col.Key, err)
	}

	return decodeDataPage(col, &header, body, lookupCodec(meta.Codec))
}

// maxPageHeaderSize is a generous upper bound on the compact-binary
// encoding of a PageHeader, used only to size the SectionReader that the
// thrift decoder reads the header from before the page body is known.
const maxPageHeaderSize = 256
