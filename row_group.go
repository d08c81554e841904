package parquet

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/thrift"

	"github.com/kodeshop/parquet/format"
)

// writeRowGroup writes one row group's column chunks, in schema leaf order
// (spec.md §4.7), starting at file offset offset. rows holds every leaf
// column's shredded values for exactly the rows in this row group.
func writeRowGroup(w io.Writer, proto *thrift.CompactProtocol, schema *Schema, rows map[string]*ColumnValues, offset int64, numRows int64, useV2 bool, fileDefault format.CompressionCodec) (format.RowGroup, int64, error) {
	columns := schema.Columns()
	chunks := make([]format.ColumnChunk, len(columns))
	var totalSize int64

	for i, col := range columns {
		cv := rows[col.Key]
		if cv == nil {
			return format.RowGroup{}, 0, fmt.Errorf("%w: no shredded data for column %q", ErrTruncated, col.Key)
		}
		codec := effectiveCompression(col, fileDefault)
		chunk, written, err := writeColumnChunk(w, proto, col, cv, offset+totalSize, useV2, codec)
		if err != nil {
			return format.RowGroup{}, 0, err
		}
		chunks[i] = chunk
		totalSize += written
	}

	rg := format.RowGroup{
		Columns:       chunks,
		TotalByteSize: totalSize,
		NumRows:       numRows,
	}
	return rg, totalSize, nil
}

// readRowGroup reads every requested column of one row group and returns
// the per-column shredded values, ready for Materialize.
func readRowGroup(r io.ReaderAt, proto *thrift.CompactProtocol, schema *Schema, rg *format.RowGroup, wanted func(*Column) bool) (map[string]*ColumnValues, error) {
	columns := schema.Columns()
	if len(columns) != len(rg.Columns) {
		return nil, fmt.Errorf("%w: row group has %d column chunks, schema has %d leaf columns", ErrTruncated, len(rg.Columns), len(columns))
	}

	out := make(map[string]*ColumnValues, len(columns))
	for i, col := range columns {
		if wanted != nil && !wanted(col) {
			continue
		}
		cv, err := readColumnChunk(r, proto, col, &rg.Columns[i])
		if err != nil {
			return nil, fmt.Errorf("reading column %q: %w", col.Key, err)
		}
		out[col.Key] = cv
	}
	return out, nil
}
