package parquet

import (
	"fmt"
	"io"

	"github.com/segmentio/encoding/thrift"

	"github.com/kodeshop/parquet/format"
)

// File is an opened parquet file (spec.md §4.9). Only the header magic and
// the footer are read by OpenFile; column chunks are read lazily as
// cursors consume them.
type File struct {
	reader io.ReaderAt
	size   int64
	proto  thrift.CompactProtocol

	metadata format.FileMetaData
	schema   *Schema
	closer   io.Closer
}

// OpenFile reads and verifies the header and trailer magic, decodes the
// footer, validates its version, and rebuilds the Schema from the footer's
// flattened schema elements (dropping the synthetic root element).
func OpenFile(r io.ReaderAt, size int64) (*File, error) {
	if err := readMagicHeader(r); err != nil {
		return nil, err
	}
	footerSize, err := readTrailer(r, size)
	if err != nil {
		return nil, err
	}

	footerData := make([]byte, footerSize)
	if _, err := r.ReadAt(footerData, size-8-footerSize); err != nil {
		return nil, fmt.Errorf("reading footer: %w", err)
	}

	f := &File{reader: r, size: size}
	if err := thrift.Unmarshal(&f.proto, footerData, &f.metadata); err != nil {
		return nil, fmt.Errorf("decoding file metadata: %w", err)
	}
	if f.metadata.Version != fileVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadVersion, f.metadata.Version)
	}
	for _, rg := range f.metadata.RowGroups {
		for _, cc := range rg.Columns {
			if cc.FilePath != nil {
				return nil, ErrExternalRef
			}
		}
	}

	schema, err := schemaFromElements("root", f.metadata.Schema)
	if err != nil {
		return nil, err
	}
	f.schema = schema

	// Footer schema elements carry no codec, so each leaf takes the codec
	// its chunk in the first row group was written with.
	if len(f.metadata.RowGroups) > 0 {
		chunks := f.metadata.RowGroups[0].Columns
		for i, col := range schema.Columns() {
			if leaf, ok := unwrapOnce(col.Node).(*leafNode); ok && i < len(chunks) && chunks[i].MetaData != nil {
				leaf.compression = chunks[i].MetaData.Codec
			}
		}
	}

	if closer, ok := r.(io.Closer); ok {
		f.closer = closer
	}
	return f, nil
}

// GetRowCount returns the total number of rows across every row group.
func (f *File) GetRowCount() int64 { return f.metadata.NumRows }

// GetSchema returns the schema rebuilt from the file's footer.
func (f *File) GetSchema() *Schema { return f.schema }

// GetMetadata returns the file's free-form key/value metadata.
func (f *File) GetMetadata() map[string]string {
	m := make(map[string]string, len(f.metadata.KeyValueMetadata))
	for _, kv := range f.metadata.KeyValueMetadata {
		if kv.Value != nil {
			m[kv.Key] = *kv.Value
		}
	}
	return m
}

// Close releases the underlying file. Cursors obtained from this File
// become invalid afterward.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// GetCursor returns a Cursor iterating every materialized row of f. An
// empty columns list reads every column; otherwise only leaf columns whose
// path matches one of the requested prefixes (exact match by comma-joined
// key, or by segment-wise array equality) are read from disk — every other
// column is treated as entirely null for the purpose of materialization.
func (f *File) GetCursor(columns ...[]string) *Cursor {
	wanted := columnFilter(columns)
	return &Cursor{file: f, wanted: wanted, rowGroupIndex: -1}
}

func columnFilter(columns [][]string) func(*Column) bool {
	if len(columns) == 0 {
		return nil
	}
	return func(c *Column) bool {
		for _, want := range columns {
			if pathMatches(c.Path, want) {
				return true
			}
		}
		return false
	}
}

func pathMatches(path, want []string) bool {
	want = splitCommaSegments(want)
	if len(want) > len(path) {
		return false
	}
	for i, seg := range want {
		if path[i] != seg {
			return false
		}
	}
	return true
}

// Cursor iterates materialized rows of a File, one row group at a time
// (spec.md §4.9). Cursors on the same File are independent and may coexist,
// but each serializes its own reads and all become invalid once the File
// is closed.
type Cursor struct {
	file   *File
	wanted func(*Column) bool

	rowGroupIndex int
	rows          []Value
	rowIndex      int

	err error
	row Value
}

// Next advances the cursor to the next row, lazily materializing the next
// row group's worth of records when the current one is exhausted. It
// returns false at end of file or on error; check Err to distinguish them.
func (c *Cursor) Next() bool {
	if c.err != nil {
		return false
	}
	for c.rowIndex >= len(c.rows) {
		c.rowGroupIndex++
		if c.rowGroupIndex >= len(c.file.metadata.RowGroups) {
			return false
		}
		rg := &c.file.metadata.RowGroups[c.rowGroupIndex]
		cols, err := readRowGroup(c.file.reader, &c.file.proto, c.file.schema, rg, c.wanted)
		if err != nil {
			c.err = err
			return false
		}
		fillMissingColumns(c.file.schema, cols, int(rg.NumRows))
		rows, err := Materialize(c.file.schema, cols)
		if err != nil {
			c.err = err
			return false
		}
		fillProjectedFields(rows, c.file.schema, c.wanted)
		c.rows = rows
		c.rowIndex = 0
	}
	c.row = c.rows[c.rowIndex]
	c.rowIndex++
	return true
}

// Row returns the row most recently produced by Next.
func (c *Cursor) Row() Value { return c.row }

// Err returns the first error encountered while advancing the cursor, if
// any.
func (c *Cursor) Err() error { return c.err }

// fillMissingColumns synthesizes an all-absent ColumnValues (every entry at
// definition level 0, repetition level 0) for columns the caller didn't
// request, so Materialize still sees one entry per row group's top-level
// row for every leaf column.
func fillMissingColumns(schema *Schema, cols map[string]*ColumnValues, numRows int) {
	for _, c := range schema.Columns() {
		if _, ok := cols[c.Key]; ok {
			continue
		}
		cv := &ColumnValues{RLevels: make([]int32, numRows), DLevels: make([]int32, numRows)}
		cols[c.Key] = cv
	}
}

// fillProjectedFields forces every column wanted excludes to show up as an
// explicit null field in each materialized row, rather than being omitted
// the way a field genuinely absent from the written data would be
// (assembleNode, shred.go): a caller who asked for a subset of columns still
// gets a row shaped like the full schema, with the columns it didn't ask for
// reported as present-but-null instead of missing. wanted == nil (no
// projection) is a no-op, since every column was read from disk.
func fillProjectedFields(rows []Value, schema *Schema, wanted func(*Column) bool) {
	if wanted == nil {
		return
	}
	for _, c := range schema.Columns() {
		if wanted(c) {
			continue
		}
		for i, row := range rows {
			rows[i] = ensureNullAt(row, c.Path)
		}
	}
}

// ensureNullAt returns rec with an explicit Null() set at path if no value
// is already present there, leaving everything else untouched. It refuses
// to descend into a value that isn't itself a record (e.g. a repeated
// field's list), since there is no single leaf position to inject a null at
// inside a sequence.
func ensureNullAt(rec Value, path []string) Value {
	if len(path) == 0 {
		return rec
	}
	if rec.Kind() != KindRecord && rec.Kind() != KindNull {
		return rec
	}
	fields := make(map[string]Value)
	if rec.Kind() == KindRecord {
		for k, v := range rec.Fields() {
			fields[k] = v
		}
	}
	name := path[0]
	if len(path) == 1 {
		if _, ok := fields[name]; !ok {
			fields[name] = Null()
		}
		return Record(fields)
	}
	fields[name] = ensureNullAt(fields[name], path[1:])
	return Record(fields)
}
