package parquet

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/segmentio/encoding/thrift"

	"github.com/kodeshop/parquet/format"
)

// Writer appends rows to a parquet file (spec.md §4.8). Rows are buffered
// until RowGroupSize is reached, then shredded and flushed as one row
// group; Close flushes any residual buffer and writes the footer.
//
// A Writer owns its output stream exclusively from construction to Close
// (spec.md §5) and is not safe for concurrent use.
type Writer struct {
	writer io.Writer
	schema *Schema
	config *WriterConfig
	proto  thrift.CompactProtocol

	offset int64
	closed bool
	err    error

	rows     []Value
	rowCount int

	rowGroups        []format.RowGroup
	keyValueMetadata map[string]string
	createdBy        string
}

// NewWriter constructs a Writer over w using schema, applying options on
// top of DefaultWriterConfig. The magic header is written immediately;
// any error doing so is returned by the first call to AppendRow or Close.
func NewWriter(w io.Writer, schema *Schema, options ...WriterOption) *Writer {
	config := DefaultWriterConfig()
	config.Apply(options...)

	wr := &Writer{
		writer:           w,
		schema:           schema,
		config:           config,
		keyValueMetadata: make(map[string]string, len(config.KeyValueMetadata)),
		createdBy:        config.CreatedBy,
	}
	for k, v := range config.KeyValueMetadata {
		wr.keyValueMetadata[k] = v
	}
	if wr.createdBy == "" {
		wr.createdBy = fmt.Sprintf("github.com/kodeshop/parquet version 1 (build %s)", uuid.New())
	}

	n, err := writeMagic(w)
	wr.offset = n
	wr.err = err
	return wr
}

// SetMetadata adds or overwrites a key/value pair in the file's footer
// metadata. Like KeyValueMetadata, keys are assumed unique: the most
// recent call (whether via this method or the WriterOption) wins.
func (w *Writer) SetMetadata(key, value string) {
	w.keyValueMetadata[key] = value
}

// AppendRow appends row to the current row buffer; once RowGroupSize rows
// have accumulated, the buffer is shredded and flushed as a row group.
func (w *Writer) AppendRow(row Value) error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		return w.err
	}
	w.rows = append(w.rows, row)
	w.rowCount++
	if w.rowCount >= w.config.RowGroupSize {
		return w.flush()
	}
	return nil
}

// flush shreds the buffered rows into one row group and writes it to the
// underlying stream. It is a no-op when the buffer is empty.
func (w *Writer) flush() error {
	if w.rowCount == 0 {
		return nil
	}

	columns := w.schema.Columns()
	cols := make(map[string]*ColumnValues, len(columns))
	for _, c := range columns {
		cols[c.Key] = &ColumnValues{}
	}
	for _, row := range w.rows {
		shredded, err := Shred(w.schema, row)
		if err != nil {
			w.err = err
			return err
		}
		for key, cv := range shredded {
			dst := cols[key]
			dst.RLevels = append(dst.RLevels, cv.RLevels...)
			dst.DLevels = append(dst.DLevels, cv.DLevels...)
			dst.Values = append(dst.Values, cv.Values...)
		}
	}

	rg, written, err := writeRowGroup(w.writer, &w.proto, w.schema, cols, w.offset, int64(w.rowCount), w.config.UseDataPageV2, w.config.Compression)
	if err != nil {
		w.err = err
		return err
	}
	w.rowGroups = append(w.rowGroups, rg)
	w.offset += written
	w.rows = w.rows[:0]
	w.rowCount = 0
	return nil
}

// Close flushes any residual row buffer, writes the footer (compact-binary
// FileMetaData, a 4-byte LE length, then the magic trailer), and closes
// the underlying stream if it implements io.Closer. Closing a file with
// zero rows or zero leaf columns fails ErrEmptyFile; calling Close or
// AppendRow again afterward fails ErrClosed.
func (w *Writer) Close() error {
	if w.closed {
		return ErrClosed
	}
	if w.err != nil {
		w.closed = true
		return w.err
	}
	if err := w.flush(); err != nil {
		w.closed = true
		return err
	}

	var totalRows int64
	for _, rg := range w.rowGroups {
		totalRows += rg.NumRows
	}
	if totalRows == 0 || len(w.schema.Columns()) == 0 {
		w.closed = true
		return ErrEmptyFile
	}

	kv := make([]format.KeyValue, 0, len(w.keyValueMetadata))
	for k, v := range w.keyValueMetadata {
		v := v
		kv = append(kv, format.KeyValue{Key: k, Value: &v})
	}
	format.SortKeyValueMetadata(kv)

	createdBy := w.createdBy
	meta := format.FileMetaData{
		Version:          fileVersion,
		Schema:           w.schema.toSchemaElements(),
		NumRows:          totalRows,
		RowGroups:        w.rowGroups,
		KeyValueMetadata: kv,
		CreatedBy:        &createdBy,
	}

	metaBytes, err := thrift.Marshal(&w.proto, &meta)
	if err != nil {
		w.closed, w.err = true, err
		return err
	}
	if _, err := w.writer.Write(metaBytes); err != nil {
		w.closed, w.err = true, err
		return err
	}
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(metaBytes)))
	if _, err := w.writer.Write(lenBuf[:]); err != nil {
		w.closed, w.err = true, err
		return err
	}
	if _, err := writeMagic(w.writer); err != nil {
		w.closed, w.err = true, err
		return err
	}

	w.closed = true
	if closer, ok := w.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
