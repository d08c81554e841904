package parquet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodeshop/parquet/format"
)

func flatPersonSchema(t *testing.T) *Schema {
	t.Helper()
	def := &FieldDef{
		Fields: map[string]*FieldDef{
			"Id":   {Type: "INT64"},
			"Name": {Type: "UTF8", Optional: true},
		},
	}
	s, err := Build("person", def)
	require.NoError(t, err)
	return s
}

func TestWriterReaderRoundTrip(t *testing.T) {
	s := flatPersonSchema(t)

	var buf bytes.Buffer
	w := NewWriter(&buf, s, RowGroupSize(2))

	records := []Value{
		Record(map[string]Value{"Id": Int(1), "Name": String("alice")}),
		Record(map[string]Value{"Id": Int(2)}),
		Record(map[string]Value{"Id": Int(3), "Name": String("carol")}),
		Record(map[string]Value{"Id": Int(4), "Name": String("dave")}),
		Record(map[string]Value{"Id": Int(5)}),
	}
	for _, rec := range records {
		require.NoError(t, w.AppendRow(rec))
	}
	require.NoError(t, w.Close())

	data := buf.Bytes()
	require.Equal(t, "PAR1", string(data[:4]))
	require.Equal(t, "PAR1", string(data[len(data)-4:]))

	f, err := OpenFile(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.EqualValues(t, len(records), f.GetRowCount())

	cur := f.GetCursor()
	var got []Value
	for cur.Next() {
		got = append(got, cur.Row())
	}
	require.NoError(t, cur.Err())
	require.Equal(t, records, got)
}

func TestWriterReaderRoundTripCompressed(t *testing.T) {
	s := flatPersonSchema(t)

	var buf bytes.Buffer
	w := NewWriter(&buf, s, Compression(format.Snappy))

	records := []Value{
		Record(map[string]Value{"Id": Int(10), "Name": String("eve")}),
		Record(map[string]Value{"Id": Int(20)}),
	}
	for _, rec := range records {
		require.NoError(t, w.AppendRow(rec))
	}
	require.NoError(t, w.Close())

	f, err := OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	cur := f.GetCursor()
	var got []Value
	for cur.Next() {
		got = append(got, cur.Row())
	}
	require.NoError(t, cur.Err())
	require.Equal(t, records, got)
}

func TestWriterReaderColumnProjection(t *testing.T) {
	s := flatPersonSchema(t)

	var buf bytes.Buffer
	w := NewWriter(&buf, s)
	records := []Value{
		Record(map[string]Value{"Id": Int(1), "Name": String("alice")}),
		Record(map[string]Value{"Id": Int(2), "Name": String("bob")}),
	}
	for _, rec := range records {
		require.NoError(t, w.AppendRow(rec))
	}
	require.NoError(t, w.Close())

	f, err := OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	cur := f.GetCursor([]string{"Id"})
	var got []Value
	for cur.Next() {
		got = append(got, cur.Row())
	}
	require.NoError(t, cur.Err())
	require.Len(t, got, 2)
	for i, rec := range got {
		id, ok := rec.Field("Id")
		require.True(t, ok)
		require.Equal(t, records[i].Fields()["Id"], id)
		name, ok := rec.Field("Name")
		require.True(t, ok)
		require.True(t, name.IsNull())
	}
}

func TestWriterEmptyFileFails(t *testing.T) {
	s := flatPersonSchema(t)
	var buf bytes.Buffer
	w := NewWriter(&buf, s)
	require.ErrorIs(t, w.Close(), ErrEmptyFile)
}

func TestWriterClosedFails(t *testing.T) {
	s := flatPersonSchema(t)
	var buf bytes.Buffer
	w := NewWriter(&buf, s)
	require.NoError(t, w.AppendRow(Record(map[string]Value{"Id": Int(1)})))
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.Close(), ErrClosed)
	require.ErrorIs(t, w.AppendRow(Record(map[string]Value{"Id": Int(2)})), ErrClosed)
}

func TestOpenFileBadMagic(t *testing.T) {
	data := []byte("XXXXsomejunkdatahereXXXX")
	_, err := OpenFile(bytes.NewReader(data), int64(len(data)))
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestOpenFileBadTrailer(t *testing.T) {
	data := append([]byte("PAR1"), []byte("junkjunkjunkjunkPAR1")...)
	_, err := OpenFile(bytes.NewReader(data), int64(len(data)))
	require.Error(t, err)
}

// TestWriterReaderFourThousandRows exercises the concrete write/read round
// trip scenario: four rows per cycle, 1000 cycles, with the optional INT64
// quantity absent on the kiwi and banana rows, the optional BOOLEAN
// in_stock absent on the banana rows, and a TIMESTAMP_MICROS field that
// must come back exact to the microsecond.
func TestWriterReaderFourThousandRows(t *testing.T) {
	def := &FieldDef{
		Fields: map[string]*FieldDef{
			"name":     {Type: "UTF8"},
			"quantity": {Type: "INT64", Optional: true},
			"price":    {Type: "DOUBLE"},
			"date":     {Type: "TIMESTAMP_MICROS"},
			"in_stock": {Type: "BOOLEAN", Optional: true},
		},
	}
	s, err := Build("stock", def)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf, s)

	var records []Value
	for i := int64(0); i < 1000; i++ {
		records = append(records,
			Record(map[string]Value{
				"name": String("apples"), "quantity": Int(10), "price": Float(2.6),
				"date": Int(i*1_000_000 + 1_000_000), "in_stock": Bool(true),
			}),
			Record(map[string]Value{
				"name": String("oranges"), "quantity": Int(20), "price": Float(2.7),
				"date": Int(i*1_000_000 + 2_000_000), "in_stock": Bool(true),
			}),
			Record(map[string]Value{
				"name": String("kiwi"), "price": Float(4.2),
				"date": Int(i*1_000_000 + 8_000_000), "in_stock": Bool(false),
			}),
			Record(map[string]Value{
				"name": String("banana"), "price": Float(3.2),
				"date": Int(i*1_000_000 + 6_000_000),
			}),
		)
	}
	for _, rec := range records {
		require.NoError(t, w.AppendRow(rec))
	}
	require.NoError(t, w.Close())

	f, err := OpenFile(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.EqualValues(t, 4000, f.GetRowCount())

	cur := f.GetCursor()
	var got []Value
	for cur.Next() {
		got = append(got, cur.Row())
	}
	require.NoError(t, cur.Err())
	require.Equal(t, records, got)

	kiwi, _ := got[2].Field("quantity")
	require.True(t, kiwi.IsNull())
	banana, _ := got[3].Field("quantity")
	require.True(t, banana.IsNull())
	bananaStock, _ := got[3].Field("in_stock")
	require.True(t, bananaStock.IsNull())
}
