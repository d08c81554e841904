package parquet

import (
	"bytes"
	"testing"

	"github.com/segmentio/encoding/thrift"
	"github.com/stretchr/testify/require"

	"github.com/kodeshop/parquet/format"
)

func TestReadColumnChunkExternalRef(t *testing.T) {
	path := "somewhere.parquet"
	chunk := &format.ColumnChunk{FilePath: &path}
	_, err := readColumnChunk(bytes.NewReader(nil), nil, nil, chunk)
	require.ErrorIs(t, err, ErrExternalRef)
}

func TestReadColumnChunkUnknownPageType(t *testing.T) {
	col := int64Column(t, false)

	var proto thrift.CompactProtocol
	header := format.PageHeader{
		Type:                 99,
		UncompressedPageSize: 0,
		CompressedPageSize:   0,
	}
	headerBytes, err := thrift.Marshal(&proto, &header)
	require.NoError(t, err)

	chunk := &format.ColumnChunk{
		MetaData: &format.ColumnMetaData{
			Type:  col.Type().Primitive,
			Codec: format.Uncompressed,
		},
	}

	_, err = readColumnChunk(bytes.NewReader(headerBytes), &proto, col, chunk)
	require.ErrorIs(t, err, ErrUnknownPageType)
}

func TestOpenFileBadVersion(t *testing.T) {
	s := flatPersonSchema(t)

	meta := format.FileMetaData{
		Version:   2,
		Schema:    s.toSchemaElements(),
		NumRows:   0,
		RowGroups: nil,
	}
	data := buildFooterBytes(t, &meta)

	_, err := OpenFile(bytes.NewReader(data), int64(len(data)))
	require.ErrorIs(t, err, ErrBadVersion)
}

func TestOpenFileExternalRef(t *testing.T) {
	s := flatPersonSchema(t)

	path := "elsewhere.parquet"
	meta := format.FileMetaData{
		Version: fileVersion,
		Schema:  s.toSchemaElements(),
		NumRows: 1,
		RowGroups: []format.RowGroup{
			{
				NumRows: 1,
				Columns: []format.ColumnChunk{
					{FilePath: &path, MetaData: &format.ColumnMetaData{}},
					{MetaData: &format.ColumnMetaData{}},
				},
			},
		},
	}
	data := buildFooterBytes(t, &meta)

	_, err := OpenFile(bytes.NewReader(data), int64(len(data)))
	require.ErrorIs(t, err, ErrExternalRef)
}

// buildFooterBytes assembles a minimal but well-formed file envelope
// (header magic, thrift-encoded metadata, length, trailer magic) around an
// arbitrary FileMetaData, for exercising OpenFile's validation paths
// without going through a full Writer round trip.
func buildFooterBytes(t *testing.T, meta *format.FileMetaData) []byte {
	t.Helper()
	var proto thrift.CompactProtocol
	metaBytes, err := thrift.Marshal(&proto, meta)
	require.NoError(t, err)

	var buf bytes.Buffer
	buf.WriteString(magic)
	buf.Write(metaBytes)
	length := uint32(len(metaBytes))
	buf.WriteByte(byte(length))
	buf.WriteByte(byte(length >> 8))
	buf.WriteByte(byte(length >> 16))
	buf.WriteByte(byte(length >> 24))
	buf.WriteString(magic)
	return buf.Bytes()
}
