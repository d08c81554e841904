// Package format declares the wire-level structures of the Parquet
// metadata IDL (https://github.com/apache/parquet-format). The shapes
// here mirror the thrift definitions closely enough that
// github.com/segmentio/encoding/thrift can read and write them directly
// through its CompactProtocol; the protocol framing itself is entirely
// that library's concern, not this package's.
package format

import "sort"

// Type is the set of physical (on-disk) value types.
type Type int32

const (
	Boolean           Type = 0
	Int32             Type = 1
	Int64             Type = 2
	Int96             Type = 3
	Float             Type = 4
	Double            Type = 5
	ByteArray         Type = 6
	FixedLenByteArray Type = 7
)

func (t Type) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// ConvertedType is the set of logical/original type annotations that can
// be layered on top of a physical Type.
type ConvertedType int32

const (
	ConvertedTypeUTF8            ConvertedType = 0
	ConvertedTypeMap             ConvertedType = 1
	ConvertedTypeMapKeyValue     ConvertedType = 2
	ConvertedTypeList            ConvertedType = 3
	ConvertedTypeEnum            ConvertedType = 4
	ConvertedTypeDecimal         ConvertedType = 5
	ConvertedTypeDate            ConvertedType = 6
	ConvertedTypeTimeMillis      ConvertedType = 7
	ConvertedTypeTimeMicros      ConvertedType = 8
	ConvertedTypeTimestampMillis ConvertedType = 9
	ConvertedTypeTimestampMicros ConvertedType = 10
	ConvertedTypeUint8           ConvertedType = 11
	ConvertedTypeUint16          ConvertedType = 12
	ConvertedTypeUint32          ConvertedType = 13
	ConvertedTypeUint64          ConvertedType = 14
	ConvertedTypeInt8            ConvertedType = 15
	ConvertedTypeInt16           ConvertedType = 16
	ConvertedTypeInt32           ConvertedType = 17
	ConvertedTypeInt64           ConvertedType = 18
	ConvertedTypeJSON            ConvertedType = 19
	ConvertedTypeBSON            ConvertedType = 20
	ConvertedTypeInterval        ConvertedType = 21
)

// FieldRepetitionType is whether a schema node is required, optional, or
// repeated.
type FieldRepetitionType int32

const (
	Required FieldRepetitionType = 0
	Optional FieldRepetitionType = 1
	Repeated FieldRepetitionType = 2
)

func (r FieldRepetitionType) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	default:
		return "UNKNOWN"
	}
}

// Encoding is the set of value/level encodings a data page body may use.
type Encoding int32

const (
	Plain Encoding = 0
	RLE   Encoding = 3
)

func (e Encoding) String() string {
	switch e {
	case Plain:
		return "PLAIN"
	case RLE:
		return "RLE"
	default:
		return "UNKNOWN"
	}
}

// CompressionCodec is the set of page-body compression methods.
type CompressionCodec int32

const (
	Uncompressed CompressionCodec = 0
	Snappy       CompressionCodec = 1
	Gzip         CompressionCodec = 2
	Lzo          CompressionCodec = 3
	Brotli       CompressionCodec = 4
	Lz4          CompressionCodec = 5
	Zstd         CompressionCodec = 6
	Lz4Raw       CompressionCodec = 7
)

func (c CompressionCodec) String() string {
	switch c {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Snappy:
		return "SNAPPY"
	case Gzip:
		return "GZIP"
	case Lzo:
		return "LZO"
	case Brotli:
		return "BROTLI"
	case Lz4:
		return "LZ4"
	case Zstd:
		return "ZSTD"
	case Lz4Raw:
		return "LZ4_RAW"
	default:
		return "UNKNOWN"
	}
}

// PageType distinguishes the kinds of pages that can appear in a column
// chunk. Only the two data page flavors are produced or understood by
// this implementation; the others are named for completeness of the
// wire format.
type PageType int32

const (
	DataPage       PageType = 0
	IndexPage      PageType = 1
	DictionaryPage PageType = 2
	DataPageV2     PageType = 3
)

func (t PageType) String() string {
	switch t {
	case DataPage:
		return "DATA_PAGE"
	case IndexPage:
		return "INDEX_PAGE"
	case DictionaryPage:
		return "DICTIONARY_PAGE"
	case DataPageV2:
		return "DATA_PAGE_V2"
	default:
		return "UNKNOWN"
	}
}

// SchemaElement is one node (internal or leaf) of the depth-first
// flattening of a file's schema tree, including the synthetic root.
type SchemaElement struct {
	Type           *Type                `thrift:"1,optional"`
	TypeLength     *int32               `thrift:"2,optional"`
	RepetitionType *FieldRepetitionType `thrift:"3,optional"`
	Name           string               `thrift:"4,required"`
	NumChildren    *int32               `thrift:"5,optional"`
	ConvertedType  *ConvertedType       `thrift:"6,optional"`
	Scale          *int32               `thrift:"7,optional"`
	Precision      *int32               `thrift:"8,optional"`
}

// DataPageHeader carries the DATA_PAGE-specific fields of a PageHeader.
type DataPageHeader struct {
	NumValues               int32    `thrift:"1,required"`
	Encoding                Encoding `thrift:"2,required"`
	DefinitionLevelEncoding Encoding `thrift:"3,required"`
	RepetitionLevelEncoding Encoding `thrift:"4,required"`
}

// DataPageHeaderV2 carries the DATA_PAGE_V2-specific fields of a
// PageHeader.
type DataPageHeaderV2 struct {
	NumValues                  int32    `thrift:"1,required"`
	NumNulls                   int32    `thrift:"2,required"`
	NumRows                    int32    `thrift:"3,required"`
	Encoding                   Encoding `thrift:"4,required"`
	DefinitionLevelsByteLength int32    `thrift:"5,required"`
	RepetitionLevelsByteLength int32    `thrift:"6,required"`
	IsCompressed               bool     `thrift:"7,optional"`
}

// PageHeader precedes every page body in a column chunk.
type PageHeader struct {
	Type                 PageType          `thrift:"1,required"`
	UncompressedPageSize int32             `thrift:"2,required"`
	CompressedPageSize   int32             `thrift:"3,required"`
	DataPageHeader       *DataPageHeader   `thrift:"5,optional"`
	DataPageHeaderV2     *DataPageHeaderV2 `thrift:"8,optional"`
}

// KeyValue is one entry of a file's free-form user metadata.
type KeyValue struct {
	Key   string  `thrift:"1,required"`
	Value *string `thrift:"2,optional"`
}

// ColumnMetaData describes one column chunk's on-disk layout.
type ColumnMetaData struct {
	Type                  Type             `thrift:"1,required"`
	Encodings             []Encoding       `thrift:"2,required"`
	PathInSchema          []string         `thrift:"3,required"`
	Codec                 CompressionCodec `thrift:"4,required"`
	NumValues             int64            `thrift:"5,required"`
	TotalUncompressedSize int64            `thrift:"6,required"`
	TotalCompressedSize   int64            `thrift:"7,required"`
	KeyValueMetadata      []KeyValue       `thrift:"8,optional"`
	DataPageOffset        int64            `thrift:"9,required"`
}

// ColumnChunk is a row group's reference to one column's metadata,
// either inline or (rejected by this implementation) in another file.
type ColumnChunk struct {
	FilePath   *string         `thrift:"1,optional"`
	FileOffset int64           `thrift:"2,required"`
	MetaData   *ColumnMetaData `thrift:"3,optional"`
}

// RowGroup is one horizontal slice of the file.
type RowGroup struct {
	Columns       []ColumnChunk `thrift:"1,required"`
	TotalByteSize int64         `thrift:"2,required"`
	NumRows       int64         `thrift:"3,required"`
}

// FileMetaData is the footer structure trailing every Parquet file.
type FileMetaData struct {
	Version          int32           `thrift:"1,required"`
	Schema           []SchemaElement `thrift:"2,required"`
	NumRows          int64           `thrift:"3,required"`
	RowGroups        []RowGroup      `thrift:"4,required"`
	KeyValueMetadata []KeyValue      `thrift:"5,optional"`
	CreatedBy        *string         `thrift:"6,optional"`
}

// SortKeyValueMetadata sorts the slice of KeyValueMetadata entries so
// that the footer's user metadata is emitted deterministically.
func SortKeyValueMetadata(kv []KeyValue) {
	sort.Slice(kv, func(i, j int) bool {
		switch {
		case kv[i].Key < kv[j].Key:
			return true
		case kv[i].Key > kv[j].Key:
			return false
		default:
			return valueOf(kv[i].Value) < valueOf(kv[j].Value)
		}
	})
}

func valueOf(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
