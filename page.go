package parquet

import (
	"encoding/binary"
	"fmt"

	"github.com/kodeshop/parquet/compress"
	"github.com/kodeshop/parquet/encoding/plain"
	"github.com/kodeshop/parquet/encoding/rle"
	"github.com/kodeshop/parquet/format"
)

// encodedPage is one column chunk's single data page (spec.md §4.7: "this
// implementation emits exactly one [page] per chunk"), split into the
// wire-ready header and the bytes that follow it.
type encodedPage struct {
	header format.PageHeader
	body   []byte
}

// encodeLevels RLE-encodes levels (repetition or definition) when max > 0;
// a column whose level never rises above 0 carries no level bytes at all,
// matching the standard Parquet convention that every value implicitly
// sits at level 0.
func encodeLevels(levels []int32, max int32, disableEnvelope bool) ([]byte, error) {
	if max <= 0 {
		return nil, nil
	}
	vals := make([]uint64, len(levels))
	for i, v := range levels {
		vals[i] = uint64(v)
	}
	bitWidth := rle.BitWidth(uint64(max))
	return rle.Encode(nil, vals, bitWidth, disableEnvelope)
}

func decodeLevels(buf []byte, max int32, count int, disableEnvelope bool) ([]int32, error) {
	if max <= 0 {
		out := make([]int32, count)
		return out, nil
	}
	bitWidth := rle.BitWidth(uint64(max))
	vals, err := rle.Decode(buf, bitWidth, count, disableEnvelope)
	if err != nil {
		return nil, err
	}
	out := make([]int32, len(vals))
	for i, v := range vals {
		out[i] = int32(v)
	}
	return out, nil
}

// encodeDataPage builds col's single data page from its shredded values,
// per spec.md §4.7. codec compresses only the PLAIN-encoded values section;
// the r/d-level RLE streams are never compressed.
func encodeDataPage(col *Column, cv *ColumnValues, useV2 bool, codec compress.Codec) (encodedPage, error) {
	disableEnvelope := useV2

	rBytes, err := encodeLevels(cv.RLevels, col.RLevelMax, disableEnvelope)
	if err != nil {
		return encodedPage{}, fmt.Errorf("encoding repetition levels for %q: %w", col.Key, err)
	}
	dBytes, err := encodeLevels(cv.DLevels, col.DLevelMax, disableEnvelope)
	if err != nil {
		return encodedPage{}, fmt.Errorf("encoding definition levels for %q: %w", col.Key, err)
	}

	rawValues, err := encodePlainValues(nil, col, cv.Values)
	if err != nil {
		return encodedPage{}, fmt.Errorf("encoding values for %q: %w", col.Key, err)
	}
	compressedValues, err := codec.Encode(nil, rawValues)
	if err != nil {
		return encodedPage{}, fmt.Errorf("compressing values for %q: %w", col.Key, err)
	}

	numValues := int32(len(cv.DLevels))
	uncompressedSize := int32(len(rBytes) + len(dBytes) + len(rawValues))
	compressedSize := int32(len(rBytes) + len(dBytes) + len(compressedValues))

	body := make([]byte, 0, compressedSize)
	body = append(body, rBytes...)
	body = append(body, dBytes...)
	body = append(body, compressedValues...)

	header := format.PageHeader{
		UncompressedPageSize: uncompressedSize,
		CompressedPageSize:   compressedSize,
	}

	if useV2 {
		numNulls := numValues - int32(len(cv.Values))
		numRows := int32(0)
		for _, r := range cv.RLevels {
			if r == 0 {
				numRows++
			}
		}
		header.Type = format.DataPageV2
		header.DataPageHeaderV2 = &format.DataPageHeaderV2{
			NumValues:                  numValues,
			NumNulls:                   numNulls,
			NumRows:                    numRows,
			Encoding:                   format.Plain,
			DefinitionLevelsByteLength: int32(len(dBytes)),
			RepetitionLevelsByteLength: int32(len(rBytes)),
			IsCompressed:               codec.CompressionCodec() != format.Uncompressed,
		}
	} else {
		header.Type = format.DataPage
		header.DataPageHeader = &format.DataPageHeader{
			NumValues:               numValues,
			Encoding:                format.Plain,
			DefinitionLevelEncoding: format.RLE,
			RepetitionLevelEncoding: format.RLE,
		}
	}

	return encodedPage{header: header, body: body}, nil
}

// decodeDataPage is the inverse of encodeDataPage: it reads the r/d-level
// streams and the (decompressed) PLAIN values off a page body and
// reassembles a ColumnValues for col.
func decodeDataPage(col *Column, header *format.PageHeader, body []byte, codec compress.Codec) (*ColumnValues, error) {
	switch header.Type {
	case format.DataPage:
		return decodeDataPageV1(col, header, body, codec)
	case format.DataPageV2:
		return decodeDataPageV2(col, header, body, codec)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownPageType, header.Type)
	}
}

func decodeDataPageV1(col *Column, header *format.PageHeader, body []byte, codec compress.Codec) (*ColumnValues, error) {
	dph := header.DataPageHeader
	if dph == nil {
		return nil, fmt.Errorf("%w: DATA_PAGE missing its header", ErrTruncated)
	}
	numValues := int(dph.NumValues)

	offset := 0
	rBytes, rConsumed, err := takeEnvelopedRLE(body[offset:], col.RLevelMax)
	if err != nil {
		return nil, fmt.Errorf("reading repetition levels for %q: %w", col.Key, err)
	}
	offset += rConsumed
	dBytes, dConsumed, err := takeEnvelopedRLE(body[offset:], col.DLevelMax)
	if err != nil {
		return nil, fmt.Errorf("reading definition levels for %q: %w", col.Key, err)
	}
	offset += dConsumed

	rLevels, err := decodeLevels(rBytes, col.RLevelMax, numValues, false)
	if err != nil {
		return nil, fmt.Errorf("decoding repetition levels for %q: %w", col.Key, err)
	}
	dLevels, err := decodeLevels(dBytes, col.DLevelMax, numValues, false)
	if err != nil {
		return nil, fmt.Errorf("decoding definition levels for %q: %w", col.Key, err)
	}

	numNonNull := 0
	for _, d := range dLevels {
		if d == col.DLevelMax {
			numNonNull++
		}
	}

	compressedValues := body[offset:]
	rawValues, err := codec.Decode(nil, compressedValues)
	if err != nil {
		return nil, fmt.Errorf("decompressing values for %q: %w", col.Key, err)
	}
	values, err := decodePlainValues(plain.NewCursor(rawValues), col, numNonNull)
	if err != nil {
		return nil, fmt.Errorf("decoding values for %q: %w", col.Key, err)
	}

	return &ColumnValues{RLevels: rLevels, DLevels: dLevels, Values: values}, nil
}

func decodeDataPageV2(col *Column, header *format.PageHeader, body []byte, codec compress.Codec) (*ColumnValues, error) {
	dph := header.DataPageHeaderV2
	if dph == nil {
		return nil, fmt.Errorf("%w: DATA_PAGE_V2 missing its header", ErrTruncated)
	}
	numValues := int(dph.NumValues)
	rLen := int(dph.RepetitionLevelsByteLength)
	dLen := int(dph.DefinitionLevelsByteLength)
	if len(body) < rLen+dLen {
		return nil, fmt.Errorf("%w: DATA_PAGE_V2 body shorter than declared level lengths", ErrTruncated)
	}

	rLevels, err := decodeLevels(body[:rLen], col.RLevelMax, numValues, true)
	if err != nil {
		return nil, fmt.Errorf("decoding repetition levels for %q: %w", col.Key, err)
	}
	dLevels, err := decodeLevels(body[rLen:rLen+dLen], col.DLevelMax, numValues, true)
	if err != nil {
		return nil, fmt.Errorf("decoding definition levels for %q: %w", col.Key, err)
	}

	numNonNull := int(dph.NumValues - dph.NumNulls)

	compressedValues := body[rLen+dLen:]
	rawValues, err := codec.Decode(nil, compressedValues)
	if err != nil {
		return nil, fmt.Errorf("decompressing values for %q: %w", col.Key, err)
	}
	values, err := decodePlainValues(plain.NewCursor(rawValues), col, numNonNull)
	if err != nil {
		return nil, fmt.Errorf("decoding values for %q: %w", col.Key, err)
	}

	return &ColumnValues{RLevels: rLevels, DLevels: dLevels, Values: values}, nil
}

// takeEnvelopedRLE reads a DATA_PAGE v1 level section: when max > 0 it is
// prefixed by a 4-byte LE length of the run stream; when max <= 0 no bytes
// were written at all (see encodeLevels).
func takeEnvelopedRLE(buf []byte, max int32) (runStream []byte, consumed int, err error) {
	if max <= 0 {
		return nil, 0, nil
	}
	if len(buf) < 4 {
		return nil, 0, fmt.Errorf("%w: level envelope length", ErrTruncated)
	}
	length := int(binary.LittleEndian.Uint32(buf[:4]))
	if len(buf) < 4+length {
		return nil, 0, fmt.Errorf("%w: level run stream", ErrTruncated)
	}
	return buf[:4+length], 4 + length, nil
}
