package parquet

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodeshop/parquet/format"
)

func int64Column(t *testing.T, optional bool) *Column {
	t.Helper()
	def := &FieldDef{Type: "INT64", Optional: optional}
	s, err := Build("root", &FieldDef{Fields: map[string]*FieldDef{"v": def}})
	require.NoError(t, err)
	return s.Column("v")
}

func TestEncodeDecodeDataPageV1(t *testing.T) {
	col := int64Column(t, true)
	cv := &ColumnValues{
		RLevels: []int32{0, 0, 0, 0},
		DLevels: []int32{1, 0, 1, 1},
		Values:  []Value{Int(10), Int(20), Int(30)},
	}

	page, err := encodeDataPage(col, cv, false, &codecUncompressed)
	require.NoError(t, err)
	require.Equal(t, format.DataPage, page.header.Type)

	out, err := decodeDataPage(col, &page.header, page.body, &codecUncompressed)
	require.NoError(t, err)
	require.Equal(t, cv.RLevels, out.RLevels)
	require.Equal(t, cv.DLevels, out.DLevels)
	require.Equal(t, cv.Values, out.Values)
}

func TestEncodeDecodeDataPageV2(t *testing.T) {
	col := int64Column(t, true)
	cv := &ColumnValues{
		RLevels: []int32{0, 0, 0},
		DLevels: []int32{1, 0, 1},
		Values:  []Value{Int(1), Int(2)},
	}

	page, err := encodeDataPage(col, cv, true, &codecUncompressed)
	require.NoError(t, err)
	require.Equal(t, format.DataPageV2, page.header.Type)
	require.EqualValues(t, 1, page.header.DataPageHeaderV2.NumNulls)
	require.EqualValues(t, 3, page.header.DataPageHeaderV2.NumRows)

	out, err := decodeDataPage(col, &page.header, page.body, &codecUncompressed)
	require.NoError(t, err)
	require.Equal(t, cv.Values, out.Values)
	require.Equal(t, cv.DLevels, out.DLevels)
}

func TestEncodeDecodeDataPageRequiredNoLevels(t *testing.T) {
	col := int64Column(t, false)
	cv := &ColumnValues{
		RLevels: []int32{0, 0, 0},
		DLevels: []int32{0, 0, 0},
		Values:  []Value{Int(1), Int(2), Int(3)},
	}

	page, err := encodeDataPage(col, cv, false, &codecUncompressed)
	require.NoError(t, err)

	out, err := decodeDataPage(col, &page.header, page.body, &codecUncompressed)
	require.NoError(t, err)
	require.Equal(t, cv.Values, out.Values)
}

func TestEncodeDecodeDataPageSnappy(t *testing.T) {
	col := int64Column(t, false)
	values := make([]Value, 100)
	for i := range values {
		values[i] = Int(int64(i))
	}
	cv := &ColumnValues{
		RLevels: make([]int32, 100),
		DLevels: make([]int32, 100),
		Values:  values,
	}

	page, err := encodeDataPage(col, cv, false, &codecSnappy)
	require.NoError(t, err)

	out, err := decodeDataPage(col, &page.header, page.body, &codecSnappy)
	require.NoError(t, err)
	require.Equal(t, cv.Values, out.Values)
}
