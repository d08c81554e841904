package parquet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func listMapSchema(t *testing.T) *Schema {
	t.Helper()
	def := &FieldDef{
		Fields: map[string]*FieldDef{
			"Id": {Type: "INT64"},
			"Tags": {
				Optional: true,
				List:     &ListDef{Element: &FieldDef{Type: "UTF8"}},
			},
			"Attributes": {
				Optional: true,
				Map:      &MapDef{Key: &FieldDef{Type: "UTF8"}, Value: &FieldDef{Type: "INT64"}},
			},
		},
	}
	s, err := Build("tagged", def)
	require.NoError(t, err)
	return s
}

// TestShredMaterializeListSugar exercises spec.md §4.3's rewrite of a plain
// List sugar value into the canonical {list:[{element:...}]} shape and back.
func TestShredMaterializeListSugar(t *testing.T) {
	s := listMapSchema(t)
	rec := Record(map[string]Value{
		"Id":   Int(1),
		"Tags": List([]Value{String("a"), String("b"), String("c")}),
	})

	cols, err := Shred(s, rec)
	require.NoError(t, err)

	elementCol := cols["Tags,list,element"]
	require.NotNil(t, elementCol)
	require.Equal(t, []string{"a", "b", "c"}, bytesValues(elementCol.Values))

	out, err := Materialize(s, cols)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, rec, out[0])
}

// TestShredMaterializeListSugarAbsentAndEmpty covers an absent Tags field
// and one whose value is an empty list.
func TestShredMaterializeListSugarAbsentAndEmpty(t *testing.T) {
	s := listMapSchema(t)
	records := []Value{
		Record(map[string]Value{"Id": Int(1)}),
		Record(map[string]Value{"Id": Int(2), "Tags": List(nil)}),
	}

	merged := map[string]*ColumnValues{}
	for _, c := range s.Columns() {
		merged[c.Key] = &ColumnValues{}
	}
	for _, rec := range records {
		cols, err := Shred(s, rec)
		require.NoError(t, err)
		for key, cv := range cols {
			dst := merged[key]
			dst.RLevels = append(dst.RLevels, cv.RLevels...)
			dst.DLevels = append(dst.DLevels, cv.DLevels...)
			dst.Values = append(dst.Values, cv.Values...)
		}
	}

	out, err := Materialize(s, merged)
	require.NoError(t, err)
	require.Len(t, out, 2)

	// A genuinely absent optional field is omitted from the materialized
	// record entirely, matching records[0]'s own shape (no "Tags" key).
	_, ok := out[0].Field("Tags")
	require.False(t, ok)

	tags1, ok := out[1].Field("Tags")
	require.True(t, ok)
	require.Equal(t, KindList, tags1.Kind())
	require.Empty(t, tags1.ListValue())
}

// TestShredMaterializeMapSugar exercises spec.md §4.3's rewrite of a plain
// Map sugar value into the canonical {key_value:[{key,value}]} shape and
// back.
func TestShredMaterializeMapSugar(t *testing.T) {
	s := listMapSchema(t)
	rec := Record(map[string]Value{
		"Id": Int(1),
		"Attributes": Map([]MapEntry{
			{Key: String("color"), Value: Int(1)},
			{Key: String("size"), Value: Int(2)},
		}),
	})

	cols, err := Shred(s, rec)
	require.NoError(t, err)

	keyCol := cols["Attributes,key_value,key"]
	require.NotNil(t, keyCol)
	require.Equal(t, []string{"color", "size"}, bytesValues(keyCol.Values))

	out, err := Materialize(s, cols)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, rec, out[0])
}
