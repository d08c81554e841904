package parquet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// dremelSchema builds the DocId/Links/Name schema used in spec.md §8
// scenario 1, the canonical Dremel worked example.
func dremelSchema(t *testing.T) *Schema {
	t.Helper()
	def := &FieldDef{
		Fields: map[string]*FieldDef{
			"DocId": {Type: "INT64"},
			"Links": {
				Optional: true,
				Fields: map[string]*FieldDef{
					"Backward": {Type: "INT64", Repeated: true},
					"Forward":  {Type: "INT64", Repeated: true},
				},
			},
			"Name": {
				Repeated: true,
				Fields: map[string]*FieldDef{
					"Language": {
						Repeated: true,
						Fields: map[string]*FieldDef{
							"Code":    {Type: "UTF8"},
							"Country": {Type: "UTF8", Optional: true},
						},
					},
					"Url": {Type: "UTF8", Optional: true},
				},
			},
		},
	}
	s, err := Build("doc", def)
	require.NoError(t, err)
	return s
}

func dremelRecords() (r1, r2 Value) {
	r1 = Record(map[string]Value{
		"DocId": Int(10),
		"Links": Record(map[string]Value{
			"Forward": List([]Value{Int(20), Int(40), Int(60)}),
		}),
		"Name": List([]Value{
			Record(map[string]Value{
				"Language": List([]Value{
					Record(map[string]Value{"Code": String("en-us"), "Country": String("us")}),
					Record(map[string]Value{"Code": String("en")}),
				}),
				"Url": String("http://A"),
			}),
			Record(map[string]Value{"Url": String("http://B")}),
			Record(map[string]Value{
				"Language": List([]Value{
					Record(map[string]Value{"Code": String("en-gb"), "Country": String("gb")}),
				}),
			}),
		}),
	})
	r2 = Record(map[string]Value{
		"DocId": Int(20),
		"Links": Record(map[string]Value{
			"Backward": List([]Value{Int(10), Int(30)}),
			"Forward":  List([]Value{Int(80)}),
		}),
		"Name": List([]Value{
			Record(map[string]Value{"Url": String("http://C")}),
		}),
	})
	return r1, r2
}

func bytesValues(vs []Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v.BytesValue())
	}
	return out
}

func mergeColumns(a, b map[string]*ColumnValues) map[string]*ColumnValues {
	out := make(map[string]*ColumnValues, len(a))
	for key, ca := range a {
		cb := b[key]
		out[key] = &ColumnValues{
			RLevels: append(append([]int32(nil), ca.RLevels...), cb.RLevels...),
			DLevels: append(append([]int32(nil), ca.DLevels...), cb.DLevels...),
			Values:  append(append([]Value(nil), ca.Values...), cb.Values...),
		}
	}
	return out
}

func TestShredDremelExample(t *testing.T) {
	s := dremelSchema(t)
	r1, r2 := dremelRecords()

	cols1, err := Shred(s, r1)
	require.NoError(t, err)
	cols2, err := Shred(s, r2)
	require.NoError(t, err)
	cols := mergeColumns(cols1, cols2)

	code := cols["Name,Language,Code"]
	require.Equal(t, []int32{0, 2, 1, 1, 0}, code.RLevels)
	require.Equal(t, []int32{2, 2, 1, 2, 1}, code.DLevels)
	require.Equal(t, []string{"en-us", "en", "en-gb"}, bytesValues(code.Values))

	country := cols["Name,Language,Country"]
	require.Equal(t, []int32{0, 2, 1, 1, 0}, country.RLevels)
	require.Equal(t, []int32{3, 2, 1, 3, 1}, country.DLevels)
	require.Equal(t, []string{"us", "gb"}, bytesValues(country.Values))
}

func TestShredMaterializeRoundTrip(t *testing.T) {
	s := dremelSchema(t)
	r1, r2 := dremelRecords()

	cols1, err := Shred(s, r1)
	require.NoError(t, err)
	cols2, err := Shred(s, r2)
	require.NoError(t, err)
	cols := mergeColumns(cols1, cols2)

	out, err := Materialize(s, cols)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, r1, out[0])
	require.Equal(t, r2, out[1])
}

func TestShredMissingRequiredLeaf(t *testing.T) {
	s := dremelSchema(t)
	rec := Record(map[string]Value{
		// DocId omitted: required leaf with no value.
	})
	_, err := Shred(s, rec)
	require.ErrorIs(t, err, ErrMissingRequired)
}

func TestShredFlatOptionalRoundTrip(t *testing.T) {
	def := &FieldDef{
		Fields: map[string]*FieldDef{
			"Id":   {Type: "INT64"},
			"Name": {Type: "UTF8", Optional: true},
		},
	}
	s, err := Build("flat", def)
	require.NoError(t, err)

	records := []Value{
		Record(map[string]Value{"Id": Int(1), "Name": String("a")}),
		Record(map[string]Value{"Id": Int(2)}),
		Record(map[string]Value{"Id": Int(3), "Name": String("c")}),
	}

	merged := map[string]*ColumnValues{
		"Id":   {},
		"Name": {},
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

	require.Equal(t, []int32{0, 0, 0}, merged["Id"].RLevels)
	require.Equal(t, []int32{0, 0, 0}, merged["Id"].DLevels)
	require.Equal(t, []int32{0, 0, 0}, merged["Name"].RLevels)
	require.Equal(t, []int32{1, 0, 1}, merged["Name"].DLevels)
	require.Equal(t, []string{"a", "c"}, bytesValues(merged["Name"].Values))

	out, err := Materialize(s, merged)
	require.NoError(t, err)
	require.Equal(t, records, out)
}
