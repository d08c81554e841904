package parquet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaPrint(t *testing.T) {
	def := &FieldDef{
		Fields: map[string]*FieldDef{
			"Id":   {Type: "INT64"},
			"Name": {Type: "UTF8", Optional: true},
			"Address": {
				Optional: true,
				Fields: map[string]*FieldDef{
					"City": {Type: "UTF8"},
				},
			},
		},
	}
	s, err := Build("person", def)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, s.Print(&buf))

	out := buf.String()
	require.Contains(t, out, "message person {")
	require.Contains(t, out, "required int64 Id;")
	require.Contains(t, out, "optional group Address {")
	require.Contains(t, out, "required binary City")
}
