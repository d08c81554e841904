package parquet

import (
	"fmt"

	"github.com/kodeshop/parquet/deprecated"
	"github.com/kodeshop/parquet/encoding/plain"
	"github.com/kodeshop/parquet/format"
)

// encodePlainValues converts a column's Value slice to its primitive wire
// representation via the column's LogicalType, then PLAIN-encodes it,
// appending to dst. It is the bridge between the dynamic value tree
// (row.go) and the fixed-width byte encoders in encoding/plain.
func encodePlainValues(dst []byte, col *Column, values []Value) ([]byte, error) {
	lt := col.Type()
	scale, length := col.Scale(), col.TypeLength()

	switch lt.Primitive {
	case format.Boolean:
		vs := make([]bool, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.(bool)
		}
		return plain.EncodeBoolean(dst, vs), nil

	case format.Int32:
		vs := make([]int32, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.(int32)
		}
		return plain.EncodeInt32(dst, vs), nil

	case format.Int64:
		vs := make([]int64, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.(int64)
		}
		return plain.EncodeInt64(dst, vs), nil

	case format.Int96:
		vs := make([]deprecated.Int96, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.(deprecated.Int96)
		}
		return plain.EncodeInt96(dst, vs), nil

	case format.Float:
		vs := make([]float32, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.(float32)
		}
		return plain.EncodeFloat(dst, vs), nil

	case format.Double:
		vs := make([]float64, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.(float64)
		}
		return plain.EncodeDouble(dst, vs), nil

	case format.ByteArray:
		vs := make([][]byte, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.([]byte)
		}
		return plain.EncodeByteArray(dst, vs), nil

	case format.FixedLenByteArray:
		vs := make([][]byte, len(values))
		for i, v := range values {
			p, err := lt.ToPrimitive(v, scale, length)
			if err != nil {
				return dst, err
			}
			vs[i] = p.([]byte)
		}
		return plain.EncodeFixedLenByteArray(dst, vs, int(length))

	default:
		return dst, fmt.Errorf("%w: %s", ErrUnsupportedType, lt.Primitive)
	}
}

// decodePlainValues is the inverse of encodePlainValues: it reads n values
// off the cursor and converts each back to the value tree's representation.
func decodePlainValues(c *plain.Cursor, col *Column, n int) ([]Value, error) {
	lt := col.Type()
	scale, length := col.Scale(), col.TypeLength()
	out := make([]Value, n)

	switch lt.Primitive {
	case format.Boolean:
		vs, err := plain.DecodeBoolean(c, n)
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	case format.Int32:
		vs, err := plain.DecodeInt32(c, n)
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	case format.Int64:
		vs, err := plain.DecodeInt64(c, n)
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	case format.Int96:
		vs, err := plain.DecodeInt96(c, n)
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	case format.Float:
		vs, err := plain.DecodeFloat(c, n)
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	case format.Double:
		vs, err := plain.DecodeDouble(c, n)
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	case format.ByteArray:
		vs, err := plain.DecodeByteArray(c, n)
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	case format.FixedLenByteArray:
		vs, err := plain.DecodeFixedLenByteArray(c, n, int(length))
		if err != nil {
			return nil, err
		}
		for i, p := range vs {
			if out[i], err = lt.FromPrimitive(p, scale, length); err != nil {
				return nil, err
			}
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, lt.Primitive)
	}
	return out, nil
}

// effectiveCompression resolves the codec a column is written with: the
// field's own Compression overrides the writer's file-level default, but
// since FieldDef.Compression "" resolves to format.Uncompressed at Build
// time (schema.go buildLeaf), an explicit per-field UNCOMPRESSED is
// indistinguishable from "unset" — in that case the file default applies.
// See DESIGN.md, Open Question decisions.
func effectiveCompression(col *Column, fileDefault format.CompressionCodec) format.CompressionCodec {
	if c := col.Compression(); c != format.Uncompressed {
		return c
	}
	return fileDefault
}
