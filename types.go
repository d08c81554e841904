package parquet

import (
	"fmt"
	"math"

	"github.com/kodeshop/parquet/deprecated"
	"github.com/kodeshop/parquet/format"
)

// LogicalType pairs a primitive wire type with the conversion functions that
// translate between the value tree's native representation (see row.go) and
// the primitive representation the PLAIN codec encodes.
//
// ToPrimitive/FromPrimitive take scale and length because DECIMAL and
// FIXED_LEN_BYTE_ARRAY carriers need them; most conversions ignore both.
type LogicalType struct {
	Name          string
	Primitive     format.Type
	Converted     *format.ConvertedType
	ToPrimitive   func(v Value, scale, length int32) (any, error)
	FromPrimitive func(p any, scale, length int32) (Value, error)
}

func convertedTypePtr(c format.ConvertedType) *format.ConvertedType { return &c }

func identityLogicalType(primitive format.Type) *LogicalType {
	switch primitive {
	case format.Boolean:
		return &LogicalType{Name: "", Primitive: format.Boolean, ToPrimitive: boolToPrimitive, FromPrimitive: boolFromPrimitive}
	case format.Int32:
		return &LogicalType{Name: "", Primitive: format.Int32, ToPrimitive: int32ToPrimitive, FromPrimitive: int32FromPrimitive}
	case format.Int64:
		return &LogicalType{Name: "", Primitive: format.Int64, ToPrimitive: int64ToPrimitive, FromPrimitive: int64FromPrimitive}
	case format.Int96:
		return &LogicalType{Name: "", Primitive: format.Int96, ToPrimitive: int96ToPrimitive, FromPrimitive: int96FromPrimitive}
	case format.Float:
		return &LogicalType{Name: "", Primitive: format.Float, ToPrimitive: floatToPrimitive, FromPrimitive: floatFromPrimitive}
	case format.Double:
		return &LogicalType{Name: "", Primitive: format.Double, ToPrimitive: doubleToPrimitive, FromPrimitive: doubleFromPrimitive}
	case format.ByteArray:
		return &LogicalType{Name: "", Primitive: format.ByteArray, ToPrimitive: bytesToPrimitive, FromPrimitive: bytesFromPrimitive}
	case format.FixedLenByteArray:
		return &LogicalType{Name: "", Primitive: format.FixedLenByteArray, ToPrimitive: fixedBytesToPrimitive, FromPrimitive: bytesFromPrimitive}
	default:
		return nil
	}
}

// resolveLogicalType maps an `original` type name and its carrier primitive
// to a LogicalType. DECIMAL is the one name that depends on the primitive
// carrier; every other name is self-contained. An empty `original` returns
// the identity conversion for the primitive.
func resolveLogicalType(original string, primitive format.Type) (*LogicalType, error) {
	if original == "" {
		if lt := identityLogicalType(primitive); lt != nil {
			return lt, nil
		}
		return nil, fmt.Errorf("%w: primitive %s", ErrUnknownType, primitive)
	}

	if original == "DECIMAL" {
		switch primitive {
		case format.Int32:
			return decimal32LogicalType, nil
		case format.Int64:
			return decimal64LogicalType, nil
		case format.FixedLenByteArray:
			return decimalFixedLogicalType, nil
		case format.ByteArray:
			return decimalBinaryLogicalType, nil
		default:
			return nil, fmt.Errorf("%w: DECIMAL over %s", ErrUnknownType, primitive)
		}
	}

	lt, ok := namedLogicalTypes[original]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, original)
	}
	return lt, nil
}

var namedLogicalTypes map[string]*LogicalType

func init() {
	namedLogicalTypes = map[string]*LogicalType{
		"UTF8": {
			Name: "UTF8", Primitive: format.ByteArray, Converted: convertedTypePtr(format.ConvertedTypeUTF8),
			ToPrimitive: bytesToPrimitive, FromPrimitive: bytesFromPrimitive,
		},
		"ENUM": {
			Name: "ENUM", Primitive: format.ByteArray, Converted: convertedTypePtr(format.ConvertedTypeEnum),
			ToPrimitive: bytesToPrimitive, FromPrimitive: bytesFromPrimitive,
		},
		"JSON": {
			Name: "JSON", Primitive: format.ByteArray, Converted: convertedTypePtr(format.ConvertedTypeJSON),
			ToPrimitive: bytesToPrimitive, FromPrimitive: bytesFromPrimitive,
		},
		"BSON": {
			Name: "BSON", Primitive: format.ByteArray, Converted: convertedTypePtr(format.ConvertedTypeBSON),
			ToPrimitive: bytesToPrimitive, FromPrimitive: bytesFromPrimitive,
		},
		"DATE": {
			Name: "DATE", Primitive: format.Int32, Converted: convertedTypePtr(format.ConvertedTypeDate),
			ToPrimitive: func(v Value, scale, length int32) (any, error) {
				return int32(v.Int() / 86400000), nil
			},
			FromPrimitive: func(p any, scale, length int32) (Value, error) {
				days, err := asInt32(p)
				if err != nil {
					return Value{}, err
				}
				return Int(int64(days) * 86400000), nil
			},
		},
		"TIME_MILLIS": {
			Name: "TIME_MILLIS", Primitive: format.Int32, Converted: convertedTypePtr(format.ConvertedTypeTimeMillis),
			ToPrimitive: func(v Value, scale, length int32) (any, error) { return int32(v.Int()), nil },
			FromPrimitive: func(p any, scale, length int32) (Value, error) {
				ms, err := asInt32(p)
				if err != nil {
					return Value{}, err
				}
				return Int(int64(ms)), nil
			},
		},
		"TIME_MICROS": {
			Name: "TIME_MICROS", Primitive: format.Int64, Converted: convertedTypePtr(format.ConvertedTypeTimeMicros),
			ToPrimitive: func(v Value, scale, length int32) (any, error) { return v.Int(), nil },
			FromPrimitive: func(p any, scale, length int32) (Value, error) {
				us, err := asInt64(p)
				if err != nil {
					return Value{}, err
				}
				return Int(us), nil
			},
		},
		"TIMESTAMP_MILLIS": {
			Name: "TIMESTAMP_MILLIS", Primitive: format.Int64, Converted: convertedTypePtr(format.ConvertedTypeTimestampMillis),
			ToPrimitive: func(v Value, scale, length int32) (any, error) { return v.Int(), nil },
			FromPrimitive: func(p any, scale, length int32) (Value, error) {
				ms, err := asInt64(p)
				if err != nil {
					return Value{}, err
				}
				return Int(ms), nil
			},
		},
		"TIMESTAMP_MICROS": {
			Name: "TIMESTAMP_MICROS", Primitive: format.Int64, Converted: convertedTypePtr(format.ConvertedTypeTimestampMicros),
			ToPrimitive: func(v Value, scale, length int32) (any, error) { return v.Int(), nil },
			FromPrimitive: func(p any, scale, length int32) (Value, error) {
				us, err := asInt64(p)
				if err != nil {
					return Value{}, err
				}
				return Int(us), nil
			},
		},
		"INTERVAL": {
			Name: "INTERVAL", Primitive: format.FixedLenByteArray, Converted: convertedTypePtr(format.ConvertedTypeInterval),
			ToPrimitive: func(v Value, scale, length int32) (any, error) {
				b := v.BytesValue()
				if len(b) != 12 {
					return nil, fmt.Errorf("%w: INTERVAL requires 12 bytes, got %d", ErrInvalidValue, len(b))
				}
				return b, nil
			},
			FromPrimitive: func(p any, scale, length int32) (Value, error) {
				b, ok := p.([]byte)
				if !ok {
					return Value{}, fmt.Errorf("%w: INTERVAL expects []byte", ErrInvalidValue)
				}
				return Bytes(b), nil
			},
		},
	}

	for _, bits := range []int{8, 16, 32, 64} {
		bits := bits
		namedLogicalTypes[fmt.Sprintf("UINT_%d", bits)] = uintLogicalType(bits)
		namedLogicalTypes[fmt.Sprintf("INT_%d", bits)] = intLogicalType(bits)
	}

	convertedToLogicalType = make(map[format.ConvertedType]*LogicalType, len(namedLogicalTypes))
	for _, lt := range namedLogicalTypes {
		if lt.Converted != nil {
			convertedToLogicalType[*lt.Converted] = lt
		}
	}
}

var convertedToLogicalType map[format.ConvertedType]*LogicalType

// logicalTypeFromWire is the inverse of resolveLogicalType: it rebuilds a
// LogicalType from the ConvertedType enum a SchemaElement carries on disk,
// rather than from the FieldDef's type name string used at Build time.
func logicalTypeFromWire(converted *format.ConvertedType, primitive format.Type) (*LogicalType, error) {
	if converted == nil {
		return resolveLogicalType("", primitive)
	}
	if *converted == format.ConvertedTypeDecimal {
		return resolveLogicalType("DECIMAL", primitive)
	}
	if lt, ok := convertedToLogicalType[*converted]; ok {
		return lt, nil
	}
	return nil, fmt.Errorf("%w: converted type %v", ErrUnknownType, *converted)
}

func uintLogicalType(bits int) *LogicalType {
	primitive, converted := carrierForIntWidth(bits, false)
	max := uint64(1)<<uint(bits) - 1
	return &LogicalType{
		Name: fmt.Sprintf("UINT_%d", bits), Primitive: primitive, Converted: convertedTypePtr(converted),
		ToPrimitive: func(v Value, scale, length int32) (any, error) {
			n := v.Int()
			if n < 0 || uint64(n) > max {
				return nil, fmt.Errorf("%w: UINT_%d out of range: %d", ErrInvalidValue, bits, n)
			}
			if primitive == format.Int32 {
				return int32(n), nil
			}
			return n, nil
		},
		FromPrimitive: func(p any, scale, length int32) (Value, error) {
			n, err := asInt64(p)
			if err != nil {
				return Value{}, err
			}
			return Int(n), nil
		},
	}
}

func intLogicalType(bits int) *LogicalType {
	primitive, converted := carrierForIntWidth(bits, true)
	min := -(int64(1) << uint(bits-1))
	max := int64(1)<<uint(bits-1) - 1
	return &LogicalType{
		Name: fmt.Sprintf("INT_%d", bits), Primitive: primitive, Converted: convertedTypePtr(converted),
		ToPrimitive: func(v Value, scale, length int32) (any, error) {
			n := v.Int()
			if n < min || n > max {
				return nil, fmt.Errorf("%w: INT_%d out of range: %d", ErrInvalidValue, bits, n)
			}
			if primitive == format.Int32 {
				return int32(n), nil
			}
			return n, nil
		},
		FromPrimitive: func(p any, scale, length int32) (Value, error) {
			n, err := asInt64(p)
			if err != nil {
				return Value{}, err
			}
			return Int(n), nil
		},
	}
}

func carrierForIntWidth(bits int, signed bool) (format.Type, format.ConvertedType) {
	switch bits {
	case 8:
		if signed {
			return format.Int32, format.ConvertedTypeInt8
		}
		return format.Int32, format.ConvertedTypeUint8
	case 16:
		if signed {
			return format.Int32, format.ConvertedTypeInt16
		}
		return format.Int32, format.ConvertedTypeUint16
	case 32:
		if signed {
			return format.Int32, format.ConvertedTypeInt32
		}
		return format.Int32, format.ConvertedTypeUint32
	default:
		if signed {
			return format.Int64, format.ConvertedTypeInt64
		}
		return format.Int64, format.ConvertedTypeUint64
	}
}

// DECIMAL carriers: multiply by 10^scale, round toward zero, store as the
// carrier primitive (big-endian for fixed/byte-array carriers).
var (
	decimal32LogicalType = &LogicalType{
		Name: "DECIMAL", Primitive: format.Int32, Converted: convertedTypePtr(format.ConvertedTypeDecimal),
		ToPrimitive: func(v Value, scale, length int32) (any, error) {
			return int32(scaleToInt64(v.Float(), scale)), nil
		},
		FromPrimitive: func(p any, scale, length int32) (Value, error) {
			n, err := asInt64(p)
			if err != nil {
				return Value{}, err
			}
			return Float(unscaleInt64(n, scale)), nil
		},
	}
	decimal64LogicalType = &LogicalType{
		Name: "DECIMAL", Primitive: format.Int64, Converted: convertedTypePtr(format.ConvertedTypeDecimal),
		ToPrimitive: func(v Value, scale, length int32) (any, error) {
			return scaleToInt64(v.Float(), scale), nil
		},
		FromPrimitive: func(p any, scale, length int32) (Value, error) {
			n, err := asInt64(p)
			if err != nil {
				return Value{}, err
			}
			return Float(unscaleInt64(n, scale)), nil
		},
	}
	decimalFixedLogicalType = &LogicalType{
		Name: "DECIMAL", Primitive: format.FixedLenByteArray, Converted: convertedTypePtr(format.ConvertedTypeDecimal),
		ToPrimitive: func(v Value, scale, length int32) (any, error) {
			return bigEndianFromInt64(scaleToInt64(v.Float(), scale), int(length)), nil
		},
		FromPrimitive: func(p any, scale, length int32) (Value, error) {
			b, ok := p.([]byte)
			if !ok {
				return Value{}, fmt.Errorf("%w: DECIMAL_FIXED expects []byte", ErrInvalidValue)
			}
			return Float(unscaleInt64(int64FromBigEndian(b), scale)), nil
		},
	}
	decimalBinaryLogicalType = &LogicalType{
		Name: "DECIMAL", Primitive: format.ByteArray, Converted: convertedTypePtr(format.ConvertedTypeDecimal),
		ToPrimitive: func(v Value, scale, length int32) (any, error) {
			n := scaleToInt64(v.Float(), scale)
			return bigEndianFromInt64(n, minimalBigEndianLen(n)), nil
		},
		FromPrimitive: func(p any, scale, length int32) (Value, error) {
			b, ok := p.([]byte)
			if !ok {
				return Value{}, fmt.Errorf("%w: DECIMAL_BINARY expects []byte", ErrInvalidValue)
			}
			return Float(unscaleInt64(int64FromBigEndian(b), scale)), nil
		},
	}
)

func scaleToInt64(v float64, scale int32) int64 {
	scaled := v * math.Pow10(int(scale))
	if scaled < 0 {
		return int64(math.Ceil(scaled))
	}
	return int64(math.Floor(scaled))
}

func unscaleInt64(n int64, scale int32) float64 {
	return float64(n) / math.Pow10(int(scale))
}

func bigEndianFromInt64(v int64, length int) []byte {
	if length <= 0 {
		length = 8
	}
	fill := byte(0)
	if v < 0 {
		fill = 0xFF
	}
	b := make([]byte, length)
	for i := range b {
		b[i] = fill
	}
	for i := 0; i < 8 && i < length; i++ {
		b[length-1-i] = byte(v >> uint(8*i))
	}
	return b
}

func minimalBigEndianLen(v int64) int {
	for _, n := range []int{1, 2, 4, 8} {
		min := -(int64(1) << uint(n*8-1))
		max := int64(1)<<uint(n*8-1) - 1
		if v >= min && v <= max {
			return n
		}
	}
	return 8
}

func int64FromBigEndian(b []byte) int64 {
	if len(b) == 0 {
		return 0
	}
	var n int64
	if b[0]&0x80 != 0 {
		n = -1
	}
	for _, c := range b {
		n = (n << 8) | int64(c)
	}
	return n
}

func asInt32(p any) (int32, error) {
	switch n := p.(type) {
	case int32:
		return n, nil
	case int64:
		return int32(n), nil
	default:
		return 0, fmt.Errorf("%w: expected int32, got %T", ErrInvalidValue, p)
	}
}

func asInt64(p any) (int64, error) {
	switch n := p.(type) {
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	default:
		return 0, fmt.Errorf("%w: expected int64, got %T", ErrInvalidValue, p)
	}
}

func boolToPrimitive(v Value, scale, length int32) (any, error)  { return v.BoolValue(), nil }
func boolFromPrimitive(p any, scale, length int32) (Value, error) {
	b, ok := p.(bool)
	if !ok {
		return Value{}, fmt.Errorf("%w: expected bool, got %T", ErrInvalidValue, p)
	}
	return Bool(b), nil
}

func int32ToPrimitive(v Value, scale, length int32) (any, error) { return int32(v.Int()), nil }
func int32FromPrimitive(p any, scale, length int32) (Value, error) {
	n, err := asInt32(p)
	if err != nil {
		return Value{}, err
	}
	return Int(int64(n)), nil
}

func int64ToPrimitive(v Value, scale, length int32) (any, error) { return v.Int(), nil }
func int64FromPrimitive(p any, scale, length int32) (Value, error) {
	n, err := asInt64(p)
	if err != nil {
		return Value{}, err
	}
	return Int(n), nil
}

func floatToPrimitive(v Value, scale, length int32) (any, error) { return float32(v.Float()), nil }
func floatFromPrimitive(p any, scale, length int32) (Value, error) {
	f, ok := p.(float32)
	if !ok {
		return Value{}, fmt.Errorf("%w: expected float32, got %T", ErrInvalidValue, p)
	}
	return Float(float64(f)), nil
}

func doubleToPrimitive(v Value, scale, length int32) (any, error) { return v.Float(), nil }
func doubleFromPrimitive(p any, scale, length int32) (Value, error) {
	f, ok := p.(float64)
	if !ok {
		return Value{}, fmt.Errorf("%w: expected float64, got %T", ErrInvalidValue, p)
	}
	return Float(f), nil
}

func bytesToPrimitive(v Value, scale, length int32) (any, error) { return v.BytesValue(), nil }
func fixedBytesToPrimitive(v Value, scale, length int32) (any, error) {
	b := v.BytesValue()
	if length > 0 && len(b) != int(length) {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidValue, length, len(b))
	}
	return b, nil
}
func bytesFromPrimitive(p any, scale, length int32) (Value, error) {
	b, ok := p.([]byte)
	if !ok {
		return Value{}, fmt.Errorf("%w: expected []byte, got %T", ErrInvalidValue, p)
	}
	return Bytes(b), nil
}

// Int96 logical conversions delegate to the deprecated package's 53-bit-safe
// int64 path; see deprecated/int96.go for the documented limitation.
func int96ToPrimitive(v Value, scale, length int32) (any, error) {
	return deprecated.Int96FromInt64(v.Int()), nil
}

func int96FromPrimitive(p any, scale, length int32) (Value, error) {
	i, ok := p.(deprecated.Int96)
	if !ok {
		return Value{}, fmt.Errorf("%w: expected INT96, got %T", ErrInvalidValue, p)
	}
	return Int(i.Int64()), nil
}
