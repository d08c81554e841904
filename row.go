package parquet

// Kind identifies which alternative of the tagged Value tree a Value holds.
//
// Records arrive as heterogeneous, dynamically shaped trees (a JSON-like
// document, not a fixed Go struct layout), so the shredder works against
// this small sum type rather than reflection over caller-defined types.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindList
	KindMap
	KindRecord
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// MapEntry is one key/value pair of a Value of kind KindMap.
type MapEntry struct {
	Key   Value
	Value Value
}

// Value is a node of the dynamic record tree that the shredder walks. It is
// immutable; every constructor returns a new value rather than mutating one
// in place (see shred.go's treatment of LIST/MAP sugar).
type Value struct {
	kind   Kind
	bool_  bool
	int_   int64
	float_ float64
	bytes_ []byte
	list_  []Value
	map_   []MapEntry
	record_ map[string]Value
}

// Null returns the absent value. Absence at a leaf is what the shredder
// encodes as a definition level below the leaf's maximum.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean leaf value.
func Bool(v bool) Value { return Value{kind: KindBool, bool_: v} }

// Int wraps an integer leaf value, used for every integer-backed logical
// type (INT32, INT64, DATE, TIME_MILLIS, TIMESTAMP_MICROS, UINT_*, ...).
func Int(v int64) Value { return Value{kind: KindInt, int_: v} }

// Float wraps a floating-point leaf value, used for FLOAT, DOUBLE, and the
// decimal logical types (represented as a scaled float64).
func Float(v float64) Value { return Value{kind: KindFloat, float_: v} }

// Bytes wraps a byte-string leaf value, used for BYTE_ARRAY,
// FIXED_LEN_BYTE_ARRAY, and the text/binary logical types (UTF8, ENUM,
// JSON, BSON, INTERVAL). DECIMAL values use Float whatever their carrier.
func Bytes(v []byte) Value { return Value{kind: KindBytes, bytes_: v} }

// String is sugar for Bytes([]byte(s)).
func String(s string) Value { return Bytes([]byte(s)) }

// List wraps a repeated field's element sequence.
func List(elems []Value) Value { return Value{kind: KindList, list_: elems} }

// Map wraps a MAP field's key/value sequence.
func Map(entries []MapEntry) Value { return Value{kind: KindMap, map_: entries} }

// Record wraps a group's named children.
func Record(fields map[string]Value) Value { return Value{kind: KindRecord, record_: fields} }

func (v Value) Kind() Kind  { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) BoolValue() bool    { return v.bool_ }
func (v Value) Int() int64         { return v.int_ }
func (v Value) Float() float64     { return v.float_ }
func (v Value) BytesValue() []byte { return v.bytes_ }
func (v Value) ListValue() []Value { return v.list_ }
func (v Value) MapValue() []MapEntry { return v.map_ }

// Field returns the named child of a Record value, or the null value and
// false if the record has no such field.
func (v Value) Field(name string) (Value, bool) {
	if v.kind != KindRecord {
		return Value{}, false
	}
	f, ok := v.record_[name]
	return f, ok
}

// Fields returns the record's backing map. Callers must not mutate it.
func (v Value) Fields() map[string]Value { return v.record_ }
