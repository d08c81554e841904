package parquet

import (
	"fmt"
	"strings"
)

// ColumnValues accumulates one leaf column's shredded (repetition level,
// definition level, value) triples. Values holds only the entries where the
// corresponding DLevels entry equals the column's DLevelMax — the leaf
// actually produced a value rather than the chain terminating at an absent
// optional/repeated ancestor — so len(Values) <= len(RLevels) == len(DLevels).
type ColumnValues struct {
	RLevels []int32
	DLevels []int32
	Values  []Value
}

// unwrapOnce strips the single Optional/Repeated/Required decorator every
// node built by buildNode (schema.go) or applyWireRepetition (schema.go) is
// wrapped in exactly once, returning the concrete leaf or group node.
func unwrapOnce(node Node) Node {
	switch n := node.(type) {
	case *optionalNode:
		return n.Node
	case *repeatedNode:
		return n.Node
	case *requiredNode:
		return n.Node
	default:
		return node
	}
}

// Shred walks rec against s's schema tree, producing the flat per-leaf
// repetition/definition level streams the Dremel algorithm uses to encode
// arbitrarily nested, optional, and repeated structure as flat columns. See
// spec.md §4.3 and the worked example in §8 scenario 1.
func Shred(s *Schema, rec Value) (map[string]*ColumnValues, error) {
	cols := make(map[string]*ColumnValues, len(s.columns))
	for _, c := range s.columns {
		cols[c.Key] = &ColumnValues{}
	}
	if err := shredNode(s.root, rec, 0, 0, 0, cols, nil); err != nil {
		return nil, err
	}
	return cols, nil
}

// shredNode walks val against node, emitting (r, d) entries into cols. r and
// d are the repetition/definition levels to use if this call turns out to be
// (or contain) an absent value or a first list element; rDepth is the number
// of repeated ancestors seen so far on the path from the schema root to
// node, excluding node itself; a repeated node hands out rDepth+1 to each
// non-first element of its own list (spec.md §4.3 step 4).
func shredNode(node Node, val Value, r, d, rDepth int32, cols map[string]*ColumnValues, path []string) error {
	switch {
	case node.Repeated():
		inner := unwrapOnce(node)
		newRDepth := rDepth + 1
		var elems []Value
		if !val.IsNull() {
			if val.Kind() != KindList {
				return fmt.Errorf("%w: expected a list at %s, got %s", ErrTooManyValues, pathString(path), val.Kind())
			}
			elems = val.ListValue()
		}
		if len(elems) == 0 {
			return emitAbsent(inner, path, r, d, cols)
		}
		for i, elem := range elems {
			er := r
			if i > 0 {
				er = newRDepth
			}
			if err := shredNode(inner, elem, er, d+1, newRDepth, cols, path); err != nil {
				return err
			}
		}
		return nil

	case node.Optional():
		inner := unwrapOnce(node)
		if val.IsNull() {
			return emitAbsent(inner, path, r, d, cols)
		}
		return shredNode(inner, val, r, d+1, rDepth, cols, path)

	case node.Required():
		inner := unwrapOnce(node)
		if inner.Leaf() && val.IsNull() {
			return fmt.Errorf("%w: %s", ErrMissingRequired, pathString(path))
		}
		return shredNode(inner, val, r, d, rDepth, cols, path)
	}

	if node.Leaf() {
		if val.Kind() == KindList {
			return fmt.Errorf("%w: unexpected list at %s", ErrTooManyValues, pathString(path))
		}
		col := cols[strings.Join(path, ",")]
		col.RLevels = append(col.RLevels, r)
		col.DLevels = append(col.DLevels, d)
		col.Values = append(col.Values, val)
		return nil
	}

	if g, ok := node.(*groupNode); ok && g.original != "" {
		val = desugarListMap(g, val)
	}

	var fields map[string]Value
	isRecord := val.Kind() == KindRecord
	if isRecord {
		fields = val.Fields()
	}
	base := path[:len(path):len(path)]
	for _, name := range node.ChildNames() {
		child := node.ChildByName(name)
		childVal := Null()
		if isRecord {
			if v, ok := fields[name]; ok {
				childVal = v
			}
		}
		if err := shredNode(child, childVal, r, d, rDepth, cols, append(base, name)); err != nil {
			return err
		}
	}
	return nil
}

// desugarListMap rewrites a LIST/MAP sugar value (Value.Kind() == KindList
// or KindMap, as returned by the List/Map constructors) into the canonical
// three-level nested record shape expandSugar expanded the schema group
// into (spec.md §4.3), so the generic field-by-field shredding above can
// walk it like any other group. A value already given in canonical record
// form, or an absent value, passes through unchanged.
func desugarListMap(g *groupNode, val Value) Value {
	switch g.original {
	case "LIST":
		if val.Kind() != KindList {
			return val
		}
		listField := g.names[0]
		elementName := unwrapOnce(g.fields[listField]).ChildNames()[0]
		elems := val.ListValue()
		wrapped := make([]Value, len(elems))
		for i, e := range elems {
			wrapped[i] = Record(map[string]Value{elementName: e})
		}
		return Record(map[string]Value{listField: List(wrapped)})

	case "MAP":
		if val.Kind() != KindMap {
			return val
		}
		kvField := g.names[0]
		entries := val.MapValue()
		wrapped := make([]Value, len(entries))
		for i, e := range entries {
			wrapped[i] = Record(map[string]Value{"key": e.Key, "value": e.Value})
		}
		return Record(map[string]Value{kvField: List(wrapped)})
	}

	return val
}

// resugarListMap is the inverse of desugarListMap: it rewrites the
// canonical nested record assembleNode just built for a LIST/MAP group back
// into the List/Map Value sugar, so Materialize hands callers back the same
// shape Shred accepted rather than the three-level wire structure.
func resugarListMap(g *groupNode, rec Value) Value {
	switch g.original {
	case "LIST":
		listField := g.names[0]
		wrappedList, ok := rec.Field(listField)
		if !ok || wrappedList.Kind() != KindList {
			return List(nil)
		}
		elementName := unwrapOnce(g.fields[listField]).ChildNames()[0]
		wrapped := wrappedList.ListValue()
		elems := make([]Value, len(wrapped))
		for i, w := range wrapped {
			elems[i], _ = w.Field(elementName)
		}
		return List(elems)

	case "MAP":
		kvField := g.names[0]
		wrappedList, ok := rec.Field(kvField)
		if !ok || wrappedList.Kind() != KindList {
			return Map(nil)
		}
		wrapped := wrappedList.ListValue()
		entries := make([]MapEntry, len(wrapped))
		for i, w := range wrapped {
			key, _ := w.Field("key")
			value, _ := w.Field("value")
			entries[i] = MapEntry{Key: key, Value: value}
		}
		return Map(entries)
	}

	return rec
}

// emitAbsent records a null/absent marker for every leaf reachable under
// node, at the repetition/definition level the caller had already reached
// before deciding the branch was absent. node must already be unwrapped.
func emitAbsent(node Node, path []string, r, d int32, cols map[string]*ColumnValues) error {
	if node.Leaf() {
		col := cols[strings.Join(path, ",")]
		col.RLevels = append(col.RLevels, r)
		col.DLevels = append(col.DLevels, d)
		return nil
	}
	base := path[:len(path):len(path)]
	for _, name := range node.ChildNames() {
		child := unwrapOnce(node.ChildByName(name))
		if err := emitAbsent(child, append(base, name), r, d, cols); err != nil {
			return err
		}
	}
	return nil
}

func pathString(path []string) string { return strings.Join(path, ".") }

// leafCursor walks one column's shredded stream during materialization.
type leafCursor struct {
	dLevelMax int32
	rLevels   []int32
	dLevels   []int32
	values    []Value
	entryIdx  int
	valueIdx  int
}

func (c *leafCursor) hasNext() bool { return c.entryIdx < len(c.rLevels) }
func (c *leafCursor) peekR() int32  { return c.rLevels[c.entryIdx] }
func (c *leafCursor) peekD() int32  { return c.dLevels[c.entryIdx] }

func (c *leafCursor) consumeAbsent() { c.entryIdx++ }

func (c *leafCursor) consumeValue() Value {
	v := c.values[c.valueIdx]
	c.valueIdx++
	c.entryIdx++
	return v
}

// Materialize reconstructs the sequence of records that were shredded into
// cols, the inverse of Shred. cols must hold exactly the streams Shred (or
// an equivalent writer/reader round trip) produced for the same schema and
// the same sequence of records, concatenated in row order.
func Materialize(s *Schema, cols map[string]*ColumnValues) ([]Value, error) {
	if len(s.columns) == 0 {
		return nil, nil
	}

	cursors := make(map[string]*leafCursor, len(s.columns))
	for _, c := range s.columns {
		data := cols[c.Key]
		if data == nil {
			return nil, fmt.Errorf("%w: no data for column %q", ErrTruncated, c.Key)
		}
		cursors[c.Key] = &leafCursor{
			dLevelMax: c.DLevelMax,
			rLevels:   data.RLevels,
			dLevels:   data.DLevels,
			values:    data.Values,
		}
	}

	rowCount := 0
	for _, r := range cols[s.columns[0].Key].RLevels {
		if r == 0 {
			rowCount++
		}
	}

	records := make([]Value, rowCount)
	for i := 0; i < rowCount; i++ {
		v, _, err := assembleNode(s.root, cursors, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		records[i] = v
	}

	for key, cur := range cursors {
		if cur.hasNext() {
			return nil, fmt.Errorf("%w: column %q has leftover data after materializing %d rows", ErrTruncated, key, rowCount)
		}
	}
	return records, nil
}

func firstLeafKeyUnder(node Node, path []string) string {
	if node.Leaf() {
		return strings.Join(path, ",")
	}
	names := node.ChildNames()
	child := unwrapOnce(node.ChildByName(names[0]))
	return firstLeafKeyUnder(child, append(path[:len(path):len(path)], names[0]))
}

func consumeAbsentSubtree(node Node, path []string, cursors map[string]*leafCursor) {
	if node.Leaf() {
		cursors[strings.Join(path, ",")].consumeAbsent()
		return
	}
	base := path[:len(path):len(path)]
	for _, name := range node.ChildNames() {
		child := unwrapOnce(node.ChildByName(name))
		consumeAbsentSubtree(child, append(base, name), cursors)
	}
}

// assembleNode reconstructs the value rooted at node, and reports whether
// node was actually present in this row: an absent optional field or a
// repeated field with zero elements reports present=false, so the caller
// omits it from its own record's field map entirely, matching the
// omitted-key convention Record values use for absent fields rather than
// spelling them out as explicit Null()/empty-list entries (spec.md §8).
func assembleNode(node Node, cursors map[string]*leafCursor, path []string, rDepth, dDepth int32) (Value, bool, error) {
	switch {
	case node.Repeated():
		inner := unwrapOnce(node)
		newR, newD := rDepth+1, dDepth+1
		driverKey := firstLeafKeyUnder(inner, path)
		driver, ok := cursors[driverKey]
		if !ok || !driver.hasNext() {
			return Value{}, false, fmt.Errorf("%w: column %q exhausted while assembling a row", ErrTruncated, driverKey)
		}
		if driver.peekD() < newD {
			consumeAbsentSubtree(inner, path, cursors)
			return List(nil), false, nil
		}
		var elems []Value
		for {
			v, _, err := assembleNode(inner, cursors, path, newR, newD)
			if err != nil {
				return Value{}, false, err
			}
			elems = append(elems, v)
			if !driver.hasNext() || driver.peekR() < newR {
				break
			}
		}
		return List(elems), true, nil

	case node.Optional():
		inner := unwrapOnce(node)
		newD := dDepth + 1
		driverKey := firstLeafKeyUnder(inner, path)
		driver, ok := cursors[driverKey]
		if !ok || !driver.hasNext() {
			return Value{}, false, fmt.Errorf("%w: column %q exhausted while assembling a row", ErrTruncated, driverKey)
		}
		if driver.peekD() < newD {
			consumeAbsentSubtree(inner, path, cursors)
			return Null(), false, nil
		}
		v, _, err := assembleNode(inner, cursors, path, rDepth, newD)
		return v, true, err

	case node.Required():
		return assembleNode(unwrapOnce(node), cursors, path, rDepth, dDepth)
	}

	if node.Leaf() {
		cur := cursors[strings.Join(path, ",")]
		return cur.consumeValue(), true, nil
	}

	fields := make(map[string]Value, node.NumChildren())
	base := path[:len(path):len(path)]
	for _, name := range node.ChildNames() {
		v, present, err := assembleNode(node.ChildByName(name), cursors, append(base, name), rDepth, dDepth)
		if err != nil {
			return Value{}, false, err
		}
		if present {
			fields[name] = v
		}
	}
	rec := Record(fields)

	if g, ok := node.(*groupNode); ok && g.original != "" {
		return resugarListMap(g, rec), true, nil
	}
	return rec, true, nil
}
