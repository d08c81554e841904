package parquet

import "github.com/kodeshop/parquet/format"

// Node is one element of a parsed schema tree: either an internal (group)
// node with named children and no type of its own, or a leaf node carrying
// a logical type. Repetition is expressed with the Optional/Repeated/
// Required decorators below rather than a mutable field, so that wrapping
// an arbitrary node (when expanding LIST/MAP sugar) is a pure function.
type Node interface {
	Optional() bool
	Repeated() bool
	Required() bool

	// Leaf is true for nodes that carry a type and no children.
	Leaf() bool

	NumChildren() int
	ChildNames() []string
	ChildByName(name string) Node

	// The following are only meaningful on leaf nodes. On an internal
	// (group) node, Type, Encoding and Compression panic, and TypeLength,
	// Scale and Precision return 0.
	Type() *LogicalType
	Encoding() format.Encoding
	Compression() format.CompressionCodec
	TypeLength() int32
	Scale() int32
	Precision() int32
}

// Optional wraps node so that it reports OPTIONAL repetition.
func Optional(node Node) Node {
	if node.Optional() {
		return node
	}
	return &optionalNode{node}
}

type optionalNode struct{ Node }

func (n *optionalNode) Optional() bool { return true }
func (n *optionalNode) Repeated() bool { return false }
func (n *optionalNode) Required() bool { return false }

// Repeated wraps node so that it reports REPEATED repetition.
func Repeated(node Node) Node {
	if node.Repeated() {
		return node
	}
	return &repeatedNode{node}
}

type repeatedNode struct{ Node }

func (n *repeatedNode) Optional() bool { return false }
func (n *repeatedNode) Repeated() bool { return true }
func (n *repeatedNode) Required() bool { return false }

// Required wraps node so that it reports REQUIRED repetition.
func Required(node Node) Node {
	if node.Required() {
		return node
	}
	return &requiredNode{node}
}

type requiredNode struct{ Node }

func (n *requiredNode) Optional() bool { return false }
func (n *requiredNode) Repeated() bool { return false }
func (n *requiredNode) Required() bool { return true }

func repetitionTypeOf(node Node) format.FieldRepetitionType {
	switch {
	case node.Repeated():
		return format.Repeated
	case node.Optional():
		return format.Optional
	default:
		return format.Required
	}
}

// leafNode is a typed, childless schema node.
type leafNode struct {
	typ         *LogicalType
	encoding    format.Encoding
	compression format.CompressionCodec
	typeLength  int32
	scale       int32
	precision   int32
}

func (n *leafNode) Optional() bool          { return false }
func (n *leafNode) Repeated() bool          { return false }
func (n *leafNode) Required() bool          { return false }
func (n *leafNode) Leaf() bool              { return true }
func (n *leafNode) NumChildren() int        { return 0 }
func (n *leafNode) ChildNames() []string    { return nil }
func (n *leafNode) ChildByName(string) Node { panic("cannot look up a child of a leaf parquet node") }
func (n *leafNode) Type() *LogicalType                     { return n.typ }
func (n *leafNode) Encoding() format.Encoding               { return n.encoding }
func (n *leafNode) Compression() format.CompressionCodec    { return n.compression }
func (n *leafNode) TypeLength() int32                       { return n.typeLength }
func (n *leafNode) Scale() int32                            { return n.scale }
func (n *leafNode) Precision() int32                        { return n.precision }

// groupNode is an internal node with named children and no type. original
// names the LIST/MAP sugar (schema.go expandSugar) this group was expanded
// from, or "" for a plain group — it lets the shredder/materializer
// recognize the canonical three-level shape and convert it to/from the
// List/Map Value sugar at the schema boundary (shred.go).
type groupNode struct {
	names    []string
	fields   map[string]Node
	original string
}

func (n *groupNode) Optional() bool       { return false }
func (n *groupNode) Repeated() bool       { return false }
func (n *groupNode) Required() bool       { return false }
func (n *groupNode) Leaf() bool           { return false }
func (n *groupNode) NumChildren() int     { return len(n.names) }
func (n *groupNode) ChildNames() []string { return n.names }
func (n *groupNode) ChildByName(name string) Node {
	child, ok := n.fields[name]
	if !ok {
		panic("parquet: no such child field: " + name)
	}
	return child
}
func (n *groupNode) Type() *LogicalType                  { panic("cannot call Type on a group parquet node") }
func (n *groupNode) Encoding() format.Encoding            { panic("cannot call Encoding on a group parquet node") }
func (n *groupNode) Compression() format.CompressionCodec { panic("cannot call Compression on a group parquet node") }
func (n *groupNode) TypeLength() int32                    { return 0 }
func (n *groupNode) Scale() int32                         { return 0 }
func (n *groupNode) Precision() int32                     { return 0 }

func isLeaf(node Node) bool { return node.Leaf() }
