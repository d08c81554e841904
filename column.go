package parquet

import (
	"strings"

	"github.com/kodeshop/parquet/format"
)

// Column is a leaf field of a Schema, with its path, stable key, and the
// repetition/definition level maxima the shredder and materializer need.
type Column struct {
	Path           []string
	Key            string
	Node           Node
	RepetitionType format.FieldRepetitionType
	RLevelMax      int32
	DLevelMax      int32
}

func (c *Column) Type() *LogicalType                  { return c.Node.Type() }
func (c *Column) Encoding() format.Encoding            { return c.Node.Encoding() }
func (c *Column) Compression() format.CompressionCodec { return c.Node.Compression() }
func (c *Column) TypeLength() int32                    { return c.Node.TypeLength() }
func (c *Column) Scale() int32                         { return c.Node.Scale() }
func (c *Column) Precision() int32                     { return c.Node.Precision() }

func appendColumns(s *Schema, node Node, path []string, rLevelMax, dLevelMax int32) error {
	if node.Leaf() {
		col := &Column{
			Path:           append([]string(nil), path...),
			Node:           node,
			RepetitionType: repetitionTypeOf(node),
			RLevelMax:      rLevelMax,
			DLevelMax:      dLevelMax,
		}
		col.Key = strings.Join(col.Path, ",")
		s.columns = append(s.columns, col)
		s.byKey[col.Key] = col
		return nil
	}

	base := path[:len(path):len(path)]
	for _, name := range node.ChildNames() {
		child := node.ChildByName(name)
		childR, childD := rLevelMax, dLevelMax
		switch {
		case child.Repeated():
			childR++
			childD++
		case child.Optional():
			childD++
		}
		if err := appendColumns(s, child, append(base, name), childR, childD); err != nil {
			return err
		}
	}
	return nil
}
