package parquet

import (
	"fmt"
	"io"

	"github.com/kodeshop/parquet/format"
)

// Print writes a debug representation of the schema's DSL shape (the
// `message name { ... }` form FieldDef trees are the dynamic analogue of)
// to w, one field per line, tab-indented by nesting depth.
func (s *Schema) Print(w io.Writer) error {
	pw := &printWriter{w: w}
	pw.writeString("message ")
	if s.name != "" {
		pw.writeString(s.name)
		pw.writeString(" ")
	}
	pw.writeString("{")
	if s.root.NumChildren() > 0 {
		pw.writeString("\n")
		printChildren(pw, s.root, 1)
	}
	pw.writeString("}\n")
	return pw.err
}

func printChildren(pw *printWriter, node Node, depth int) {
	for _, name := range node.ChildNames() {
		child := node.ChildByName(name)
		writeIndent(pw, depth)
		printField(pw, name, child, depth)
	}
}

func printField(pw *printWriter, name string, node Node, depth int) {
	switch {
	case node.Optional():
		pw.writeString("optional ")
	case node.Repeated():
		pw.writeString("repeated ")
	default:
		pw.writeString("required ")
	}

	if node.Leaf() {
		pw.writeString(primitiveName(node.Type().Primitive))
		pw.writeString(" ")
		pw.writeString(name)
		if annotation := node.Type().Name; annotation != "" {
			pw.writeString(" (")
			pw.writeString(annotation)
			pw.writeString(")")
		}
		pw.writeString(";\n")
		return
	}

	pw.writeString("group ")
	pw.writeString(name)
	pw.writeString(" {\n")
	printChildren(pw, node, depth+1)
	writeIndent(pw, depth)
	pw.writeString("}\n")
}

func writeIndent(pw *printWriter, depth int) {
	for i := 0; i < depth; i++ {
		pw.writeString("\t")
	}
}

func primitiveName(t format.Type) string {
	switch t {
	case format.Boolean:
		return "boolean"
	case format.Int32:
		return "int32"
	case format.Int64:
		return "int64"
	case format.Int96:
		return "int96"
	case format.Float:
		return "float"
	case format.Double:
		return "double"
	case format.ByteArray:
		return "binary"
	case format.FixedLenByteArray:
		return "fixed_len_byte_array"
	default:
		return "<?>"
	}
}

// printWriter accumulates the first write error so callers of Print don't
// need to check every intermediate write.
type printWriter struct {
	w   io.Writer
	err error
}

func (pw *printWriter) writeString(s string) {
	if pw.err != nil {
		return
	}
	if _, err := fmt.Fprint(pw.w, s); err != nil {
		pw.err = err
	}
}
