package parquet

import (
	"fmt"
	"strings"

	"github.com/kodeshop/parquet/format"
)

// FieldDef is the dynamic schema definition tree accepted by Build. It is
// the Go-native analogue of the nested object literal the original module
// took as a schema definition: a field either carries a `Type` (making it a
// leaf) or a `Fields` map (making it a group), never both.
type FieldDef struct {
	Type        string
	TypeLength  int32
	Encoding    string
	Compression string
	Optional    bool
	Repeated    bool
	Precision   int32
	Scale       int32
	Fields      map[string]*FieldDef
	List        *ListDef
	Map         *MapDef

	// sugarKind records which sugar expandSugar produced this FieldDef
	// from ("LIST" or "MAP"), so buildNode can tag the resulting groupNode
	// for shred.go's sugar/canonical conversion. Never set by callers.
	sugarKind string
}

// ListDef is LIST sugar: it expands to the canonical three-level LIST shape
// at Build time.
type ListDef struct {
	Element     *FieldDef
	ElementName string // defaults to "element"
}

// MapDef is MAP sugar: it expands to the canonical MAP_KEY_VALUE shape at
// Build time.
type MapDef struct {
	Key   *FieldDef
	Value *FieldDef
}

// Schema is the immutable, flattened view of a parsed FieldDef tree.
type Schema struct {
	name    string
	root    Node
	columns []*Column
	byKey   map[string]*Column
}

func (s *Schema) Name() string         { return s.name }
func (s *Schema) Root() Node           { return s.root }
func (s *Schema) Columns() []*Column   { return s.columns }
func (s *Schema) NumColumns() int      { return len(s.columns) }

// FindField returns the leaf or internal node reachable by path, and
// whether it exists. path may be passed as a single comma-joined string or
// as individual path segments.
func (s *Schema) FindField(path ...string) (Node, bool) {
	path = splitCommaSegments(path)
	node := s.root
	for _, name := range path {
		child, ok := childByName(node, name)
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// FindFieldBranch returns the full ancestor chain (root's children down to
// and including the named node), inclusive, or false if no such path exists.
func (s *Schema) FindFieldBranch(path ...string) ([]Node, bool) {
	path = splitCommaSegments(path)
	branch := make([]Node, 0, len(path))
	node := s.root
	for _, name := range path {
		child, ok := childByName(node, name)
		if !ok {
			return nil, false
		}
		branch = append(branch, child)
		node = child
	}
	return branch, true
}

func childByName(node Node, name string) (child Node, ok bool) {
	if node.Leaf() {
		return nil, false
	}
	for _, n := range node.ChildNames() {
		if n == name {
			return node.ChildByName(name), true
		}
	}
	return nil, false
}

func splitCommaSegments(path []string) []string {
	if len(path) == 1 && strings.Contains(path[0], ",") {
		return strings.Split(path[0], ",")
	}
	return path
}

// Column returns the leaf column with the given key (its path joined by
// commas), or nil if no such column exists.
func (s *Schema) Column(key string) *Column {
	return s.byKey[key]
}

// Build parses a FieldDef tree into a Schema, expanding LIST/MAP sugar,
// computing each leaf's path/key/rLevelMax/dLevelMax, and validating the
// invariants from spec.md §3 (unique paths, no leaf with children, no
// internal node with a type).
func Build(name string, def *FieldDef) (*Schema, error) {
	root, err := buildNode(def)
	if err != nil {
		return nil, err
	}
	s := &Schema{name: name, root: root, byKey: map[string]*Column{}}
	if err := appendColumns(s, root, nil, 0, 0); err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, c := range s.columns {
		if seen[c.Key] {
			return nil, fmt.Errorf("%w: duplicate column path %q", ErrInvalidPrecision, c.Key)
		}
		seen[c.Key] = true
	}
	return s, nil
}

func buildNode(def *FieldDef) (Node, error) {
	def = expandSugar(def)

	var node Node
	if def.Fields != nil {
		names := make([]string, 0, len(def.Fields))
		fields := make(map[string]Node, len(def.Fields))
		for childName := range def.Fields {
			names = append(names, childName)
		}
		sortStrings(names)
		for _, childName := range names {
			child, err := buildNode(def.Fields[childName])
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", childName, err)
			}
			fields[childName] = child
		}
		node = &groupNode{names: names, fields: fields, original: def.sugarKind}
	} else {
		leaf, err := buildLeaf(def)
		if err != nil {
			return nil, err
		}
		node = leaf
	}

	if def.Repeated {
		node = Repeated(node)
	} else if def.Optional {
		node = Optional(node)
	} else {
		node = Required(node)
	}
	return node, nil
}

func buildLeaf(def *FieldDef) (Node, error) {
	primitive, original, err := resolveFieldTypeName(def.Type, def)
	if err != nil {
		return nil, err
	}

	logical, err := resolveLogicalType(original, primitive)
	if err != nil {
		return nil, err
	}

	if primitive == format.FixedLenByteArray && def.TypeLength <= 0 {
		return nil, fmt.Errorf("%w: FIXED_LEN_BYTE_ARRAY field requires typeLength", ErrMissingTypeLength)
	}

	encoding, err := parseEncoding(def.Encoding)
	if err != nil {
		return nil, err
	}
	compression, err := parseCompression(def.Compression)
	if err != nil {
		return nil, err
	}

	return &leafNode{
		typ:         logical,
		encoding:    encoding,
		compression: compression,
		typeLength:  def.TypeLength,
		scale:       def.Scale,
		precision:   def.Precision,
	}, nil
}

// expandSugar rewrites LIST/MAP field definitions into the canonical
// Parquet group shape, returning a fresh FieldDef (the caller's definition
// is never mutated).
func expandSugar(def *FieldDef) *FieldDef {
	switch {
	case def.List != nil:
		elementName := def.List.ElementName
		if elementName == "" {
			elementName = "element"
		}
		return &FieldDef{
			Optional:  def.Optional,
			Repeated:  def.Repeated,
			sugarKind: "LIST",
			Fields: map[string]*FieldDef{
				"list": {
					Repeated: true,
					Fields: map[string]*FieldDef{
						elementName: def.List.Element,
					},
				},
			},
		}
	case def.Map != nil:
		return &FieldDef{
			Optional:  def.Optional,
			Repeated:  def.Repeated,
			sugarKind: "MAP",
			Fields: map[string]*FieldDef{
				"key_value": {
					Repeated: true,
					Fields: map[string]*FieldDef{
						"key":   def.Map.Key,
						"value": def.Map.Value,
					},
				},
			},
		}
	default:
		return def
	}
}

func resolveFieldTypeName(name string, def *FieldDef) (format.Type, string, error) {
	if name == "DECIMAL" {
		return decimalCarrier(def), "DECIMAL", nil
	}
	t, ok := primitiveTypeNames[name]
	if !ok {
		return 0, "", fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t.primitive, t.original, nil
}

func decimalCarrier(def *FieldDef) format.Type {
	switch {
	case def.TypeLength > 0:
		return format.FixedLenByteArray
	case def.Precision <= 9:
		return format.Int32
	case def.Precision <= 18:
		return format.Int64
	default:
		return format.ByteArray
	}
}

type fieldTypeName struct {
	primitive format.Type
	original  string
}

var primitiveTypeNames = map[string]fieldTypeName{
	"BOOLEAN":              {format.Boolean, ""},
	"INT32":                {format.Int32, ""},
	"INT64":                {format.Int64, ""},
	"INT96":                {format.Int96, ""},
	"FLOAT":                {format.Float, ""},
	"DOUBLE":               {format.Double, ""},
	"BYTE_ARRAY":           {format.ByteArray, ""},
	"FIXED_LEN_BYTE_ARRAY": {format.FixedLenByteArray, ""},
	"UTF8":                 {format.ByteArray, "UTF8"},
	"ENUM":                 {format.ByteArray, "ENUM"},
	"JSON":                 {format.ByteArray, "JSON"},
	"BSON":                 {format.ByteArray, "BSON"},
	"DATE":                 {format.Int32, "DATE"},
	"TIME_MILLIS":          {format.Int32, "TIME_MILLIS"},
	"TIME_MICROS":          {format.Int64, "TIME_MICROS"},
	"TIMESTAMP_MILLIS":     {format.Int64, "TIMESTAMP_MILLIS"},
	"TIMESTAMP_MICROS":     {format.Int64, "TIMESTAMP_MICROS"},
	"INTERVAL":             {format.FixedLenByteArray, "INTERVAL"},
	"UINT_8":               {format.Int32, "UINT_8"},
	"UINT_16":              {format.Int32, "UINT_16"},
	"UINT_32":              {format.Int32, "UINT_32"},
	"UINT_64":              {format.Int64, "UINT_64"},
	"INT_8":                {format.Int32, "INT_8"},
	"INT_16":               {format.Int32, "INT_16"},
	"INT_32":               {format.Int32, "INT_32"},
	"INT_64":               {format.Int64, "INT_64"},
}

func parseEncoding(name string) (format.Encoding, error) {
	switch name {
	case "", "PLAIN":
		return format.Plain, nil
	case "RLE":
		return format.RLE, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
	}
}

func parseCompression(name string) (format.CompressionCodec, error) {
	switch name {
	case "", "UNCOMPRESSED":
		return format.Uncompressed, nil
	case "GZIP":
		return format.Gzip, nil
	case "SNAPPY":
		return format.Snappy, nil
	case "LZO":
		return format.Lzo, nil
	case "BROTLI":
		return format.Brotli, nil
	case "LZ4":
		return format.Lz4Raw, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedCompression, name)
	}
}

// toSchemaElements flattens the schema into the depth-first preorder list
// the file footer carries, with the synthetic "root" element first (see
// spec.md §6).
func (s *Schema) toSchemaElements() []format.SchemaElement {
	n := int32(s.root.NumChildren())
	elems := []format.SchemaElement{{Name: "root", NumChildren: &n}}
	appendSchemaElements(&elems, s.root)
	return elems
}

func appendSchemaElements(elems *[]format.SchemaElement, node Node) {
	for _, name := range node.ChildNames() {
		child := node.ChildByName(name)
		rt := repetitionTypeOf(child)
		if child.Leaf() {
			lt := child.Type()
			prim := lt.Primitive
			elem := format.SchemaElement{
				Type:           &prim,
				RepetitionType: &rt,
				Name:           name,
				ConvertedType:  lt.Converted,
			}
			if tl := child.TypeLength(); tl > 0 {
				elem.TypeLength = &tl
			}
			if lt.Converted != nil && *lt.Converted == format.ConvertedTypeDecimal {
				scale, precision := child.Scale(), child.Precision()
				elem.Scale = &scale
				elem.Precision = &precision
			}
			*elems = append(*elems, elem)
			continue
		}
		numChildren := int32(child.NumChildren())
		elem := format.SchemaElement{
			RepetitionType: &rt,
			Name:           name,
			NumChildren:    &numChildren,
		}
		if g, ok := unwrapOnce(child).(*groupNode); ok {
			switch g.original {
			case "LIST":
				ct := format.ConvertedTypeList
				elem.ConvertedType = &ct
			case "MAP":
				ct := format.ConvertedTypeMap
				elem.ConvertedType = &ct
			}
		}
		*elems = append(*elems, elem)
		appendSchemaElements(elems, child)
	}
}

// schemaFromElements rebuilds a Schema from the depth-first preorder list
// read from a file footer, dropping the synthetic root element.
func schemaFromElements(name string, elements []format.SchemaElement) (*Schema, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: empty schema element list", ErrBadVersion)
	}
	pos := 1
	root := elements[0]
	n := 0
	if root.NumChildren != nil {
		n = int(*root.NumChildren)
	}
	names := make([]string, 0, n)
	fields := make(map[string]Node, n)
	for i := 0; i < n; i++ {
		childName, child, err := buildTreeFromElements(elements, &pos)
		if err != nil {
			return nil, err
		}
		names = append(names, childName)
		fields[childName] = child
	}
	rootNode := Node(&groupNode{names: names, fields: fields})
	s := &Schema{name: name, root: rootNode, byKey: map[string]*Column{}}
	if err := appendColumns(s, rootNode, nil, 0, 0); err != nil {
		return nil, err
	}
	return s, nil
}

func buildTreeFromElements(elements []format.SchemaElement, pos *int) (string, Node, error) {
	if *pos >= len(elements) {
		return "", nil, fmt.Errorf("%w: truncated schema element list", ErrBadVersion)
	}
	elem := elements[*pos]
	*pos++

	if elem.NumChildren != nil {
		n := int(*elem.NumChildren)
		names := make([]string, 0, n)
		fields := make(map[string]Node, n)
		for i := 0; i < n; i++ {
			childName, child, err := buildTreeFromElements(elements, pos)
			if err != nil {
				return "", nil, err
			}
			names = append(names, childName)
			fields[childName] = child
		}
		original := ""
		if elem.ConvertedType != nil {
			switch *elem.ConvertedType {
			case format.ConvertedTypeList:
				original = "LIST"
			case format.ConvertedTypeMap:
				original = "MAP"
			}
		}
		node := applyWireRepetition(&groupNode{names: names, fields: fields, original: original}, elem.RepetitionType)
		return elem.Name, node, nil
	}

	if elem.Type == nil {
		return "", nil, fmt.Errorf("%w: schema element %q has neither type nor children", ErrBadVersion, elem.Name)
	}
	logical, err := logicalTypeFromWire(elem.ConvertedType, *elem.Type)
	if err != nil {
		return "", nil, err
	}
	leaf := &leafNode{typ: logical, encoding: format.Plain, compression: format.Uncompressed}
	if elem.TypeLength != nil {
		leaf.typeLength = *elem.TypeLength
	}
	if elem.Scale != nil {
		leaf.scale = *elem.Scale
	}
	if elem.Precision != nil {
		leaf.precision = *elem.Precision
	}
	return elem.Name, applyWireRepetition(leaf, elem.RepetitionType), nil
}

func applyWireRepetition(node Node, rt *format.FieldRepetitionType) Node {
	if rt == nil {
		return Required(node)
	}
	switch *rt {
	case format.Optional:
		return Optional(node)
	case format.Repeated:
		return Repeated(node)
	default:
		return Required(node)
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
