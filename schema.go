package parquet

import "fmt"

// SchemaNode is one node of the rooted SchemaTree, per spec.md §4.5.
type SchemaNode struct {
	Element  SchemaElement
	Children []*SchemaNode
	Count    int // total descendant nodes including this one
	Path     []string

	MaxDefinitionLevel int
	MaxRepetitionLevel int

	// IsNullable is true iff some node on the path (excluding root) is
	// OPTIONAL. A path built entirely from REQUIRED/REPEATED nodes can
	// still have MaxDefinitionLevel > 0 (REPEATED also counts toward
	// definition level) without being nullable in the record-assembly
	// sense, per spec.md §4.9 scenario 6.
	IsNullable bool
}

// IsLeaf reports whether this node corresponds to exactly one column chunk
// per row group, per spec.md §3's SchemaTree invariant.
func (n *SchemaNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// SchemaTree is the rooted tree built from a FileMetadata's flat schema list.
type SchemaTree struct {
	Root *SchemaNode
	// Leaves are the tree's leaf nodes in depth-first (write) order, one per
	// column chunk.
	Leaves []*SchemaNode
}

// BuildSchema builds a SchemaTree from FileMetadata's flat schema list, per
// spec.md §4.5: at position i, a node consumes the next num_children nodes
// recursively.
func BuildSchema(md *FileMetadata) (*SchemaTree, error) {
	if len(md.Schema) == 0 {
		return nil, newErrf(ErrInternalInvariant, "empty schema")
	}

	pos := 0
	var build func(parentPath []string) (*SchemaNode, error)
	build = func(parentPath []string) (*SchemaNode, error) {
		if pos >= len(md.Schema) {
			return nil, newErrf(ErrInternalInvariant, "schema list exhausted while building tree")
		}
		elem := md.Schema[pos]
		pos++

		path := append(append([]string{}, parentPath...), elem.Name)
		node := &SchemaNode{Element: elem, Path: path, Count: 1}

		numChildren := 0
		if elem.NumChildren != nil {
			numChildren = int(*elem.NumChildren)
		}
		for i := 0; i < numChildren; i++ {
			child, err := build(path)
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
			node.Count += child.Count
		}
		return node, nil
	}

	root, err := build(nil)
	if err != nil {
		return nil, err
	}
	if pos != len(md.Schema) {
		return nil, newErrf(ErrInternalInvariant, "schema tree consumed %d of %d elements", pos, len(md.Schema))
	}
	if root.Element.RepetitionType != nil && *root.Element.RepetitionType != RepetitionRequired {
		return nil, newErrf(ErrInternalInvariant, "schema root must be REQUIRED")
	}

	tree := &SchemaTree{Root: root}
	computeLevels(root, 0, 0, false)
	collectLeaves(root, &tree.Leaves)
	return tree, nil
}

func computeLevels(node *SchemaNode, defLevel, repLevel int, nullable bool) {
	rt := RepetitionRequired
	if node.Element.RepetitionType != nil {
		rt = *node.Element.RepetitionType
	}
	// The root itself is never counted (spec.md §4.5: "excluding root").
	if node.Element.RepetitionType != nil {
		if rt != RepetitionRequired {
			defLevel++
		}
		if rt == RepetitionRepeated {
			repLevel++
		}
		if rt == RepetitionOptional {
			nullable = true
		}
	}
	node.MaxDefinitionLevel = defLevel
	node.MaxRepetitionLevel = repLevel
	node.IsNullable = nullable

	for _, child := range node.Children {
		computeLevels(child, defLevel, repLevel, nullable)
	}
}

func collectLeaves(node *SchemaNode, out *[]*SchemaNode) {
	if node.IsLeaf() {
		*out = append(*out, node)
		return
	}
	for _, child := range node.Children {
		collectLeaves(child, out)
	}
}

// FindLeaf returns the leaf node whose path equals pathInSchema, or nil.
func (t *SchemaTree) FindLeaf(pathInSchema []string) *SchemaNode {
	for _, leaf := range t.Leaves {
		if pathsEqual(leaf.Path, pathInSchema) {
			return leaf
		}
	}
	return nil
}

func pathsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsRequired reports whether every node on the path is REQUIRED, per
// spec.md §4.5. When true, MaxDefinitionLevel is 0 and definition levels
// are omitted from pages.
func (n *SchemaNode) IsRequired() bool {
	return n.MaxDefinitionLevel == 0
}

// bitWidthFor returns ceil(log2(maxLevel + 1)), the bit width the RLE/
// bit-packed hybrid uses to encode a level whose maximum is maxLevel.
func bitWidthFor(maxLevel int) uint {
	if maxLevel <= 0 {
		return 0
	}
	width := uint(0)
	for (1 << width) <= maxLevel {
		width++
	}
	return width
}

func (n *SchemaNode) String() string {
	return fmt.Sprintf("%s (maxDef=%d, maxRep=%d)", n.Path, n.MaxDefinitionLevel, n.MaxRepetitionLevel)
}
