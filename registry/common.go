package registry

import sitter "github.com/smacker/go-tree-sitter"

// byType builds a PatternRule.Match that fires on bare ancestor node type,
// the common case in spec §4.7's pattern tables.
func byType(nodeType string) func(*sitter.Node, []byte) bool {
	return func(n *sitter.Node, _ []byte) bool {
		return n.Type() == nodeType
	}
}

// byAnyType fires when the ancestor's type is any of the given types.
func byAnyType(nodeTypes ...string) func(*sitter.Node, []byte) bool {
	set := make(map[string]bool, len(nodeTypes))
	for _, t := range nodeTypes {
		set[t] = true
	}
	return func(n *sitter.Node, _ []byte) bool {
		return set[n.Type()]
	}
}

// fieldNamed finds a child of n by tree-sitter field name; nil if absent.
func fieldNamed(n *sitter.Node, field string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(field)
}

// firstNamedChildOfType returns the first named child of n whose type is
// one of types, or nil.
func firstNamedChildOfType(n *sitter.Node, types ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if want[child.Type()] {
			return child
		}
	}
	return nil
}

// content returns the exact source text spanned by n.
func content(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(src)
}

// defaultBodyOf returns n's own span, the common BodyOf implementation:
// most captured node kinds have no separate "body" sub-node distinct from
// their own declaration span.
func defaultBodyOf(n *sitter.Node) (uint32, uint32) {
	return n.StartByte(), n.EndByte()
}

// identifierByFieldName returns the "name" field, the common IdentifierOf
// implementation across grammars that expose it.
func identifierByFieldName(n *sitter.Node) *sitter.Node {
	return fieldNamed(n, "name")
}

// isFieldOfParent reports whether n is the child stored under field on
// its parent, and that parent has the given type. Used by pattern tables
// that classify by field position rather than bare node type (e.g.
// Python's `superclasses` field of `class_definition`).
func isFieldOfParent(n *sitter.Node, parentType, field string) bool {
	if n == nil {
		return false
	}
	parent := n.Parent()
	if parent == nil || parent.Type() != parentType {
		return false
	}
	return parent.ChildByFieldName(field) == n
}

// isFieldOfAnyParent is isFieldOfParent generalized over several
// candidate parent types.
func isFieldOfAnyParent(n *sitter.Node, field string, parentTypes ...string) bool {
	for _, pt := range parentTypes {
		if isFieldOfParent(n, pt, field) {
			return true
		}
	}
	return false
}

// nodeTypeIs is the IsNodeWorthCapturing / NodeLabelFor helper for rule
// sets that decide purely by type, ignoring content.
func nodeTypeIs(n *sitter.Node, types ...string) bool {
	if n == nil {
		return false
	}
	t := n.Type()
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}
