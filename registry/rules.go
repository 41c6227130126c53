package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

// PatternRule is one row of a language's ancestor-walk classification
// table (spec §4.7). Match inspects the ancestor node (and, where the
// kind depends on node content rather than just type — e.g. Ruby's
// `call` with method name "new" — the source bytes) and reports whether
// this row applies.
type PatternRule struct {
	Kind  codegraph.RelationshipKind
	Match func(ancestor *sitter.Node, src []byte) bool
}

// Rules is the per-language capability set (spec §4.2, §9 "Language
// polymorphism"). A new language is added by implementing Rules and
// registering it in New — no change to any other component.
type Rules interface {
	// IsNodeWorthCapturing reports whether a tree-sitter node is
	// significant enough to become a CodeNode. It receives the full node
	// (not just its type string) so a rule set can inspect children where
	// the decision depends on content — e.g. JS/TS only capture a
	// variable_declarator when its value is an arrow function.
	IsNodeWorthCapturing(n *sitter.Node) bool

	// IdentifierOf returns the identifier sub-node that names n, or nil
	// if n carries no name (e.g. an anonymous block captured as a bare
	// DEFINITION).
	IdentifierOf(n *sitter.Node) *sitter.Node

	// BodyOf returns the byte range whose content becomes the node's
	// Text/StartLine/EndLine. For most captured node kinds this is the
	// node's own span.
	BodyOf(n *sitter.Node) (start, end uint32)

	// NodeLabelFor maps a captured node to a graph Label, per the
	// canonical per-language tables in spec §4.4. Anything not in the
	// table becomes DEFINITION by the hierarchy builder, so this only
	// needs to return ok=true for CLASS/FUNCTION.
	NodeLabelFor(n *sitter.Node) (label codegraph.Label, ok bool)

	// Patterns returns the ordered ancestor-walk table used by the
	// relationship classifier (spec §4.7). First match wins.
	Patterns() []PatternRule
}
