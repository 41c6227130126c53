package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

type csharpRules struct{}

func newCSharpRules() Rules { return csharpRules{} }

func (csharpRules) IsNodeWorthCapturing(n *sitter.Node) bool {
	return nodeTypeIs(n, "class_declaration", "interface_declaration", "record_declaration",
		"method_declaration", "constructor_declaration")
}

func (csharpRules) IdentifierOf(n *sitter.Node) *sitter.Node {
	return identifierByFieldName(n)
}

func (csharpRules) BodyOf(n *sitter.Node) (uint32, uint32) {
	return defaultBodyOf(n)
}

func (csharpRules) NodeLabelFor(n *sitter.Node) (codegraph.Label, bool) {
	switch n.Type() {
	case "class_declaration", "interface_declaration", "record_declaration":
		return codegraph.LabelClass, true
	case "method_declaration", "constructor_declaration":
		return codegraph.LabelFunction, true
	}
	return "", false
}

func (csharpRules) Patterns() []PatternRule {
	return []PatternRule{
		{Kind: codegraph.KindInstantiates, Match: byType("object_creation_expression")},
		{Kind: codegraph.KindInherits, Match: byType("base_list")},
		{Kind: codegraph.KindImports, Match: byType("using_directive")},
		{Kind: codegraph.KindCalls, Match: byType("invocation_expression")},
	}
}
