package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

type javaRules struct{}

func newJavaRules() Rules { return javaRules{} }

func (javaRules) IsNodeWorthCapturing(n *sitter.Node) bool {
	return nodeTypeIs(n, "class_declaration", "interface_declaration", "record_declaration",
		"method_declaration", "constructor_declaration")
}

func (javaRules) IdentifierOf(n *sitter.Node) *sitter.Node {
	return identifierByFieldName(n)
}

func (javaRules) BodyOf(n *sitter.Node) (uint32, uint32) {
	return defaultBodyOf(n)
}

func (javaRules) NodeLabelFor(n *sitter.Node) (codegraph.Label, bool) {
	switch n.Type() {
	case "class_declaration", "interface_declaration", "record_declaration":
		return codegraph.LabelClass, true
	case "method_declaration", "constructor_declaration":
		return codegraph.LabelFunction, true
	}
	return "", false
}

func (javaRules) Patterns() []PatternRule {
	return []PatternRule{
		{Kind: codegraph.KindInstantiates, Match: byType("object_creation_expression")},
		{Kind: codegraph.KindCalls, Match: byType("method_invocation")},
		{Kind: codegraph.KindImports, Match: byType("import_declaration")},
	}
}
