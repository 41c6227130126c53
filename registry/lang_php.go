package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

type phpRules struct{}

func newPHPRules() Rules { return phpRules{} }

func (phpRules) IsNodeWorthCapturing(n *sitter.Node) bool {
	return nodeTypeIs(n, "class_declaration", "function_definition", "method_declaration")
}

func (phpRules) IdentifierOf(n *sitter.Node) *sitter.Node {
	return identifierByFieldName(n)
}

func (phpRules) BodyOf(n *sitter.Node) (uint32, uint32) {
	return defaultBodyOf(n)
}

func (phpRules) NodeLabelFor(n *sitter.Node) (codegraph.Label, bool) {
	switch n.Type() {
	case "class_declaration":
		return codegraph.LabelClass, true
	case "function_definition", "method_declaration":
		return codegraph.LabelFunction, true
	}
	return "", false
}

func (phpRules) Patterns() []PatternRule {
	return []PatternRule{
		{Kind: codegraph.KindInstantiates, Match: byType("object_creation_expression")},
		{Kind: codegraph.KindInherits, Match: byType("base_clause")},
		{Kind: codegraph.KindImports, Match: byType("namespace_use_declaration")},
		{Kind: codegraph.KindCalls, Match: byAnyType("function_call_expression", "member_call_expression")},
	}
}
