package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

type goRules struct{}

func newGoRules() Rules { return goRules{} }

func (goRules) IsNodeWorthCapturing(n *sitter.Node) bool {
	return nodeTypeIs(n, "type_spec", "type_alias", "function_declaration",
		"method_declaration", "const_spec", "var_spec")
}

func (goRules) IdentifierOf(n *sitter.Node) *sitter.Node {
	return identifierByFieldName(n)
}

func (goRules) BodyOf(n *sitter.Node) (uint32, uint32) {
	return defaultBodyOf(n)
}

func (goRules) NodeLabelFor(n *sitter.Node) (codegraph.Label, bool) {
	switch n.Type() {
	case "type_spec", "type_alias":
		return codegraph.LabelClass, true
	case "function_declaration", "method_declaration":
		return codegraph.LabelFunction, true
	}
	return "", false
}

func (goRules) Patterns() []PatternRule {
	return []PatternRule{
		{Kind: codegraph.KindInstantiates, Match: byType("composite_literal")},
		{Kind: codegraph.KindImports, Match: byType("import_declaration")},
		{Kind: codegraph.KindCalls, Match: byType("call_expression")},
	}
}
