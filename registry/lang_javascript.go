package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

// javascriptRules is shared by JavaScript, TypeScript, and TSX: per the
// design notes (spec §9), TypeScript's capability set composes
// JavaScript's table with TypeScript-specific extensions by
// concatenation rather than by subclassing. TSX adds nothing beyond
// TypeScript at the rules layer — it differs only in grammar/LSP id,
// registered separately in registry.go.
type javascriptRules struct {
	typescriptExtensions bool
}

func newJavaScriptRules() Rules { return javascriptRules{} }

func newTypeScriptRules(_ bool) Rules { return javascriptRules{typescriptExtensions: true} }

func isArrowValuedDeclarator(n *sitter.Node) bool {
	if n == nil || n.Type() != "variable_declarator" {
		return false
	}
	value := fieldNamed(n, "value")
	return value != nil && value.Type() == "arrow_function"
}

func (r javascriptRules) IsNodeWorthCapturing(n *sitter.Node) bool {
	if nodeTypeIs(n, "class_declaration", "function_declaration", "method_definition") {
		return true
	}
	if r.typescriptExtensions && nodeTypeIs(n, "interface_declaration") {
		return true
	}
	return isArrowValuedDeclarator(n)
}

func (r javascriptRules) IdentifierOf(n *sitter.Node) *sitter.Node {
	return identifierByFieldName(n)
}

func (r javascriptRules) BodyOf(n *sitter.Node) (uint32, uint32) {
	return defaultBodyOf(n)
}

func (r javascriptRules) NodeLabelFor(n *sitter.Node) (codegraph.Label, bool) {
	switch {
	case nodeTypeIs(n, "class_declaration"):
		return codegraph.LabelClass, true
	case r.typescriptExtensions && nodeTypeIs(n, "interface_declaration"):
		return codegraph.LabelClass, true
	case nodeTypeIs(n, "function_declaration", "method_definition"):
		return codegraph.LabelFunction, true
	case isArrowValuedDeclarator(n):
		return codegraph.LabelFunction, true
	}
	return "", false
}

func (r javascriptRules) Patterns() []PatternRule {
	patterns := []PatternRule{
		{Kind: codegraph.KindCalls, Match: byType("call_expression")},
		{Kind: codegraph.KindInstantiates, Match: byType("new_expression")},
		{Kind: codegraph.KindInherits, Match: byAnyType("class_heritage", "extends_clause")},
		{Kind: codegraph.KindImports, Match: byAnyType("import_specifier", "import_clause")},
	}
	if r.typescriptExtensions {
		patterns = append(patterns, PatternRule{
			Kind: codegraph.KindTypes, Match: byType("type_annotation"),
		})
	}
	return patterns
}
