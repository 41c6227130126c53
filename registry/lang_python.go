package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

type pythonRules struct{}

func newPythonRules() Rules { return pythonRules{} }

func (pythonRules) IsNodeWorthCapturing(n *sitter.Node) bool {
	return nodeTypeIs(n, "class_definition", "function_definition")
}

func (pythonRules) IdentifierOf(n *sitter.Node) *sitter.Node {
	return identifierByFieldName(n)
}

func (pythonRules) BodyOf(n *sitter.Node) (uint32, uint32) {
	return defaultBodyOf(n)
}

func (pythonRules) NodeLabelFor(n *sitter.Node) (codegraph.Label, bool) {
	switch n.Type() {
	case "class_definition":
		return codegraph.LabelClass, true
	case "function_definition":
		return codegraph.LabelFunction, true
	}
	return "", false
}

func (pythonRules) Patterns() []PatternRule {
	return []PatternRule{
		{Kind: codegraph.KindCalls, Match: byType("call")},
		{Kind: codegraph.KindInherits, Match: func(n *sitter.Node, _ []byte) bool {
			return isFieldOfParent(n, "class_definition", "superclasses")
		}},
		{Kind: codegraph.KindImports, Match: byAnyType("import_from_statement", "import_statement")},
		{Kind: codegraph.KindTypes, Match: func(n *sitter.Node, _ []byte) bool {
			return isFieldOfAnyParent(n, "type", "typed_parameter", "typed_default_parameter",
				"assignment", "function_definition")
		}},
		{Kind: codegraph.KindAssigns, Match: func(n *sitter.Node, _ []byte) bool {
			return isFieldOfParent(n, "assignment", "left")
		}},
	}
}
