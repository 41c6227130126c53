package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

type rubyRules struct{}

func newRubyRules() Rules { return rubyRules{} }

func (rubyRules) IsNodeWorthCapturing(n *sitter.Node) bool {
	return nodeTypeIs(n, "class", "method", "singleton_method")
}

func (rubyRules) IdentifierOf(n *sitter.Node) *sitter.Node {
	return identifierByFieldName(n)
}

func (rubyRules) BodyOf(n *sitter.Node) (uint32, uint32) {
	return defaultBodyOf(n)
}

func (rubyRules) NodeLabelFor(n *sitter.Node) (codegraph.Label, bool) {
	switch n.Type() {
	case "class":
		return codegraph.LabelClass, true
	case "method", "singleton_method":
		return codegraph.LabelFunction, true
	}
	return "", false
}

// isNewCall reports whether a `call` node invokes the method `new`, the
// Ruby convention for construction (spec §4.7: "call with method name new").
func isNewCall(n *sitter.Node, src []byte) bool {
	if n == nil || n.Type() != "call" {
		return false
	}
	method := fieldNamed(n, "method")
	return method != nil && content(method, src) == "new"
}

func (rubyRules) Patterns() []PatternRule {
	return []PatternRule{
		{Kind: codegraph.KindInstantiates, Match: isNewCall},
		{Kind: codegraph.KindInherits, Match: byType("superclass")},
		{Kind: codegraph.KindCalls, Match: byType("call")},
	}
}
