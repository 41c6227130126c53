// Package classifier determines the relationship kind of a reference
// site via the ordered ancestor-walk tables each language registers on
// its registry.Rules (spec §4.7).
package classifier

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/registry"
)

// Classify walks from site toward its AST root, consulting rules'
// ordered pattern table at every ancestor (including site itself); the
// first match wins and its source range becomes scopeText. Python
// f-string interpolation wrappers never appear in any pattern table, so
// the walk passes through them transparently on its way to an
// enclosing call — that is how an interpolated call still contributes
// CALLS without a dedicated rule.
//
// A CLASS-labeled target whose site matched CALLS is downgraded to
// INSTANTIATES in languages where a bare `ClassName()` denotes
// construction rather than a callable (spec §4.7's third special case).
// The second special case ("INSTANTIATES suppresses CALLS for the same
// site") needs no extra code: Classify returns one kind per call, so
// there is nothing left to suppress once a single match has been
// chosen.
func Classify(site *sitter.Node, targetLabel codegraph.Label, lang registry.ID, rules registry.Rules, src []byte) (kind codegraph.RelationshipKind, scopeText string) {
	if site == nil {
		return codegraph.KindReferences, ""
	}

	for ancestor := site; ancestor != nil; ancestor = ancestor.Parent() {
		for _, rule := range rules.Patterns() {
			if rule.Match(ancestor, src) {
				kind = rule.Kind
				scopeText = nodeText(ancestor, src)
				return downgrade(kind, targetLabel, lang), scopeText
			}
		}
	}

	if isBareIdentifier(site) {
		return codegraph.KindUses, nodeText(site, src)
	}
	return codegraph.KindReferences, nodeText(site, src)
}

func downgrade(kind codegraph.RelationshipKind, targetLabel codegraph.Label, lang registry.ID) codegraph.RelationshipKind {
	if kind != codegraph.KindCalls || targetLabel != codegraph.LabelClass {
		return kind
	}
	if lang == registry.Python || lang == registry.PHP {
		return codegraph.KindInstantiates
	}
	return kind
}

// isBareIdentifier reports whether n is a leaf identifier token with no
// surrounding call or member-access syntax, across the grammars in
// play — the "generic identifier with no call or member context" case
// spec §4.7 maps to USES instead of REFERENCES.
func isBareIdentifier(n *sitter.Node) bool {
	switch n.Type() {
	case "identifier", "name", "simple_identifier", "type_identifier",
		"property_identifier", "shorthand_property_identifier", "constant":
		return true
	}
	return false
}

func nodeText(n *sitter.Node, src []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if int(end) > len(src) {
		end = uint32(len(src))
	}
	return string(src[start:end])
}
