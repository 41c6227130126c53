package registry

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
)

// FallbackRules backs unrecognized extensions (spec §2.2: "Unknown
// extensions map to a fallback rules object that supports only hierarchy
// extraction"). It never captures a semantic child beneath the FILE
// node, so C4 produces a single-node subtree and C7 never runs against
// it (there are no CLASS/FUNCTION/DEFINITION identifier positions to
// resolve references from).
type FallbackRules struct{}

func (FallbackRules) IsNodeWorthCapturing(*sitter.Node) bool { return false }

func (FallbackRules) IdentifierOf(*sitter.Node) *sitter.Node { return nil }

func (FallbackRules) BodyOf(n *sitter.Node) (uint32, uint32) { return defaultBodyOf(n) }

func (FallbackRules) NodeLabelFor(*sitter.Node) (codegraph.Label, bool) { return "", false }

func (FallbackRules) Patterns() []PatternRule { return nil }
