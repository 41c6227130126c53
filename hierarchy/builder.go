// Package hierarchy turns a parsed file into a subtree of codegraph
// Nodes linked by CONTAINS edges (spec §4.4).
package hierarchy

import (
	"bytes"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
)

// Result is one file's contribution to the graph: its own FILE node,
// every captured descendant, and the CONTAINS edges linking them
// (including the FILE-to-first-level edges).
type Result struct {
	File  *codegraph.Node
	Nodes []*codegraph.Node
	Edges []*codegraph.Edge

	// Identifiers holds the zero-based LSP position of each captured
	// node's identifying name, keyed by NodeID. A node whose rules
	// report no identifier (an anonymous DEFINITION) has no entry; the
	// resolver skips querying references for those.
	Identifiers map[codegraph.NodeID]Position
}

// Position is a zero-based line/character location, the granularity the
// reference resolver needs to drive textDocument/references — distinct
// from Node's 1-based, column-less StartLine/EndLine, which only need to
// bound displayable source text.
type Position struct {
	Line      int
	Character int
}

// BuildFile constructs the FILE node for parsed.Path at the given
// containment level (assigned by the caller from folder depth, spec
// §3's "FOLDER at the project root is level 0") and descends the parse
// tree capturing CLASS/FUNCTION/DEFINITION nodes per rules.
func BuildFile(parsed *parsing.Parsed, rules registry.Rules, env codegraph.Environment, scheme string, level int) (*Result, error) {
	path := scheme + "://" + filepath.ToSlash(parsed.Path)
	id, err := codegraph.Hash(env, path)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: hashing %s: %w", path, err)
	}

	fileNode := &codegraph.Node{
		ID:          id,
		Label:       codegraph.LabelFile,
		Path:        path,
		Name:        filepath.Base(parsed.Path),
		Level:       level,
		StartLine:   1,
		EndLine:     lineCount(parsed.Source),
		Environment: env,
	}

	result := &Result{File: fileNode, Identifiers: map[codegraph.NodeID]Position{}}
	if err := walk(parsed.RootNode(), fileNode, rules, parsed.Source, env, map[string]int{}, result); err != nil {
		return nil, err
	}
	return result, nil
}

func walk(n *sitter.Node, parent *codegraph.Node, rules registry.Rules, src []byte, env codegraph.Environment, seen map[string]int, result *Result) error {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if !rules.IsNodeWorthCapturing(child) {
			if err := walk(child, parent, rules, src, env, seen, result); err != nil {
				return err
			}
			continue
		}

		node, ident, err := capture(child, parent, rules, src, env, seen)
		if err != nil {
			return err
		}
		result.Nodes = append(result.Nodes, node)
		result.Edges = append(result.Edges, &codegraph.Edge{
			Source: parent.ID,
			Target: node.ID,
			Kind:   codegraph.KindContains,
		})
		if ident != nil {
			result.Identifiers[node.ID] = Position{
				Line:      int(ident.StartPoint().Row),
				Character: int(ident.StartPoint().Column),
			}
		}

		if err := walk(child, node, rules, src, env, map[string]int{}, result); err != nil {
			return err
		}
	}
	return nil
}

func capture(n *sitter.Node, parent *codegraph.Node, rules registry.Rules, src []byte, env codegraph.Environment, seen map[string]int) (*codegraph.Node, *sitter.Node, error) {
	label, ok := rules.NodeLabelFor(n)
	if !ok {
		label = codegraph.LabelDefinition
	}

	ident := rules.IdentifierOf(n)
	name := n.Type()
	if ident != nil {
		name = ident.Content(src)
	}
	segment := disambiguate(seen, name)
	path := childPath(parent.Path, segment)

	id, err := codegraph.Hash(env, path)
	if err != nil {
		return nil, nil, fmt.Errorf("hierarchy: hashing %s: %w", path, err)
	}

	start, end := rules.BodyOf(n)
	node := &codegraph.Node{
		ID:          id,
		Label:       label,
		Path:        path,
		Name:        name,
		Level:       parent.Level + 1,
		StartLine:   int(n.StartPoint().Row) + 1,
		EndLine:     int(n.EndPoint().Row) + 1,
		Text:        string(src[start:end]),
		Environment: env,
	}
	return node, ident, nil
}

func lineCount(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	n := bytes.Count(src, []byte("\n")) + 1
	if bytes.HasSuffix(src, []byte("\n")) {
		n--
	}
	return n
}
