// Package resolver drives textDocument/references for every captured
// definition and locates each response's containing AST and graph nodes
// (spec §4.6).
package resolver

import (
	"bytes"
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/sirupsen/logrus"

	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/hierarchy"
	"github.com/codegraph-dev/engine/lspclient"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
)

// FileEntry is one already-parsed, already-hierarchy-built file the
// resolver can query references against.
type FileEntry struct {
	URI        string
	LanguageID registry.ID
	Parsed     *parsing.Parsed
	Hierarchy  *hierarchy.Result
}

// Reference is one (source_node, definition, site_node) triple produced
// by the algorithm in spec §4.6, ready for classifier.Classify.
type Reference struct {
	Source      codegraph.NodeID
	Target      codegraph.NodeID
	TargetLabel codegraph.Label
	Site        *sitter.Node
	SiteSource  []byte
	SiteLang    registry.ID
}

// Warning kinds the resolver records instead of failing the build.
const (
	WarnLSPUnavailable       = "LSPUnavailable"
	WarnReferencesQueryFailed = "ReferencesQueryFailed"
)

// Warning is a non-fatal degradation recorded during resolution.
type Warning struct {
	Kind   string
	Detail string
}

// Resolve queries references for every FUNCTION/CLASS/DEFINITION node
// across files, in (definition-order, LSP-response-order) per spec §4.6.
// files must be supplied in the deterministic order the hierarchy
// builder produced them; Resolve does not reorder them.
func Resolve(ctx context.Context, pool *lspclient.Pool, files []*FileEntry, logger *logrus.Logger) ([]Reference, []Warning) {
	if logger == nil {
		logger = logrus.New()
	}

	byURI := make(map[string]*FileEntry, len(files))
	for _, f := range files {
		byURI[f.URI] = f
	}

	var refs []Reference
	var warnings []Warning

	for _, f := range files {
		if pool.Unavailable(f.LanguageID) {
			warnings = append(warnings, Warning{Kind: WarnLSPUnavailable, Detail: string(f.LanguageID)})
			continue
		}
		client, err := pool.Client(ctx, f.LanguageID)
		if err != nil {
			warnings = append(warnings, Warning{Kind: WarnLSPUnavailable, Detail: err.Error()})
			continue
		}

		opened := false
		for _, def := range f.Hierarchy.Nodes {
			if !isQueryable(def.Label) {
				continue
			}
			pos, ok := f.Hierarchy.Identifiers[def.ID]
			if !ok {
				continue
			}

			if !opened {
				if err := client.DidOpen(ctx, f.URI, string(f.LanguageID), string(f.Parsed.Source)); err != nil {
					warnings = append(warnings, Warning{Kind: WarnReferencesQueryFailed, Detail: err.Error()})
					break
				}
				opened = true
			}

			locations, err := client.References(ctx, f.URI, lspclient.Position{Line: pos.Line, Character: pos.Character})
			if err != nil {
				warnings = append(warnings, Warning{Kind: WarnReferencesQueryFailed, Detail: err.Error()})
				continue
			}

			found := resolveLocations(locations, byURI, def)
			refs = append(refs, found...)
		}
	}

	return refs, warnings
}

func isQueryable(label codegraph.Label) bool {
	return label == codegraph.LabelFunction || label == codegraph.LabelClass || label == codegraph.LabelDefinition
}

func resolveLocations(locations []lspclient.Location, byURI map[string]*FileEntry, def *codegraph.Node) []Reference {
	seen := make(map[string]bool, len(locations))
	out := make([]Reference, 0, len(locations))

	for _, loc := range locations {
		key := fmt.Sprintf("%s:%d:%d", loc.URI, loc.Range.Start.Line, loc.Range.Start.Character)
		if seen[key] {
			continue
		}
		seen[key] = true

		target, ok := byURI[loc.URI]
		if !ok {
			continue
		}

		pos := hierarchy.Position{Line: loc.Range.Start.Line, Character: loc.Range.Start.Character}
		if isDroppable(target.Parsed.Source, pos) {
			continue
		}

		site := findSiteNode(target.Parsed.RootNode(), pos)
		if site != nil && site.Type() == "comment" {
			continue
		}

		source := findSourceNode(target.Hierarchy, pos.Line+1)

		out = append(out, Reference{
			Source:      source.ID,
			Target:      def.ID,
			TargetLabel: def.Label,
			Site:        site,
			SiteSource:  target.Parsed.Source,
			SiteLang:    target.LanguageID,
		})
	}
	return out
}

// isDroppable reports whether pos lands on a whitespace byte — spec
// §4.6's "reference landing in whitespace" drop rule, checked directly
// against source bytes rather than node type since tree-sitter node
// spans do not cover inter-token whitespace at all.
func isDroppable(src []byte, pos hierarchy.Position) bool {
	lines := bytes.Split(src, []byte("\n"))
	if pos.Line < 0 || pos.Line >= len(lines) {
		return true
	}
	line := lines[pos.Line]
	if pos.Character < 0 || pos.Character >= len(line) {
		return true
	}
	b := line[pos.Character]
	return b == ' ' || b == '\t' || b == '\r'
}

// findSiteNode descends from root to the smallest node whose span
// contains pos, per spec §4.6's site_node definition. It walks every
// child (not just named ones) so punctuation/keyword tokens can still
// be the finest containing node when a reference lands on one.
func findSiteNode(root *sitter.Node, pos hierarchy.Position) *sitter.Node {
	current := root
	for {
		child := childContaining(current, pos)
		if child == nil {
			return current
		}
		current = child
	}
}

func childContaining(n *sitter.Node, pos hierarchy.Position) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if pointContains(child.StartPoint(), child.EndPoint(), pos) {
			return child
		}
	}
	return nil
}

func pointContains(start, end sitter.Point, pos hierarchy.Position) bool {
	if int(pos.Line) < int(start.Row) || (int(pos.Line) == int(start.Row) && pos.Character < int(start.Column)) {
		return false
	}
	if int(pos.Line) > int(end.Row) || (int(pos.Line) == int(end.Row) && pos.Character > int(end.Column)) {
		return false
	}
	return true
}

// findSourceNode selects the smallest codegraph.Node in h whose
// [StartLine,EndLine] span contains line (1-based), breaking ties by
// preferring the later-starting node, then the shorter span (spec
// §4.6's tie-break rule). Falls back to the FILE node when nothing
// finer contains line.
func findSourceNode(h *hierarchy.Result, line int) *codegraph.Node {
	var best *codegraph.Node
	for _, n := range h.Nodes {
		if n.StartLine > line || n.EndLine < line {
			continue
		}
		if best == nil {
			best = n
			continue
		}
		if n.StartLine > best.StartLine {
			best = n
			continue
		}
		if n.StartLine == best.StartLine && (n.EndLine-n.StartLine) < (best.EndLine-best.StartLine) {
			best = n
		}
	}
	if best == nil {
		return h.File
	}
	return best
}
