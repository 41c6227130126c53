package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/codegraph-dev/engine/classifier"
	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/diffengine"
	"github.com/codegraph-dev/engine/iterator"
	"github.com/codegraph-dev/engine/lspclient"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
	"github.com/codegraph-dev/engine/resolver"
)

// DiffResult is the outcome of BuildDiff: the partial graph contributed
// by the supplied changes, plus any edges that leave it for an unchanged
// file (spec §4.9's external-edge rule).
type DiffResult struct {
	RunID         string
	Nodes         []*codegraph.Node
	Edges         []*codegraph.Edge
	ExternalEdges []*codegraph.ExternalEdge
	Warnings      []Warning
}

// BuildDiff runs the diff/update engine (C9) over diffs, then resolves
// and classifies cross-references (C5-C7) for the changed files against
// the rest of cfg.Root (spec §4.9's "full file-iterator context, to
// reach unchanged parent folders" input — extended here to also let the
// reference resolver see unchanged definitions a changed file calls
// into, and vice versa; see DESIGN.md for the scoping this implies).
//
// previous, when non-empty, switches the structural pass into
// function-level mode (spec §4.9).
func BuildDiff(ctx context.Context, cfg Config, diffs []codegraph.FileDiff, previous []codegraph.PreviousNodeState) (*DiffResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputInvalid, err)
	}
	if len(diffs) == 0 {
		return nil, fmt.Errorf("%w: no file diffs supplied", ErrInputInvalid)
	}

	repoID := cfg.RepoID
	if repoID == "" {
		repoID = iterator.DetectRepoID(cfg.Root)
	}
	baseEnv := codegraph.Environment{EntityID: cfg.EntityID, RepoID: repoID, Layer: codegraph.LayerBase}
	prEnv := codegraph.Environment{EntityID: cfg.EntityID, RepoID: repoID, Layer: codegraph.LayerPR}

	reg := registry.New()
	pool := parsing.NewPool()

	levels, parentDirs := diffLevels(cfg, diffs)

	structural, err := diffengine.Build(ctx, diffengine.Input{
		Diffs:          diffs,
		BaseEnv:        baseEnv,
		PREnv:          prEnv,
		Registry:       reg,
		Pool:           pool,
		Scheme:         cfg.Scheme,
		Levels:         levels,
		ParentDirs:     parentDirs,
		PreviousStates: previous,
	})
	if err != nil {
		return nil, err
	}

	result := &DiffResult{
		RunID: uuid.NewString(),
		Nodes: structural.Nodes,
		Edges: structural.Edges,
	}

	if cfg.OnlyHierarchy {
		return result, nil
	}

	warnings, err := resolveDiffReferences(ctx, cfg, reg, pool, diffs, baseEnv, prEnv, result)
	if err != nil {
		return nil, err
	}
	result.Warnings = warnings
	return result, nil
}

// diffLevels computes the Levels map and ParentDirs function diffengine
// needs, covering every diff path and its ancestor chain up to cfg.Root.
func diffLevels(cfg Config, diffs []codegraph.FileDiff) (map[string]int, func(string) []string) {
	levels := make(map[string]int, len(diffs)*2)
	dirsByPath := make(map[string][]string, len(diffs))

	for _, d := range diffs {
		dirs := ancestorDirs(cfg.Root, d.Path)
		dirsByPath[d.Path] = dirs
		levels[d.Path] = dirLevel(cfg.Root, filepath.Dir(d.Path)) + 1
		for _, dir := range dirs {
			levels[dir] = dirLevel(cfg.Root, dir)
		}
	}

	return levels, func(path string) []string {
		return dirsByPath[path]
	}
}

// changedNodePaths builds the set of exact node paths the structural
// pass actually re-emitted under pr_env — the membership test
// diffengine.RouteEdge uses to decide internal vs. external. This must
// track real re-emission, not raw file membership: function-level mode
// re-emits only the nodes that changed, leaving unchanged siblings at
// their base_env identity even though their file appears in the diff
// list (spec §4.9).
func changedNodePaths(nodes []*codegraph.Node) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Environment.Layer == codegraph.LayerPR {
			set[n.Path] = true
		}
	}
	return set
}

// resolveDiffReferences discovers reference edges touching the changed
// set. It builds a hierarchy for every file under cfg.Root — pr_env for
// changed (added/modified) files, base_env for everything else — so the
// resolver can see cross-file references in both directions, then keeps
// only the edges whose *source node path* was actually re-emitted by the
// structural pass (an unchanged node's existing call into unchanged code
// is already in the persisted graph and is not part of this delta; see
// DESIGN.md's Resolved Open Question for this component).
func resolveDiffReferences(ctx context.Context, cfg Config, reg *registry.Registry, pool *parsing.Pool, diffs []codegraph.FileDiff, baseEnv, prEnv codegraph.Environment, result *DiffResult) ([]Warning, error) {
	entries, err := walkFiles(cfg, reg)
	if err != nil {
		return nil, err
	}

	changedAdded := make(map[string]bool, len(diffs))
	deleted := make(map[string]bool, len(diffs))
	for _, d := range diffs {
		switch d.ChangeType {
		case codegraph.ChangeDeleted:
			deleted[d.Path] = true
		default:
			changedAdded[d.Path] = true
		}
	}

	fileEntries := make([]*resolver.FileEntry, 0, len(entries))
	nodesByID := make(map[codegraph.NodeID]*codegraph.Node)
	var fileWarnings []Warning

	for _, e := range entries {
		if deleted[e.Path] {
			continue
		}
		env := baseEnv
		if changedAdded[e.Path] {
			env = prEnv
		}

		fe, built, err := buildOneFile(ctx, cfg, reg, pool, env, e.Path)
		if err != nil {
			cfg.Logger.WithField("path", e.Path).WithError(err).
				Warn("engine: skipping file in diff reference pass after hierarchy build failure")
			fileWarnings = append(fileWarnings, Warning{Kind: WarnHierarchyBuildFailed, Context: err.Error()})
			continue
		}
		fileEntries = append(fileEntries, fe)

		nodesByID[built.File.ID] = built.File
		for _, n := range built.Nodes {
			nodesByID[n.ID] = n
		}
	}

	lspPool := lspclient.NewPool(cfg.LSP)
	defer lspPool.Close(ctx)

	rulesByID := langRulesByID(reg)
	changed := changedNodePaths(result.Nodes)

	refs, resolverWarnings := resolver.Resolve(ctx, lspPool, fileEntries, cfg.Logger)
	for _, ref := range refs {
		srcNode := nodesByID[ref.Source]
		tgtNode := nodesByID[ref.Target]
		// srcNode's Environment reflects the whole file's membership in
		// the diff list, not whether this specific node was re-emitted
		// (function-level mode re-emits only changed nodes, leaving
		// unchanged siblings at their base_env identity). Gate on
		// changed[srcNode.Path] — the set structural.Nodes actually
		// emitted under pr_env — so an unchanged sibling's call into a
		// changed node is dropped instead of surfacing as a dangling
		// edge sourced from a node absent from both this diff and the
		// base graph.
		if srcNode == nil || tgtNode == nil || !changed[srcNode.Path] {
			continue
		}

		rules := rulesByID[ref.SiteLang]
		if rules == nil {
			rules = registry.FallbackRules{}
		}
		kind, scopeText := classifier.Classify(ref.Site, ref.TargetLabel, ref.SiteLang, rules, ref.SiteSource)

		edge, external, err := diffengine.RouteEdge(srcNode, tgtNode.Path, kind, scopeText, changed, baseEnv)
		if err != nil {
			return nil, err
		}
		if edge != nil {
			result.Edges = append(result.Edges, edge)
		}
		if external != nil {
			result.ExternalEdges = append(result.ExternalEdges, external)
		}
	}

	warnings := make([]Warning, 0, len(resolverWarnings)+len(fileWarnings))
	warnings = append(warnings, fileWarnings...)
	for _, w := range resolverWarnings {
		warnings = append(warnings, Warning{Kind: w.Kind, Context: w.Detail})
	}
	return warnings, nil
}
