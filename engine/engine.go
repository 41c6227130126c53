package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/codegraph-dev/engine/assembler"
	"github.com/codegraph-dev/engine/classifier"
	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/hierarchy"
	"github.com/codegraph-dev/engine/iterator"
	"github.com/codegraph-dev/engine/lspclient"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
	"github.com/codegraph-dev/engine/resolver"
)

// Build walks cfg.Root, extracts the structural hierarchy for every file
// (C1-C4), assembles it (C8), and — unless cfg.OnlyHierarchy — resolves
// and classifies cross-references via the LSP pool (C5-C7), producing
// one deterministic graph (spec §2, §5's ordering guarantees).
func Build(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInputInvalid, err)
	}

	repoID := cfg.RepoID
	if repoID == "" {
		repoID = iterator.DetectRepoID(cfg.Root)
	}
	env := codegraph.Environment{EntityID: cfg.EntityID, RepoID: repoID, Layer: codegraph.LayerBase}

	reg := registry.New()
	entries, err := walkFiles(cfg, reg)
	if err != nil {
		return nil, err
	}

	asm := assembler.New()
	pool := parsing.NewPool()

	// Root's own FOLDER node is inserted unconditionally, not just as a
	// byproduct of some file's ancestor chain: an empty root must still
	// yield a single FOLDER node and no edges (spec §8).
	if _, err := insertFolderNode(asm, cfg.Root, cfg.Root, env, cfg.Scheme); err != nil {
		return nil, err
	}

	fileEntries, warnings, err := buildFileEntries(ctx, cfg, reg, pool, asm, env, entries)
	if err != nil {
		return nil, err
	}

	if !cfg.OnlyHierarchy {
		warnings = append(warnings, resolveAndClassify(ctx, cfg, reg, fileEntries, asm)...)
	}

	return &Result{
		RunID:    uuid.NewString(),
		Nodes:    asm.Nodes(),
		Edges:    asm.Edges(),
		Warnings: warnings,
	}, nil
}

// walkFiles drives C1 over cfg.Root and materializes the lazy sequence
// into a slice: every later stage needs File Iterator order preserved
// (spec §5's C4 depth-first, lexicographic-sibling ordering guarantee),
// which a slice makes trivial to hand to a bounded worker pool and bucket
// back by index.
func walkFiles(cfg Config, reg *registry.Registry) ([]iterator.Entry, error) {
	seq, err := iterator.Walk(iterator.Config{
		Root:             cfg.Root,
		ExtensionsToSkip: cfg.ExtensionsToSkip,
		NamesToSkip:      cfg.NamesToSkip,
		IgnorePatterns:   cfg.IgnorePatterns,
	}, reg, cfg.Logger)
	if err != nil {
		return nil, err
	}

	var entries []iterator.Entry
	seq(func(e iterator.Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries, nil
}

// buildFileEntries runs C3+C4 over entries concurrently (spec §5 axis 1),
// inserting every node/edge into asm as it completes, and returns the
// resolver.FileEntry slice for C5/C6 in the original, deterministic
// iterator order (mirrors parsing.ParseAll's own index-bucketing idiom).
func buildFileEntries(ctx context.Context, cfg Config, reg *registry.Registry, pool *parsing.Pool, asm *assembler.Assembler, env codegraph.Environment, entries []iterator.Entry) ([]*resolver.FileEntry, []Warning, error) {
	results := make([]*resolver.FileEntry, len(entries))

	var warnMu sync.Mutex
	var warnings []Warning

	g, gctx := errgroup.WithContext(ctx)
	if cfg.ParseWorkers > 0 {
		g.SetLimit(cfg.ParseWorkers)
	}

	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			fe, built, err := buildOneFile(gctx, cfg, reg, pool, env, e.Path)
			if err != nil {
				cfg.Logger.WithFields(logrus.Fields{"path": e.Path, "error": err}).
					Warn("engine: skipping file after hierarchy build failure")
				warnMu.Lock()
				warnings = append(warnings, Warning{Kind: WarnHierarchyBuildFailed, Context: err.Error()})
				warnMu.Unlock()
				return nil
			}

			if err := insertHierarchy(asm, built); err != nil {
				return err
			}
			folder, err := buildFolderChain(asm, cfg.Root, e.Path, env, cfg.Scheme)
			if err != nil {
				return err
			}
			if folder != nil {
				asm.AddEdge(codegraph.Edge{Source: folder.ID, Target: built.File.ID, Kind: codegraph.KindContains})
			}

			results[i] = fe
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]*resolver.FileEntry, 0, len(results))
	for _, fe := range results {
		if fe != nil {
			out = append(out, fe)
		}
	}
	return out, warnings, nil
}

// buildOneFile parses and hierarchy-builds a single file, falling back to
// FallbackRules (hierarchy-only) for extensions registry.Lookup does not
// resolve, matching diffengine.buildPREnvFile's dual path.
func buildOneFile(ctx context.Context, cfg Config, reg *registry.Registry, pool *parsing.Pool, env codegraph.Environment, path string) (*resolver.FileEntry, *hierarchy.Result, error) {
	lang, ok := reg.Lookup(path)
	var parsed *parsing.Parsed
	var rules registry.Rules
	langID := registry.Unknown

	if ok {
		p, err := pool.ParseFile(ctx, path, lang.Grammar)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: parsing %s: %w", path, err)
		}
		parsed = p
		rules = lang.Rules
		langID = lang.ID
	} else {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("engine: reading %s: %w", path, err)
		}
		parsed = &parsing.Parsed{Path: path, Source: src}
		rules = reg.Fallback()
	}

	level := dirLevel(cfg.Root, filepath.Dir(path)) + 1
	built, err := hierarchy.BuildFile(parsed, rules, env, cfg.Scheme, level)
	if err != nil {
		return nil, nil, err
	}

	fe := &resolver.FileEntry{
		URI:        cfg.Scheme + "://" + filepath.ToSlash(path),
		LanguageID: langID,
		Parsed:     parsed,
		Hierarchy:  built,
	}
	return fe, built, nil
}

func insertHierarchy(asm *assembler.Assembler, built *hierarchy.Result) error {
	if err := asm.Insert(built.File); err != nil {
		return err
	}
	for _, n := range built.Nodes {
		if err := asm.Insert(n); err != nil {
			return err
		}
	}
	for _, e := range built.Edges {
		asm.AddEdge(*e)
	}
	return nil
}

// resolveAndClassify drives C5+C6+C7 over fileEntries (spec §5 axis 2)
// and feeds every resulting relationship into asm as a CONTAINS-sibling
// edge.
func resolveAndClassify(ctx context.Context, cfg Config, reg *registry.Registry, fileEntries []*resolver.FileEntry, asm *assembler.Assembler) []Warning {
	pool := lspclient.NewPool(cfg.LSP)
	defer pool.Close(ctx)

	rulesByID := langRulesByID(reg)

	refs, resolverWarnings := resolver.Resolve(ctx, pool, fileEntries, cfg.Logger)
	classifyReferences(refs, rulesByID, asm)

	warnings := make([]Warning, 0, len(resolverWarnings))
	for _, w := range resolverWarnings {
		warnings = append(warnings, Warning{Kind: w.Kind, Context: w.Detail})
	}
	return warnings
}

func classifyReferences(refs []resolver.Reference, rulesByID map[registry.ID]registry.Rules, asm *assembler.Assembler) {
	for _, ref := range refs {
		rules := rulesByID[ref.SiteLang]
		if rules == nil {
			rules = registry.FallbackRules{}
		}
		kind, scopeText := classifier.Classify(ref.Site, ref.TargetLabel, ref.SiteLang, rules, ref.SiteSource)
		asm.AddEdge(codegraph.Edge{Source: ref.Source, Target: ref.Target, Kind: kind, ScopeText: scopeText})
	}
}

// ancestorDirs returns the root-first chain of directories strictly
// between (and including) root and the parent of path. A file directly
// under root yields []string{root}.
func ancestorDirs(root, path string) []string {
	dir := filepath.Dir(path)
	var dirs []string
	for {
		dirs = append(dirs, dir)
		if dir == root {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	for i, j := 0, len(dirs)-1; i < j; i, j = i+1, j-1 {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
	return dirs
}

// dirLevel is dir's containment depth relative to root (root itself is
// level 0, spec §3).
func dirLevel(root, dir string) int {
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

// buildFolderChain inserts the FOLDER node for every ancestor directory
// of path under root (idempotently — later files sharing an ancestor
// simply no-op on Insert) and chains them with CONTAINS edges. It
// returns the immediate parent folder so the caller can link it to the
// file node.
func buildFolderChain(asm *assembler.Assembler, root, path string, env codegraph.Environment, scheme string) (*codegraph.Node, error) {
	dirs := ancestorDirs(root, path)
	var previous *codegraph.Node
	for _, dir := range dirs {
		folder, err := insertFolderNode(asm, root, dir, env, scheme)
		if err != nil {
			return nil, err
		}
		if previous != nil {
			asm.AddEdge(codegraph.Edge{Source: previous.ID, Target: folder.ID, Kind: codegraph.KindContains})
		}
		previous = folder
	}
	return previous, nil
}

// insertFolderNode inserts (idempotently) the FOLDER node for a single
// directory and returns it.
func insertFolderNode(asm *assembler.Assembler, root, dir string, env codegraph.Environment, scheme string) (*codegraph.Node, error) {
	dirPath := scheme + "://" + filepath.ToSlash(dir)
	id, err := codegraph.Hash(env, dirPath)
	if err != nil {
		return nil, fmt.Errorf("engine: hashing folder %s: %w", dir, err)
	}
	folder := &codegraph.Node{
		ID:          id,
		Label:       codegraph.LabelFolder,
		Path:        dirPath,
		Name:        filepath.Base(dir),
		Level:       dirLevel(root, dir),
		Environment: env,
	}
	if err := asm.Insert(folder); err != nil {
		return nil, err
	}
	return folder, nil
}
