// Package engine orchestrates the whole pipeline — C1 through C9 — behind
// the two exported entry points a caller drives: Build for a from-scratch
// graph over a repository, and BuildDiff for the partial graph a set of
// file changes contributes (spec §4.9, §6).
package engine

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/lspclient"
	"github.com/codegraph-dev/engine/registry"
)

// Config is a plain Go struct (spec §6: no CLI/env binding — that stays a
// caller responsibility). It is yaml-tagged purely so callers who load it
// from a project configuration file get that for free; the engine itself
// never reads a file for config.
type Config struct {
	// Root is the directory Build/BuildDiff walk.
	Root string `yaml:"root"`

	// EntityID and RepoID identify the environment the build runs under
	// (spec §3's Environment tuple). RepoID is optional: when empty,
	// Build tries to default it from a project marker found in Root or
	// one of its ancestor directories (spec §12); a caller-supplied
	// value always wins.
	EntityID string `yaml:"entity_id"`
	RepoID   string `yaml:"repo_id,omitempty"`

	// Scheme prefixes every node's Path (spec §3's path grammar);
	// defaults to "file".
	Scheme string `yaml:"scheme,omitempty"`

	ExtensionsToSkip []string `yaml:"extensions_to_skip,omitempty"`
	NamesToSkip      []string `yaml:"names_to_skip,omitempty"`
	IgnorePatterns   []string `yaml:"ignore_patterns,omitempty"`

	// ParseWorkers bounds the C3/C4 CPU pool (spec §5 axis 1); <=0 means
	// unbounded.
	ParseWorkers int `yaml:"parse_workers,omitempty"`

	// OnlyHierarchy disables C5/C6/C7 entirely, producing a structural
	// (CONTAINS-only) graph with no LSP dependency.
	OnlyHierarchy bool `yaml:"only_hierarchy,omitempty"`

	// LSP configures the per-language server pool (spec §4.5). Left
	// zero-valued, every language is simply unavailable and every build
	// degrades to hierarchy-only with a warning, never a fatal error.
	LSP lspclient.Config `yaml:"lsp,omitempty"`

	Logger *logrus.Logger `yaml:"-"`
}

func (c Config) withDefaults() Config {
	if c.Scheme == "" {
		c.Scheme = "file"
	}
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	return c
}

// Warning is a non-fatal degradation recorded during a build. Kind
// mirrors resolver.Warning's kinds plus any engine-level kinds.
type Warning struct {
	Kind    string
	Context string
}

const (
	// WarnLSPUnavailable is re-exported from resolver so callers never
	// need to import that package just to switch on warning kinds.
	WarnLSPUnavailable = "LSPUnavailable"
	// WarnReferencesQueryFailed mirrors resolver.WarnReferencesQueryFailed.
	WarnReferencesQueryFailed = "ReferencesQueryFailed"
	// WarnHierarchyBuildFailed records a single file's C3/C4 failure
	// (parse error, unreadable file) without aborting the rest of the
	// build.
	WarnHierarchyBuildFailed = "HierarchyBuildFailed"
)

// Result is the outcome of a full Build.
type Result struct {
	// RunID correlates this build's warnings/logs across a caller's own
	// logging (spec §10); it has no bearing on node_id, which is always
	// the deterministic HighwayHash of (environment, path).
	RunID    string
	Nodes    []*codegraph.Node
	Edges    []*codegraph.Edge
	Warnings []Warning
}

// Fatal error kinds (spec §7). Reused directly from codegraph rather than
// redefined, so a caller checking errors.Is against either package's
// sentinel observes the same underlying error.
var (
	ErrInputInvalid       = codegraph.ErrInputInvalid
	ErrHashCollision      = codegraph.ErrHashCollision
	ErrAssemblerInvariant = codegraph.ErrInvariantViolation
)

// validate reports configuration the engine cannot act on at all; Build
// and BuildDiff wrap its error with ErrInputInvalid.
func (c Config) validate() error {
	if c.Root == "" {
		return errors.New("engine: Root must not be empty")
	}
	if c.EntityID == "" {
		return errors.New("engine: EntityID must not be empty")
	}
	return nil
}

// langRulesByID indexes a Registry's languages by ID for O(1) lookup
// during classification, where only the language ID (carried on a
// resolver.Reference) is known, not the original extension.
func langRulesByID(reg *registry.Registry) map[registry.ID]registry.Rules {
	out := make(map[registry.ID]registry.Rules, len(reg.All())+1)
	for _, lang := range reg.All() {
		out[lang.ID] = lang.Rules
	}
	out[registry.Unknown] = reg.Fallback()
	return out
}
