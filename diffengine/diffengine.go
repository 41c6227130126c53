// Package diffengine builds the partial graph contributed by a set of
// file changes, in either file-level or function-level granularity
// (spec §4.9).
package diffengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/highwayhash"

	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/hierarchy"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
)

// contentHashKey is a fixed, non-secret HighwayHash key, distinct from
// codegraph.Hash's own, since the two serve different purposes: this one
// is a cheap content fingerprint for the function-level diff pre-filter,
// not a node identity.
var contentHashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

func contentHash(text string) (uint64, error) {
	h, err := highwayhash.New64(contentHashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write([]byte(text)); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// Result is the partial graph contributed by one diff build.
type Result struct {
	Nodes         []*codegraph.Node
	Edges         []*codegraph.Edge
	ExternalEdges []*codegraph.ExternalEdge
}

// Input is shared configuration for both diff modes.
type Input struct {
	Diffs      []codegraph.FileDiff
	BaseEnv    codegraph.Environment
	PREnv      codegraph.Environment
	Registry   *registry.Registry
	Pool       *parsing.Pool
	Scheme     string
	Levels     map[string]int          // absolute path (file or folder) -> containment level
	ParentDirs func(path string) []string // root-first ancestor directory paths for a file path

	// PreviousStates, when non-empty, switches Build into function-level
	// mode (spec §4.9). Entries are matched by node path, and each diff
	// entry only consults the states whose path lies inside its own file,
	// so the slice itself may mix entries from several files.
	PreviousStates []codegraph.PreviousNodeState
}

// Build runs file-level mode when in.PreviousStates is empty, and
// function-level mode otherwise, per spec §4.9.
func Build(ctx context.Context, in Input) (*Result, error) {
	if len(in.PreviousStates) > 0 {
		return buildFunctionLevel(ctx, in)
	}
	return buildFileLevel(ctx, in)
}

func buildFileLevel(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}
	for _, diff := range in.Diffs {
		switch diff.ChangeType {
		case codegraph.ChangeDeleted:
			if err := emitDeletedFile(in, diff.Path, result); err != nil {
				return nil, err
			}
		case codegraph.ChangeAdded, codegraph.ChangeModified:
			extra := codegraph.ExtraAdded
			if diff.ChangeType == codegraph.ChangeModified {
				extra = codegraph.ExtraModified
			}
			if err := emitChangedFile(ctx, in, diff.Path, extra, result); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("diffengine: unknown change type %q for %s", diff.ChangeType, diff.Path)
		}
	}
	return result, nil
}

// buildFunctionLevel narrows file-level mode's "every capturable node"
// to only the nodes whose text actually changed (spec §4.9): it builds
// the same PR-env hierarchy as file-level mode, then keeps only nodes
// without a matching unchanged PreviousNodeState, labeling survivors
// ADDED/MODIFIED, and separately emits DELETED for any previous node
// path absent from the rebuilt set.
func buildFunctionLevel(ctx context.Context, in Input) (*Result, error) {
	result := &Result{}
	previousByPath := make(map[string]string, len(in.PreviousStates))
	for _, prev := range in.PreviousStates {
		previousByPath[prev.NodePath] = prev.CodeText
	}

	for _, diff := range in.Diffs {
		if diff.ChangeType == codegraph.ChangeDeleted {
			if err := emitDeletedFile(in, diff.Path, result); err != nil {
				return nil, err
			}
			continue
		}

		built, err := buildPREnvFile(ctx, in, diff.Path)
		if err != nil {
			return nil, err
		}

		var fileChanged []*codegraph.Node
		seenPaths := make(map[string]bool, len(built.Nodes))
		for _, node := range built.Nodes {
			seenPaths[node.Path] = true

			previousText, existed := previousByPath[node.Path]
			if !existed {
				node.AddExtraLabel(codegraph.ExtraAdded)
				fileChanged = append(fileChanged, node)
				continue
			}

			same, err := sameContent(previousText, node.Text)
			if err != nil {
				return nil, err
			}
			if !same {
				node.AddExtraLabel(codegraph.ExtraModified)
				fileChanged = append(fileChanged, node)
			}
			// unchanged siblings retain their base-env identities and
			// are not re-emitted (spec §4.9).
		}

		if err := emitDeletedSiblings(in, diff.Path, previousByPath, seenPaths, &fileChanged); err != nil {
			return nil, err
		}

		if len(fileChanged) > 0 {
			fileNode := built.File
			if diff.ChangeType == codegraph.ChangeModified {
				baseFile := *built.File
				baseFile.Environment = in.BaseEnv
				baseFile.ID, err = codegraph.Hash(in.BaseEnv, baseFile.Path)
				if err != nil {
					return nil, fmt.Errorf("diffengine: hashing file %s: %w", diff.Path, err)
				}
				fileNode = &baseFile
			} else if diff.ChangeType == codegraph.ChangeAdded {
				fileNode.AddExtraLabel(codegraph.ExtraAdded)
			}
			result.Nodes = append(result.Nodes, fileNode)
			emitParentChain(in, diff.Path, fileNode, result)
		}
		result.Nodes = append(result.Nodes, fileChanged...)
	}

	return result, nil
}

// sameContent applies the hash-as-pre-filter idiom spec §4.9 calls for:
// a hash mismatch proves the text differs without ever comparing bytes;
// a hash match still falls through to the exact comparison, since a
// collision (vanishingly unlikely but not impossible) must not be
// mistaken for equality.
func sameContent(previousText, currentText string) (bool, error) {
	prevHash, err := contentHash(previousText)
	if err != nil {
		return false, err
	}
	curHash, err := contentHash(currentText)
	if err != nil {
		return false, err
	}
	if prevHash != curHash {
		return false, nil
	}
	return previousText == currentText, nil
}

// emitDeletedSiblings records DELETED for any previously-known node path
// under file that the rebuilt hierarchy no longer contains.
func emitDeletedSiblings(in Input, path string, previousByPath map[string]string, seenPaths map[string]bool, fileChanged *[]*codegraph.Node) error {
	filePrefix := in.Scheme + "://" + filepath.ToSlash(path) + "#"
	for nodePath := range previousByPath {
		if !strings.HasPrefix(nodePath, filePrefix) || seenPaths[nodePath] {
			continue
		}
		id, err := codegraph.Hash(in.BaseEnv, nodePath)
		if err != nil {
			return fmt.Errorf("diffengine: hashing deleted node %s: %w", nodePath, err)
		}
		*fileChanged = append(*fileChanged, &codegraph.Node{
			ID:          id,
			Label:       codegraph.LabelDefinition,
			Path:        nodePath,
			ExtraLabel:  []codegraph.ExtraLabel{codegraph.ExtraDeleted},
			Environment: in.BaseEnv,
		})
	}
	return nil
}

func emitChangedFile(ctx context.Context, in Input, path string, extra codegraph.ExtraLabel, result *Result) error {
	built, err := buildPREnvFile(ctx, in, path)
	if err != nil {
		return err
	}
	built.File.AddExtraLabel(extra)
	for _, n := range built.Nodes {
		n.AddExtraLabel(extra)
	}

	result.Nodes = append(result.Nodes, built.File)
	result.Nodes = append(result.Nodes, built.Nodes...)
	result.Edges = append(result.Edges, built.Edges...)

	emitParentChain(in, path, built.File, result)
	return nil
}

func buildPREnvFile(ctx context.Context, in Input, path string) (*hierarchy.Result, error) {
	lang, ok := in.Registry.Lookup(path)
	var parsed *parsing.Parsed
	var rules registry.Rules
	if ok {
		p, err := in.Pool.ParseFile(ctx, path, lang.Grammar)
		if err != nil {
			return nil, fmt.Errorf("diffengine: parsing %s: %w", path, err)
		}
		parsed = p
		rules = lang.Rules
	} else {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("diffengine: reading %s: %w", path, err)
		}
		parsed = &parsing.Parsed{Path: path, Source: src}
		rules = in.Registry.Fallback()
	}

	return hierarchy.BuildFile(parsed, rules, in.PREnv, in.Scheme, in.Levels[path])
}

func emitDeletedFile(in Input, path string, result *Result) error {
	filePath := in.Scheme + "://" + filepath.ToSlash(path)
	id, err := codegraph.Hash(in.BaseEnv, filePath)
	if err != nil {
		return fmt.Errorf("diffengine: hashing deleted file %s: %w", path, err)
	}
	fileNode := &codegraph.Node{
		ID:          id,
		Label:       codegraph.LabelFile,
		Path:        filePath,
		Name:        filepath.Base(path),
		Level:       in.Levels[path],
		ExtraLabel:  []codegraph.ExtraLabel{codegraph.ExtraDeleted},
		Environment: in.BaseEnv,
	}
	result.Nodes = append(result.Nodes, fileNode)
	emitParentChainEnv(in, path, fileNode, in.BaseEnv, result)
	return nil
}

// emitParentChain re-emits the FOLDER ancestor chain under base_env and
// links its innermost folder to fileNode with a CONTAINS edge, so the
// changed subtree's containment survives a merge into the persisted
// graph (spec §4.9's "parent emission"). fileNode itself is emitted by
// the caller.
func emitParentChain(in Input, path string, fileNode *codegraph.Node, result *Result) {
	emitParentChainEnv(in, path, fileNode, in.BaseEnv, result)
}

func emitParentChainEnv(in Input, path string, fileNode *codegraph.Node, env codegraph.Environment, result *Result) {
	if in.ParentDirs == nil {
		return
	}
	dirs := in.ParentDirs(path)

	var previous *codegraph.Node
	for _, dir := range dirs {
		dirPath := in.Scheme + "://" + filepath.ToSlash(dir)
		id, err := codegraph.Hash(env, dirPath)
		if err != nil {
			continue
		}
		folder := &codegraph.Node{
			ID:          id,
			Label:       codegraph.LabelFolder,
			Path:        dirPath,
			Name:        filepath.Base(dir),
			Level:       in.Levels[dir],
			Environment: env,
		}
		result.Nodes = append(result.Nodes, folder)
		if previous != nil {
			result.Edges = append(result.Edges, &codegraph.Edge{Source: previous.ID, Target: folder.ID, Kind: codegraph.KindContains})
		}
		previous = folder
	}
	if previous != nil {
		result.Edges = append(result.Edges, &codegraph.Edge{Source: previous.ID, Target: fileNode.ID, Kind: codegraph.KindContains})
	}
}

// RouteEdge decides whether a classified reference stays inside the
// changed set (an ordinary pr_env-to-pr_env Edge) or leaves it for an
// unchanged node (an ExternalEdge pinned to the target's base_env
// identity), per spec §4.9's external-edge rule. targetPath is the full
// hierarchical node path of the reference's definition node.
//
// changedNodePaths must hold the exact node paths actually re-emitted
// under pr_env — not merely the set of changed files. In function-level
// mode an unchanged sibling inside a changed file keeps its base_env
// identity and is never re-emitted, so testing file membership alone
// would wrongly treat it as internal and hash it under the wrong
// environment, producing a dangling node_id absent from both the diff's
// own Nodes and the persisted base graph.
func RouteEdge(source *codegraph.Node, targetPath string, kind codegraph.RelationshipKind, scopeText string, changedNodePaths map[string]bool, baseEnv codegraph.Environment) (*codegraph.Edge, *codegraph.ExternalEdge, error) {
	if changedNodePaths[targetPath] {
		targetID, err := codegraph.Hash(source.Environment, targetPath)
		if err != nil {
			return nil, nil, fmt.Errorf("diffengine: hashing internal target %s: %w", targetPath, err)
		}
		return &codegraph.Edge{Source: source.ID, Target: targetID, Kind: kind, ScopeText: scopeText}, nil, nil
	}

	targetID, err := codegraph.Hash(baseEnv, targetPath)
	if err != nil {
		return nil, nil, fmt.Errorf("diffengine: hashing external target %s: %w", targetPath, err)
	}
	return nil, &codegraph.ExternalEdge{Source: source.ID, Target: targetID, Kind: kind}, nil
}
