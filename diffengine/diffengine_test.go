package diffengine_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/diffengine"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
)

func testEnvs() (codegraph.Environment, codegraph.Environment) {
	base := codegraph.Environment{EntityID: "acme", RepoID: "widgets", Layer: codegraph.LayerBase}
	pr := codegraph.Environment{EntityID: "acme", RepoID: "widgets", Layer: codegraph.LayerPR}
	return base, pr
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildFileLevelEmitsAddedNodesUnderPREnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "service.go", "package service\n\nfunc Render() string { return \"\" }\n")

	base, pr := testEnvs()
	in := diffengine.Input{
		Diffs:    []codegraph.FileDiff{{Path: path, ChangeType: codegraph.ChangeAdded}},
		BaseEnv:  base,
		PREnv:    pr,
		Registry: registry.New(),
		Pool:     parsing.NewPool(),
		Scheme:   "file",
		Levels:   map[string]int{path: 1, dir: 0},
		ParentDirs: func(string) []string {
			return []string{dir}
		},
	}

	result, err := diffengine.Build(context.Background(), in)
	require.NoError(t, err)

	var renderFound, folderFound bool
	for _, n := range result.Nodes {
		if n.Name == "Render" {
			renderFound = true
			require.True(t, n.HasExtraLabel(codegraph.ExtraAdded))
			require.Equal(t, pr, n.Environment)
		}
		if n.Label == codegraph.LabelFolder {
			folderFound = true
			require.Equal(t, base, n.Environment)
		}
	}
	require.True(t, renderFound)
	require.True(t, folderFound)
}

func TestBuildFileLevelDeletedFileEmitsBaseEnvDeletedNode(t *testing.T) {
	dir := t.TempDir()
	base, pr := testEnvs()
	path := filepath.Join(dir, "gone.go")

	in := diffengine.Input{
		Diffs:    []codegraph.FileDiff{{Path: path, ChangeType: codegraph.ChangeDeleted}},
		BaseEnv:  base,
		PREnv:    pr,
		Registry: registry.New(),
		Pool:     parsing.NewPool(),
		Scheme:   "file",
		Levels:   map[string]int{path: 1},
	}

	result, err := diffengine.Build(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, result.Nodes, 1)
	require.True(t, result.Nodes[0].HasExtraLabel(codegraph.ExtraDeleted))
	require.Equal(t, base, result.Nodes[0].Environment)
}

func TestBuildFunctionLevelOnlyEmitsChangedNode(t *testing.T) {
	dir := t.TempDir()
	content := "package service\n\nfunc Keep() {}\n\nfunc Changed() { x := 1; _ = x }\n"
	path := writeFile(t, dir, "service.go", content)

	base, pr := testEnvs()
	reg := registry.New()
	lang, ok := reg.Lookup(path)
	require.True(t, ok)

	pool := parsing.NewPool()
	parsed, err := pool.ParseFile(context.Background(), path, lang.Grammar)
	require.NoError(t, err)

	filePath := "file://" + filepath.ToSlash(path)
	keepPath := filePath + "#Keep"
	changedPath := filePath + "#Changed"

	previous := []codegraph.PreviousNodeState{
		{NodePath: keepPath, CodeText: "func Keep() {}"},
		{NodePath: changedPath, CodeText: "func Changed() {}"},
	}
	_ = parsed

	in := diffengine.Input{
		Diffs:          []codegraph.FileDiff{{Path: path, ChangeType: codegraph.ChangeModified}},
		BaseEnv:        base,
		PREnv:          pr,
		Registry:       reg,
		Pool:           pool,
		Scheme:         "file",
		Levels:         map[string]int{path: 1, dir: 0},
		ParentDirs:     func(string) []string { return []string{dir} },
		PreviousStates: previous,
	}

	result, err := diffengine.Build(context.Background(), in)
	require.NoError(t, err)

	var names []string
	for _, n := range result.Nodes {
		if n.Label == codegraph.LabelFunction {
			names = append(names, n.Name)
		}
	}
	require.Contains(t, names, "Changed")
	require.NotContains(t, names, "Keep")
}

func TestRouteEdgeInternalVsExternal(t *testing.T) {
	base, pr := testEnvs()
	source := &codegraph.Node{ID: codegraph.MustHash(pr, "file:///a.go#f"), Environment: pr}

	// changedNodePaths holds exact re-emitted node paths, not file
	// membership: "file:///a.go#unchanged" is absent even though it lives
	// in the same file as the changed node "file:///a.go#g", matching
	// function-level mode's unchanged-sibling case.
	changed := map[string]bool{"file:///a.go#g": true}

	edge, external, err := diffengine.RouteEdge(source, "file:///a.go#g", codegraph.KindCalls, "f()", changed, base)
	require.NoError(t, err)
	require.NotNil(t, edge)
	require.Nil(t, external)

	edge2, external2, err := diffengine.RouteEdge(source, "file:///a.go#unchanged", codegraph.KindCalls, "h()", changed, base)
	require.NoError(t, err)
	require.Nil(t, edge2)
	require.NotNil(t, external2)
	require.Equal(t, codegraph.MustHash(base, "file:///a.go#unchanged"), external2.Target)
}
