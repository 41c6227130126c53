package hierarchy_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/hierarchy"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
)

func testEnv() codegraph.Environment {
	return codegraph.Environment{EntityID: "acme", RepoID: "widgets", Layer: codegraph.LayerBase}
}

func TestBuildFileCapturesTopLevelDeclarations(t *testing.T) {
	reg := registry.New()
	lang, ok := reg.Lookup("service.go")
	require.True(t, ok)

	src := `package service

type Widget struct {
	Name string
}

func Render(w Widget) string {
	return w.Name
}
`
	pool := parsing.NewPool()
	parsed, err := pool.Parse(context.Background(), "service.go", lang.Grammar, []byte(src))
	require.NoError(t, err)

	result, err := hierarchy.BuildFile(parsed, lang.Rules, testEnv(), "file", 1)
	require.NoError(t, err)

	assert.Equal(t, codegraph.LabelFile, result.File.Label)
	assert.Equal(t, 1, result.File.Level)
	assert.Equal(t, "file://service.go", result.File.Path)

	require.Len(t, result.Nodes, 2)
	byName := map[string]*codegraph.Node{}
	for _, n := range result.Nodes {
		byName[n.Name] = n
	}

	widget := byName["Widget"]
	require.NotNil(t, widget)
	assert.Equal(t, codegraph.LabelClass, widget.Label)
	assert.Equal(t, 2, widget.Level)
	assert.Equal(t, "file://service.go#Widget", widget.Path)

	render := byName["Render"]
	require.NotNil(t, render)
	assert.Equal(t, codegraph.LabelFunction, render.Label)
	assert.Equal(t, "file://service.go#Render", render.Path)

	pos, ok := result.Identifiers[render.ID]
	require.True(t, ok)
	assert.Equal(t, 6, pos.Line)

	require.Len(t, result.Edges, 2)
	for _, e := range result.Edges {
		assert.Equal(t, codegraph.KindContains, e.Kind)
		assert.Equal(t, result.File.ID, e.Source)
	}
}

func TestBuildFileDisambiguatesSiblingNames(t *testing.T) {
	reg := registry.New()
	lang, ok := reg.Lookup("service.py")
	require.True(t, ok)

	src := `class Outer:
    def helper(self):
        pass

    def helper(self):
        pass
`
	pool := parsing.NewPool()
	parsed, err := pool.Parse(context.Background(), "service.py", lang.Grammar, []byte(src))
	require.NoError(t, err)

	result, err := hierarchy.BuildFile(parsed, lang.Rules, testEnv(), "file", 1)
	require.NoError(t, err)

	var paths []string
	for _, n := range result.Nodes {
		if n.Name == "helper" {
			paths = append(paths, n.Path)
		}
	}
	require.Len(t, paths, 2)
	assert.Contains(t, paths, "file://service.py#Outer.helper")
	assert.Contains(t, paths, "file://service.py#Outer.helper[2]")
}

func TestBuildFileNodeIDsAreDeterministic(t *testing.T) {
	reg := registry.New()
	lang, ok := reg.Lookup("service.go")
	require.True(t, ok)

	src := "package service\n\nfunc Render() {}\n"
	pool := parsing.NewPool()

	parsedA, err := pool.Parse(context.Background(), "service.go", lang.Grammar, []byte(src))
	require.NoError(t, err)
	parsedB, err := pool.Parse(context.Background(), "service.go", lang.Grammar, []byte(src))
	require.NoError(t, err)

	resultA, err := hierarchy.BuildFile(parsedA, lang.Rules, testEnv(), "file", 1)
	require.NoError(t, err)
	resultB, err := hierarchy.BuildFile(parsedB, lang.Rules, testEnv(), "file", 1)
	require.NoError(t, err)

	assert.Equal(t, resultA.File.ID, resultB.File.ID)
	assert.Equal(t, resultA.Nodes[0].ID, resultB.Nodes[0].ID)
}

func TestBuildFileWithFallbackRulesCapturesNothing(t *testing.T) {
	reg := registry.New()
	lang, ok := reg.Lookup("service.go")
	require.True(t, ok)

	pool := parsing.NewPool()
	parsed, err := pool.Parse(context.Background(), "notes.txt", lang.Grammar, []byte("package service\nfunc X(){}\n"))
	require.NoError(t, err)

	result, err := hierarchy.BuildFile(parsed, reg.Fallback(), testEnv(), "file", 1)
	require.NoError(t, err)
	assert.Empty(t, result.Nodes)
	assert.Empty(t, result.Edges)
}
