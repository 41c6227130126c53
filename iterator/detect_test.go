package iterator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/engine/iterator"
)

func TestDetectRepoIDReadsGoModuleName(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module github.com/acme/widgets\n\ngo 1.23\n"), 0o644))
	sub := filepath.Join(root, "internal", "service")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	assert.Equal(t, "github.com/acme/widgets", iterator.DetectRepoID(sub))
}

func TestDetectRepoIDFallsBackToMarkerDirName(t *testing.T) {
	root := t.TempDir()
	project := filepath.Join(root, "widgets")
	require.NoError(t, os.MkdirAll(project, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "package.json"), []byte(`{"name":"widgets"}`), 0o644))

	assert.Equal(t, "widgets", iterator.DetectRepoID(project))
}

func TestDetectRepoIDReturnsEmptyWhenNoMarkerFound(t *testing.T) {
	root := t.TempDir()
	assert.Equal(t, "", iterator.DetectRepoID(filepath.Join(root, "nowhere")))
}
