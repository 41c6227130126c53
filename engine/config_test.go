package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/codegraph-dev/engine/engine"
)

// TestConfigYAMLRoundTrip verifies a caller persisting engine.Config to
// a project file and loading it back recovers every field.
func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := engine.Config{
		Root:             "/repo",
		EntityID:         "acme",
		RepoID:           "widgets",
		Scheme:           "file",
		ExtensionsToSkip: []string{".min.js"},
		NamesToSkip:      []string{"vendor"},
		IgnorePatterns:   []string{"*.gen.go"},
		ParseWorkers:     4,
		OnlyHierarchy:    true,
	}

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	var loaded engine.Config
	require.NoError(t, yaml.Unmarshal(data, &loaded))

	assert.Equal(t, cfg.Root, loaded.Root)
	assert.Equal(t, cfg.EntityID, loaded.EntityID)
	assert.Equal(t, cfg.RepoID, loaded.RepoID)
	assert.Equal(t, cfg.Scheme, loaded.Scheme)
	assert.Equal(t, cfg.ExtensionsToSkip, loaded.ExtensionsToSkip)
	assert.Equal(t, cfg.NamesToSkip, loaded.NamesToSkip)
	assert.Equal(t, cfg.IgnorePatterns, loaded.IgnorePatterns)
	assert.Equal(t, cfg.ParseWorkers, loaded.ParseWorkers)
	assert.Equal(t, cfg.OnlyHierarchy, loaded.OnlyHierarchy)
}
