package iterator

// Config controls one walk. It is yaml-serializable so callers can load
// it from the same project configuration file as the rest of the
// engine (spec §10 ambient config surface).
type Config struct {
	Root             string   `yaml:"root"`
	ExtensionsToSkip []string `yaml:"extensions_to_skip,omitempty"`
	NamesToSkip      []string `yaml:"names_to_skip,omitempty"`
	IgnorePatterns   []string `yaml:"ignore_patterns,omitempty"`

	// FoldersOnly restricts the walk to directory entries, skipping
	// files entirely. Used by callers that only need the folder
	// skeleton (e.g. project-root detection), distinct from the
	// `only_hierarchy` engine-level flag which instead disables C5/C6/C7.
	FoldersOnly bool `yaml:"folders_only,omitempty"`
}

func (c Config) skipExtensions() map[string]bool {
	set := make(map[string]bool, len(c.ExtensionsToSkip))
	for _, ext := range c.ExtensionsToSkip {
		set[ext] = true
	}
	return set
}

func (c Config) skipNames() map[string]bool {
	set := make(map[string]bool, len(c.NamesToSkip))
	for _, name := range c.NamesToSkip {
		set[name] = true
	}
	return set
}
