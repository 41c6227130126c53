package iterator

import "github.com/codegraph-dev/engine/registry"

// Entry is one yielded filesystem unit: a file with its resolved
// language (Unknown if no registered grammar matched its extension), or
// a directory when a folder-only walk is requested.
type Entry struct {
	Path       string
	LanguageID registry.ID
	IsDir      bool
}
