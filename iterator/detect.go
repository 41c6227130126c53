package iterator

import (
	"context"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/mod/modfile"

	"github.com/viant/afs"
)

// projectMarkers are root marker files/directories checked in order.
var projectMarkers = []string{
	"go.mod",
	"package.json",
	"pyproject.toml",
	"Gemfile",
	"composer.json",
	"pom.xml",
	".git",
}

var goModuleRegex = regexp.MustCompile(`module\s+([^\s]+)`)

// DetectRepoID walks up from root looking for a project marker and
// derives a best-effort repository identifier from it: a Go module's
// declared path when go.mod is the marker found, or the marker
// directory's base name otherwise. It never fails — an unresolvable
// root simply yields the empty string, leaving repo_id defaulting to
// the caller.
//
// This is the optional convenience named in spec §12: a caller-supplied
// repo_id always wins over this guess.
func DetectRepoID(root string) string {
	dir := root
	for {
		for _, marker := range projectMarkers {
			markerPath := filepath.Join(dir, marker)
			if _, err := os.Stat(markerPath); err != nil {
				continue
			}
			if marker == "go.mod" {
				if name := goModuleName(markerPath); name != "" {
					return name
				}
			}
			return filepath.Base(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// goModuleName extracts the declared module path from a go.mod file,
// preferring afs (so the same lookup works against any afs-backed
// scheme) and falling back to a plain read plus regex, matching the
// teacher's own dual-path extractGoModuleName.
func goModuleName(goModPath string) string {
	fs := afs.New()
	if content, err := fs.DownloadWithURL(context.Background(), goModPath); err == nil && len(content) > 0 {
		if mod, err := modfile.Parse(goModPath, content, nil); err == nil && mod != nil && mod.Module != nil {
			return mod.Module.Mod.Path
		}
	}

	data, err := os.ReadFile(goModPath)
	if err != nil {
		return ""
	}
	if matches := goModuleRegex.FindSubmatch(data); len(matches) == 2 {
		return string(matches[1])
	}
	return ""
}
