package iterator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/codegraph-dev/engine/registry"
)

// Walk builds a lazy, depth-first, lexicographically-ordered sequence of
// Entry values under cfg.Root (spec §4.1). It returns a Go 1.23
// range-over-func iterator: `for e := range seq { ... }`, or manual
// `seq(func(e Entry) bool { ... })` for early stop.
func Walk(cfg Config, reg *registry.Registry, logger *logrus.Logger) (func(func(Entry) bool), error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPathNotFound, cfg.Root)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrPathNotFound, cfg.Root)
	}

	if logger == nil {
		logger = logrus.New()
	}
	skipExt := cfg.skipExtensions()
	skipName := cfg.skipNames()

	return func(yield func(Entry) bool) {
		root := cfg.Root
		stopped := false

		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if stopped {
				return filepath.SkipAll
			}
			if err != nil {
				if os.IsPermission(err) {
					logger.WithFields(logrus.Fields{"path": path, "error": err}).
						Warn("iterator: permission denied, skipping subtree")
					if d != nil && d.IsDir() {
						return filepath.SkipDir
					}
					return nil
				}
				return err
			}

			if d.Type()&fs.ModeSymlink != 0 {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			base := d.Name()
			if path != root && skipName[base] {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesIgnorePattern(cfg.IgnorePatterns, root, path, base) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path == root {
					return nil
				}
				if cfg.FoldersOnly {
					if !yield(Entry{Path: path, IsDir: true}) {
						stopped = true
						return filepath.SkipAll
					}
				}
				return nil
			}

			if cfg.FoldersOnly {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(path))
			if skipExt[ext] {
				return nil
			}
			langID := registry.Unknown
			if lang, ok := reg.Lookup(path); ok {
				langID = lang.ID
			}
			if !yield(Entry{Path: path, LanguageID: langID}) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
	}, nil
}

// matchesIgnorePattern reports whether path (or its basename, or its
// root-relative slash form) matches any of the shell-style glob
// patterns. Plain filepath.Match is sufficient for shell-style globs;
// no dedicated ignore-file-parsing dependency is needed for it.
func matchesIgnorePattern(patterns []string, root, path, base string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
