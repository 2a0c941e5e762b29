// Package finder discovers source files for a batch run. Patterns are
// either glob expressions (anything filepath.Glob understands) or plain
// directories, which are walked recursively for image files.
package finder

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Image extensions collected when a pattern names a directory.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
}

// Finder yields absolute source paths for root patterns.
type Finder interface {
	Find(patterns []string) ([]string, error)
}

// GlobFinder is the production Finder built on filepath.Glob and WalkDir.
type GlobFinder struct{}

// NewGlobFinder returns a GlobFinder.
func NewGlobFinder() *GlobFinder {
	return &GlobFinder{}
}

// Find expands each pattern and returns the matched files as absolute
// paths, sorted lexicographically for deterministic processing order.
// Duplicate matches across patterns are collapsed.
func (f *GlobFinder) Find(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if !seen[abs] {
			seen[abs] = true
			files = append(files, abs)
		}
		return nil
	}

	for _, pattern := range patterns {
		if fi, err := os.Stat(pattern); err == nil && fi.IsDir() {
			if err := walkImages(pattern, add); err != nil {
				return nil, err
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			fi, err := os.Stat(m)
			if err != nil || fi.IsDir() {
				continue
			}
			if err := add(m); err != nil {
				return nil, err
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// walkImages collects files with known image extensions under root.
func walkImages(root string, add func(string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return add(path)
		}
		return nil
	})
}
