// Package registry holds the static table of known image compressors:
// their command templates, download locations, and per-format defaults.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Placeholder tokens used inside command templates. They are substituted
// by the command builder, never passed to the child process.
const (
	SourceToken = "{source}"
	TargetToken = "{target}"
)

// ErrNotFound is returned by Lookup for identifiers outside the registry.
var ErrNotFound = errors.New("compressor not registered")

// Spec describes one known compressor. Specs are immutable; the table is
// defined once at process start.
type Spec struct {
	// Name is the canonical identifier, e.g. "optipng".
	Name string

	// Template is the fixed argument shape. Template[0] is the executable
	// name; SourceToken and TargetToken mark where the paths go.
	Template []string

	// RepoURL is the remote binary repository base. Empty means the
	// compressor is never auto-downloaded (svgo ships via npm).
	RepoURL string

	// InPlace marks single-path tools that rewrite their argument file.
	// The orchestrator copies source to target before invoking them.
	InPlace bool

	// PreDeleteTarget marks tools that misbehave when the output file
	// already exists (optipng refuses to overwrite).
	PreDeleteTarget bool

	// HasInstallHook marks compressors with a platform-specific install
	// path instead of (or before) the plain binary download.
	HasInstallHook bool
}

const imageminRepo = "https://raw.githubusercontent.com/imagemin"

// specs is the closed set of compressors this tool knows how to drive.
var specs = map[string]Spec{
	"optipng": {
		Name:            "optipng",
		Template:        []string{"optipng", "-quiet", "-out", TargetToken, "--", SourceToken},
		RepoURL:         imageminRepo + "/optipng-bin/main",
		PreDeleteTarget: true,
	},
	"jpegtran": {
		Name:     "jpegtran",
		Template: []string{"jpegtran", "-optimize", "-outfile", TargetToken, SourceToken},
		RepoURL:  imageminRepo + "/jpegtran-bin/main",
	},
	"gifsicle": {
		Name:           "gifsicle",
		Template:       []string{"gifsicle", "-o", TargetToken, SourceToken},
		RepoURL:        imageminRepo + "/gifsicle-bin/main",
		HasInstallHook: true,
	},
	"svgo": {
		Name:     "svgo",
		Template: []string{"svgo", SourceToken, "-o", TargetToken},
	},
	"pngquant": {
		Name:     "pngquant",
		Template: []string{"pngquant", "--force", "--output", TargetToken, SourceToken},
		RepoURL:  imageminRepo + "/pngquant-bin/main",
	},
	"advpng": {
		Name:     "advpng",
		Template: []string{"advpng", "--recompress", "--quiet", TargetToken},
		RepoURL:  imageminRepo + "/advpng-bin/main",
		InPlace:  true,
	},
	"pngout": {
		Name:     "pngout",
		Template: []string{"pngout", "-y", SourceToken, TargetToken},
		RepoURL:  imageminRepo + "/pngout-bin/main",
	},
	"zopflipng": {
		Name:     "zopflipng",
		Template: []string{"zopflipng", "-y", SourceToken, TargetToken},
		RepoURL:  imageminRepo + "/zopflipng-bin/main",
	},
	"pngcrush": {
		Name:     "pngcrush",
		Template: []string{"pngcrush", "-reduce", SourceToken, TargetToken},
		RepoURL:  imageminRepo + "/pngcrush-bin/main",
	},
	"jpegoptim": {
		Name:     "jpegoptim",
		Template: []string{"jpegoptim", "--quiet", "--strip-all", TargetToken},
		RepoURL:  imageminRepo + "/jpegoptim-bin/main",
		InPlace:  true,
	},
	"jpeg-recompress": {
		Name:     "jpeg-recompress",
		Template: []string{"jpeg-recompress", "--quiet", SourceToken, TargetToken},
		RepoURL:  imageminRepo + "/jpeg-recompress-bin/main",
	},
}

// defaultByExt maps lowercase file extensions (without dot) to the
// compressor used when no explicit minifier is configured.
var defaultByExt = map[string]string{
	"png":  "optipng",
	"jpg":  "jpegtran",
	"jpeg": "jpegtran",
	"gif":  "gifsicle",
	"svg":  "svgo",
}

// Lookup returns the spec for a compressor identifier.
func Lookup(name string) (Spec, error) {
	spec, ok := specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return spec, nil
}

// Known reports whether name is a registered compressor identifier.
func Known(name string) bool {
	_, ok := specs[name]
	return ok
}

// DefaultFor returns the default compressor identifier for a file
// extension (with or without leading dot), or "" when the extension has
// no default.
func DefaultFor(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	return defaultByExt[ext]
}

// Names returns all registered identifiers in sorted order.
func Names() []string {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
