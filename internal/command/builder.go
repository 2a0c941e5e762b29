// Package command turns a compressor selection plus source/target paths
// into the full argument vector for the external process. It never runs
// anything; execution belongs to the executor package.
package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"imgminify/internal/registry"
)

// ErrUnknownMinifier is returned when no builder exists for an
// identifier: it is neither registered nor covered by a custom strategy.
var ErrUnknownMinifier = errors.New("unknown minifier")

// Strategy is the extension point for a caller-supplied compressor. When
// a strategy is installed for a run, the registry is bypassed entirely.
type Strategy interface {
	// Command returns the full argument vector for one file. The first
	// element must be a runnable executable path or name.
	Command(sourcePath, targetPath string, opts Options) ([]string, error)
}

// Builder constructs argument vectors from registry templates.
type Builder struct {
	// Custom, when non-nil, handles every file of the run instead of the
	// registered compressors.
	Custom Strategy

	// VendorDir is the local package directory checked for vendored
	// compressor binaries (gifsicle installed via npm lands here).
	VendorDir string
}

// NewBuilder returns a Builder with the default vendor directory.
func NewBuilder() *Builder {
	return &Builder{VendorDir: "node_modules"}
}

// Build produces the argument vector for one file. User options are
// inserted directly after the executable name, ahead of the template's
// own fixed flags.
func (b *Builder) Build(name, sourcePath, targetPath string, opts Options) ([]string, error) {
	if b.Custom != nil {
		return b.Custom.Command(sourcePath, targetPath, opts)
	}

	spec, err := registry.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMinifier, name)
	}

	argv := make([]string, 0, len(spec.Template)+len(opts)*2)
	argv = append(argv, b.executable(spec))
	argv = append(argv, opts.args()...)
	for _, token := range spec.Template[1:] {
		switch token {
		case registry.SourceToken:
			argv = append(argv, sourcePath)
		case registry.TargetToken:
			argv = append(argv, targetPath)
		default:
			argv = append(argv, token)
		}
	}
	return argv, nil
}

// executable picks the argv[0] for a spec. A vendored binary under the
// local package directory wins over the bare name; the rest of the
// vector is identical either way.
func (b *Builder) executable(spec registry.Spec) string {
	if b.VendorDir == "" {
		return spec.Template[0]
	}
	vendored := filepath.Join(b.VendorDir, spec.Name, "vendor", spec.Name+exeSuffix())
	if fi, err := os.Stat(vendored); err == nil && !fi.IsDir() {
		return vendored
	}
	return spec.Template[0]
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
