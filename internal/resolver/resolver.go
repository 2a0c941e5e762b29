// Package resolver obtains a runnable path for a compressor identifier:
// from the per-run cache, the local bin directory, the system PATH, a
// platform install hook, or a remote binary repository download.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"imgminify/internal/fetcher"
	"imgminify/internal/registry"
)

var (
	// ErrExecutableUnavailable means every acquisition tier was exhausted
	// for an identifier.
	ErrExecutableUnavailable = errors.New("executable unavailable")

	// ErrDownloadFailed means a fetched binary could not be persisted.
	ErrDownloadFailed = errors.New("download failed")
)

// PathLookup answers whether a command is present on the system PATH.
// Production code uses exec.LookPath; tests substitute a stub.
type PathLookup interface {
	Look(name string) (string, error)
}

// SystemPathLookup is the exec.LookPath-backed PathLookup.
type SystemPathLookup struct{}

func (SystemPathLookup) Look(name string) (string, error) {
	return exec.LookPath(name)
}

// InstallHook performs a platform-specific install for one compressor
// and returns the resolved executable path on success.
type InstallHook func() (string, error)

// Resolver resolves compressor identifiers to runnable paths. The cache
// is scoped to one Resolver, so one orchestration run never downloads
// the same identifier twice.
type Resolver struct {
	binDir string
	lookup PathLookup
	fetch  fetcher.Fetcher
	log    *logrus.Logger

	cache map[string]string
	hooks map[string]InstallHook

	// goos/goarch are fixed to the runtime values in New; tests override
	// them to exercise foreign-platform URL fallbacks.
	goos   string
	goarch string
}

// New returns a Resolver rooted at binDir. Binaries already present in
// binDir for known identifiers are cached up front, so those never hit
// the PATH lookup or the network.
func New(binDir string, lookup PathLookup, fetch fetcher.Fetcher, log *logrus.Logger) *Resolver {
	r := &Resolver{
		binDir: binDir,
		lookup: lookup,
		fetch:  fetch,
		log:    log,
		cache:  make(map[string]string),
		hooks:  make(map[string]InstallHook),
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
	r.seedFromBinDir()
	r.registerDefaultHooks()
	return r
}

// RegisterHook installs a platform install hook for an identifier,
// replacing any default.
func (r *Resolver) RegisterHook(name string, hook InstallHook) {
	r.hooks[name] = hook
}

// seedFromBinDir records every known identifier that already has a
// binary in the bin directory.
func (r *Resolver) seedFromBinDir() {
	for _, name := range registry.Names() {
		path := r.binPath(name)
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			r.cache[name] = path
		}
	}
}

// registerDefaultHooks wires the compressors that need an install step
// on some platform. gifsicle has no prebuilt Windows binary in the
// repository layout; npm provides one under node_modules.
func (r *Resolver) registerDefaultHooks() {
	if r.goos != "windows" {
		return
	}
	r.hooks["gifsicle"] = func() (string, error) {
		cmd := exec.Command("npm", "install", "gifsicle")
		if err := cmd.Run(); err != nil {
			return "", fmt.Errorf("npm install gifsicle: %w", err)
		}
		return filepath.Join("node_modules", "gifsicle", "vendor", "gifsicle"+r.exeSuffix()), nil
	}
}

// Resolve returns a runnable path for name. Tiers, in order: per-run
// cache, bin directory (seeded at construction), system PATH, install
// hook, remote download with URL fallbacks. The result is cached, so a
// download happens at most once per identifier per run.
func (r *Resolver) Resolve(name string) (string, error) {
	if path, ok := r.cache[name]; ok {
		return path, nil
	}

	if path, err := r.lookup.Look(name); err == nil && path != "" {
		// On the PATH: keep the bare identifier, the OS resolves it.
		r.cache[name] = name
		return name, nil
	}

	if hook, ok := r.hooks[name]; ok {
		path, err := hook()
		if err == nil {
			r.cache[name] = path
			return path, nil
		}
		r.log.WithFields(logrus.Fields{
			"compressor": name,
			"error":      err.Error(),
		}).Warn("install hook failed, falling back to download")
	}

	path, err := r.download(name)
	if err != nil {
		return "", err
	}
	r.cache[name] = path
	return path, nil
}

// download fetches the binary for name from its repository, trying each
// platform tag in fallback order, and persists it executable in binDir.
func (r *Resolver) download(name string) (string, error) {
	spec, err := registry.Lookup(name)
	if err != nil || spec.RepoURL == "" {
		return "", fmt.Errorf("%w: %s", ErrExecutableUnavailable, name)
	}

	var lastErr error
	for _, tag := range r.platformTags() {
		url := spec.RepoURL + "/vendor/" + tag + "/" + name + r.exeSuffix()

		r.log.WithFields(logrus.Fields{
			"compressor": name,
			"url":        url,
		}).Info("downloading compressor binary")

		data, err := r.fetch.Get(url)
		if err != nil {
			lastErr = err
			continue
		}
		return r.persist(name, data)
	}

	return "", fmt.Errorf("%w: %s: %v", ErrExecutableUnavailable, name, lastErr)
}

// persist writes the downloaded binary into binDir with executable
// permission.
func (r *Resolver) persist(name string, data []byte) (string, error) {
	if err := os.MkdirAll(r.binDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, name, err)
	}
	path := r.binPath(name)
	if err := os.WriteFile(path, data, 0o755); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDownloadFailed, name, err)
	}
	r.log.WithFields(logrus.Fields{
		"compressor": name,
		"path":       path,
	}).Info("compressor binary installed")
	return path, nil
}

// platformTags returns the repository path segments to try, most
// specific first. Windows collapses OS and architecture into a single
// segment and falls back to the 32-bit variant.
func (r *Resolver) platformTags() []string {
	if r.goos == "windows" {
		return []string{"win", "win32"}
	}
	return []string{r.goos + "/" + normalizeArch(r.goarch), r.goos}
}

// normalizeArch maps Go architecture names onto the repository's naming.
func normalizeArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}

// binPath returns the on-disk location for an installed identifier.
func (r *Resolver) binPath(name string) string {
	return filepath.Join(r.binDir, name+r.exeSuffix())
}

func (r *Resolver) exeSuffix() string {
	if r.goos == "windows" {
		return ".exe"
	}
	return ""
}

// DefaultBinDir returns where downloaded compressors live: a bin
// directory beside the running executable when that layout exists,
// otherwise the executable's own directory.
func DefaultBinDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "bin"
	}
	dir := filepath.Dir(exe)
	bin := filepath.Join(filepath.Dir(dir), "bin")
	if fi, err := os.Stat(bin); err == nil && fi.IsDir() {
		return bin
	}
	return dir
}
