package resolver

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	found map[string]string
}

func (s stubLookup) Look(name string) (string, error) {
	if path, ok := s.found[name]; ok {
		return path, nil
	}
	return "", errors.New("not found")
}

type stubFetcher struct {
	urls []string
	// byURL maps a URL to its payload; URLs outside the map fail.
	byURL map[string][]byte
}

func (s *stubFetcher) Get(url string) ([]byte, error) {
	s.urls = append(s.urls, url)
	if data, ok := s.byURL[url]; ok {
		return data, nil
	}
	return nil, errors.New("404")
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestResolver(t *testing.T, fetch *stubFetcher, lookup stubLookup) *Resolver {
	t.Helper()
	r := New(t.TempDir(), lookup, fetch, discardLogger())
	r.goos = "linux"
	r.goarch = "amd64"
	return r
}

func TestResolveFromSystemPath(t *testing.T) {
	fetch := &stubFetcher{}
	r := newTestResolver(t, fetch, stubLookup{found: map[string]string{"optipng": "/usr/bin/optipng"}})

	path, err := r.Resolve("optipng")
	require.NoError(t, err)
	assert.Equal(t, "optipng", path, "PATH hits keep the bare identifier")
	assert.Empty(t, fetch.urls)
}

func TestResolveSeedsFromBinDir(t *testing.T) {
	binDir := t.TempDir()
	installed := filepath.Join(binDir, "jpegtran")
	require.NoError(t, os.WriteFile(installed, []byte("bin"), 0o755))

	fetch := &stubFetcher{}
	r := New(binDir, stubLookup{}, fetch, discardLogger())
	r.goos = "linux"
	r.goarch = "amd64"

	path, err := r.Resolve("jpegtran")
	require.NoError(t, err)
	assert.Equal(t, installed, path)
	assert.Empty(t, fetch.urls)
}

func TestResolveDownloadsAndPersists(t *testing.T) {
	url := "https://raw.githubusercontent.com/imagemin/optipng-bin/main/vendor/linux/x64/optipng"
	fetch := &stubFetcher{byURL: map[string][]byte{url: []byte("ELF")}}
	r := newTestResolver(t, fetch, stubLookup{})

	path, err := r.Resolve("optipng")
	require.NoError(t, err)

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), fi.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("ELF"), data)
}

func TestResolveDownloadsAtMostOnce(t *testing.T) {
	url := "https://raw.githubusercontent.com/imagemin/optipng-bin/main/vendor/linux/x64/optipng"
	fetch := &stubFetcher{byURL: map[string][]byte{url: []byte("ELF")}}
	r := newTestResolver(t, fetch, stubLookup{})

	first, err := r.Resolve("optipng")
	require.NoError(t, err)
	second, err := r.Resolve("optipng")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, fetch.urls, 1, "same identifier must not be fetched twice in one run")
}

func TestResolveFallsBackToArchlessURL(t *testing.T) {
	fallback := "https://raw.githubusercontent.com/imagemin/jpegtran-bin/main/vendor/linux/jpegtran"
	fetch := &stubFetcher{byURL: map[string][]byte{fallback: []byte("ELF")}}
	r := newTestResolver(t, fetch, stubLookup{})

	_, err := r.Resolve("jpegtran")
	require.NoError(t, err)

	require.Len(t, fetch.urls, 2)
	assert.Contains(t, fetch.urls[0], "/vendor/linux/x64/jpegtran")
	assert.Equal(t, fallback, fetch.urls[1])
}

func TestResolveExhaustedTiers(t *testing.T) {
	fetch := &stubFetcher{}
	r := newTestResolver(t, fetch, stubLookup{})

	_, err := r.Resolve("gifsicle")
	assert.ErrorIs(t, err, ErrExecutableUnavailable)
	assert.ErrorContains(t, err, "gifsicle")
	assert.Len(t, fetch.urls, 2, "both platform tags tried")
}

func TestResolveNoRepoURL(t *testing.T) {
	fetch := &stubFetcher{}
	r := newTestResolver(t, fetch, stubLookup{})

	_, err := r.Resolve("svgo")
	assert.ErrorIs(t, err, ErrExecutableUnavailable)
	assert.Empty(t, fetch.urls)
}

func TestResolveInstallHook(t *testing.T) {
	fetch := &stubFetcher{}
	r := newTestResolver(t, fetch, stubLookup{})

	hookCalls := 0
	r.RegisterHook("gifsicle", func() (string, error) {
		hookCalls++
		return "/opt/vendored/gifsicle", nil
	})

	path, err := r.Resolve("gifsicle")
	require.NoError(t, err)
	assert.Equal(t, "/opt/vendored/gifsicle", path)
	assert.Empty(t, fetch.urls)

	// Cached on second resolve; hook runs once.
	_, err = r.Resolve("gifsicle")
	require.NoError(t, err)
	assert.Equal(t, 1, hookCalls)
}

func TestResolveInstallHookFailureFallsBackToDownload(t *testing.T) {
	url := "https://raw.githubusercontent.com/imagemin/gifsicle-bin/main/vendor/linux/x64/gifsicle"
	fetch := &stubFetcher{byURL: map[string][]byte{url: []byte("ELF")}}
	r := newTestResolver(t, fetch, stubLookup{})
	r.RegisterHook("gifsicle", func() (string, error) {
		return "", errors.New("npm missing")
	})

	path, err := r.Resolve("gifsicle")
	require.NoError(t, err)
	assert.Equal(t, r.binPath("gifsicle"), path)
}

func TestPlatformTags(t *testing.T) {
	tests := []struct {
		name   string
		goos   string
		goarch string
		want   []string
	}{
		{"linux amd64", "linux", "amd64", []string{"linux/x64", "linux"}},
		{"linux 386", "linux", "386", []string{"linux/x86", "linux"}},
		{"darwin arm64", "darwin", "arm64", []string{"darwin/arm64", "darwin"}},
		{"windows collapses", "windows", "amd64", []string{"win", "win32"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Resolver{goos: tt.goos, goarch: tt.goarch}
			assert.Equal(t, tt.want, r.platformTags())
		})
	}
}

func TestWindowsBinariesGetExeSuffix(t *testing.T) {
	r := &Resolver{binDir: "/bins", goos: "windows"}
	assert.Equal(t, filepath.Join("/bins", "optipng.exe"), r.binPath("optipng"))
}
