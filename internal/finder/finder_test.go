package finder

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	return path
}

func TestFindDirectoryCollectsImagesRecursively(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "sub", "b.JPG"))
	touch(t, filepath.Join(dir, "sub", "deep", "c.svg"))
	touch(t, filepath.Join(dir, "readme.md"))

	files, err := NewGlobFinder().Find([]string{dir})
	require.NoError(t, err)

	require.Len(t, files, 3)
	assert.True(t, sort.StringsAreSorted(files))
	for _, f := range files {
		assert.True(t, filepath.IsAbs(f))
	}
	assert.Equal(t, "a.png", filepath.Base(files[0]))
}

func TestFindGlobPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "c.gif"))

	files, err := NewGlobFinder().Find([]string{filepath.Join(dir, "*.png")})
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "a.png", filepath.Base(files[0]))
	assert.Equal(t, "b.png", filepath.Base(files[1]))
}

func TestFindDeduplicatesAcrossPatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"))

	files, err := NewGlobFinder().Find([]string{
		filepath.Join(dir, "*.png"),
		filepath.Join(dir, "a.*"),
	})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFindNoMatches(t *testing.T) {
	files, err := NewGlobFinder().Find([]string{filepath.Join(t.TempDir(), "*.png")})
	require.NoError(t, err)
	assert.Empty(t, files)
}
