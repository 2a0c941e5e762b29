// Package pathmap computes destination paths for minified files. All
// functions are pure path math; nothing here touches the filesystem.
package pathmap

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidPath is returned when the target directory cannot be resolved
// to an absolute path while base-path structure preservation is requested.
var ErrInvalidPath = errors.New("invalid target path")

// Target computes the destination path for a single source file.
//
// With an empty basePath the source file lands directly in targetDir under
// its own basename. With a basePath, the portion of the source directory
// that follows the basePath segment is reproduced under targetDir, so a
// tree like assets/img/icons/x.png minified with base "assets/img" ends up
// at {targetDir}/icons/x.png.
func Target(sourcePath, targetDir, basePath string) (string, error) {
	if basePath == "" {
		return filepath.Join(targetDir, filepath.Base(sourcePath)), nil
	}

	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidPath, targetDir, err)
	}

	sourceDir := filepath.Dir(sourcePath)
	sub := subPathAfter(sourceDir, basePath)

	return filepath.Join(absTarget, sub, filepath.Base(sourcePath)), nil
}

// subPathAfter returns the portion of dir that follows the base segment,
// or "" when base does not occur in dir. Both sides are compared with
// slash-normalized separators so Windows paths behave the same.
func subPathAfter(dir, base string) string {
	normDir := filepath.ToSlash(dir)
	normBase := strings.Trim(filepath.ToSlash(base), "/")
	if normBase == "" {
		return ""
	}

	idx := strings.Index(normDir, normBase)
	if idx < 0 {
		return ""
	}

	rest := strings.Trim(normDir[idx+len(normBase):], "/")
	return filepath.FromSlash(rest)
}
