// Package pathutil validates where generated artifacts may be written.
package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StateDir is the per-project directory holding serialtemp's own files,
// such as the decision log. Artifacts may not be written into it.
const StateDir = ".serialtemp"

// ErrOutsideRoot is returned for artifact paths that escape the project root.
var ErrOutsideRoot = errors.New("path is outside the project root")

// RedactPath reduces a full path to .../<parent>/<basename> for error messages.
func RedactPath(path string) string {
	if path == "" {
		return ""
	}
	cleaned := filepath.Clean(path)
	base := filepath.Base(cleaned)
	parent := filepath.Base(filepath.Dir(cleaned))
	if parent == "." || parent == string(filepath.Separator) {
		return base
	}
	return ".../" + parent + "/" + base
}

// ResolveOutput turns a user-supplied artifact path into an absolute one.
// Relative paths are taken from root. After symlinks on existing ancestors
// are resolved the file must lie below root and outside its StateDir.
func ResolveOutput(path, root string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("invalid output path: path is empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return "", fmt.Errorf("invalid output path: path contains null byte")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	rootAbs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid project root: %w", err)
	}

	// The artifact usually does not exist yet, so only its directory is resolved.
	dir, err := resolveExistingParent(filepath.Dir(absPath))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	resolved := filepath.Join(dir, filepath.Base(absPath))
	resolvedRoot, err := resolveExistingParent(rootAbs)
	if err != nil {
		return "", fmt.Errorf("invalid project root: %w", err)
	}

	if resolved == resolvedRoot || !isSubpath(resolved, resolvedRoot) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, RedactPath(absPath))
	}
	if isSubpath(resolved, filepath.Join(resolvedRoot, StateDir)) {
		return "", fmt.Errorf("invalid output path: %s is reserved for serialtemp state", StateDir)
	}
	return absPath, nil
}

// resolveExistingParent resolves symlinks on the deepest existing ancestor
// of dir and re-appends the missing tail.
func resolveExistingParent(dir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		return resolved, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir {
		return "", fmt.Errorf("cannot resolve path: %s", RedactPath(dir))
	}

	resolvedParent, err := resolveExistingParent(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolvedParent, filepath.Base(dir)), nil
}

// isSubpath reports whether path equals base or lies beneath it.
func isSubpath(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(os.PathSeparator))
}
