// Package security confines the paths handled by the service to its
// configured directories.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideSandbox is returned for a path that escapes every root.
var ErrOutsideSandbox = errors.New("path is outside the configured directories")

// Sandbox validates paths against a set of root directories.
type Sandbox struct {
	roots []string
}

// NewSandbox creates a sandbox over roots. Roots need not exist yet.
func NewSandbox(roots ...string) (*Sandbox, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("sandbox needs at least one directory")
	}
	s := &Sandbox{}
	for _, r := range roots {
		if r == "" {
			return nil, fmt.Errorf("configured directory cannot be empty")
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve directory %s: %w", r, err)
		}
		s.roots = append(s.roots, filepath.Clean(abs))
	}
	return s, nil
}

// Roots returns the absolute root directories.
func (s *Sandbox) Roots() []string {
	return append([]string(nil), s.roots...)
}

// Resolve returns the absolute form of path, joined to base when relative,
// after checking that it stays inside one of the roots. Null bytes are
// stripped first.
func (s *Sandbox) Resolve(base, path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if !filepath.IsAbs(path) {
		if base == "" {
			base = s.roots[0]
		}
		path = filepath.Join(base, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	if !s.Contains(abs) {
		return "", fmt.Errorf("%s: %w", path, ErrOutsideSandbox)
	}
	return abs, nil
}

// Contains reports whether path lies inside one of the roots, checking
// both the cleaned path and, when it is a symlink, its target.
func (s *Sandbox) Contains(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	clean := filepath.Clean(abs)

	real := clean
	if info, err := os.Lstat(clean); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(clean); err == nil {
			real = resolved
		}
	}

	for _, root := range s.roots {
		if within(clean, root) && within(real, root) {
			return true
		}
	}
	return false
}

// within matches path against dir and against dir with its symlinks
// resolved.
func within(path, dir string) bool {
	dirs := []string{dir}
	if resolved, err := filepath.EvalSymlinks(dir); err == nil && resolved != dir {
		dirs = append(dirs, resolved)
	}
	for _, d := range dirs {
		withSep := d
		if !strings.HasSuffix(withSep, string(filepath.Separator)) {
			withSep += string(filepath.Separator)
		}
		if path == d || strings.HasPrefix(path, withSep) {
			return true
		}
	}
	return false
}
