// Package pathing provides lexical path validation and resolution for the
// managed base directory. Every relative path entering the system passes
// through here, so that no logical node can ever point outside of the base
// subtree.
package pathing

import (
	"fmt"
	"path/filepath"
)

// Localize validates that a relative path names an entity inside the subtree
// it is relative to, using lexical analysis only. It returns the cleaned
// path. Absolute paths, empty paths, the bare ".", and paths traversing
// upwards out of the subtree all fail with [ErrPathEscapesBase] or
// [ErrPathEmpty].
func Localize(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("(pathing-localize) %w", ErrPathEmpty)
	}

	cleaned := filepath.Clean(relPath)

	if cleaned == "." || !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("(pathing-localize) %w: %q", ErrPathEscapesBase, relPath)
	}

	return cleaned, nil
}

// Resolve validates a relative path with [Localize] and joins it onto the
// given absolute base path.
func Resolve(basePath string, relPath string) (string, error) {
	cleaned, err := Localize(relPath)
	if err != nil {
		return "", err
	}

	return filepath.Join(basePath, cleaned), nil
}
