package session

import (
	"fmt"
	"path/filepath"

	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// Snappy discards the logical hierarchy and rebuilds it by walking the
// physical base path, so that the session mirrors whatever exists on
// disk. Discovered entries are aliased by their name when that alias is
// still free, by their base-relative path otherwise, and are never
// temporary. The current position returns to the root, the navigation
// history is cleared and the root-bound flag is set as given.
func (s *Session) Snappy(rootBound bool) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	entry, err := s.backend.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("(session-snappy) %w", err)
	}
	if entry.Kind != schema.KindDirectory {
		return fmt.Errorf("(session-snappy) %w: %q", ErrNotADirectory, s.basePath)
	}

	fresh := tree.New(s.basePath, entry.Mode, s.backend)

	if err := s.discover(fresh, fresh.Root(), s.basePath); err != nil {
		return err
	}

	s.tree = fresh
	s.current = fresh.Root()
	s.history = nil
	s.rootBound = rootBound

	s.autosave()

	return nil
}

// discover mirrors one physical directory into the given tree, descending
// into subdirectories. The structure document at the base root is not
// mirrored, it describes the hierarchy rather than being part of it.
func (s *Session) discover(t *tree.Tree, parent *tree.Node, dirPath string) error {
	entries, err := s.backend.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("(session-snappy) %w", err)
	}

	for _, entry := range entries {
		if parent.IsRoot() && entry.Name == s.documentName {
			continue
		}

		alias := entry.Name
		if _, err := t.Find(alias); err == nil {
			rel, err := filepath.Rel(s.basePath, filepath.Join(dirPath, entry.Name))
			if err != nil {
				return fmt.Errorf("(session-snappy) %w", err)
			}
			alias = rel
		}

		n, err := t.Attach(parent, tree.CreateSpec{
			Alias: alias,
			Path:  entry.Name,
			Kind:  entry.Kind,
			Mode:  entry.Mode,
		})
		if err != nil {
			return fmt.Errorf("(session-snappy) %w", err)
		}

		if entry.Kind == schema.KindDirectory {
			if err := s.discover(t, n, filepath.Join(dirPath, entry.Name)); err != nil {
				return err
			}
		}
	}

	return nil
}
