package session

import (
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"

	"github.com/KernelPryanic/fs-manager/internal/pathing"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// Cd moves the current position to the directory carrying the given
// alias. Unless the session is root-bound, the target must be a strict
// descendant of the current position; a directory outside that scope
// fails with [tree.ErrUnknownAlias] just like an alias that does not
// exist at all. The prior position is pushed for [Session.Back].
func (s *Session) Cd(alias string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	n, err := s.tree.Find(alias)
	if err != nil {
		return fmt.Errorf("(session-cd) %w", err)
	}

	if n.Kind() != schema.KindDirectory {
		return fmt.Errorf("(session-cd) %w: %q", ErrNotADirectory, alias)
	}

	if !s.rootBound && !descends(s.current, n) {
		return fmt.Errorf("(session-cd) %w: %q is not below the current position",
			tree.ErrUnknownAlias, alias)
	}

	s.history = append(s.history, s.current)
	s.current = n

	return nil
}

// Back returns the current position to the immediately previous one,
// regardless of depth. An exhausted history fails with [ErrNoHistory].
func (s *Session) Back() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	if len(s.history) == 0 {
		return fmt.Errorf("(session-back) %w", ErrNoHistory)
	}

	s.current = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]

	return nil
}

// Up moves the current position to its structural parent, regardless of
// how the position was reached. The prior position is pushed for
// [Session.Back]. At the root of the hierarchy, Up fails with [ErrAtRoot].
func (s *Session) Up() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	if s.current.IsRoot() {
		return fmt.Errorf("(session-up) %w", ErrAtRoot)
	}

	s.history = append(s.history, s.current)
	s.current = s.current.Parent()

	return nil
}

// Ls returns an iterator over the immediate children of the current
// position, yielding alias and kind in insertion order. The iterator is
// restartable and always reflects the live state at iteration time.
func (s *Session) Ls() iter.Seq2[string, schema.Kind] {
	return func(yield func(string, schema.Kind) bool) {
		for _, child := range s.current.Children() {
			if !yield(child.Alias(), child.Kind()) {
				return
			}
		}
	}
}

// Pwd returns the absolute physical path of the current position.
func (s *Session) Pwd() string {
	return s.current.Path()
}

// Find returns the node carrying the given alias, logging a warning when
// its physical backing no longer exists.
func (s *Session) Find(alias string) (*tree.Node, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	n, err := s.tree.Find(alias)
	if err != nil {
		return nil, err
	}

	if exists, err := s.backend.Exists(n.Path()); err == nil && !exists {
		slog.Warn("Session: node has no physical backing", "alias", alias, "path", n.Path())
	}

	return n, nil
}

// File returns the file node carrying the given alias, failing with
// [ErrNotAFile] when the alias names a directory.
func (s *Session) File(alias string) (*tree.Node, error) {
	n, err := s.Find(alias)
	if err != nil {
		return nil, err
	}

	if n.Kind() != schema.KindFile {
		return nil, fmt.Errorf("(session-file) %w: %q", ErrNotAFile, alias)
	}

	return n, nil
}

// Dir returns the directory node carrying the given alias, failing with
// [tree.ErrNotADirectory] when the alias names a file.
func (s *Session) Dir(alias string) (*tree.Node, error) {
	n, err := s.Find(alias)
	if err != nil {
		return nil, err
	}

	if n.Kind() != schema.KindDirectory {
		return nil, fmt.Errorf("(session-dir) %w: %q", ErrNotADirectory, alias)
	}

	return n, nil
}

// AbsPath resolves a path relative to the current position into an
// absolute one, rejecting segments that would escape the base subtree.
// The empty path resolves to the current position itself.
func (s *Session) AbsPath(rel string) (string, error) {
	if err := s.ensureOpen(); err != nil {
		return "", err
	}

	if rel == "" {
		return s.current.Path(), nil
	}

	relPath, err := pathing.Localize(rel)
	if err != nil {
		return "", fmt.Errorf("(session-abspath) %w", err)
	}

	return filepath.Join(s.current.Path(), relPath), nil
}

// Exists returns whether a physical entity exists at the given path
// relative to the current position.
func (s *Session) Exists(rel string) (bool, error) {
	path, err := s.AbsPath(rel)
	if err != nil {
		return false, err
	}

	exists, err := s.backend.Exists(path)
	if err != nil {
		return false, fmt.Errorf("(session-exists) %w", err)
	}

	return exists, nil
}

// descends returns whether the given node hangs strictly below the given
// ancestor.
func descends(ancestor, n *tree.Node) bool {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p == ancestor {
			return true
		}
	}

	return false
}
