package session

import (
	"fmt"

	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// SaveAll persists the full logical hierarchy and the hashsum ledger as
// the session's structure document inside the base path.
func (s *Session) SaveAll() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	return s.codec.Save(s.tree, s.ledger, s.documentName)
}

// LoadAll reconstructs logical state from the session's structure
// document, replacing the live hierarchy with the recorded one and
// merging the recorded hashsum ledger over the live one. The current
// position returns to the root and the navigation history is cleared;
// on failure the live hierarchy stays untouched. Only logical state is
// restored; physical backing is not recreated, so access to a
// since-vanished path surfaces a backend failure at that point.
func (s *Session) LoadAll() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	entry, err := s.backend.Stat(s.basePath)
	if err != nil {
		return fmt.Errorf("(session-load) %w", err)
	}

	fresh := tree.New(s.basePath, entry.Mode, s.backend)

	ledger, err := s.codec.Load(fresh, s.documentName)
	if err != nil {
		return err
	}

	s.tree = fresh
	s.current = fresh.Root()
	s.history = nil

	s.ledger.Merge(ledger)

	return nil
}
