package session

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/KernelPryanic/fs-manager/internal/pathing"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// MakeOptions configure a single [Session.Mkdir] or [Session.Mkfile]
// call. Every field is independently optional: an empty alias draws a
// generated one, an empty path reuses the alias, and nil mode/temporary
// inherit the session defaults.
type MakeOptions struct {
	Alias     string
	Path      string
	Mode      *fs.FileMode
	Temporary *bool
}

// CopyOptions configure a single [Session.Cp] call. An empty alias draws
// a generated one for the copy.
type CopyOptions struct {
	Alias string
}

// Mkdir creates a directory underneath the current position, physically
// and logically. Intermediate directories of a multi-segment path are
// physically created with the session's directory mode but stay
// untracked logically.
func (s *Session) Mkdir(opts MakeOptions) (*tree.Node, error) {
	return s.make("session-mkdir", opts, schema.KindDirectory, s.dirMode)
}

// Mkfile creates a file underneath the current position, physically and
// logically. Intermediate directories of a multi-segment path are
// physically created with the session's directory mode but stay
// untracked logically.
func (s *Session) Mkfile(opts MakeOptions) (*tree.Node, error) {
	return s.make("session-mkfile", opts, schema.KindFile, s.fileMode)
}

func (s *Session) make(op string, opts MakeOptions, kind schema.Kind, defaultMode fs.FileMode) (*tree.Node, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	alias := opts.Alias
	if alias == "" {
		alias = s.generateAlias(kind)
	}

	path := opts.Path
	if path == "" {
		path = alias
	}

	mode := defaultMode
	if opts.Mode != nil {
		mode = *opts.Mode
	}

	temporary := s.temporary
	if opts.Temporary != nil {
		temporary = *opts.Temporary
	}

	relPath, err := pathing.Localize(path)
	if err != nil {
		return nil, fmt.Errorf("(%s) %w", op, err)
	}

	if err := s.prepareParents(relPath); err != nil {
		return nil, fmt.Errorf("(%s) %w", op, err)
	}

	n, err := s.tree.CreateChild(s.current, tree.CreateSpec{
		Alias:     alias,
		Path:      relPath,
		Kind:      kind,
		Mode:      mode,
		Temporary: temporary,
	})
	if err != nil {
		return nil, fmt.Errorf("(%s) %w", op, err)
	}

	s.autosave()

	return n, nil
}

// Rm removes the node carrying the given alias together with all of its
// descendants, physically and logically. When the current position falls
// inside the removed subtree, it is rescued to the removed node's former
// parent; positions no longer part of the hierarchy are also purged from
// the navigation history. Partial physical failures surface as
// [*tree.PartialRemovalError] while the hierarchy stays consistent.
func (s *Session) Rm(alias string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	n, err := s.tree.Find(alias)
	if err != nil {
		return fmt.Errorf("(session-rm) %w", err)
	}

	fallback := n.Parent()

	removeErr := s.tree.Remove(alias)

	if !s.current.Attached() {
		s.current = fallback
	}

	s.history = slices.DeleteFunc(s.history, func(h *tree.Node) bool {
		return !h.Attached()
	})

	s.autosave()

	if removeErr != nil {
		return fmt.Errorf("(session-rm) %w", removeErr)
	}

	return nil
}

// Chmod applies the given permission mode to the node carrying the given
// alias, physically first and logically on success.
func (s *Session) Chmod(alias string, mode fs.FileMode) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	if err := s.tree.Chmod(alias, mode); err != nil {
		return fmt.Errorf("(session-chmod) %w", err)
	}

	s.autosave()

	return nil
}

// Mv physically renames the node carrying the given alias to the given
// path relative to the current position and re-links it there; the alias
// and the node's subtree travel with it. Intermediate directories of a
// multi-segment destination are physically created but stay untracked
// logically.
func (s *Session) Mv(alias, dst string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	relPath, err := pathing.Localize(dst)
	if err != nil {
		return fmt.Errorf("(session-mv) %w", err)
	}

	if err := s.prepareParents(relPath); err != nil {
		return fmt.Errorf("(session-mv) %w", err)
	}

	if err := s.tree.Move(alias, s.current, relPath); err != nil {
		return fmt.Errorf("(session-mv) %w", err)
	}

	s.autosave()

	return nil
}

// Cp physically copies the node carrying the given alias (files byte for
// byte, directories recursively) to the given path relative to the
// current position, and links the copy there under a new alias. Only the
// top of a copied subtree is tracked logically.
func (s *Session) Cp(alias, dst string, opts CopyOptions) (*tree.Node, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}

	src, err := s.tree.Find(alias)
	if err != nil {
		return nil, fmt.Errorf("(session-cp) %w", err)
	}

	relPath, err := pathing.Localize(dst)
	if err != nil {
		return nil, fmt.Errorf("(session-cp) %w", err)
	}

	newAlias := opts.Alias
	if newAlias == "" {
		newAlias = s.generateAlias(src.Kind())
	}

	if _, err := s.tree.Find(newAlias); err == nil {
		return nil, fmt.Errorf("(session-cp) %w: %q", tree.ErrDuplicateAlias, newAlias)
	}

	if err := s.prepareParents(relPath); err != nil {
		return nil, fmt.Errorf("(session-cp) %w", err)
	}

	if err := s.backend.CopyTree(src.Path(), filepath.Join(s.current.Path(), relPath)); err != nil {
		return nil, fmt.Errorf("(session-cp) %w", err)
	}

	n, err := s.tree.Attach(s.current, tree.CreateSpec{
		Alias:     newAlias,
		Path:      relPath,
		Kind:      src.Kind(),
		Mode:      src.Mode(),
		Temporary: src.Temporary(),
	})
	if err != nil {
		return nil, fmt.Errorf("(session-cp) %w", err)
	}

	s.autosave()

	return n, nil
}

// OpenFile opens the physical backing of the file node carrying the
// given alias with the given flag. The caller owns the returned handle.
func (s *Session) OpenFile(alias string, flag int) (*os.File, error) {
	n, err := s.File(alias)
	if err != nil {
		return nil, err
	}

	f, err := s.backend.OpenFile(n.Path(), flag, n.Mode())
	if err != nil {
		return nil, fmt.Errorf("(session-openfile) %w", err)
	}

	return f, nil
}

// prepareParents physically creates the intermediate directories of a
// multi-segment path underneath the current position.
func (s *Session) prepareParents(relPath string) error {
	dir := filepath.Dir(relPath)
	if dir == "." {
		return nil
	}

	return s.backend.CreateParents(filepath.Join(s.current.Path(), dir), s.dirMode)
}
