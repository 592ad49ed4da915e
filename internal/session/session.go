// Package session implements the stateful, navigable view over one managed
// base directory: a cursor inside the logical hierarchy, the navigation and
// mutation state machine around it, and the scoped lifecycle tearing down
// temporary state when the session ends. All physical effects run through
// the [schema.Backend] of the session.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"slices"
	"sync/atomic"

	"github.com/KernelPryanic/fs-manager/internal/backend"
	"github.com/KernelPryanic/fs-manager/internal/codec"
	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/queue"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
	"github.com/KernelPryanic/fs-manager/internal/validation"
	"github.com/google/uuid"
)

// Options configure a [Session] to be opened.
type Options struct {
	// BasePath is the directory the session manages. It is created,
	// parents included, when it does not yet exist.
	BasePath string

	// DirMode is the session default permission set for directories;
	// [schema.DefaultDirMode] when left zero.
	DirMode fs.FileMode

	// FileMode is the session default permission set for files;
	// [schema.DefaultFileMode] when left zero.
	FileMode fs.FileMode

	// Temporary marks the whole session as scoped: closing it removes the
	// base path with everything underneath. Nodes created by a temporary
	// session default to temporary as well.
	Temporary bool

	// RandPrefix appends a randomized directory underneath the base path
	// and roots the session there, keeping repeated runs apart.
	RandPrefix bool

	// RootBound allows navigation to any directory of the hierarchy
	// instead of only descendants of the current position.
	RootBound bool

	// Algorithm is the session default digest algorithm;
	// [hashsum.DefaultAlgorithm] when left empty.
	Algorithm hashsum.Algorithm

	// DocumentName is the filename of the structure document inside the
	// base path; [codec.StructureFile] when left empty.
	DocumentName string

	// Backend performs the session's physical filesystem effects; the
	// operating system backend when left nil.
	Backend schema.Backend
}

// Session is the principal implementation structure for a stateful view
// over one base directory. It is not safe for concurrent mutation; one
// writer per base path is assumed.
type Session struct {
	backend schema.Backend
	tree    *tree.Tree
	codec   *codec.Handler
	hasher  *hashsum.Handler

	current *tree.Node
	history []*tree.Node
	ledger  hashsum.Ledger

	basePath     string
	documentName string
	dirMode      fs.FileMode
	fileMode     fs.FileMode
	temporary    bool
	rootBound    bool
	algorithm    hashsum.Algorithm

	aliasCounts map[schema.Kind]int
	hashBatch   atomic.Pointer[queue.HashQueue]
	closed      bool
}

// Open establishes a [Session] over the base path of the given [Options],
// physically creating the base directory when missing. Sessions that are
// not temporary load an existing structure document right away, so that
// re-opening a base path deterministically observes the prior structure.
func Open(opts Options) (*Session, error) {
	if opts.BasePath == "" {
		return nil, fmt.Errorf("(session-open) %w", ErrNoBasePath)
	}

	be := opts.Backend
	if be == nil {
		be = backend.NewHandler(&schema.OS{}, &schema.Unix{})
	}

	dirMode := opts.DirMode
	if dirMode == 0 {
		dirMode = schema.DefaultDirMode
	}

	fileMode := opts.FileMode
	if fileMode == 0 {
		fileMode = schema.DefaultFileMode
	}

	algorithm := opts.Algorithm
	if algorithm == "" {
		algorithm = hashsum.DefaultAlgorithm
	}
	if !algorithm.Valid() {
		return nil, fmt.Errorf("(session-open) %w: %q", hashsum.ErrUnsupportedAlgorithm, algorithm)
	}

	documentName := opts.DocumentName
	if documentName == "" {
		documentName = codec.StructureFile
	}

	basePath, err := filepath.Abs(opts.BasePath)
	if err != nil {
		return nil, fmt.Errorf("(session-open) %w", err)
	}

	if opts.RandPrefix {
		basePath = filepath.Join(basePath, "fsm-"+uuid.NewString())
	}

	exists, err := be.Exists(basePath)
	if err != nil {
		return nil, fmt.Errorf("(session-open) %w", err)
	}
	if !exists {
		if err := be.CreateParents(basePath, dirMode); err != nil {
			return nil, fmt.Errorf("(session-open) %w", err)
		}
	}

	entry, err := be.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("(session-open) %w", err)
	}
	if entry.Kind != schema.KindDirectory {
		return nil, fmt.Errorf("(session-open) %w: %q", ErrNotADirectory, basePath)
	}

	s := &Session{
		backend:      be,
		tree:         tree.New(basePath, entry.Mode, be),
		codec:        codec.NewHandler(be),
		hasher:       hashsum.NewHandler(be),
		ledger:       hashsum.NewLedger(),
		basePath:     basePath,
		documentName: documentName,
		dirMode:      dirMode,
		fileMode:     fileMode,
		temporary:    opts.Temporary,
		rootBound:    opts.RootBound,
		algorithm:    algorithm,
		aliasCounts:  map[schema.Kind]int{},
	}
	s.current = s.tree.Root()

	if !s.temporary {
		docExists, err := be.Exists(filepath.Join(basePath, documentName))
		if err != nil {
			return nil, fmt.Errorf("(session-open) %w", err)
		}

		if docExists {
			if err := s.LoadAll(); err != nil {
				return nil, fmt.Errorf("(session-open) %w", err)
			}
		}
	}

	return s, nil
}

// Close tears down the session's scope: a temporary session physically
// removes its whole base path, a durable one removes all its temporary
// nodes (deepest first) and persists the remaining structure. Close can
// be called on every exit path; calls after the first fail with
// [ErrSessionClosed].
func (s *Session) Close() error {
	if s.closed {
		return fmt.Errorf("(session-close) %w", ErrSessionClosed)
	}
	s.closed = true

	if s.temporary {
		if err := s.backend.RemoveAll(s.basePath); err != nil {
			return fmt.Errorf("(session-close) %w", err)
		}

		return nil
	}

	var errs []error

	var temps []*tree.Node
	s.tree.Walk(s.tree.Root(), func(n *tree.Node) bool {
		if !n.IsRoot() && n.Temporary() {
			temps = append(temps, n)
		}

		return true
	})

	slices.SortFunc(temps, func(a, b *tree.Node) int {
		return b.Depth() - a.Depth()
	})

	for _, n := range temps {
		if !n.Attached() {
			continue
		}

		if err := s.tree.Remove(n.Alias()); err != nil {
			errs = append(errs, fmt.Errorf("(session-close) %w", err))
		}
	}

	if err := s.codec.Save(s.tree, s.ledger, s.documentName); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Base returns the absolute base path the session is rooted at.
func (s *Session) Base() string {
	return s.basePath
}

// Tree returns the session's logical hierarchy.
func (s *Session) Tree() *tree.Tree {
	return s.tree
}

// Backend returns the [schema.Backend] performing the session's physical
// filesystem effects.
func (s *Session) Backend() schema.Backend {
	return s.backend
}

// Current returns the node of the session's current position.
func (s *Session) Current() *tree.Node {
	return s.current
}

// Temporary returns whether the whole session is scoped for removal.
func (s *Session) Temporary() bool {
	return s.temporary
}

// RootBound returns whether navigation may address any directory of the
// hierarchy instead of only descendants of the current position.
func (s *Session) RootBound() bool {
	return s.rootBound
}

// Algorithm returns the session's default digest algorithm.
func (s *Session) Algorithm() hashsum.Algorithm {
	return s.algorithm
}

// Verify checks the logical hierarchy against the physical filesystem,
// reporting all drift findings as a joined error.
func (s *Session) Verify() error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	return validation.ValidateTree(s.tree, s.backend)
}

// HashProgress returns the progress of the most recent hashsum batch, or
// a zero progress when none ran yet. It is safe to call concurrently
// with a running batch, so progress displays can poll it.
func (s *Session) HashProgress() queue.Progress {
	q := s.hashBatch.Load()
	if q == nil {
		return queue.Progress{}
	}

	return q.Progress()
}

// ensureOpen guards operations against use after [Session.Close].
func (s *Session) ensureOpen() error {
	if s.closed {
		return fmt.Errorf("(session) %w", ErrSessionClosed)
	}

	return nil
}

// autosave persists the structure document after a mutation of a durable
// session. The mutation itself already succeeded, so a failing save is
// only logged; the next save or the teardown will retry.
func (s *Session) autosave() {
	if s.temporary {
		return
	}

	if err := s.codec.Save(s.tree, s.ledger, s.documentName); err != nil {
		slog.Warn("Session: failed to auto-save structure document", "err", err)
	}
}
