package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KernelPryanic/fs-manager/internal/tree"
)

var (
	// ErrNoBasePath is returned when a session is opened without a base
	// path to manage.
	ErrNoBasePath = errors.New("no base path given")

	// ErrSessionClosed is returned when an operation is attempted on an
	// already closed session.
	ErrSessionClosed = errors.New("session is closed")

	// ErrNoHistory is returned when there is no previous position to
	// return to.
	ErrNoHistory = errors.New("no previous position")

	// ErrAtRoot is returned when an upward navigation is attempted from
	// the root of the hierarchy.
	ErrAtRoot = errors.New("already at the root")

	// ErrNotAFile is returned when a file-only operation is attempted on
	// a directory node.
	ErrNotAFile = errors.New("node is not a file")

	// ErrNotADirectory is [tree.ErrNotADirectory], re-exported so callers
	// can match directory-type failures at the session layer.
	ErrNotADirectory = tree.ErrNotADirectory
)

// PartialHashsumError reports a hashsum capture that digested only some of
// the targeted files. The aliases that could not be read are listed; their
// underlying failures unwrap for inspection.
type PartialHashsumError struct {
	Aliases []string

	errs []error
}

// Error implements the error interface.
func (e *PartialHashsumError) Error() string {
	return fmt.Sprintf("partial hashsum capture, failed: %s", strings.Join(e.Aliases, ", "))
}

// Unwrap returns the underlying per-file failures.
func (e *PartialHashsumError) Unwrap() []error {
	return e.errs
}
