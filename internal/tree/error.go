package tree

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDuplicateAlias is returned when an alias is already taken by
	// another node of the same tree.
	ErrDuplicateAlias = errors.New("alias already exists")

	// ErrUnknownAlias is returned when an alias resolves to no node of
	// the tree.
	ErrUnknownAlias = errors.New("alias does not exist")

	// ErrInvalidAlias is returned when an alias is empty or otherwise
	// unusable for indexing.
	ErrInvalidAlias = errors.New("alias is invalid")

	// ErrNotADirectory is returned when a directory-only operation is
	// attempted on a file node.
	ErrNotADirectory = errors.New("node is not a directory")

	// ErrInvalidKind is returned when a node kind is neither a directory
	// nor a file.
	ErrInvalidKind = errors.New("kind is invalid")

	// ErrDestinationExists is returned when a move destination is already
	// occupied on the filesystem.
	ErrDestinationExists = errors.New("destination already exists")

	// ErrMoveIntoSubtree is returned when a node is moved underneath one
	// of its own descendants.
	ErrMoveIntoSubtree = errors.New("destination is inside the moved subtree")
)

// PartialRemovalError reports a subtree removal that deleted only some of
// the targeted nodes. The aliases still linked remain addressable in the
// tree, so a caller can retry their removal.
type PartialRemovalError struct {
	Aliases []string
}

// Error implements the error interface.
func (e *PartialRemovalError) Error() string {
	return fmt.Sprintf("partial removal, still linked: %s", strings.Join(e.Aliases, ", "))
}
