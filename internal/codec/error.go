package codec

import "errors"

var (
	// ErrCorruptStructure is returned when a structure document is
	// malformed beyond use.
	ErrCorruptStructure = errors.New("structure document is corrupt")

	// ErrAliasConflict is returned when a structure document carries the
	// same alias on more than one node.
	ErrAliasConflict = errors.New("structure document aliases collide")
)
