package backend

import "errors"

var (
	// ErrBackend is an umbrella error that wraps any failure of the physical
	// filesystem layer, so that callers can distinguish physical failures
	// from logical ones without knowing the underlying syscall details.
	ErrBackend = errors.New("backend failure")

	// ErrKindCollision is an error that occurs when a path to be created
	// already exists as an entity of a different kind (a file where a
	// directory was requested, or vice versa).
	ErrKindCollision = errors.New("path exists as different kind")

	// ErrUnknownKind is a type error that occurs when a creation request
	// carries a node kind the backend does not know how to create.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrHashMismatch is an error that occurs when there is a source/copy
	// hash mismatch, this usually means that there are underlying
	// transfer/hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrRenameExists is an error that occurs when a completed copy is to be
	// renamed to its final filename, but that final filename already exists.
	ErrRenameExists = errors.New("rename destination already exists")
)
