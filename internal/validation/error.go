package validation

import "errors"

var (
	// ErrFileWithChildren indicates an invalid state where a file node
	// carries children, which shouldn't be possible.
	ErrFileWithChildren = errors.New("file node carries children")

	// ErrKindDrift occurs when a node's logical kind disagrees with the
	// physical entity found at its path.
	ErrKindDrift = errors.New("logical and physical kind differ")

	// ErrMissingBacking occurs when a node's physical backing no longer
	// exists at its recorded path.
	ErrMissingBacking = errors.New("physical backing is missing")

	// ErrModeDrift occurs when a node's logical permission set disagrees
	// with the physical entity found at its path.
	ErrModeDrift = errors.New("logical and physical mode differ")

	// ErrNoAlias occurs when a non-root node carries no alias.
	ErrNoAlias = errors.New("node carries no alias")

	// ErrPathNotLocal occurs when a node's path contribution is not local
	// to its parent.
	ErrPathNotLocal = errors.New("node path is not local")

	// ErrRootAliased occurs when the root node carries a non-empty alias.
	ErrRootAliased = errors.New("root node carries an alias")

	// ErrRootRelative occurs when the root node's base path is provided as
	// relative rather than absolute.
	ErrRootRelative = errors.New("root base path is relative")

	// ErrUnknownKind occurs when a node carries a kind the hierarchy does
	// not know how to handle.
	ErrUnknownKind = errors.New("node carries an unknown kind")
)
