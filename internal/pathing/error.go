package pathing

import "errors"

var (
	// ErrPathEmpty is an error that occurs when an empty relative path is
	// given where an entity inside the base subtree needs to be named.
	ErrPathEmpty = errors.New("path is empty")

	// ErrPathEscapesBase is an error that occurs when a given path is
	// absolute or would traverse outside of the base subtree it is meant
	// to be relative to.
	ErrPathEscapesBase = errors.New("path escapes the base directory")
)
