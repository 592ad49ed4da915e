package hashsum

import "errors"

var (
	// ErrUnsupportedAlgorithm is returned when a digest algorithm is not
	// part of the registry.
	ErrUnsupportedAlgorithm = errors.New("algorithm is not supported")

	// ErrAlgorithmMismatch is returned when a verification requests a
	// different algorithm than the one a record was captured with.
	ErrAlgorithmMismatch = errors.New("algorithm differs from the recorded one")
)
