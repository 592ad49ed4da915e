package main

import "errors"

var (
	// ErrHashsumsMismatched occurs when a hashsum verification found files
	// diverging from their recorded hashsums.
	ErrHashsumsMismatched = errors.New("hashsums mismatched")
)
