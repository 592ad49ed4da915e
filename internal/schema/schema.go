// Package schema provides the principal schematics for all other packages. It
// defines the filesystem node kinds, the backend contract for all physical
// filesystem effects and provides implementations for handling (Unix-based)
// operating system syscalls. The package serves as a foundational layer for
// filesystem interactions throughout the codebase.
package schema

import (
	"io/fs"
	"os"
)

const (
	// KindDirectory designates a node that is a directory.
	KindDirectory Kind = "dir"

	// KindFile designates a node that is a regular file.
	KindFile Kind = "file"
)

const (
	// DefaultDirMode is the permission set applied to created directories
	// when no other mode was given.
	DefaultDirMode fs.FileMode = 0o700

	// DefaultFileMode is the permission set applied to created files when
	// no other mode was given.
	DefaultFileMode fs.FileMode = 0o600
)

// Kind is the type of a managed filesystem node.
type Kind string

// Valid returns whether a [Kind] is one of the known node kinds.
func (k Kind) Valid() bool {
	return k == KindDirectory || k == KindFile
}

// Entry describes a single physical filesystem entry, as reported by a
// [Backend] when stating or listing paths.
type Entry struct {
	Name string
	Kind Kind
	Mode fs.FileMode
	Size int64
}

// Backend describes all physical filesystem effects available to the managed
// tree. It is the only layer performing actual filesystem calls, so that all
// physical state remains swappable and mockable underneath the logical state.
type Backend interface {
	Create(path string, kind Kind, mode fs.FileMode) error
	CreateParents(path string, mode fs.FileMode) error
	Remove(path string) error
	RemoveAll(path string) error
	Rename(oldPath, newPath string) error
	Chmod(path string, mode fs.FileMode) error
	CopyFile(srcPath, dstPath string, mode fs.FileMode) error
	CopyTree(srcPath, dstPath string) error
	OpenFile(path string, flag int, mode fs.FileMode) (*os.File, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, mode fs.FileMode) error
	ReadDir(path string) ([]Entry, error)
	Stat(path string) (Entry, error)
	Exists(path string) (bool, error)
}
