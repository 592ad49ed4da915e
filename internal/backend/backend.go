// Package backend implements the physical filesystem layer underneath the
// logical tree. All operating system effects of the application pass through
// the [Handler], so that logical state and physical state remain separable
// and the physical side stays mockable in tests.
package backend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KernelPryanic/fs-manager/internal/schema"
)

type osProvider interface {
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	ReadDir(name string) ([]os.DirEntry, error)
	ReadFile(name string) ([]byte, error)
	Remove(name string) error
	RemoveAll(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
}

type unixProvider interface {
	Chmod(path string, mode uint32) error
	Mkdir(path string, mode uint32) error
}

// Handler is the principal implementation of the [schema.Backend] contract,
// performing physical filesystem operations through injected syscall
// providers.
type Handler struct {
	OSOps   osProvider
	UnixOps unixProvider
}

var _ schema.Backend = (*Handler)(nil)

// NewHandler returns a pointer to a new backend [Handler].
func NewHandler(osOps osProvider, unixOps unixProvider) *Handler {
	return &Handler{
		OSOps:   osOps,
		UnixOps: unixOps,
	}
}

// Create physically creates a directory or file at the given path, applying
// the given permission mode. An already existing entity of the same kind is
// accepted and has the mode applied; an existing entity of a different kind
// fails with [ErrKindCollision]. Creation happens with an explicit chmod
// after the creating syscall, so the process umask cannot thin out the
// requested permission set.
func (h *Handler) Create(path string, kind schema.Kind, mode fs.FileMode) error {
	info, err := h.OSOps.Stat(path)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		switch kind {
		case schema.KindDirectory:
			if err := h.UnixOps.Mkdir(path, uint32(mode.Perm())); err != nil {
				return fmt.Errorf("(backend-create) %w: %w", ErrBackend, err)
			}

		case schema.KindFile:
			f, err := h.OSOps.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode.Perm())
			if err != nil {
				return fmt.Errorf("(backend-create) %w: %w", ErrBackend, err)
			}
			f.Close()

		default:
			return fmt.Errorf("(backend-create) %w: %w", ErrBackend, ErrUnknownKind)
		}

	case err != nil:
		return fmt.Errorf("(backend-create) %w: %w", ErrBackend, err)

	default:
		if info.IsDir() != (kind == schema.KindDirectory) {
			return fmt.Errorf("(backend-create) %w: %w", ErrBackend, ErrKindCollision)
		}
	}

	if err := h.UnixOps.Chmod(path, uint32(mode.Perm())); err != nil {
		return fmt.Errorf("(backend-create) %w: %w", ErrBackend, err)
	}

	return nil
}

// CreateParents physically creates all missing directories of the given
// (absolute) path, applying the given permission mode to each directory it
// creates. Already existing directories along the path are left untouched.
func (h *Handler) CreateParents(path string, mode fs.FileMode) error {
	parts := strings.Split(filepath.Clean(path), string(filepath.Separator))
	walked := string(filepath.Separator)

	for _, part := range parts {
		if part == "" {
			continue
		}
		walked = filepath.Join(walked, part)

		if _, err := h.OSOps.Stat(walked); errors.Is(err, fs.ErrNotExist) {
			if err := h.UnixOps.Mkdir(walked, uint32(mode.Perm())); err != nil {
				return fmt.Errorf("(backend-parents) %w: %w", ErrBackend, err)
			}
			if err := h.UnixOps.Chmod(walked, uint32(mode.Perm())); err != nil {
				return fmt.Errorf("(backend-parents) %w: %w", ErrBackend, err)
			}
		} else if err != nil {
			return fmt.Errorf("(backend-parents) %w: %w", ErrBackend, err)
		}
	}

	return nil
}

// Remove physically removes the entity at the given path. Directories need to
// be empty for the removal to succeed.
func (h *Handler) Remove(path string) error {
	if err := h.OSOps.Remove(path); err != nil {
		return fmt.Errorf("(backend-remove) %w: %w", ErrBackend, err)
	}

	return nil
}

// RemoveAll physically removes the entity at the given path including any
// contents it may have.
func (h *Handler) RemoveAll(path string) error {
	if err := h.OSOps.RemoveAll(path); err != nil {
		return fmt.Errorf("(backend-removeall) %w: %w", ErrBackend, err)
	}

	return nil
}

// Rename physically renames (moves) an entity to a new path.
func (h *Handler) Rename(oldPath, newPath string) error {
	if err := h.OSOps.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("(backend-rename) %w: %w", ErrBackend, err)
	}

	return nil
}

// Chmod applies the given permission mode to the entity at the given path.
func (h *Handler) Chmod(path string, mode fs.FileMode) error {
	if err := h.UnixOps.Chmod(path, uint32(mode.Perm())); err != nil {
		return fmt.Errorf("(backend-chmod) %w: %w", ErrBackend, err)
	}

	return nil
}

// OpenFile opens the file at the given path with the given open flags,
// creating it with the given permission mode where the flags request that.
func (h *Handler) OpenFile(path string, flag int, mode fs.FileMode) (*os.File, error) {
	f, err := h.OSOps.OpenFile(path, flag, mode.Perm())
	if err != nil {
		return nil, fmt.Errorf("(backend-open) %w: %w", ErrBackend, err)
	}

	return f, nil
}

// ReadFile returns the full contents of the file at the given path.
func (h *Handler) ReadFile(path string) ([]byte, error) {
	data, err := h.OSOps.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("(backend-read) %w: %w", ErrBackend, err)
	}

	return data, nil
}

// WriteFile writes the given contents to the file at the given path, creating
// the file with the given permission mode if it does not exist yet.
func (h *Handler) WriteFile(path string, data []byte, mode fs.FileMode) error {
	if err := h.OSOps.WriteFile(path, data, mode.Perm()); err != nil {
		return fmt.Errorf("(backend-write) %w: %w", ErrBackend, err)
	}

	return nil
}

// ReadDir returns the entries of the directory at the given path, sorted by
// name.
func (h *Handler) ReadDir(path string) ([]schema.Entry, error) {
	dirEntries, err := h.OSOps.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("(backend-readdir) %w: %w", ErrBackend, err)
	}

	entries := make([]schema.Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		info, err := dirEntry.Info()
		if err != nil {
			return nil, fmt.Errorf("(backend-readdir) %w: %w", ErrBackend, err)
		}
		entries = append(entries, entryFromInfo(info))
	}

	return entries, nil
}

// Stat returns the [schema.Entry] describing the entity at the given path.
func (h *Handler) Stat(path string) (schema.Entry, error) {
	info, err := h.OSOps.Stat(path)
	if err != nil {
		return schema.Entry{}, fmt.Errorf("(backend-stat) %w: %w", ErrBackend, err)
	}

	return entryFromInfo(info), nil
}

// Exists returns whether an entity exists at the given path.
func (h *Handler) Exists(path string) (bool, error) {
	if _, err := h.OSOps.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("(backend-exists) %w: %w", ErrBackend, err)
	}

	return true, nil
}

func entryFromInfo(info fs.FileInfo) schema.Entry {
	kind := schema.KindFile
	if info.IsDir() {
		kind = schema.KindDirectory
	}

	return schema.Entry{
		Name: info.Name(),
		Kind: kind,
		Mode: info.Mode().Perm(),
		Size: info.Size(),
	}
}
