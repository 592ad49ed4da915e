package backend

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/zeebo/blake3"
)

// partSuffix marks an in-flight copy; a crashed transfer leaves at most
// one such staging file behind, never a half-written destination.
const partSuffix = ".fsmpart"

// CopyFile physically copies a file to a new path, applying the given
// permission mode to the copy. The contents are staged in an
// intermediate file and hashed on both ends of the transfer; only a
// copy whose digest matches the source is renamed into place. A
// pre-existing entity at the destination path fails with
// [ErrRenameExists].
func (h *Handler) CopyFile(srcPath, dstPath string, mode fs.FileMode) error {
	source, err := h.OSOps.Open(srcPath)
	if err != nil {
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, err)
	}
	defer source.Close()

	stagePath := dstPath + partSuffix

	installed := false
	defer func() {
		if !installed {
			h.OSOps.Remove(stagePath) //nolint:errcheck
		}
	}()

	stage, err := h.OSOps.OpenFile(stagePath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode.Perm())
	if err != nil {
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, err)
	}
	defer stage.Close()

	srcDigest := blake3.New()
	dstDigest := blake3.New()

	_, err = io.Copy(io.MultiWriter(stage, dstDigest), io.TeeReader(source, srcDigest))
	if err != nil {
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, err)
	}

	if err := stage.Sync(); err != nil {
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, err)
	}

	srcSum := hex.EncodeToString(srcDigest.Sum(nil))
	dstSum := hex.EncodeToString(dstDigest.Sum(nil))

	if srcSum != dstSum {
		return fmt.Errorf("(backend-copy) %w: %w: %s (src) != %s (dst)", ErrBackend, ErrHashMismatch, srcSum, dstSum)
	}

	switch _, err := h.OSOps.Stat(dstPath); {
	case err == nil:
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, ErrRenameExists)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, err)
	}

	if err := h.OSOps.Rename(stagePath, dstPath); err != nil {
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, err)
	}

	installed = true

	if err := h.UnixOps.Chmod(dstPath, uint32(mode.Perm())); err != nil {
		return fmt.Errorf("(backend-copy) %w: %w", ErrBackend, err)
	}

	return nil
}

// CopyTree physically copies a whole subtree to a new path, recreating
// directories with their source permission modes and running every file
// through [Handler.CopyFile]. A pre-existing entity at the destination
// path fails with [ErrRenameExists].
func (h *Handler) CopyTree(srcPath, dstPath string) error {
	src, err := h.Stat(srcPath)
	if err != nil {
		return err
	}

	if src.Kind == schema.KindFile {
		return h.CopyFile(srcPath, dstPath, src.Mode)
	}

	exists, err := h.Exists(dstPath)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("(backend-copytree) %w: %w", ErrBackend, ErrRenameExists)
	}

	if err := h.Create(dstPath, schema.KindDirectory, src.Mode); err != nil {
		return err
	}

	entries, err := h.ReadDir(srcPath)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		err := h.CopyTree(filepath.Join(srcPath, entry.Name), filepath.Join(dstPath, entry.Name))
		if err != nil {
			return err
		}
	}

	return nil
}
