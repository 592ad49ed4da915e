// Package validation implements consistency checks between the logical
// hierarchy and the physical filesystem underneath it. Since the logical
// state is reconstructable from a structure document without touching any
// physical state, the two can drift apart; this package detects such
// drift before it can corrupt later operations.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KernelPryanic/fs-manager/internal/pathing"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// ValidateTree checks every node of the given hierarchy against the
// physical filesystem, collecting all findings instead of stopping at
// the first. Each finding is logged and part of the joined error.
func ValidateTree(t *tree.Tree, backend schema.Backend) error {
	var errs []error

	t.Walk(t.Root(), func(n *tree.Node) bool {
		if err := ValidateNode(n, backend); err != nil {
			slog.Warn("Validation: node failed consistency check",
				"alias", n.Alias(), "path", n.Path(), "err", err)
			errs = append(errs, err)
		}

		return true
	})

	return errors.Join(errs...)
}

// ValidateNode checks a single node's logical state and its physical
// backing for consistency.
func ValidateNode(n *tree.Node, backend schema.Backend) error {
	if err := validateLogical(n); err != nil {
		return err
	}

	return validatePhysical(n, backend)
}

func validateLogical(n *tree.Node) error {
	if !n.Kind().Valid() {
		return fmt.Errorf("(validation) %w: %q carries %q", ErrUnknownKind, n.Alias(), n.Kind())
	}

	if n.Kind() == schema.KindFile && len(n.Children()) > 0 {
		return fmt.Errorf("(validation) %w: %q", ErrFileWithChildren, n.Alias())
	}

	if n.IsRoot() {
		if n.Alias() != "" {
			return fmt.Errorf("(validation) %w: %q", ErrRootAliased, n.Alias())
		}

		if !filepath.IsAbs(n.RelPath()) {
			return fmt.Errorf("(validation) %w: %q", ErrRootRelative, n.RelPath())
		}

		return nil
	}

	if n.Alias() == "" {
		return fmt.Errorf("(validation) %w: %q", ErrNoAlias, n.Path())
	}

	if _, err := pathing.Localize(n.RelPath()); err != nil {
		return fmt.Errorf("(validation) %w: %q: %w", ErrPathNotLocal, n.Alias(), err)
	}

	return nil
}

func validatePhysical(n *tree.Node, backend schema.Backend) error {
	entry, err := backend.Stat(n.Path())
	if err != nil {
		return fmt.Errorf("(validation) %w: %q: %w", ErrMissingBacking, n.Alias(), err)
	}

	if entry.Kind != n.Kind() {
		return fmt.Errorf("(validation) %w: %q is %q logically, %q physically",
			ErrKindDrift, n.Alias(), n.Kind(), entry.Kind)
	}

	if entry.Mode != n.Mode().Perm() {
		return fmt.Errorf("(validation) %w: %q carries %#o logically, %#o physically",
			ErrModeDrift, n.Alias(), n.Mode().Perm(), entry.Mode)
	}

	return nil
}
