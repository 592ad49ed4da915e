package codec

import (
	"fmt"
	"path/filepath"

	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

// Handler is the principal implementation structure for moving structure
// documents between logical hierarchies and their on-disk location.
type Handler struct {
	backend schema.Backend
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(backend schema.Backend) *Handler {
	return &Handler{backend: backend}
}

// Save snapshots the given hierarchy and ledger into the structure
// document of the given name inside the hierarchy's base directory.
func (h *Handler) Save(t *tree.Tree, ledger hashsum.Ledger, name string) error {
	data, err := Encode(FromTree(t, ledger))
	if err != nil {
		return err
	}

	if err := h.backend.WriteFile(filepath.Join(t.Base(), name), data, DocumentMode); err != nil {
		return fmt.Errorf("(codec-save) %w", err)
	}

	return nil
}

// Load reads, validates and applies the structure document of the given
// name inside the hierarchy's base directory, returning the ledger the
// document carried. Only the logical hierarchy is reconstructed; the
// physical backing entities are not recreated.
func (h *Handler) Load(t *tree.Tree, name string) (hashsum.Ledger, error) {
	data, err := h.backend.ReadFile(filepath.Join(t.Base(), name))
	if err != nil {
		return nil, fmt.Errorf("(codec-load) %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, err
	}

	if err := Apply(doc, t); err != nil {
		return nil, err
	}

	if doc.Hashsums == nil {
		return hashsum.NewLedger(), nil
	}

	return doc.Hashsums, nil
}
