// Package codec implements the structure document of the application,
// serializing a logical hierarchy into its on-disk JSON form and
// reconstructing it from there with full validation before any use.
package codec

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"maps"
	"path/filepath"

	"github.com/KernelPryanic/fs-manager/internal/hashsum"
	"github.com/KernelPryanic/fs-manager/internal/pathing"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/KernelPryanic/fs-manager/internal/tree"
)

const (
	// StructureFile is the default name of the structure document inside
	// the base directory of a session.
	StructureFile = ".fs-structure-full.json"

	// DocumentMode is the permission set a written structure document
	// receives.
	DocumentMode fs.FileMode = 0o600

	// Version is the structure document version this codec produces.
	Version = 1
)

// Document is the root structure of the on-disk structure document.
// Unknown fields of future versions are ignored on decoding.
type Document struct {
	Version  int            `json:"version"`
	Root     *Node          `json:"root"`
	Hashsums hashsum.Ledger `json:"hashsums,omitempty"`
}

// Node is the serialized form of one node of the logical hierarchy. The
// root node carries the empty alias and the absolute base path; all other
// nodes carry their parent-relative path.
type Node struct {
	Alias     string      `json:"alias"`
	Path      string      `json:"path"`
	Kind      schema.Kind `json:"kind"`
	Mode      uint32      `json:"mode"`
	Temporary bool        `json:"temporary"`
	Children  []*Node     `json:"children,omitempty"`
}

// FromTree snapshots the given hierarchy and ledger into a [Document],
// with children appearing in insertion order so that encoding the same
// hierarchy twice yields the same bytes.
func FromTree(t *tree.Tree, ledger hashsum.Ledger) *Document {
	doc := &Document{
		Version: Version,
		Root:    fromNode(t.Root()),
	}

	if len(ledger) > 0 {
		doc.Hashsums = maps.Clone(ledger)
	}

	return doc
}

func fromNode(n *tree.Node) *Node {
	dn := &Node{
		Alias:     n.Alias(),
		Path:      n.RelPath(),
		Kind:      n.Kind(),
		Mode:      uint32(n.Mode().Perm()),
		Temporary: n.Temporary(),
	}

	for _, child := range n.Children() {
		dn.Children = append(dn.Children, fromNode(child))
	}

	return dn
}

// Apply reconstructs a decoded document's hierarchy inside the given
// tree, attaching the document nodes logically underneath the tree's
// root. No physical state is touched; the backing entities are expected
// to still exist at their recorded paths. Aliases colliding with nodes
// already in the tree fail with [ErrAliasConflict] before any mutation.
func Apply(doc *Document, t *tree.Tree) error {
	for _, child := range doc.Root.Children {
		if err := checkCollisions(child, t); err != nil {
			return err
		}
	}

	for _, child := range doc.Root.Children {
		if err := attachNode(child, t, t.Root()); err != nil {
			return err
		}
	}

	return nil
}

func checkCollisions(n *Node, t *tree.Tree) error {
	if _, err := t.Find(n.Alias); err == nil {
		return fmt.Errorf("(codec-apply) %w: %q", ErrAliasConflict, n.Alias)
	}

	for _, child := range n.Children {
		if err := checkCollisions(child, t); err != nil {
			return err
		}
	}

	return nil
}

func attachNode(n *Node, t *tree.Tree, parent *tree.Node) error {
	node, err := t.Attach(parent, tree.CreateSpec{
		Alias:     n.Alias,
		Path:      n.Path,
		Kind:      n.Kind,
		Mode:      fs.FileMode(n.Mode),
		Temporary: n.Temporary,
	})
	if err != nil {
		return fmt.Errorf("(codec-apply) %w: node %q: %w", ErrCorruptStructure, n.Alias, err)
	}

	for _, child := range n.Children {
		if err := attachNode(child, t, node); err != nil {
			return err
		}
	}

	return nil
}

// Encode serializes the given document into its on-disk JSON form.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("(codec-encode) failed to serialize: %w", err)
	}

	return append(data, '\n'), nil
}

// Decode deserializes and validates a structure document, failing with
// [ErrCorruptStructure] on any malformation and [ErrAliasConflict] on
// colliding aliases, before any of it can reach a logical hierarchy.
func Decode(data []byte) (*Document, error) {
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("(codec-decode) %w: %w", ErrCorruptStructure, err)
	}

	if err := validate(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func validate(doc *Document) error {
	// Older documents (and those from before the field existed) still
	// decode; only a version from a newer codec is refused.
	if doc.Version > Version {
		return fmt.Errorf("(codec-decode) %w: unsupported version %d", ErrCorruptStructure, doc.Version)
	}

	if doc.Root == nil {
		return fmt.Errorf("(codec-decode) %w: missing root", ErrCorruptStructure)
	}

	if doc.Root.Alias != "" || doc.Root.Kind != schema.KindDirectory {
		return fmt.Errorf("(codec-decode) %w: malformed root", ErrCorruptStructure)
	}

	if !filepath.IsAbs(doc.Root.Path) {
		return fmt.Errorf("(codec-decode) %w: root path %q is not absolute",
			ErrCorruptStructure, doc.Root.Path)
	}

	for alias, record := range doc.Hashsums {
		if !record.Algorithm.Valid() {
			return fmt.Errorf("(codec-decode) %w: hashsum record %q carries algorithm %q",
				ErrCorruptStructure, alias, record.Algorithm)
		}

		if record.Digest == "" {
			return fmt.Errorf("(codec-decode) %w: hashsum record %q carries no digest",
				ErrCorruptStructure, alias)
		}
	}

	seen := map[string]bool{}
	for _, child := range doc.Root.Children {
		if err := validateNode(child, seen); err != nil {
			return err
		}
	}

	return nil
}

func validateNode(n *Node, seen map[string]bool) error {
	if n.Alias == "" {
		return fmt.Errorf("(codec-decode) %w: node without alias", ErrCorruptStructure)
	}

	if seen[n.Alias] {
		return fmt.Errorf("(codec-decode) %w: %q", ErrAliasConflict, n.Alias)
	}
	seen[n.Alias] = true

	if !n.Kind.Valid() {
		return fmt.Errorf("(codec-decode) %w: node %q carries kind %q",
			ErrCorruptStructure, n.Alias, n.Kind)
	}

	if n.Mode&^uint32(fs.ModePerm) != 0 {
		return fmt.Errorf("(codec-decode) %w: node %q carries mode %#o",
			ErrCorruptStructure, n.Alias, n.Mode)
	}

	if _, err := pathing.Localize(n.Path); err != nil {
		return fmt.Errorf("(codec-decode) %w: node %q: %w", ErrCorruptStructure, n.Alias, err)
	}

	if n.Kind == schema.KindFile && len(n.Children) > 0 {
		return fmt.Errorf("(codec-decode) %w: file node %q carries children",
			ErrCorruptStructure, n.Alias)
	}

	for _, child := range n.Children {
		if err := validateNode(child, seen); err != nil {
			return err
		}
	}

	return nil
}
