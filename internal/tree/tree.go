package tree

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/KernelPryanic/fs-manager/internal/pathing"
	"github.com/KernelPryanic/fs-manager/internal/schema"
	"github.com/puzpuzpuz/xsync/v4"
)

// Tree is the principal structure holding one logical hierarchy over one
// base directory. It owns the root node, the global alias index and the
// [schema.Backend] performing all physical effects of its mutations.
type Tree struct {
	backend schema.Backend
	root    *Node
	index   *xsync.Map[string, *Node]
}

// CreateSpec describes a node to be added to a [Tree].
type CreateSpec struct {
	Alias     string
	Path      string
	Kind      schema.Kind
	Mode      fs.FileMode
	Temporary bool
}

// New returns a pointer to a new [Tree] rooted at the given absolute base
// path. The root node carries the given permission mode and the empty alias.
func New(basePath string, mode fs.FileMode, backend schema.Backend) *Tree {
	return &Tree{
		backend: backend,
		root: &Node{
			relPath: filepath.Clean(basePath),
			kind:    schema.KindDirectory,
			mode:    mode.Perm(),
			root:    true,
		},
		index: xsync.NewMap[string, *Node](),
	}
}

// Root returns the tree's root node.
func (t *Tree) Root() *Node {
	return t.root
}

// Base returns the absolute base path the tree is rooted at.
func (t *Tree) Base() string {
	return t.root.relPath
}

// Len returns the number of aliased nodes in the tree, the root excluded.
func (t *Tree) Len() int {
	return t.index.Size()
}

// Find returns the node carrying the given alias, failing with
// [ErrUnknownAlias] when no such node exists. The root node is not
// addressable by alias.
func (t *Tree) Find(alias string) (*Node, error) {
	n, ok := t.index.Load(alias)
	if !ok {
		return nil, fmt.Errorf("(tree-find) %w: %q", ErrUnknownAlias, alias)
	}

	return n, nil
}

// Range calls the given function for every aliased node of the tree, until
// the function returns false. The iteration order is not defined.
func (t *Tree) Range(fn func(alias string, n *Node) bool) {
	t.index.Range(fn)
}

// Walk visits the given node and its descendants in depth-first pre-order.
// Returning false from the visit function skips the descent into that
// node's children.
func (t *Tree) Walk(start *Node, visit func(*Node) bool) {
	if !visit(start) {
		return
	}

	for _, child := range start.Children() {
		t.Walk(child, visit)
	}
}

// CreateChild physically creates and logically links a new node underneath
// the given parent. The physical entity is created first; on physical
// failure no logical state changes (atomic). Intermediate directories of a
// multi-segment path are expected to exist already.
func (t *Tree) CreateChild(parent *Node, spec CreateSpec) (*Node, error) {
	n, err := t.prepareChild(parent, spec)
	if err != nil {
		return nil, err
	}

	if err := t.backend.Create(n.Path(), n.kind, n.mode); err != nil {
		return nil, fmt.Errorf("(tree-create) %w", err)
	}

	t.link(parent, n)

	return n, nil
}

// Attach logically links a new node underneath the given parent without any
// physical effect. It serves reconstruction paths where the physical backing
// is known (or assumed) to exist already.
func (t *Tree) Attach(parent *Node, spec CreateSpec) (*Node, error) {
	n, err := t.prepareChild(parent, spec)
	if err != nil {
		return nil, err
	}

	t.link(parent, n)

	return n, nil
}

// prepareChild validates a [CreateSpec] against the tree and builds the
// still unlinked node for it.
func (t *Tree) prepareChild(parent *Node, spec CreateSpec) (*Node, error) {
	if parent.kind != schema.KindDirectory {
		return nil, fmt.Errorf("(tree-create) %w: %q", ErrNotADirectory, parent.alias)
	}

	if spec.Alias == "" {
		return nil, fmt.Errorf("(tree-create) %w", ErrInvalidAlias)
	}

	if !spec.Kind.Valid() {
		return nil, fmt.Errorf("(tree-create) %w: %q", ErrInvalidKind, spec.Kind)
	}

	if _, ok := t.index.Load(spec.Alias); ok {
		return nil, fmt.Errorf("(tree-create) %w: %q", ErrDuplicateAlias, spec.Alias)
	}

	relPath, err := pathing.Localize(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("(tree-create) %w", err)
	}

	return &Node{
		alias:     spec.Alias,
		relPath:   relPath,
		kind:      spec.Kind,
		mode:      spec.Mode.Perm(),
		temporary: spec.Temporary,
		parent:    parent,
	}, nil
}

// link adds a prepared node to the parent's children and the alias index.
func (t *Tree) link(parent *Node, n *Node) {
	parent.children = append(parent.children, n)
	t.index.Store(n.alias, n)
}

// unlink removes a node from its parent's children and the alias index.
func (t *Tree) unlink(n *Node) {
	if n.parent != nil {
		n.parent.children = slices.DeleteFunc(n.parent.children, func(c *Node) bool {
			return c == n
		})
	}

	t.index.Delete(n.alias)
	n.parent = nil
}

// Remove physically removes the node carrying the given alias together with
// all of its descendants, unlinking each node only after its physical
// removal succeeded. Nodes whose physical removal failed stay linked along
// with their ancestor chain, and their aliases are reported through a
// [*PartialRemovalError] for the caller to decide on a retry. A physically
// missing entity counts as removed.
func (t *Tree) Remove(alias string) error {
	n, err := t.Find(alias)
	if err != nil {
		return err
	}

	var failed []string
	t.removeNode(n, &failed)

	if len(failed) > 0 {
		slices.Sort(failed)

		return &PartialRemovalError{Aliases: failed}
	}

	return nil
}

// removeNode removes a subtree in post-order, returning whether the whole
// subtree is gone both physically and logically.
func (t *Tree) removeNode(n *Node, failed *[]string) bool {
	removedAll := true
	for _, child := range n.Children() {
		if !t.removeNode(child, failed) {
			removedAll = false
		}
	}

	if !removedAll {
		*failed = append(*failed, n.alias)

		return false
	}

	if err := t.backend.Remove(n.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		*failed = append(*failed, n.alias)

		return false
	}

	t.unlink(n)

	return true
}

// Chmod applies the given permission mode to the node carrying the given
// alias, physically first and logically only on physical success.
func (t *Tree) Chmod(alias string, mode fs.FileMode) error {
	n, err := t.Find(alias)
	if err != nil {
		return err
	}

	if err := t.backend.Chmod(n.Path(), mode); err != nil {
		return fmt.Errorf("(tree-chmod) %w", err)
	}

	n.mode = mode.Perm()

	return nil
}

// Move physically renames the node carrying the given alias and re-links it
// underneath the given parent with the given relative path. The alias and
// the node's subtree travel with it. Occupied destinations fail with
// [ErrDestinationExists], destinations inside the moved subtree fail with
// [ErrMoveIntoSubtree].
func (t *Tree) Move(alias string, newParent *Node, newRelPath string) error {
	n, err := t.Find(alias)
	if err != nil {
		return err
	}

	if newParent.kind != schema.KindDirectory {
		return fmt.Errorf("(tree-move) %w: %q", ErrNotADirectory, newParent.alias)
	}

	for p := newParent; p != nil; p = p.parent {
		if p == n {
			return fmt.Errorf("(tree-move) %w: %q", ErrMoveIntoSubtree, alias)
		}
	}

	relPath, err := pathing.Localize(newRelPath)
	if err != nil {
		return fmt.Errorf("(tree-move) %w", err)
	}

	newPath := filepath.Join(newParent.Path(), relPath)

	exists, err := t.backend.Exists(newPath)
	if err != nil {
		return fmt.Errorf("(tree-move) %w", err)
	}
	if exists {
		return fmt.Errorf("(tree-move) %w: %q", ErrDestinationExists, newPath)
	}

	if err := t.backend.Rename(n.Path(), newPath); err != nil {
		return fmt.Errorf("(tree-move) %w", err)
	}

	if n.parent != nil {
		n.parent.children = slices.DeleteFunc(n.parent.children, func(c *Node) bool {
			return c == n
		})
	}

	n.parent = newParent
	n.relPath = relPath
	newParent.children = append(newParent.children, n)

	return nil
}
