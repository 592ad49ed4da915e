// Package tree implements the logical node hierarchy over one managed base
// directory. Each node pairs a globally unique alias with a relative physical
// location, so that callers address filesystem entities by alias while the
// tree keeps logical and physical state consistent with each other.
package tree

import (
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/KernelPryanic/fs-manager/internal/schema"
)

// Kind is a re-export of [schema.Kind] for the convenience of callers
// working with node kinds through this package.
type Kind = schema.Kind

// Node is a single aliased entity of the logical hierarchy. The root node
// carries the absolute base path and the empty alias; all other nodes carry
// a path relative to their parent. Parent links exist for upward lookups
// only, ownership always runs downward through the children.
type Node struct {
	alias     string
	relPath   string
	kind      schema.Kind
	mode      fs.FileMode
	temporary bool
	root      bool
	parent    *Node
	children  []*Node
}

// Alias returns the node's globally unique alias. The root node has the
// empty alias, which no other node can carry.
func (n *Node) Alias() string {
	return n.alias
}

// RelPath returns the node's path contribution: the absolute base path for
// the root node, a parent-relative path for any other node.
func (n *Node) RelPath() string {
	return n.relPath
}

// Kind returns the node's [schema.Kind].
func (n *Node) Kind() Kind {
	return n.kind
}

// Mode returns the node's permission bits.
func (n *Node) Mode() fs.FileMode {
	return n.mode
}

// Temporary returns whether the node is due for removal when its owning
// session's scope ends.
func (n *Node) Temporary() bool {
	return n.temporary
}

// IsRoot returns whether the node is the root of its tree.
func (n *Node) IsRoot() bool {
	return n.root
}

// Parent returns the node's parent, or nil for the root node and for nodes
// already unlinked from their tree.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns a copy of the node's children in insertion order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Path returns the node's absolute physical path, computed by walking the
// parent links up to the root and joining the path contributions in order.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.relPath
	}

	return filepath.Join(n.parent.Path(), n.relPath)
}

// Depth returns the number of nodes on the path from the node up to and
// including the root.
func (n *Node) Depth() int {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}

	return depth
}

// Attached returns whether the node still hangs off a tree root. Unlinked
// nodes report false, as does any node whose ancestor was unlinked.
func (n *Node) Attached() bool {
	p := n
	for p.parent != nil {
		p = p.parent
	}

	return p.root
}
