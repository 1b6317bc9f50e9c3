// Package structure provides the ordered per-locale entry tree of structured
// collections.
package structure

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrParentNotFound is returned when the requested parent is not in the tree
	ErrParentNotFound = errors.New("parent not found in tree")
	// ErrNodeNotFound is returned when the entry is not in the tree
	ErrNodeNotFound = errors.New("entry not found in tree")
	// ErrInvalidMove is returned when a node would become its own descendant
	ErrInvalidMove = errors.New("cannot move an entry under itself")
	// ErrMaxDepth is returned when an operation would exceed the tree's max depth
	ErrMaxDepth = errors.New("maximum tree depth exceeded")
	// ErrDuplicateNode is returned when appending an entry that is already in the tree
	ErrDuplicateNode = errors.New("entry already in tree")
)

// Node is a tree position holding an entry id.
type Node struct {
	Entry    string  `json:"entry"`
	Children []*Node `json:"children,omitempty"`
}

// Tree is the ordered tree of one collection in one locale.
type Tree struct {
	Collection string  `json:"collection"`
	Locale     string  `json:"locale"`
	MaxDepth   int     `json:"-"`
	Root       []*Node `json:"tree"`
}

// New creates an empty tree. A maxDepth of zero means unlimited.
func New(collection, locale string, maxDepth int) *Tree {
	return &Tree{Collection: collection, Locale: locale, MaxDepth: maxDepth}
}

// find returns the node for the entry, the sibling list holding it and its depth.
func (t *Tree) find(id string) (*Node, *[]*Node, int) {
	var walk func(list *[]*Node, depth int) (*Node, *[]*Node, int)
	walk = func(list *[]*Node, depth int) (*Node, *[]*Node, int) {
		for _, n := range *list {
			if n.Entry == id {
				return n, list, depth
			}
			if found, holder, d := walk(&n.Children, depth+1); found != nil {
				return found, holder, d
			}
		}
		return nil, nil, 0
	}
	return walk(&t.Root, 1)
}

// Contains reports whether the entry is in the tree.
func (t *Tree) Contains(id string) bool {
	n, _, _ := t.find(id)
	return n != nil
}

// Append adds the entry as the last root node.
func (t *Tree) Append(id string) error {
	if t.Contains(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	t.Root = append(t.Root, &Node{Entry: id})
	return nil
}

// AppendTo adds the entry as the last child of parent. An empty parent
// appends at the root.
func (t *Tree) AppendTo(parent, id string) error {
	if parent == "" {
		return t.Append(id)
	}
	if t.Contains(id) {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	p, _, depth := t.find(parent)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrParentNotFound, parent)
	}
	if t.MaxDepth > 0 && depth+1 > t.MaxDepth {
		return fmt.Errorf("%w: %d", ErrMaxDepth, t.MaxDepth)
	}
	p.Children = append(p.Children, &Node{Entry: id})
	return nil
}

// Move places the entry and its subtree as the last child of parent, or at
// the root end when parent is empty. Entries that are not yet in the tree are
// appended.
func (t *Tree) Move(id, parent string) error {
	node, holder, _ := t.find(id)
	if node == nil {
		return t.AppendTo(parent, id)
	}

	current := t.Parent(id)
	if current == parent {
		return nil
	}

	target := &t.Root
	depth := 0
	if parent != "" {
		if parent == id || subtreeContains(node, parent) {
			return fmt.Errorf("%w: %s under %s", ErrInvalidMove, id, parent)
		}
		p, _, d := t.find(parent)
		if p == nil {
			return fmt.Errorf("%w: %s", ErrParentNotFound, parent)
		}
		target = &p.Children
		depth = d
	}
	if t.MaxDepth > 0 && depth+subtreeHeight(node) > t.MaxDepth {
		return fmt.Errorf("%w: %d", ErrMaxDepth, t.MaxDepth)
	}

	*holder = slices.DeleteFunc(*holder, func(n *Node) bool { return n == node })
	*target = append(*target, node)
	return nil
}

// Remove deletes the entry from the tree. Its children take its place among
// its former siblings, in order. Removing an absent entry is a no-op.
func (t *Tree) Remove(id string) bool {
	node, holder, _ := t.find(id)
	if node == nil {
		return false
	}
	idx := slices.Index(*holder, node)
	*holder = slices.Replace(*holder, idx, idx+1, node.Children...)
	return true
}

// Parent returns the parent entry id, or "" for root nodes and absent entries.
func (t *Tree) Parent(id string) string {
	var walk func(parent string, list []*Node) (string, bool)
	walk = func(parent string, list []*Node) (string, bool) {
		for _, n := range list {
			if n.Entry == id {
				return parent, true
			}
			if p, ok := walk(n.Entry, n.Children); ok {
				return p, true
			}
		}
		return "", false
	}
	p, _ := walk("", t.Root)
	return p
}

// Ancestors returns the chain of parent ids from the root down to the
// entry's parent.
func (t *Tree) Ancestors(id string) []string {
	var chain []string
	for p := t.Parent(id); p != ""; p = t.Parent(p) {
		chain = append([]string{p}, chain...)
	}
	return chain
}

// Flatten returns all entry ids in depth-first order.
func (t *Tree) Flatten() []string {
	var out []string
	var walk func(list []*Node)
	walk = func(list []*Node) {
		for _, n := range list {
			out = append(out, n.Entry)
			walk(n.Children)
		}
	}
	walk(t.Root)
	return out
}

func subtreeContains(n *Node, id string) bool {
	for _, c := range n.Children {
		if c.Entry == id || subtreeContains(c, id) {
			return true
		}
	}
	return false
}

func subtreeHeight(n *Node) int {
	h := 0
	for _, c := range n.Children {
		h = max(h, subtreeHeight(c))
	}
	return h + 1
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	c := *t
	c.Root = cloneNodes(t.Root)
	return &c
}

func cloneNodes(list []*Node) []*Node {
	if list == nil {
		return nil
	}
	out := make([]*Node, len(list))
	for i, n := range list {
		out[i] = &Node{Entry: n.Entry, Children: cloneNodes(n.Children)}
	}
	return out
}
