// Copyright (C) 2026 Michael J. Fromberger. All Rights Reserved.

package doctree

import (
	"slices"
	"strconv"

	"github.com/creachadair/doctree/docpath"
)

// A Node is one addressed position in a document tree. It records the path
// segment that reaches it from its parent, its value (nil if the node is a
// ghost), and a reference to its parent used for diagnostics.
//
// The children of a node are computed once, when the tree is constructed, by
// projecting its value: the members of a Map, the elements of an Array, or
// the fragments of a TextStart. All other values have no children.
type Node struct {
	key      string
	index    bool // key is an array offset
	value    Value
	parent   *Node
	children []*Node
}

// NewTree constructs a tree of nodes rooted at v, and returns the root.
// A nil v yields a ghost root.
func NewTree(v Value) *Node {
	root := &Node{value: v}

	// Construction uses an explicit work list so that the depth of v does not
	// affect the depth of the call stack.
	work := []*Node{root}
	for len(work) != 0 {
		n := work[len(work)-1]
		work = work[:len(work)-1]

		switch t := n.value.(type) {
		case Array:
			n.children = make([]*Node, len(t))
			for i, elt := range t {
				c := &Node{key: strconv.Itoa(i), index: true, value: elt, parent: n}
				n.children[i] = c
				work = append(work, c)
			}
		case Map:
			n.children = make([]*Node, len(t))
			for i, m := range t {
				c := &Node{key: m.Key, value: m.Value, parent: n}
				n.children[i] = c
				work = append(work, c)
			}
		case TextStart:
			n.children = make([]*Node, len(t))
			for i, frag := range t {
				n.children[i] = &Node{key: strconv.Itoa(i), index: true, value: frag, parent: n}
			}
		}
	}
	return root
}

// ghost returns a node with no value, reached from parent by key.
func ghost(parent *Node, key string, index bool) *Node {
	return &Node{key: key, index: index, parent: parent}
}

// Key returns the path segment that reaches n from its parent. The key of a
// root is empty.
func (n *Node) Key() string { return n.key }

// Value returns the value of n, or nil if n is a ghost.
func (n *Node) Value() Value { return n.value }

// Parent returns the parent of n, or nil if n is a root.
// The parent is used for diagnostics, and must not be modified.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the children of n. The caller must not modify the slice.
func (n *Node) Children() []*Node { return n.children }

// IsGhost reports whether n is a ghost, a node reached by a path that does
// not exist in the document.
func (n *Node) IsGhost() bool { return n.value == nil }

// HasContent reports whether n has a non-null value.
func (n *Node) HasContent() bool {
	if n.value == nil {
		return false
	}
	_, isNull := n.value.(NullValue)
	return !isNull
}

// Child returns the child of n reached by key. If there is no such child, it
// returns a ghost node. For an array, key is a decimal offset.
func (n *Node) Child(key string) *Node {
	switch n.value.(type) {
	case Array, TextStart:
		i, err := strconv.Atoi(key)
		if err != nil {
			break
		} else if i >= 0 && i < len(n.children) {
			return n.children[i]
		}
		return ghost(n, key, true)
	case Map:
		for _, c := range n.children {
			if c.key == key {
				return c
			}
		}
	}
	return ghost(n, key, false)
}

// Path returns the location of n in its tree, for diagnostics.
func (n *Node) Path() string {
	var p docpath.Path
	for cur := n; cur.parent != nil; cur = cur.parent {
		if cur.index {
			i, _ := strconv.Atoi(cur.key)
			p = append(p, docpath.Index(i))
		} else {
			p = append(p, docpath.Key(cur.key))
		}
	}
	slices.Reverse(p)
	return p.String()
}
