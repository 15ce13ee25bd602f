// Package treap implements an ordered collection as a randomized binary
// search tree with parent pointers.
//
// The tree is ordered by a caller-supplied comparison closure rather than a
// fixed key type, and every comparison is allowed to fail. Insert performs
// all of its comparisons while descending, before it links the new node, so
// a failed comparison leaves the tree untouched. Remove takes a node handle
// and performs no comparisons at all. Together these two properties let a
// caller build transactional edits on top of the tree: fallible work first,
// handle-based removals last.
//
// Nodes are stable handles. Rotations relink nodes but never copy items
// between them, so a *Node obtained from Insert or Find stays valid until it
// is passed to Remove.
package treap

import (
	"iter"
	"math/rand/v2"
)

// A Node is a stable handle to one item in a Tree.
type Node[T any] struct {
	parent *Node[T]
	left   *Node[T]
	right  *Node[T]
	item   T
	pri    uint64
}

// Item returns the item stored in n.
func (n *Node[T]) Item() T { return n.item }

// A Tree is an ordered collection of items. The zero value is an empty tree
// ready to use.
//
// Node priorities form a min-heap: the root carries the smallest priority.
// Priority 0 is reserved to mark detached nodes.
type Tree[T any] struct {
	root *Node[T]
	size int
}

// New returns a new empty Tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{}
}

// Len returns the number of items in the tree. O(1).
func (t *Tree[T]) Len() int { return t.size }

// Find descends the tree looking for the item the comparison closure reports
// as equal. cmp is called with a stored item and returns the ordering of the
// sought key relative to that item: negative when the key sorts before it,
// positive when after, zero on a match.
//
// Find returns (nil, nil) when no item matches, and stops at the first error
// cmp reports. The tree is never modified.
func (t *Tree[T]) Find(cmp func(T) (int, error)) (*Node[T], error) {
	x := t.root
	for x != nil {
		c, err := cmp(x.item)
		if err != nil {
			return nil, err
		}
		switch {
		case c == 0:
			return x, nil
		case c < 0:
			x = x.left
		default:
			x = x.right
		}
	}
	return nil, nil
}

// Insert adds item to the tree and returns its node. cmp follows the Find
// convention, comparing the new item against stored items.
//
// Equal items are permitted; on a tie the descent continues to the left, so
// the new item ends up immediately before any already-stored equal items in
// the ordering. All comparisons happen before the tree is touched: when cmp
// fails, Insert returns the error and the tree is exactly as it was.
func (t *Tree[T]) Insert(item T, cmp func(T) (int, error)) (*Node[T], error) {
	pos := &t.root
	var parent *Node[T]
	for x := *pos; x != nil; x = *pos {
		c, err := cmp(x.item)
		if err != nil {
			return nil, err
		}
		parent = x
		if c <= 0 {
			pos = &x.left
		} else {
			pos = &x.right
		}
	}

	n := &Node[T]{item: item, pri: rand.Uint64() | 1, parent: parent}
	*pos = n
	t.size++
	t.rotateUp(n)
	return n, nil
}

// Remove detaches n from the tree. It performs no comparisons: the node is
// rotated down to a leaf according to priorities and unlinked. Amortized
// O(1) for a freshly inserted node, O(log n) expected in general.
//
// n must be a node of t that has not already been removed.
func (t *Tree[T]) Remove(n *Node[T]) {
	// Rotate n down to a leaf, keeping the heap property among the others.
	for n.left != nil || n.right != nil {
		if n.right == nil || (n.left != nil && n.left.pri < n.right.pri) {
			t.rotateRight(n)
		} else {
			t.rotateLeft(n)
		}
	}

	switch p := n.parent; {
	case p == nil:
		t.root = nil
	case p.left == n:
		p.left = nil
	default:
		p.right = nil
	}
	n.parent = nil
	n.pri = 0 // detached
	t.size--
}

// First returns the node holding the smallest item, or nil if t is empty.
func (t *Tree[T]) First() *Node[T] {
	if t.root == nil {
		return nil
	}
	return t.root.min()
}

// Last returns the node holding the largest item, or nil if t is empty.
func (t *Tree[T]) Last() *Node[T] {
	if t.root == nil {
		return nil
	}
	return t.root.max()
}

// Next returns the in-order successor of n, or nil at the end.
func (n *Node[T]) Next() *Node[T] {
	if n.right != nil {
		return n.right.min()
	}
	for n.parent != nil && n.parent.right == n {
		n = n.parent
	}
	return n.parent
}

// Prev returns the in-order predecessor of n, or nil at the beginning.
func (n *Node[T]) Prev() *Node[T] {
	if n.left != nil {
		return n.left.max()
	}
	for n.parent != nil && n.parent.left == n {
		n = n.parent
	}
	return n.parent
}

// All returns an iterator over the items in order, smallest first.
// The tree must not be modified while the iteration is in progress;
// restarting the sequence begins a fresh traversal.
func (t *Tree[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for x := t.First(); x != nil && yield(x.item); x = x.Next() {
		}
	}
}

// FromSorted builds a tree from items already in ascending order without
// calling any comparison function. O(n): each node is pushed onto and popped
// off the rightmost spine at most once.
func FromSorted[T any](items []T) *Tree[T] {
	t := New[T]()
	var spine []*Node[T] // rightmost path, root first
	for _, item := range items {
		n := &Node[T]{item: item, pri: rand.Uint64() | 1}

		// Pop spine nodes with larger priorities; the popped chain
		// becomes the new node's left subtree.
		var last *Node[T]
		for len(spine) > 0 && spine[len(spine)-1].pri > n.pri {
			last = spine[len(spine)-1]
			spine = spine[:len(spine)-1]
		}
		if last != nil {
			n.left = last
			last.parent = n
		}
		if len(spine) > 0 {
			p := spine[len(spine)-1]
			p.right = n
			n.parent = p
		} else {
			t.root = n
		}
		spine = append(spine, n)
	}
	t.size = len(items)
	return t
}

func (n *Node[T]) min() *Node[T] {
	for n.left != nil {
		n = n.left
	}
	return n
}

func (n *Node[T]) max() *Node[T] {
	for n.right != nil {
		n = n.right
	}
	return n
}

// rotateUp restores the heap property after an insert by rotating n upward
// while its priority is smaller than its parent's.
func (t *Tree[T]) rotateUp(n *Node[T]) {
	for n.parent != nil && n.parent.pri > n.pri {
		if n.parent.left == n {
			t.rotateRight(n.parent)
		} else {
			t.rotateLeft(n.parent)
		}
	}
}

func (t *Tree[T]) rotateRight(x *Node[T]) {
	y := x.left
	x.left = y.right
	if y.right != nil {
		y.right.parent = x
	}
	y.parent = x.parent
	switch p := x.parent; {
	case p == nil:
		t.root = y
	case p.left == x:
		p.left = y
	default:
		p.right = y
	}
	y.right = x
	x.parent = y
}

func (t *Tree[T]) rotateLeft(x *Node[T]) {
	y := x.right
	x.right = y.left
	if y.left != nil {
		y.left.parent = x
	}
	y.parent = x.parent
	switch p := x.parent; {
	case p == nil:
		t.root = y
	case p.left == x:
		p.left = y
	default:
		p.right = y
	}
	y.left = x
	x.parent = y
}
