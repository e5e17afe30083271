package splay

import "errors"

var ErrBadShape = errors.New("splay: shape does not describe a valid tree")

// ShapeNode is one node of a pre-order encoding of a tree: its item and
// whether it has a left and a right child.
type ShapeNode[T any] struct {
	Item  T
	Left  bool
	Right bool
}

// Shape encodes the tree in pre-order. Rebuild turns the result back into
// an identical tree, so a restored tree has the same root and the same
// splay behaviour as the original.
func (t *Tree[T]) Shape() []ShapeNode[T] {
	out := make([]ShapeNode[T], 0, t.size)
	if t.root == nil {
		return out
	}

	stack := []*Node[T]{t.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		out = append(out, ShapeNode[T]{Item: n.item, Left: n.left != nil, Right: n.right != nil})
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
	return out
}

// Rebuild replaces the tree's contents with the tree shape describes. The
// shape must be consumed exactly and its in-order items must be sorted
// under the tree's ordering; otherwise ErrBadShape is returned and the
// tree is left as it was.
func (t *Tree[T]) Rebuild(shape []ShapeNode[T]) error {
	var root *Node[T]
	if len(shape) > 0 {
		next := 0
		var err error
		root, err = buildShape(shape, &next, nil)
		if err != nil {
			return err
		}
		if next != len(shape) {
			return ErrBadShape
		}
	}

	sorted := true
	var prev *T
	Walk(root, func(item T) bool {
		if prev != nil && t.order(*prev, item) > 0 {
			sorted = false
			return false
		}
		p := item
		prev = &p
		return true
	})
	if !sorted {
		return ErrBadShape
	}

	t.root = root
	t.size = len(shape)
	return nil
}

func buildShape[T any](shape []ShapeNode[T], next *int, parent *Node[T]) (*Node[T], error) {
	if *next >= len(shape) {
		return nil, ErrBadShape
	}
	s := shape[*next]
	*next++

	n := &Node[T]{item: s.Item, parent: parent}
	var err error
	if s.Left {
		if n.left, err = buildShape(shape, next, n); err != nil {
			return nil, err
		}
	}
	if s.Right {
		if n.right, err = buildShape(shape, next, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}
