package splay

// The functions in this file are the whole algorithm. They are stateless:
// a tree is nothing more than its root pointer, and every operation that
// can change the shape returns the new root.
//
// Preconditions are NOT checked. Passing a node that is not reachable from
// root, or inserting a node that is still attached somewhere, corrupts
// whichever tree the node really belongs to. A miss is never an error: it
// is reported by returning a root whose item does not match the key.

// RotateUp promotes n into its parent's position. n must be the child of
// its parent on side s. The promoted node inherits the parent's link, the
// old parent becomes n's child on the opposite side, and n's inner subtree
// moves across to the old parent. No keys are compared.
func RotateUp[T any](n *Node[T], s Side) {
	p := n.parent
	g := p.parent

	if s == Left {
		p.left = n.right
		n.right.setParent(p)
		n.right = p
	} else {
		p.right = n.left
		n.left.setParent(p)
		n.left = p
	}

	n.parent = g
	if g != nil {
		if g.left == p {
			g.left = n
		} else {
			g.right = n
		}
	}
	p.parent = n
}

// SplayToRoot rotates n upward until it has no parent. A nil n is a no-op.
func SplayToRoot[T any](n *Node[T]) {
	if n == nil {
		return
	}
	for n.parent != nil {
		p := n.parent
		if p.parent == nil {
			// zig / zag
			RotateUp(n, n.side())
			return
		}

		ns, ps := n.side(), p.side()
		if ns == ps {
			// zig-zig / zag-zag: the parent goes first
			RotateUp(p, ps)
			RotateUp(n, ns)
		} else {
			// zig-zag / zag-zig
			RotateUp(n, ns)
			RotateUp(n, ps)
		}
	}
}

// Search descends from root looking for key and splays the last node it
// visited, which is the match if there is one and otherwise the would-be
// neighbour. The splayed node is returned as the new root. An empty tree
// stays empty.
func Search[T any](root *Node[T], key T, order Ordering[T]) *Node[T] {
	var last *Node[T]
	for cur := root; cur != nil; {
		last = cur
		c := order(key, cur.item)
		if c < 0 {
			cur = cur.left
		} else if c > 0 {
			cur = cur.right
		} else {
			break
		}
	}
	SplayToRoot(last)
	return last
}

// LocateInsertionParent returns the node a new node with key would hang
// from. Equal keys go right, so the result is never an early stop on a
// match. The tree is not splayed.
func LocateInsertionParent[T any](root *Node[T], key T, order Ordering[T]) *Node[T] {
	var parent *Node[T]
	for cur := root; cur != nil; {
		parent = cur
		if order(key, cur.item) < 0 {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return parent
}

// Insert attaches the detached node n and splays it to the root, which is
// returned.
func Insert[T any](root, n *Node[T], order Ordering[T]) *Node[T] {
	p := LocateInsertionParent(root, n.item, order)
	n.parent = p
	if p == nil {
		return n
	}

	if order(n.item, p.item) < 0 {
		p.left = n
	} else {
		p.right = n
	}
	SplayToRoot(n)
	return n
}

// Delete splays target to the root and unlinks it. When a left subtree
// exists its maximum becomes the new root and adopts the right subtree;
// otherwise the right subtree (possibly nil) is the new root. target comes
// back fully detached.
func Delete[T any](root, target *Node[T]) *Node[T] {
	SplayToRoot(target)

	left, right := target.left, target.right
	target.left, target.right = nil, nil

	if left == nil {
		right.setParent(nil)
		return right
	}

	left.parent = nil
	max := Max(left)
	SplayToRoot(max)
	max.right = right
	right.setParent(max)
	return max
}

// Find returns the first node, in order, whose item compares equal to key
// and satisfies match, or nil. Equal keys may sit on either side of each
// other after rotations, so the whole run of equal items is scanned. The
// tree is not splayed.
func Find[T any](root *Node[T], key T, order Ordering[T], match func(T) bool) *Node[T] {
	var first *Node[T]
	for cur := root; cur != nil; {
		if order(key, cur.item) <= 0 {
			first = cur
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	for n := first; n != nil && order(key, n.item) == 0; n = next(n, root) {
		if match(n.item) {
			return n
		}
	}
	return nil
}

// Min returns the leftmost node under n without splaying.
func Min[T any](n *Node[T]) *Node[T] {
	for n != nil && n.left != nil {
		n = n.left
	}
	return n
}

// Max returns the rightmost node under n without splaying.
func Max[T any](n *Node[T]) *Node[T] {
	for n != nil && n.right != nil {
		n = n.right
	}
	return n
}

// Walk visits the subtree under root in order until fn returns false. It
// follows parent links and does not change the shape.
func Walk[T any](root *Node[T], fn func(T) bool) {
	for n := Min(root); n != nil; n = next(n, root) {
		if !fn(n.item) {
			return
		}
	}
}

func next[T any](n, root *Node[T]) *Node[T] {
	if n.right != nil {
		return Min(n.right)
	}
	for n != root && n.parent != nil {
		if n == n.parent.left {
			return n.parent
		}
		n = n.parent
	}
	return nil
}
