package splay

// Tree binds a root to a single Ordering for its whole life, so one
// physical tree can never be searched or grown under two orders.
// Single-writer: every method, Search included, may restructure the tree,
// so the caller coordinates concurrency.
type Tree[T any] struct {
	root  *Node[T]
	order Ordering[T]
	size  int
}

func NewTree[T any](order Ordering[T]) *Tree[T] {
	return &Tree[T]{order: order}
}

func (t *Tree[T]) Root() *Node[T] { return t.root }
func (t *Tree[T]) Len() int        { return t.size }

// Order exposes the ordering the tree was built with.
func (t *Tree[T]) Order() Ordering[T] { return t.order }

// Search splays the match or nearest neighbour of key to the root and
// returns it. Callers decide whether the root is an exact hit.
func (t *Tree[T]) Search(key T) *Node[T] {
	t.root = Search(t.root, key, t.order)
	return t.root
}

// Find locates the node equal to key that match accepts, without
// splaying.
func (t *Tree[T]) Find(key T, match func(T) bool) *Node[T] {
	return Find(t.root, key, t.order, match)
}

// Insert wraps item in a fresh node, inserts it and returns the node,
// which is now the root.
func (t *Tree[T]) Insert(item T) *Node[T] {
	n := NewNode(item)
	t.root = Insert(t.root, n, t.order)
	t.size++
	return n
}

// Delete removes n, which must belong to this tree.
func (t *Tree[T]) Delete(n *Node[T]) {
	t.root = Delete(t.root, n)
	t.size--
}

func (t *Tree[T]) Walk(fn func(T) bool) {
	Walk(t.root, fn)
}

// Items returns the items in order without splaying.
func (t *Tree[T]) Items() []T {
	out := make([]T, 0, t.size)
	t.Walk(func(item T) bool {
		out = append(out, item)
		return true
	})
	return out
}
