package splay

// Side names which child slot of its parent a node occupies.
type Side uint8

const (
	Left Side = iota
	Right
)

// Ordering compares a and b: negative when a sorts before b, zero when
// equal, positive when after. A tree must use one Ordering for its lifetime.
type Ordering[T any] func(a, b T) int

// Node owns its two children. parent is a back-reference used only to
// walk upward during rotations; it is nil whenever the node is a root.
type Node[T any] struct {
	item   T
	left   *Node[T]
	right  *Node[T]
	parent *Node[T]
}

// NewNode returns a detached node carrying item.
func NewNode[T any](item T) *Node[T] {
	return &Node[T]{item: item}
}

func (n *Node[T]) Item() T          { return n.item }
func (n *Node[T]) Left() *Node[T]   { return n.left }
func (n *Node[T]) Right() *Node[T]  { return n.right }
func (n *Node[T]) Parent() *Node[T] { return n.parent }

// side reports which child of its parent n is. n must have a parent.
func (n *Node[T]) side() Side {
	if n.parent.left == n {
		return Left
	}
	return Right
}

func (n *Node[T]) setParent(p *Node[T]) {
	if n != nil {
		n.parent = p
	}
}
