package catalog

import (
	"cmp"
	"fmt"
	"strings"

	"shelf/domain/splay"
)

// DualKeyed is the payload contract: two independent, total and
// deterministic orderings over the same values.
type DualKeyed[T any] interface {
	ComparePrimary(other T) int
	CompareSecondary(other T) int
}

// Book is immutable once built. Author is the primary key (compared
// case-insensitively), ISBN the secondary key, Title is opaque payload.
type Book struct {
	Title  string
	Author string
	ISBN   int64
}

func (b Book) ComparePrimary(o Book) int {
	return strings.Compare(strings.ToLower(b.Author), strings.ToLower(o.Author))
}

func (b Book) CompareSecondary(o Book) int {
	return cmp.Compare(b.ISBN, o.ISBN)
}

func (b Book) String() string {
	return fmt.Sprintf("%s, %s, %d", b.Title, b.Author, b.ISBN)
}

// PrimaryOrder and SecondaryOrder lift a DualKeyed type into the engine's
// Ordering.
func PrimaryOrder[T DualKeyed[T]]() splay.Ordering[T] {
	return func(a, b T) int { return a.ComparePrimary(b) }
}

func SecondaryOrder[T DualKeyed[T]]() splay.Ordering[T] {
	return func(a, b T) int { return a.CompareSecondary(b) }
}

var (
	ByAuthor = PrimaryOrder[Book]()
	ByISBN   = SecondaryOrder[Book]()
)
