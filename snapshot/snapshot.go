package snapshot

import (
	"time"

	"github.com/pkg/errors"

	"shelf/domain/catalog"
	"shelf/domain/splay"
)

// Snapshot holds each tree in pre-order, so a restored catalog has the
// same roots and reshapes the same way the captured one would have.
type Snapshot struct {
	Seq      uint64
	Created  time.Time
	ByAuthor []BookEntry
	ByISBN   []BookEntry
	Borrowed []BookEntry
}

// BookEntry is one tree node: the book and which children follow it.
type BookEntry struct {
	Title  string
	Author string
	ISBN   int64
	Left   bool
	Right  bool
}

// Capture copies the catalog's trees. The caller must hold whatever
// lock serialises the catalog.
func Capture(seq uint64, c *catalog.Catalog) *Snapshot {
	sh := c.Shapes()
	return &Snapshot{
		Seq:      seq,
		Created:  time.Now(),
		ByAuthor: entries(sh.ByAuthor),
		ByISBN:   entries(sh.ByISBN),
		Borrowed: entries(sh.Borrowed),
	}
}

// Restore replaces c's trees with the captured ones. c is untouched when
// the snapshot does not describe a consistent catalog.
func (s *Snapshot) Restore(c *catalog.Catalog) error {
	err := c.RestoreShapes(catalog.Shapes{
		ByAuthor: nodes(s.ByAuthor),
		ByISBN:   nodes(s.ByISBN),
		Borrowed: nodes(s.Borrowed),
	})
	return errors.Wrapf(err, "restore snapshot seq %d", s.Seq)
}

func entries(shape []splay.ShapeNode[catalog.Book]) []BookEntry {
	out := make([]BookEntry, 0, len(shape))
	for _, n := range shape {
		out = append(out, BookEntry{
			Title:  n.Item.Title,
			Author: n.Item.Author,
			ISBN:   n.Item.ISBN,
			Left:   n.Left,
			Right:  n.Right,
		})
	}
	return out
}

func nodes(entries []BookEntry) []splay.ShapeNode[catalog.Book] {
	out := make([]splay.ShapeNode[catalog.Book], 0, len(entries))
	for _, e := range entries {
		out = append(out, splay.ShapeNode[catalog.Book]{
			Item:  catalog.Book{Title: e.Title, Author: e.Author, ISBN: e.ISBN},
			Left:  e.Left,
			Right: e.Right,
		})
	}
	return out
}
