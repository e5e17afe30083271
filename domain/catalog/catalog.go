package catalog

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"shelf/domain/splay"
)

// Catalog keeps three splay trees over the same books: the author and ISBN
// trees index the available books, the borrowed tree (author order) holds
// the rest. A book is reachable from both available trees or from the
// borrowed tree, never both and never neither.
//
// Catalog is single-writer and deterministic. Every method, lookups
// included, reshapes at least one tree, so concurrent calls race even when
// they only read. Serialise all access; service.CatalogService does.
type Catalog struct {
	byAuthor *splay.Tree[Book]
	byISBN   *splay.Tree[Book]
	borrowed *splay.Tree[Book]
}

func New() *Catalog {
	return &Catalog{
		byAuthor: splay.NewTree(ByAuthor),
		byISBN:   splay.NewTree(ByISBN),
		borrowed: splay.NewTree(ByAuthor),
	}
}

// RawRecord is one unparsed bulk-load row: title, author, ISBN.
type RawRecord struct {
	Line   int
	Fields []string
}

// Popular holds the roots of the two available trees, i.e. whatever the
// most recent operation splayed there.
type Popular struct {
	ByAuthor *Book
	ByISBN   *Book
}

type Stats struct {
	Available int
	Borrowed  int
}

// ---- loading ----

// Load inserts every well-formed record into both available trees in the
// order given. Malformed records are skipped and returned; they never stop
// the batch.
func (c *Catalog) Load(records []RawRecord) []*MalformedRecordError {
	var bad []*MalformedRecordError
	for _, r := range records {
		b, err := parseRecord(r)
		if err != nil {
			bad = append(bad, err)
			continue
		}
		c.Add(b)
	}
	return bad
}

// Add makes b available.
func (c *Catalog) Add(b Book) {
	c.byAuthor.Insert(b)
	c.byISBN.Insert(b)
}

func parseRecord(r RawRecord) (Book, *MalformedRecordError) {
	malformed := func(reason string) *MalformedRecordError {
		return &MalformedRecordError{Line: r.Line, Fields: r.Fields, Reason: reason}
	}

	if len(r.Fields) != 3 {
		return Book{}, malformed("expected 3 fields, got " + strconv.Itoa(len(r.Fields)))
	}
	author := strings.TrimSpace(r.Fields[1])
	if author == "" {
		return Book{}, malformed("empty author")
	}
	isbn, err := strconv.ParseInt(strings.TrimSpace(r.Fields[2]), 10, 64)
	if err != nil {
		return Book{}, malformed("ISBN is not a number")
	}
	return Book{Title: r.Fields[0], Author: author, ISBN: isbn}, nil
}

// ---- queries ----

// LookupByAuthor searches the available books by author. The author tree
// is splayed whether or not the search hits.
func (c *Catalog) LookupByAuthor(author string) (Book, error) {
	root := c.byAuthor.Search(Book{Author: author})
	if root == nil || root.Item().Author != author {
		return Book{}, ErrNotFound
	}
	return root.Item(), nil
}

// LookupByISBN searches the available books by ISBN, splaying the ISBN tree.
func (c *Catalog) LookupByISBN(isbn int64) (Book, error) {
	root := c.byISBN.Search(Book{ISBN: isbn})
	if root == nil || root.Item().ISBN != isbn {
		return Book{}, ErrNotFound
	}
	return root.Item(), nil
}

// Popular reads the two available roots without searching.
func (c *Catalog) Popular() (Popular, error) {
	var p Popular
	if n := c.byAuthor.Root(); n != nil {
		b := n.Item()
		p.ByAuthor = &b
	}
	if n := c.byISBN.Root(); n != nil {
		b := n.Item()
		p.ByISBN = &b
	}
	if p.ByAuthor == nil && p.ByISBN == nil {
		return p, ErrEmpty
	}
	return p, nil
}

// Available lists the available books in author order without splaying.
func (c *Catalog) Available() []Book { return c.byAuthor.Items() }

// Borrowed lists the borrowed books in author order without splaying.
func (c *Catalog) Borrowed() []Book { return c.borrowed.Items() }

func (c *Catalog) Stats() Stats {
	return Stats{Available: c.byAuthor.Len(), Borrowed: c.borrowed.Len()}
}

// ---- moves ----

// Borrow moves b from the available trees to the borrowed tree and
// returns the stored book. Both available trees are searched first; unless
// both hit the same book the call fails with ErrNotAvailable and the trees
// keep whatever shape the searches left them in. Title is not compared.
func (c *Catalog) Borrow(b Book) (Book, error) {
	a := c.byAuthor.Search(b)
	i := c.byISBN.Search(b)

	if a == nil || i == nil {
		return Book{}, ErrNotAvailable
	}
	byAuthor, byISBN := a.Item(), i.Item()
	if byAuthor.Author != b.Author || byISBN.ISBN != b.ISBN {
		return Book{}, ErrNotAvailable
	}
	// the author hit must be the very book the ISBN hit found
	if byAuthor.ISBN != b.ISBN || byISBN.Author != b.Author {
		return Book{}, ErrNotAvailable
	}

	c.byAuthor.Delete(a)
	c.byISBN.Delete(i)
	c.borrowed.Insert(byAuthor)
	return byAuthor, nil
}

// Return moves the borrowed book written by author back to both available
// trees, where it becomes the root, and returns it.
func (c *Catalog) Return(author string) (Book, error) {
	n := c.borrowed.Search(Book{Author: author})
	if n == nil || n.Item().Author != author {
		return Book{}, ErrNotBorrowed
	}

	b := n.Item()
	c.borrowed.Delete(n)
	c.Add(b)
	return b, nil
}

// ---- journal replay ----

// BorrowExact moves the available book with b's author and ISBN to the
// borrowed tree, wherever it sits. Unlike Borrow it does not depend on
// tree shape, so a journaled borrow applies no matter which lookups ran
// before it. Neither tree is splayed on the way.
func (c *Catalog) BorrowExact(b Book) (Book, error) {
	a := c.byAuthor.Find(b, sameBook(b))
	i := c.byISBN.Find(b, sameBook(b))
	if a == nil || i == nil {
		return Book{}, ErrNotAvailable
	}

	stored := a.Item()
	c.byAuthor.Delete(a)
	c.byISBN.Delete(i)
	c.borrowed.Insert(stored)
	return stored, nil
}

// ReturnExact is Return for a known book: the borrowed copy with b's
// author and ISBN goes back, not whichever one an author search reaches.
func (c *Catalog) ReturnExact(b Book) (Book, error) {
	n := c.borrowed.Find(b, sameBook(b))
	if n == nil {
		return Book{}, ErrNotBorrowed
	}

	stored := n.Item()
	c.borrowed.Delete(n)
	c.Add(stored)
	return stored, nil
}

func sameBook(b Book) func(Book) bool {
	return func(o Book) bool { return o.Author == b.Author && o.ISBN == b.ISBN }
}

// ---- shapes ----

// Shapes is the exact pre-order layout of the three trees.
type Shapes struct {
	ByAuthor []splay.ShapeNode[Book]
	ByISBN   []splay.ShapeNode[Book]
	Borrowed []splay.ShapeNode[Book]
}

func (c *Catalog) Shapes() Shapes {
	return Shapes{
		ByAuthor: c.byAuthor.Shape(),
		ByISBN:   c.byISBN.Shape(),
		Borrowed: c.borrowed.Shape(),
	}
}

// RestoreShapes replaces the catalog's trees with s. Both available trees
// must hold the same books; on any error the catalog is unchanged.
func (c *Catalog) RestoreShapes(s Shapes) error {
	next := New()
	if err := next.byAuthor.Rebuild(s.ByAuthor); err != nil {
		return errors.Wrap(err, "author tree")
	}
	if err := next.byISBN.Rebuild(s.ByISBN); err != nil {
		return errors.Wrap(err, "isbn tree")
	}
	if err := next.borrowed.Rebuild(s.Borrowed); err != nil {
		return errors.Wrap(err, "borrowed tree")
	}

	counts := map[Book]int{}
	for _, b := range next.byAuthor.Items() {
		counts[b]++
	}
	for _, b := range next.byISBN.Items() {
		counts[b]--
	}
	for b, n := range counts {
		if n != 0 {
			return errors.Wrapf(ErrInconsistentShapes, "%v", b)
		}
	}

	*c = *next
	return nil
}
