package snapshot

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf/domain/catalog"
)

func loaded(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	c.Add(catalog.Book{Title: "Algorithms", Author: "Skiena", ISBN: 100})
	c.Add(catalog.Book{Title: "Nature of Code", Author: "Christian", ISBN: 200})
	c.Add(catalog.Book{Title: "Algorithmics", Author: "Hare", ISBN: 300})
	_, err := c.Borrow(catalog.Book{Title: "Algorithmics", Author: "Hare", ISBN: 300})
	require.NoError(t, err)
	_, err = c.LookupByISBN(100)
	require.NoError(t, err)
	return c
}

func TestWriteLoadRestore(t *testing.T) {
	dir := t.TempDir()
	src := loaded(t)

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(Capture(42, src)))

	s, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, uint64(42), s.Seq)
	assert.Len(t, s.ByAuthor, 2)
	assert.Len(t, s.ByISBN, 2)
	assert.Len(t, s.Borrowed, 1)

	dst := catalog.New()
	require.NoError(t, s.Restore(dst))
	assert.Equal(t, src.Available(), dst.Available())
	assert.Equal(t, src.Borrowed(), dst.Borrowed())
	assert.Equal(t, src.Shapes(), dst.Shapes())

	want, err := src.Popular()
	require.NoError(t, err)
	got, err := dst.Popular()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, int64(100), got.ByISBN.ISBN)

	back, err := dst.Return("Hare")
	require.NoError(t, err)
	assert.Equal(t, int64(300), back.ISBN)
}

func TestRestoreRejectsInconsistentTrees(t *testing.T) {
	s := Capture(7, loaded(t))
	s.ByISBN = s.ByISBN[:0]

	dst := catalog.New()
	dst.Add(catalog.Book{Title: "Kept", Author: "Ann", ISBN: 1})

	err := s.Restore(dst)
	assert.ErrorIs(t, err, catalog.ErrInconsistentShapes)
	assert.Len(t, dst.Available(), 1)
}

func TestWriteReplacesPrevious(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(Capture(1, catalog.New())))
	require.NoError(t, w.Write(Capture(2, loaded(t))))

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Seq)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestLoadMissing(t *testing.T) {
	s, err := Load(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, s)
}

func TestLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(Path(dir), []byte("not a snapshot"), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
