package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf/domain/catalog"
)

const base = "Title\tAuthor\tISBN\n" +
	"Algorithms\tSkiena\t100\n" +
	"\n" +
	"Nature of Code\tChristian\t200\r\n" +
	"broken line\n" +
	"Algorithmics\tHare\t300\n"

func TestReadTSV(t *testing.T) {
	recs, err := ReadTSV(strings.NewReader(base))
	require.NoError(t, err)

	require.Len(t, recs, 4)
	assert.Equal(t, catalog.RawRecord{Line: 2, Fields: []string{"Algorithms", "Skiena", "100"}}, recs[0])
	assert.Equal(t, []string{"Nature of Code", "Christian", "200"}, recs[1].Fields)
	assert.Equal(t, 5, recs[2].Line)
	assert.Equal(t, []string{"broken line"}, recs[2].Fields)
}

func TestReadTSVIntoCatalog(t *testing.T) {
	recs, err := ReadTSV(strings.NewReader(base))
	require.NoError(t, err)

	c := catalog.New()
	bad := c.Load(recs)

	require.Len(t, bad, 1)
	assert.Equal(t, 5, bad[0].Line)
	assert.Equal(t, 3, c.Stats().Available)
	got, err := c.LookupByAuthor("Hare")
	require.NoError(t, err)
	assert.Equal(t, int64(300), got.ISBN)
}

func TestReadTSVFile(t *testing.T) {
	recs, err := ReadTSVFile(filepath.Join(t.TempDir(), "missing.tsv"))
	require.NoError(t, err)
	assert.Empty(t, recs)

	path := filepath.Join(t.TempDir(), "base.tsv")
	require.NoError(t, os.WriteFile(path, []byte(base), 0o644))
	recs, err = ReadTSVFile(path)
	require.NoError(t, err)
	assert.Len(t, recs, 4)
}
