package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf/domain/catalog"
	"shelf/infra/logging"
	"shelf/infra/sequence"
	"shelf/service"
)

func newMenuService(t *testing.T) *service.CatalogService {
	t.Helper()
	svc := service.NewCatalogService(catalog.New(), sequence.New(0), nil, nil, logging.Discard())
	require.Empty(t, svc.Load([]catalog.RawRecord{
		{Line: 1, Fields: []string{"Algorithms", "Skiena", "100"}},
		{Line: 2, Fields: []string{"Nature of Code", "Christian", "200"}},
		{Line: 3, Fields: []string{"Algorithmics", "Hare", "300"}},
	}))
	return svc
}

func runScript(t *testing.T, svc *service.CatalogService, script ...string) string {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, NewMenu(svc, strings.NewReader(""), &out, script).Run())
	return out.String()
}

func TestMenu_AuthorSearchAndBorrow(t *testing.T) {
	svc := newMenuService(t)

	out := runScript(t, svc, "author", "Hare", "y", "exit")

	assert.Contains(t, out, "Algorithmics, Hare, 300")
	assert.Contains(t, out, "Enjoy the book.")
	assert.Equal(t, catalog.Stats{Available: 2, Borrowed: 1}, svc.Stats())
}

func TestMenu_ISBNSearchDecline(t *testing.T) {
	svc := newMenuService(t)

	out := runScript(t, svc, "ISBN", "100", "n", "exit")

	assert.Contains(t, out, "Algorithms, Skiena, 100")
	assert.NotContains(t, out, "Enjoy the book.")
	assert.Equal(t, catalog.Stats{Available: 3}, svc.Stats())
}

func TestMenu_SearchMiss(t *testing.T) {
	out := runScript(t, newMenuService(t), "author", "Knuth", "exit")
	assert.Contains(t, out, "Sorry, no books matched your search.")
}

func TestMenu_ISBNRetriesThenGivesUp(t *testing.T) {
	out := runScript(t, newMenuService(t), "isbn", "x", "y", "z", "exit")

	assert.Equal(t, 3, strings.Count(out, "Please enter a number"))
	assert.Contains(t, out, "Sorry, no books matched your search.")
}

func TestMenu_ReturnAndPopular(t *testing.T) {
	svc := newMenuService(t)

	out := runScript(t, svc,
		"return", "Hare",
		"author", "Hare", "y",
		"popular",
		"return", "Hare",
		"exit")

	assert.Contains(t, out, "Sorry, no borrowed book has that author.")
	assert.Contains(t, out, "Nature of Code, Christian, 200")
	assert.Contains(t, out, "Thank you for returning this book.")
	assert.Equal(t, catalog.Stats{Available: 3}, svc.Stats())
}

func TestMenu_PopularOnEmptyCatalog(t *testing.T) {
	svc := service.NewCatalogService(catalog.New(), sequence.New(0), nil, nil, logging.Discard())
	out := runScript(t, svc, "popular", "exit")
	assert.Contains(t, out, "no popular books")
}

func TestMenu_ScriptEndsWithoutExit(t *testing.T) {
	out := runScript(t, newMenuService(t), "popular")
	assert.Contains(t, out, "Goodbye.")
}

func TestMenu_ReadsFromInput(t *testing.T) {
	svc := newMenuService(t)
	var out bytes.Buffer

	require.NoError(t, NewMenu(svc, strings.NewReader("author\nSkiena\nn\n"), &out, nil).Run())

	assert.Contains(t, out.String(), "Algorithms, Skiena, 100")
	assert.Contains(t, out.String(), "Goodbye.")
}

func TestCommands(t *testing.T) {
	assert.Equal(t, "shelf", rootCmd.Use)

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["menu"])

	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.Equal(t, "c", rootCmd.PersistentFlags().Lookup("config").Shorthand)
	require.NotNil(t, serveCmd.Flags().Lookup("grpc-addr"))
	require.NotNil(t, serveCmd.Flags().Lookup("http-addr"))
}
