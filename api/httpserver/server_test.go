package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf/domain/catalog"
	"shelf/infra/logging"
	"shelf/infra/sequence"
	"shelf/service"
)

const hareJSON = `{"author":"David Hare","title":"Algorithmics","isbn":9783642272653}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.NewCatalogService(catalog.New(), sequence.New(0), nil, nil, logging.Discard())
	svc.Load([]catalog.RawRecord{
		{Line: 1, Fields: []string{"Introduction to Algorithms", "Thomas H Cormen", "9780262033848"}},
		{Line: 2, Fields: []string{"Discrete Mathematics", "Susanna S Epp", "9781133187790"}},
		{Line: 3, Fields: []string{"Algorithmics", "David Hare", "9783642272653"}},
	})
	srv := httptest.NewServer(NewController(svc, logging.Discard()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp, body
}

func post(t *testing.T, srv *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func TestSearchByAuthor(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv, "/library/searchByAuthor?authorName="+url.QueryEscape("Thomas H Cormen"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Thomas H Cormen", body["author"])

	resp, body = get(t, srv, "/library/searchByAuthor?authorName=Knuth")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, _ = get(t, srv, "/library/searchByAuthor")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSearchByISBN(t *testing.T) {
	srv := newTestServer(t)

	resp, body := get(t, srv, "/library/searchByISBN?isbn=9781133187790")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(9781133187790), body["isbn"])

	resp, _ = get(t, srv, "/library/searchByISBN?isbn=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBorrowAndReturn(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusOK, post(t, srv, "/library/borrow", hareJSON).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/library/borrow", hareJSON).StatusCode)

	resp, body := get(t, srv, "/library/stats")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["borrowed"])

	assert.Equal(t, http.StatusOK, post(t, srv, "/library/return", hareJSON).StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/library/return", hareJSON).StatusCode)
}

func TestBorrowBadBody(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/library/borrow", "nope").StatusCode)
	assert.Equal(t, http.StatusBadRequest, post(t, srv, "/library/borrow", `{"isbn":1}`).StatusCode)
}

func TestPopular(t *testing.T) {
	srv := newTestServer(t)
	get(t, srv, "/library/searchByISBN?isbn=9780262033848")

	resp, body := get(t, srv, "/library/popular")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "David Hare", body["byAuthor"].(map[string]any)["author"])
	assert.Equal(t, "Thomas H Cormen", body["byISBN"].(map[string]any)["author"])
}

func TestPopularEmpty(t *testing.T) {
	svc := service.NewCatalogService(catalog.New(), sequence.New(0), nil, nil, logging.Discard())
	srv := httptest.NewServer(NewController(svc, logging.Discard()).Router())
	defer srv.Close()

	resp, _ := get(t, srv, "/library/popular")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
