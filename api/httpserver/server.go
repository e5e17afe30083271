// Package httpserver exposes the catalog over plain HTTP/JSON under
// /library.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"shelf/domain/catalog"
	"shelf/service"
)

type bookJSON struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	ISBN   int64  `json:"isbn"`
}

type popularJSON struct {
	ByAuthor *bookJSON `json:"byAuthor"`
	ByISBN   *bookJSON `json:"byISBN"`
}

type errorJSON struct {
	Error string `json:"error"`
}

type Controller struct {
	svc *service.CatalogService
	log *logrus.Entry
}

func NewController(svc *service.CatalogService, log *logrus.Entry) *Controller {
	return &Controller{svc: svc, log: log}
}

// Router mounts the controller's routes.
func (c *Controller) Router() *httprouter.Router {
	r := httprouter.New()
	r.GET("/library/searchByAuthor", c.logged(c.searchByAuthor))
	r.GET("/library/searchByISBN", c.logged(c.searchByISBN))
	r.POST("/library/borrow", c.logged(c.borrow))
	r.POST("/library/return", c.logged(c.returnBook))
	r.GET("/library/popular", c.logged(c.popular))
	r.GET("/library/stats", c.logged(c.stats))
	return r
}

func New(addr string, svc *service.CatalogService, log *logrus.Entry) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewController(svc, log).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// ---- handlers ----

func (c *Controller) searchByAuthor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	author := r.URL.Query().Get("authorName")
	if author == "" {
		c.fail(w, http.StatusBadRequest, errors.New("authorName is required"))
		return
	}
	b, err := c.svc.LookupByAuthor(author)
	if err != nil {
		c.fail(w, statusFor(err), err)
		return
	}
	c.reply(w, http.StatusOK, toJSON(b))
}

func (c *Controller) searchByISBN(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	isbn, err := strconv.ParseInt(r.URL.Query().Get("isbn"), 10, 64)
	if err != nil {
		c.fail(w, http.StatusBadRequest, errors.New("isbn must be a number"))
		return
	}
	b, err := c.svc.LookupByISBN(isbn)
	if err != nil {
		c.fail(w, statusFor(err), err)
		return
	}
	c.reply(w, http.StatusOK, toJSON(b))
}

func (c *Controller) borrow(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	b, ok := c.decodeBook(w, r)
	if !ok {
		return
	}
	if err := c.svc.Borrow(b); err != nil {
		c.fail(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// returnBook only needs the author; the rest of the body is ignored.
func (c *Controller) returnBook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	b, ok := c.decodeBook(w, r)
	if !ok {
		return
	}
	got, err := c.svc.Return(b.Author)
	if err != nil {
		c.fail(w, statusFor(err), err)
		return
	}
	c.reply(w, http.StatusOK, toJSON(got))
}

func (c *Controller) popular(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	p, err := c.svc.Popular()
	if err != nil {
		c.fail(w, statusFor(err), err)
		return
	}
	out := popularJSON{}
	if p.ByAuthor != nil {
		b := toJSON(*p.ByAuthor)
		out.ByAuthor = &b
	}
	if p.ByISBN != nil {
		b := toJSON(*p.ByISBN)
		out.ByISBN = &b
	}
	c.reply(w, http.StatusOK, out)
}

func (c *Controller) stats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	st := c.svc.Stats()
	c.reply(w, http.StatusOK, map[string]int{
		"available": st.Available,
		"borrowed":  st.Borrowed,
	})
}

// ---- helpers ----

func (c *Controller) decodeBook(w http.ResponseWriter, r *http.Request) (catalog.Book, bool) {
	var in bookJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		c.fail(w, http.StatusBadRequest, errors.New("body must be a book"))
		return catalog.Book{}, false
	}
	if in.Author == "" {
		c.fail(w, http.StatusBadRequest, errors.New("author is required"))
		return catalog.Book{}, false
	}
	return catalog.Book{Title: in.Title, Author: in.Author, ISBN: in.ISBN}, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrEmpty):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrNotAvailable), errors.Is(err, catalog.ErrNotBorrowed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (c *Controller) reply(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.log.WithError(err).Warn("write response")
	}
}

func (c *Controller) fail(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		c.log.WithError(err).Error("request failed")
	}
	c.reply(w, code, errorJSON{Error: err.Error()})
}

func (c *Controller) logged(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		start := time.Now()
		h(w, r, ps)
		c.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start),
		}).Debug("http request")
	}
}

func toJSON(b catalog.Book) bookJSON {
	return bookJSON{Title: b.Title, Author: b.Author, ISBN: b.ISBN}
}
