package service

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"shelf/domain/catalog"
	"shelf/infra/codec"
	"shelf/infra/sequence"
	entrywal "shelf/infra/wal/entry"
	exitwal "shelf/infra/wal/exit"
	"shelf/snapshot"
)

/*
CatalogService is the ONLY way into the catalog.

Coordination between
- domain (catalog)
- infra (sequence, entry wal, outbox)
- snapshot
happens here, under one mutex.
*/
type CatalogService struct {
	mu sync.Mutex

	cat      *catalog.Catalog
	seqGen   *sequence.Sequencer
	entryWAL *entrywal.WAL
	exitWAL  *exitwal.ExitWAL
	log      *logrus.Entry
}

// NewCatalogService wires the service. entryWAL and exitWAL may be nil,
// in which case moves are not persisted (the interactive menu runs so).
func NewCatalogService(
	cat *catalog.Catalog,
	seqGen *sequence.Sequencer,
	entryWAL *entrywal.WAL,
	exitWAL *exitwal.ExitWAL,
	log *logrus.Entry,
) *CatalogService {
	return &CatalogService{
		cat:      cat,
		seqGen:   seqGen,
		entryWAL: entryWAL,
		exitWAL:  exitWAL,
		log:      log,
	}
}

//
// ──────────────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────────────
//

func (s *CatalogService) LookupByAuthor(author string) (catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.LookupByAuthor(author)
}

func (s *CatalogService) LookupByISBN(isbn int64) (catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.LookupByISBN(isbn)
}

func (s *CatalogService) Popular() (catalog.Popular, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.Popular()
}

func (s *CatalogService) Stats() catalog.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.Stats()
}

func (s *CatalogService) Available() []catalog.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.Available()
}

func (s *CatalogService) Borrowed() []catalog.Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cat.Borrowed()
}

// Snapshot captures the catalog together with the last committed sequence.
func (s *CatalogService) Snapshot() *snapshot.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.Capture(s.seqGen.Current(), s.cat)
}

//
// ──────────────────────────────────────────────────────────
// Commands
// ──────────────────────────────────────────────────────────
//

// Load bulk-inserts the base library. It is not journaled: the base file
// (or a snapshot) is the starting point replay builds on.
func (s *CatalogService) Load(records []catalog.RawRecord) []*catalog.MalformedRecordError {
	s.mu.Lock()
	defer s.mu.Unlock()

	bad := s.cat.Load(records)
	for _, e := range bad {
		s.log.WithField("line", e.Line).Warn(e.Reason)
	}
	s.log.WithFields(logrus.Fields{
		"loaded":  len(records) - len(bad),
		"skipped": len(bad),
	}).Info("library loaded")
	return bad
}

// Restore loads a snapshot into the (empty) catalog and moves the
// sequencer to the snapshot's sequence. A snapshot that does not restore
// leaves both untouched.
func (s *CatalogService) Restore(snap *snapshot.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := snap.Restore(s.cat); err != nil {
		return err
	}
	s.seqGen.Reset(snap.Seq)
	s.log.WithFields(logrus.Fields{
		"seq":       snap.Seq,
		"available": len(snap.ByAuthor),
		"borrowed":  len(snap.Borrowed),
	}).Info("snapshot restored")
	return nil
}

// Borrow moves b to the borrowed tree and commits the stored book, whose
// title may differ from b's. A failed commit is returned but the
// in-memory move stands.
func (s *CatalogService) Borrow(b catalog.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.cat.Borrow(b)
	if err != nil {
		return err
	}
	return s.commit(entrywal.RecordBorrow, stored)
}

// Return moves the book written by author back to the available trees
// and commits the move.
func (s *CatalogService) Return(author string) (catalog.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.cat.Return(author)
	if err != nil {
		return catalog.Book{}, err
	}
	return b, s.commit(entrywal.RecordReturn, b)
}

// commit must be called with mu held.
func (s *CatalogService) commit(typ entrywal.RecordType, b catalog.Book) error {
	seq := s.seqGen.Next()
	log := s.log.WithFields(logrus.Fields{
		"seq":    seq,
		"move":   typ.String(),
		"author": b.Author,
		"isbn":   b.ISBN,
	})

	if s.entryWAL != nil {
		if err := s.entryWAL.Append(entrywal.NewRecord(typ, seq, codec.MarshalBook(b))); err != nil {
			log.WithError(err).Error("entry wal append failed")
			return errors.Wrapf(err, "journal %s seq %d", typ, seq)
		}
	}

	if s.exitWAL != nil {
		payload, err := codec.MarshalEvent(codec.NewEvent(typ.String(), seq, b))
		if err != nil {
			return errors.Wrap(err, "encode event")
		}
		if err := s.exitWAL.PutNew(seq, payload); err != nil {
			log.WithError(err).Error("outbox put failed")
			return errors.Wrapf(err, "queue event seq %d", seq)
		}
	}

	log.Debug("committed")
	return nil
}
