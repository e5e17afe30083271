package service

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"shelf/domain/catalog"
	"shelf/infra/codec"
	"shelf/infra/sequence"
	entrywal "shelf/infra/wal/entry"
)

/*
ReplayFromWAL re-applies committed moves from the entry WAL.

IMPORTANT:
- This MUST run before accepting traffic and before the WAL is opened
  for writing
- records at or below afterSeq are already in the snapshot and skipped
- the outbox is NOT replayed; undelivered events are still in it
- moves are applied by author and ISBN, not by search: lookups are not
  journaled, so the trees replay sees are not shaped like the live ones
*/
func ReplayFromWAL(
	walDir string,
	afterSeq uint64,
	cat *catalog.Catalog,
	seqGen *sequence.Sequencer,
	log *logrus.Entry,
) error {
	applied := 0
	lastSeq, err := entrywal.Replay(walDir, func(rec *entrywal.Record) error {
		if rec.Seq <= afterSeq {
			return nil
		}

		b, err := codec.UnmarshalBook(rec.Data)
		if err != nil {
			return errors.Wrapf(err, "seq %d", rec.Seq)
		}

		switch rec.Type {
		case entrywal.RecordBorrow:
			_, err = cat.BorrowExact(b)
		case entrywal.RecordReturn:
			_, err = cat.ReturnExact(b)
		default:
			return errors.Errorf("seq %d: unknown record type %d", rec.Seq, rec.Type)
		}
		if err != nil {
			return errors.Wrapf(err, "replay %s seq %d", rec.Type, rec.Seq)
		}
		applied++
		return nil
	})
	if err != nil {
		return err
	}

	// resume sequencing after whichever is newer
	if lastSeq < afterSeq {
		lastSeq = afterSeq
	}
	seqGen.Reset(lastSeq)

	log.WithFields(logrus.Fields{
		"applied":  applied,
		"last_seq": lastSeq,
	}).Info("wal replay completed")
	return nil
}
