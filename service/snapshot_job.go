package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"shelf/snapshot"
)

// StartSnapshotJob writes a snapshot every interval until ctx is done.
// The returned channel is closed once the job has stopped.
func (s *CatalogService) StartSnapshotJob(
	ctx context.Context,
	dir string,
	interval time.Duration,
) <-chan struct{} {
	w := &snapshot.Writer{Dir: dir}
	done := make(chan struct{})

	go func() {
		defer close(done)
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := s.WriteSnapshot(w); err != nil {
					s.log.WithError(err).Warn("snapshot failed")
				}
			}
		}
	}()
	return done
}

// WriteSnapshot persists the current catalog and drops the WAL segments
// and acked outbox events it covers.
func (s *CatalogService) WriteSnapshot(w *snapshot.Writer) error {
	snap := s.Snapshot()

	if err := w.Write(snap); err != nil {
		return err
	}

	// truncate ENTRY WAL after snapshot
	if s.entryWAL != nil {
		if err := s.entryWAL.TruncateBefore(snap.Seq); err != nil {
			return errors.Wrap(err, "truncate entry wal")
		}
	}

	// GC EXIT WAL (acked only)
	if s.exitWAL != nil {
		if err := s.exitWAL.TruncateAckedUpTo(snap.Seq); err != nil {
			return errors.Wrap(err, "truncate outbox")
		}
	}

	s.log.WithField("seq", snap.Seq).Debug("snapshot written")
	return nil
}
