package cmd

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"shelf/domain/catalog"
	"shelf/infra/config"
	"shelf/infra/ingest"
	"shelf/infra/logging"
	"shelf/infra/sequence"
	entrywal "shelf/infra/wal/entry"
	exitwal "shelf/infra/wal/exit"
	"shelf/service"
	"shelf/snapshot"
)

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// runtime is an opened catalog with its journals.
type runtime struct {
	svc      *service.CatalogService
	entryWAL *entrywal.WAL
	exitWAL  *exitwal.ExitWAL
	snapshot *snapshot.Writer
}

// openRuntime brings the catalog back to where it was: the latest snapshot
// (or the base library when there is none), then the WAL on top.
func openRuntime(cfg *config.Config, log logrus.FieldLogger) (*runtime, error) {
	// ---------------- Entry WAL ----------------

	entryWAL, err := entrywal.Open(entrywal.Config{
		Dir:             cfg.WAL.Dir,
		SegmentSize:     cfg.WAL.SegmentSize,
		SegmentDuration: cfg.WAL.SegmentDuration,
		SyncEveryAppend: cfg.WAL.SyncEveryAppend,
	})
	if err != nil {
		return nil, errors.Wrap(err, "entry wal init")
	}

	// ---------------- Exit WAL ----------------

	exitWAL, err := exitwal.Open(cfg.Outbox.Dir)
	if err != nil {
		_ = entryWAL.Close()
		return nil, errors.Wrap(err, "exit wal init")
	}

	rt := &runtime{
		entryWAL: entryWAL,
		exitWAL:  exitWAL,
		snapshot: &snapshot.Writer{Dir: cfg.Library.SnapshotDir},
	}

	// ---------------- Domain ----------------

	cat := catalog.New()
	seqGen := sequence.New(0)
	rt.svc = service.NewCatalogService(cat, seqGen, entryWAL, exitWAL, logging.Component(log, "catalog"))

	snap, err := snapshot.Load(cfg.Library.SnapshotDir)
	if err != nil {
		_ = rt.closeJournals()
		return nil, err
	}

	var afterSeq uint64
	if snap != nil {
		if err := rt.svc.Restore(snap); err != nil {
			_ = rt.closeJournals()
			return nil, err
		}
		afterSeq = snap.Seq
	} else {
		records, err := ingest.ReadTSVFile(cfg.Library.BasePath)
		if err != nil {
			_ = rt.closeJournals()
			return nil, err
		}
		if records == nil {
			log.WithField("path", cfg.Library.BasePath).Warn("no base library, starting empty")
		}
		rt.svc.Load(records)
	}

	// ---------------- WAL replay ----------------

	if err := service.ReplayFromWAL(cfg.WAL.Dir, afterSeq, cat, seqGen, logging.Component(log, "replay")); err != nil {
		_ = rt.closeJournals()
		return nil, errors.Wrap(err, "wal replay")
	}
	return rt, nil
}

// Close writes a final snapshot and closes the journals.
func (rt *runtime) Close() error {
	snapErr := rt.svc.WriteSnapshot(rt.snapshot)
	if err := rt.closeJournals(); err != nil {
		return err
	}
	return snapErr
}

// closeJournals never snapshots: a half-restored catalog must not replace
// the last good snapshot.
func (rt *runtime) closeJournals() error {
	entryErr := rt.entryWAL.Close()
	if err := rt.exitWAL.Close(); err != nil {
		return err
	}
	return entryErr
}
