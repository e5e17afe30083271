package broadcaster

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"shelf/infra/codec"
	exitwal "shelf/infra/wal/exit"
)

// Publisher is the outbound side of the broadcaster. Both the sarama and
// the kafka-go producers implement it.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

type Config struct {
	Interval   time.Duration
	MaxRetries uint32
}

// Broadcaster drains the outbox into a Publisher. Each record goes
// NEW -> SENT -> ACKED, or to FAILED with a retry count on a publish error.
type Broadcaster struct {
	outbox *exitwal.ExitWAL
	pub    Publisher
	cfg    Config
	log    *logrus.Entry
}

// ------------------------------------------------
// CONSTRUCTOR
// ------------------------------------------------

func New(
	outbox *exitwal.ExitWAL,
	pub Publisher,
	cfg Config,
	log *logrus.Entry,
) *Broadcaster {
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 5
	}
	return &Broadcaster{
		outbox: outbox,
		pub:    pub,
		cfg:    cfg,
		log:    log,
	}
}

// ------------------------------------------------
// LOOP
// ------------------------------------------------

// Run flushes on every tick until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	b.log.WithField("interval", b.cfg.Interval).Info("broadcaster started")

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("broadcaster stopped")
			return
		case <-ticker.C:
			if _, err := b.Flush(ctx); err != nil {
				b.log.WithError(err).Warn("outbox scan failed")
			}
		}
	}
}

// ------------------------------------------------
// FLUSH
// ------------------------------------------------

// Flush publishes every pending outbox record once and returns how many
// were acknowledged.
func (b *Broadcaster) Flush(ctx context.Context) (int, error) {
	acked := 0
	err := b.outbox.ScanPending(b.cfg.MaxRetries, func(rec exitwal.ExitRecord) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if b.publish(ctx, rec) {
			acked++
		}
		return nil
	})
	return acked, err
}

func (b *Broadcaster) publish(ctx context.Context, rec exitwal.ExitRecord) bool {
	log := b.log.WithField("seq", rec.Seq)

	if err := b.outbox.MarkSent(rec.Seq); err != nil {
		log.WithError(err).Warn("mark sent")
		return false
	}

	var key []byte
	if ev, err := codec.UnmarshalEvent(rec.Payload); err == nil {
		key = []byte(ev.Author)
	} else {
		log.WithError(err).Warn("event payload does not decode; publishing without key")
	}

	if err := b.pub.Publish(ctx, key, rec.Payload); err != nil {
		log.WithError(err).WithField("retries", rec.Retries+1).Warn("publish failed")
		if err := b.outbox.MarkFailed(rec.Seq); err != nil {
			log.WithError(err).Warn("mark failed")
		}
		return false
	}

	if err := b.outbox.MarkAcked(rec.Seq); err != nil {
		log.WithError(err).Warn("mark acked")
		return false
	}
	log.Debug("event published")
	return true
}

func (b *Broadcaster) Close() error {
	return b.pub.Close()
}
