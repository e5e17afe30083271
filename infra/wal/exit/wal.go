package exit

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

// -------------------- State --------------------

type ExitState uint8

const (
	StateNew ExitState = iota
	StateSent
	StateAcked
	StateFailed
)

func (s ExitState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateSent:
		return "SENT"
	case StateAcked:
		return "ACKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// -------------------- Record --------------------

// ExitRecord is one outbound catalog event waiting to be published.
type ExitRecord struct {
	Seq         uint64
	State       ExitState
	Retries     uint32
	LastAttempt int64
	Payload     []byte
}

const recordHeader = 1 + 4 + 8

var errShortRecord = errors.New("exit wal: record too short")

// binary encoding: [state:1][retries:4][lastAttempt:8][payload...]
func encodeRecord(r ExitRecord) []byte {
	buf := make([]byte, recordHeader+len(r.Payload))
	buf[0] = byte(r.State)
	binary.BigEndian.PutUint32(buf[1:5], r.Retries)
	binary.BigEndian.PutUint64(buf[5:13], uint64(r.LastAttempt))
	copy(buf[recordHeader:], r.Payload)
	return buf
}

func decodeRecord(seq uint64, b []byte) (ExitRecord, error) {
	if len(b) < recordHeader {
		return ExitRecord{}, errShortRecord
	}
	payload := make([]byte, len(b)-recordHeader)
	copy(payload, b[recordHeader:])
	return ExitRecord{
		Seq:         seq,
		State:       ExitState(b[0]),
		Retries:     binary.BigEndian.Uint32(b[1:5]),
		LastAttempt: int64(binary.BigEndian.Uint64(b[5:13])),
		Payload:     payload,
	}, nil
}

// -------------------- WAL --------------------

// ExitWAL is a durable outbox on pebble, keyed by catalog sequence.
type ExitWAL struct {
	db *pebble.DB
}

func Open(dir string) (*ExitWAL, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open outbox %s", dir)
	}
	return &ExitWAL{db: db}, nil
}

func (w *ExitWAL) Close() error {
	return w.db.Close()
}

// -------------------- API --------------------

// PutNew records a new event (called by CatalogService).
func (w *ExitWAL) PutNew(seq uint64, payload []byte) error {
	return w.put(ExitRecord{Seq: seq, State: StateNew, Payload: payload})
}

func (w *ExitWAL) MarkSent(seq uint64) error {
	return w.transition(seq, StateSent, false)
}

func (w *ExitWAL) MarkAcked(seq uint64) error {
	return w.transition(seq, StateAcked, false)
}

// MarkFailed bumps the retry counter; the record stays pending.
func (w *ExitWAL) MarkFailed(seq uint64) error {
	return w.transition(seq, StateFailed, true)
}

// Delete removes a record (cleanup).
func (w *ExitWAL) Delete(seq uint64) error {
	return w.db.Delete(keyFor(seq), pebble.Sync)
}

// Get returns the current record for seq.
func (w *ExitWAL) Get(seq uint64) (ExitRecord, error) {
	val, closer, err := w.db.Get(keyFor(seq))
	if err != nil {
		return ExitRecord{}, err
	}
	defer closer.Close()

	return decodeRecord(seq, val)
}

func (w *ExitWAL) put(r ExitRecord) error {
	return w.db.Set(keyFor(r.Seq), encodeRecord(r), pebble.Sync)
}

func (w *ExitWAL) transition(seq uint64, state ExitState, retry bool) error {
	rec, err := w.Get(seq)
	if err != nil {
		return errors.Wrapf(err, "outbox seq %d", seq)
	}
	rec.State = state
	rec.LastAttempt = time.Now().UnixNano()
	if retry {
		rec.Retries++
	}
	return w.put(rec)
}

// -------------------- Scan --------------------

// ScanByState iterates all records in the given state, in sequence order.
func (w *ExitWAL) ScanByState(state ExitState, fn func(ExitRecord) error) error {
	return w.scan(func(rec ExitRecord) bool { return rec.State == state }, fn)
}

// ScanPending iterates records that still need publishing: NEW, and
// FAILED below maxRetries. SENT records are retried as well, since a
// crash between send and ack leaves them there.
func (w *ExitWAL) ScanPending(maxRetries uint32, fn func(ExitRecord) error) error {
	return w.scan(func(rec ExitRecord) bool {
		switch rec.State {
		case StateNew, StateSent:
			return true
		case StateFailed:
			return rec.Retries < maxRetries
		default:
			return false
		}
	}, fn)
}

// TruncateAckedUpTo deletes ACKED records with seq <= upTo.
func (w *ExitWAL) TruncateAckedUpTo(upTo uint64) error {
	var acked []uint64
	err := w.ScanByState(StateAcked, func(rec ExitRecord) error {
		if rec.Seq <= upTo {
			acked = append(acked, rec.Seq)
		}
		return nil
	})
	if err != nil {
		return err
	}

	b := w.db.NewBatch()
	defer b.Close()
	for _, seq := range acked {
		if err := b.Delete(keyFor(seq), nil); err != nil {
			return err
		}
	}
	return b.Commit(pebble.Sync)
}

func (w *ExitWAL) scan(match func(ExitRecord) bool, fn func(ExitRecord) error) error {
	iter, err := w.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyPrefix + "~"),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		rec, err := decodeRecord(seq, iter.Value())
		if err != nil {
			return err
		}
		if !match(rec) {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return iter.Error()
}

// -------------------- Helpers --------------------

const keyPrefix = "event/"

func keyFor(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", keyPrefix, seq))
}

func parseKey(b []byte) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(string(b), keyPrefix), 10, 64)
}
