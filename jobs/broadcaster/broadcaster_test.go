package broadcaster

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelf/domain/catalog"
	"shelf/infra/codec"
	"shelf/infra/logging"
	exitwal "shelf/infra/wal/exit"
)

type fakePublisher struct {
	mu   sync.Mutex
	fail bool
	keys []string
	vals [][]byte
}

func (f *fakePublisher) Publish(_ context.Context, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.keys = append(f.keys, string(key))
	f.vals = append(f.vals, value)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func newOutbox(t *testing.T) *exitwal.ExitWAL {
	t.Helper()
	w, err := exitwal.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func putEvent(t *testing.T, w *exitwal.ExitWAL, seq uint64, typ string, b catalog.Book) {
	t.Helper()
	data, err := codec.MarshalEvent(codec.NewEvent(typ, seq, b))
	require.NoError(t, err)
	require.NoError(t, w.PutNew(seq, data))
}

func TestFlushPublishesAndAcks(t *testing.T) {
	outbox := newOutbox(t)
	putEvent(t, outbox, 1, "borrow", catalog.Book{Title: "Algorithmics", Author: "Hare", ISBN: 300})
	putEvent(t, outbox, 2, "return", catalog.Book{Title: "Algorithmics", Author: "Hare", ISBN: 300})

	pub := &fakePublisher{}
	b := New(outbox, pub, Config{}, logging.Discard())

	n, err := b.Flush(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Hare", "Hare"}, pub.keys)

	rec, err := outbox.Get(2)
	require.NoError(t, err)
	assert.Equal(t, exitwal.StateAcked, rec.State)

	n, err = b.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "nothing left to publish")
}

func TestFlushFailureIsRetriedThenGivenUp(t *testing.T) {
	outbox := newOutbox(t)
	putEvent(t, outbox, 1, "borrow", catalog.Book{Author: "Skiena", ISBN: 100})

	pub := &fakePublisher{fail: true}
	b := New(outbox, pub, Config{MaxRetries: 2}, logging.Discard())

	for i := 0; i < 3; i++ {
		n, err := b.Flush(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	}

	rec, err := outbox.Get(1)
	require.NoError(t, err)
	assert.Equal(t, exitwal.StateFailed, rec.State)
	assert.Equal(t, uint32(2), rec.Retries, "no attempts after the retry budget")

	pub.fail = false
	n, err := b.Flush(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRunStopsOnCancel(t *testing.T) {
	b := New(newOutbox(t), &fakePublisher{}, Config{}, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}

func TestSaramaPublisher(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != "payload" {
			return errors.New("unexpected value")
		}
		return nil
	})
	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := &SaramaPublisher{producer: sp, topic: "shelf.catalog"}

	require.NoError(t, p.Publish(context.Background(), []byte("Hare"), []byte("payload")))
	assert.ErrorIs(t, p.Publish(context.Background(), nil, []byte("x")), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}
