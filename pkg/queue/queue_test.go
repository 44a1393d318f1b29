package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shashiranjanraj/rigparts/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reindexJob struct {
	ProductID uint `json:"product_id"`
	seen      *sync.Map
	done      chan struct{}
}

func (j *reindexJob) Name() string { return "catalog.reindex" }

func (j *reindexJob) Handle(ctx context.Context) error {
	j.seen.Store(j.ProductID, true)
	j.done <- struct{}{}
	return nil
}

type flakyJob struct {
	calls *atomic.Int32
}

func (j *flakyJob) Name() string { return "flaky" }

func (j *flakyJob) Handle(ctx context.Context) error {
	j.calls.Add(1)
	return errors.New("mail transport down")
}

type memStore struct {
	mu   sync.Mutex
	recs []queue.FailedJobRecord
}

func (s *memStore) SaveFailed(_ context.Context, rec queue.FailedJobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func TestDispatchRebuildsJobFromFactory(t *testing.T) {
	m := queue.NewManager(queue.NewMemoryDriver(10))

	seen := &sync.Map{}
	done := make(chan struct{}, 1)
	m.Register("catalog.reindex", func() queue.Job { return &reindexJob{seen: seen, done: done} })

	ctx, cancel := context.WithCancel(context.Background())
	wg := m.StartWorkers(ctx, 2)
	defer func() { cancel(); wg.Wait() }()

	require.NoError(t, m.Dispatch(ctx, &reindexJob{ProductID: 42}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}
	_, ok := seen.Load(uint(42))
	assert.True(t, ok, "payload fields should survive the round trip")
}

func TestExhaustedJobIsRecorded(t *testing.T) {
	m := queue.NewManager(queue.NewMemoryDriver(10))
	m.SetRetry(2, func(int) time.Duration { return 0 })

	calls := &atomic.Int32{}
	m.Register("flaky", func() queue.Job { return &flakyJob{calls: calls} })

	store := &memStore{}
	m.UseStore(store)

	d := queue.NewMemoryDriver(1)
	m.SetDriver(d)
	require.NoError(t, m.Dispatch(context.Background(), &flakyJob{calls: &atomic.Int32{}}))

	raw, err := d.Pop(context.Background())
	require.NoError(t, err)
	require.NoError(t, m.Process(context.Background(), raw))

	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, m.FailedJobs(), 1)
	assert.Equal(t, "flaky", m.FailedJobs()[0].Name)
	require.Len(t, store.recs, 1)
	assert.Equal(t, "mail transport down", store.recs[0].Error)
	assert.Equal(t, 2, store.recs[0].Attempts)
}

func TestUnknownJobType(t *testing.T) {
	m := queue.NewManager(queue.NewMemoryDriver(1))
	err := m.Process(context.Background(), []byte(`{"type":"nope","payload":{}}`))
	assert.ErrorIs(t, err, queue.ErrUnknownJob)
}

func TestMemoryDriverFull(t *testing.T) {
	d := queue.NewMemoryDriver(1)
	require.NoError(t, d.Push(context.Background(), []byte("a")))
	assert.ErrorIs(t, d.Push(context.Background(), []byte("b")), queue.ErrQueueFull)
	assert.Equal(t, 1, d.Len())
}
