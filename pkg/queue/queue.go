// Package queue runs background jobs outside the request cycle.
//
//	queue.Register(jobs.SendCampaignName, func() queue.Job { return jobs.NewSendCampaign(svc) })
//	err := queue.Dispatch(ctx, &jobs.SendCampaign{CampaignID: 7})
//
// Jobs travel as JSON envelopes through a Driver (in-memory or Redis) and
// are rebuilt on the worker side by the factory registered under their name.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"github.com/shashiranjanraj/rigparts/pkg/metrics"
)

// ErrUnknownJob is returned when a payload names a job nobody registered.
var ErrUnknownJob = errors.New("queue: unknown job type")

// Job is the interface every queued job must satisfy. Exported fields are
// serialised; dependencies are injected by the registered factory.
type Job interface {
	Name() string
	Handle(ctx context.Context) error
}

// Driver is the queue storage backend.
type Driver interface {
	Push(ctx context.Context, payload []byte) error
	// Pop blocks until a payload is available, ctx ends, or the driver's
	// poll interval elapses (nil, nil).
	Pop(ctx context.Context) ([]byte, error)
}

type FailedJob struct {
	Name     string
	Payload  json.RawMessage
	Err      error
	FailedAt time.Time
	Attempts int
}

// Manager is the central queue hub.
type Manager struct {
	mu       sync.RWMutex
	driver   Driver
	registry map[string]func() Job
	failed   []FailedJob
	maxRetry int
	backoff  func(attempt int) time.Duration
	store    FailedStore
}

// NewManager builds a Manager over d with three attempts per job.
func NewManager(d Driver) *Manager {
	return &Manager{
		driver:   d,
		registry: map[string]func() Job{},
		maxRetry: 3,
		backoff:  func(attempt int) time.Duration { return time.Duration(attempt) * time.Second },
	}
}

var defaultManager = NewManager(NewMemoryDriver(1000))

func Default() *Manager { return defaultManager }

func SetDriver(d Driver) { defaultManager.SetDriver(d) }

func Register(name string, factory func() Job) { defaultManager.Register(name, factory) }

func Dispatch(ctx context.Context, job Job) error { return defaultManager.Dispatch(ctx, job) }

func StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	return defaultManager.StartWorkers(ctx, n)
}

func FailedJobs() []FailedJob { return defaultManager.FailedJobs() }

func (m *Manager) SetDriver(d Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driver = d
}

// SetRetry sets attempts per job and the delay before each retry.
func (m *Manager) SetRetry(attempts int, backoff func(attempt int) time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if attempts > 0 {
		m.maxRetry = attempts
	}
	if backoff != nil {
		m.backoff = backoff
	}
}

// Register makes a job type available for deserialization by name.
func (m *Manager) Register(name string, factory func() Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry[name] = factory
}

type envelope struct {
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	DispatchAt time.Time       `json:"dispatched_at"`
}

// Dispatch serialises job and pushes it onto the driver.
func (m *Manager) Dispatch(ctx context.Context, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: marshal job %s: %w", job.Name(), err)
	}

	env, err := json.Marshal(envelope{Type: job.Name(), Payload: payload, DispatchAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("queue: marshal envelope: %w", err)
	}

	m.mu.RLock()
	d := m.driver
	m.mu.RUnlock()

	if err := d.Push(ctx, env); err != nil {
		return fmt.Errorf("queue: push %s: %w", job.Name(), err)
	}
	logger.WithCtx(ctx).Debug("queue: job dispatched", "type", job.Name())
	return nil
}

// StartWorkers launches n workers that run until ctx is cancelled.
// The returned WaitGroup completes once every worker has exited.
func (m *Manager) StartWorkers(ctx context.Context, n int) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.work(ctx)
		}()
	}
	logger.Info("queue: workers started", "count", n)
	return &wg
}

func (m *Manager) work(ctx context.Context) {
	for ctx.Err() == nil {
		m.mu.RLock()
		d := m.driver
		m.mu.RUnlock()

		raw, err := d.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue: pop failed", "error", err)
			sleep(ctx, 500*time.Millisecond)
			continue
		}
		if raw == nil {
			continue
		}

		if err := m.Process(ctx, raw); err != nil {
			logger.Error("queue: process", "error", err)
		}
	}
}

// Process decodes one envelope and runs the job with retries. It is what
// workers call per payload; exported for synchronous use from the CLI.
func (m *Manager) Process(ctx context.Context, raw []byte) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("queue: bad envelope: %w", err)
	}

	m.mu.RLock()
	factory, ok := m.registry[env.Type]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownJob, env.Type)
	}

	job := factory()
	if err := json.Unmarshal(env.Payload, job); err != nil {
		return fmt.Errorf("queue: unmarshal %s: %w", env.Type, err)
	}

	m.runWithRetry(ctx, job, env.Payload)
	return nil
}

func (m *Manager) runWithRetry(ctx context.Context, job Job, payload json.RawMessage) {
	m.mu.RLock()
	attempts, backoff := m.maxRetry, m.backoff
	m.mu.RUnlock()

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = safeHandle(ctx, job); lastErr == nil {
			metrics.RecordQueueJob(job.Name(), "success", start)
			logger.Info("queue: job processed", "type", job.Name(), "attempt", attempt)
			return
		}

		logger.Warn("queue: job failed", "type", job.Name(), "attempt", attempt, "error", lastErr)
		if attempt < attempts && !sleep(ctx, backoff(attempt)) {
			break
		}
	}

	metrics.RecordQueueJob(job.Name(), "failed", start)
	m.recordFailure(ctx, FailedJob{
		Name:     job.Name(),
		Payload:  payload,
		Err:      lastErr,
		FailedAt: time.Now(),
		Attempts: attempts,
	})
	logger.Error("queue: job exhausted retries", "type", job.Name(), "error", lastErr)
}

func safeHandle(ctx context.Context, job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queue: job panicked: %v", r)
		}
	}()
	return job.Handle(ctx)
}

// FailedJobs returns a snapshot of the failures seen by this process.
func (m *Manager) FailedJobs() []FailedJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]FailedJob(nil), m.failed...)
}

// sleep waits for d or until ctx ends; it reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
