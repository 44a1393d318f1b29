// Package schedule runs recurring back-office tasks such as dispatching
// scheduled campaigns.
//
//	schedule.EveryMinute().Name("campaigns:due").WithoutOverlapping().Run(dispatchDue)
//	schedule.Start(ctx)
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/rigparts/pkg/logger"
)

// Task is a scheduled unit of work. A returned error is logged.
type Task func(ctx context.Context) error

type entry struct {
	id        string
	interval  time.Duration
	task      Task
	noOverlap bool

	mu      sync.Mutex
	lastRun time.Time
	running bool
}

// Scheduler holds registered entries and dispatches the due ones on each tick.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	wg      sync.WaitGroup
	tick    time.Duration
}

// New returns an empty scheduler that ticks once per second.
func New() *Scheduler { return &Scheduler{tick: time.Second} }

var defaultScheduler = New()

// Default returns the process-wide scheduler.
func Default() *Scheduler { return defaultScheduler }

// ------------------- Builder -------------------

// Schedule is a fluent builder for a single entry before it is registered.
type Schedule struct {
	s *Scheduler
	e *entry
}

type freqBuilder struct {
	s *Scheduler
	n int
}

func (s *Scheduler) Every(n int) *freqBuilder { return &freqBuilder{s: s, n: n} }
func (s *Scheduler) EveryMinute() *Schedule   { return s.Every(1).Minutes() }

func (f *freqBuilder) Seconds() *Schedule { return f.build(time.Second) }
func (f *freqBuilder) Minutes() *Schedule { return f.build(time.Minute) }
func (f *freqBuilder) Hours() *Schedule   { return f.build(time.Hour) }

func (f *freqBuilder) build(unit time.Duration) *Schedule {
	n := f.n
	if n < 1 {
		n = 1
	}
	return &Schedule{s: f.s, e: &entry{interval: time.Duration(n) * unit}}
}

// WithoutOverlapping skips a run while the previous one is still executing.
func (s *Schedule) WithoutOverlapping() *Schedule {
	s.e.noOverlap = true
	return s
}

// Name gives the entry an identifier for logging and listing.
func (s *Schedule) Name(id string) *Schedule {
	s.e.id = id
	return s
}

// Run registers the task.
func (s *Schedule) Run(fn Task) {
	s.e.task = fn
	s.s.mu.Lock()
	if s.e.id == "" {
		s.e.id = fmt.Sprintf("task-%d", len(s.s.entries)+1)
	}
	s.s.entries = append(s.s.entries, s.e)
	s.s.mu.Unlock()
}

// ------------------- Loop -------------------

// Start runs the scheduler loop in the background until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.Run(ctx)
}

// Run blocks, dispatching due tasks every tick, until ctx is cancelled.
// In-flight tasks are awaited before it returns.
func (s *Scheduler) Run(ctx context.Context) {
	logger.Info("schedule: scheduler started", "tasks", len(s.List()))
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.Tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			logger.Info("schedule: scheduler stopped")
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick dispatches every entry due at now.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	current := make([]*entry, len(s.entries))
	copy(current, s.entries)
	s.mu.Unlock()

	for _, e := range current {
		s.dispatch(ctx, e, now)
	}
}

// Wait blocks until all dispatched tasks have returned.
func (s *Scheduler) Wait() { s.wg.Wait() }

func (s *Scheduler) dispatch(ctx context.Context, e *entry, now time.Time) {
	e.mu.Lock()
	if !e.lastRun.IsZero() && now.Sub(e.lastRun) < e.interval {
		e.mu.Unlock()
		return
	}
	if e.noOverlap && e.running {
		e.mu.Unlock()
		logger.Warn("schedule: skipping overlapping task", "id", e.id)
		return
	}
	e.running = true
	e.lastRun = now
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			e.mu.Lock()
			e.running = false
			e.mu.Unlock()
			if r := recover(); r != nil {
				logger.Error("schedule: task panicked", "id", e.id, "panic", r)
			}
		}()

		start := time.Now()
		if err := e.task(ctx); err != nil {
			logger.Error("schedule: task failed", "id", e.id, "error", err)
			return
		}
		logger.Debug("schedule: task done", "id", e.id, "duration_ms", time.Since(start).Milliseconds())
	}()
}

// List returns the registered entries for CLI display.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [every %s]", e.id, e.interval))
	}
	return out
}

// ------------------- Package-level helpers -------------------

func Every(n int) *freqBuilder  { return defaultScheduler.Every(n) }
func EveryMinute() *Schedule    { return defaultScheduler.EveryMinute() }
func Start(ctx context.Context) { defaultScheduler.Start(ctx) }
func Run(ctx context.Context)   { defaultScheduler.Run(ctx) }
func List() []string            { return defaultScheduler.List() }
