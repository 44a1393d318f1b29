// Package event is an in-process publish/subscribe bus. Domain services
// fire named events ("order.placed"); listeners registered at boot react
// (notify staff, push to the admin feed) without the service knowing them.
package event

import (
	"context"
	"sync"

	"github.com/shashiranjanraj/rigparts/pkg/logger"
)

type Handler func(ctx context.Context, payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	inflight sync.WaitGroup
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

func snapshot(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	return append([]Handler(nil), handlers[event]...)
}

// Fire runs every listener synchronously.
func Fire(ctx context.Context, event string, payload interface{}) {
	for _, h := range snapshot(event) {
		run(ctx, event, h, payload)
	}
}

// FireAsync runs listeners in the background. They get a context detached
// from the request's cancellation so they outlive the response.
func FireAsync(ctx context.Context, event string, payload interface{}) {
	detached := context.WithoutCancel(ctx)
	for _, h := range snapshot(event) {
		inflight.Add(1)
		go func(h Handler) {
			defer inflight.Done()
			run(detached, event, h, payload)
		}(h)
	}
}

func run(ctx context.Context, event string, h Handler, payload interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithCtx(ctx).Error("event: listener panicked", "event", event, "panic", r)
		}
	}()
	h(ctx, payload)
}

// Wait blocks until every FireAsync listener has returned. Called on
// shutdown and in tests.
func Wait() { inflight.Wait() }

// Flush removes all listeners (useful in tests).
func Flush() {
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
