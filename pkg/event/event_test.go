package event

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFireReachesAllListeners(t *testing.T) {
	Flush()
	defer Flush()

	var got []string
	Listen("order.placed", func(_ context.Context, p interface{}) { got = append(got, "mail:"+p.(string)) })
	Listen("order.placed", func(_ context.Context, p interface{}) { got = append(got, "feed:"+p.(string)) })
	Listen("quote.created", func(_ context.Context, p interface{}) { got = append(got, "wrong") })

	Fire(context.Background(), "order.placed", "A-100")

	assert.Equal(t, []string{"mail:A-100", "feed:A-100"}, got)
}

func TestFireAsyncSurvivesCancelAndPanic(t *testing.T) {
	Flush()
	defer Flush()

	var calls atomic.Int32
	Listen("quote.created", func(ctx context.Context, _ interface{}) {
		if ctx.Err() == nil {
			calls.Add(1)
		}
	})
	Listen("quote.created", func(context.Context, interface{}) { panic("slack down") })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	FireAsync(ctx, "quote.created", nil)
	Wait()

	assert.Equal(t, int32(1), calls.Load())
}
