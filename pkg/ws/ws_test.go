package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.Upgrade))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("order.placed", map[string]any{"id": 12})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, "order.placed", env.Type)
	assert.Equal(t, float64(12), env.Data["id"])
}

func TestHub_PublishWithoutClients(t *testing.T) {
	hub := NewHub()
	for i := 0; i < 300; i++ {
		hub.Publish("noop", i)
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	events, unsubscribe := hub.Subscribe()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish("quote.created", map[string]any{"id": 5})
	select {
	case raw := <-events:
		assert.Contains(t, string(raw), `"type":"quote.created"`)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	unsubscribe()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	_, open := <-events
	assert.False(t, open)
}
