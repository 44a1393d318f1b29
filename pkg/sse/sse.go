// Package sse streams Server-Sent Events. The admin live feed uses it as a
// fallback for browsers and proxies that cannot hold a WebSocket open.
//
//	stream := sse.New(c.W, c.R)
//	if stream == nil {
//	    return
//	}
//	stream.Send("order.placed", order)
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stream is an open event stream to one client.
type Stream struct {
	w      http.ResponseWriter
	r      *http.Request
	rc     *http.ResponseController
	closed bool
}

// New writes the stream headers. It returns nil, after answering 500, when
// the writer chain cannot flush.
func New(w http.ResponseWriter, r *http.Request) *Stream {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return nil
	}
	return &Stream{w: w, r: r, rc: rc}
}

// Send writes a named event with a JSON-encoded payload.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	return s.SendEncoded(event, payload)
}

// SendEncoded writes a named event whose payload is already JSON.
func (s *Stream) SendEncoded(event string, payload []byte) error {
	if s.IsClosed() {
		return nil
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		s.closed = true
		return fmt.Errorf("sse: write: %w", err)
	}
	return s.flush()
}

// Comment writes a comment line; clients ignore it, proxies see traffic.
func (s *Stream) Comment(msg string) error {
	if s.IsClosed() {
		return nil
	}
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		s.closed = true
		return fmt.Errorf("sse: write: %w", err)
	}
	return s.flush()
}

func (s *Stream) flush() error {
	if err := s.rc.Flush(); err != nil {
		s.closed = true
		return fmt.Errorf("sse: flush: %w", err)
	}
	return nil
}

// IsClosed reports whether the client has gone away.
func (s *Stream) IsClosed() bool {
	if s == nil {
		return true
	}
	if !s.closed && s.r.Context().Err() != nil {
		s.closed = true
	}
	return s.closed
}
