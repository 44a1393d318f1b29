package testkit

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Envelope mirrors the JSON body written by pkg/response.
type Envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Result is a recorded response.
type Result struct {
	*httptest.ResponseRecorder
}

// Envelope decodes the body as a response envelope.
func (r Result) Envelope(t *testing.T) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &env), "body: %s", r.Body.String())
	return env
}

// Decode unmarshals the envelope's data field into dest.
func (r Result) Decode(t *testing.T, dest any) {
	t.Helper()
	env := r.Envelope(t)
	require.NoError(t, json.Unmarshal(env.Data, dest), "data: %s", string(env.Data))
}

// Request builds an in-process request.
type Request struct {
	method  string
	target  string
	body    io.Reader
	headers http.Header
	cookies []*http.Cookie
}

func NewRequest(method, target string) *Request {
	return &Request{method: method, target: target, headers: http.Header{}}
}

// JSON sets a JSON body.
func (r *Request) JSON(t *testing.T, v any) *Request {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	r.body = bytes.NewReader(b)
	r.headers.Set("Content-Type", "application/json")
	return r
}

func (r *Request) Header(key, value string) *Request {
	r.headers.Set(key, value)
	return r
}

// Bearer attaches an Authorization header.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Cookies carries cookies from a previous response, e.g. the session.
func (r *Request) Cookies(cs ...*http.Cookie) *Request {
	r.cookies = append(r.cookies, cs...)
	return r
}

// Do serves the request against h.
func (r *Request) Do(h http.Handler) Result {
	req := httptest.NewRequest(r.method, r.target, r.body)
	for k, v := range r.headers {
		req.Header[k] = v
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return Result{rec}
}
