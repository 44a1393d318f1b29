package testkit

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// MockResponse is a canned reply for an outgoing request.
type MockResponse struct {
	Status int
	Body   string
	Err    error
}

// MockTransport implements http.RoundTripper. Requests are matched by URL
// prefix, first registered wins. Install it on pkg/http's client:
//
//	mt := testkit.NewMockTransport()
//	mt.On("https://vpic.example/", testkit.MockResponse{Body: `{...}`})
//	rphttp.DefaultClient.Transport = mt
//	defer rphttp.ResetTransport()
type MockTransport struct {
	mu    sync.Mutex
	steps []mockStep
	calls []string
}

type mockStep struct {
	prefix string
	resp   MockResponse
}

func NewMockTransport() *MockTransport { return &MockTransport{} }

// On registers a reply for every URL starting with prefix.
func (mt *MockTransport) On(prefix string, resp MockResponse) *MockTransport {
	mt.mu.Lock()
	mt.steps = append(mt.steps, mockStep{prefix: prefix, resp: resp})
	mt.mu.Unlock()
	return mt
}

// Calls returns the URLs requested so far.
func (mt *MockTransport) Calls() []string {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]string(nil), mt.calls...)
}

func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	url := req.URL.String()
	mt.calls = append(mt.calls, url)

	for _, s := range mt.steps {
		if !strings.HasPrefix(url, s.prefix) {
			continue
		}
		if s.resp.Err != nil {
			return nil, s.resp.Err
		}
		code := s.resp.Status
		if code == 0 {
			code = http.StatusOK
		}
		header := make(http.Header)
		header.Set("Content-Type", "application/json")
		return &http.Response{
			StatusCode: code,
			Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(s.resp.Body)),
			Request:    req,
		}, nil
	}

	return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call to %s", url)
}
