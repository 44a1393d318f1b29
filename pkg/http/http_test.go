package http_test

import (
	"context"
	gohttp "net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	rhttp "github.com/shashiranjanraj/rigparts/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWithQueryAndJSON(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"Results":[{"Make":"KENWORTH"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	resp, err := rhttp.Get(srv.URL + "/decode/1XKWDB0X57J211825").Query("format", "json").Send()
	require.NoError(t, err)
	require.NoError(t, resp.Throw())

	var out struct {
		Results []struct{ Make string }
	}
	require.NoError(t, resp.JSON(&out))
	assert.Equal(t, "KENWORTH", out.Results[0].Make)
}

func TestRetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(gohttp.StatusBadGateway)
			return
		}
		w.WriteHeader(gohttp.StatusOK)
	}))
	defer srv.Close()

	resp, err := rhttp.Post(srv.URL).Body(map[string]string{"to": "a@b.co"}).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.True(t, resp.OK())
	assert.Equal(t, int32(3), hits.Load())
}

func TestClientErrorsAreNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		hits.Add(1)
		w.WriteHeader(gohttp.StatusUnauthorized)
	}))
	defer srv.Close()

	resp, err := rhttp.Get(srv.URL).Retry(3, time.Millisecond).Send()
	require.NoError(t, err)
	assert.Error(t, resp.Throw())
	assert.Equal(t, int32(1), hits.Load())
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(gohttp.HandlerFunc(func(w gohttp.ResponseWriter, r *gohttp.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	_, err := rhttp.Get(srv.URL).WithContext(context.Background()).Timeout(20 * time.Millisecond).Send()
	assert.Error(t, err)
}
