package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "custodia/pkg/domain-errors"
)

func newTestClient() *Client {
	return New(time.Second, 2, WithBackoff(time.Millisecond))
}

func TestPostJSON_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Status string `json:"status"`
	}
	err := newTestClient().PostJSON(context.Background(), srv.URL, map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostJSON_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"errorCode":"NO_MATCH"}`))
	}))
	defer srv.Close()

	err := newTestClient().PostJSON(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, string(statusErr.Body), "NO_MATCH")
	assert.Equal(t, int32(1), calls.Load(), "semantic failures must not be retried")
}

func TestPostJSON_ExhaustedRetriesSurfaceAsUpstreamUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient().PostJSON(context.Background(), srv.URL, nil, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_NetworkErrorRetried(t *testing.T) {
	// Point at a closed port: every attempt fails at the transport layer.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := newTestClient().GetJSON(context.Background(), url, nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
}
