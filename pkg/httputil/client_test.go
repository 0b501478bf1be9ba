package httputil

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRequestGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1}]`))
	}))
	t.Cleanup(server.Close)

	resp, err := Request(context.Background(), DefaultRequestConfig(http.MethodGet, server.URL), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `[{"id":1}]`, string(resp.Body))
}

func TestRequestMarshalsPayload(t *testing.T) {
	type point struct {
		Device int `json:"device"`
		Sensor int `json:"sensor"`
	}

	var received point
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(server.Close)

	resp, err := Request(context.Background(), DefaultRequestConfig(http.MethodPost, server.URL), point{Device: 42, Sensor: 1})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, point{Device: 42, Sensor: 1}, received)
}

func TestRequestNon2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	resp, err := Request(context.Background(), DefaultRequestConfig(http.MethodGet, server.URL), nil)
	require.Error(t, err)
	// Response is still returned for inspection.
	require.NotNil(t, resp)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`ok`))
	}))
	t.Cleanup(server.Close)

	cfg := DefaultRequestConfig(http.MethodGet, server.URL)
	cfg.RetryEnabled = true
	cfg.MaxRetries = 5
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 10 * time.Millisecond

	resp, err := Request(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.GreaterOrEqual(t, calls.Load(), int32(3))
}

func TestRequestNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	_, err := Request(context.Background(), DefaultRequestConfig(http.MethodGet, server.URL), nil)
	require.Error(t, err)
	require.Equal(t, int32(1), calls.Load(), "default config must not retry")
}
