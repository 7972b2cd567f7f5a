package loki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type MockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func Test_ConfigValidation(t *testing.T) {
	cfg := Config{}
	_, err := New(context.Background(), cfg, &MockLogger{})
	assert.Error(t, err)

	cfg.Url = "http://localhost:3100/loki/api/v1/push"
	pusher, err := New(context.Background(), cfg, &MockLogger{})
	assert.NoError(t, err)
	defer pusher.Stop()

	assert.Equal(t, cfg.Url, pusher.config.Url)
	assert.Equal(t, 1000, pusher.config.BatchMaxSize)
	assert.Equal(t, 5*time.Second, pusher.config.BatchMaxWait)
	assert.Equal(t, 3, pusher.config.MaxAttempts)
	assert.Equal(t, map[string]string{}, pusher.config.Labels)
}

func decodePush(t *testing.T, r *http.Request) lokiPushRequest {
	reader, err := gzip.NewReader(r.Body)
	require.NoError(t, err)

	var request lokiPushRequest
	require.NoError(t, json.NewDecoder(reader).Decode(&request))
	return request
}

func Test_Stop_ShouldFlushBatchGroupedByLevel(t *testing.T) {

	var received lokiPushRequest
	var user string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		user, _, _ = r.BasicAuth()
		received = decodePush(t, r)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	pusher, err := New(context.Background(), Config{
		Url:      server.URL,
		Labels:   map[string]string{"app": "jobscout"},
		Username: "user",
		Password: "pass",
	}, &MockLogger{})
	require.NoError(t, err)

	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "search failed"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "info", Message: "batch done"}))
	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "db failed"}))
	pusher.Stop()

	assert.Equal(t, "user", user)
	require.Len(t, received.Streams, 2)
	for _, s := range received.Streams {
		assert.Equal(t, "jobscout", s.Stream["app"])
		if s.Stream["level"] == "error" {
			assert.Len(t, s.Values, 2)
		} else {
			assert.Len(t, s.Values, 1)
		}
	}

	assert.Error(t, pusher.Push(LogEntry{Level: "info", Message: "too late"}))
}

func Test_Send_ShouldRetryServerErrors(t *testing.T) {

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	logger := &MockLogger{}
	pusher, err := New(context.Background(), Config{Url: server.URL, RetryDelay: time.Millisecond}, logger)
	require.NoError(t, err)

	require.NoError(t, pusher.Push(LogEntry{Level: "warning", Message: "slow"}))
	pusher.Stop()

	assert.Equal(t, int32(2), calls.Load())
	assert.Empty(t, logger.errors)
}

func Test_Send_ShouldNotRetryClientErrors(t *testing.T) {

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	logger := &MockLogger{}
	pusher, err := New(context.Background(), Config{Url: server.URL}, logger)
	require.NoError(t, err)

	require.NoError(t, pusher.Push(LogEntry{Level: "error", Message: "bad"}))
	pusher.Stop()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, []string{"failed to send logs"}, logger.errors)
}
