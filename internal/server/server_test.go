package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHealthEndpoints(t *testing.T) {
	s := New(Config{}, http.NotFoundHandler())

	for _, path := range []string{"/health", "/healthz"} {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "OK", rec.Body.String())
		})
	}
}

func TestEventsRoute(t *testing.T) {
	var gotLogger bool
	var gotRequestID string
	events := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := logr.FromContext(r.Context())
		gotLogger = err == nil
		gotRequestID, _ = RequestIDFrom(r.Context())
		w.WriteHeader(http.StatusAccepted)
	})
	s := New(Config{}, events)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, EventsPath, strings.NewReader(`{}`))
	req.Header.Set("X-Request-ID", "req-42")
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, gotLogger, "handler should receive a request-scoped logger")
	assert.Equal(t, "req-42", gotRequestID)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestEventsRoute_MethodNotAllowed(t *testing.T) {
	s := New(Config{}, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, EventsPath, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(Config{}, http.NotFoundHandler())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAuditLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zapr.NewLogger(zap.New(core))

	handler := auditLoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, EventsPath, nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Request completed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, int64(http.StatusBadRequest), fields["status"])
	assert.Equal(t, "client_error", fields["result"])
	assert.NotEmpty(t, fields["request_id"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCategorizeResult(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusOK, "success"},
		{http.StatusFound, "redirect"},
		{http.StatusUnauthorized, "client_error"},
		{http.StatusInternalServerError, "server_error"},
		{0, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorizeResult(tt.status))
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := applyDefaults(Config{})
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.NotPanics(t, func() { cfg.Logger.Info("discarded") })

	cfg = applyDefaults(Config{Port: "9090", ShutdownTimeout: time.Second})
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, time.Second, cfg.ShutdownTimeout)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, _ := net.SplitHostPort(l.Addr().String())
	require.NoError(t, l.Close())

	s := New(Config{Host: "127.0.0.1", Port: port, ShutdownTimeout: time.Second}, http.NotFoundHandler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + s.Addr() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
