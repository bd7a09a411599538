package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aircnc/aircnc-server/internal/config"
	"github.com/aircnc/aircnc-server/pkg/metrics"
	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(New(Options{Name: "auth"}), "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())
}

func TestReady(t *testing.T) {
	healthy := true
	r := New(Options{Name: "reservations", Checks: map[string]Check{
		"mongodb": func(context.Context) error { return nil },
		"redis": func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	}})

	w := get(r, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ready"`)
	require.Contains(t, w.Body.String(), `"mongodb":true`)

	healthy = false
	w = get(r, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Contains(t, w.Body.String(), `"redis":false`)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.RepositoryOperations.WithLabelValues("users", "findOne", "ok")
	w := get(New(Options{}), "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "aircnc_repository_operations_total")
}

func TestCORSPreflight(t *testing.T) {
	r := New(Options{})
	req := httptest.NewRequest(http.MethodOptions, "/reservations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimitWiring(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	for name, opts := range map[string]Options{
		"memory": {RateLimit: config.RateLimitConfig{Enabled: true, RPS: 0.1, Burst: 1}},
		"redis": {
			RateLimit: config.RateLimitConfig{Enabled: true, UseRedis: true, RPS: 0, Burst: 1, WindowSeconds: 60},
			Redis:     redis.NewClient(&redis.Options{Addr: m.Addr()}),
		},
	} {
		t.Run(name, func(t *testing.T) {
			r := New(opts)
			require.Equal(t, http.StatusOK, get(r, "/health").Code)
			require.Equal(t, http.StatusTooManyRequests, get(r, "/health").Code)
		})
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	g := gin.New()
	g.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, g, addr, time.Second) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s/ping", addr))
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRunReportsListenErrors(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	err = Run(context.Background(), gin.New(), l.Addr().String(), time.Second)
	require.Error(t, err)
}
