// Package server builds the gin engine and HTTP server shared by the aircnc services.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aircnc/aircnc-server/internal/config"
	"github.com/aircnc/aircnc-server/pkg/logger"
	"github.com/aircnc/aircnc-server/pkg/metrics"
	"github.com/aircnc/aircnc-server/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Options struct {
	// Name is reported by /health and /ready.
	Name      string
	RateLimit config.RateLimitConfig
	// Redis backs the distributed rate limiter when RateLimit.UseRedis is set.
	Redis *redis.Client
	// Checks run on every /ready request; any failure answers 503.
	Checks map[string]Check
	// Registry defaults to a fresh registry carrying the aircnc collectors.
	Registry *prometheus.Registry
}

// New returns an engine with recovery, request logging, CORS, optional rate limiting and
// the /health, /ready and /metrics endpoints.
func New(opts Options) *gin.Engine {
	started := time.Now()
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger(), cors())

	if opts.RateLimit.Enabled {
		if opts.RateLimit.UseRedis && opts.Redis != nil {
			win := time.Duration(opts.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(opts.Redis, opts.RateLimit.RPS, opts.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(opts.RateLimit.RPS, opts.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		ready := true
		deps := map[string]bool{}
		for name, check := range opts.Checks {
			err := check(ctx)
			deps[name] = err == nil
			if err != nil {
				ready = false
				logger.Warnf("readiness check %s failed: %v", name, err)
			}
		}
		body := gin.H{"service": opts.Name, "deps": deps, "uptime": time.Since(started).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		metrics.RegisterCollectors(reg)
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

// cors answers preflight requests and allows credentialed cross-origin calls so the
// Authentication cookie is sent.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		if origin := c.GetHeader("Origin"); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight requests for up
// to shutdownTimeout.
func Run(ctx context.Context, handler http.Handler, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
