// Package opsbridge exposes the health check and worker pool metrics.
package opsbridge

import (
	"context"
	"net/http"
	"time"

	"github.com/jrazmi/artplanner/bridge/scaffolding/errs"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/infrastructure/workers"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// StatusChecker reports whether a backing store is reachable.
type StatusChecker func(ctx context.Context) error

// MetricsSource is satisfied by a running worker pool.
type MetricsSource interface {
	GetMetrics() workers.MetricsSnapshot
}

// Config holds configuration for the ops bridge. Pool may be nil when no
// worker pool runs in this process.
type Config struct {
	Log        *logger.Logger
	Check      StatusChecker
	Pool       MetricsSource
	Timeout    time.Duration
	Middleware []web.Middleware
}

type Status struct {
	Status string `json:"status"`
}

// AddHttpRoutes registers /healthz on root and the worker metrics on api.
func AddHttpRoutes(root, api *web.RouteGroup, cfg Config) {
	b := newBridge(cfg)

	root.GET("/healthz", b.httpHealth, cfg.Middleware...)
	api.GET("/ops/workers", b.httpWorkers, cfg.Middleware...)
}

type bridge struct {
	log     *logger.Logger
	check   StatusChecker
	pool    MetricsSource
	timeout time.Duration
}

func newBridge(cfg Config) *bridge {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &bridge{
		log:     cfg.Log,
		check:   cfg.Check,
		pool:    cfg.Pool,
		timeout: cfg.Timeout,
	}
}

func (b *bridge) httpHealth(ctx context.Context, _ *http.Request) web.Encoder {
	if b.check != nil {
		ctx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()

		if err := b.check(ctx); err != nil {
			b.log.WarnContext(ctx, "health check failed", "error", err)
			return errs.Newf(errs.Unavailable, "store unavailable")
		}
	}

	return web.NewJSONResponse(Status{Status: "ok"})
}

func (b *bridge) httpWorkers(_ context.Context, _ *http.Request) web.Encoder {
	if b.pool == nil {
		return web.NewJSONResponse(workers.MetricsSnapshot{})
	}
	return web.NewJSONResponse(b.pool.GetMetrics())
}
