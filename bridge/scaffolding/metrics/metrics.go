// Package metrics holds the expvar counters published under /debug/vars.
package metrics

import (
	"context"
	"expvar"
	"runtime"
	"strconv"
)

// expvar registration is global, so there is exactly one set.
var m = &metrics{
	goroutines: expvar.NewInt("goroutines"),
	requests:   expvar.NewInt("requests"),
	errors:     expvar.NewInt("errors"),
	panics:     expvar.NewInt("panics"),
	responses:  expvar.NewMap("responses"),
	uploads:    expvar.NewInt("art_uploads"),
	analyses:   expvar.NewInt("analyses_queued"),
}

type metrics struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int
	responses  *expvar.Map
	uploads    *expvar.Int
	analyses   *expvar.Int
}

type ctxKey int

const key ctxKey = 1

// Set puts the counters in ctx. Handlers called without it record nothing.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, m)
}

func from(ctx context.Context) *metrics {
	v, _ := ctx.Value(key).(*metrics)
	return v
}

// AddGoroutines refreshes the goroutine gauge.
func AddGoroutines(ctx context.Context) int64 {
	v := from(ctx)
	if v == nil {
		return 0
	}
	g := int64(runtime.NumGoroutine())
	v.goroutines.Set(g)
	return g
}

// AddRequests counts one request and returns the running total.
func AddRequests(ctx context.Context) int64 {
	v := from(ctx)
	if v == nil {
		return 0
	}
	v.requests.Add(1)
	return v.requests.Value()
}

// AddResponse counts a response under its status code.
func AddResponse(ctx context.Context, status int) {
	if v := from(ctx); v != nil {
		v.responses.Add(strconv.Itoa(status), 1)
	}
}

func AddErrors(ctx context.Context) int64 {
	v := from(ctx)
	if v == nil {
		return 0
	}
	v.errors.Add(1)
	return v.errors.Value()
}

func AddPanics(ctx context.Context) int64 {
	v := from(ctx)
	if v == nil {
		return 0
	}
	v.panics.Add(1)
	return v.panics.Value()
}

// AddUploads counts stored artworks.
func AddUploads(ctx context.Context) {
	if v := from(ctx); v != nil {
		v.uploads.Add(1)
	}
}

// AddAnalyses counts jobs put on the analysis queue.
func AddAnalyses(ctx context.Context) {
	if v := from(ctx); v != nil {
		v.analyses.Add(1)
	}
}
