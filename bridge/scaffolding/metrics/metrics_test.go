package metrics_test

import (
	"context"
	"expvar"
	"net/http"
	"testing"

	"github.com/jrazmi/artplanner/bridge/scaffolding/metrics"
)

func intVar(t *testing.T, name string) int64 {
	t.Helper()
	v, ok := expvar.Get(name).(*expvar.Int)
	if !ok {
		t.Fatalf("expvar %q not registered", name)
	}
	return v.Value()
}

func TestCounters_RequireSet(t *testing.T) {
	before := intVar(t, "art_uploads")

	metrics.AddUploads(context.Background())
	if got := intVar(t, "art_uploads"); got != before {
		t.Errorf("Expected no change without Set, got %d -> %d", before, got)
	}

	ctx := metrics.Set(context.Background())
	metrics.AddUploads(ctx)
	metrics.AddAnalyses(ctx)
	if got := intVar(t, "art_uploads"); got != before+1 {
		t.Errorf("Expected uploads %d, got %d", before+1, got)
	}
	if got := intVar(t, "analyses_queued"); got < 1 {
		t.Errorf("Expected analyses_queued >= 1, got %d", got)
	}
}

func TestAddResponse(t *testing.T) {
	responses, ok := expvar.Get("responses").(*expvar.Map)
	if !ok {
		t.Fatal("responses map not registered")
	}
	count := func() int64 {
		if v, ok := responses.Get("429").(*expvar.Int); ok {
			return v.Value()
		}
		return 0
	}

	before := count()
	metrics.AddResponse(metrics.Set(context.Background()), http.StatusTooManyRequests)
	if got := count(); got != before+1 {
		t.Errorf("Expected 429 count %d, got %d", before+1, got)
	}
}
