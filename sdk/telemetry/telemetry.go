// Package telemetry provides support for request trace ids.
package telemetry

import (
	"context"

	"github.com/jrazmi/artplanner/sdk/cryptids"
)

type telKey int

const (
	traceIDKey telKey = iota + 1
)

// NoTrace is returned when a context carries no trace id.
const NoTrace = "--------NOTRACE--------"

type Telemetry struct{}

// NewTelemetry creates a new telemetry instance
func NewTelemetry() Telemetry {
	return Telemetry{}
}

// SetTraceID stores a freshly generated trace id in the context.
func (t Telemetry) SetTraceID(ctx context.Context) context.Context {
	tid, err := cryptids.GenerateID()
	if err != nil {
		return context.WithValue(ctx, traceIDKey, NoTrace)
	}
	return context.WithValue(ctx, traceIDKey, tid)
}

// WithTraceID stores a caller supplied trace id, such as an inbound
// X-Request-ID header, falling back to a generated one when empty.
func (t Telemetry) WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return t.SetTraceID(ctx)
	}
	return context.WithValue(ctx, traceIDKey, traceID)
}

func (t Telemetry) GetTraceID(ctx context.Context) string {
	v, ok := ctx.Value(traceIDKey).(string)
	if !ok {
		return NoTrace
	}

	return v
}
