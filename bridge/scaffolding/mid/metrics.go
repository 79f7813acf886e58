package mid

import (
	"context"
	"net/http"

	"github.com/jrazmi/artplanner/bridge/scaffolding/metrics"
	"github.com/jrazmi/artplanner/infrastructure/web"
)

// Metrics counts requests, errors and responses by status.
func Metrics() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = metrics.Set(ctx)

			resp := next(ctx, r)

			if n := metrics.AddRequests(ctx); n%1000 == 0 {
				metrics.AddGoroutines(ctx)
			}
			if isError(resp) != nil {
				metrics.AddErrors(ctx)
			}

			status := http.StatusOK
			switch v := resp.(type) {
			case nil:
				status = http.StatusNoContent
			case statusCoder:
				status = v.HTTPStatus()
			case error:
				status = http.StatusInternalServerError
			}
			metrics.AddResponse(ctx, status)

			return resp
		}
	}
}
