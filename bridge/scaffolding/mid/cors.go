package mid

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/jrazmi/artplanner/infrastructure/web"
)

// CORSConfig lists what the browser client may send.
type CORSConfig struct {
	Origins     []string
	Methods     []string
	Headers     []string
	Credentials bool
	MaxAge      string
}

// DefaultCORSConfig allows the planner client's methods and headers from
// any origin.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		Origins:     []string{"*"},
		Methods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		Headers:     []string{"Accept", "Content-Type", "Content-Length", "Authorization", web.TraceHeader},
		Credentials: true,
		MaxAge:      "86400",
	}
}

// CORS is DefaultCORSConfig restricted to origins.
func CORS(origins ...string) web.Middleware {
	config := DefaultCORSConfig()
	if len(origins) > 0 {
		config.Origins = origins
	}
	return CORSWithConfig(config)
}

// CORSWithConfig answers preflight requests itself. Requests from origins
// not in the list get no CORS headers and are left to the browser to block.
func CORSWithConfig(config CORSConfig) web.Middleware {
	methods := strings.Join(config.Methods, ", ")
	headers := strings.Join(config.Headers, ", ")
	wildcard := slices.Contains(config.Origins, "*")

	return func(handler web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			w := web.GetWriter(ctx)
			origin := r.Header.Get("Origin")
			if w == nil || origin == "" {
				return handler(ctx, r)
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			switch {
			case wildcard && !config.Credentials:
				h.Set("Access-Control-Allow-Origin", "*")
			case wildcard || slices.Contains(config.Origins, origin):
				h.Set("Access-Control-Allow-Origin", origin)
				if config.Credentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			default:
				return handler(ctx, r)
			}

			if r.Method != http.MethodOptions {
				return handler(ctx, r)
			}

			if methods != "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if headers != "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			if config.MaxAge != "" {
				h.Set("Access-Control-Max-Age", config.MaxAge)
			}
			return web.NewNoContent()
		}
	}
}
