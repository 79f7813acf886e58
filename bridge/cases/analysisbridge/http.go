// Package analysisbridge contains HTTP route registration for AI analysis
package analysisbridge

import (
	"github.com/jrazmi/artplanner/core/cases/analysiscase"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Config holds configuration for the analysis bridge
type Config struct {
	Log            *logger.Logger
	Analysis       *analysiscase.Case
	MaxUploadBytes int64
	Middleware     []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for AI analysis
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Analysis, cfg.MaxUploadBytes)

	group.POST("/ai/process-art", b.httpProcessArt, cfg.Middleware...)
	group.GET("/ai/jobs/{art_id}", b.httpJobs, cfg.Middleware...)
}
