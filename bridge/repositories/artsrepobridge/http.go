// Package artsrepobridge contains HTTP route registration for Art
package artsrepobridge

import (
	"github.com/jrazmi/artplanner/core/cases/analysiscase"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Config holds configuration for the Art bridge
type Config struct {
	Log            *logger.Logger
	Repository     *artsrepo.Repository
	Analysis       *analysiscase.Case
	MaxUploadBytes int64
	Middleware     []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Art
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Repository, cfg.Analysis, cfg.MaxUploadBytes)

	group.GET("/arts/{user_id}", b.httpListByUser, cfg.Middleware...)
	group.GET("/arts/folders/{user_id}", b.httpFolders, cfg.Middleware...)
	group.GET("/arts/detail/{art_id}", b.httpGet, cfg.Middleware...)
	group.POST("/upload", b.httpUpload, cfg.Middleware...)
}
