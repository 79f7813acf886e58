// Package tasksrepobridge contains HTTP route registration for Task
package tasksrepobridge

import (
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Config holds configuration for the Task bridge
type Config struct {
	Log        *logger.Logger
	Repository *tasksrepo.Repository
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for Task
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Repository)

	group.GET("/tasks/{user_id}", b.httpListByUser, cfg.Middleware...)
	group.POST("/tasks", b.httpCreate, cfg.Middleware...)
	group.PATCH("/tasks/{task_id}", b.httpPatch, cfg.Middleware...)
}
