// Package plannerbridge contains HTTP route registration for the planner
// views: progress rollups, the weekly board and the month calendar.
package plannerbridge

import (
	"github.com/jrazmi/artplanner/core/cases/plannercase"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Config holds configuration for the planner bridge
type Config struct {
	Log        *logger.Logger
	Planner    *plannercase.Case
	Middleware []web.Middleware
}

// AddHttpRoutes registers all HTTP routes for the planner
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Planner)

	group.GET("/planner/progress", b.httpProgress, cfg.Middleware...)
	group.GET("/planner/week", b.httpWeek, cfg.Middleware...)
	group.GET("/planner/calendar", b.httpCalendar, cfg.Middleware...)
}
