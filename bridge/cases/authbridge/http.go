// Package authbridge contains HTTP route registration for registration and
// login.
package authbridge

import (
	"github.com/jrazmi/artplanner/core/cases/authcase"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Config holds configuration for the auth bridge
type Config struct {
	Log        *logger.Logger
	Auth       *authcase.Case
	Middleware []web.Middleware
}

// AddHttpRoutes registers the unauthenticated auth routes.
func AddHttpRoutes(group *web.RouteGroup, cfg Config) {
	b := newBridge(cfg.Log, cfg.Auth)

	group.POST("/register", b.httpRegister, cfg.Middleware...)
	group.POST("/login", b.httpLogin, cfg.Middleware...)
}
