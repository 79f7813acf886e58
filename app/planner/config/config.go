// Package config holds the wiring shared by the planner binary's parts.
package config

import (
	"context"
	"time"

	"github.com/jrazmi/artplanner/core/cases/analysiscase"
	"github.com/jrazmi/artplanner/core/cases/authcase"
	"github.com/jrazmi/artplanner/core/cases/plannercase"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/core/repositories/usersrepo"
	"github.com/jrazmi/artplanner/infrastructure/filestore"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/infrastructure/workers"
	"github.com/jrazmi/artplanner/sdk/logger"
	"github.com/jrazmi/artplanner/sdk/telemetry"
)

// site wide globals.
const (
	ApiRoute     = "/api"
	UploadsRoute = "/uploads/"
	ResultsRoute = "/results/"
)

// Store selects the persistence backend.
type Store struct {
	Driver      string `env:"STORE_DRIVER" default:"sqlite"`
	AutoMigrate bool   `env:"STORE_AUTO_MIGRATE" default:"true"`
}

// Jobs tunes the analysis worker pool beyond workers.Options.
type Jobs struct {
	StaleAfter      time.Duration `env:"JOB_STALE_AFTER" default:"10m"`
	MetricsInterval time.Duration `env:"WORKER_METRICS_INTERVAL" default:"5m"`
	ErrorPauseAfter int           `env:"WORKER_ERROR_PAUSE_AFTER" default:"5"`
	ErrorPause      time.Duration `env:"WORKER_ERROR_PAUSE" default:"30s"`

	// Zero keeps workers running through any number of failures.
	ErrorShutdownAfter int `env:"WORKER_ERROR_SHUTDOWN_AFTER" default:"0"`
}

// Settings is everything the binary reads from the environment itself;
// packages with their own loaders are parsed separately.
type Settings struct {
	Store Store
	Jobs  Jobs
}

type Repositories struct {
	Users *usersrepo.Repository
	Tasks *tasksrepo.Repository
	Arts  *artsrepo.Repository
	Jobs  *analysisjobsrepo.Repository
}

type Cases struct {
	Auth     *authcase.Case
	Analysis *analysiscase.Case
	Planner  *plannercase.Case
}

// Planner is the overall configuration for the planner application.
type Planner struct {
	Build     string
	Logger    *logger.Logger
	Telemetry telemetry.Telemetry
	Server    web.ServerConfig

	Repositories Repositories
	Cases        Cases
	Files        *filestore.Store

	// StatusCheck reports whether the selected store is reachable.
	StatusCheck func(ctx context.Context) error
	Pool        *workers.WorkerPool[analysisjobsrepo.Job]
}
