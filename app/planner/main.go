package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"github.com/jrazmi/artplanner/app/planner/config"
	"github.com/jrazmi/artplanner/bridge/cases/analysisbridge"
	"github.com/jrazmi/artplanner/bridge/cases/authbridge"
	"github.com/jrazmi/artplanner/bridge/cases/plannerbridge"
	"github.com/jrazmi/artplanner/bridge/repositories/artsrepobridge"
	"github.com/jrazmi/artplanner/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/artplanner/bridge/scaffolding/mid"
	"github.com/jrazmi/artplanner/bridge/scaffolding/opsbridge"
	"github.com/jrazmi/artplanner/core/cases/analysiscase"
	"github.com/jrazmi/artplanner/core/cases/authcase"
	"github.com/jrazmi/artplanner/core/cases/plannercase"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/infrastructure/analyzer"
	"github.com/jrazmi/artplanner/infrastructure/filestore"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/infrastructure/workers"
	"github.com/jrazmi/artplanner/sdk/environment"
	"github.com/jrazmi/artplanner/sdk/logger"
	"github.com/jrazmi/artplanner/sdk/telemetry"
)

var build = "develop"
var appName = "PLANNER"

func main() {
	environment.LoadPath(os.Getenv("ENV_FILE"))
	ctx := context.Background()

	tel := telemetry.NewTelemetry()
	log, err := logger.NewFromEnv(appName,
		logger.WithService(appName),
		logger.WithTraceIDFn(tel.GetTraceID),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}

	if err := run(ctx, log, tel); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, tel telemetry.Telemetry) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var settings config.Settings
	if err := environment.ParseEnvTags(appName, &settings); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}

	// :*: START DATABASES :*:
	log.InfoContext(ctx, "startup", "status", "opening store", "driver", settings.Store.Driver)
	store, err := config.OpenStore(ctx, log, appName, settings.Store)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	files, err := filestore.NewFromEnv(appName)
	if err != nil {
		return fmt.Errorf("configuring file storage: %w", err)
	}

	// CASES //
	repos := store.Repositories

	authCfg, err := authcase.LoadConfig(appName)
	if err != nil {
		return err
	}
	auth, err := authcase.New(log, repos.Users, authCfg)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	rules, err := plannercase.LoadRules(appName)
	if err != nil {
		return err
	}

	client, err := analyzer.NewFromEnv(appName, log)
	if err != nil {
		return fmt.Errorf("configuring analyzer: %w", err)
	}

	pool, err := newAnalysisPool(log, settings.Jobs, analysiscase.NewProcessor(log, repos.Arts, repos.Jobs, files, client))
	if err != nil {
		return err
	}

	// Jobs a crashed process left in processing go back to the queue.
	if n, err := repos.Jobs.RecoverStale(ctx, settings.Jobs.StaleAfter); err != nil {
		return fmt.Errorf("recovering stale jobs: %w", err)
	} else if n > 0 {
		log.InfoContext(ctx, "startup", "status", "requeued stale analysis jobs", "count", n)
	}

	webCfg, err := web.LoadServerConfig(appName)
	if err != nil {
		return fmt.Errorf("webserver: %w", err)
	}

	cfg := config.Planner{
		Build:        build,
		Logger:       log,
		Telemetry:    tel,
		Server:       webCfg,
		Repositories: repos,
		Cases: config.Cases{
			Auth:     auth,
			Analysis: analysiscase.New(log, repos.Arts, repos.Jobs, files, pool),
			Planner:  plannercase.New(repos.Tasks, rules),
		},
		Files:       files,
		StatusCheck: store.StatusCheck,
		Pool:        pool,
	}

	handler, err := webHandler(cfg)
	if err != nil {
		return err
	}
	server := web.NewServer(webCfg,
		web.WithHandler(handler),
		web.WithErrorLog(logger.NewStdLogger(log, slog.LevelError)),
	)

	// WORKERS //
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := pool.Start(poolCtx); err != nil {
			log.ErrorContext(ctx, "worker pool", "err", err)
		}
	}()

	serverErrors := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "startup", "status", "api router started", "host", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErrors:
		stopPool()
		wg.Wait()
		return fmt.Errorf("server error: %w", err)

	case err, ok := <-pool.Errors():
		if !ok {
			err = errors.New("all analysis workers exited")
		}
		log.ErrorContext(ctx, "shutdown", "status", "worker pool failed", "err", err)

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.InfoContext(ctx, "shutdown", "status", "shutdown complete", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(ctx, webCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		server.Close()
		return fmt.Errorf("could not stop server gracefully: %w", err)
	}

	// In-flight analyses are requeued by the processor once cancelled.
	stopPool()
	wg.Wait()

	return nil
}

func newAnalysisPool(log *logger.Logger, cfg config.Jobs, processor *analysiscase.Processor) (*workers.WorkerPool[analysisjobsrepo.Job], error) {
	middleware := []workers.Middleware{workers.ConsecutiveErrorPause(cfg.ErrorPauseAfter, cfg.ErrorPause)}
	if cfg.ErrorShutdownAfter > 0 {
		middleware = append(middleware, workers.ConsecutiveErrorShutdown(cfg.ErrorShutdownAfter))
	}

	pool, err := workers.NewFromEnv[analysisjobsrepo.Job](appName, processor,
		workers.WithLogger(log),
		workers.WithMetrics(workers.NewLoggerMetrics(log, cfg.MetricsInterval)),
		workers.WithMiddleware(middleware...),
	)
	if err != nil {
		return nil, fmt.Errorf("configuring worker pool: %w", err)
	}

	pool.AddPreProcessHooks(workers.LogStartHook[analysisjobsrepo.Job](log))
	pool.AddPostProcessHooks(workers.LogEndHook[analysisjobsrepo.Job](log))

	return pool, nil
}

func webHandler(cfg config.Planner) (http.Handler, error) {
	log := cfg.Logger

	// INITIALIZATION
	app := web.NewWebHandler(
		web.WithLogging(log),
		web.WithTelemetry(cfg.Telemetry),
		web.WithGlobalMiddleware(
			mid.CORS(cfg.Server.CORSOrigins...), // CORS, answers preflight
			mid.Logger(log),                     // Request logging
			mid.Errors(log),                     // Error handling
			mid.Metrics(),                       // Metrics collection
			mid.Panics(),                        // Panic recovery
		),
	)
	app.EnablePreflight()

	// STATIC
	if err := app.FileServer(cfg.Files.UploadsDir(), config.UploadsRoute); err != nil {
		return nil, fmt.Errorf("uploads: %w", err)
	}
	if err := app.FileServer(cfg.Files.ResultsDir(), config.ResultsRoute); err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	if cfg.Server.EnableDebug {
		app.HandleRaw("GET /debug/vars", expvar.Handler())
	}

	root := app.Group("")
	public := app.Group(config.ApiRoute)
	api := app.Group(config.ApiRoute, mid.Authenticate(cfg.Cases.Auth))

	// OPS
	opsbridge.AddHttpRoutes(root, api, opsbridge.Config{
		Log:   log,
		Check: cfg.StatusCheck,
		Pool:  cfg.Pool,
	})

	// API
	authbridge.AddHttpRoutes(public, authbridge.Config{Log: log, Auth: cfg.Cases.Auth})
	tasksrepobridge.AddHttpRoutes(api, tasksrepobridge.Config{Log: log, Repository: cfg.Repositories.Tasks})
	artsrepobridge.AddHttpRoutes(api, artsrepobridge.Config{
		Log:            log,
		Repository:     cfg.Repositories.Arts,
		Analysis:       cfg.Cases.Analysis,
		MaxUploadBytes: cfg.Files.MaxUploadBytes(),
	})
	analysisbridge.AddHttpRoutes(api, analysisbridge.Config{
		Log:            log,
		Analysis:       cfg.Cases.Analysis,
		MaxUploadBytes: cfg.Files.MaxUploadBytes(),
	})
	plannerbridge.AddHttpRoutes(api, plannerbridge.Config{Log: log, Planner: cfg.Cases.Planner})

	return app, nil
}
