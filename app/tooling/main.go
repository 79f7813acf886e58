package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jrazmi/artplanner/app/planner/config"
	"github.com/jrazmi/artplanner/app/tooling/commands"
	"github.com/jrazmi/artplanner/sdk/environment"
	"github.com/jrazmi/artplanner/sdk/logger"
)

var build = "develop"

// appName shares the planner's prefix so both binaries read the same store
// settings.
var appName = "PLANNER"

func processCommands(ctx context.Context, log *logger.Logger, command string, args []string, ds config.Datastore) error {
	switch command {
	case "migrate":
		log.InfoContext(ctx, "running migration")
		if err := commands.Migrate(ctx, log, ds); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil

	case "import-plan":
		log.InfoContext(ctx, "importing plan")
		if err := commands.ImportPlan(ctx, log, args, ds.Repositories.Tasks); err != nil {
			if errors.Is(err, commands.ErrHelp) {
				return nil
			}
			return fmt.Errorf("import plan failed: %w", err)
		}
		return nil

	default:
		printHelp()
		return nil
	}
}

func printHelp() {
	fmt.Println("Available commands:")
	fmt.Println("  migrate      - create or update the schema of the configured store")
	fmt.Println("  import-plan  - seed a user's recurring tasks from a YAML plan (-user, -file)")
	fmt.Println()
	fmt.Println("The store is selected with PLANNER_STORE_DRIVER (postgres, sqlite, mongo).")
}

func run(ctx context.Context, log *logger.Logger) error {
	log.InfoContext(ctx, "startup", "GOMAXPROCS", runtime.GOMAXPROCS(0), "build", build)

	var command string
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if command == "" || command == "help" || command == "--help" || command == "-h" {
		printHelp()
		return nil
	}

	var storeCfg config.Store
	if err := environment.ParseEnvTags(appName, &storeCfg); err != nil {
		return fmt.Errorf("parsing store config: %w", err)
	}
	storeCfg.AutoMigrate = false

	ds, err := config.OpenStore(ctx, log, appName, storeCfg)
	if err != nil {
		return err
	}
	defer ds.Close(context.Background())
	log.InfoContext(ctx, "init", "store", storeCfg.Driver)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		args := []string{}
		if len(os.Args) > 2 {
			args = os.Args[2:]
		}
		done <- processCommands(ctx, log, command, args, ds)
	}()

	select {
	case err := <-done:
		return err

	case sig := <-shutdown:
		log.InfoContext(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		cancel()

		// Give the command a short time to notice the cancellation.
		timer := time.NewTimer(5 * time.Second)
		defer timer.Stop()

		select {
		case err := <-done:
			return err
		case <-timer.C:
			return errors.New("shutdown timeout")
		}
	}
}

func main() {
	environment.LoadEnv()

	log, err := logger.NewFromEnv(appName, logger.WithService("TOOLING"))
	if err != nil {
		fmt.Println("oh no we couldn't even get logging going.")
		os.Exit(1)
	}
	ctx := context.Background()

	if err = run(ctx, log); err != nil {
		log.ErrorContext(ctx, "startup", "err", err)
		os.Exit(1)
	}
}
