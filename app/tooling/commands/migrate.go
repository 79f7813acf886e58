// Package commands implements the tooling subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/artplanner/app/planner/config"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// ErrHelp provides context that help was given.
var ErrHelp = errors.New("provided help")

// Migrate brings the selected store's schema up to date.
func Migrate(ctx context.Context, log *logger.Logger, ds config.Datastore) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	log.InfoContext(ctx, "migration started", "step", "checking database status")

	if err := ds.StatusCheck(ctx); err != nil {
		return fmt.Errorf("database status check failed: %w", err)
	}

	log.InfoContext(ctx, "database status check successful", "step", "running migrations")

	if err := ds.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.InfoContext(ctx, "migrations completed successfully")
	return nil
}
