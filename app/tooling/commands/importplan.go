package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/jrazmi/artplanner/core/cases/plancase"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// ImportPlan seeds a user's recurring tasks from a YAML plan file.
//
//	import-plan -user <user id> -file plan.yaml
func ImportPlan(ctx context.Context, log *logger.Logger, args []string, tasks plancase.TaskCreator) error {
	fs := flag.NewFlagSet("import-plan", flag.ContinueOnError)
	userID := fs.String("user", "", "user id the tasks belong to")
	file := fs.String("file", "", "path to the YAML plan")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrHelp
		}
		return fmt.Errorf("parse flags: %w", err)
	}
	if *userID == "" || *file == "" {
		fs.Usage()
		return errors.New("both -user and -file are required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read plan: %w", err)
	}

	n, err := plancase.Import(ctx, tasks, *userID, data)
	if err != nil {
		return err
	}

	log.InfoContext(ctx, "plan imported", "user_id", *userID, "file", *file, "tasks", n)
	return nil
}
