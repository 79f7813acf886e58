package taskspgxstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/infrastructure/postgresdb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

const taskColumns = `task_id, user_id, title, day, category, is_completed, date, created_at`

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Create(ctx context.Context, task tasksrepo.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `)
		VALUES (@task_id, @user_id, @title, @day, @category, @is_completed, @date, @created_at)`

	args := pgx.NamedArgs{
		"task_id":      task.TaskID,
		"user_id":      task.UserID,
		"title":        task.Title,
		"day":          string(task.Day),
		"category":     string(task.Category),
		"is_completed": task.IsCompleted,
		"date":         task.Date,
		"created_at":   task.CreatedAt,
	}

	if _, err := s.pool.Exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert task: %w", postgresdb.HandlePgError(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, taskID, userID string) (tasksrepo.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE task_id = @task_id AND user_id = @user_id`

	return s.one(ctx, query, pgx.NamedArgs{"task_id": taskID, "user_id": userID})
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]tasksrepo.Task, error) {
	query := `SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = @user_id
		ORDER BY created_at, task_id`

	rows, err := s.pool.Query(ctx, query, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, postgresdb.HandlePgError(err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByName[tasksrepo.Task])
}

func (s *Store) SetCompleted(ctx context.Context, taskID, userID string, completed bool) (tasksrepo.Task, error) {
	query := `UPDATE tasks SET is_completed = @is_completed
		WHERE task_id = @task_id AND user_id = @user_id
		RETURNING ` + taskColumns

	return s.one(ctx, query, pgx.NamedArgs{"task_id": taskID, "user_id": userID, "is_completed": completed})
}

func (s *Store) Toggle(ctx context.Context, taskID, userID string) (tasksrepo.Task, error) {
	query := `UPDATE tasks SET is_completed = NOT is_completed
		WHERE task_id = @task_id AND user_id = @user_id
		RETURNING ` + taskColumns

	return s.one(ctx, query, pgx.NamedArgs{"task_id": taskID, "user_id": userID})
}

func (s *Store) one(ctx context.Context, query string, args pgx.NamedArgs) (tasksrepo.Task, error) {
	rows, err := s.pool.Query(ctx, query, args)
	if err != nil {
		return tasksrepo.Task{}, notFound(err)
	}
	defer rows.Close()

	task, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return tasksrepo.Task{}, notFound(err)
	}

	return task, nil
}

// notFound reports a missing row or a malformed id as tasksrepo.ErrNotFound.
func notFound(err error) error {
	err = postgresdb.HandlePgError(err)
	if errors.Is(err, postgresdb.ErrDBNotFound) {
		return tasksrepo.ErrNotFound
	}
	return err
}
