package taskssqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb"
	"github.com/jrazmi/artplanner/sdk/logger"
)

const taskColumns = `task_id, user_id, title, day, category, is_completed, date, created_at`

type Store struct {
	log *logger.Logger
	db  *sql.DB
}

func NewStore(log *logger.Logger, db *sql.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, task tasksrepo.Task) error {
	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		task.TaskID, task.UserID, task.Title, string(task.Day), string(task.Category), task.IsCompleted,
		sqlitedb.FormatTime(task.Date), sqlitedb.FormatTime(task.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert task: %w", sqlitedb.HandleError(err))
	}
	return nil
}

func (s *Store) Get(ctx context.Context, taskID, userID string) (tasksrepo.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE task_id = ? AND user_id = ?`
	return scanTask(s.db.QueryRowContext(ctx, query, taskID, userID))
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]tasksrepo.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? ORDER BY created_at, task_id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, sqlitedb.HandleError(err)
	}
	defer rows.Close()

	var tasks []tasksrepo.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (s *Store) SetCompleted(ctx context.Context, taskID, userID string, completed bool) (tasksrepo.Task, error) {
	query := `UPDATE tasks SET is_completed = ? WHERE task_id = ? AND user_id = ? RETURNING ` + taskColumns
	return scanTask(s.db.QueryRowContext(ctx, query, completed, taskID, userID))
}

func (s *Store) Toggle(ctx context.Context, taskID, userID string) (tasksrepo.Task, error) {
	query := `UPDATE tasks SET is_completed = NOT is_completed WHERE task_id = ? AND user_id = ? RETURNING ` + taskColumns
	return scanTask(s.db.QueryRowContext(ctx, query, taskID, userID))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (tasksrepo.Task, error) {
	var (
		task            tasksrepo.Task
		day, category   string
		date, createdAt string
	)

	err := row.Scan(&task.TaskID, &task.UserID, &task.Title, &day, &category, &task.IsCompleted, &date, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tasksrepo.Task{}, tasksrepo.ErrNotFound
		}
		return tasksrepo.Task{}, sqlitedb.HandleError(err)
	}

	task.Day = tasksrepo.Day(day)
	task.Category = tasksrepo.Category(category)

	if task.Date, err = sqlitedb.ParseTime(date); err != nil {
		return tasksrepo.Task{}, fmt.Errorf("parse date: %w", err)
	}
	if task.CreatedAt, err = sqlitedb.ParseTime(createdAt); err != nil {
		return tasksrepo.Task{}, fmt.Errorf("parse created_at: %w", err)
	}

	return task, nil
}
