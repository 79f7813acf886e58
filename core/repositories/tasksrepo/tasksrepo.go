// Package tasksrepo stores users' recurring practice tasks.
package tasksrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/artplanner/sdk/logger"
)

// Set of error values for CRUD operations on task resource
var (
	ErrNotFound     = errors.New("task not found")
	ErrInvalidTitle = errors.New("task title is required")
)

// Storer persists tasks. Every lookup and mutation is scoped to the owning
// user; a task owned by someone else is reported as ErrNotFound. Ids that are
// not UUIDs never reach the storer.
type Storer interface {
	Create(ctx context.Context, task Task) error
	Get(ctx context.Context, taskID, userID string) (Task, error)
	ListByUser(ctx context.Context, userID string) ([]Task, error)
	SetCompleted(ctx context.Context, taskID, userID string, completed bool) (Task, error)
	Toggle(ctx context.Context, taskID, userID string) (Task, error)
}

type Repository struct {
	log    *logger.Logger
	storer Storer
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

func (r *Repository) Create(ctx context.Context, input CreateTask) (Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return Task{}, ErrInvalidTitle
	}

	now := time.Now().UTC()
	task := Task{
		TaskID:    uuid.NewString(),
		UserID:    input.UserID,
		Title:     title,
		Day:       input.Day,
		Category:  input.Category,
		Date:      now,
		CreatedAt: now,
	}
	if task.Category == "" {
		task.Category = CategoryDay
	}
	if input.Date != nil {
		task.Date = input.Date.UTC()
	}

	if err := r.storer.Create(ctx, task); err != nil {
		return Task{}, fmt.Errorf("task repository create: %w", err)
	}

	return task, nil
}

func (r *Repository) Get(ctx context.Context, taskID, userID string) (Task, error) {
	if uuid.Validate(taskID) != nil {
		return Task{}, fmt.Errorf("task repository get: %w", ErrNotFound)
	}
	task, err := r.storer.Get(ctx, taskID, userID)
	if err != nil {
		return Task{}, fmt.Errorf("task repository get: %w", err)
	}
	return task, nil
}

// ListByUser returns the user's tasks in creation order.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]Task, error) {
	tasks, err := r.storer.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task repository list: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// Toggle flips IsCompleted and returns the updated task. The flip happens in
// a single store statement so concurrent toggles never read a stale value.
func (r *Repository) Toggle(ctx context.Context, taskID, userID string) (Task, error) {
	if uuid.Validate(taskID) != nil {
		return Task{}, fmt.Errorf("task repository toggle: %w", ErrNotFound)
	}
	task, err := r.storer.Toggle(ctx, taskID, userID)
	if err != nil {
		return Task{}, fmt.Errorf("task repository toggle: %w", err)
	}
	return task, nil
}

func (r *Repository) SetCompleted(ctx context.Context, taskID, userID string, completed bool) (Task, error) {
	if uuid.Validate(taskID) != nil {
		return Task{}, fmt.Errorf("task repository set completed: %w", ErrNotFound)
	}
	task, err := r.storer.SetCompleted(ctx, taskID, userID, completed)
	if err != nil {
		return Task{}, fmt.Errorf("task repository set completed: %w", err)
	}
	return task, nil
}
