package tasksrepobridge

import (
	"fmt"
	"time"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/sdk/validation"
)

func MarshalToBridge(task tasksrepo.Task) Task {
	return Task{
		ID:          task.TaskID,
		UserID:      task.UserID,
		Title:       task.Title,
		Day:         string(task.Day),
		Category:    string(task.Category),
		IsCompleted: task.IsCompleted,
		Date:        task.Date.UTC().Format(time.RFC3339),
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// MarshalListToBridge converts a list of core models to bridge models
func MarshalListToBridge(tasks []tasksrepo.Task) []Task {
	out := make([]Task, len(tasks))
	for i, task := range tasks {
		out[i] = MarshalToBridge(task)
	}
	return out
}

// MarshalCreateToRepository converts bridge create input to repository input
// for the authenticated user.
func MarshalCreateToRepository(userID string, input CreateTaskInput) (tasksrepo.CreateTask, error) {
	day, err := tasksrepo.ParseDay(input.Day)
	if err != nil {
		return tasksrepo.CreateTask{}, err
	}

	category, err := tasksrepo.ParseCategory(input.Category)
	if err != nil {
		return tasksrepo.CreateTask{}, err
	}

	ct := tasksrepo.CreateTask{
		UserID:   userID,
		Title:    input.Title,
		Day:      day,
		Category: category,
	}

	if input.Date != "" {
		d, err := validation.ParseFlexibleDate(input.Date)
		if err != nil {
			return tasksrepo.CreateTask{}, fmt.Errorf("date: %w", err)
		}
		ct.Date = &d
	}

	return ct, nil
}
