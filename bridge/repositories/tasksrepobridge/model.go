package tasksrepobridge

import (
	"errors"

	"github.com/jrazmi/artplanner/sdk/validation"
)

// Task is the JSON shape clients read.
type Task struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Title       string `json:"title"`
	Day         string `json:"day"`
	Category    string `json:"category"`
	IsCompleted bool   `json:"isCompleted"`
	Date        string `json:"date"`
	CreatedAt   string `json:"createdAt"`
}

type CreateTaskInput struct {
	UserID   string `json:"userId"`
	Title    string `json:"title"`
	Day      string `json:"day"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

func (c CreateTaskInput) Validate() error {
	if validation.Blank(c.Title) {
		return errors.New("title is required")
	}
	if validation.Blank(c.Day) {
		return errors.New("day is required")
	}
	return nil
}

// PatchTaskInput sets completion explicitly; without IsCompleted the task is
// toggled.
type PatchTaskInput struct {
	UserID      string `json:"userId"`
	IsCompleted *bool  `json:"isCompleted"`
}
