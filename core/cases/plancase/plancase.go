// Package plancase seeds a user's recurring tasks from a YAML plan file.
//
//	tasks:
//	  - title: Sketch hands
//	    day: Monday
//	    category: weekly
//	  - title: Master copy
//	    day: anytime
//	    category: month
//	    date: 2026-03-01
package plancase

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/sdk/validation"
)

var ErrEmptyPlan = errors.New("no tasks found in plan")

// YAMLTask is one task entry in a plan file.
type YAMLTask struct {
	Title    string `yaml:"title"`
	Day      string `yaml:"day"`
	Category string `yaml:"category,omitempty"`
	Date     string `yaml:"date,omitempty"`
}

// YAMLPlan is the root of a plan file.
type YAMLPlan struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// TaskCreator creates one task.
type TaskCreator interface {
	Create(ctx context.Context, input tasksrepo.CreateTask) (tasksrepo.Task, error)
}

// Parse decodes and validates a plan for userID. No task is created when any
// entry is invalid.
func Parse(userID string, data []byte) ([]tasksrepo.CreateTask, error) {
	var plan YAMLPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(plan.Tasks) == 0 {
		return nil, ErrEmptyPlan
	}

	out := make([]tasksrepo.CreateTask, 0, len(plan.Tasks))
	for i, yt := range plan.Tasks {
		ct, err := toCreate(userID, yt)
		if err != nil {
			return nil, fmt.Errorf("task %d (%q): %w", i+1, yt.Title, err)
		}
		out = append(out, ct)
	}
	return out, nil
}

func toCreate(userID string, yt YAMLTask) (tasksrepo.CreateTask, error) {
	if validation.Blank(yt.Title) {
		return tasksrepo.CreateTask{}, tasksrepo.ErrInvalidTitle
	}

	day, err := tasksrepo.ParseDay(yt.Day)
	if err != nil {
		return tasksrepo.CreateTask{}, err
	}

	category, err := tasksrepo.ParseCategory(yt.Category)
	if err != nil {
		return tasksrepo.CreateTask{}, err
	}

	ct := tasksrepo.CreateTask{
		UserID:   userID,
		Title:    yt.Title,
		Day:      day,
		Category: category,
	}

	if yt.Date != "" {
		d, err := validation.ParseFlexibleDate(yt.Date)
		if err != nil {
			return tasksrepo.CreateTask{}, err
		}
		ct.Date = &d
	}

	return ct, nil
}

// Import parses the plan and creates its tasks in order, returning how many
// were created.
func Import(ctx context.Context, tasks TaskCreator, userID string, data []byte) (int, error) {
	inputs, err := Parse(userID, data)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, in := range inputs {
		if _, err := tasks.Create(ctx, in); err != nil {
			return count, fmt.Errorf("create task %q: %w", in.Title, err)
		}
		count++
	}
	return count, nil
}
