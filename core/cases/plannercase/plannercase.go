// Package plannercase derives the planner's read-only projections from a
// user's task list: period progress, weekday buckets and the month calendar.
// Everything here is pure and recomputed per request.
package plannercase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/sdk/environment"
)

var ErrInvalidMonth = errors.New("month must be between 0 and 11")

// Period is a progress rollup window.
type Period string

const (
	Year  Period = "year"
	Month Period = "month"
	Week  Period = "week"
	Day   Period = "day"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case Year, Month, Week, Day:
		return p, nil
	}
	return "", fmt.Errorf("invalid period %q", s)
}

// WeekMode selects what "this week" means for progress.
type WeekMode string

const (
	// WeekByCategory counts tasks tagged with the week category.
	WeekByCategory WeekMode = "category"
	// WeekByRollingWindow counts tasks dated in the last seven days.
	WeekByRollingWindow WeekMode = "rolling"
)

// Rules holds the configurable selection rules.
type Rules struct {
	// PlanningYear is the year Year progress covers. Zero uses now's year.
	PlanningYear int      `env:"PLANNER_YEAR" default:"2026"`
	WeekMode     WeekMode `env:"PLANNER_WEEK_MODE" default:"category"`
}

// DefaultRules mirrors the environment defaults.
func DefaultRules() Rules {
	return Rules{PlanningYear: 2026, WeekMode: WeekByCategory}
}

// LoadRules parses Rules from environment variables.
func LoadRules(prefix string) (Rules, error) {
	var r Rules
	if err := environment.ParseEnvTags(prefix, &r); err != nil {
		return Rules{}, fmt.Errorf("parsing planner rules: %w", err)
	}
	switch r.WeekMode {
	case WeekByCategory, WeekByRollingWindow:
	default:
		return Rules{}, fmt.Errorf("invalid week mode %q", r.WeekMode)
	}
	return r, nil
}

// Progress returns the rounded completion percentage of the tasks period
// selects, or 0 when it selects none.
func Progress(period Period, tasks []tasksrepo.Task, now time.Time, rules Rules) int {
	var selected, completed int
	for _, t := range tasks {
		if !selects(period, t, now, rules) {
			continue
		}
		selected++
		if t.IsCompleted {
			completed++
		}
	}

	if selected == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(selected)))
}

func selects(period Period, t tasksrepo.Task, now time.Time, rules Rules) bool {
	date := t.Date.In(now.Location())

	switch period {
	case Year:
		year := rules.PlanningYear
		if year == 0 {
			year = now.Year()
		}
		return date.Year() == year

	case Month:
		return date.Month() == now.Month()

	case Week:
		if rules.WeekMode == WeekByRollingWindow {
			end := startOfDay(now).AddDate(0, 0, 1)
			start := startOfDay(now).AddDate(0, 0, -6)
			return !date.Before(start) && date.Before(end)
		}
		return t.Category == tasksrepo.CategoryWeek

	case Day:
		return date.Month() == now.Month() && date.Day() == now.Day()
	}

	return false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Report holds all four rollups.
type Report struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Week  int `json:"week"`
	Day   int `json:"day"`
}

func ProgressAll(tasks []tasksrepo.Task, now time.Time, rules Rules) Report {
	return Report{
		Year:  Progress(Year, tasks, now, rules),
		Month: Progress(Month, tasks, now, rules),
		Week:  Progress(Week, tasks, now, rules),
		Day:   Progress(Day, tasks, now, rules),
	}
}

// DayBucket is one planner column.
type DayBucket struct {
	Day   tasksrepo.Day    `json:"day"`
	Tasks []tasksrepo.Task `json:"tasks"`
}

// WeekPlan groups tasks into the eight planner columns, Monday through
// Sunday then Anytime, keeping list order inside each column.
func WeekPlan(tasks []tasksrepo.Task) []DayBucket {
	buckets := make([]DayBucket, len(tasksrepo.Days))
	index := make(map[tasksrepo.Day]int, len(tasksrepo.Days))
	for i, d := range tasksrepo.Days {
		buckets[i] = DayBucket{Day: d, Tasks: []tasksrepo.Task{}}
		index[d] = i
	}

	for _, t := range tasks {
		if i, ok := index[t.Day]; ok {
			buckets[i].Tasks = append(buckets[i].Tasks, t)
		}
	}

	return buckets
}

// Cell is one calendar square. Placeholders before day 1 have Day 0.
type Cell struct {
	Day            int  `json:"day"`
	HasTasks       bool `json:"hasTasks"`
	TaskCount      int  `json:"taskCount"`
	CompletedCount int  `json:"completedCount"`
	HasCompleted   bool `json:"hasCompleted"`
}

type Grid struct {
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Offset      int    `json:"offset"`
	DaysInMonth int    `json:"daysInMonth"`
	Cells       []Cell `json:"cells"`
}

// Calendar builds a Monday-first grid for the 0-indexed month. Task markers
// match on month and day of month in any year, read in loc (UTC when nil).
func Calendar(year, month0 int, tasks []tasksrepo.Task, loc *time.Location) (Grid, error) {
	if month0 < 0 || month0 > 11 {
		return Grid{}, ErrInvalidMonth
	}
	if loc == nil {
		loc = time.UTC
	}

	month := time.Month(month0 + 1)
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	grid := Grid{
		Year:        year,
		Month:       month0,
		Offset:      offset,
		DaysInMonth: days,
		Cells:       make([]Cell, offset, offset+days),
	}

	for d := 1; d <= days; d++ {
		grid.Cells = append(grid.Cells, Cell{Day: d})
	}

	for _, t := range tasks {
		date := t.Date.In(loc)
		if date.Month() != month || date.Day() > days {
			continue
		}
		c := &grid.Cells[offset+date.Day()-1]
		c.HasTasks = true
		c.TaskCount++
		if t.IsCompleted {
			c.CompletedCount++
			c.HasCompleted = true
		}
	}

	return grid, nil
}

// TaskLister loads a user's tasks.
type TaskLister interface {
	ListByUser(ctx context.Context, userID string) ([]tasksrepo.Task, error)
}

// Case serves the projections for one user at a time.
type Case struct {
	tasks TaskLister
	rules Rules
	now   func() time.Time
}

// New returns a Case on a UTC clock, the zone request dates parse into.
func New(tasks TaskLister, rules Rules) *Case {
	return &Case{tasks: tasks, rules: rules, now: func() time.Time { return time.Now().UTC() }}
}

// Report computes all rollups as of at; a zero at means now.
func (c *Case) Report(ctx context.Context, userID string, at time.Time) (Report, error) {
	tasks, err := c.tasks.ListByUser(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("planner report: %w", err)
	}
	if at.IsZero() {
		at = c.now()
	}
	return ProgressAll(tasks, at, c.rules), nil
}

func (c *Case) Week(ctx context.Context, userID string) ([]DayBucket, error) {
	tasks, err := c.tasks.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("planner week: %w", err)
	}
	return WeekPlan(tasks), nil
}

// Month builds the calendar in the clock's zone; a nil year or month falls
// back to now's.
func (c *Case) Month(ctx context.Context, userID string, year, month0 *int) (Grid, error) {
	now := c.now()
	y, m := now.Year(), int(now.Month())-1
	if year != nil {
		y = *year
	}
	if month0 != nil {
		m = *month0
	}
	if m < 0 || m > 11 {
		return Grid{}, ErrInvalidMonth
	}

	tasks, err := c.tasks.ListByUser(ctx, userID)
	if err != nil {
		return Grid{}, fmt.Errorf("planner calendar: %w", err)
	}
	return Calendar(y, m, tasks, now.Location())
}
