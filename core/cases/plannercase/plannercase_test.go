package plannercase_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrazmi/artplanner/core/cases/plannercase"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func task(day tasksrepo.Day, cat tasksrepo.Category, done bool, at time.Time) tasksrepo.Task {
	return tasksrepo.Task{Title: "t", Day: day, Category: cat, IsCompleted: done, Date: at}
}

func TestProgress_Bounds(t *testing.T) {
	now := date(2026, time.March, 10)
	rules := plannercase.DefaultRules()

	sets := [][]tasksrepo.Task{
		nil,
		{task(tasksrepo.Monday, tasksrepo.CategoryDay, true, now)},
		{task(tasksrepo.Monday, tasksrepo.CategoryWeek, false, now)},
		{
			task(tasksrepo.Monday, tasksrepo.CategoryWeek, true, now),
			task(tasksrepo.Friday, tasksrepo.CategoryWeek, false, date(2025, time.March, 10)),
			task(tasksrepo.Anytime, tasksrepo.CategoryYear, true, date(2026, time.July, 1)),
		},
	}

	for _, p := range []plannercase.Period{plannercase.Year, plannercase.Month, plannercase.Week, plannercase.Day} {
		if got := plannercase.Progress(p, nil, now, rules); got != 0 {
			t.Errorf("Progress(%s, empty) = %d, want 0", p, got)
		}
		for i, set := range sets {
			got := plannercase.Progress(p, set, now, rules)
			if got < 0 || got > 100 {
				t.Errorf("Progress(%s, set %d) = %d out of range", p, i, got)
			}
		}
	}
}

func TestProgress_Selection(t *testing.T) {
	now := date(2026, time.March, 10)
	tasks := []tasksrepo.Task{
		task(tasksrepo.Monday, tasksrepo.CategoryWeek, true, date(2026, time.March, 10)),
		task(tasksrepo.Tuesday, tasksrepo.CategoryDay, false, date(2025, time.March, 10)),
		task(tasksrepo.Sunday, tasksrepo.CategoryWeek, false, date(2026, time.January, 2)),
	}

	rules := plannercase.DefaultRules()
	report := plannercase.ProgressAll(tasks, now, rules)

	// Year: two 2026 tasks, one done.
	if report.Year != 50 {
		t.Errorf("Year = %d, want 50", report.Year)
	}
	// Month: March in any year, one of two done.
	if report.Month != 50 {
		t.Errorf("Month = %d, want 50", report.Month)
	}
	// Week by category: two week tasks, one done.
	if report.Week != 50 {
		t.Errorf("Week = %d, want 50", report.Week)
	}
	// Day: March 10 in any year, one of two done.
	if report.Day != 50 {
		t.Errorf("Day = %d, want 50", report.Day)
	}

	rules.WeekMode = plannercase.WeekByRollingWindow
	if got := plannercase.Progress(plannercase.Week, tasks, now, rules); got != 100 {
		t.Errorf("rolling Week = %d, want 100", got)
	}

	rules.PlanningYear = 2025
	if got := plannercase.Progress(plannercase.Year, tasks, now, rules); got != 0 {
		t.Errorf("Year 2025 = %d, want 0", got)
	}

	rules.PlanningYear = 0
	if got := plannercase.Progress(plannercase.Year, tasks, now, rules); got != 50 {
		t.Errorf("Year from now = %d, want 50", got)
	}
}

func TestProgress_Rounding(t *testing.T) {
	now := date(2026, time.May, 1)
	tasks := []tasksrepo.Task{
		task(tasksrepo.Monday, tasksrepo.CategoryDay, true, now),
		task(tasksrepo.Monday, tasksrepo.CategoryDay, true, now),
		task(tasksrepo.Monday, tasksrepo.CategoryDay, false, now),
	}
	if got := plannercase.Progress(plannercase.Day, tasks, now, plannercase.DefaultRules()); got != 67 {
		t.Errorf("Progress = %d, want 67", got)
	}
}

func TestParsePeriod(t *testing.T) {
	if p, err := plannercase.ParsePeriod("Week"); err != nil || p != plannercase.Week {
		t.Errorf("ParsePeriod(Week) = %q, %v", p, err)
	}
	if _, err := plannercase.ParsePeriod("decade"); err == nil {
		t.Error("Expected error for unknown period")
	}
}

func TestCalendar_January2026(t *testing.T) {
	tasks := []tasksrepo.Task{
		task(tasksrepo.Monday, tasksrepo.CategoryDay, true, date(2026, time.January, 5)),
		task(tasksrepo.Monday, tasksrepo.CategoryDay, false, date(2024, time.January, 5)),
		task(tasksrepo.Monday, tasksrepo.CategoryDay, false, date(2026, time.February, 5)),
	}

	grid, err := plannercase.Calendar(2026, 0, tasks, nil)
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	if grid.Offset != 3 || grid.DaysInMonth != 31 || len(grid.Cells) != 34 {
		t.Fatalf("Expected offset 3, 31 days, 34 cells; got %d, %d, %d", grid.Offset, grid.DaysInMonth, len(grid.Cells))
	}
	for i := 0; i < 3; i++ {
		if grid.Cells[i].Day != 0 {
			t.Errorf("Cell %d should be a placeholder, got day %d", i, grid.Cells[i].Day)
		}
	}

	fifth := grid.Cells[3+4]
	if fifth.Day != 5 || !fifth.HasTasks || fifth.TaskCount != 2 || fifth.CompletedCount != 1 || !fifth.HasCompleted {
		t.Errorf("Unexpected cell for Jan 5: %+v", fifth)
	}
	if grid.Cells[3].HasTasks {
		t.Error("Jan 1 should have no tasks")
	}
}

func TestCalendar_Edges(t *testing.T) {
	// February 2026 starts on a Sunday.
	grid, err := plannercase.Calendar(2026, 1, nil, nil)
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	if grid.Offset != 6 || grid.DaysInMonth != 28 {
		t.Errorf("Expected offset 6 and 28 days, got %d and %d", grid.Offset, grid.DaysInMonth)
	}

	leap, err := plannercase.Calendar(2024, 1, []tasksrepo.Task{
		task(tasksrepo.Monday, tasksrepo.CategoryDay, false, date(2024, time.February, 29)),
	}, nil)
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	if leap.DaysInMonth != 29 || !leap.Cells[len(leap.Cells)-1].HasTasks {
		t.Errorf("Expected leap day with a task, got %+v", leap.Cells[len(leap.Cells)-1])
	}

	if _, err := plannercase.Calendar(2026, 12, nil, nil); err != plannercase.ErrInvalidMonth {
		t.Errorf("Expected ErrInvalidMonth, got %v", err)
	}
}

func TestWeekPlan(t *testing.T) {
	tasks := []tasksrepo.Task{
		{Title: "a", Day: tasksrepo.Monday},
		{Title: "b", Day: tasksrepo.Anytime},
		{Title: "c", Day: tasksrepo.Monday},
	}

	buckets := plannercase.WeekPlan(tasks)
	if len(buckets) != 8 {
		t.Fatalf("Expected 8 buckets, got %d", len(buckets))
	}
	if buckets[0].Day != tasksrepo.Monday || buckets[7].Day != tasksrepo.Anytime {
		t.Errorf("Unexpected bucket order: %s .. %s", buckets[0].Day, buckets[7].Day)
	}
	if len(buckets[0].Tasks) != 2 || buckets[0].Tasks[0].Title != "a" || buckets[0].Tasks[1].Title != "c" {
		t.Errorf("Unexpected Monday bucket %+v", buckets[0].Tasks)
	}
	if len(buckets[7].Tasks) != 1 || len(buckets[1].Tasks) != 0 {
		t.Errorf("Unexpected Anytime/Tuesday buckets")
	}
}

type stubLister struct {
	tasks []tasksrepo.Task
}

func (s stubLister) ListByUser(ctx context.Context, userID string) ([]tasksrepo.Task, error) {
	return s.tasks, nil
}

func TestCase_Month(t *testing.T) {
	c := plannercase.New(stubLister{}, plannercase.DefaultRules())

	year, month := 2026, 0
	grid, err := c.Month(context.Background(), "u1", &year, &month)
	if err != nil {
		t.Fatalf("Month failed: %v", err)
	}
	if len(grid.Cells) != 34 {
		t.Errorf("Expected 34 cells, got %d", len(grid.Cells))
	}

	bad := -1
	if _, err := c.Month(context.Background(), "u1", nil, &bad); err != plannercase.ErrInvalidMonth {
		t.Errorf("Expected ErrInvalidMonth, got %v", err)
	}
}

func TestDayProgressAndCalendarAgree_NonUTC(t *testing.T) {
	east := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, time.March, 11, 9, 0, 0, 0, east)
	tasks := []tasksrepo.Task{
		task(tasksrepo.Wednesday, tasksrepo.CategoryDay, true, time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)),
	}

	if got := plannercase.Progress(plannercase.Day, tasks, now, plannercase.DefaultRules()); got != 100 {
		t.Fatalf("Expected day progress 100 on Mar 11, got %d", got)
	}

	grid, err := plannercase.Calendar(2026, 2, tasks, now.Location())
	if err != nil {
		t.Fatalf("Calendar failed: %v", err)
	}
	day := func(d int) plannercase.Cell { return grid.Cells[grid.Offset+d-1] }
	if day(10).HasTasks || !day(11).HasCompleted {
		t.Errorf("Expected the task on Mar 11 only, got Mar10=%+v Mar11=%+v", day(10), day(11))
	}
}
