package plannerbridge_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrazmi/artplanner/bridge/cases/plannerbridge"
	"github.com/jrazmi/artplanner/bridge/scaffolding/bridgetest"
	"github.com/jrazmi/artplanner/core/cases/plannercase"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo/stores/taskssqlitestore"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb/sqlitedbtest"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

func newHandler(t *testing.T) http.Handler {
	t.Helper()

	log := logger.NewDiscard()
	db := sqlitedbtest.NewDB(t)
	sqlitedbtest.SeedUser(t, db, "alice")

	tasks := tasksrepo.NewRepository(log, taskssqlitestore.NewStore(log, db))
	ctx := context.Background()
	date := time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)

	weekly, err := tasks.Create(ctx, tasksrepo.CreateTask{UserID: "alice", Title: "Gesture drawing", Day: tasksrepo.Monday, Category: tasksrepo.CategoryWeek, Date: &date})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := tasks.Toggle(ctx, weekly.TaskID, "alice"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if _, err := tasks.Create(ctx, tasksrepo.CreateTask{UserID: "alice", Title: "Color study", Day: tasksrepo.Anytime, Category: tasksrepo.CategoryDay, Date: &date}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	planner := plannercase.New(tasks, plannercase.DefaultRules())
	return bridgetest.NewHandler(func(api *web.RouteGroup) {
		plannerbridge.AddHttpRoutes(api, plannerbridge.Config{Log: log, Planner: planner})
	})
}

func TestProgress(t *testing.T) {
	h := newHandler(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/api/planner/progress?date=2026-01-15", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report plannercase.Report
	bridgetest.DecodeJSON(t, rec, &report)

	want := plannercase.Report{Year: 50, Month: 50, Week: 100, Day: 50}
	if report != want {
		t.Errorf("Expected %+v, got %+v", want, report)
	}

	rec = bridgetest.Do(t, h, http.MethodGet, "/api/planner/progress?date=someday", "alice", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a bad date, got %d", rec.Code)
	}
}

func TestWeek(t *testing.T) {
	h := newHandler(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/api/planner/week", "alice", nil)
	var buckets []plannerbridge.DayBucket
	bridgetest.DecodeJSON(t, rec, &buckets)

	if len(buckets) != 8 {
		t.Fatalf("Expected 8 day columns, got %d", len(buckets))
	}
	if buckets[0].Day != "Monday" || len(buckets[0].Tasks) != 1 || buckets[0].Tasks[0].Title != "Gesture drawing" {
		t.Errorf("Unexpected Monday column %+v", buckets[0])
	}
	if buckets[7].Day != "Anytime" || len(buckets[7].Tasks) != 1 {
		t.Errorf("Unexpected Anytime column %+v", buckets[7])
	}
}

func TestCalendar(t *testing.T) {
	h := newHandler(t)

	rec := bridgetest.Do(t, h, http.MethodGet, "/api/planner/calendar?year=2026&month=0", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var grid plannercase.Grid
	bridgetest.DecodeJSON(t, rec, &grid)

	if grid.Offset != 3 || grid.DaysInMonth != 31 || len(grid.Cells) != 34 {
		t.Fatalf("Unexpected grid shape offset=%d days=%d cells=%d", grid.Offset, grid.DaysInMonth, len(grid.Cells))
	}
	for _, c := range grid.Cells {
		if c.Day != 15 {
			continue
		}
		if c.TaskCount != 2 || c.CompletedCount != 1 || !c.HasCompleted {
			t.Errorf("Unexpected cell for the 15th %+v", c)
		}
	}

	for _, path := range []string{
		"/api/planner/calendar?year=2026&month=12",
		"/api/planner/calendar?year=twenty&month=0",
	} {
		rec := bridgetest.Do(t, h, http.MethodGet, path, "alice", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, rec.Code)
		}
	}

	rec = bridgetest.Do(t, h, http.MethodGet, "/api/planner/week?userId=bob", "alice", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for another user's planner, got %d", rec.Code)
	}
}
