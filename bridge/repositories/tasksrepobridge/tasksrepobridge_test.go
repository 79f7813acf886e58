package tasksrepobridge_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/jrazmi/artplanner/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/artplanner/bridge/scaffolding/bridgetest"
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
	sqlitedbtest.SeedUser(t, db, "bob")

	repo := tasksrepo.NewRepository(log, taskssqlitestore.NewStore(log, db))
	return bridgetest.NewHandler(func(api *web.RouteGroup) {
		tasksrepobridge.AddHttpRoutes(api, tasksrepobridge.Config{Log: log, Repository: repo})
	})
}

func TestCreateListToggle(t *testing.T) {
	h := newHandler(t)

	rec := bridgetest.Do(t, h, http.MethodPost, "/api/tasks", "alice", map[string]string{
		"title":    "Sketch hands",
		"day":      "Monday",
		"category": "weekly",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created tasksrepobridge.Task
	bridgetest.DecodeJSON(t, rec, &created)
	if created.Category != "week" || created.IsCompleted || created.UserID != "alice" {
		t.Errorf("Unexpected created task %+v", created)
	}

	rec = bridgetest.Do(t, h, http.MethodGet, "/api/tasks/alice", "alice", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var list []tasksrepobridge.Task
	bridgetest.DecodeJSON(t, rec, &list)
	if len(list) != 1 || list[0].Title != "Sketch hands" || list[0].IsCompleted {
		t.Fatalf("Expected one incomplete task, got %+v", list)
	}

	rec = bridgetest.Do(t, h, http.MethodPatch, "/api/tasks/"+created.ID, "alice", nil)
	var toggled tasksrepobridge.Task
	bridgetest.DecodeJSON(t, rec, &toggled)
	if rec.Code != http.StatusOK || !toggled.IsCompleted {
		t.Fatalf("Expected toggle to complete the task, got %d %+v", rec.Code, toggled)
	}

	rec = bridgetest.Do(t, h, http.MethodPatch, "/api/tasks/"+created.ID, "alice", map[string]any{"isCompleted": true})
	var set tasksrepobridge.Task
	bridgetest.DecodeJSON(t, rec, &set)
	if rec.Code != http.StatusOK || !set.IsCompleted {
		t.Errorf("Expected explicit set to keep it completed, got %d %+v", rec.Code, set)
	}
}

func TestOwnership(t *testing.T) {
	h := newHandler(t)

	rec := bridgetest.Do(t, h, http.MethodPost, "/api/tasks", "bob", map[string]string{"title": "Bob's task", "day": "Friday"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", rec.Code)
	}
	var bobs tasksrepobridge.Task
	bridgetest.DecodeJSON(t, rec, &bobs)

	rec = bridgetest.Do(t, h, http.MethodGet, "/api/tasks/bob", "alice", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 listing another user's tasks, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Bob's task") {
		t.Error("Response leaked another user's task")
	}

	rec = bridgetest.Do(t, h, http.MethodPatch, "/api/tasks/"+bobs.ID, "alice", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 toggling another user's task, got %d", rec.Code)
	}

	rec = bridgetest.Do(t, h, http.MethodPatch, "/api/tasks/abc", "alice", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for a malformed task id, got %d", rec.Code)
	}

	rec = bridgetest.Do(t, h, http.MethodPost, "/api/tasks", "alice", map[string]string{"userId": "bob", "title": "x", "day": "Monday"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403 creating for another user, got %d", rec.Code)
	}

	rec = bridgetest.Do(t, h, http.MethodGet, "/api/tasks/alice", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without a token, got %d", rec.Code)
	}
}

func TestCreate_Validation(t *testing.T) {
	h := newHandler(t)

	tests := map[string]map[string]string{
		"missing title": {"day": "Monday"},
		"bad day":       {"title": "x", "day": "Someday"},
		"bad category":  {"title": "x", "day": "Monday", "category": "hourly"},
		"bad date":      {"title": "x", "day": "Monday", "date": "yesterday"},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := bridgetest.Do(t, h, http.MethodPost, "/api/tasks", "alice", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}
