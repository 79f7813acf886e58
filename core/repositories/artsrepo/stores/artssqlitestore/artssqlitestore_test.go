package artssqlitestore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo/stores/artssqlitestore"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb/sqlitedbtest"
	"github.com/jrazmi/artplanner/sdk/logger"
)

func newRepo(t *testing.T) *artsrepo.Repository {
	t.Helper()

	db := sqlitedbtest.NewDB(t)
	sqlitedbtest.SeedUser(t, db, "u1")
	sqlitedbtest.SeedUser(t, db, "u2")

	log := logger.NewDiscard()
	return artsrepo.NewRepository(log, artssqlitestore.NewStore(log, db))
}

func TestRepository_CompleteOnce(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	art, err := repo.Create(ctx, artsrepo.CreateArt{UserID: "u1", OriginalPath: "1700000000000-hands.png"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if art.Status != artsrepo.StatusPending || art.ProcessedPath != nil || art.FeedbackText != nil {
		t.Errorf("Expected fresh pending art, got %+v", art)
	}

	if _, err := repo.Complete(ctx, art.ArtID, "u2", "processed.png", "nice"); !errors.Is(err, artsrepo.ErrNotFound) {
		t.Errorf("Expected ErrNotFound completing another user's art, got %v", err)
	}

	done, err := repo.Complete(ctx, art.ArtID, "u1", "processed-"+art.ArtID+".png", "Watch the proportions.")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if done.Status != artsrepo.StatusCompleted {
		t.Errorf("Expected completed, got %q", done.Status)
	}
	if done.ProcessedPath == nil || done.FeedbackText == nil || done.CompletedAt == nil {
		t.Fatalf("Expected result fields to be set, got %+v", done)
	}
	if *done.FeedbackText != "Watch the proportions." {
		t.Errorf("Unexpected feedback %q", *done.FeedbackText)
	}

	if _, err := repo.Complete(ctx, art.ArtID, "u1", "again.png", "again"); !errors.Is(err, artsrepo.ErrAlreadyCompleted) {
		t.Errorf("Expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestRepository_ListByStatus(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	first, err := repo.Create(ctx, artsrepo.CreateArt{UserID: "u1", OriginalPath: "a.png"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.Create(ctx, artsrepo.CreateArt{UserID: "u1", OriginalPath: "b.png"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.Create(ctx, artsrepo.CreateArt{UserID: "u2", OriginalPath: "c.png"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.Complete(ctx, first.ArtID, "u1", "p.png", "ok"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	all, err := repo.ListByUser(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 arts for u1, got %d", len(all))
	}

	completed := artsrepo.StatusCompleted
	done, err := repo.ListByUser(ctx, "u1", &completed)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(done) != 1 || done[0].ArtID != first.ArtID {
		t.Errorf("Expected only %s completed, got %+v", first.ArtID, done)
	}

	pending, processed := artsrepo.Folders(all)
	if len(pending) != 1 || len(processed) != 1 {
		t.Errorf("Expected 1 pending and 1 processed, got %d and %d", len(pending), len(processed))
	}
}
