package analysisjobssqlitestore_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo/stores/analysisjobssqlitestore"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo/stores/artssqlitestore"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb/sqlitedbtest"
	"github.com/jrazmi/artplanner/sdk/logger"
)

type fixture struct {
	jobs *analysisjobsrepo.Repository
	arts *artsrepo.Repository
	art  artsrepo.Art
}

func setup(t *testing.T) fixture {
	t.Helper()

	ctx := context.Background()
	log := logger.NewDiscard()
	db := sqlitedbtest.NewDB(t)
	sqlitedbtest.SeedUser(t, db, "u1")

	arts := artsrepo.NewRepository(log, artssqlitestore.NewStore(log, db))
	art, err := arts.Create(ctx, artsrepo.CreateArt{UserID: "u1", OriginalPath: "a.png"})
	if err != nil {
		t.Fatalf("create art: %v", err)
	}

	return fixture{
		jobs: analysisjobsrepo.NewRepository(log, analysisjobssqlitestore.NewStore(log, db)),
		arts: arts,
		art:  art,
	}
}

func TestCheckout_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	if _, err := f.jobs.Checkout(ctx, "w1"); !errors.Is(err, analysisjobsrepo.ErrNoJobs) {
		t.Fatalf("Expected ErrNoJobs on empty queue, got %v", err)
	}

	queued, err := f.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{ArtID: f.art.ArtID, UserID: "u1", Prompt: "check anatomy"})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	claimed, err := f.jobs.Checkout(ctx, "w1")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if claimed.JobID != queued.JobID || claimed.Status != analysisjobsrepo.StatusProcessing {
		t.Errorf("Unexpected claimed job %+v", claimed)
	}
	if claimed.Attempts != 1 || claimed.WorkerID == nil || *claimed.WorkerID != "w1" {
		t.Errorf("Expected attempt 1 by w1, got %+v", claimed)
	}

	if _, err := f.jobs.Checkout(ctx, "w2"); !errors.Is(err, analysisjobsrepo.ErrNoJobs) {
		t.Errorf("Expected processing job to be invisible to other workers, got %v", err)
	}

	if err := f.jobs.MarkFailed(ctx, claimed.JobID, errors.New("upstream 502")); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	jobs, err := f.jobs.ListByArt(ctx, f.art.ArtID, "u1")
	if err != nil {
		t.Fatalf("ListByArt failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != analysisjobsrepo.StatusFailed {
		t.Fatalf("Expected one failed job, got %+v", jobs)
	}
	if jobs[0].ErrorMessage == nil || *jobs[0].ErrorMessage != "upstream 502" {
		t.Errorf("Expected error message recorded, got %v", jobs[0].ErrorMessage)
	}

	other, err := f.jobs.ListByArt(ctx, f.art.ArtID, "u2")
	if err != nil {
		t.Fatalf("ListByArt failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no jobs visible to u2, got %d", len(other))
	}
}

func TestCheckout_ConcurrentWorkersClaimOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	const total = 5
	for range total {
		art, err := f.arts.Create(ctx, artsrepo.CreateArt{UserID: "u1", OriginalPath: "b.png"})
		if err != nil {
			t.Fatalf("create art: %v", err)
		}
		if _, err := f.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{ArtID: art.ArtID, UserID: "u1"}); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	var (
		mu   sync.Mutex
		seen = map[string]int{}
		wg   sync.WaitGroup
	)
	for w := range 4 {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				job, err := f.jobs.Checkout(ctx, "w")
				if errors.Is(err, analysisjobsrepo.ErrNoJobs) {
					return
				}
				if err != nil {
					t.Errorf("worker %d checkout: %v", worker, err)
					return
				}
				mu.Lock()
				seen[job.JobID]++
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	if len(seen) != total {
		t.Errorf("Expected %d distinct jobs claimed, got %d", total, len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Job %s claimed %d times", id, n)
		}
	}
}

func TestRequeueAndRecoverStale(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	if _, err := f.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{ArtID: f.art.ArtID, UserID: "u1"}); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	claimed, err := f.jobs.Checkout(ctx, "w1")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if err := f.jobs.Requeue(ctx, claimed.JobID); err != nil {
		t.Fatalf("Requeue failed: %v", err)
	}

	again, err := f.jobs.Checkout(ctx, "w2")
	if err != nil {
		t.Fatalf("Checkout after requeue failed: %v", err)
	}
	if again.Attempts != 2 {
		t.Errorf("Expected attempts 2 after requeue, got %d", again.Attempts)
	}

	time.Sleep(5 * time.Millisecond)
	n, err := f.jobs.RecoverStale(ctx, time.Millisecond)
	if err != nil {
		t.Fatalf("RecoverStale failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 recovered job, got %d", n)
	}

	if err := f.jobs.MarkCompleted(ctx, "missing"); !errors.Is(err, analysisjobsrepo.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestEnqueue_OneActiveJobPerArt(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{ArtID: f.art.ArtID, UserID: "u1"})
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if _, err := f.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{ArtID: f.art.ArtID, UserID: "u1"}); !errors.Is(err, analysisjobsrepo.ErrActiveJob) {
		t.Fatalf("Expected ErrActiveJob while queued, got %v", err)
	}

	if _, err := f.jobs.Checkout(ctx, "w1"); err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if _, err := f.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{ArtID: f.art.ArtID, UserID: "u1"}); !errors.Is(err, analysisjobsrepo.ErrActiveJob) {
		t.Fatalf("Expected ErrActiveJob while processing, got %v", err)
	}

	if err := f.jobs.MarkFailed(ctx, first.JobID, errors.New("upstream 502")); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if _, err := f.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{ArtID: f.art.ArtID, UserID: "u1"}); err != nil {
		t.Errorf("Expected a retry after failure to queue, got %v", err)
	}
}
