package analysiscase_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrazmi/artplanner/core/cases/analysiscase"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo/stores/analysisjobssqlitestore"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo/stores/artssqlitestore"
	"github.com/jrazmi/artplanner/infrastructure/analyzer"
	"github.com/jrazmi/artplanner/infrastructure/filestore"
	"github.com/jrazmi/artplanner/infrastructure/sqlitedb/sqlitedbtest"
	"github.com/jrazmi/artplanner/infrastructure/workers"
	"github.com/jrazmi/artplanner/sdk/logger"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type env struct {
	arts      *artsrepo.Repository
	jobs      *analysisjobsrepo.Repository
	files     *filestore.Store
	cases     *analysiscase.Case
	processor *analysiscase.Processor
	wakes     *atomic.Int32
}

type countingWaker struct {
	n *atomic.Int32
}

func (w countingWaker) Wake() { w.n.Add(1) }

// newEnv wires the case against SQLite, temp dirs and a fake provider.
func newEnv(t *testing.T, provider http.HandlerFunc) env {
	t.Helper()

	log := logger.NewDiscard()
	db := sqlitedbtest.NewDB(t)
	sqlitedbtest.SeedUser(t, db, "u1")
	sqlitedbtest.SeedUser(t, db, "u2")

	dir := t.TempDir()
	files, err := filestore.New(filestore.Options{
		UploadsDir: filepath.Join(dir, "uploads"),
		ResultsDir: filepath.Join(dir, "results"),
	})
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}

	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	arts := artsrepo.NewRepository(log, artssqlitestore.NewStore(log, db))
	jobs := analysisjobsrepo.NewRepository(log, analysisjobssqlitestore.NewStore(log, db))
	an := analyzer.New(log, analyzer.Options{URL: srv.URL, Timeout: 5 * time.Second})
	wakes := &atomic.Int32{}

	return env{
		arts:      arts,
		jobs:      jobs,
		files:     files,
		cases:     analysiscase.New(log, arts, jobs, files, countingWaker{n: wakes}),
		processor: analysiscase.NewProcessor(log, arts, jobs, files, an),
		wakes:     wakes,
	}
}

func okProvider(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{
		"annotated_image_base64": base64.StdEncoding.EncodeToString([]byte("annotated")),
		"analysis_text":          "Check the elbow.",
	})
}

func failingProvider(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "provider down", http.StatusBadGateway)
}

// runOnce drives one Checkout, Process and Complete/Fail cycle the way the
// worker pool does.
func runOnce(t *testing.T, e env) {
	t.Helper()

	ctx := context.Background()
	job, err := e.processor.Checkout(ctx, "w1")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}

	if _, err := e.processor.Process(ctx, job); err != nil {
		if failErr := e.processor.Fail(ctx, job, err); failErr != nil {
			t.Fatalf("Fail failed: %v", failErr)
		}
		return
	}
	if err := e.processor.Complete(ctx, job, 1); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestSubmit_SuccessCompletesArt(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, okProvider)

	art, err := e.cases.Submit(ctx, "u1", analysiscase.Upload{Filename: "hands.png", ContentType: "image/png", Data: pngData}, "hands?")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if art.Status != artsrepo.StatusPending {
		t.Fatalf("Expected pending handle, got %q", art.Status)
	}
	if e.wakes.Load() != 1 {
		t.Errorf("Expected pool to be woken once, got %d", e.wakes.Load())
	}

	runOnce(t, e)

	arts, err := e.arts.ListByUser(ctx, "u1", nil)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(arts) != 1 {
		t.Fatalf("Expected exactly one art, got %d", len(arts))
	}
	done := arts[0]
	if done.Status != artsrepo.StatusCompleted || done.ProcessedPath == nil || done.FeedbackText == nil {
		t.Fatalf("Expected completed art with results, got %+v", done)
	}
	if *done.ProcessedPath != "processed-"+art.ArtID+".png" || *done.FeedbackText != "Check the elbow." {
		t.Errorf("Unexpected results %q / %q", *done.ProcessedPath, *done.FeedbackText)
	}

	img, err := os.ReadFile(filepath.Join(e.files.ResultsDir(), *done.ProcessedPath))
	if err != nil || string(img) != "annotated" {
		t.Errorf("Expected annotated image on disk, got %q, %v", img, err)
	}

	jobs, err := e.cases.Jobs(ctx, "u1", art.ArtID)
	if err != nil {
		t.Fatalf("Jobs failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != analysisjobsrepo.StatusCompleted {
		t.Errorf("Expected one completed job, got %+v", jobs)
	}

	if _, err := e.cases.Resubmit(ctx, "u1", art.ArtID, "again"); !errors.Is(err, artsrepo.ErrAlreadyCompleted) {
		t.Errorf("Expected ErrAlreadyCompleted on resubmit, got %v", err)
	}
}

func TestSubmit_FailureLeavesArtPending(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, failingProvider)

	art, err := e.cases.Submit(ctx, "u1", analysiscase.Upload{Filename: "hands.png", ContentType: "image/png", Data: pngData}, "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	runOnce(t, e)

	after, err := e.arts.Get(ctx, art.ArtID, "u1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if after.Status != artsrepo.StatusPending || after.ProcessedPath != nil || after.FeedbackText != nil || after.OriginalPath != art.OriginalPath {
		t.Errorf("Expected art unchanged at pending, got %+v", after)
	}

	jobs, err := e.cases.Jobs(ctx, "u1", art.ArtID)
	if err != nil {
		t.Fatalf("Jobs failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Status != analysisjobsrepo.StatusFailed || jobs[0].ErrorMessage == nil {
		t.Fatalf("Expected one failed job with an error, got %+v", jobs)
	}

	// A failed analysis can be retried on the same art.
	if _, err := e.cases.Resubmit(ctx, "u1", art.ArtID, "try again"); err != nil {
		t.Errorf("Resubmit failed: %v", err)
	}
	if _, err := e.cases.Resubmit(ctx, "u1", art.ArtID, "twice"); !errors.Is(err, analysiscase.ErrAnalysisInProgress) {
		t.Errorf("Expected ErrAnalysisInProgress, got %v", err)
	}
}

func TestOwnership(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, okProvider)

	art, err := e.cases.Upload(ctx, "u1", analysiscase.Upload{Filename: "a.png", ContentType: "image/png", Data: pngData})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if e.wakes.Load() != 0 {
		t.Error("Upload alone should not queue analysis")
	}

	if _, err := e.cases.Resubmit(ctx, "u2", art.ArtID, ""); !errors.Is(err, artsrepo.ErrNotFound) {
		t.Errorf("Expected ErrNotFound resubmitting another user's art, got %v", err)
	}
	if _, err := e.cases.Jobs(ctx, "u2", art.ArtID); !errors.Is(err, artsrepo.ErrNotFound) {
		t.Errorf("Expected ErrNotFound listing another user's jobs, got %v", err)
	}
}

func TestUpload_RejectsNonImage(t *testing.T) {
	e := newEnv(t, okProvider)

	_, err := e.cases.Upload(context.Background(), "u1", analysiscase.Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("hi")})
	if !errors.Is(err, filestore.ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
}

func TestFail_RequeuesOnShutdown(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, okProvider)

	if _, err := e.cases.Submit(ctx, "u1", analysiscase.Upload{Filename: "a.png", ContentType: "image/png", Data: pngData}, ""); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	job, err := e.processor.Checkout(ctx, "w1")
	if err != nil {
		t.Fatalf("Checkout failed: %v", err)
	}
	if err := e.processor.Fail(ctx, job, context.Canceled); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	again, err := e.processor.Checkout(ctx, "w2")
	if err != nil {
		t.Fatalf("Expected requeued job to be claimable: %v", err)
	}
	if again.JobID != job.JobID {
		t.Errorf("Expected job %s, got %s", job.JobID, again.JobID)
	}

	if _, err := e.processor.Checkout(ctx, "w3"); !errors.Is(err, workers.ErrNoWorkAvailable) {
		t.Errorf("Expected ErrNoWorkAvailable, got %v", err)
	}
}

func TestWorkerPool_EndToEnd(t *testing.T) {
	e := newEnv(t, okProvider)

	pool := workers.NewWorkerPool[analysisjobsrepo.Job]("analysis", 2, e.processor,
		workers.WithLogger(logger.NewDiscard()),
		workers.WithPollInterval(10*time.Millisecond),
		workers.WithIdleInterval(10*time.Millisecond),
		workers.WithMaxRetries(1),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(done)
	}()

	art, err := e.cases.Submit(ctx, "u1", analysiscase.Upload{Filename: "a.png", ContentType: "image/png", Data: pngData}, "")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		got, err := e.arts.Get(context.Background(), art.ArtID, "u1")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Status == artsrepo.StatusCompleted {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for analysis")
		}
		time.Sleep(10 * time.Millisecond)
	}

	pool.Stop()
	<-done
}

func TestProcess_PermanentErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		provider  http.HandlerFunc
		permanent bool
	}{
		{"provider rejects", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "unsupported image", http.StatusUnprocessableEntity)
		}, true},
		{"provider down", failingProvider, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t, tt.provider)
			if _, err := e.cases.Submit(ctx, "u1", analysiscase.Upload{Filename: "a.png", ContentType: "image/png", Data: pngData}, ""); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}

			job, err := e.processor.Checkout(ctx, "w1")
			if err != nil {
				t.Fatalf("Checkout failed: %v", err)
			}
			_, err = e.processor.Process(ctx, job)
			if err == nil {
				t.Fatal("Expected process error")
			}
			if workers.IsPermanent(err) != tt.permanent {
				t.Errorf("Expected permanent=%v, got %v", tt.permanent, err)
			}
		})
	}
}

func TestResubmit_ConcurrentQueuesOnce(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, func(w http.ResponseWriter, r *http.Request) {})

	art, err := e.arts.Create(ctx, artsrepo.CreateArt{UserID: "u1", OriginalPath: "sketch.png"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const callers = 8
	var (
		queued, busy atomic.Int32
		wg           sync.WaitGroup
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.cases.Resubmit(ctx, "u1", art.ArtID, "again")
			switch {
			case err == nil:
				queued.Add(1)
			case errors.Is(err, analysiscase.ErrAnalysisInProgress):
				busy.Add(1)
			default:
				t.Errorf("Resubmit: %v", err)
			}
		}()
	}
	wg.Wait()

	if queued.Load() != 1 || busy.Load() != callers-1 {
		t.Errorf("Expected 1 queued and %d in progress, got %d and %d", callers-1, queued.Load(), busy.Load())
	}

	jobs, err := e.cases.Jobs(ctx, "u1", art.ArtID)
	if err != nil {
		t.Fatalf("Jobs failed: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("Expected one job, got %d", len(jobs))
	}
}
