// Package analysisjobsrepo is the durable queue of pending art analyses.
package analysisjobsrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/artplanner/sdk/logger"
)

var (
	ErrNotFound  = errors.New("analysis job not found")
	ErrNoJobs    = errors.New("no queued analysis jobs")
	ErrActiveJob = errors.New("art already has a queued or processing job")
)

// Storer persists analysis jobs.
//
// Checkout must claim at most one queued job atomically: the job moves to
// processing with the worker id recorded and attempts incremented, and no
// other caller can claim it. It returns ErrNoJobs when nothing is queued.
//
// Create must return ErrActiveJob when the art already has a queued or
// processing job; the stores back this with a unique partial index.
type Storer interface {
	Create(ctx context.Context, job Job) error
	Checkout(ctx context.Context, workerID string, now time.Time) (Job, error)
	MarkCompleted(ctx context.Context, jobID string, now time.Time) error
	MarkFailed(ctx context.Context, jobID, message string, now time.Time) error
	Requeue(ctx context.Context, jobID string, now time.Time) error
	ListByArt(ctx context.Context, artID, userID string) ([]Job, error)
	RecoverStale(ctx context.Context, before, now time.Time) (int64, error)
}

type Repository struct {
	log    *logger.Logger
	storer Storer
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

func (r *Repository) Enqueue(ctx context.Context, input CreateJob) (Job, error) {
	now := time.Now().UTC()
	job := Job{
		JobID:     uuid.NewString(),
		ArtID:     input.ArtID,
		UserID:    input.UserID,
		Prompt:    input.Prompt,
		Status:    StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.storer.Create(ctx, job); err != nil {
		return Job{}, fmt.Errorf("analysis job enqueue: %w", err)
	}

	r.log.InfoContext(ctx, "analysis job queued", "job_id", job.JobID, "art_id", job.ArtID)
	return job, nil
}

func (r *Repository) Checkout(ctx context.Context, workerID string) (Job, error) {
	job, err := r.storer.Checkout(ctx, workerID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, ErrNoJobs) {
			return Job{}, err
		}
		return Job{}, fmt.Errorf("analysis job checkout: %w", err)
	}
	return job, nil
}

func (r *Repository) MarkCompleted(ctx context.Context, jobID string) error {
	if err := r.storer.MarkCompleted(ctx, jobID, time.Now().UTC()); err != nil {
		return fmt.Errorf("analysis job complete: %w", err)
	}
	return nil
}

func (r *Repository) MarkFailed(ctx context.Context, jobID string, cause error) error {
	msg := "unknown error"
	if cause != nil {
		msg = cause.Error()
	}
	if err := r.storer.MarkFailed(ctx, jobID, msg, time.Now().UTC()); err != nil {
		return fmt.Errorf("analysis job fail: %w", err)
	}
	return nil
}

// Requeue returns a processing job to the queue, used when a worker is
// interrupted before it could finish.
func (r *Repository) Requeue(ctx context.Context, jobID string) error {
	if err := r.storer.Requeue(ctx, jobID, time.Now().UTC()); err != nil {
		return fmt.Errorf("analysis job requeue: %w", err)
	}
	return nil
}

// ListByArt returns an art's jobs newest first. An id that is not a UUID has
// no jobs.
func (r *Repository) ListByArt(ctx context.Context, artID, userID string) ([]Job, error) {
	if uuid.Validate(artID) != nil {
		return []Job{}, nil
	}
	jobs, err := r.storer.ListByArt(ctx, artID, userID)
	if err != nil {
		return nil, fmt.Errorf("analysis job list: %w", err)
	}
	if jobs == nil {
		jobs = []Job{}
	}
	return jobs, nil
}

// RecoverStale requeues jobs left in processing for longer than maxAge,
// typically by a process that died mid analysis.
func (r *Repository) RecoverStale(ctx context.Context, maxAge time.Duration) (int64, error) {
	now := time.Now().UTC()
	n, err := r.storer.RecoverStale(ctx, now.Add(-maxAge), now)
	if err != nil {
		return 0, fmt.Errorf("analysis job recover: %w", err)
	}
	if n > 0 {
		r.log.WarnContext(ctx, "requeued stale analysis jobs", "count", n)
	}
	return n, nil
}
