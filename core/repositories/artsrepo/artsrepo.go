// Package artsrepo stores uploaded drawings and their analysis results.
package artsrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jrazmi/artplanner/sdk/logger"
)

var (
	ErrNotFound         = errors.New("art not found")
	ErrAlreadyCompleted = errors.New("art already completed")
)

// Storer persists arts. Reads are scoped to the owning user.
//
// Complete must only move an art out of pending: stores guard the update on
// status so concurrent completions cannot both succeed. It reports
// ErrAlreadyCompleted when the art exists but is no longer pending.
type Storer interface {
	Create(ctx context.Context, art Art) error
	Get(ctx context.Context, artID, userID string) (Art, error)
	ListByUser(ctx context.Context, userID string, status *Status) ([]Art, error)
	Complete(ctx context.Context, artID, userID string, result Result) (Art, error)
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

// Create records a freshly uploaded drawing in pending state.
func (r *Repository) Create(ctx context.Context, input CreateArt) (Art, error) {
	if input.OriginalPath == "" {
		return Art{}, fmt.Errorf("art repository create: original path is required")
	}

	art := Art{
		ArtID:        uuid.NewString(),
		UserID:       input.UserID,
		OriginalPath: input.OriginalPath,
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC(),
	}

	if err := r.storer.Create(ctx, art); err != nil {
		return Art{}, fmt.Errorf("art repository create: %w", err)
	}

	return art, nil
}

func (r *Repository) Get(ctx context.Context, artID, userID string) (Art, error) {
	if uuid.Validate(artID) != nil {
		return Art{}, fmt.Errorf("art repository get: %w", ErrNotFound)
	}
	art, err := r.storer.Get(ctx, artID, userID)
	if err != nil {
		return Art{}, fmt.Errorf("art repository get: %w", err)
	}
	return art, nil
}

// ListByUser returns the user's arts newest first. A nil status lists all.
func (r *Repository) ListByUser(ctx context.Context, userID string, status *Status) ([]Art, error) {
	arts, err := r.storer.ListByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("art repository list: %w", err)
	}
	if arts == nil {
		arts = []Art{}
	}
	return arts, nil
}

func (r *Repository) Complete(ctx context.Context, artID, userID, processedPath, feedbackText string) (Art, error) {
	if uuid.Validate(artID) != nil {
		return Art{}, fmt.Errorf("art repository complete: %w", ErrNotFound)
	}
	art, err := r.storer.Complete(ctx, artID, userID, Result{
		ProcessedPath: processedPath,
		FeedbackText:  feedbackText,
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Art{}, fmt.Errorf("art repository complete: %w", err)
	}

	r.log.InfoContext(ctx, "art completed", "art_id", artID, "user_id", userID)
	return art, nil
}

// Folders splits arts into the gallery's two folders: drawings still waiting
// for feedback and those already processed.
func Folders(arts []Art) (pending, processed []Art) {
	pending, processed = []Art{}, []Art{}
	for _, a := range arts {
		if a.Status == StatusCompleted {
			processed = append(processed, a)
			continue
		}
		pending = append(pending, a)
	}
	return pending, processed
}
