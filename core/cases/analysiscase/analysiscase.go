// Package analysiscase accepts drawings for AI feedback and runs the queued
// analyses. A request only stores the upload and queues a job; the Processor
// does the provider call from the worker pool.
package analysiscase

import (
	"context"
	"errors"
	"fmt"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/infrastructure/filestore"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// ErrAnalysisInProgress is returned when an art already has a queued or
// running analysis.
var ErrAnalysisInProgress = errors.New("analysis already in progress")

// Waker is notified after a job is queued. The worker pool implements it.
type Waker interface {
	Wake()
}

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Case struct {
	log   *logger.Logger
	arts  *artsrepo.Repository
	jobs  *analysisjobsrepo.Repository
	files *filestore.Store
	waker Waker
}

// New builds the case. waker may be nil when no pool runs in this process.
func New(log *logger.Logger, arts *artsrepo.Repository, jobs *analysisjobsrepo.Repository, files *filestore.Store, waker Waker) *Case {
	return &Case{
		log:   log,
		arts:  arts,
		jobs:  jobs,
		files: files,
		waker: waker,
	}
}

// Upload stores the image and records a pending art without queuing any
// analysis.
func (c *Case) Upload(ctx context.Context, userID string, up Upload) (artsrepo.Art, error) {
	name, err := c.files.SaveUpload(up.Filename, up.ContentType, up.Data)
	if err != nil {
		return artsrepo.Art{}, fmt.Errorf("upload: %w", err)
	}

	art, err := c.arts.Create(ctx, artsrepo.CreateArt{UserID: userID, OriginalPath: name})
	if err != nil {
		if rmErr := c.files.RemoveUpload(name); rmErr != nil {
			c.log.ErrorContext(ctx, "removing orphaned upload", "file", name, "error", rmErr)
		}
		return artsrepo.Art{}, fmt.Errorf("upload: %w", err)
	}

	return art, nil
}

// Submit stores the image, records a pending art and queues its analysis.
// The returned art is the pending handle clients poll.
func (c *Case) Submit(ctx context.Context, userID string, up Upload, prompt string) (artsrepo.Art, error) {
	art, err := c.Upload(ctx, userID, up)
	if err != nil {
		return artsrepo.Art{}, err
	}

	if err := c.enqueue(ctx, art, prompt); err != nil {
		return artsrepo.Art{}, fmt.Errorf("submit: %w", err)
	}

	return art, nil
}

// Resubmit queues a new analysis for an existing pending art.
func (c *Case) Resubmit(ctx context.Context, userID, artID, prompt string) (artsrepo.Art, error) {
	art, err := c.arts.Get(ctx, artID, userID)
	if err != nil {
		return artsrepo.Art{}, fmt.Errorf("resubmit: %w", err)
	}
	if art.Status == artsrepo.StatusCompleted {
		return artsrepo.Art{}, fmt.Errorf("resubmit: %w", artsrepo.ErrAlreadyCompleted)
	}

	jobs, err := c.jobs.ListByArt(ctx, artID, userID)
	if err != nil {
		return artsrepo.Art{}, fmt.Errorf("resubmit: %w", err)
	}
	for _, j := range jobs {
		if j.Status.Active() {
			return artsrepo.Art{}, ErrAnalysisInProgress
		}
	}

	if err := c.enqueue(ctx, art, prompt); err != nil {
		if errors.Is(err, analysisjobsrepo.ErrActiveJob) {
			return artsrepo.Art{}, ErrAnalysisInProgress
		}
		return artsrepo.Art{}, fmt.Errorf("resubmit: %w", err)
	}

	return art, nil
}

// Jobs lists the analyses queued for one of the user's arts.
func (c *Case) Jobs(ctx context.Context, userID, artID string) ([]analysisjobsrepo.Job, error) {
	if _, err := c.arts.Get(ctx, artID, userID); err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	return c.jobs.ListByArt(ctx, artID, userID)
}

func (c *Case) enqueue(ctx context.Context, art artsrepo.Art, prompt string) error {
	if _, err := c.jobs.Enqueue(ctx, analysisjobsrepo.CreateJob{
		ArtID:  art.ArtID,
		UserID: art.UserID,
		Prompt: prompt,
	}); err != nil {
		return err
	}

	if c.waker != nil {
		c.waker.Wake()
	}
	return nil
}
