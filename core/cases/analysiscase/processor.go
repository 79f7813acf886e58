package analysiscase

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jrazmi/artplanner/core/repositories/analysisjobsrepo"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/infrastructure/analyzer"
	"github.com/jrazmi/artplanner/infrastructure/filestore"
	"github.com/jrazmi/artplanner/infrastructure/workers"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Analyzer calls the external analysis provider.
type Analyzer interface {
	Analyze(ctx context.Context, imageBase64, userPrompt string) (analyzer.Result, error)
}

// Processor runs analysis jobs for the worker pool.
type Processor struct {
	log      *logger.Logger
	arts     *artsrepo.Repository
	jobs     *analysisjobsrepo.Repository
	files    *filestore.Store
	analyzer Analyzer
}

var _ workers.Processor[analysisjobsrepo.Job] = (*Processor)(nil)

func NewProcessor(log *logger.Logger, arts *artsrepo.Repository, jobs *analysisjobsrepo.Repository, files *filestore.Store, an Analyzer) *Processor {
	return &Processor{
		log:      log,
		arts:     arts,
		jobs:     jobs,
		files:    files,
		analyzer: an,
	}
}

func (p *Processor) Checkout(ctx context.Context, workerID string) (analysisjobsrepo.Job, error) {
	job, err := p.jobs.Checkout(ctx, workerID)
	if err != nil {
		if errors.Is(err, analysisjobsrepo.ErrNoJobs) {
			return analysisjobsrepo.Job{}, workers.ErrNoWorkAvailable
		}
		return analysisjobsrepo.Job{}, err
	}
	return job, nil
}

// Process sends the original image to the provider, stores both results and
// completes the art. The art is only written once every earlier step has
// succeeded, so a failure leaves it pending and unchanged.
func (p *Processor) Process(ctx context.Context, job analysisjobsrepo.Job) (analysisjobsrepo.Job, error) {
	art, err := p.arts.Get(ctx, job.ArtID, job.UserID)
	if err != nil {
		return job, permanentIf(fmt.Errorf("load art: %w", err), artsrepo.ErrNotFound)
	}
	if art.Status == artsrepo.StatusCompleted {
		p.log.InfoContext(ctx, "art already analyzed, skipping", "job_id", job.JobID, "art_id", art.ArtID)
		return job, nil
	}

	image, err := p.files.ReadUploadBase64(art.OriginalPath)
	if err != nil {
		return job, permanentIf(err, fs.ErrNotExist)
	}

	res, err := p.analyzer.Analyze(ctx, image, job.Prompt)
	if err != nil {
		return job, permanentIf(fmt.Errorf("analyze: %w", err),
			analyzer.ErrRejected, analyzer.ErrBadResponse, analyzer.ErrNotConfigured)
	}

	out, err := p.files.WriteResults(art.ArtID, res.Image, res.Feedback)
	if err != nil {
		return job, err
	}

	if _, err := p.arts.Complete(ctx, art.ArtID, art.UserID, out.ImageName, res.Feedback); err != nil {
		if errors.Is(err, artsrepo.ErrAlreadyCompleted) {
			return job, nil
		}
		return job, err
	}

	return job, nil
}

// permanentIf stops the pool from retrying errors that will not change on
// a second attempt.
func permanentIf(err error, targets ...error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return workers.Permanent(err)
		}
	}
	return err
}

func (p *Processor) Complete(ctx context.Context, job analysisjobsrepo.Job, processingTimeMS int) error {
	p.log.InfoContext(ctx, "analysis completed", "job_id", job.JobID, "art_id", job.ArtID, "processing_ms", processingTimeMS)
	return p.jobs.MarkCompleted(ctx, job.JobID)
}

// Fail records the error on the job. A job interrupted by shutdown goes back
// to the queue instead.
func (p *Processor) Fail(ctx context.Context, job analysisjobsrepo.Job, err error) error {
	if errors.Is(err, context.Canceled) {
		p.log.InfoContext(ctx, "analysis interrupted, requeueing", "job_id", job.JobID)
		return p.jobs.Requeue(ctx, job.JobID)
	}

	p.log.WarnContext(ctx, "analysis failed", "job_id", job.JobID, "art_id", job.ArtID, "error", err)
	return p.jobs.MarkFailed(ctx, job.JobID, err)
}
