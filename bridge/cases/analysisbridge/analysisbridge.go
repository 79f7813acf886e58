package analysisbridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/artplanner/bridge/repositories/artsrepobridge"
	"github.com/jrazmi/artplanner/bridge/scaffolding/errs"
	"github.com/jrazmi/artplanner/bridge/scaffolding/metrics"
	"github.com/jrazmi/artplanner/bridge/scaffolding/mid"
	"github.com/jrazmi/artplanner/core/cases/analysiscase"
	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

type bridge struct {
	log            *logger.Logger
	analysis       *analysiscase.Case
	maxUploadBytes int64
}

func newBridge(log *logger.Logger, analysis *analysiscase.Case, maxUploadBytes int64) *bridge {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &bridge{
		log:            log,
		analysis:       analysis,
		maxUploadBytes: maxUploadBytes,
	}
}

// httpProcessArt queues an analysis and answers with the pending art. A
// multipart body uploads a new drawing; a JSON body names an existing one.
func (b *bridge) httpProcessArt(ctx context.Context, r *http.Request) web.Encoder {
	if web.IsMultipart(r) {
		return b.submit(ctx, r)
	}

	var input ResubmitInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	userID, appErr := mid.RequireUser(ctx, input.UserID)
	if appErr != nil {
		return appErr
	}

	art, err := b.analysis.Resubmit(ctx, userID, input.ArtID, input.UserPrompt)
	if err != nil {
		return toAppError(err)
	}

	metrics.AddAnalyses(ctx)
	return web.NewJSONResponseWithStatus(artsrepobridge.MarshalToBridge(art), http.StatusAccepted)
}

func (b *bridge) submit(ctx context.Context, r *http.Request) web.Encoder {
	up, appErr := artsrepobridge.ReadUpload(ctx, r, b.maxUploadBytes)
	if appErr != nil {
		return appErr
	}

	userID, appErr := mid.RequireUser(ctx, r.FormValue("userId"))
	if appErr != nil {
		return appErr
	}

	art, err := b.analysis.Submit(ctx, userID, up, r.FormValue("userPrompt"))
	if err != nil {
		return artsrepobridge.UploadError(err)
	}

	metrics.AddUploads(ctx)
	metrics.AddAnalyses(ctx)
	b.log.InfoContext(ctx, "analysis queued", "art_id", art.ArtID, "user_id", userID)
	return web.NewJSONResponseWithStatus(artsrepobridge.MarshalToBridge(art), http.StatusAccepted)
}

func (b *bridge) httpJobs(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, "")
	if appErr != nil {
		return appErr
	}

	jobs, err := b.analysis.Jobs(ctx, userID, web.Param(r, "art_id"))
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalJobsToBridge(jobs))
}

func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, artsrepo.ErrNotFound):
		return errs.Newf(errs.NotFound, "art not found")
	case errors.Is(err, artsrepo.ErrAlreadyCompleted):
		return errs.Newf(errs.FailedPrecondition, "art already analyzed")
	case errors.Is(err, analysiscase.ErrAnalysisInProgress):
		return errs.New(errs.FailedPrecondition, analysiscase.ErrAnalysisInProgress)
	}
	return errs.New(errs.InternalOnlyLog, err)
}
