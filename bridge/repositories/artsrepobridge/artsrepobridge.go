package artsrepobridge

import (
	"context"
	"errors"
	"net/http"

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
	artsRepository *artsrepo.Repository
	analysis       *analysiscase.Case
	maxUploadBytes int64
}

func newBridge(log *logger.Logger, artsRepository *artsrepo.Repository, analysis *analysiscase.Case, maxUploadBytes int64) *bridge {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &bridge{
		log:            log,
		artsRepository: artsRepository,
		analysis:       analysis,
		maxUploadBytes: maxUploadBytes,
	}
}

func (b *bridge) httpListByUser(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, web.Param(r, "user_id"))
	if appErr != nil {
		return appErr
	}

	var status *artsrepo.Status
	if q := web.QueryParam(r, "status"); q != "" {
		s, err := artsrepo.ParseStatus(q)
		if err != nil {
			return errs.New(errs.InvalidArgument, err)
		}
		status = &s
	}

	arts, err := b.artsRepository.ListByUser(ctx, userID, status)
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalListToBridge(arts))
}

func (b *bridge) httpFolders(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, web.Param(r, "user_id"))
	if appErr != nil {
		return appErr
	}

	arts, err := b.artsRepository.ListByUser(ctx, userID, nil)
	if err != nil {
		return toAppError(err)
	}

	pending, processed := artsrepo.Folders(arts)
	return web.NewJSONResponse(Folders{
		MyDrawings: MarshalListToBridge(pending),
		Processed:  MarshalListToBridge(processed),
	})
}

func (b *bridge) httpGet(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, "")
	if appErr != nil {
		return appErr
	}

	art, err := b.artsRepository.Get(ctx, web.Param(r, "art_id"), userID)
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalToBridge(art))
}

func (b *bridge) httpUpload(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, "")
	if appErr != nil {
		return appErr
	}

	up, appErr := ReadUpload(ctx, r, b.maxUploadBytes)
	if appErr != nil {
		return appErr
	}
	if _, appErr := mid.RequireUser(ctx, r.FormValue("userId")); appErr != nil {
		return appErr
	}

	art, err := b.analysis.Upload(ctx, userID, up)
	if err != nil {
		return UploadError(err)
	}

	metrics.AddUploads(ctx)
	return web.NewJSONResponseWithStatus(MarshalToBridge(art), http.StatusCreated)
}

// toAppError maps artsrepo errors to app errors.
func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, artsrepo.ErrNotFound):
		return errs.Newf(errs.NotFound, "art not found")
	case errors.Is(err, artsrepo.ErrAlreadyCompleted):
		return errs.Newf(errs.FailedPrecondition, "art already analyzed")
	}
	return errs.New(errs.InternalOnlyLog, err)
}
