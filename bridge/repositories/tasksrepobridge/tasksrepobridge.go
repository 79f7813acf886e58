package tasksrepobridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/artplanner/bridge/scaffolding/errs"
	"github.com/jrazmi/artplanner/bridge/scaffolding/mid"
	"github.com/jrazmi/artplanner/core/repositories/tasksrepo"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

type bridge struct {
	log             *logger.Logger
	tasksRepository *tasksrepo.Repository
}

func newBridge(log *logger.Logger, tasksRepository *tasksrepo.Repository) *bridge {
	return &bridge{
		log:             log,
		tasksRepository: tasksRepository,
	}
}

func (b *bridge) httpListByUser(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, web.Param(r, "user_id"))
	if appErr != nil {
		return appErr
	}

	tasks, err := b.tasksRepository.ListByUser(ctx, userID)
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalListToBridge(tasks))
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	var input CreateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	userID, appErr := mid.RequireUser(ctx, input.UserID)
	if appErr != nil {
		return appErr
	}

	create, err := MarshalCreateToRepository(userID, input)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	task, err := b.tasksRepository.Create(ctx, create)
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponseWithStatus(MarshalToBridge(task), http.StatusCreated)
}

func (b *bridge) httpPatch(ctx context.Context, r *http.Request) web.Encoder {
	var input PatchTaskInput
	if _, err := web.DecodeIfPresent(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	userID, appErr := mid.RequireUser(ctx, input.UserID)
	if appErr != nil {
		return appErr
	}

	taskID := web.Param(r, "task_id")

	var (
		task tasksrepo.Task
		err  error
	)
	if input.IsCompleted != nil {
		task, err = b.tasksRepository.SetCompleted(ctx, taskID, userID, *input.IsCompleted)
	} else {
		task, err = b.tasksRepository.Toggle(ctx, taskID, userID)
	}
	if err != nil {
		return toAppError(err)
	}

	return web.NewJSONResponse(MarshalToBridge(task))
}

func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, tasksrepo.ErrNotFound):
		return errs.Newf(errs.NotFound, "task not found")
	case errors.Is(err, tasksrepo.ErrInvalidTitle):
		return errs.New(errs.InvalidArgument, tasksrepo.ErrInvalidTitle)
	}
	return errs.New(errs.InternalOnlyLog, err)
}
