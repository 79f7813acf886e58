package plannerbridge

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/jrazmi/artplanner/bridge/scaffolding/errs"
	"github.com/jrazmi/artplanner/bridge/scaffolding/mid"
	"github.com/jrazmi/artplanner/core/cases/plannercase"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
	"github.com/jrazmi/artplanner/sdk/validation"
)

type bridge struct {
	log     *logger.Logger
	planner *plannercase.Case
}

func newBridge(log *logger.Logger, planner *plannercase.Case) *bridge {
	return &bridge{
		log:     log,
		planner: planner,
	}
}

func (b *bridge) httpProgress(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, web.QueryParam(r, "userId"))
	if appErr != nil {
		return appErr
	}

	var at time.Time
	if q := web.QueryParam(r, "date"); q != "" {
		d, err := validation.ParseFlexibleDate(q)
		if err != nil {
			return errs.Newf(errs.InvalidArgument, "date: %s", err)
		}
		at = d
	}

	report, err := b.planner.Report(ctx, userID, at)
	if err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	return web.NewJSONResponse(report)
}

func (b *bridge) httpWeek(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, web.QueryParam(r, "userId"))
	if appErr != nil {
		return appErr
	}

	buckets, err := b.planner.Week(ctx, userID)
	if err != nil {
		return errs.New(errs.InternalOnlyLog, err)
	}

	return web.NewJSONResponse(MarshalWeekToBridge(buckets))
}

func (b *bridge) httpCalendar(ctx context.Context, r *http.Request) web.Encoder {
	userID, appErr := mid.RequireUser(ctx, web.QueryParam(r, "userId"))
	if appErr != nil {
		return appErr
	}

	year, err := intParam(r, "year")
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}
	month, err := intParam(r, "month")
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	grid, err := b.planner.Month(ctx, userID, year, month)
	if err != nil {
		if errors.Is(err, plannercase.ErrInvalidMonth) {
			return errs.New(errs.InvalidArgument, err)
		}
		return errs.New(errs.InternalOnlyLog, err)
	}

	return web.NewJSONResponse(grid)
}

// intParam returns nil when the query parameter is absent.
func intParam(r *http.Request, key string) (*int, error) {
	q := web.QueryParam(r, key)
	if q == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(q)
	if err != nil {
		return nil, errors.New(key + " must be an integer")
	}
	return &n, nil
}
