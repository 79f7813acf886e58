package authbridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/artplanner/bridge/scaffolding/errs"
	"github.com/jrazmi/artplanner/core/cases/authcase"
	"github.com/jrazmi/artplanner/core/repositories/usersrepo"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

type bridge struct {
	log  *logger.Logger
	auth *authcase.Case
}

func newBridge(log *logger.Logger, auth *authcase.Case) *bridge {
	return &bridge{
		log:  log,
		auth: auth,
	}
}

func (b *bridge) httpRegister(ctx context.Context, r *http.Request) web.Encoder {
	var input RegisterInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	user, err := b.auth.Register(ctx, authcase.Register{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, authcase.ErrInvalidInput):
			return errs.New(errs.InvalidArgument, err)
		case errors.Is(err, usersrepo.ErrDuplicateEmail):
			return errs.Newf(errs.AlreadyExists, "email already registered")
		}
		return errs.New(errs.InternalOnlyLog, err)
	}

	return web.NewJSONResponseWithStatus(Message{Message: "user registered", UserID: user.UserID}, http.StatusCreated)
}

func (b *bridge) httpLogin(ctx context.Context, r *http.Request) web.Encoder {
	var input LoginInput
	if err := web.Decode(r, &input); err != nil {
		return errs.Newf(errs.InvalidArgument, "decode: %s", err)
	}

	session, err := b.auth.Login(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, authcase.ErrInvalidCredentials) {
			return errs.New(errs.Unauthenticated, authcase.ErrInvalidCredentials)
		}
		return errs.New(errs.InternalOnlyLog, err)
	}

	return web.NewJSONResponse(Session{
		Token:    session.Token,
		UserID:   session.UserID,
		Username: session.Username,
	})
}
