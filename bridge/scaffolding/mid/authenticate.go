package mid

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrazmi/artplanner/bridge/scaffolding/errs"
	"github.com/jrazmi/artplanner/infrastructure/web"
)

// TokenVerifier validates a bearer token and returns the user id it was
// issued for.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// token's user id in the context for GetUserID.
func Authenticate(verifier TokenVerifier) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(ctx context.Context, r *http.Request) web.Encoder {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				return errs.Newf(errs.Unauthenticated, "expected authorization header format: Bearer <token>")
			}

			userID, err := verifier.VerifyToken(ctx, strings.TrimSpace(token))
			if err != nil {
				return errs.Newf(errs.Unauthenticated, "invalid token")
			}

			return next(setUserID(ctx, userID), r)
		}
	}
}

// RequireUser checks that a caller supplied user id matches the
// authenticated user. An empty id means the caller did not supply one.
func RequireUser(ctx context.Context, userID string) (string, *errs.Error) {
	authID, err := GetUserID(ctx)
	if err != nil {
		return "", errs.Newf(errs.Unauthenticated, "not authenticated")
	}

	if userID != "" && userID != authID {
		return "", errs.Newf(errs.PermissionDenied, "user %s is not allowed to access user %s", authID, userID)
	}

	return authID, nil
}
