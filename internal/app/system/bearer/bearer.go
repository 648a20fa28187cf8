// Package bearer authenticates API requests by their
// "Authorization: Bearer <token>" header.
package bearer

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/system/credentials"
	"github.com/dalemusser/tenanthub/internal/app/tenants"
	"go.uber.org/zap"
)

// Authenticator resolves a raw token to the admin it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (tenants.Principal, error)
}

type ctxKey string

const principalKey ctxKey = "principal"

// CurrentPrincipal returns the admin set by Require.
func CurrentPrincipal(r *http.Request) (tenants.Principal, bool) {
	p, ok := r.Context().Value(principalKey).(tenants.Principal)
	return p, ok
}

// WithPrincipal returns r carrying p. Handlers behind Require never need
// it; tests use it to skip token handling.
func WithPrincipal(r *http.Request, p tenants.Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), principalKey, p))
}

// Require rejects requests without a valid bearer token with 401 and
// stores the authenticated principal in the request context.
func Require(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := credentials.ExtractBearer(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "Not authenticated")
				return
			}

			p, err := auth.Authenticate(r.Context(), raw)
			switch {
			case err == nil:
				next.ServeHTTP(w, WithPrincipal(r, p))
			case errors.Is(err, tenants.ErrInvalidCredentials):
				logger.Debug("bearer token rejected", zap.Error(err))
				unauthorized(w, err.Error())
			case errors.Is(err, tenants.ErrStoreUnavailable):
				logger.Warn("authentication unavailable", zap.Error(err))
				apperrors.WriteDetail(w, http.StatusServiceUnavailable, err.Error())
			default:
				logger.Error("authentication failed", zap.Error(err))
				apperrors.WriteDetail(w, http.StatusInternalServerError, "Internal server error")
			}
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	apperrors.WriteDetail(w, http.StatusUnauthorized, msg)
}
