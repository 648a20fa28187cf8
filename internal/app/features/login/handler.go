// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/system/auditlog"
	"github.com/dalemusser/tenanthub/internal/app/system/credentials"
	"github.com/dalemusser/tenanthub/internal/app/system/formutil"
	"github.com/dalemusser/tenanthub/internal/app/system/metrics"
	"github.com/dalemusser/tenanthub/internal/app/system/ratelimit"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
	"github.com/dalemusser/tenanthub/internal/app/tenants"
	"go.uber.org/zap"
)

// Authenticator checks admin credentials and issues tokens.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (credentials.Token, error)
}

type Handler struct {
	Tenants Authenticator
	Limiter *ratelimit.LoginLimiter // nil disables throttling
	Audit   *auditlog.Logger
	ErrLog  *apperrors.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(auth Authenticator, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *apperrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tenants: auth,
		Limiter: limiter,
		Audit:   audit,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// HandleLoginPost exchanges an admin's email and password for a bearer
// token.
//
// Route: POST /admin/login
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apperrors.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if h.Limiter != nil && !h.Limiter.Check(r, req.Email) {
		metrics.ObserveLogin("limited")
		h.Audit.LoginRateLimited(r.Context(), r, req.Email)
		h.Log.Warn("login rate limit exceeded",
			zap.String("ip", ratelimit.ClientIP(r)),
			zap.String("email", req.Email))
		apperrors.WriteDetail(w, http.StatusTooManyRequests, "Too many login attempts, try again later")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin login")
	defer cancel()

	tok, err := h.Tenants.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, tenants.ErrInvalidCredentials) {
			h.Audit.LoginFailed(r.Context(), r, req.Email)
		}
		h.ErrLog.Write(w, r, "admin login", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.Succeeded(req.Email)
	}
	h.Audit.LoginSuccess(r.Context(), r, req.Email)

	apperrors.WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
	})
}
