// internal/app/features/errors/errors.go
package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/tenanthub/internal/app/tenants"
	"go.uber.org/zap"
)

// ErrorLogger writes lifecycle errors as JSON responses and logs the ones
// the client cannot act on.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// Status maps a lifecycle error to its HTTP status.
func Status(err error) int {
	switch {
	case stderrors.Is(err, tenants.ErrConflict), stderrors.Is(err, tenants.ErrInvalidInput):
		return http.StatusBadRequest
	case stderrors.Is(err, tenants.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, tenants.ErrForbidden):
		return http.StatusForbidden
	case stderrors.Is(err, tenants.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case stderrors.Is(err, tenants.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err to the client as {"detail": ...}. Client errors carry
// their own message; anything unclassified is logged and reported as a
// generic server error.
func (e *ErrorLogger) Write(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := Status(err)
	switch status {
	case http.StatusInternalServerError:
		e.LogServerError(w, r, op, err)
		return
	case http.StatusServiceUnavailable:
		e.log.Warn(op+": store unavailable", zap.Error(err), zap.String("path", r.URL.Path))
	case http.StatusUnauthorized:
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	WriteDetail(w, status, err.Error())
}

// LogServerError logs err with request context and answers 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.log.Error(msg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	WriteDetail(w, http.StatusInternalServerError, "Internal server error")
}

// Handler serves the router's fallback responses.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// NotFound answers unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteDetail(w, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}
