// internal/app/features/organizations/handler.go
package organizations

import (
	"context"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/system/auditlog"
	"github.com/dalemusser/tenanthub/internal/app/tenants"
	"go.uber.org/zap"
)

// Lifecycle is the tenant lifecycle the handlers drive.
type Lifecycle interface {
	Create(ctx context.Context, in tenants.CreateInput) (tenants.Organization, error)
	Get(ctx context.Context, name string) (tenants.Organization, error)
	Rename(ctx context.Context, in tenants.RenameInput) (tenants.Organization, error)
	Delete(ctx context.Context, orgName string, as tenants.Principal) error
}

// Handler is the feature-level entry point for Organizations.
type Handler struct {
	Tenants Lifecycle
	Audit   *auditlog.Logger // nil disables auditing
	ErrLog  *apperrors.ErrorLogger
	Log     *zap.Logger
}

// NewHandler constructs a new Organizations handler.
func NewHandler(lc Lifecycle, audit *auditlog.Logger, errLog *apperrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Tenants: lc,
		Audit:   audit,
		ErrLog:  errLog,
		Log:     logger,
	}
}
