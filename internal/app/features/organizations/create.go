// internal/app/features/organizations/create.go
package organizations

import (
	"net/http"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/system/formutil"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
	"github.com/dalemusser/tenanthub/internal/app/tenants"
)

// HandleCreate provisions an organization, its admin and its partition.
//
// Route: POST /org/create
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apperrors.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "create organization")
	defer cancel()

	org, err := h.Tenants.Create(ctx, tenants.CreateInput{
		OrganizationName: req.OrganizationName,
		Email:            req.Email,
		Password:         req.Password,
	})
	if err != nil {
		h.ErrLog.Write(w, r, "create organization", err)
		return
	}
	h.Audit.OrgCreated(r.Context(), r, org.Name, org.AdminEmail)
	apperrors.WriteJSON(w, http.StatusOK, toResponse(org))
}
