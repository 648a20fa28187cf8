// internal/app/features/organizations/edit.go
package organizations

import (
	"net/http"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/system/bearer"
	"github.com/dalemusser/tenanthub/internal/app/system/formutil"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
	"github.com/dalemusser/tenanthub/internal/app/tenants"
)

// HandleUpdate renames the caller's organization and replaces its admin
// credentials.
//
// Route: PUT /org/update (bearer)
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := bearer.CurrentPrincipal(r)
	if !ok {
		h.ErrLog.LogServerError(w, r, "update organization: no principal in context", nil)
		return
	}

	var req organizationRequest
	if err := formutil.DecodeJSON(w, r, &req); err != nil {
		apperrors.WriteDetail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update organization")
	defer cancel()

	org, err := h.Tenants.Rename(ctx, tenants.RenameInput{
		CurrentOrganizationName: p.OrganizationName,
		NewOrganizationName:     req.OrganizationName,
		NewEmail:                req.Email,
		NewPassword:             req.Password,
		AuthenticatedAs:         p,
	})
	if err != nil {
		h.ErrLog.Write(w, r, "update organization", err)
		return
	}
	h.Audit.OrgUpdated(r.Context(), r, p.Email, p.OrganizationName, org.Name, org.AdminEmail)
	apperrors.WriteJSON(w, http.StatusOK, toResponse(org))
}
