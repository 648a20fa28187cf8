// internal/app/features/organizations/delete.go
package organizations

import (
	"net/http"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/system/bearer"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
)

// HandleDelete removes the caller's organization, its admins and its
// partition.
//
// Route: DELETE /org/delete?organization_name=... (bearer)
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := bearer.CurrentPrincipal(r)
	if !ok {
		h.ErrLog.LogServerError(w, r, "delete organization: no principal in context", nil)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete organization")
	defer cancel()

	if err := h.Tenants.Delete(ctx, r.URL.Query().Get("organization_name"), p); err != nil {
		h.ErrLog.Write(w, r, "delete organization", err)
		return
	}
	h.Audit.OrgDeleted(r.Context(), r, p.Email, p.OrganizationName)
	apperrors.WriteJSON(w, http.StatusOK, messageResponse{Message: "Organization deleted successfully"})
}
