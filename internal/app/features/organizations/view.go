// internal/app/features/organizations/view.go
package organizations

import (
	"net/http"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
)

// ServeGet looks an organization up by name.
//
// Route: GET /org/get?organization_name=...
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get organization")
	defer cancel()

	org, err := h.Tenants.Get(ctx, r.URL.Query().Get("organization_name"))
	if err != nil {
		h.ErrLog.Write(w, r, "get organization", err)
		return
	}
	apperrors.WriteJSON(w, http.StatusOK, toResponse(org))
}
