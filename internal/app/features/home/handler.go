package home

import (
	"net/http"

	apperrors "github.com/dalemusser/tenanthub/internal/app/features/errors"
	"go.uber.org/zap"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to Organization Management Service"

// Handler serves the service root.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		Log: logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	apperrors.WriteJSON(w, http.StatusOK, map[string]string{"message": WelcomeMessage})
}
