package incident

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/ranger-dev/ranger-agent/api/server/config"
	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/pkg/orchestrator"
)

type ApproveIncidentHandler struct {
	config *config.Config
}

func NewApproveIncidentHandler(config *config.Config) *ApproveIncidentHandler {
	return &ApproveIncidentHandler{config}
}

// ApproveIncidentHandler is the external resume signal: it carries only the
// incident identifier and triggers execution of the suspended plan.
func (h *ApproveIncidentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	incidentUID := chi.URLParam(r, "uid")

	if incidentUID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := h.config.Orchestrator.Resume(r.Context(), incidentUID)

	if err != nil {
		if errors.Is(err, orchestrator.ErrIncidentNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if errors.Is(err, orchestrator.ErrInvalidTransition) {
			render.Status(r, http.StatusConflict)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		h.config.Logger.Error().Caller().Msgf("API error in ApproveIncidentHandler: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, &types.IngestResponse{
		IncidentID:      result.IncidentID,
		Status:          result.Status,
		ApprovalPending: result.AwaitingApproval,
		Message:         result.Message,
	})
}
