package ingest

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/render"
	"github.com/ranger-dev/ranger-agent/api/server/config"
	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/pkg/alarm"
)

const maxEventSize = 1 << 20

type WebhookHandler struct {
	config *config.Config
}

func NewWebhookHandler(config *config.Config) *WebhookHandler {
	return &WebhookHandler{config}
}

// WebhookHandler receives alarm state change events and feeds them into the
// orchestrator.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxEventSize))

	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result, err := h.config.Orchestrator.ProcessEvent(r.Context(), raw)

	if err != nil {
		if errors.Is(err, alarm.ErrInvalidEvent) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		h.config.Logger.Error().Caller().Msgf("API error in WebhookHandler: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, &types.IngestResponse{
		IncidentID:      result.IncidentID,
		Created:         result.Created,
		Status:          result.Status,
		ApprovalPending: result.AwaitingApproval,
		Message:         result.Message,
	})
}
