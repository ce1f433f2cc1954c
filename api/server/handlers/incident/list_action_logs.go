package incident

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/ranger-dev/ranger-agent/api/server/config"
	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/internal/utils"
)

type ListActionLogsHandler struct {
	config *config.Config
}

func NewListActionLogsHandler(config *config.Config) *ListActionLogsHandler {
	return &ListActionLogsHandler{config}
}

func (h *ListActionLogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	incidentUID := chi.URLParam(r, "uid")

	if incidentUID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	entries, err := h.config.Repository.ActionLog.ListEntries(&utils.ListActionLogsFilter{
		IncidentID: &incidentUID,
	})

	if err != nil {
		h.config.Logger.Error().Caller().Msgf("API error in ListActionLogsHandler: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	res := &types.ListActionLogsResponse{}

	for _, entry := range entries {
		res.Logs = append(res.Logs, entry.ToAPIType())
	}

	render.JSON(w, r, res)
}
