package incident

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/ranger-dev/ranger-agent/api/server/config"
	"gorm.io/gorm"
)

type GetIncidentHandler struct {
	config *config.Config
}

func NewGetIncidentHandler(config *config.Config) *GetIncidentHandler {
	return &GetIncidentHandler{config}
}

func (h *GetIncidentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	incidentUID := chi.URLParam(r, "uid")

	if incidentUID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	incident, err := h.config.Repository.Incident.ReadIncident(incidentUID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		h.config.Logger.Error().Caller().Msgf("API error in GetIncidentHandler: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, incident.ToAPIType())
}
