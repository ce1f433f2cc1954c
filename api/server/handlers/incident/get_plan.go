package incident

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/ranger-dev/ranger-agent/api/server/config"
	"gorm.io/gorm"
)

type GetPlanHandler struct {
	config *config.Config
}

func NewGetPlanHandler(config *config.Config) *GetPlanHandler {
	return &GetPlanHandler{config}
}

// GetPlanHandler returns the latest plan version for an incident.
func (h *GetPlanHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	incidentUID := chi.URLParam(r, "uid")

	if incidentUID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	plan, err := h.config.Repository.Plan.LatestPlan(incidentUID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		h.config.Logger.Error().Caller().Msgf("API error in GetPlanHandler: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	apiPlan, err := plan.ToAPIType()

	if err != nil {
		h.config.Logger.Error().Caller().Msgf("API error in GetPlanHandler: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, apiPlan)
}
