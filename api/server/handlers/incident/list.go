package incident

import (
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"github.com/ranger-dev/ranger-agent/api/server/config"
	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/internal/utils"
)

const pageSize = 50

type ListIncidentsHandler struct {
	config *config.Config
}

func NewListIncidentsHandler(config *config.Config) *ListIncidentsHandler {
	return &ListIncidentsHandler{config}
}

func (h *ListIncidentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	filter := &utils.ListIncidentsFilter{}

	if status := r.URL.Query().Get("status"); status != "" {
		s := types.IncidentStatus(status)
		filter.Status = &s
	}

	if alarmName := r.URL.Query().Get("alarm_name"); alarmName != "" {
		filter.AlarmName = &alarmName
	}

	page := uint(0)

	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.ParseUint(p, 10, 32); err == nil {
			page = uint(parsed)
		}
	}

	incidents, err := h.config.Repository.Incident.ListIncidents(
		filter,
		utils.WithOrder(utils.OrderDesc),
		utils.WithLimit(pageSize),
		utils.WithOffset(page*pageSize),
	)

	if err != nil {
		h.config.Logger.Error().Caller().Msgf("API error in ListIncidentsHandler: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	res := &types.ListIncidentsResponse{}

	for _, incident := range incidents {
		res.Incidents = append(res.Incidents, incident.ToAPIType())
	}

	render.JSON(w, r, res)
}
