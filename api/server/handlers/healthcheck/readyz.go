package healthcheck

import (
	"net/http"

	"github.com/ranger-dev/ranger-agent/api/server/config"
)

type ReadyzHandler struct {
	config *config.Config
}

func NewReadyzHandler(config *config.Config) *ReadyzHandler {
	return &ReadyzHandler{config}
}

func (h *ReadyzHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.config.Repository.DB.DB()

	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	writeHealthy(w)
}
