package httpapi

import (
	"net/http"

	"github.com/kanbanforge/kanband/internal/config"
	"github.com/kanbanforge/kanband/internal/service"
)

type healthHandler struct {
	svc *service.Service
	cfg config.Config
}

func newHealthHandler(svc *service.Service, cfg config.Config) *healthHandler {
	return &healthHandler{svc: svc, cfg: cfg}
}

func (h *healthHandler) handle(w http.ResponseWriter, r *http.Request) {
	health, err := h.svc.HealthCheck(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, health)
}
