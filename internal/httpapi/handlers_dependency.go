package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanbanforge/kanband/internal/types"
)

type addDependencyRequest struct {
	DependsOnTaskID string                `json:"depends_on_task_id" validate:"required"`
	Type            types.DependencyType  `json:"type"`
}

func (h *handlers) addDependency(w http.ResponseWriter, r *http.Request) {
	var body addDependencyRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	depType := body.Type
	if depType == "" {
		depType = types.DepBlocks
	}
	taskID := chi.URLParam(r, "id")
	if err := h.svc.AddDependency(r.Context(), taskID, body.DependsOnTaskID, depType); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, map[string]string{"task_id": taskID, "depends_on_task_id": body.DependsOnTaskID})
}

func (h *handlers) removeDependency(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "id")
	depID := chi.URLParam(r, "depId")
	if err := h.svc.RemoveDependency(r.Context(), taskID, depID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusNoContent, nil)
}

func (h *handlers) listDependencies(w http.ResponseWriter, r *http.Request) {
	outgoing, incoming, err := h.svc.ListDependencies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, map[string]any{"outgoing": outgoing, "incoming": incoming})
}
