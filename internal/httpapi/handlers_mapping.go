package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanbanforge/kanband/internal/types"
)

func (h *handlers) createMapping(w http.ResponseWriter, r *http.Request) {
	var m types.RepoMapping
	if err := decodeAndValidate(r, &m); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := h.svc.CreateRepoMapping(r.Context(), &m)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, created)
}

func (h *handlers) listMappings(w http.ResponseWriter, r *http.Request) {
	mappings, err := h.svc.ListRepoMappings(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, mappings)
}

func (h *handlers) deleteMapping(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRepoMapping(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusNoContent, nil)
}
