package httpapi

import (
	"net/http"

	"github.com/kanbanforge/kanband/internal/types"
)

func (h *handlers) createTag(w http.ResponseWriter, r *http.Request) {
	var t types.Tag
	if err := decodeAndValidate(r, &t); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := h.svc.CreateTag(r.Context(), &t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, created)
}

func (h *handlers) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, tags)
}
