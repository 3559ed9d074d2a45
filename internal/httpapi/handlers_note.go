package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanbanforge/kanband/internal/types"
)

func (h *handlers) addNote(w http.ResponseWriter, r *http.Request) {
	var n types.Note
	if err := decodeAndValidate(r, &n); err != nil {
		respondError(w, r, err)
		return
	}
	n.TaskID = chi.URLParam(r, "id")
	created, err := h.svc.AddNote(r.Context(), &n)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, created)
}

func (h *handlers) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotesByTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, notes)
}
