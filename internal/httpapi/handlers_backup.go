package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kanbanforge/kanband/internal/types"
)

type createBackupRequest struct {
	Type          types.BackupType `json:"type"`
	RetentionDays int              `json:"retention_days"`
}

func (h *handlers) createBackup(w http.ResponseWriter, r *http.Request) {
	var body createBackupRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if body.Type == "" {
		body.Type = types.BackupManual
	}
	if body.RetentionDays == 0 {
		body.RetentionDays = 30
	}
	b, err := h.svc.RunBackup(r.Context(), h.backup, body.Type, body.RetentionDays)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, b)
}

func (h *handlers) listBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := h.svc.ListBackups(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, backups)
}

func (h *handlers) getBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.GetBackup(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, b)
}

func (h *handlers) deleteBackup(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, types.NewValidationError("deleting a backup directly is not supported; it is removed by the retention sweep", nil))
}

func (h *handlers) restoreBackup(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.RestoreBackup(r.Context(), h.backup, chi.URLParam(r, "name"), h.dbPath)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, b)
}
