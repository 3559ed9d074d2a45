package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/kanbanforge/kanband/internal/engine"
)

func (h *handlers) getNextTask(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := engine.SelectionFilter{
		BoardID:        q.Get("board"),
		Assignee:       q.Get("assignee"),
		ExcludeBlocked: q.Get("exclude_blocked") != "false",
	}
	if tags := q.Get("skill_tags"); tags != "" {
		f.SkillTags = strings.Split(tags, ",")
	}
	if ta := q.Get("time_available"); ta != "" {
		if minutes, err := strconv.Atoi(ta); err == nil {
			f.TimeAvailableMinutes = &minutes
		}
	}

	result, err := h.svc.GetNextTask(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, result)
}

type recomputeRequest struct {
	BoardID string `json:"board_id" validate:"required"`
}

func (h *handlers) recomputeScores(w http.ResponseWriter, r *http.Request) {
	var body recomputeRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.svc.RecomputeScores(r.Context(), body.BoardID); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, map[string]bool{"recomputed": true})
}
