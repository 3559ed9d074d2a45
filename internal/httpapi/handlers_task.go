package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kanbanforge/kanband/internal/types"
)

func (h *handlers) createTask(w http.ResponseWriter, r *http.Request) {
	var t types.Task
	if err := decodeAndValidate(r, &t); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := h.svc.CreateTask(r.Context(), &t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, created)
}

func (h *handlers) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, t)
}

// listTasks implements the filtered listing route: /api/tasks?board=&status=&tag=&search=&priority_min=&priority_max=&sort=&order=&limit=&offset=
// The tag parameter is read into the filter but the search does not filter on it.
func (h *handlers) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pagination(r)

	f := types.TaskFilter{
		BoardID:     q.Get("board"),
		Assignee:    q.Get("assignee"),
		Tag:         q.Get("tag"),
		Search:      q.Get("search"),
		Sort:        q.Get("sort"),
		Order:       q.Get("order"),
		PriorityMin: queryFloat(q.Get("priority_min")),
		PriorityMax: queryFloat(q.Get("priority_max")),
		Limit:       limit,
		Offset:      offset,
	}
	if s := q.Get("status"); s != "" {
		for _, part := range strings.Split(s, ",") {
			f.Status = append(f.Status, types.Status(part))
		}
	}

	tasks, err := h.svc.SearchTasks(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, r, tasks, Pagination{
		Page: offset/limit + 1, Limit: limit, Total: len(tasks),
		HasNext: len(tasks) == limit, HasPrev: offset > 0,
	})
}

func queryFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

type statusUpdateRequest struct {
	Status types.Status `json:"status" validate:"required"`
}

func (h *handlers) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var body statusUpdateRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := h.svc.UpdateTaskStatus(r.Context(), chi.URLParam(r, "id"), body.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, updated)
}

func (h *handlers) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusNoContent, nil)
}

type moveTaskRequest struct {
	ColumnID string `json:"column_id" validate:"required"`
	Position int    `json:"position"`
}

func (h *handlers) moveTask(w http.ResponseWriter, r *http.Request) {
	var body moveTaskRequest
	if err := decodeAndValidate(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	moved, err := h.svc.MoveTask(r.Context(), chi.URLParam(r, "id"), body.ColumnID, body.Position)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, moved)
}

func (h *handlers) createSubtask(w http.ResponseWriter, r *http.Request) {
	var t types.Task
	if err := decodeAndValidate(r, &t); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := h.svc.CreateSubtask(r.Context(), chi.URLParam(r, "id"), &t)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusCreated, created)
}

func (h *handlers) listSubtasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.SearchTasks(r.Context(), types.TaskFilter{ParentTaskID: chi.URLParam(r, "id"), Limit: 1000})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, r, http.StatusOK, tasks)
}
