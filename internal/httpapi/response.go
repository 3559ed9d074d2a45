// Package httpapi is the HTTP/JSON surface: a chi router over the Service
// Layer, translating typed service errors to the wire envelope spec.md §6
// defines and enforcing authentication and rate limits ahead of every
// route.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kanbanforge/kanband/internal/types"
)

// Pagination mirrors spec.md §6's meta.pagination shape.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

type meta struct {
	Timestamp  string      `json:"timestamp"`
	RequestID  string      `json:"request_id"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
	Meta    meta        `json:"meta"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondOK writes a success envelope with no pagination.
func respondOK(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, envelope{
		Success: true,
		Data:    data,
		Meta:    meta{Timestamp: time.Now().UTC().Format(time.RFC3339), RequestID: requestIDFrom(r)},
	})
}

// respondPage writes a success envelope with pagination metadata.
func respondPage(w http.ResponseWriter, r *http.Request, data any, page Pagination) {
	writeJSON(w, http.StatusOK, envelope{
		Success: true,
		Data:    data,
		Meta:    meta{Timestamp: time.Now().UTC().Format(time.RFC3339), RequestID: requestIDFrom(r), Pagination: &page},
	})
}

// respondError maps a typed service error (or any other error) to the
// wire envelope and an HTTP status code per spec.md §7's taxonomy table.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := translateError(err)
	writeJSON(w, status, envelope{
		Success: false,
		Error:   &body,
		Meta:    meta{Timestamp: time.Now().UTC().Format(time.RFC3339), RequestID: requestIDFrom(r)},
	})
}

func translateError(err error) (int, errorBody) {
	te, ok := types.AsError(err)
	if !ok {
		return http.StatusInternalServerError, errorBody{Code: string(types.CodeInternal), Message: "internal error"}
	}

	body := errorBody{Code: string(te.Code), Message: te.Message, Details: te.Details}
	switch te.Kind {
	case types.KindValidation:
		return http.StatusBadRequest, body
	case types.KindNotFound:
		return http.StatusNotFound, body
	case types.KindConflict:
		return http.StatusConflict, body
	case types.KindAuth:
		if te.Code == types.CodeForbidden {
			return http.StatusForbidden, body
		}
		return http.StatusUnauthorized, body
	case types.KindRate:
		return http.StatusTooManyRequests, body
	case types.KindTransient:
		return http.StatusServiceUnavailable, body
	default:
		body.Details = nil // internal details never reach the client
		return http.StatusInternalServerError, body
	}
}
