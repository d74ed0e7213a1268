// Package httpapi exposes the usecases as a JSON REST API. Handlers decode
// requests, call a usecase and translate domain errors into HTTP status
// codes; they never contain business rules themselves.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/lexloop/lexloop/internal/entity"
	"github.com/lexloop/lexloop/internal/repository"
)

type errorBody struct {
	Error string `json:"error"`
}

type listBody struct {
	Items any   `json:"items"`
	Total int64 `json:"total"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeList(w http.ResponseWriter, items any, total int64) {
	writeJSON(w, http.StatusOK, listBody{Items: items, Total: total})
}

// writeError maps the domain error taxonomy onto HTTP status codes. Empty
// book is checked first because it is a base sentinel of its own.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, entity.ErrEmptyBook):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, entity.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, entity.ErrConflict):
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return entity.ErrInvalidArgument
	}
	return nil
}

// pathID parses the named path segment as a positive integer id.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, entity.ErrInvalidArgument
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func queryInt64(r *http.Request, name string) int64 {
	n, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func pagination(r *http.Request) repository.Pagination {
	page := repository.Pagination{
		PageNo:   queryInt(r, "page_no", 1),
		PageSize: queryInt(r, "page_size", 20),
	}
	page.Normalize()
	return page
}
