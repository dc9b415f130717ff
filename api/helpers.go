package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"phlock/domain/entities"
)

// userIDParam parses the {userID} path parameter. On failure it writes a
// 400 and returns false.
func userIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

// positionParam parses the {position} path parameter. Range checking is the
// domain layer's job; only non-numeric input is rejected here.
func positionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	pos, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid position")
		return 0, false
	}
	return pos, true
}

// dateQuery parses an optional ?date=YYYY-MM-DD query parameter, defaulting
// to the current UTC date.
func dateQuery(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return entities.DateOf(time.Now()), true
	}
	date, err := entities.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid date, want YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// limitQuery parses an optional ?limit= query parameter, clamped to
// [1, max] with the given default.
func limitQuery(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// decodeBody decodes a JSON request body into v. On failure it writes a 400
// and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid request body")
		return false
	}
	return true
}
