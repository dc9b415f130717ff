package api

import (
	"net/http"
	"time"

	"phlock/domain/entities"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "curation-engine",
	})
}

type boundaryRequest struct {
	// Date selects which boundary to run. Empty means today, which applies
	// everything due by now.
	Date string `json:"date,omitempty"`
}

type boundaryResponse struct {
	Date    string `json:"date"`
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped"`
	Failed  int    `json:"failed"`
}

// handleRunDayBoundary triggers a boundary run outside the schedule. The
// run is idempotent, so an operator can invoke it freely after an incident.
func (s *Server) handleRunDayBoundary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	now := time.Now()
	if r.ContentLength != 0 {
		var req boundaryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Date != "" {
			parsed, err := entities.ParseDate(req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeValidationFailed, "invalid date, want YYYY-MM-DD")
				return
			}
			now = parsed
		}
	}

	result, err := s.boundary.RunDayBoundary(ctx, now)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, boundaryResponse{
		Date:    entities.FormatDate(result.Date),
		Applied: result.Applied,
		Skipped: result.Skipped,
		Failed:  result.Failed,
	})
}
