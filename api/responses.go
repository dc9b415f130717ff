package api

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"phlock/domain/entities"
)

// Error codes surfaced to clients. Clients branch on the code, never on the
// message text.
const (
	codeValidationFailed       = "VALIDATION_FAILED"
	codeAlreadyPostedToday     = "ALREADY_POSTED_TODAY"
	codeSwapQuotaExhausted     = "SWAP_QUOTA_EXHAUSTED"
	codeConcurrentModification = "CONCURRENT_MODIFICATION"
	codeConsistencyViolation   = "CONSISTENCY_VIOLATION"
	codeRateLimited            = "RATE_LIMITED"
	codeInternal               = "INTERNAL"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Retryable marks conflicts that may succeed if the client simply
	// retries the same request.
	Retryable bool `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Failed to encode API response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeDomainError maps the engine's error kinds onto HTTP statuses.
// Validation problems are the client's to fix, same-day duplicates and
// serialization conflicts are conflicts, and a consumed swap quota reads as
// too many requests. Consistency violations are internal failures; the
// detail stays in the log, not the response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case entities.IsValidation(err):
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
	case errors.Is(err, entities.ErrAlreadyPostedToday):
		writeError(w, http.StatusConflict, codeAlreadyPostedToday, err.Error())
	case errors.Is(err, entities.ErrRateLimitExceeded):
		writeError(w, http.StatusTooManyRequests, codeSwapQuotaExhausted, err.Error())
	case errors.Is(err, entities.ErrConcurrentModification):
		writeJSON(w, http.StatusConflict, errorBody{
			Code:      codeConcurrentModification,
			Message:   err.Error(),
			Retryable: true,
		})
	case entities.IsConsistencyViolation(err):
		log.WithError(err).Error("Consistency violation reached the API")
		writeError(w, http.StatusInternalServerError, codeConsistencyViolation, "internal consistency violation")
	default:
		log.WithError(err).Error("Unhandled error in API handler")
		writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
	}
}
