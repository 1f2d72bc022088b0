package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/tenantd/internal/models"
)

// errorResponse is the wire shape of every error the API returns.
type errorResponse struct {
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Details   []fieldDetail `json:"details,omitempty"`
	RequestID string        `json:"requestId,omitempty"`
}

type fieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeError maps a domain error to an HTTP status and the uniform error
// body. Persistence causes and unknown kinds are never exposed.
func writeError(w http.ResponseWriter, requestID string, err error) {
	var (
		validationErr *models.ValidationError
		notFoundErr   *models.NotFoundError
		forbiddenErr  *models.ForbiddenError
		conflictErr   *models.ConflictError
		abortedErr    *models.AbortedError
	)

	switch {
	case errors.As(err, &validationErr):
		details := make([]fieldDetail, 0, len(validationErr.Fields))
		for _, f := range validationErr.Fields {
			details = append(details, fieldDetail{Field: f.Path, Message: f.Message})
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:      "validation_failed",
			Message:   "input validation failed",
			Details:   details,
			RequestID: requestID,
		})

	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Code:      "not_found",
			Message:   notFoundErr.Error(),
			RequestID: requestID,
		})

	case errors.As(err, &forbiddenErr):
		writeJSON(w, http.StatusForbidden, errorResponse{
			Code:      "forbidden",
			Message:   forbiddenErr.Error(),
			RequestID: requestID,
		})

	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:      "conflict",
			Message:   conflictErr.Error(),
			RequestID: requestID,
		})

	case errors.As(err, &abortedErr):
		writeJSON(w, http.StatusConflict, errorResponse{
			Code:      "aborted",
			Message:   "operation aborted",
			RequestID: requestID,
		})

	default:
		log.Error().Err(err).Str("request_id", requestID).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:      "internal",
			Message:   "internal error",
			RequestID: requestID,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Debug().Err(err).Msg("failed to encode response")
	}
}
