package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkordes/trip-planner/internal/domain"
	"github.com/pkordes/trip-planner/internal/middleware"
)

// retryAfterSeconds is advertised on 503 responses when the store stays busy
// after the service layer's own retries.
const retryAfterSeconds = 1

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope. Conflict is only set for
// scheduling_conflict and carries the activity that is in the way.
type ErrorResponse struct {
	Error    ErrorDetail       `json:"error"`
	Conflict *ActivityResponse `json:"conflict,omitempty"`
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// requestBody returns an ErrorResponse for a bad request rejected before
// reaching the service layer (e.g. missing or malformed body).
func requestBody(message string) ErrorResponse {
	return errorBody("validation_error", message)
}

// writeError maps a service error onto a status code and error body.
// notFound is the message used for domain.ErrNotFound, because the handler
// is the layer that knows what was being looked up.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var conflict *domain.ConflictError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &conflict):
		body := errorBody("scheduling_conflict", conflict.Error())
		a := activityToResponse(conflict.With)
		body.Conflict = &a
		writeJSON(w, http.StatusConflict, body)
	case errors.Is(err, domain.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already_exists", unwrapMessage(err, domain.ErrAlreadyExists)))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", notFound))
	case errors.Is(err, domain.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, errorBody("permission_denied", unwrapMessage(err, domain.ErrPermissionDenied)))
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", unwrapMessage(err, domain.ErrValidation)))
	case errors.Is(err, domain.ErrStoreBusy):
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("store_busy", "the schedule is busy, try again shortly"))
	case errors.Is(err, middleware.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized", "authentication required"))
	case errors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large"))
	default:
		s.log.ErrorContext(r.Context(), "unhandled error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

// unwrapMessage extracts the human-readable part that follows a wrapped
// sentinel error.
// e.g. "service.TripService.Create: validation error: name is required" → "name is required"
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	if strings.HasSuffix(msg, sentinel.Error()) {
		return sentinel.Error()
	}
	return msg
}
