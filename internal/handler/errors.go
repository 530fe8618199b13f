package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/stepquest/stepquest-backend/internal/dispatch"
	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/logger"
)

// respondDomainError maps the dispatch error taxonomy onto HTTP statuses.
// Validation problems carry the offending field back to the client;
// backend and connection failures are logged with the request ID and
// surface only a generic message.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *dispatch.ValidationError
	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		respondError(w, http.StatusBadRequest, ErrMsgInvalidAction)
	case errors.As(err, &vErr):
		if vErr.Reason == dispatch.ReasonUnauthenticated {
			respondError(w, http.StatusUnauthorized, ErrMsgUnauthenticated)
			return
		}
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: fmt.Sprintf("Invalid request: field %q %s", vErr.Field, vErr.Reason),
			Field: vErr.Field,
		})
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
	case errors.Is(err, domain.ErrInvalidTransition):
		respondError(w, http.StatusConflict, ErrMsgInvalidTransition)
	case errors.Is(err, domain.ErrConnection):
		logger.FromContext(r.Context()).Error("Backend unreachable", "error", err)
		respondError(w, http.StatusServiceUnavailable, ErrMsgUnavailable)
	default:
		logger.FromContext(r.Context()).Error("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgServerError)
	}
}

// ErrMsgInvalidRequestSummary covers validation failures without field detail.
const ErrMsgInvalidRequestSummary = "Invalid request. Please check your inputs."
