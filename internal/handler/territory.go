package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/identity"
	"github.com/stepquest/stepquest-backend/internal/territory"
)

// ClaimRequest is the body for a territory claim. Coordinates are
// pointers so a missing field is distinguishable from zero (the
// equator and the prime meridian are claimable).
type ClaimRequest struct {
	UserID *int64   `json:"userid,omitempty"`
	Lat    *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng    *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

// HandleClaimTerritory claims a map grid cell for the caller
// @Summary Claim a territory cell
// @Description First claim of a cell by a user succeeds; repeat claims of the same cell report already owned
// @Tags territory
// @Accept json
// @Produce json
// @Param request body ClaimRequest true "Cell coordinates"
// @Success 200 {object} ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ClaimResponse
// @Router /api/territory/claim [post]
func HandleClaimTerritory(svc territory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClaimRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if err := GetValidator().ValidateStruct(req); err != nil {
			respondJSON(w, http.StatusBadRequest, FormatValidationError(err))
			return
		}

		userID, ok := claimUserID(r, req.UserID)
		if !ok {
			respondError(w, http.StatusUnauthorized, ErrMsgUnauthenticated)
			return
		}

		status, err := svc.Claim(r.Context(), userID, *req.Lat, *req.Lng)
		if err != nil {
			respondJSON(w, http.StatusInternalServerError, ClaimResponse{Status: string(domain.ClaimError)})
			return
		}
		respondJSON(w, http.StatusOK, ClaimResponse{Status: string(status)})
	}
}

// HandleGetTerritory lists the caller's territory claims
// @Summary List territory claims
// @Description Returns every cell the user owns with its level
// @Tags territory
// @Produce json
// @Param userid query int false "User ID, required when unauthenticated"
// @Success 200 {object} domain.Envelope
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/territory [get]
func HandleGetTerritory(svc territory.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var explicit *int64
		if raw := r.URL.Query().Get("userid"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
				return
			}
			explicit = &id
		}

		userID, ok := claimUserID(r, explicit)
		if !ok {
			respondError(w, http.StatusUnauthorized, ErrMsgUnauthenticated)
			return
		}

		env, err := svc.List(r.Context(), userID)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, env)
	}
}

// claimUserID resolves the acting user: an authenticated identity wins,
// otherwise an explicitly supplied ID is accepted.
func claimUserID(r *http.Request, explicit *int64) (int64, bool) {
	if id, ok := identity.FromContext(r.Context()); ok {
		return id.UserID, true
	}
	if explicit != nil {
		return *explicit, true
	}
	return 0, false
}
