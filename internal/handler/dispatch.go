package handler

import (
	"encoding/json"
	"net/http"

	"github.com/stepquest/stepquest-backend/internal/dispatch"
	"github.com/stepquest/stepquest-backend/internal/friend"
	"github.com/stepquest/stepquest-backend/internal/identity"
	"github.com/stepquest/stepquest-backend/internal/logger"
)

// decodeActionBody parses the request body into untyped parameters and
// extracts the action name. The legacy mobile client sends the action
// under "data_type"; both spellings are accepted. Numbers are decoded
// as json.Number so large IDs survive intact.
func decodeActionBody(r *http.Request) (dispatch.Params, string, bool) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body dispatch.Params
	if err := dec.Decode(&body); err != nil {
		return nil, "", false
	}

	action, _ := body["action"].(string)
	if action == "" {
		action, _ = body["data_type"].(string)
	}
	return body, action, action != ""
}

func callerIdentity(r *http.Request) *identity.Identity {
	if id, ok := identity.FromContext(r.Context()); ok {
		return &id
	}
	return nil
}

// HandleUpdate executes a write action
// @Summary Execute a write action
// @Description Validates the action and its parameters, runs the backing procedure, and returns the result envelope
// @Tags dispatch
// @Accept json
// @Produce json
// @Param request body object true "Action name plus action-specific fields"
// @Success 200 {object} domain.Envelope
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/db/update [post]
func HandleUpdate(disp *dispatch.Dispatcher, friends friend.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, action, ok := decodeActionBody(r)
		if !ok {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		desc, found := disp.Lookup(action)
		if !found {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidAction)
			return
		}

		ident := callerIdentity(r)

		// Friend transitions go through the relationship manager so the
		// per-pair serialization and transition checks apply. Everything
		// else dispatches directly.
		if friend.IsFriendAction(action) {
			args, err := dispatch.BuildArgs(desc, body, ident)
			if err != nil {
				respondDomainError(w, r, err)
				return
			}
			env, err := friends.Apply(r.Context(), action, args[0].(int64), args[1].(int64))
			if err != nil {
				respondDomainError(w, r, err)
				return
			}
			respondJSON(w, http.StatusOK, env)
			return
		}

		env, err := disp.Dispatch(r.Context(), action, body, ident)
		if err != nil {
			respondDomainError(w, r, err)
			return
		}

		logger.FromContext(r.Context()).Debug("Write action completed",
			"action", action,
			"rows", len(env.Rows))
		respondJSON(w, http.StatusOK, env)
	}
}

// HandleRetrieve executes a read action
// @Summary Execute a read action
// @Description Validates the action and its parameters, runs the backing query, and returns the rows
// @Tags dispatch
// @Accept json
// @Produce json
// @Param request body object true "Action name plus action-specific fields"
// @Success 200 {object} domain.Envelope
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/db/retrieve [post]
func HandleRetrieve(disp *dispatch.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, action, ok := decodeActionBody(r)
		if !ok {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}

		env, err := disp.Dispatch(r.Context(), action, body, callerIdentity(r))
		if err != nil {
			respondDomainError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, env)
	}
}
