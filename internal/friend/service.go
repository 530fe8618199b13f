// Package friend is the relationship state machine layered on the
// dispatcher. States per unordered pair: absent, pending, accepted.
// The service picks the backend procedure for each transition and
// distinguishes precondition failures (invalid transitions) from
// backend faults; it never bypasses the dispatcher.
package friend

import (
	"context"
	"fmt"

	"github.com/stepquest/stepquest-backend/internal/concurrency"
	"github.com/stepquest/stepquest-backend/internal/dispatch"
	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/logger"
	"github.com/stepquest/stepquest-backend/internal/metrics"
)

// Friend transition actions, matching the write registry.
const (
	ActionRequest = "request_friend"
	ActionAccept  = "accept_friend"
	ActionDeny    = "deny_friend"
	ActionRemove  = "remove_friend"
)

// IsFriendAction reports whether an action string belongs to this manager.
func IsFriendAction(action string) bool {
	switch action {
	case ActionRequest, ActionAccept, ActionDeny, ActionRemove:
		return true
	}
	return false
}

// Service defines the interface for friend relationship transitions.
type Service interface {
	// Request moves absent -> pending(requester -> target). Re-requesting
	// an already pending or accepted pair is a no-op success.
	Request(ctx context.Context, requester, target int64) (*domain.Envelope, error)
	// Accept moves pending(requester -> accepter) -> accepted. Only the
	// target of the pending request may accept.
	Accept(ctx context.Context, accepter, requester int64) (*domain.Envelope, error)
	// Deny deletes a pending request. Only the target may deny.
	Deny(ctx context.Context, denier, requester int64) (*domain.Envelope, error)
	// Remove deletes the relationship in any state, callable by either party.
	Remove(ctx context.Context, userID, friendID int64) (*domain.Envelope, error)
	// Apply routes a registry action to the matching transition.
	Apply(ctx context.Context, action string, userID, friendID int64) (*domain.Envelope, error)
}

// service implements the Service interface
type service struct {
	disp  *dispatch.Dispatcher
	locks *concurrency.LockManager
}

// NewService creates a friend service on top of the write dispatcher.
func NewService(disp *dispatch.Dispatcher) Service {
	return &service{
		disp:  disp,
		locks: concurrency.NewLockManager(),
	}
}

func (s *service) Request(ctx context.Context, requester, target int64) (*domain.Envelope, error) {
	// Every result of request_friend is a success: requested, or a
	// no-op against an existing pending/accepted record.
	return s.transition(ctx, ActionRequest, requester, target, nil)
}

func (s *service) Accept(ctx context.Context, accepter, requester int64) (*domain.Envelope, error) {
	return s.transition(ctx, ActionAccept, accepter, requester, map[string]bool{
		domain.ResultNoPending: true,
	})
}

func (s *service) Deny(ctx context.Context, denier, requester int64) (*domain.Envelope, error) {
	return s.transition(ctx, ActionDeny, denier, requester, map[string]bool{
		domain.ResultNoPending: true,
	})
}

func (s *service) Remove(ctx context.Context, userID, friendID int64) (*domain.Envelope, error) {
	return s.transition(ctx, ActionRemove, userID, friendID, map[string]bool{
		domain.ResultNotFound: true,
	})
}

func (s *service) Apply(ctx context.Context, action string, userID, friendID int64) (*domain.Envelope, error) {
	switch action {
	case ActionRequest:
		return s.Request(ctx, userID, friendID)
	case ActionAccept:
		return s.Accept(ctx, userID, friendID)
	case ActionDeny:
		return s.Deny(ctx, userID, friendID)
	case ActionRemove:
		return s.Remove(ctx, userID, friendID)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}
}

// transition runs one backend transition under the pair lock so two
// concurrent conflicting transitions (say accept and deny) cannot both
// apply. invalid lists the result markers that violate a precondition.
func (s *service) transition(ctx context.Context, action string, userID, friendID int64, invalid map[string]bool) (*domain.Envelope, error) {
	log := logger.FromContext(ctx)

	desc, ok := s.disp.Lookup(action)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}

	mu := s.locks.GetLock(concurrency.PairKey(userID, friendID))
	mu.Lock()
	defer mu.Unlock()

	env, err := s.disp.DispatchArgs(ctx, desc, []any{userID, friendID})
	if err != nil {
		// Backend and connection errors pass through untouched so the
		// caller can tell them apart from precondition failures.
		return nil, err
	}

	result, err := transitionResult(env)
	if err != nil {
		return nil, err
	}
	metrics.FriendTransitionsTotal.WithLabelValues(action, result).Inc()

	if invalid[result] {
		log.Debug("Friend transition rejected",
			"action", action,
			"userid", userID,
			"friendid", friendID,
			"result", result)
		return nil, fmt.Errorf("%w: %s between %d and %d: %s",
			domain.ErrInvalidTransition, action, userID, friendID, result)
	}

	log.Info("Friend transition applied",
		"action", action,
		"userid", userID,
		"friendid", friendID,
		"result", result)
	return env, nil
}

func transitionResult(env *domain.Envelope) (string, error) {
	if len(env.Rows) == 0 {
		return "", fmt.Errorf("%w: transition returned no result row", domain.ErrBackend)
	}
	result, ok := env.Rows[0]["result"].(string)
	if !ok {
		return "", fmt.Errorf("%w: transition result missing", domain.ErrBackend)
	}
	return result, nil
}
