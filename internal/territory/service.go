// Package territory is the claim registry for map-grid cells, layered
// on the dispatcher. A user holds at most one claim per cell; the
// claim procedure resolves duplicates atomically via the database's
// uniqueness constraint, not a separate read.
package territory

import (
	"context"
	"fmt"

	"github.com/stepquest/stepquest-backend/internal/dispatch"
	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/logger"
	"github.com/stepquest/stepquest-backend/internal/metrics"
)

// Registry actions served by this package.
const (
	ActionClaim = "claim_territory"
	ActionList  = "territory"
)

// Service defines the interface for territory operations.
type Service interface {
	// Claim records ownership of one cell for a user. Claiming a cell
	// the user already owns reports AlreadyOwned without mutation.
	Claim(ctx context.Context, userID int64, lat, lng float64) (domain.ClaimStatus, error)
	// List returns the user's claims as a response envelope.
	List(ctx context.Context, userID int64) (*domain.Envelope, error)
}

// service implements the Service interface
type service struct {
	write *dispatch.Dispatcher
	read  *dispatch.Dispatcher
}

// NewService creates a territory service over the two dispatchers.
func NewService(write, read *dispatch.Dispatcher) Service {
	return &service{write: write, read: read}
}

func (s *service) Claim(ctx context.Context, userID int64, lat, lng float64) (domain.ClaimStatus, error) {
	log := logger.FromContext(ctx)

	desc, ok := s.write.Lookup(ActionClaim)
	if !ok {
		return domain.ClaimError, fmt.Errorf("%w: %q", domain.ErrUnknownAction, ActionClaim)
	}

	env, err := s.write.DispatchArgs(ctx, desc, []any{userID, lat, lng})
	if err != nil {
		metrics.TerritoryClaimsTotal.WithLabelValues(string(domain.ClaimError)).Inc()
		return domain.ClaimError, err
	}

	status := domain.ClaimSuccess
	if len(env.Rows) > 0 {
		if result, _ := env.Rows[0]["result"].(string); result == domain.ResultAlreadyOwned {
			status = domain.ClaimAlreadyOwned
		}
	}
	metrics.TerritoryClaimsTotal.WithLabelValues(string(status)).Inc()

	log.Info("Territory claim",
		"userid", userID,
		"lat", lat,
		"lng", lng,
		"status", status)
	return status, nil
}

func (s *service) List(ctx context.Context, userID int64) (*domain.Envelope, error) {
	desc, ok := s.read.Lookup(ActionList)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, ActionList)
	}
	return s.read.DispatchArgs(ctx, desc, []any{userID})
}
