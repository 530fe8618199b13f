package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/identity"
	"github.com/stepquest/stepquest-backend/internal/logger"
	"github.com/stepquest/stepquest-backend/internal/metrics"
)

// Invoker is the backend procedure-call substrate: invoke a named
// procedure with typed parameters and get the result rows back.
// Implementations own connection acquisition and must release the
// connection on every path, success or failure.
type Invoker interface {
	Invoke(ctx context.Context, procedure string, args []any) ([]domain.Row, error)
}

// Dispatcher executes registered actions against the substrate and
// shapes the uniform response envelope. One dispatcher serves one
// registry; the update and retrieve endpoints each get their own.
type Dispatcher struct {
	reg     *Registry
	inv     Invoker
	timeout time.Duration
}

// New creates a Dispatcher. timeout bounds every backend call; zero
// means no bound beyond the request context.
func New(reg *Registry, inv Invoker, timeout time.Duration) *Dispatcher {
	return &Dispatcher{reg: reg, inv: inv, timeout: timeout}
}

// Lookup exposes the registry to callers that route on the descriptor
// (the dispatch handlers and the domain managers).
func (d *Dispatcher) Lookup(action string) (Descriptor, bool) {
	return d.reg.Lookup(action)
}

// Dispatch validates raw input for the named action and executes it.
// Unknown actions fail before any backend connection is touched.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, raw Params, ident *identity.Identity) (*domain.Envelope, error) {
	desc, ok := d.reg.Lookup(action)
	if !ok {
		metrics.DispatchesTotal.WithLabelValues(action, metrics.OutcomeUnknown).Inc()
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAction, action)
	}

	args, err := BuildArgs(desc, raw, ident)
	if err != nil {
		metrics.DispatchesTotal.WithLabelValues(action, metrics.OutcomeInvalid).Inc()
		return nil, err
	}

	return d.DispatchArgs(ctx, desc, args)
}

// DispatchArgs executes a descriptor with an already-validated argument
// list. The domain managers use this path after choosing a procedure.
func (d *Dispatcher) DispatchArgs(ctx context.Context, desc Descriptor, args []any) (*domain.Envelope, error) {
	log := logger.FromContext(ctx)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	rows, err := d.inv.Invoke(ctx, desc.Procedure, args)
	if err != nil {
		outcome := metrics.OutcomeBackendError
		if errors.Is(err, domain.ErrConnection) {
			outcome = metrics.OutcomeConnectionError
		}
		metrics.DispatchesTotal.WithLabelValues(desc.Action, outcome).Inc()
		log.Error("Procedure invocation failed",
			"action", desc.Action,
			"procedure", desc.Procedure,
			"error", err)
		return nil, err
	}

	metrics.DispatchesTotal.WithLabelValues(desc.Action, metrics.OutcomeOK).Inc()
	log.Debug("Procedure invoked",
		"action", desc.Action,
		"procedure", desc.Procedure,
		"rows", len(rows))

	if rows == nil {
		rows = []domain.Row{}
	}
	return &domain.Envelope{Rows: rows, ReturnData: desc.Action}, nil
}
