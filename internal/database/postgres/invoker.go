// Package postgres implements the backend procedure-call substrate over
// a pgx connection pool. Every registered action's procedure lives in
// the database (see migrations/); this package only binds parameters,
// runs the call, and maps rows and failures back to the domain.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stepquest/stepquest-backend/internal/domain"
)

// Invoker executes named procedures against PostgreSQL.
type Invoker struct {
	db *pgxpool.Pool
}

// NewInvoker creates a new Invoker on the shared pool.
func NewInvoker(db *pgxpool.Pool) *Invoker {
	return &Invoker{db: db}
}

// Invoke runs SELECT * FROM procedure($1,...,$n) with every argument
// bound as a query parameter. The procedure name comes from the static
// registry, never from request input, so it is the only part of the
// statement assembled by string formatting. The pooled connection is
// acquired per call and released on every path when the rows are
// closed.
func (i *Invoker) Invoke(ctx context.Context, procedure string, args []any) ([]domain.Row, error) {
	placeholders := make([]string, len(args))
	for n := range args {
		placeholders[n] = fmt.Sprintf("$%d", n+1)
	}
	query := fmt.Sprintf("SELECT * FROM %s(%s)", procedure, strings.Join(placeholders, ","))

	rows, err := i.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(procedure, err)
	}
	defer rows.Close()

	var out []domain.Row
	fields := rows.FieldDescriptions()
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classify(procedure, err)
		}
		row := make(domain.Row, len(fields))
		for n, fd := range fields {
			row[fd.Name] = values[n]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(procedure, err)
	}

	if out == nil {
		out = []domain.Row{}
	}
	return out, nil
}

// classify maps a pgx failure onto the domain taxonomy: procedure ran
// and failed -> ErrBackend; never reached the backend or timed out ->
// ErrConnection.
func classify(procedure string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", domain.ErrConnection, procedure, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %s (%s)", domain.ErrBackend, procedure, pgErr.Message, pgErr.Code)
	}

	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrConnection, procedure, err)
	}

	// Remaining cases are transport-level: dial failures, pool timeouts,
	// broken connections.
	return fmt.Errorf("%w: %s: %v", domain.ErrConnection, procedure, err)
}
