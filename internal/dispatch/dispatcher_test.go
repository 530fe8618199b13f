package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/identity"
)

func TestDispatch_UnknownActionNeverTouchesBackend(t *testing.T) {
	fake := NewFakeInvoker()
	d := New(NewWriteRegistry(), fake, time.Second)

	for _, action := range []string{"", "unknown", "get_items; drop table users"} {
		_, err := d.Dispatch(context.Background(), action, Params{}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnknownAction), "action %q", action)
	}

	assert.Empty(t, fake.Calls(), "no procedure may be invoked for unknown actions")
}

func TestDispatch_SessionsEnvelope(t *testing.T) {
	fake := NewFakeInvoker()
	fake.AddUser(7, "runner7")
	d := New(NewWriteRegistry(), fake, time.Second)

	env, err := d.Dispatch(context.Background(), "sessions", Params{
		"userid":     json.Number("7"),
		"start_time": "2024-01-01T00:00",
		"end_time":   "2024-01-01T01:00",
		"steps":      json.Number("3000"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "sessions", env.ReturnData)
	require.Len(t, env.Rows, 1)
	assert.Equal(t, domain.ResultRecorded, env.Rows[0]["result"])
	assert.Equal(t, 1, fake.SessionCount(7))
}

func TestDispatch_ValidationFailureSkipsBackend(t *testing.T) {
	fake := NewFakeInvoker()
	d := New(NewWriteRegistry(), fake, time.Second)

	_, err := d.Dispatch(context.Background(), "purchase", Params{
		"itemid": json.Number("2"),
		// amount missing
	}, &identity.Identity{UserID: 1})

	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Empty(t, fake.Calls())
}

func TestDispatch_ArgsAreBoundNotInterpolated(t *testing.T) {
	fake := NewFakeInvoker()
	d := New(NewReadRegistry(), fake, time.Second)

	hostile := "x'; DROP TABLE users; --"
	_, err := d.Dispatch(context.Background(), "search_user", Params{"username": hostile}, nil)
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "search_user", calls[0].Procedure)
	// The hostile string travels as a bound argument, verbatim.
	assert.Equal(t, []any{hostile}, calls[0].Args)
}

func TestDispatch_ReadEnvelopeEchoesAction(t *testing.T) {
	fake := NewFakeInvoker()
	fake.AddUser(3, "walker")
	d := New(NewReadRegistry(), fake, time.Second)

	env, err := d.Dispatch(context.Background(), "user_data", Params{
		"userid": json.Number("3"),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "user_data", env.ReturnData)
	require.Len(t, env.Rows, 1)
	assert.Equal(t, "walker", env.Rows[0]["username"])
}

func TestDispatch_EmptyResultIsEmptyRowsNotNil(t *testing.T) {
	fake := NewFakeInvoker()
	d := New(NewReadRegistry(), fake, time.Second)

	env, err := d.Dispatch(context.Background(), "search_user", Params{"username": "nobody"}, nil)
	require.NoError(t, err)
	assert.NotNil(t, env.Rows)
	assert.Empty(t, env.Rows)
}

func TestDispatch_BackendErrorPropagates(t *testing.T) {
	fake := NewFakeInvoker()
	fake.SetError(fmt.Errorf("%w: duplicate key", domain.ErrBackend))
	d := New(NewWriteRegistry(), fake, time.Second)

	_, err := d.Dispatch(context.Background(), "set_daily_goal", Params{
		"userid":     json.Number("1"),
		"daily_goal": json.Number("10000"),
	}, nil)

	assert.True(t, errors.Is(err, domain.ErrBackend))
	assert.False(t, errors.Is(err, domain.ErrConnection))
}

func TestDispatch_ConnectionErrorPropagates(t *testing.T) {
	fake := NewFakeInvoker()
	fake.SetError(fmt.Errorf("%w: dial tcp: connection refused", domain.ErrConnection))
	d := New(NewWriteRegistry(), fake, time.Second)

	_, err := d.Dispatch(context.Background(), "set_daily_goal", Params{
		"userid":     json.Number("1"),
		"daily_goal": json.Number("10000"),
	}, nil)

	assert.True(t, errors.Is(err, domain.ErrConnection))
}

// slowInvoker blocks until its context is done, like a stuck backend.
type slowInvoker struct{}

func (slowInvoker) Invoke(ctx context.Context, _ string, _ []any) ([]domain.Row, error) {
	<-ctx.Done()
	return nil, fmt.Errorf("%w: %v", domain.ErrConnection, ctx.Err())
}

func TestDispatch_TimeoutBoundsBackendCalls(t *testing.T) {
	d := New(NewReadRegistry(), slowInvoker{}, 10*time.Millisecond)

	start := time.Now()
	_, err := d.Dispatch(context.Background(), "get_items", Params{
		"userid": json.Number("1"),
	}, nil)

	assert.True(t, errors.Is(err, domain.ErrConnection))
	assert.Less(t, time.Since(start), time.Second, "call must be bounded by the dispatch timeout")
}
