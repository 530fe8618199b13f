package territory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepquest/stepquest-backend/internal/dispatch"
	"github.com/stepquest/stepquest-backend/internal/domain"
)

func newTestService(t *testing.T) (Service, *dispatch.FakeInvoker) {
	t.Helper()
	fake := dispatch.NewFakeInvoker()
	write := dispatch.New(dispatch.NewWriteRegistry(), fake, time.Second)
	read := dispatch.New(dispatch.NewReadRegistry(), fake, time.Second)
	return NewService(write, read), fake
}

func TestClaim_ThenAlreadyOwned(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	status, err := svc.Claim(ctx, 5, 59.33, 18.06)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimSuccess, status)

	status, err = svc.Claim(ctx, 5, 59.33, 18.06)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimAlreadyOwned, status)

	assert.Equal(t, 1, fake.ClaimCount(5), "exactly one stored claim")
}

func TestClaim_DistinctCells(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	for _, cell := range [][2]float64{{1, 1}, {1, 2}, {2, 1}} {
		status, err := svc.Claim(ctx, 5, cell[0], cell[1])
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimSuccess, status)
	}
	assert.Equal(t, 3, fake.ClaimCount(5))
}

func TestClaim_DifferentUsersMayShareCell(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	status, err := svc.Claim(ctx, 5, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimSuccess, status)

	// Cells are not globally exclusive; contested ownership is allowed.
	status, err = svc.Claim(ctx, 6, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimSuccess, status)
}

func TestClaim_BackendError(t *testing.T) {
	svc, fake := newTestService(t)
	fake.SetError(fmt.Errorf("%w: connection refused", domain.ErrConnection))

	status, err := svc.Claim(context.Background(), 5, 1, 1)
	require.Error(t, err)
	assert.Equal(t, domain.ClaimError, status)
	assert.True(t, errors.Is(err, domain.ErrConnection))
}

func TestClaim_ConcurrentDuplicates(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]domain.ClaimStatus, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Claim(ctx, 9, 42.0, 7.0)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, status := range results {
		if status == domain.ClaimSuccess {
			succeeded++
		} else {
			assert.Equal(t, domain.ClaimAlreadyOwned, status)
		}
	}
	assert.Equal(t, 1, succeeded, "the constraint admits exactly one claim")
	assert.Equal(t, 1, fake.ClaimCount(9))
}

func TestList_ReturnsEnvelope(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Claim(ctx, 5, 1.5, 2.5)
	require.NoError(t, err)

	env, err := svc.List(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, ActionList, env.ReturnData)
	require.Len(t, env.Rows, 1)
	assert.Equal(t, 1.5, env.Rows[0]["lat"])
	assert.Equal(t, 2.5, env.Rows[0]["lng"])
	assert.Equal(t, int64(0), env.Rows[0]["level"], "claims start at level 0")
}

func TestList_EmptyForNewUser(t *testing.T) {
	svc, _ := newTestService(t)

	env, err := svc.List(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, env.Rows)
}
