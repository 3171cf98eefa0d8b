package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
	"github.com/leadr-dev/leadr-auth/internal/auth/store"
)

// seedDevice registers a device directly so nonce tests don't need the whole
// session flow.
func seedDevice(t *testing.T, st store.Store, gameID string) string {
	t.Helper()

	svc := newTestTokenService(t, st)
	pair, err := svc.StartSession(context.Background(), gameID, "nonce-device", "")
	require.NoError(t, err)
	identity, err := svc.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	return identity.DeviceRef
}

func TestNonceIssueAndConsume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("a fresh nonce consumes exactly once", func(t *testing.T) {
		st := newTestStore(t)
		deviceRef := seedDevice(t, st, seedGame(t, st))
		svc := NewNonceService(st)

		nonce, err := svc.Issue(ctx, deviceRef)
		require.NoError(t, err)
		require.NotEmpty(t, nonce.Value)
		require.Equal(t, domain.NoncePending, nonce.Status)

		require.NoError(t, svc.Consume(ctx, nonce.Value, deviceRef))

		err = svc.Consume(ctx, nonce.Value, deviceRef)
		require.ErrorIs(t, err, ErrNonceUsed)
	})

	t.Run("consume stamps used_at", func(t *testing.T) {
		st := newTestStore(t)
		deviceRef := seedDevice(t, st, seedGame(t, st))
		svc := NewNonceService(st)

		nonce, err := svc.Issue(ctx, deviceRef)
		require.NoError(t, err)
		require.NoError(t, svc.Consume(ctx, nonce.Value, deviceRef))

		stored, err := st.Nonces().GetNonce(ctx, nonce.Value)
		require.NoError(t, err)
		require.Equal(t, domain.NonceUsed, stored.Status)
		require.NotNil(t, stored.UsedAt)
	})

	t.Run("unknown nonce", func(t *testing.T) {
		st := newTestStore(t)
		deviceRef := seedDevice(t, st, seedGame(t, st))
		svc := NewNonceService(st)

		err := svc.Consume(ctx, "never-issued", deviceRef)
		require.ErrorIs(t, err, ErrNonceNotFound)
	})

	t.Run("nonce is bound to its device", func(t *testing.T) {
		st := newTestStore(t)
		gameID := seedGame(t, st)
		owner := seedDevice(t, st, gameID)
		svc := NewNonceService(st)

		nonce, err := svc.Issue(ctx, owner)
		require.NoError(t, err)

		err = svc.Consume(ctx, nonce.Value, "someone-else")
		require.ErrorIs(t, err, ErrNonceOwnership)

		// Still spendable by the rightful owner.
		require.NoError(t, svc.Consume(ctx, nonce.Value, owner))
	})

	t.Run("expired nonce rejected before housekeeping runs", func(t *testing.T) {
		st := newTestStore(t)
		deviceRef := seedDevice(t, st, seedGame(t, st))

		clock := time.Now().UTC()
		svc := NewNonceService(st, WithNonceClock(func() time.Time { return clock }))

		nonce, err := svc.Issue(ctx, deviceRef)
		require.NoError(t, err)

		clock = clock.Add(DefaultNonceTTL + time.Second)

		err = svc.Consume(ctx, nonce.Value, deviceRef)
		require.ErrorIs(t, err, ErrNonceExpired)

		// The row is still PENDING; only the sweep flips it.
		stored, err := st.Nonces().GetNonce(ctx, nonce.Value)
		require.NoError(t, err)
		require.Equal(t, domain.NoncePending, stored.Status)
	})

	t.Run("a device may hold several outstanding nonces", func(t *testing.T) {
		st := newTestStore(t)
		deviceRef := seedDevice(t, st, seedGame(t, st))
		svc := NewNonceService(st)

		first, err := svc.Issue(ctx, deviceRef)
		require.NoError(t, err)
		second, err := svc.Issue(ctx, deviceRef)
		require.NoError(t, err)
		require.NotEqual(t, first.Value, second.Value)

		require.NoError(t, svc.Consume(ctx, second.Value, deviceRef))
		require.NoError(t, svc.Consume(ctx, first.Value, deviceRef))
	})
}

func TestNonceConsumeConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	deviceRef := seedDevice(t, st, seedGame(t, st))
	svc := NewNonceService(st)

	nonce, err := svc.Issue(ctx, deviceRef)
	require.NoError(t, err)

	const workers = 10

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Consume(ctx, nonce.Value, deviceRef)
		}()
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		require.ErrorIs(t, err, ErrNonceUsed)
	}

	require.Equal(t, 1, successes)
}
