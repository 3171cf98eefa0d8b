package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
)

func TestExpireOverdue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	deviceRef := seedDevice(t, st, seedGame(t, st))

	clock := time.Now().UTC()
	svc := NewNonceService(st, WithNonceClock(func() time.Time { return clock }))

	overdue, err := svc.Issue(ctx, deviceRef)
	require.NoError(t, err)

	clock = clock.Add(DefaultNonceTTL + time.Second)

	fresh, err := svc.Issue(ctx, deviceRef)
	require.NoError(t, err)

	n, err := svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	stored, err := st.Nonces().GetNonce(ctx, overdue.Value)
	require.NoError(t, err)
	require.Equal(t, domain.NonceExpired, stored.Status)

	stored, err = st.Nonces().GetNonce(ctx, fresh.Value)
	require.NoError(t, err)
	require.Equal(t, domain.NoncePending, stored.Status)

	// Idempotent when nothing is overdue.
	n, err = svc.ExpireOverdue(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestHousekeepingLifecycle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t)
	nonces := NewNonceService(st)
	hk := NewHousekeepingService(nonces, slog.New(slog.DiscardHandler), 50*time.Millisecond)

	hk.Start()
	time.Sleep(120 * time.Millisecond) // let at least one sweep run
	hk.Stop()                          // blocks until the worker exits
}
