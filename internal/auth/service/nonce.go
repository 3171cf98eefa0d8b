package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
	"github.com/leadr-dev/leadr-auth/internal/auth/store"
)

// DefaultNonceTTL is how long an issued nonce stays consumable.
const DefaultNonceTTL = 60 * time.Second

// NonceService issues and consumes single-use nonces that gate mutating
// client calls against replay.
type NonceService struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

type NonceServiceOption func(*NonceService)

func WithNonceTTL(ttl time.Duration) NonceServiceOption {
	return func(s *NonceService) { s.ttl = ttl }
}

func WithNonceClock(now func() time.Time) NonceServiceOption {
	return func(s *NonceService) { s.now = now }
}

func NewNonceService(st store.Store, opts ...NonceServiceOption) *NonceService {
	s := &NonceService{
		store: st,
		ttl:   DefaultNonceTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints a fresh PENDING nonce bound to the requesting device. A device
// may hold any number of outstanding nonces.
func (s *NonceService) Issue(ctx context.Context, deviceRef string) (domain.Nonce, error) {
	now := s.now().UTC()

	nonce := domain.Nonce{
		Value:     uuid.NewString(),
		DeviceRef: deviceRef,
		Status:    domain.NoncePending,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Nonces().CreateNonce(ctx, nonce); err != nil {
		return domain.Nonce{}, fmt.Errorf("store nonce: %w", err)
	}
	return nonce, nil
}

// Consume atomically spends a nonce on behalf of a device. Every failure mode
// maps to a precondition error at the HTTP layer; the distinct sentinels
// exist so logs can tell replay from expiry.
//
// Expiry is checked against the wall clock here, not the housekeeping sweep,
// so a nonce past its ExpiresAt is rejected even while still marked PENDING.
func (s *NonceService) Consume(ctx context.Context, value, deviceRef string) error {
	now := s.now().UTC()

	nonce, err := s.store.Nonces().GetNonce(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNonceNotFound
		}
		return fmt.Errorf("load nonce: %w", err)
	}

	if nonce.DeviceRef != deviceRef {
		return ErrNonceOwnership
	}
	if nonce.Status == domain.NonceUsed {
		return ErrNonceUsed
	}
	if nonce.IsExpired(now) {
		return ErrNonceExpired
	}

	won, err := s.store.Nonces().ConsumeNonce(ctx, value, now)
	if err != nil {
		return fmt.Errorf("consume nonce: %w", err)
	}
	if !won {
		return ErrNonceUsed
	}
	return nil
}

// ExpireOverdue flips PENDING nonces past expiry to EXPIRED. Housekeeping
// calls this on a timer; it is not load-bearing for correctness since Consume
// checks expiry itself.
func (s *NonceService) ExpireOverdue(ctx context.Context) (int64, error) {
	return s.store.Nonces().ExpireOverdueNonces(ctx, s.now().UTC())
}
