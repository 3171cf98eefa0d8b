package store

import (
	"context"
	"errors"
	"time"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to actively stop people from accidentally opening
// transactions within transactions.
type Store interface {
	Games() Games
	Devices() Devices
	RefreshTokens() RefreshTokens
	Nonces() Nonces

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh
	// rotation). The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Games interface {
	// CreateGame inserts a new game (id is a UUID provided by the caller).
	CreateGame(ctx context.Context, g domain.Game) error

	// GetGameByID returns a game by id.
	GetGameByID(ctx context.Context, id string) (domain.Game, error)

	// GameExists is the lookup session start delegates to.
	GameExists(ctx context.Context, id string) (bool, error)
}

type Devices interface {
	// GetDevice returns the device for a (game_id, device_id) pair.
	GetDevice(ctx context.Context, gameID, deviceID string) (domain.Device, error)

	// GetDeviceByRef returns a device by its server-side ULID.
	GetDeviceByRef(ctx context.Context, ref string) (domain.Device, error)

	// CreateDevice inserts a new device (id is provided by app via ULID).
	CreateDevice(ctx context.Context, d domain.Device) error

	// TouchDevice bumps last_seen_at; platform is recorded only if the row
	// has none yet.
	TouchDevice(ctx context.Context, ref string, platform string, seenAt time.Time) error

	// UpdateDeviceStatus flips a device between active/banned/suspended.
	UpdateDeviceStatus(ctx context.Context, ref string, status domain.DeviceStatus) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record (status ACTIVE).
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshToken returns the record by token id.
	GetRefreshToken(ctx context.Context, id string) (domain.RefreshToken, error)

	// RotateRefreshToken atomically transitions the record from ACTIVE to
	// ROTATED, recording its successor. Returns true if this call performed
	// the transition, false if the record was no longer ACTIVE - the loser
	// of a concurrent race observes false, never an error.
	RotateRefreshToken(ctx context.Context, id, supersededBy string, at time.Time) (bool, error)

	// RevokeLineage marks every record in the lineage REVOKED, whatever
	// state each row is in. Used for cascading invalidation on reuse
	// detection. Rows are never deleted.
	RevokeLineage(ctx context.Context, lineageID string, at time.Time) error
}

type Nonces interface {
	// CreateNonce stores a freshly issued PENDING nonce.
	CreateNonce(ctx context.Context, n domain.Nonce) error

	// GetNonce returns a nonce by value.
	GetNonce(ctx context.Context, value string) (domain.Nonce, error)

	// ConsumeNonce atomically transitions the nonce from PENDING to USED and
	// stamps used_at. Returns true if this call performed the transition,
	// false if the nonce was no longer PENDING.
	ConsumeNonce(ctx context.Context, value string, at time.Time) (bool, error)

	// ExpireOverdueNonces flips PENDING nonces past their expiry to EXPIRED
	// (housekeeping; rows are retained for audit). Returns rows affected.
	ExpireOverdueNonces(ctx context.Context, now time.Time) (int64, error)
}
