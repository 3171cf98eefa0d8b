package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
)

type noncesRepo struct {
	db dbtx
}

func (r *noncesRepo) CreateNonce(ctx context.Context, n domain.Nonce) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO nonces (nonce_value, device_ref, status, used_at, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, n.Value, n.DeviceRef, n.Status, mapTimeNull(n.UsedAt), n.CreatedAt, n.ExpiresAt)
	return err
}

func (r *noncesRepo) GetNonce(ctx context.Context, value string) (domain.Nonce, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT nonce_value, device_ref, status, used_at, created_at, expires_at
		FROM nonces
		WHERE nonce_value = ?
	`, value)

	var n domain.Nonce
	var usedAt sql.NullTime
	err := row.Scan(&n.Value, &n.DeviceRef, &n.Status, &usedAt, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		return domain.Nonce{}, mapNotFound(err)
	}
	if usedAt.Valid {
		t := usedAt.Time
		n.UsedAt = &t
	}
	return n, nil
}

// ConsumeNonce performs the single-use transition. Like refresh rotation the
// WHERE clause only matches while the row is still PENDING so concurrent
// callers get exactly one winner.
func (r *noncesRepo) ConsumeNonce(ctx context.Context, value string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE nonces
		SET status = ?, used_at = ?
		WHERE nonce_value = ? AND status = ?
	`, domain.NonceUsed, at, value, domain.NoncePending)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *noncesRepo) ExpireOverdueNonces(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE nonces
		SET status = ?
		WHERE status = ? AND expires_at <= ?
	`, domain.NonceExpired, domain.NoncePending, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func mapTimeNull(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
