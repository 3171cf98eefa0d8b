package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, device_ref, lineage_id, status, superseded_by, issued_at, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.DeviceRef, t.LineageID, t.Status, mapStringNull(t.SupersededBy),
		t.IssuedAt, t.ExpiresAt, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *refreshTokensRepo) GetRefreshToken(ctx context.Context, id string) (domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, device_ref, lineage_id, status, superseded_by, issued_at, expires_at, created_at, updated_at
		FROM refresh_tokens
		WHERE id = ?
	`, id)

	var t domain.RefreshToken
	var superseded sql.NullString
	err := row.Scan(&t.ID, &t.DeviceRef, &t.LineageID, &t.Status, &superseded,
		&t.IssuedAt, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	t.SupersededBy = mapNullString(superseded)
	return t, nil
}

// RotateRefreshToken performs the single-winner transition for refresh
// rotation. The WHERE clause only matches while the row is still ACTIVE, so
// concurrent callers race on the row update and exactly one observes
// RowsAffected == 1.
func (r *refreshTokensRepo) RotateRefreshToken(ctx context.Context, id, supersededBy string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET status = ?, superseded_by = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`, domain.RefreshRotated, supersededBy, at, id, domain.RefreshActive)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *refreshTokensRepo) RevokeLineage(ctx context.Context, lineageID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE refresh_tokens
		SET status = ?, updated_at = ?
		WHERE lineage_id = ? AND status != ?
	`, domain.RefreshRevoked, at, lineageID, domain.RefreshRevoked)
	return err
}
