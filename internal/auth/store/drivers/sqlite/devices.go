package sqlite

import (
	"context"
	"time"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
)

type devicesRepo struct {
	db dbtx
}

func (r *devicesRepo) GetDevice(ctx context.Context, gameID, deviceID string) (domain.Device, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, game_id, device_id, platform, status, created_at, last_seen_at
		FROM devices
		WHERE game_id = ? AND device_id = ?
	`, gameID, deviceID)
	return scanDevice(row)
}

func (r *devicesRepo) GetDeviceByRef(ctx context.Context, ref string) (domain.Device, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, game_id, device_id, platform, status, created_at, last_seen_at
		FROM devices
		WHERE id = ?
	`, ref)
	return scanDevice(row)
}

func (r *devicesRepo) CreateDevice(ctx context.Context, d domain.Device) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, game_id, device_id, platform, status, created_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.GameID, d.DeviceID, d.Platform, d.Status, d.CreatedAt, d.LastSeenAt)
	return err
}

func (r *devicesRepo) TouchDevice(ctx context.Context, ref string, platform string, seenAt time.Time) error {
	// Platform is sticky: the first non-empty value wins.
	_, err := r.db.ExecContext(ctx, `
		UPDATE devices
		SET last_seen_at = ?,
		    platform = CASE WHEN platform = '' THEN ? ELSE platform END
		WHERE id = ?
	`, seenAt, platform, ref)
	return err
}

func (r *devicesRepo) UpdateDeviceStatus(ctx context.Context, ref string, status domain.DeviceStatus) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE devices SET status = ? WHERE id = ?
	`, status, ref)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (domain.Device, error) {
	var d domain.Device
	err := row.Scan(&d.ID, &d.GameID, &d.DeviceID, &d.Platform, &d.Status, &d.CreatedAt, &d.LastSeenAt)
	if err != nil {
		return domain.Device{}, mapNotFound(err)
	}
	return d, nil
}
