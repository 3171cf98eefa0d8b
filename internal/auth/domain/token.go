package domain

import "time"

// TokenPair is what session start and refresh return: the short-lived access
// token (JWT) and the rotating refresh token (also a signed JWT, backed by a
// store record).
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime, seconds
	DeviceID     string `json:"device_id,omitempty"`
}

// RefreshTokenStatus is the stored lifecycle state of a refresh record.
type RefreshTokenStatus string

const (
	RefreshActive  RefreshTokenStatus = "active"
	RefreshRotated RefreshTokenStatus = "rotated"
	RefreshRevoked RefreshTokenStatus = "revoked"
)

// RefreshToken models the stored refresh token record in the DB.
//
// All records descended from one original session share a LineageID; at most
// one record per lineage is ever ACTIVE. Records are never deleted - rotated
// and revoked rows stay around for audit.
type RefreshToken struct {
	ID           string // token_id, also the refresh JWT's jti
	DeviceRef    string // device record ULID
	LineageID    string
	Status       RefreshTokenStatus
	SupersededBy string // token_id of the successor once rotated
	IssuedAt     time.Time
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
