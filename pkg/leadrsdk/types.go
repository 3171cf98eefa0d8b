package leadrsdk

import (
	"time"

	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
)

// NonceHeader is the request header mutating client calls must carry.
const NonceHeader = "leadr-client-nonce"

// AdminTokenHeader carries the shared operator token for admin endpoints.
const AdminTokenHeader = "leadr-admin-token"

// StartSessionRequest opens (or resumes) a device session.
type StartSessionRequest struct {
	GameID   string `json:"game_id"`
	DeviceID string `json:"device_id"`
	Platform string `json:"platform,omitempty"`
}

// SessionResponse is returned by session start and refresh.
type SessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // access token lifetime, seconds
	DeviceID     string `json:"device_id,omitempty"`
}

// NonceResponse is a freshly issued single-use nonce.
type NonceResponse struct {
	NonceValue string    `json:"nonce_value"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// CheckinResponse acknowledges a device check-in.
type CheckinResponse struct {
	Status     string    `json:"status"`
	ServerTime time.Time `json:"server_time"`
}

// CreateGameRequest registers a new game (admin only).
type CreateGameRequest struct {
	Name string `json:"name"`
}

// GameResponse describes a registered game.
type GameResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports per-dependency readiness.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the JSON Web Key Set served for token verification.
type JWKSResponse = jwtx.JWKS
