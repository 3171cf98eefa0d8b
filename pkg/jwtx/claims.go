package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/leadr-dev/leadr-auth/pkg/cryptox"
)

// Default token TTL constants for the device session lifecycle.
// These provide sensible security defaults but can be overridden per-service.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Access tokens are self-verifying (no store lookup), so they must stay
	// short-lived.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Refresh tokens are backed by a revocable store record, so they can be
	// long-lived.
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
)

// Token use discriminator values for the "use" claim. A refresh token must
// never be accepted where an access token is expected and vice versa.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

// Claims are the device-credential claims used across the service. We keep
// changes additive to preserve compatibility for later.
type Claims struct {
	jwt.RegisteredClaims

	/* Custom device identity fields */

	// GameID scopes the device to a single game. Device ids are only unique
	// within their game.
	GameID string `json:"gid,omitempty"`

	// DeviceRef is the server-side device record id (ULID). The subject is
	// the client-chosen device_id string; DeviceRef is what storage rows
	// (nonces, refresh records) are keyed by.
	DeviceRef string `json:"did,omitempty"`

	// LineageID identifies the refresh-token chain this credential descends
	// from. Revoking a lineage invalidates every credential carrying it.
	LineageID string `json:"sid,omitempty"`

	// TokenUse is "access" or "refresh".
	TokenUse string `json:"use,omitempty"`
}

// NewAccessClaims builds minimally-correct access token claims.
func NewAccessClaims(
	deviceID, deviceRef, gameID, lineageID string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		GameID:    gameID,
		DeviceRef: deviceRef,
		LineageID: lineageID,
		TokenUse:  TokenUseAccess,
	}
}

// NewRefreshClaims builds refresh token claims. The jti is the id of the
// stored refresh-token record, which lets the rotation engine verify the
// token's authenticity before touching the store.
func NewRefreshClaims(
	deviceID, deviceRef, gameID, lineageID, tokenID string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   deviceID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        tokenID,
		},
		GameID:    gameID,
		DeviceRef: deviceRef,
		LineageID: lineageID,
		TokenUse:  TokenUseRefresh,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	return cryptox.MustGenerateToken(cryptox.TokenSize128)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateUse enforces the token-use discriminator.
func (c *Claims) ValidateUse(expected string) error {
	if c.TokenUse != expected {
		return ErrTokenUse
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
