package service

import "errors"

var (
	// ErrValidation covers malformed or missing request input.
	ErrValidation = errors.New("validation failed")

	// ErrGameNotFound is returned when a session references an unknown game.
	ErrGameNotFound = errors.New("game not found")

	// ErrAuthentication covers invalid, expired, or otherwise unusable
	// credentials. Callers map it to a 401 without detail.
	ErrAuthentication = errors.New("authentication failed")

	// ErrTokenReuse is returned when a refresh token is presented after it
	// has already been rotated or revoked. By the time the caller sees this
	// error the whole lineage has been revoked.
	ErrTokenReuse = errors.New("refresh token reuse detected")

	// ErrDeviceNotActive is returned when a banned or suspended device
	// attempts to start or refresh a session.
	ErrDeviceNotActive = errors.New("device is not active")

	// Nonce failures. All of them surface to HTTP as a precondition failure,
	// the distinction exists for logging.
	ErrNonceNotFound  = errors.New("nonce not found")
	ErrNonceUsed      = errors.New("nonce already used")
	ErrNonceExpired   = errors.New("nonce expired")
	ErrNonceOwnership = errors.New("nonce belongs to another device")
)
