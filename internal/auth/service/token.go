package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
	"github.com/leadr-dev/leadr-auth/internal/auth/store"
	"github.com/leadr-dev/leadr-auth/pkg/idx"
	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
)

// TokenService owns the session lifecycle: starting sessions for anonymous
// devices, refreshing them with rotation, and validating access tokens.
type TokenService struct {
	store    store.Store
	signer   jwtx.Signer
	verifier jwtx.Verifier
	issuer   string

	accessTTL  time.Duration
	refreshTTL time.Duration

	// now is swappable for expiry tests.
	now func() time.Time
}

// maxDeviceIDLen bounds the client-chosen device identifier.
const maxDeviceIDLen = 255

type TokenServiceOption func(*TokenService)

func WithAccessTTL(ttl time.Duration) TokenServiceOption {
	return func(s *TokenService) { s.accessTTL = ttl }
}

func WithRefreshTTL(ttl time.Duration) TokenServiceOption {
	return func(s *TokenService) { s.refreshTTL = ttl }
}

func WithClock(now func() time.Time) TokenServiceOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(st store.Store, signer jwtx.Signer, verifier jwtx.Verifier, issuer string, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		store:      st,
		signer:     signer,
		verifier:   verifier,
		issuer:     issuer,
		accessTTL:  jwtx.DefaultAccessTokenTTL,
		refreshTTL: jwtx.DefaultRefreshTokenTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartSession issues a token pair for a (game, device) pair, registering the
// device on first contact. No prior credentials are required; the
// client-supplied device id is the whole identity.
func (s *TokenService) StartSession(ctx context.Context, gameID, deviceID, platform string) (domain.TokenPair, error) {
	gameID = strings.TrimSpace(gameID)
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: device_id is required", ErrValidation)
	}
	if len(deviceID) > maxDeviceIDLen {
		return domain.TokenPair{}, fmt.Errorf("%w: device_id exceeds %d characters", ErrValidation, maxDeviceIDLen)
	}
	if _, err := uuid.Parse(gameID); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: game_id must be a uuid", ErrValidation)
	}

	exists, err := s.store.Games().GameExists(ctx, gameID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("check game: %w", err)
	}
	if !exists {
		return domain.TokenPair{}, ErrGameNotFound
	}

	now := s.now().UTC()

	device, err := s.upsertDevice(ctx, gameID, deviceID, platform, now)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !device.IsActive() {
		return domain.TokenPair{}, ErrDeviceNotActive
	}

	// Each session start opens a fresh lineage. Existing lineages for the
	// same device keep working until they expire or get revoked.
	lineageID := idx.New().String()

	return s.issuePair(ctx, device, lineageID, now)
}

// Refresh exchanges a refresh token for a new pair, rotating the presented
// token. Presenting a token that has already been rotated is treated as theft
// and revokes the entire lineage.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.verifier.Verify(refreshToken)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if err := claims.ValidateUse(jwtx.TokenUseRefresh); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	now := s.now().UTC()

	record, err := s.store.RefreshTokens().GetRefreshToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrAuthentication
		}
		return domain.TokenPair{}, fmt.Errorf("load refresh token: %w", err)
	}
	if !now.Before(record.ExpiresAt) {
		return domain.TokenPair{}, fmt.Errorf("%w: refresh token expired", ErrAuthentication)
	}

	device, err := s.store.Devices().GetDeviceByRef(ctx, record.DeviceRef)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("load device: %w", err)
	}
	if !device.IsActive() {
		return domain.TokenPair{}, ErrDeviceNotActive
	}

	newTokenID := jwtx.NewJTI()
	newRecord := domain.RefreshToken{
		ID:        newTokenID,
		DeviceRef: device.ID,
		LineageID: record.LineageID,
		Status:    domain.RefreshActive,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Rotation and successor insert happen in one transaction so a crash
	// between the two cannot strand the lineage without an active token.
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		won, err := tx.RefreshTokens().RotateRefreshToken(ctx, record.ID, newTokenID, now)
		if err != nil {
			return err
		}
		if !won {
			return ErrTokenReuse
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRecord)
	})
	if errors.Is(err, ErrTokenReuse) {
		// The transaction rolled back; revoke on the pooled connection so
		// the cascade actually commits.
		if revokeErr := s.store.RefreshTokens().RevokeLineage(ctx, record.LineageID, now); revokeErr != nil {
			return domain.TokenPair{}, fmt.Errorf("revoke lineage: %w", revokeErr)
		}
		return domain.TokenPair{}, ErrTokenReuse
	}
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	if err := s.store.Devices().TouchDevice(ctx, device.ID, device.Platform, now); err != nil {
		return domain.TokenPair{}, fmt.Errorf("touch device: %w", err)
	}

	return s.signPair(device, record.LineageID, newTokenID, now)
}

// ValidateAccess verifies an access token and returns the device identity it
// carries. Access tokens are self-verifying; no store lookup happens here.
func (s *TokenService) ValidateAccess(token string) (domain.DeviceIdentity, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if err := claims.ValidateUse(jwtx.TokenUseAccess); err != nil {
		return domain.DeviceIdentity{}, fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return domain.DeviceIdentity{
		DeviceRef: claims.DeviceRef,
		DeviceID:  claims.Subject,
		GameID:    claims.GameID,
		LineageID: claims.LineageID,
	}, nil
}

// Checkin records device activity for an authenticated request and returns
// the stamp it wrote.
func (s *TokenService) Checkin(ctx context.Context, deviceRef string) (time.Time, error) {
	now := s.now().UTC()
	if err := s.store.Devices().TouchDevice(ctx, deviceRef, "", now); err != nil {
		return time.Time{}, fmt.Errorf("touch device: %w", err)
	}
	return now, nil
}

// SetDeviceStatus bans, suspends, or reinstates a device. Revoking the
// device's outstanding refresh lineages is left to the next refresh attempt,
// which checks status before rotating.
func (s *TokenService) SetDeviceStatus(ctx context.Context, ref string, status domain.DeviceStatus) error {
	switch status {
	case domain.DeviceActive, domain.DeviceBanned, domain.DeviceSuspended:
	default:
		return fmt.Errorf("%w: unknown device status %q", ErrValidation, status)
	}
	if _, err := s.store.Devices().GetDeviceByRef(ctx, ref); err != nil {
		return err
	}
	return s.store.Devices().UpdateDeviceStatus(ctx, ref, status)
}

func (s *TokenService) upsertDevice(ctx context.Context, gameID, deviceID, platform string, now time.Time) (domain.Device, error) {
	device, err := s.store.Devices().GetDevice(ctx, gameID, deviceID)
	if err == nil {
		if touchErr := s.store.Devices().TouchDevice(ctx, device.ID, platform, now); touchErr != nil {
			return domain.Device{}, fmt.Errorf("touch device: %w", touchErr)
		}
		return device, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Device{}, fmt.Errorf("load device: %w", err)
	}

	device = domain.Device{
		ID:         idx.New().String(),
		GameID:     gameID,
		DeviceID:   deviceID,
		Platform:   platform,
		Status:     domain.DeviceActive,
		CreatedAt:  now,
		LastSeenAt: now,
	}
	if err := s.store.Devices().CreateDevice(ctx, device); err != nil {
		// Lost a first-contact race; the other caller's row wins.
		if existing, getErr := s.store.Devices().GetDevice(ctx, gameID, deviceID); getErr == nil {
			return existing, nil
		}
		return domain.Device{}, fmt.Errorf("create device: %w", err)
	}
	return device, nil
}

func (s *TokenService) issuePair(ctx context.Context, device domain.Device, lineageID string, now time.Time) (domain.TokenPair, error) {
	tokenID := jwtx.NewJTI()

	record := domain.RefreshToken{
		ID:        tokenID,
		DeviceRef: device.ID,
		LineageID: lineageID,
		Status:    domain.RefreshActive,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return s.signPair(device, lineageID, tokenID, now)
}

func (s *TokenService) signPair(device domain.Device, lineageID, tokenID string, now time.Time) (domain.TokenPair, error) {
	accessClaims := jwtx.NewAccessClaims(device.DeviceID, device.ID, device.GameID, lineageID, s.accessTTL, s.issuer, now)
	access, err := s.signer.Sign(accessClaims)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshClaims := jwtx.NewRefreshClaims(device.DeviceID, device.ID, device.GameID, lineageID, tokenID, s.refreshTTL, s.issuer, now)
	refresh, err := s.signer.Sign(refreshClaims)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		DeviceID:     device.DeviceID,
	}, nil
}
