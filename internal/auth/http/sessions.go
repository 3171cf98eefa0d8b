package http

import (
	"errors"
	"net/http"

	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/pkg/httpx"
	"github.com/leadr-dev/leadr-auth/pkg/leadrsdk"
	"github.com/leadr-dev/leadr-auth/pkg/slogx"
)

// SessionsHandler serves the anonymous device session endpoints:
// POST /v1/client/sessions and POST /v1/client/sessions/refresh.
type SessionsHandler struct {
	TokenService *service.TokenService
}

// HandleStart opens (or resumes) a device session. No prior credentials are
// required; abuse control is the rate limiter's job.
func (h *SessionsHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req leadrsdk.StartSessionRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		leadrsdk.ErrValidation.WithMessage("invalid JSON body").WriteError(w)
		return
	}

	pair, err := h.TokenService.StartSession(ctx, req.GameID, req.DeviceID, req.Platform)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			leadrsdk.ErrValidation.WithMessage(err.Error()).WriteError(w)
		case errors.Is(err, service.ErrGameNotFound):
			leadrsdk.ErrGameNotFound.WriteError(w)
		case errors.Is(err, service.ErrDeviceNotActive):
			leadrsdk.ErrDeviceBlocked.WriteError(w)
		default:
			log.Error("session start failed", "err", err)
			leadrsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, leadrsdk.SessionResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		DeviceID:     pair.DeviceID,
	})
}

// HandleRefresh rotates the bearer refresh token into a new pair. Reuse of a
// rotated token revokes the lineage server-side but responds like any other
// credential failure.
func (h *SessionsHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw, ok := httpx.BearerToken(r)
	if !ok {
		leadrsdk.ErrInvalidToken.WriteError(w)
		return
	}

	pair, err := h.TokenService.Refresh(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTokenReuse):
			log.Warn("refresh token reuse detected, lineage revoked")
			leadrsdk.ErrInvalidToken.WriteError(w)
		case errors.Is(err, service.ErrAuthentication):
			leadrsdk.ErrInvalidToken.WriteError(w)
		case errors.Is(err, service.ErrDeviceNotActive):
			leadrsdk.ErrDeviceBlocked.WriteError(w)
		default:
			log.Error("session refresh failed", "err", err)
			leadrsdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, leadrsdk.SessionResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    pair.ExpiresIn,
		DeviceID:     pair.DeviceID,
	})
}
