package http

import (
	"net/http"

	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/pkg/httpx"
	"github.com/leadr-dev/leadr-auth/pkg/leadrsdk"
	"github.com/leadr-dev/leadr-auth/pkg/slogx"
)

// NonceHandler serves GET /v1/client/nonce. Requires an access token; the
// issued nonce is bound to the requesting device.
type NonceHandler struct {
	NonceService *service.NonceService
}

func (h *NonceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	deviceRef := httpx.DeviceRefFromCtx(ctx)
	if deviceRef == "" {
		leadrsdk.ErrInvalidToken.WriteError(w)
		return
	}

	nonce, err := h.NonceService.Issue(ctx, deviceRef)
	if err != nil {
		log.Error("nonce issue failed", "err", err)
		leadrsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, leadrsdk.NonceResponse{
		NonceValue: nonce.Value,
		ExpiresAt:  nonce.ExpiresAt,
	})
}
