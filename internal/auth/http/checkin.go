package http

import (
	"net/http"

	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/pkg/httpx"
	"github.com/leadr-dev/leadr-auth/pkg/leadrsdk"
	"github.com/leadr-dev/leadr-auth/pkg/slogx"
)

// CheckinHandler serves POST /v1/client/checkin, the reference mutating
// endpoint. The access token and nonce are vetted by the middleware chain;
// the handler itself just stamps device activity.
type CheckinHandler struct {
	TokenService *service.TokenService
}

func (h *CheckinHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	deviceRef := httpx.DeviceRefFromCtx(ctx)
	if deviceRef == "" {
		leadrsdk.ErrInvalidToken.WriteError(w)
		return
	}

	seenAt, err := h.TokenService.Checkin(ctx, deviceRef)
	if err != nil {
		log.Error("checkin failed", "err", err)
		leadrsdk.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, leadrsdk.CheckinResponse{
		Status:     "ok",
		ServerTime: seenAt,
	})
}
