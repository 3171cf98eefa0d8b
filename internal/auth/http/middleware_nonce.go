package http

import (
	"errors"
	"net/http"

	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/pkg/httpx"
	"github.com/leadr-dev/leadr-auth/pkg/leadrsdk"
	"github.com/leadr-dev/leadr-auth/pkg/slogx"
)

// RequireNonce gates a mutating endpoint behind the single-use nonce carried
// in the leadr-client-nonce header. Must run after AuthnMiddleware since the
// nonce is checked against the authenticated device. Any failure is a 412;
// the handler only runs once the nonce is spent.
func RequireNonce(nonces *service.NonceService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			value := r.Header.Get(leadrsdk.NonceHeader)
			if value == "" {
				leadrsdk.ErrInvalidNonce.WithMessage("nonce required").WriteError(w)
				return
			}

			deviceRef := httpx.DeviceRefFromCtx(ctx)
			if deviceRef == "" {
				leadrsdk.ErrInvalidToken.WriteError(w)
				return
			}

			if err := nonces.Consume(ctx, value, deviceRef); err != nil {
				// Every rejection is a 412, but the message names the cause
				// so the client can tell a retryable miss from a replay.
				switch {
				case errors.Is(err, service.ErrNonceNotFound):
					log.Warn("nonce rejected", "reason", err)
					leadrsdk.ErrInvalidNonce.WithMessage("invalid nonce").WriteError(w)
				case errors.Is(err, service.ErrNonceOwnership):
					log.Warn("nonce rejected", "reason", err)
					leadrsdk.ErrInvalidNonce.WithMessage("nonce does not belong to this device").WriteError(w)
				case errors.Is(err, service.ErrNonceUsed):
					log.Warn("nonce rejected", "reason", err)
					leadrsdk.ErrInvalidNonce.WithMessage("nonce already used").WriteError(w)
				case errors.Is(err, service.ErrNonceExpired):
					log.Warn("nonce rejected", "reason", err)
					leadrsdk.ErrInvalidNonce.WithMessage("nonce expired").WriteError(w)
				default:
					log.Error("nonce consume failed", "err", err)
					leadrsdk.ErrServerError.WriteError(w)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
