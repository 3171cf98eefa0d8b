package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
	"github.com/leadr-dev/leadr-auth/pkg/slogx"
)

// AuthnMiddleware verifies the bearer access token and injects the device
// identity into the request context. Refresh tokens are rejected here; they
// are only valid on the refresh endpoint.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("jwt verify failed", "err", err)
				return
			}

			if err := claims.ValidateUse(jwtx.TokenUseAccess); err != nil {
				writeBearerError(w, "token is not an access token")
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header.
// The scheme is matched case-insensitively per RFC 7235.
func BearerToken(r *http.Request) (string, bool) {
	scheme, raw, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyDeviceRef, c.DeviceRef)
	ctx = context.WithValue(ctx, CtxKeyDeviceID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyGameID, c.GameID)
	ctx = context.WithValue(ctx, CtxKeyLineageID, c.LineageID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
