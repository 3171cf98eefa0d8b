package http

import (
	"net/http"

	"github.com/leadr-dev/leadr-auth/pkg/httpx"
	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
)

// JWKSHandler exposes the JSON Web Key Set so game backends can verify
// access tokens without calling this service.
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, keys.PublicJWKS())
	}
}
