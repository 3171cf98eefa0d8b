package httpx_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leadr-dev/leadr-auth/pkg/httpx"
)

func TestBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		authz string
		token string
		ok    bool
	}{
		{name: "canonical scheme", authz: "Bearer abc123", token: "abc123", ok: true},
		{name: "lowercase scheme", authz: "bearer abc123", token: "abc123", ok: true},
		{name: "mixed case scheme", authz: "BeArEr abc123", token: "abc123", ok: true},
		{name: "missing header", authz: "", ok: false},
		{name: "wrong scheme", authz: "Basic abc123", ok: false},
		{name: "scheme without token", authz: "Bearer ", ok: false},
		{name: "bare token", authz: "abc123", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := http.NewRequest(http.MethodGet, "/", nil)
			require.NoError(t, err)
			if tc.authz != "" {
				r.Header.Set("Authorization", tc.authz)
			}

			token, ok := httpx.BearerToken(r)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.token, token)
		})
	}
}
