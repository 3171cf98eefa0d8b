package http_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/leadr-dev/leadr-auth/internal/auth/http"
	"github.com/leadr-dev/leadr-auth/internal/auth/service"
	"github.com/leadr-dev/leadr-auth/internal/auth/store/drivers/sqlite"
	"github.com/leadr-dev/leadr-auth/pkg/cryptox"
	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
	"github.com/leadr-dev/leadr-auth/pkg/leadrsdk"
)

const (
	testIssuer     = "leadr-auth-test"
	testAdminToken = "test-admin-token"
)

// newTestServer stands up the whole service against a temp database and
// returns an SDK client pointed at it.
func newTestServer(t *testing.T) *leadrsdk.SDKClient {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	key, err := cryptox.ParseEd25519Key(pemKey)
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", key)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))
	verifier := jwtx.NewVerifierEdDSA(keys, testIssuer)

	logger := slog.New(slog.DiscardHandler)

	router := httpapi.NewRouter(keys, verifier, testIssuer, "test", testAdminToken, st, logger)
	router.TokenService = service.NewTokenService(st, signer, verifier, testIssuer)
	router.NonceService = service.NewNonceService(st)
	router.GameService = service.NewGameService(st)
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return leadrsdk.NewSDKClient(srv.URL)
}

func createTestGame(t *testing.T, client *leadrsdk.SDKClient) string {
	t.Helper()

	game, err := client.CreateGame(context.Background(), testAdminToken, "Integration Game")
	require.NoError(t, err)
	return game.ID
}

func TestDeviceSessionFlow(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)
	gameID := createTestGame(t, client)

	session, err := client.StartSession(ctx, gameID, "e2e-device", "ios")
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken())
	require.NotEmpty(t, session.RefreshToken())
	require.Equal(t, "e2e-device", session.DeviceID())

	// Nonce-gated checkin works end to end.
	checkin, err := session.Checkin(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", checkin.Status)
	require.False(t, checkin.ServerTime.IsZero())
}

func TestNonceReplayRejected(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)
	gameID := createTestGame(t, client)

	session, err := client.StartSession(ctx, gameID, "e2e-device", "")
	require.NoError(t, err)

	nonce, err := session.Nonce(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, nonce.NonceValue)
	require.WithinDuration(t, time.Now().Add(60*time.Second), nonce.ExpiresAt, 5*time.Second)

	_, err = session.CheckinWithNonce(ctx, nonce.NonceValue)
	require.NoError(t, err)

	// Replaying the spent nonce is a precondition failure that names the
	// cause.
	_, err = session.CheckinWithNonce(ctx, nonce.NonceValue)
	requireAPIError(t, err, http.StatusPreconditionFailed, leadrsdk.ErrorCodeInvalidNonce)
	requireAPIErrorMessage(t, err, "nonce already used")
}

func TestCheckinWithoutNonce(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)
	gameID := createTestGame(t, client)

	session, err := client.StartSession(ctx, gameID, "e2e-device", "")
	require.NoError(t, err)

	_, err = session.CheckinWithNonce(ctx, "")
	requireAPIError(t, err, http.StatusPreconditionFailed, leadrsdk.ErrorCodeInvalidNonce)
	requireAPIErrorMessage(t, err, "nonce required")

	// An unknown nonce value reads differently from a missing one.
	_, err = session.CheckinWithNonce(ctx, "never-issued")
	requireAPIError(t, err, http.StatusPreconditionFailed, leadrsdk.ErrorCodeInvalidNonce)
	requireAPIErrorMessage(t, err, "invalid nonce")
}

func TestNonceFromAnotherDevice(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)
	gameID := createTestGame(t, client)

	alice, err := client.StartSession(ctx, gameID, "device-alice", "")
	require.NoError(t, err)
	bob, err := client.StartSession(ctx, gameID, "device-bob", "")
	require.NoError(t, err)

	nonce, err := alice.Nonce(ctx)
	require.NoError(t, err)

	_, err = bob.CheckinWithNonce(ctx, nonce.NonceValue)
	requireAPIError(t, err, http.StatusPreconditionFailed, leadrsdk.ErrorCodeInvalidNonce)
	requireAPIErrorMessage(t, err, "nonce does not belong to this device")

	// The rightful owner can still spend it.
	_, err = alice.CheckinWithNonce(ctx, nonce.NonceValue)
	require.NoError(t, err)
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)
	gameID := createTestGame(t, client)

	session, err := client.StartSession(ctx, gameID, "e2e-device", "")
	require.NoError(t, err)

	oldRefresh := session.RefreshToken()
	require.NoError(t, session.Refresh(ctx))
	require.NotEqual(t, oldRefresh, session.RefreshToken())

	// The rotated session keeps working.
	_, err = session.Checkin(ctx)
	require.NoError(t, err)

	// Replaying the superseded refresh token fails and kills the lineage.
	stolen := client.HTTPClient
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.BaseURL+"/v1/client/sessions/refresh", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+oldRefresh)
	resp, err := stolen.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The legitimate holder is logged out too.
	err = session.Refresh(ctx)
	requireAPIError(t, err, http.StatusUnauthorized, leadrsdk.ErrorCodeInvalidToken)
}

func TestSessionValidation(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	t.Run("unknown game", func(t *testing.T) {
		_, err := client.StartSession(ctx, "0f8c8b9e-9a4e-4f7e-b4a2-0a4f6f1c2d3e", "device", "")
		requireAPIError(t, err, http.StatusNotFound, leadrsdk.ErrorCodeNotFound)
	})

	t.Run("malformed game id", func(t *testing.T) {
		_, err := client.StartSession(ctx, "nope", "device", "")
		requireAPIError(t, err, http.StatusUnprocessableEntity, leadrsdk.ErrorCodeValidation)
	})

	t.Run("missing device id", func(t *testing.T) {
		gameID := createTestGame(t, client)
		_, err := client.StartSession(ctx, gameID, "", "")
		requireAPIError(t, err, http.StatusUnprocessableEntity, leadrsdk.ErrorCodeValidation)
	})
}

func TestAdminTokenGuard(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	_, err := client.CreateGame(ctx, "wrong-token", "Nope")
	requireAPIError(t, err, http.StatusForbidden, leadrsdk.ErrorCodeAdminForbidden)

	_, err = client.CreateGame(ctx, "", "Nope")
	requireAPIError(t, err, http.StatusForbidden, leadrsdk.ErrorCodeAdminForbidden)
}

func TestUnauthenticatedNonce(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.BaseURL+"/v1/client/nonce", nil)
	require.NoError(t, err)

	resp, err := client.HTTPClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSystemEndpoints(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)

	require.NoError(t, client.Livez(ctx))
	require.NoError(t, client.Readyz(ctx))

	resp, err := client.HTTPClient.Get(client.BaseURL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLowercaseBearerScheme(t *testing.T) {
	ctx := context.Background()
	client := newTestServer(t)
	gameID := createTestGame(t, client)

	session, err := client.StartSession(ctx, gameID, "e2e-device", "")
	require.NoError(t, err)

	// The auth scheme is matched case-insensitively.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, client.BaseURL+"/v1/client/nonce", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "bearer "+session.AccessToken())

	resp, err := client.HTTPClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()

	var apiErr *leadrsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, status, apiErr.StatusCode)
	require.Equal(t, code, apiErr.Code)
}

func requireAPIErrorMessage(t *testing.T, err error, message string) {
	t.Helper()

	var apiErr *leadrsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, message, apiErr.Message)
}
