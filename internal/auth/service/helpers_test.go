package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/leadr-dev/leadr-auth/internal/auth/domain"
	"github.com/leadr-dev/leadr-auth/internal/auth/store"
	"github.com/leadr-dev/leadr-auth/internal/auth/store/drivers/sqlite"
	"github.com/leadr-dev/leadr-auth/pkg/cryptox"
	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
)

const testIssuer = "leadr-auth-test"

// newTestStore opens a file-backed database in a temp dir. A file rather
// than :memory: because the pool hands each connection its own in-memory
// database, which breaks any test using more than one connection.
func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestKeys(t *testing.T) (jwtx.Signer, *jwtx.EdDSAVerifier) {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	key, err := cryptox.ParseEd25519Key(pemKey)
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA("test-key", key)
	require.NoError(t, err)

	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	return signer, jwtx.NewVerifierEdDSA(keys, testIssuer)
}

func newTestTokenService(t *testing.T, st store.Store, opts ...TokenServiceOption) *TokenService {
	t.Helper()

	signer, verifier := newTestKeys(t)
	return NewTokenService(st, signer, verifier, testIssuer, opts...)
}

func seedGame(t *testing.T, st store.Store) string {
	t.Helper()

	game := domain.Game{
		ID:        uuid.NewString(),
		Name:      "Test Game",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, st.Games().CreateGame(context.Background(), game))
	return game.ID
}
