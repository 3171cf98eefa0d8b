package app

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/leadr-dev/leadr-auth/pkg/cryptox"
	"github.com/leadr-dev/leadr-auth/pkg/jwtx"
)

// InitAuthKeys loads the Ed25519 signing key from cfg.KeyFile, generating and
// persisting a fresh one on first boot. Persisting matters: refresh tokens
// live for a month and must survive restarts.
func InitAuthKeys(cfg Config, logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, *jwtx.EdDSAVerifier, error) {
	pemKey, err := os.ReadFile(cfg.KeyFile)
	if errors.Is(err, fs.ErrNotExist) {
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("generate signing key: %w", err)
		}
		if err := os.WriteFile(cfg.KeyFile, pemKey, 0o600); err != nil {
			return nil, nil, nil, fmt.Errorf("persist signing key: %w", err)
		}
		logger.Info("generated new signing key", "path", cfg.KeyFile)
	} else if err != nil {
		return nil, nil, nil, fmt.Errorf("read signing key: %w", err)
	}

	key, err := cryptox.ParseEd25519Key(pemKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse signing key: %w", err)
	}

	signer, err := jwtx.NewSignerEdDSA(keyID(pemKey), key)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build signer: %w", err)
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, nil, fmt.Errorf("register signer: %w", err)
	}

	verifier := jwtx.NewVerifierEdDSA(keys, cfg.Issuer)
	return signer, keys, verifier, nil
}

// keyID derives a stable kid from the key material so tokens stay verifiable
// across restarts without coordinating identifiers.
func keyID(pemKey []byte) string {
	sum := sha256.Sum256(pemKey)
	return base64.RawURLEncoding.EncodeToString(sum[:8])
}
