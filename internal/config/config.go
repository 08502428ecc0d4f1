// Package config loads the process-wide configuration Latch needs at
// startup: the OAuth app secret and client id, and the vault directory.
// Built once and passed by reference, mirroring the teacher's
// store.Paths value type rather than a runtime-mutable global.
package config

import (
	"os"

	"github.com/latchvault/vaultengine/internal/vaultfile"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

const minOAuthSecretLen = 32

// Config holds everything KeyDerivation and TokenAdapter need.
type Config struct {
	OAuthAppSecret []byte
	OAuthClientID  string
	VaultDir       string
}

// Load reads LATCH_OAUTH_SECRET/LATCH_OAUTH_CLIENT_ID from the
// environment and resolves the default vault directory. requireOAuth
// controls whether a missing/short app secret is a fail-fast
// ConfigError (production) or silently left empty (tests, CLI
// subcommands that never touch OAuth).
func Load(requireOAuth bool) (Config, error) {
	var cfg Config

	secret := os.Getenv("LATCH_OAUTH_SECRET")
	if secret == "" || len(secret) < minOAuthSecretLen {
		if requireOAuth {
			return cfg, vaulterr.New(vaulterr.ConfigError, "LATCH_OAUTH_SECRET must be set to at least 32 bytes")
		}
	} else {
		cfg.OAuthAppSecret = []byte(secret)
	}

	cfg.OAuthClientID = os.Getenv("LATCH_OAUTH_CLIENT_ID")
	if requireOAuth && cfg.OAuthClientID == "" {
		return cfg, vaulterr.New(vaulterr.ConfigError, "LATCH_OAUTH_CLIENT_ID must be set")
	}

	dir, err := vaultfile.DefaultDir()
	if err != nil {
		return cfg, err
	}
	cfg.VaultDir = dir

	return cfg, nil
}
