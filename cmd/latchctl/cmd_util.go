package main

import (
	"encoding/hex"

	"github.com/latchvault/vaultengine/internal/config"
	"github.com/latchvault/vaultengine/internal/engine"
	"github.com/latchvault/vaultengine/internal/oauthtoken"
)

func decodeKeyHex(keyHex string) ([]byte, error) {
	if len(keyHex) != 64 {
		return nil, userError{"--key-hex must be 64 hex characters (32 bytes)"}
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, userError{"--key-hex is not valid hex"}
	}
	return key, nil
}

// unlockEngine binds an Engine to dir and unlocks it with whichever of
// password/idToken/keyHex was supplied, prompting for a password on
// stderr if none of the three flags were given. This is the harness's
// stand-in for a long-lived, already-unlocked session: every
// session-scoped subcommand unlocks once at the start of its own
// process invocation.
func unlockEngine(dir, password, idToken, keyHex string) (*engine.Engine, error) {
	e, err := newEngine(dir)
	if err != nil {
		return nil, err
	}

	switch {
	case keyHex != "":
		key, err := decodeKeyHex(keyHex)
		if err != nil {
			return nil, err
		}
		defer zeroBytes(key)
		if err := e.UnlockWithKey(key); err != nil {
			return nil, err
		}
	case idToken != "":
		cfg, err := config.Load(true)
		if err != nil {
			return nil, err
		}
		adapter := oauthtoken.New(oauthtoken.Validation{ClientID: cfg.OAuthClientID})
		sub, err := adapter.Subject(idToken)
		if err != nil {
			return nil, err
		}
		if err := e.UnlockWithOAuth(sub); err != nil {
			return nil, err
		}
	default:
		pw := password
		if pw == "" {
			b, err := promptPassword("Enter master password: ")
			if err != nil {
				return nil, err
			}
			defer zeroBytes(b)
			pw = string(b)
		}
		if err := e.UnlockWithPassword(pw); err != nil {
			return nil, err
		}
	}
	return e, nil
}
