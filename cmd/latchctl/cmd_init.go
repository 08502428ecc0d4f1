package main

import (
	"flag"
	"io"

	"github.com/latchvault/vaultengine/internal/config"
	"github.com/latchvault/vaultengine/internal/oauthtoken"
)

func runInitVault(args []string) error {
	fs := flag.NewFlagSet("init_vault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	pwFlag := fs.String("password", "", "master password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := newEngine(dir)
	if err != nil {
		return err
	}

	password := *pwFlag
	if password == "" {
		pw, err := promptPassword("Enter master password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(pw)
		password = string(pw)
	}

	if err := e.InitWithPassword(password); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runInitVaultOAuth(args []string) error {
	fs := flag.NewFlagSet("init_vault_oauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	idToken := fs.String("id-token", "", "OAuth identity token")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *idToken == "" {
		return userError{"--id-token is required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(true)
	if err != nil {
		return err
	}

	userID, err := subjectFromToken(cfg, *idToken)
	if err != nil {
		return err
	}

	e, err := newEngine(dir)
	if err != nil {
		return err
	}
	if err := e.InitWithOAuth(userID); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runInitVaultWithKey(args []string) error {
	fs := flag.NewFlagSet("init_vault_with_key", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	keyHex := fs.String("key-hex", "", "32-byte key, hex-encoded (64 chars)")
	kdf := fs.String("kdf", "biometric-keychain", "kdf tag recorded for this key")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}

	key, err := decodeKeyHex(*keyHex)
	if err != nil {
		return err
	}
	defer zeroBytes(key)

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := newEngine(dir)
	if err != nil {
		return err
	}
	if err := e.InitWithKey(key, *kdf, ""); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runUnlockVault(args []string) error {
	fs := flag.NewFlagSet("unlock_vault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	pwFlag := fs.String("password", "", "master password (prompted if omitted)")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := newEngine(dir)
	if err != nil {
		return err
	}

	password := *pwFlag
	if password == "" {
		pw, err := promptPassword("Enter master password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(pw)
		password = string(pw)
	}

	if err := e.UnlockWithPassword(password); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runUnlockVaultOAuth(args []string) error {
	fs := flag.NewFlagSet("unlock_vault_oauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	idToken := fs.String("id-token", "", "OAuth identity token")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *idToken == "" {
		return userError{"--id-token is required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(true)
	if err != nil {
		return err
	}
	userID, err := subjectFromToken(cfg, *idToken)
	if err != nil {
		return err
	}

	e, err := newEngine(dir)
	if err != nil {
		return err
	}
	if err := e.UnlockWithOAuth(userID); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runUnlockVaultWithKey(args []string) error {
	fs := flag.NewFlagSet("unlock_vault_with_key", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	keyHex := fs.String("key-hex", "", "32-byte key, hex-encoded (64 chars)")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}

	key, err := decodeKeyHex(*keyHex)
	if err != nil {
		return err
	}
	defer zeroBytes(key)

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := newEngine(dir)
	if err != nil {
		return err
	}
	if err := e.UnlockWithKey(key); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func subjectFromToken(cfg config.Config, idToken string) (string, error) {
	adapter := oauthtoken.New(oauthtoken.Validation{ClientID: cfg.OAuthClientID})
	sub, err := adapter.Subject(idToken)
	if err != nil {
		return "", err
	}
	return sub, nil
}
