package main

import (
	"context"
	"flag"
	"io"

	"github.com/latchvault/vaultengine/internal/config"
	vcrypto "github.com/latchvault/vaultengine/internal/crypto"
	"github.com/latchvault/vaultengine/internal/genpass"
	"github.com/latchvault/vaultengine/internal/health"
	"github.com/latchvault/vaultengine/internal/strength"
)

func loadOAuthConfig() (config.Config, error) {
	return config.Load(true)
}

func runReencryptVault(args []string) error {
	fs := flag.NewFlagSet("reencrypt_vault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	newKeyHex := fs.String("new-key-hex", "", "new 32-byte key, hex-encoded")
	newKDF := fs.String("new-kdf", "", "new kdf tag")
	newSalt := fs.String("new-salt", "", "new salt field")
	password, idToken, keyHex := addCredentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *newKeyHex == "" || *newKDF == "" {
		return userError{"--new-key-hex and --new-kdf are required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := unlockEngine(dir, *password, *idToken, *keyHex)
	if err != nil {
		return err
	}

	newKey, err := decodeKeyHex(*newKeyHex)
	if err != nil {
		return err
	}
	defer zeroBytes(newKey)

	if err := e.Reencrypt(newKey, *newKDF, *newSalt); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runReencryptVaultToOAuth(args []string) error {
	fs := flag.NewFlagSet("reencrypt_vault_to_oauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	newIDToken := fs.String("new-id-token", "", "OAuth identity token for the new credential")
	password, idToken, keyHex := addCredentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *newIDToken == "" {
		return userError{"--new-id-token is required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := unlockEngine(dir, *password, *idToken, *keyHex)
	if err != nil {
		return err
	}

	cfg, err := loadOAuthConfig()
	if err != nil {
		return err
	}
	userID, err := subjectFromToken(cfg, *newIDToken)
	if err != nil {
		return err
	}

	newKey, err := vcrypto.DeriveOAuthArgon2idKey(cfg.OAuthAppSecret, userID)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(newKey)

	if err := e.Reencrypt(newKey, vcrypto.KDFOAuthArgon2id, userID); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runMigrateToOAuth(args []string) error {
	fs := flag.NewFlagSet("migrate_to_oauth", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	password := fs.String("password", "", "current master password")
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
	e, err := newEngine(dir)
	if err != nil {
		return err
	}

	pw := *password
	if pw == "" {
		b, err := promptPassword("Enter current master password: ")
		if err != nil {
			return err
		}
		defer zeroBytes(b)
		pw = string(b)
	}

	cfg, err := loadOAuthConfig()
	if err != nil {
		return err
	}
	userID, err := subjectFromToken(cfg, *idToken)
	if err != nil {
		return err
	}

	if err := e.MigratePasswordToOAuth(pw, userID); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runGeneratePassword(args []string) error {
	fs := flag.NewFlagSet("generate_password", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	length := fs.Int("length", 16, "password length")
	lower := fs.Bool("lowercase", true, "include lowercase letters")
	upper := fs.Bool("uppercase", true, "include uppercase letters")
	numbers := fs.Bool("numbers", true, "include digits")
	symbols := fs.Bool("symbols", false, "include symbols")
	excludeAmbiguous := fs.Bool("exclude-ambiguous", false, "exclude ambiguous characters")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}

	pw, err := genpass.Generate(genpass.Options{
		Length:           *length,
		Lowercase:        *lower,
		Uppercase:        *upper,
		Numbers:          *numbers,
		Symbols:          *symbols,
		ExcludeAmbiguous: *excludeAmbiguous,
	})
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"password": pw})
}

func runAnalyzeStrength(args []string) error {
	fs := flag.NewFlagSet("analyze_password_strength", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	pwFlag := fs.String("password", "", "password to analyze")
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *pwFlag == "" {
		return userError{"--password is required"}
	}

	return printJSON(strength.Analyze(*pwFlag))
}

func runCheckHealth(args []string) error {
	fs := flag.NewFlagSet("check_vault_health", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	useHIBP := fs.Bool("check-breaches", false, "query the HIBP range API for breach counts")
	password, idToken, keyHex := addCredentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := unlockEngine(dir, *password, *idToken, *keyHex)
	if err != nil {
		return err
	}

	entries, err := e.AllEntries()
	if err != nil {
		return err
	}

	inputs := make([]health.EntryInput, len(entries))
	for i, entry := range entries {
		inputs[i] = health.EntryInput{ID: entry.ID, Title: entry.Title, Password: entry.Password}
	}

	var lookup health.BreachLookup = health.NoLookup{}
	if *useHIBP {
		lookup = health.NewHIBPLookup()
	}

	report := health.Audit(context.Background(), inputs, lookup)
	return printJSON(report)
}
