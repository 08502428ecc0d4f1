// Command latchctl is a thin demonstration harness over
// internal/engine: one flag-based subcommand per vault operation,
// printing the same JSON payload shapes the real desktop shell's
// command surface would consume. Built in the teacher's cmd/pm style —
// flag.NewFlagSet(..., ContinueOnError), term.ReadPassword for secret
// prompts, a userError sentinel for user-facing messages — rather than
// a CLI framework, since the real interprocess bridge this engine would
// back is explicitly out of scope here.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"

	"github.com/latchvault/vaultengine/internal/config"
	"github.com/latchvault/vaultengine/internal/engine"
)

type userError struct{ msg string }

func (e userError) Error() string { return e.msg }

var commands = map[string]func([]string) error{
	"init_vault":               runInitVault,
	"init_vault_oauth":         runInitVaultOAuth,
	"init_vault_with_key":      runInitVaultWithKey,
	"unlock_vault":             runUnlockVault,
	"unlock_vault_oauth":       runUnlockVaultOAuth,
	"unlock_vault_with_key":    runUnlockVaultWithKey,
	"vault_status":             runVaultStatus,
	"get_vault_auth_method":    runGetAuthMethod,
	"search_entries":           runSearchEntries,
	"request_secret":           runRequestSecret,
	"get_full_entry":           runGetFullEntry,
	"add_entry":                runAddEntry,
	"update_entry":             runUpdateEntry,
	"delete_entry":             runDeleteEntry,
	"reencrypt_vault":          runReencryptVault,
	"reencrypt_vault_to_oauth": runReencryptVaultToOAuth,
	"migrate_to_oauth":         runMigrateToOAuth,
	"generate_password":        runGeneratePassword,
	"analyze_password_strength": runAnalyzeStrength,
	"check_vault_health":       runCheckHealth,
	"get_auth_preferences":     runAuthPreferences,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	run, ok := commands[os.Args[1]]
	if !ok {
		printUsage()
		os.Exit(1)
	}

	if err := run(os.Args[2:]); err != nil {
		handleError(err)
	}
}

func handleError(err error) {
	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(os.Stderr, uerr.Error())
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "unexpected error: %v\n", err)
	os.Exit(2)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: latchctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "Commands:")
	for name := range commands {
		fmt.Fprintf(os.Stderr, "  %s\n", name)
	}
}

// printJSON writes v to stdout as compact JSON, matching the "each
// returns a JSON string" command-surface contract.
func printJSON(v interface{}) error {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func statusOK() map[string]string { return map[string]string{"status": "success"} }

// resolveDir returns dirFlag if set, else the OS-appropriate default.
func resolveDir(dirFlag string) (string, error) {
	if dirFlag != "" {
		return dirFlag, nil
	}
	cfg, err := config.Load(false)
	if err != nil {
		return "", err
	}
	return cfg.VaultDir, nil
}

func promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// newEngine loads the OAuth app secret from the environment (best
// effort; commands that never touch OAuth tolerate its absence) and
// binds an Engine to dir, passing the secret in by reference rather
// than through a runtime-mutable global.
func newEngine(dir string) (*engine.Engine, error) {
	cfg, err := config.Load(false)
	if err != nil {
		return nil, err
	}
	return engine.New(dir, cfg.OAuthAppSecret), nil
}
