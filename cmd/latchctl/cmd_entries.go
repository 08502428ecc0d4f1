package main

import (
	"flag"
	"io"

	"github.com/latchvault/vaultengine/internal/engine"
)

func runVaultStatus(args []string) error {
	fs := flag.NewFlagSet("vault_status", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
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

	return printJSON(map[string]bool{
		"has_vault":   e.HasVault(),
		"is_unlocked": e.IsUnlocked(),
	})
}

func runGetAuthMethod(args []string) error {
	fs := flag.NewFlagSet("get_vault_auth_method", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
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

	method, err := e.GetAuthMethod()
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"auth_method": method})
}

func addCredentialFlags(fs *flag.FlagSet) (password, idToken, keyHex *string) {
	password = fs.String("password", "", "master password")
	idToken = fs.String("id-token", "", "OAuth identity token")
	keyHex = fs.String("key-hex", "", "32-byte key, hex-encoded")
	return
}

func runSearchEntries(args []string) error {
	fs := flag.NewFlagSet("search_entries", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	query := fs.String("query", "", "search query")
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

	results, err := e.SearchEntries(*query)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func runRequestSecret(args []string) error {
	fs := flag.NewFlagSet("request_secret", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	id := fs.String("entry-id", "", "entry id")
	field := fs.String("field", "", "title|username|password")
	password, idToken, keyHex := addCredentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *id == "" || *field == "" {
		return userError{"--entry-id and --field are required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := unlockEngine(dir, *password, *idToken, *keyHex)
	if err != nil {
		return err
	}

	value, err := e.GetEntry(*id, *field)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"value": value})
}

func runGetFullEntry(args []string) error {
	fs := flag.NewFlagSet("get_full_entry", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	id := fs.String("entry-id", "", "entry id")
	password, idToken, keyHex := addCredentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *id == "" {
		return userError{"--entry-id is required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := unlockEngine(dir, *password, *idToken, *keyHex)
	if err != nil {
		return err
	}

	entry, err := e.GetFullEntry(*id)
	if err != nil {
		return err
	}
	return printJSON(entry)
}

func runAddEntry(args []string) error {
	fs := flag.NewFlagSet("add_entry", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	title := fs.String("title", "", "entry title")
	username := fs.String("username", "", "entry username")
	entryPassword := fs.String("entry-password", "", "entry password")
	url := fs.String("url", "", "entry url")
	iconURL := fs.String("icon-url", "", "entry icon url")
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

	entry := engine.Entry{
		ID:       engine.NewEntryID(),
		Title:    *title,
		Username: *username,
		Password: *entryPassword,
		URL:      *url,
		IconURL:  *iconURL,
	}
	if err := e.AddEntry(entry); err != nil {
		return err
	}
	return printJSON(map[string]string{"id": entry.ID})
}

func runUpdateEntry(args []string) error {
	fs := flag.NewFlagSet("update_entry", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	id := fs.String("entry-id", "", "entry id")
	title := fs.String("title", "", "entry title")
	username := fs.String("username", "", "entry username")
	entryPassword := fs.String("entry-password", "", "entry password")
	url := fs.String("url", "", "entry url")
	iconURL := fs.String("icon-url", "", "entry icon url")
	password, idToken, keyHex := addCredentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *id == "" {
		return userError{"--entry-id is required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := unlockEngine(dir, *password, *idToken, *keyHex)
	if err != nil {
		return err
	}

	entry := engine.Entry{
		ID:       *id,
		Title:    *title,
		Username: *username,
		Password: *entryPassword,
		URL:      *url,
		IconURL:  *iconURL,
	}
	if err := e.UpdateEntry(entry); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runDeleteEntry(args []string) error {
	fs := flag.NewFlagSet("delete_entry", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	id := fs.String("entry-id", "", "entry id")
	password, idToken, keyHex := addCredentialFlags(fs)
	if err := fs.Parse(args); err != nil {
		return userError{"invalid arguments"}
	}
	if *id == "" {
		return userError{"--entry-id is required"}
	}

	dir, err := resolveDir(*dirFlag)
	if err != nil {
		return err
	}
	e, err := unlockEngine(dir, *password, *idToken, *keyHex)
	if err != nil {
		return err
	}

	if err := e.DeleteEntry(*id); err != nil {
		return err
	}
	return printJSON(statusOK())
}

func runAuthPreferences(args []string) error {
	fs := flag.NewFlagSet("get_auth_preferences", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dirFlag := fs.String("dir", "", "vault directory")
	password, idToken, keyHex := addCredentialFlags(fs)
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
	method, err := e.GetAuthMethod()
	if err != nil {
		return err
	}

	if *password != "" || *idToken != "" || *keyHex != "" {
		if locked, err := unlockEngine(dir, *password, *idToken, *keyHex); err == nil {
			e = locked
		}
	}

	remaining, valid := e.SessionRemaining()
	return printJSON(map[string]interface{}{
		"auth_method":              method,
		"session_valid":            valid,
		"session_remaining_seconds": remaining,
	})
}
