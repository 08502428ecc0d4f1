// Package vaultfile implements the on-disk container format: a single
// JSON file holding the KDF header and the AEAD-encrypted entry blob,
// written atomically. Adapted from the teacher's store/vaultfs.go
// (temp-file-then-rename, restrictive permissions) generalized from a
// header-only file to the full vault.enc container this package defines.
package vaultfile

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"github.com/latchvault/vaultengine/internal/crypto"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

const filename = "vault.enc"

// File is the JSON container persisted at vault.enc.
type File struct {
	Version string              `json:"version"`
	KDF     string              `json:"kdf"`
	Salt    string              `json:"salt"`
	Data    crypto.EncryptedData `json:"data"`
}

const (
	VersionLegacy  = "1"
	VersionCurrent = "2"
)

// Path resolves the vault directory to the vault.enc path.
func Path(dir string) string {
	return filepath.Join(dir, filename)
}

// DefaultDir resolves the OS-appropriate configuration directory from
// <config>/Latch on Windows and macOS, <config>/latch on
// Linux. Grounded on original_source/vault.rs's get_vault_path, which
// used the Rust `dirs` crate keyed off cfg!(target_os); os.UserConfigDir
// is the direct stdlib analogue for that single directory join.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", vaulterr.Wrap(vaulterr.IoFailure, "resolve config directory", err)
	}
	switch runtime.GOOS {
	case "windows", "darwin":
		return filepath.Join(base, "Latch"), nil
	default:
		return filepath.Join(base, "latch"), nil
	}
}

// Exists reports whether vault.enc is present in dir.
func Exists(dir string) bool {
	_, err := os.Stat(Path(dir))
	return err == nil
}

// Load reads and parses vault.enc. Returns a CorruptVault error if the
// file exists but is not valid JSON or is missing required fields;
// returns the raw os.ErrNotExist-wrapping error (via errors.Is) if the
// vault has never been created.
func Load(dir string) (File, error) {
	var f File

	raw, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, err
		}
		return f, vaulterr.Wrap(vaulterr.IoFailure, "read vault file", err)
	}

	if err := json.Unmarshal(raw, &f); err != nil {
		return f, vaulterr.Wrap(vaulterr.CorruptVault, "parse vault file", err)
	}
	if f.Version == "" || f.KDF == "" {
		return f, vaulterr.New(vaulterr.CorruptVault, "vault file missing required fields")
	}
	return f, nil
}

// Save atomically writes f to vault.enc: serialize, write to a temp
// file in the same directory, chmod 0600, then rename over the target.
// Grounded on store/vaultfs.go's SaveVaultHeader.
func Save(dir string, f File) error {
	if dir == "" {
		return vaulterr.New(vaulterr.InvalidInput, "vault directory not specified")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return vaulterr.Wrap(vaulterr.IoFailure, "create vault directory", err)
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return vaulterr.Wrap(vaulterr.IoFailure, "encode vault file", err)
	}

	tmp, err := os.CreateTemp(dir, "vault-*.tmp")
	if err != nil {
		return vaulterr.Wrap(vaulterr.IoFailure, "create temp vault file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return vaulterr.Wrap(vaulterr.IoFailure, "write temp vault file", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return vaulterr.Wrap(vaulterr.IoFailure, "chmod temp vault file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return vaulterr.Wrap(vaulterr.IoFailure, "close temp vault file", err)
	}

	if err := os.Rename(tmpPath, Path(dir)); err != nil {
		os.Remove(tmpPath)
		return vaulterr.Wrap(vaulterr.IoFailure, "replace vault file", err)
	}
	return nil
}
