// Package engine implements the VaultEngine: lifecycle (init/unlock/
// lock/re-key/migrate), entry CRUD, and search, over a single encrypted
// vault file. Modeled as a single owner behind a mutual-exclusion
// wrapper, mirroring the teacher's *Service receiver
// pattern in internal/service/service.go, generalized from the
// teacher's header+SQLite split to the one-file container this package
// uses (see DESIGN.md for why the SQLite layer was dropped).
package engine

import (
	"encoding/hex"
	"errors"
	"os"
	"sort"
	"sync"

	vcrypto "github.com/latchvault/vaultengine/internal/crypto"
	"github.com/latchvault/vaultengine/internal/guard"
	"github.com/latchvault/vaultengine/internal/session"
	"github.com/latchvault/vaultengine/internal/vaultfile"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

// Engine is the vault's runtime: one vault directory, one session, one
// in-memory entry set. Safe for concurrent use; all public operations
// serialize through mu.
type Engine struct {
	mu        sync.Mutex
	dir       string
	appSecret []byte
	sess      session.State
	entries   []Entry
	guard     guard.Guard
}

// New binds an Engine to a vault directory without touching disk.
// appSecret is the process-wide OAuth app secret (spec.md §9: "an
// immutable configuration value passed by reference into KeyDerivation
// ... rather than a runtime-mutable global"); pass nil for engines that
// never touch an oauth-* KDF variant.
func New(dir string, appSecret []byte) *Engine {
	return &Engine{dir: dir, appSecret: append([]byte(nil), appSecret...)}
}

// Dir returns the bound vault directory.
func (e *Engine) Dir() string { return e.dir }

// IsUnlocked reports whether the engine currently holds a session key.
func (e *Engine) IsUnlocked() bool {
	return e.sess.IsUnlocked()
}

// SessionRemaining returns the whole seconds left in the current
// session, and whether the session is currently valid.
func (e *Engine) SessionRemaining() (remainingSeconds int, valid bool) {
	r := e.sess.Remaining()
	return int(r.Seconds()), r > 0
}

// HasVault reports whether a vault file exists on disk.
func (e *Engine) HasVault() bool {
	return vaultfile.Exists(e.dir)
}

// GetAuthMethod reads the on-disk kdf tag without decrypting anything,
// so it is safe to call while locked.
func (e *Engine) GetAuthMethod() (string, error) {
	f, err := vaultfile.Load(e.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "none", nil
		}
		return "", err
	}
	return f.KDF, nil
}

// --- initialization -------------------------------------------------

func (e *Engine) initVault(key []byte, kdf, salt string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if vaultfile.Exists(e.dir) {
		return vaulterr.New(vaulterr.AlreadyExists, "vault already exists")
	}

	raw, err := marshalEntries(nil)
	if err != nil {
		return err
	}
	enc, err := vcrypto.Encrypt(key, raw)
	if err != nil {
		return err
	}

	f := vaultfile.File{Version: vaultfile.VersionCurrent, KDF: kdf, Salt: salt, Data: enc}
	if err := vaultfile.Save(e.dir, f); err != nil {
		return err
	}

	e.entries = nil
	e.sess.Unlock(key)
	return nil
}

// InitWithPassword creates a new vault encrypted under a password-
// derived key (password-pbkdf2).
func (e *Engine) InitWithPassword(password string) error {
	salt, err := vcrypto.NewRandomSalt(vcrypto.PasswordSaltLen)
	if err != nil {
		return err
	}
	key, err := vcrypto.DerivePasswordKey(password, salt)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(key)
	return e.initVault(key, vcrypto.KDFPasswordPBKDF2, hex.EncodeToString(salt))
}

// InitWithOAuth creates a new vault encrypted under an oauth-argon2id
// key; new vaults never use the legacy oauth-pbkdf2 tag.
func (e *Engine) InitWithOAuth(userID string) error {
	key, err := vcrypto.DeriveOAuthArgon2idKey(e.appSecretOrFail(), userID)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(key)
	return e.initVault(key, vcrypto.KDFOAuthArgon2id, userID)
}

// InitWithKey creates a new vault from an externally supplied 32-byte
// key (biometric-keychain), or any other caller-supplied kdf tag/salt
// pairing (used by callers that already derived a key themselves).
func (e *Engine) InitWithKey(key []byte, kdf, salt string) error {
	k, err := vcrypto.ValidateExternalKey(key)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(k)
	return e.initVault(k, kdf, salt)
}

// --- unlock -----------------------------------------------------------

func (e *Engine) unlockCommon(f vaultfile.File, key []byte) error {
	plaintext, err := vcrypto.Decrypt(key, f.Data)
	if err != nil {
		e.guard.RecordFailure()
		return err
	}
	entries, err := unmarshalEntries(plaintext)
	if err != nil {
		e.guard.RecordFailure()
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.entries = entries
	e.sess.Unlock(key)
	e.guard.RecordSuccess()
	return nil
}

// UnlockWithPassword derives a password-pbkdf2 key and attempts to
// decrypt the vault. The on-disk kdf must be password-pbkdf2.
func (e *Engine) UnlockWithPassword(password string) error {
	if err := e.guard.Check(); err != nil {
		return err
	}

	f, err := e.loadFile()
	if err != nil {
		return err
	}
	if f.KDF != vcrypto.KDFPasswordPBKDF2 {
		e.guard.RecordFailure()
		return vaulterr.New(vaulterr.DecryptionFailure, "decryption failed")
	}
	salt, err := hex.DecodeString(f.Salt)
	if err != nil {
		e.guard.RecordFailure()
		return vaulterr.New(vaulterr.DecryptionFailure, "decryption failed")
	}
	key, err := vcrypto.DerivePasswordKey(password, salt)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(key)
	return e.unlockCommon(f, key)
}

// UnlockWithOAuth accepts the current oauth-argon2id tag and the legacy
// oauth-pbkdf2 tag. It deliberately does NOT compare
// f.Salt against userID before attempting decryption — an earlier
// design did that eagerly and leaked account existence through a
// distinguishable error; here only AEAD failure can reject a wrong
// account, so a wrong userID and a wrong key are indistinguishable.
func (e *Engine) UnlockWithOAuth(userID string) error {
	if err := e.guard.Check(); err != nil {
		return err
	}

	f, err := e.loadFile()
	if err != nil {
		return err
	}

	var key []byte
	switch f.KDF {
	case vcrypto.KDFOAuthArgon2id:
		key, err = vcrypto.DeriveOAuthArgon2idKey(e.appSecretOrFail(), userID)
	case vcrypto.KDFOAuthPBKDF2:
		key, err = vcrypto.DeriveOAuthPBKDF2Key(e.appSecretOrFail(), userID)
	default:
		e.guard.RecordFailure()
		return vaulterr.New(vaulterr.DecryptionFailure, "decryption failed")
	}
	if err != nil {
		return err
	}
	defer vcrypto.Zero(key)
	return e.unlockCommon(f, key)
}

// UnlockWithKey accepts a 32-byte key obtained externally (biometric
// path). The on-disk kdf must be biometric-keychain.
func (e *Engine) UnlockWithKey(key []byte) error {
	if err := e.guard.Check(); err != nil {
		return err
	}

	f, err := e.loadFile()
	if err != nil {
		return err
	}
	if f.KDF != vcrypto.KDFBiometricKeychain {
		e.guard.RecordFailure()
		return vaulterr.New(vaulterr.DecryptionFailure, "decryption failed")
	}
	k, err := vcrypto.ValidateExternalKey(key)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(k)
	return e.unlockCommon(f, k)
}

func (e *Engine) loadFile() (vaultfile.File, error) {
	f, err := vaultfile.Load(e.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return f, vaulterr.New(vaulterr.NotFound, "vault does not exist")
		}
		return f, err
	}
	return f, nil
}

// Lock unconditionally zeroes the session key and clears entries.
func (e *Engine) Lock() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sess.Lock()
	e.entries = nil
}

// --- persistence ------------------------------------------------------

// persist re-encrypts the full entry list under the current session key
// and atomically rewrites the vault file. Every mutating operation ends
// with this call: the file on disk is the only state that persists.
func (e *Engine) persist() error {
	key := e.sess.Key()
	if key == nil {
		return vaulterr.New(vaulterr.Locked, "vault is locked")
	}
	defer vcrypto.Zero(key)

	f, err := vaultfile.Load(e.dir)
	if err != nil {
		return err
	}

	raw, err := marshalEntries(e.entries)
	if err != nil {
		return err
	}
	enc, err := vcrypto.Encrypt(key, raw)
	if err != nil {
		return err
	}
	f.Data = enc

	return vaultfile.Save(e.dir, f)
}

// --- CRUD ---------------------------------------------------------------

// AddEntry validates and appends entry (with its caller-assigned id),
// then persists.
func (e *Engine) AddEntry(entry Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	e.entries = append(e.entries, entry)
	if err := e.persist(); err != nil {
		return err
	}
	return nil
}

// UpdateEntry replaces the entry matching entry.ID in place, preserving
// position, then persists.
func (e *Engine) UpdateEntry(entry Entry) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return err
	}
	if err := validateEntry(entry); err != nil {
		return err
	}

	idx := e.indexOf(entry.ID)
	if idx < 0 {
		return vaulterr.New(vaulterr.NotFound, "entry not found")
	}
	e.entries[idx] = entry
	return e.persist()
}

// DeleteEntry removes the entry matching id, then persists.
func (e *Engine) DeleteEntry(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return err
	}

	idx := e.indexOf(id)
	if idx < 0 {
		return vaulterr.New(vaulterr.NotFound, "entry not found")
	}
	e.entries = append(e.entries[:idx], e.entries[idx+1:]...)
	return e.persist()
}

// GetEntry returns a single field value ({title, username, password}).
func (e *Engine) GetEntry(id, field string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return "", err
	}

	idx := e.indexOf(id)
	if idx < 0 {
		return "", vaulterr.New(vaulterr.NotFound, "entry not found")
	}
	entry := e.entries[idx]
	switch field {
	case "title":
		return entry.Title, nil
	case "username":
		return entry.Username, nil
	case "password":
		return entry.Password, nil
	default:
		return "", vaulterr.New(vaulterr.NotFound, "unknown field")
	}
}

// GetFullEntry returns the complete Entry matching id.
func (e *Engine) GetFullEntry(id string) (Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return Entry{}, err
	}
	idx := e.indexOf(id)
	if idx < 0 {
		return Entry{}, vaulterr.New(vaulterr.NotFound, "entry not found")
	}
	return e.entries[idx], nil
}

// AllEntries returns a copy of the current decrypted entry set, for
// collaborators (HealthAuditor) that operate purely in memory.
func (e *Engine) AllEntries() ([]Entry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return nil, err
	}
	out := make([]Entry, len(e.entries))
	copy(out, e.entries)
	return out, nil
}

func (e *Engine) indexOf(id string) int {
	for i, entry := range e.entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}

// --- search -------------------------------------------------------------

// SearchEntries fuzzy-matches entries by title/username: empty query
// returns every entry in insertion order at score 0; a non-empty query
// fuzzy-matches title/username, keeps entries scoring >= 50, and sorts
// by descending score with insertion-order ties.
func (e *Engine) SearchEntries(query string) ([]EntryPreview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return nil, err
	}

	if query == "" {
		out := make([]EntryPreview, len(e.entries))
		for i, entry := range e.entries {
			out[i] = entry.Preview(0)
		}
		return out, nil
	}

	type scored struct {
		preview EntryPreview
		order   int
	}
	var matches []scored
	for i, entry := range e.entries {
		score, ok := bestFieldScore(entry.Title, entry.Username, query)
		if !ok || score < 50 {
			continue
		}
		matches = append(matches, scored{preview: entry.Preview(score), order: i})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].preview.Score != matches[j].preview.Score {
			return matches[i].preview.Score > matches[j].preview.Score
		}
		return matches[i].order < matches[j].order
	})

	out := make([]EntryPreview, len(matches))
	for i, m := range matches {
		out[i] = m.preview
	}
	return out, nil
}

// --- re-key / migration ---------------------------------------------------

// Reencrypt re-serializes the current entries under newKey/newKDF/newSalt
// and atomically rewrites the file; it rotates the in-memory session key
// and keeps the session valid. This is the only path that changes kdf
// post-creation, other than migration.
func (e *Engine) Reencrypt(newKey []byte, newKDF, newSalt string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sess.CheckAndRefresh(); err != nil {
		return err
	}
	k, err := vcrypto.ValidateExternalKey(newKey)
	if err != nil {
		return err
	}

	raw, err := marshalEntries(e.entries)
	if err != nil {
		return err
	}
	enc, err := vcrypto.Encrypt(k, raw)
	if err != nil {
		return err
	}

	f := vaultfile.File{Version: vaultfile.VersionCurrent, KDF: newKDF, Salt: newSalt, Data: enc}
	if err := vaultfile.Save(e.dir, f); err != nil {
		return err
	}

	e.sess.Unlock(k)
	vcrypto.Zero(k)
	return nil
}

// MigratePasswordToOAuth decrypts with a password-derived key and
// re-encrypts under oauth-argon2id using userID as the salt field,
// leaving the vault unlocked under the new key.
func (e *Engine) MigratePasswordToOAuth(password, userID string) error {
	f, err := e.loadFile()
	if err != nil {
		return err
	}
	if f.KDF != vcrypto.KDFPasswordPBKDF2 {
		return vaulterr.New(vaulterr.InvalidInput, "vault is not password-protected")
	}
	salt, err := hex.DecodeString(f.Salt)
	if err != nil {
		return vaulterr.New(vaulterr.DecryptionFailure, "decryption failed")
	}
	oldKey, err := vcrypto.DerivePasswordKey(password, salt)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(oldKey)

	plaintext, err := vcrypto.Decrypt(oldKey, f.Data)
	if err != nil {
		return err
	}
	entries, err := unmarshalEntries(plaintext)
	if err != nil {
		return err
	}

	newKey, err := vcrypto.DeriveOAuthArgon2idKey(e.appSecretOrFail(), userID)
	if err != nil {
		return err
	}
	defer vcrypto.Zero(newKey)

	raw, err := marshalEntries(entries)
	if err != nil {
		return err
	}
	enc, err := vcrypto.Encrypt(newKey, raw)
	if err != nil {
		return err
	}

	newFile := vaultfile.File{Version: vaultfile.VersionCurrent, KDF: vcrypto.KDFOAuthArgon2id, Salt: userID, Data: enc}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := vaultfile.Save(e.dir, newFile); err != nil {
		return err
	}
	e.entries = entries
	e.sess.Unlock(newKey)
	return nil
}

// --- app secret -----------------------------------------------------------

func (e *Engine) appSecretOrFail() []byte {
	return e.appSecret
}
