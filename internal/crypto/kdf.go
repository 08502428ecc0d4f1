package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"

	"github.com/latchvault/vaultengine/internal/vaulterr"
)

// KDF tags, matching the on-disk `kdf` field.
const (
	KDFPasswordPBKDF2   = "password-pbkdf2"
	KDFOAuthPBKDF2      = "oauth-pbkdf2"
	KDFOAuthArgon2id    = "oauth-argon2id"
	KDFBiometricKeychain = "biometric-keychain"
)

const (
	pbkdf2Iterations = 100_000
	argon2MemoryKiB  = 65536
	argon2Time       = 3
	argon2Parallel   = 4

	// PasswordSaltLen is the random salt length minted for password-pbkdf2 vaults.
	PasswordSaltLen = 32

	oauthSaltPrefix = "latch-vault-oauth-"
)

// OAuthSalt reproduces the salt string used by both OAuth KDF variants,
// grounded on original_source/oauth.rs's derive_key_from_oauth.
func OAuthSalt(userID string) []byte {
	return []byte(oauthSaltPrefix + userID)
}

// NewRandomSalt returns n cryptographically random bytes.
func NewRandomSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, vaulterr.Wrap(vaulterr.IoFailure, "generate salt", err)
	}
	return salt, nil
}

// DerivePasswordKey derives a 32-byte key from a master password using
// PBKDF2-HMAC-SHA-256 at 100,000 iterations (password-pbkdf2).
func DerivePasswordKey(password string, salt []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, vaulterr.New(vaulterr.InvalidInput, "password is required")
	}
	if len(salt) == 0 {
		return nil, vaulterr.New(vaulterr.InvalidInput, "salt is required")
	}
	return pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, KeySize, sha256.New), nil
}

// DeriveOAuthPBKDF2Key derives a 32-byte key for the legacy oauth-pbkdf2
// variant: PBKDF2-HMAC-SHA-256(appSecret, "latch-vault-oauth-"+userID).
// Accepted for unlock only; never used to create new vaults.
func DeriveOAuthPBKDF2Key(appSecret []byte, userID string) ([]byte, error) {
	if len(appSecret) < 32 {
		return nil, vaulterr.New(vaulterr.ConfigError, "app secret must be at least 32 bytes")
	}
	if userID == "" {
		return nil, vaulterr.New(vaulterr.InvalidInput, "user id is required")
	}
	salt := OAuthSalt(userID)
	return pbkdf2.Key(appSecret, salt, pbkdf2Iterations, KeySize, sha256.New), nil
}

// DeriveOAuthArgon2idKey derives a 32-byte key for the current
// oauth-argon2id variant, grounded on the teacher's krypto/kdf.go
// Argon2id call shape (argon2.IDKey), with memory/time/parallelism
// taken at m=65536 KiB, t=3, p=4.
func DeriveOAuthArgon2idKey(appSecret []byte, userID string) ([]byte, error) {
	if len(appSecret) < 32 {
		return nil, vaulterr.New(vaulterr.ConfigError, "app secret must be at least 32 bytes")
	}
	if userID == "" {
		return nil, vaulterr.New(vaulterr.InvalidInput, "user id is required")
	}
	salt := OAuthSalt(userID)
	key := argon2.IDKey(appSecret, salt, argon2Time, argon2MemoryKiB, argon2Parallel, KeySize)
	return key, nil
}

// ValidateExternalKey checks a key obtained externally (biometric
// keychain path): the identity "derivation" — the key is consumed
// directly, only its length is validated here.
func ValidateExternalKey(key []byte) ([]byte, error) {
	if len(key) != KeySize {
		return nil, vaulterr.New(vaulterr.InvalidInput, "key must be 32 bytes")
	}
	out := make([]byte, KeySize)
	copy(out, key)
	return out, nil
}

// Zero overwrites a byte slice in place, matching the teacher's
// wipe/zeroize helpers (internal/service/service.go, internal/vault/entry_crypto.go).
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
