// Package crypto holds the vault's AEAD primitives and key-derivation
// variants. Adapted from the teacher's krypto package (aead.go, kdf.go),
// generalized to the four KDF tags and the hex-encoded wire format this
// this package requires.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/latchvault/vaultengine/internal/vaulterr"
)

// NonceSize is the AEAD nonce length in bytes (AES-256-GCM, 96-bit nonce).
const NonceSize = 12

// KeySize is the required AEAD/KDF output key length in bytes.
const KeySize = 32

// EncryptedData is the on-disk representation of a ciphertext blob:
// hex-encoded nonce and hex-encoded ciphertext-with-tag.
type EncryptedData struct {
	NonceHex      string `json:"nonce"`
	CiphertextHex string `json:"ciphertext"`
}

// Encrypt seals plaintext under key using AES-256-GCM with a freshly
// generated nonce, returning the hex-encoded result.
func Encrypt(key, plaintext []byte) (EncryptedData, error) {
	if len(key) != KeySize {
		return EncryptedData{}, vaulterr.New(vaulterr.InvalidInput, "aes-gcm requires a 32-byte key")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return EncryptedData{}, vaulterr.Wrap(vaulterr.IoFailure, "create cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return EncryptedData{}, vaulterr.Wrap(vaulterr.IoFailure, "create gcm", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return EncryptedData{}, vaulterr.Wrap(vaulterr.IoFailure, "generate nonce", err)
	}

	ciphertext := gcm.Seal(nil, nonce, plaintext, nil)
	return EncryptedData{
		NonceHex:      hex.EncodeToString(nonce),
		CiphertextHex: hex.EncodeToString(ciphertext),
	}, nil
}

// Decrypt opens an EncryptedData blob under key. Every failure mode —
// malformed hex, wrong nonce length, wrong key, tampered ciphertext —
// returns the same DecryptionFailure kind so callers cannot distinguish
// them: callers get no oracle on "why" decryption failed.
func Decrypt(key []byte, data EncryptedData) ([]byte, error) {
	fail := func(err error) ([]byte, error) {
		return nil, vaulterr.Wrap(vaulterr.DecryptionFailure, "decryption failed", err)
	}

	if len(key) != KeySize {
		return fail(nil)
	}

	nonce, err := hex.DecodeString(data.NonceHex)
	if err != nil {
		return fail(err)
	}
	ciphertext, err := hex.DecodeString(data.CiphertextHex)
	if err != nil {
		return fail(err)
	}
	if len(nonce) != NonceSize {
		return fail(nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return fail(err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fail(err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fail(err)
	}
	return plaintext, nil
}
