package crypto_test

import (
	"bytes"
	"testing"

	vcrypto "github.com/latchvault/vaultengine/internal/crypto"
)

func TestDerivePasswordKeyIsDeterministic(t *testing.T) {
	salt, err := vcrypto.NewRandomSalt(vcrypto.PasswordSaltLen)
	if err != nil {
		t.Fatalf("NewRandomSalt returned error: %v", err)
	}

	k1, err := vcrypto.DerivePasswordKey("Hunter2!Hunter2!", salt)
	if err != nil {
		t.Fatalf("DerivePasswordKey returned error: %v", err)
	}
	k2, err := vcrypto.DerivePasswordKey("Hunter2!Hunter2!", salt)
	if err != nil {
		t.Fatalf("DerivePasswordKey returned error: %v", err)
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected deterministic derivation for the same password/salt")
	}
	if len(k1) != vcrypto.KeySize {
		t.Fatalf("expected %d-byte key, got %d", vcrypto.KeySize, len(k1))
	}
}

func TestDeriveOAuthArgon2idAndPBKDF2DifferForSameInputs(t *testing.T) {
	secret := bytes.Repeat([]byte{0x44}, 32)

	argonKey, err := vcrypto.DeriveOAuthArgon2idKey(secret, "user-42")
	if err != nil {
		t.Fatalf("DeriveOAuthArgon2idKey returned error: %v", err)
	}
	pbkdfKey, err := vcrypto.DeriveOAuthPBKDF2Key(secret, "user-42")
	if err != nil {
		t.Fatalf("DeriveOAuthPBKDF2Key returned error: %v", err)
	}
	if bytes.Equal(argonKey, pbkdfKey) {
		t.Fatalf("expected different keys from different KDF algorithms")
	}
}

func TestDeriveOAuthKeyRejectsShortSecret(t *testing.T) {
	shortSecret := bytes.Repeat([]byte{0x01}, 16)
	if _, err := vcrypto.DeriveOAuthArgon2idKey(shortSecret, "user-42"); err == nil {
		t.Fatalf("expected error for short app secret")
	}
}

func TestValidateExternalKeyRejectsWrongLength(t *testing.T) {
	if _, err := vcrypto.ValidateExternalKey(bytes.Repeat([]byte{0x01}, 16)); err == nil {
		t.Fatalf("expected error for 16-byte key")
	}
	key, err := vcrypto.ValidateExternalKey(bytes.Repeat([]byte{0x01}, 32))
	if err != nil {
		t.Fatalf("ValidateExternalKey returned error: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("expected 32-byte key, got %d", len(key))
	}
}

func TestZeroOverwritesBuffer(t *testing.T) {
	b := bytes.Repeat([]byte{0xAB}, 32)
	vcrypto.Zero(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %x", i, v)
		}
	}
}
