// Package genpass draws random passwords from configurable alphabets.
// Ported from original_source/password_generator.rs's generate_password,
// using crypto/rand the way the teacher's krypto/kdf.go NewRandomSalt
// draws randomness for salts.
package genpass

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/latchvault/vaultengine/internal/vaulterr"
)

const (
	MinLength = 8
	MaxLength = 128

	lowerAlphabet  = "abcdefghijklmnopqrstuvwxyz"
	upperAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitAlphabet  = "0123456789"
	symbolAlphabet = "!@#$%^&*()-_=+[]{}|\\:;\"'<>,.?/~`"

	ambiguousChars = "0O1lI"
)

// Options configures a single generation request.
type Options struct {
	Length           int
	Lowercase        bool
	Uppercase        bool
	Numbers          bool
	Symbols          bool
	ExcludeAmbiguous bool
}

// Generate draws a password of opts.Length characters, uniformly and
// with replacement, from the union of the selected alphabets.
func Generate(opts Options) (string, error) {
	if opts.Length < MinLength || opts.Length > MaxLength {
		return "", vaulterr.New(vaulterr.InvalidInput, "length must be between 8 and 128")
	}

	var alphabet strings.Builder
	if opts.Lowercase {
		alphabet.WriteString(lowerAlphabet)
	}
	if opts.Uppercase {
		alphabet.WriteString(upperAlphabet)
	}
	if opts.Numbers {
		alphabet.WriteString(digitAlphabet)
	}
	if opts.Symbols {
		alphabet.WriteString(symbolAlphabet)
	}
	if alphabet.Len() == 0 {
		return "", vaulterr.New(vaulterr.InvalidInput, "at least one character class must be selected")
	}

	pool := alphabet.String()
	if opts.ExcludeAmbiguous {
		pool = removeChars(pool, ambiguousChars)
	}
	if pool == "" {
		return "", vaulterr.New(vaulterr.InvalidInput, "excluding ambiguous characters leaves no usable alphabet")
	}

	runes := []rune(pool)
	out := make([]rune, opts.Length)
	max := big.NewInt(int64(len(runes)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", vaulterr.Wrap(vaulterr.IoFailure, "draw random index", err)
		}
		out[i] = runes[n.Int64()]
	}
	return string(out), nil
}

func removeChars(s, remove string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(remove, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
