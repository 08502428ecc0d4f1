package genpass_test

import (
	"strings"
	"testing"

	"github.com/latchvault/vaultengine/internal/genpass"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

func TestGenerateRespectsLengthAndAlphabet(t *testing.T) {
	pw, err := genpass.Generate(genpass.Options{
		Length:           12,
		Lowercase:        true,
		Numbers:          true,
		ExcludeAmbiguous: true,
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(pw) != 12 {
		t.Fatalf("expected 12 characters, got %d", len(pw))
	}
	for _, r := range pw {
		if strings.ContainsRune("0O1lI", r) {
			t.Fatalf("password contains excluded ambiguous character: %q", r)
		}
		if !strings.ContainsRune("abcdefghijklmnopqrstuvwxyz0123456789", r) {
			t.Fatalf("password contains character outside selected alphabets: %q", r)
		}
	}
}

func TestGenerateRejectsOutOfRangeLength(t *testing.T) {
	_, err := genpass.Generate(genpass.Options{Length: 4, Lowercase: true})
	if vaulterr.Of(err) != vaulterr.InvalidInput {
		t.Fatalf("expected InvalidInput for length below minimum, got %v", err)
	}

	_, err = genpass.Generate(genpass.Options{Length: 256, Lowercase: true})
	if vaulterr.Of(err) != vaulterr.InvalidInput {
		t.Fatalf("expected InvalidInput for length above maximum, got %v", err)
	}
}

func TestGenerateRejectsNoAlphabetSelected(t *testing.T) {
	_, err := genpass.Generate(genpass.Options{Length: 16})
	if vaulterr.Of(err) != vaulterr.InvalidInput {
		t.Fatalf("expected InvalidInput when no character class is selected, got %v", err)
	}
}

func TestGenerateAllowsNumbersWithAmbiguousExcluded(t *testing.T) {
	// digits minus {0,1} still leaves 2-9, so this must not error.
	_, err := genpass.Generate(genpass.Options{Length: 16, Numbers: true, ExcludeAmbiguous: true})
	if err != nil {
		t.Fatalf("numbers alphabet minus {0,1} must still be usable: %v", err)
	}
}

func TestGenerateDrawsFromUnionOfSelectedAlphabets(t *testing.T) {
	pw, err := genpass.Generate(genpass.Options{Length: 64, Uppercase: true, Symbols: true})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for _, r := range pw {
		if r >= 'a' && r <= 'z' {
			t.Fatalf("lowercase character %q present though lowercase was not selected", r)
		}
	}
}
