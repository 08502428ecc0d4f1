package oauthtoken_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/latchvault/vaultengine/internal/oauthtoken"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

// unsignedToken builds a JWT string with claims but no valid signature,
// matching the "signature already verified upstream" contract Subject
// expects to parse.
func unsignedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("irrelevant-to-parseunverified"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func baseClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss": "https://accounts.google.com",
		"aud": "client-123",
		"sub": "user-42",
		"exp": now.Add(time.Hour).Unix(),
		"nbf": now.Add(-time.Minute).Unix(),
	}
}

func TestSubjectExtractsSubFromValidToken(t *testing.T) {
	adapter := oauthtoken.New(oauthtoken.Validation{ClientID: "client-123"})
	tok := unsignedToken(t, baseClaims())

	sub, err := adapter.Subject(tok)
	if err != nil {
		t.Fatalf("Subject returned error: %v", err)
	}
	if sub != "user-42" {
		t.Fatalf("expected sub user-42, got %q", sub)
	}
}

func TestSubjectRejectsUnexpectedIssuer(t *testing.T) {
	claims := baseClaims()
	claims["iss"] = "https://evil.example.com"
	adapter := oauthtoken.New(oauthtoken.Validation{ClientID: "client-123"})

	_, err := adapter.Subject(unsignedToken(t, claims))
	if vaulterr.Of(err) != vaulterr.InvalidInput {
		t.Fatalf("expected InvalidInput for bad issuer, got %v", err)
	}
}

func TestSubjectRejectsAudienceMismatch(t *testing.T) {
	claims := baseClaims()
	claims["aud"] = "some-other-client"
	adapter := oauthtoken.New(oauthtoken.Validation{ClientID: "client-123"})

	_, err := adapter.Subject(unsignedToken(t, claims))
	if vaulterr.Of(err) != vaulterr.InvalidInput {
		t.Fatalf("expected InvalidInput for audience mismatch, got %v", err)
	}
}

func TestSubjectAcceptsAudienceAsArray(t *testing.T) {
	claims := baseClaims()
	claims["aud"] = []interface{}{"other-client", "client-123"}
	adapter := oauthtoken.New(oauthtoken.Validation{ClientID: "client-123"})

	sub, err := adapter.Subject(unsignedToken(t, claims))
	if err != nil {
		t.Fatalf("Subject returned error: %v", err)
	}
	if sub != "user-42" {
		t.Fatalf("expected sub user-42, got %q", sub)
	}
}

func TestSubjectRejectsExpiredToken(t *testing.T) {
	claims := baseClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	adapter := oauthtoken.New(oauthtoken.Validation{})

	_, err := adapter.Subject(unsignedToken(t, claims))
	if vaulterr.Of(err) != vaulterr.InvalidInput {
		t.Fatalf("expected InvalidInput for expired token, got %v", err)
	}
}

func TestSubjectRejectsNotYetValidToken(t *testing.T) {
	claims := baseClaims()
	claims["nbf"] = time.Now().Add(time.Hour).Unix()
	adapter := oauthtoken.New(oauthtoken.Validation{})

	_, err := adapter.Subject(unsignedToken(t, claims))
	if vaulterr.Of(err) != vaulterr.InvalidInput {
		t.Fatalf("expected InvalidInput for not-yet-valid token, got %v", err)
	}
}

func TestSubjectSkipsAudienceCheckWhenUnconfigured(t *testing.T) {
	claims := baseClaims()
	claims["aud"] = "anything"
	adapter := oauthtoken.New(oauthtoken.Validation{})

	sub, err := adapter.Subject(unsignedToken(t, claims))
	if err != nil {
		t.Fatalf("Subject returned error: %v", err)
	}
	if sub != "user-42" {
		t.Fatalf("expected sub user-42, got %q", sub)
	}
}
