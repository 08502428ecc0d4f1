// Package oauthtoken extracts the subject claim from an identity token
// whose signature was already verified upstream. Grounded on
// original_source/oauth.rs's decode_id_token (which parses the JWT with
// signature validation explicitly disabled — "the signature was already
// verified by the Google OAuth plugin") and on
// SAGE-X-project-sage/oidc/auth0/auth0.go's use of
// jwt.NewParser().ParseUnverified with jwt.MapClaims for the concrete
// Go shape of that same "trust the caller, check claims manually" idea.
package oauthtoken

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/latchvault/vaultengine/internal/vaulterr"
)

var allowedIssuers = map[string]bool{
	"https://accounts.google.com": true,
	"accounts.google.com":         true,
}

// expiryTolerance absorbs clock skew between the token issuer and this
// process when checking exp/nbf.
const expiryTolerance = 2 * time.Minute

// Validation carries the audience the adapter should check, if any.
// A zero value skips audience validation.
type Validation struct {
	ClientID string
}

// Adapter decodes identity tokens into their subject claim.
type Adapter struct {
	validation Validation
}

// New returns an Adapter that validates tokens against v.
func New(v Validation) *Adapter {
	return &Adapter{validation: v}
}

// Subject parses tokenString without verifying its signature (the
// caller is expected to have already done so, e.g. the OS-level OAuth
// plugin that obtained the token) and returns its "sub" claim after
// validating issuer, audience, exp, and nbf.
func (a *Adapter) Subject(tokenString string) (string, error) {
	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", vaulterr.Wrap(vaulterr.InvalidInput, "parse identity token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", vaulterr.New(vaulterr.InvalidInput, "identity token has no claims")
	}

	if iss, ok := claims["iss"].(string); !ok || !allowedIssuers[iss] {
		return "", vaulterr.New(vaulterr.InvalidInput, "identity token has an unexpected issuer")
	}

	if a.validation.ClientID != "" {
		if !audienceContains(claims["aud"], a.validation.ClientID) {
			return "", vaulterr.New(vaulterr.InvalidInput, "identity token audience mismatch")
		}
	}

	now := time.Now()
	if exp, ok := numericClaim(claims["exp"]); ok {
		if now.After(time.Unix(exp, 0).Add(expiryTolerance)) {
			return "", vaulterr.New(vaulterr.InvalidInput, "identity token expired")
		}
	}
	if nbf, ok := numericClaim(claims["nbf"]); ok {
		if now.Before(time.Unix(nbf, 0).Add(-expiryTolerance)) {
			return "", vaulterr.New(vaulterr.InvalidInput, "identity token not yet valid")
		}
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", vaulterr.New(vaulterr.InvalidInput, "identity token missing sub claim")
	}
	return sub, nil
}

func numericClaim(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

func audienceContains(v interface{}, want string) bool {
	switch aud := v.(type) {
	case string:
		return aud == want
	case []interface{}:
		for _, a := range aud {
			if s, ok := a.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}
