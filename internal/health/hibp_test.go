package health_test

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/latchvault/vaultengine/internal/health"
)

func TestHIBPLookupOnlySendsPrefixAndMatchesSuffixLocally(t *testing.T) {
	const password = "password123"
	sum := sha1.Sum([]byte(password))
	hashHex := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := hashHex[:5], hashHex[5:]

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprintf(w, "%s:%d\r\nAAAA0000000000000000000000000000000:1\r\n", suffix, 42)
	}))
	defer srv.Close()

	lookup := health.HIBPLookup{Client: srv.Client()}
	lookup.BaseURL = srv.URL + "/range/"

	count, err := lookup.Lookup(context.Background(), password)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if count != 42 {
		t.Fatalf("expected count 42, got %d", count)
	}
	if !strings.HasSuffix(gotPath, "/range/"+prefix) {
		t.Fatalf("expected request path to end in /range/%s, got %s", prefix, gotPath)
	}
	if strings.Contains(gotPath, suffix) {
		t.Fatalf("request path must never contain the full-hash suffix: %s", gotPath)
	}
}

func TestHIBPLookupReturnsZeroWhenSuffixAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF:1\r\n")
	}))
	defer srv.Close()

	lookup := health.HIBPLookup{Client: srv.Client()}
	lookup.BaseURL = srv.URL + "/range/"

	count, err := lookup.Lookup(context.Background(), "some-unbreached-password")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected zero count when suffix is not present, got %d", count)
	}
}
