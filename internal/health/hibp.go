package health

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/latchvault/vaultengine/internal/vaulterr"
)

const (
	hibpRangeURL  = "https://api.pwnedpasswords.com/range/"
	hibpUserAgent = "latchvault/1.0"
)

// HIBPLookup is the concrete BreachLookup a caller may inject to turn
// Audit's local-only classification into a real breach check, using
// the k-anonymity protocol: only a 5-char hex prefix of SHA-1(password)
// ever leaves the process.
type HIBPLookup struct {
	Client *http.Client
	// BaseURL overrides hibpRangeURL; empty means use the default. Lets
	// tests point Lookup at an httptest server instead of the real API.
	BaseURL string
}

// NewHIBPLookup returns an HIBPLookup with a short request timeout.
func NewHIBPLookup() HIBPLookup {
	return HIBPLookup{Client: &http.Client{Timeout: 4 * time.Second}}
}

// Lookup implements BreachLookup against the pwnedpasswords range API.
func (h HIBPLookup) Lookup(ctx context.Context, password string) (int, error) {
	client := h.Client
	if client == nil {
		client = &http.Client{Timeout: 4 * time.Second}
	}
	baseURL := h.BaseURL
	if baseURL == "" {
		baseURL = hibpRangeURL
	}

	sum := sha1.Sum([]byte(password))
	hashHex := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix := hashHex[:5]
	suffix := hashHex[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+prefix, nil)
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IoFailure, "build breach lookup request", err)
	}
	req.Header.Set("User-Agent", hibpUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, vaulterr.Wrap(vaulterr.IoFailure, "breach lookup request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, vaulterr.New(vaulterr.IoFailure, "breach lookup returned unexpected status")
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, ':')
		if idx == -1 {
			continue
		}
		lineSuffix := line[:idx]
		if !strings.EqualFold(lineSuffix, suffix) {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(line[idx+1:]))
		if err != nil {
			return 0, vaulterr.Wrap(vaulterr.IoFailure, "parse breach count", err)
		}
		return count, nil
	}
	if err := scanner.Err(); err != nil {
		return 0, vaulterr.Wrap(vaulterr.IoFailure, "read breach lookup response", err)
	}
	return 0, nil
}
