package engine

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/latchvault/vaultengine/internal/vaulterr"
)

// Entry is a single credential record.
type Entry struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url,omitempty"`
	IconURL  string `json:"icon_url,omitempty"`
}

// EntryPreview is the password/url-free projection returned by search
// and listing operations.
type EntryPreview struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Username string `json:"username"`
	IconURL  string `json:"icon_url,omitempty"`
	Score    int    `json:"score"`
}

// Preview drops the sensitive fields of e.
func (e Entry) Preview(score int) EntryPreview {
	return EntryPreview{
		ID:       e.ID,
		Title:    e.Title,
		Username: e.Username,
		IconURL:  e.IconURL,
		Score:    score,
	}
}

// vaultData is the plaintext shape encrypted inside a vault file.
type vaultData struct {
	Entries []Entry `json:"entries"`
}

func marshalEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	out, err := json.Marshal(vaultData{Entries: entries})
	if err != nil {
		return nil, vaulterr.Wrap(vaulterr.IoFailure, "encode entries", err)
	}
	return out, nil
}

func unmarshalEntries(raw []byte) ([]Entry, error) {
	var vd vaultData
	if err := json.Unmarshal(raw, &vd); err != nil {
		return nil, vaulterr.Wrap(vaulterr.CorruptVault, "decode entries", err)
	}
	return vd.Entries, nil
}

// validateEntry enforces the field constraints on an entry. id is not
// validated here; callers decide whether to mint a new uuid or keep an
// existing id (update path).
func validateEntry(e Entry) error {
	title := strings.TrimSpace(e.Title)
	username := strings.TrimSpace(e.Username)
	password := e.Password

	if len(title) == 0 || len(title) > 256 {
		return vaulterr.New(vaulterr.InvalidInput, "title must be 1..256 characters")
	}
	if len(username) == 0 || len(username) > 256 {
		return vaulterr.New(vaulterr.InvalidInput, "username must be 1..256 characters")
	}
	if len(password) == 0 || len(password) > 1024 {
		return vaulterr.New(vaulterr.InvalidInput, "password must be 1..1024 characters")
	}
	if u := strings.TrimSpace(e.URL); u != "" {
		parsed, err := url.Parse(u)
		if err != nil || !parsed.IsAbs() {
			return vaulterr.New(vaulterr.InvalidInput, "url must be an absolute URL")
		}
	}
	return nil
}

// NewEntryID mints a fresh UUID for a new entry. The engine's AddEntry
// takes a fully-formed Entry with its id already assigned;
// callers that don't already have an id (e.g. the CLI) use this to mint
// one before calling AddEntry.
func NewEntryID() string { return uuid.NewString() }
