package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latchvault/vaultengine/internal/engine"
	"github.com/latchvault/vaultengine/internal/vaulterr"
)

func TestInitAddLockUnlockReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)

	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	entry := engine.Entry{
		ID:       engine.NewEntryID(),
		Title:    "Gmail",
		Username: "alice@ex.com",
		Password: "p@ss",
	}
	require.NoError(t, e.AddEntry(entry))

	e.Lock()
	require.False(t, e.IsUnlocked())

	e2 := engine.New(dir, nil)
	require.NoError(t, e2.UnlockWithPassword("Hunter2!Hunter2!"))

	got, err := e2.GetFullEntry(entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry, got)
}

func TestUnlockWithWrongPasswordLocksOutGuard(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))
	e.Lock()

	err := e.UnlockWithPassword("hunter2!Hunter2!")
	require.Equal(t, vaulterr.DecryptionFailure, vaulterr.Of(err))

	err = e.UnlockWithPassword("Hunter2!Hunter2!")
	require.Equal(t, vaulterr.LockedOut, vaulterr.Of(err))
}

func TestMigratePasswordToOAuthRekeysAndRoundTrips(t *testing.T) {
	dir := t.TempDir()
	appSecret := []byte("01234567890123456789012345678901")

	e := engine.New(dir, appSecret)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	entry := engine.Entry{ID: engine.NewEntryID(), Title: "Bank", Username: "alice", Password: "s3cr3t!!"}
	require.NoError(t, e.AddEntry(entry))

	require.NoError(t, e.MigratePasswordToOAuth("Hunter2!Hunter2!", "user-42"))

	method, err := e.GetAuthMethod()
	require.NoError(t, err)
	require.Equal(t, "oauth-argon2id", method)

	got, err := e.GetFullEntry(entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry, got)
	require.True(t, e.IsUnlocked())

	e.Lock()
	e2 := engine.New(dir, appSecret)
	require.NoError(t, e2.UnlockWithOAuth("user-42"))
	got2, err := e2.GetFullEntry(entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry, got2)
}

func TestSearchEntriesOrdersByScoreThenInsertion(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	for _, title := range []string{"GitHub", "GitLab", "Gmail"} {
		require.NoError(t, e.AddEntry(engine.Entry{
			ID: engine.NewEntryID(), Title: title, Username: "alice", Password: "xxxxxxxx",
		}))
	}

	results, err := e.SearchEntries("gi")
	require.NoError(t, err)

	var titles []string
	for _, r := range results {
		titles = append(titles, r.Title)
	}
	require.Equal(t, []string{"GitHub", "GitLab"}, titles)
	require.NotContains(t, titles, "Gmail")
}

func TestSearchEmptyQueryReturnsAllInInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	for _, title := range []string{"Zed", "Alpha", "Middle"} {
		require.NoError(t, e.AddEntry(engine.Entry{
			ID: engine.NewEntryID(), Title: title, Username: "alice", Password: "xxxxxxxx",
		}))
	}

	results, err := e.SearchEntries("")
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, "Zed", results[0].Title)
	require.Equal(t, "Alpha", results[1].Title)
	require.Equal(t, "Middle", results[2].Title)
	for _, r := range results {
		require.Equal(t, 0, r.Score)
	}
}

func TestUpdateAndDeleteEntry(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	entry := engine.Entry{ID: engine.NewEntryID(), Title: "Old", Username: "alice", Password: "xxxxxxxx"}
	require.NoError(t, e.AddEntry(entry))

	entry.Title = "New"
	require.NoError(t, e.UpdateEntry(entry))

	got, err := e.GetFullEntry(entry.ID)
	require.NoError(t, err)
	require.Equal(t, "New", got.Title)

	require.NoError(t, e.DeleteEntry(entry.ID))
	_, err = e.GetFullEntry(entry.ID)
	require.Equal(t, vaulterr.NotFound, vaulterr.Of(err))
}

func TestAddEntryRejectsInvalidFields(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	err := e.AddEntry(engine.Entry{ID: engine.NewEntryID(), Title: "", Username: "alice", Password: "xxxxxxxx"})
	require.Equal(t, vaulterr.InvalidInput, vaulterr.Of(err))

	err = e.AddEntry(engine.Entry{ID: engine.NewEntryID(), Title: "t", Username: "alice", Password: "xxxxxxxx", URL: "not-a-url"})
	require.Equal(t, vaulterr.InvalidInput, vaulterr.Of(err))
}

func TestInitFailsIfVaultAlreadyExists(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	err := engine.New(dir, nil).InitWithPassword("other-password-123")
	require.Equal(t, vaulterr.AlreadyExists, vaulterr.Of(err))
}

func TestOperationsFailWhenLocked(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))
	e.Lock()

	_, err := e.SearchEntries("")
	require.Equal(t, vaulterr.Locked, vaulterr.Of(err))
}

func TestGetAuthMethodReadsWithoutUnlocking(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))
	e.Lock()

	method, err := e.GetAuthMethod()
	require.NoError(t, err)
	require.Equal(t, "password-pbkdf2", method)
}

func TestReencryptRotatesKeyAndKeepsSessionValid(t *testing.T) {
	dir := t.TempDir()
	e := engine.New(dir, nil)
	require.NoError(t, e.InitWithPassword("Hunter2!Hunter2!"))

	entry := engine.Entry{ID: engine.NewEntryID(), Title: "Foo", Username: "alice", Password: "xxxxxxxx"}
	require.NoError(t, e.AddEntry(entry))

	newKey := make([]byte, 32)
	for i := range newKey {
		newKey[i] = byte(i)
	}
	require.NoError(t, e.Reencrypt(newKey, "biometric-keychain", ""))
	require.True(t, e.IsUnlocked())

	got, err := e.GetFullEntry(entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry, got)

	e.Lock()
	e2 := engine.New(dir, nil)
	require.NoError(t, e2.UnlockWithKey(newKey))
	got2, err := e2.GetFullEntry(entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry, got2)
}
