package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// backends returns a fresh instance of every backend for the shared contract
func backends(t *testing.T) map[string]Storage {
	t.Helper()

	dir := t.TempDir()

	file, err := OpenFile(filepath.Join(dir, "store.json"))
	require.NoError(t, err)

	db, err := OpenSQLite(filepath.Join(dir, "storage.sqlite"), "http://localhost:5500")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	keyring.MockInit()

	return map[string]Storage{
		"memory":  NewMemory(),
		"file":    file,
		"sqlite":  db,
		"keyring": NewKeyring(NewMemory(), "http://localhost:5500", "auth_token"),
	}
}

func TestStorageContract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get("auth_token")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set("auth_token", "tok-1"))
			require.NoError(t, store.Set("role", "user"))
			require.NoError(t, store.Set("role", "provider"))

			v, ok, err := store.Get("role")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "provider", v)

			v, ok, err = store.Get("auth_token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "tok-1", v)

			keys, err := store.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"auth_token", "role"}, keys)

			require.NoError(t, store.Remove("auth_token"))
			require.NoError(t, store.Remove("never-set"))
			_, ok, err = store.Get("auth_token")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set("auth_token", "tok-2"))
			require.NoError(t, store.Clear())
			keys, err = store.Keys()
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestFile_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	first, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("user_email", "ana@example.com"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := OpenFile(path)
	require.NoError(t, err)
	v, ok, err := second.Get("user_email")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ana@example.com", v)
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := OpenFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse storage file")
}

func TestSQLite_OriginsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.sqlite")

	a, err := OpenSQLite(path, "http://localhost:5500")
	require.NoError(t, err)
	defer a.Close()
	b, err := OpenSQLite(path, "https://homebuddy.vercel.app")
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, a.Set("role", "user"))
	require.NoError(t, b.Set("role", "admin"))
	require.NoError(t, a.Clear())

	_, ok, err := a.Get("role")
	require.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := b.Get("role")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "admin", v)
}

func TestKeyring_SecretKeysBypassInner(t *testing.T) {
	keyring.MockInit()

	inner := NewMemory()
	store := NewKeyring(inner, "http://localhost:5500", "auth_token")

	require.NoError(t, store.Set("auth_token", "secret"))
	require.NoError(t, store.Set("role", "user"))

	_, ok, _ := inner.Get("auth_token")
	assert.False(t, ok, "token must not reach the wrapped store")

	v, err := keyring.Get(keyringService, "localhost-5500-auth_token")
	require.NoError(t, err)
	assert.Equal(t, "secret", v)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(Options{Backend: "file", Dir: dir, Origin: "http://localhost:5500"})
	require.NoError(t, err)
	require.NoError(t, store.Set("role", "user"))
	assert.FileExists(t, filepath.Join(dir, "localhost-5500.json"))

	store, err = Open(Options{Backend: "sqlite", Dir: dir, Origin: "http://localhost:5500"})
	require.NoError(t, err)
	defer store.Close()
	assert.FileExists(t, filepath.Join(dir, "storage.sqlite"))

	store, err = Open(Options{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)

	_, err = Open(Options{Backend: "redis"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "localhost-5500", Slug("http://localhost:5500"))
	assert.Equal(t, "homebuddy-abc-vercel-app", Slug("https://HomeBuddy-abc.vercel.app"))
	assert.Equal(t, "default", Slug(""))
}
