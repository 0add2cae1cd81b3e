package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/etay-atar/Sandbox/internal/domain"
	"github.com/etay-atar/Sandbox/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the Get/Set/Remove contract every backend must satisfy.
func exerciseStore(t *testing.T, store domain.CredentialStore) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store must be empty")

	require.NoError(t, store.Set(ctx, "token-1"))
	got, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "token-1", got)

	require.NoError(t, store.Set(ctx, "token-2"))
	got, _, err = store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", got)

	require.NoError(t, store.Remove(ctx))
	_, ok, err = store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Remove(ctx), "removing an absent credential is not an error")
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFile_Plaintext(t *testing.T) {
	exerciseStore(t, NewFile(filepath.Join(t.TempDir(), "nested", "token"), nil))
}

func TestFile_Encrypted(t *testing.T) {
	c, err := NewAESGCM(testKey)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "token")
	store := NewFile(path, c)

	exerciseStore(t, store)

	require.NoError(t, store.Set(context.Background(), "secret-token"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-token")
}

func TestFile_PermissionsAreOwnerOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	store := NewFile(path, nil)

	require.NoError(t, store.Set(context.Background(), "token"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFile_BlankFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	_, ok, err := NewFile(path, nil).Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFile_UnreadableSealedTokenIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("not-hex"), 0o600))
	c, err := NewAESGCM(testKey)
	require.NoError(t, err)

	_, _, err = NewFile(path, c).Get(context.Background())
	assert.Error(t, err)
}

func TestOpen_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, closeFn, err := Open(ctx, &config.Config{CredentialStore: config.CredentialStoreMemory}, nil)
		require.NoError(t, err)
		defer func() { _ = closeFn() }()
		assert.IsType(t, &Memory{}, store)
	})

	t.Run("file with explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "token")
		store, closeFn, err := Open(ctx, &config.Config{CredentialStore: config.CredentialStoreFile, CredentialPath: path}, nil)
		require.NoError(t, err)
		defer func() { _ = closeFn() }()
		require.IsType(t, &File{}, store)
		assert.Equal(t, path, store.(*File).Path())
	})

	t.Run("bad key", func(t *testing.T) {
		_, _, err := Open(ctx, &config.Config{CredentialStore: config.CredentialStoreMemory, CredentialKey: "zz"}, nil)
		assert.Error(t, err)
	})
}
