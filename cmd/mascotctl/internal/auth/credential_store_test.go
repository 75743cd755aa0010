package auth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SetGetClear(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	tok, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, tok, "fresh store must be empty")

	require.NoError(t, store.Set("t1"))
	tok, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)

	require.NoError(t, store.Set("t2"))
	tok, _ = store.Get()
	assert.Equal(t, "t2", tok, "Set replaces the previous token")

	require.NoError(t, store.Clear())
	tok, err = store.Get()
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, store.Clear(), "clearing an empty store is a no-op")
}

func TestFileStore_SurvivesNewInstance(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("t1"))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	tok, err := second.Get()
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)
}

func TestFileStore_FilePermissionsAndNoLeftovers(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("t1"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, credentialsFile, entries[0].Name())
}

func TestFileStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, credentialsFile), []byte("{not-json"), 0600))

	_, err = store.Get()
	assert.Error(t, err)

	require.NoError(t, store.Clear(), "a corrupted file can still be cleared")
	tok, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, tok)
}
