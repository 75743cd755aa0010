package sdk

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store CredentialStore) {
	t.Helper()

	tok, err := store.Get()
	require.NoError(t, err)
	assert.Empty(t, tok, "new store should be empty")

	require.NoError(t, store.Set("t1"))
	tok, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)

	require.NoError(t, store.Set("t2"))
	tok, err = store.Get()
	require.NoError(t, err)
	assert.Equal(t, "t2", tok, "set replaces the previous token")

	require.NoError(t, store.Clear())
	tok, err = store.Get()
	require.NoError(t, err)
	assert.Empty(t, tok)

	assert.NoError(t, store.Clear(), "clearing an empty store is a no-op")
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(""))
}

func TestMemoryStoreSeeded(t *testing.T) {
	tok, err := NewMemoryStore("seed").Get()
	require.NoError(t, err)
	assert.Equal(t, "seed", tok)
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, "")
	exerciseStore(t, store)

	require.NoError(t, store.Set("shared"))
	got, err := mr.Get(DefaultRedisKey)
	require.NoError(t, err)
	assert.Equal(t, "shared", got)
}

func TestRedisStoreSharedBetweenInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := NewRedisStore(rdb, "console")
	b := NewRedisStore(rdb, "console")

	require.NoError(t, a.Set("t1"))
	tok, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, "t1", tok)

	require.NoError(t, b.Clear())
	tok, err = a.Get()
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, err := NewRedisStore(rdb, "").Get()
	assert.Error(t, err)
}
