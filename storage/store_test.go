package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing.json")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "f1200/b1.json", []byte("beam 1")))
	require.NoError(t, store.Put(ctx, "f1200/b2.json.zst", []byte("beam 2")))
	require.NoError(t, store.Put(ctx, "f1020/b1.json", []byte("other")))

	got, err := store.Get(ctx, "f1200/b1.json")
	require.NoError(t, err)
	assert.Equal(t, "beam 1", string(got))

	require.NoError(t, store.Put(ctx, "f1200/b1.json", []byte("beam 1 v2")))
	got, err = store.Get(ctx, "f1200/b1.json")
	require.NoError(t, err)
	assert.Equal(t, "beam 1 v2", string(got))

	names, err := store.List(ctx, "f1200/")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1200/b1.json", "f1200/b2.json.zst"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"f1020/b1.json", "f1200/b1.json", "f1200/b2.json.zst"}, all)

	require.NoError(t, store.Delete(ctx, "f1200/b1.json"))
	require.NoError(t, store.Delete(ctx, "f1200/b1.json"))
	_, err = store.Get(ctx, "f1200/b1.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, s.Put(ctx, "x", data))
	data[0] = 'z'

	got, err := s.Get(ctx, "x")
	require.NoError(t, err)
	got[1] = 'z'

	again, err := s.Get(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	testStore(t, NewLocalStore(dir))

	_, err := os.Stat(filepath.Join(dir, "f1200", "b2.json.zst"))
	require.NoError(t, err)
}

func TestLocalStore_EmptyAndMissingRoot(t *testing.T) {
	ctx := context.Background()

	s := NewLocalStore(filepath.Join(t.TempDir(), "not-there"))
	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, names)

	s = NewLocalStore(t.TempDir())
	require.NoError(t, s.Put(ctx, "empty.json", nil))
	got, err := s.Get(ctx, "empty.json")
	require.NoError(t, err)
	assert.Empty(t, got)
}
