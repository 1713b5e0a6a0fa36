package kv_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todolist/internal/kv"
)

// testKVContract exercises the behaviour every KV implementation shares.
func testKVContract(t *testing.T, store kv.KV) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing_key")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Set(ctx, "todolist_tasks", []byte(`[{"id":1}]`)))
	got, err := store.Get(ctx, "todolist_tasks")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(got))

	require.NoError(t, store.Set(ctx, "todolist_tasks", []byte(`[]`)))
	got, err = store.Get(ctx, "todolist_tasks")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got), "second write should replace the value")
}

func TestMemory(t *testing.T) {
	t.Parallel()
	testKVContract(t, kv.NewMemory())
}

func TestMemory_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := kv.NewMemory()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	got[1] = 'z'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestFile(t *testing.T) {
	t.Parallel()
	store, err := kv.NewFile(t.TempDir())
	require.NoError(t, err)
	testKVContract(t, store)
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	first, err := kv.NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "todolist_tasks", []byte(`["x"]`)))

	second, err := kv.NewFile(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "todolist_tasks")
	require.NoError(t, err)
	assert.Equal(t, `["x"]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFile_RejectsUnsafeKeys(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, err := kv.NewFile(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "a/b", "with space"} {
		assert.Error(t, store.Set(ctx, key, []byte("x")), "key %q", key)
		_, err := store.Get(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestFile_HonoursCancelledContext(t *testing.T) {
	t.Parallel()
	store, err := kv.NewFile(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Set(ctx, "k", []byte("x")), context.Canceled)
}

func TestNewFile_EmptyDir(t *testing.T) {
	t.Parallel()
	_, err := kv.NewFile("")
	assert.Error(t, err)
}
