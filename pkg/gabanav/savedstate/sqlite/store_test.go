package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/savedstate"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "state.db"))
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveAndLoadReplacesSnapshot(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string][]byte{"a": []byte("1"), "b": []byte("2")}))
	require.NoError(t, store.Save(ctx, map[string][]byte{"b": []byte("3"), "c": []byte("4")}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"b": []byte("3"), "c": []byte("4")}, got)
}

func TestRegistryRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	registry := savedstate.NewRegistry(nil)
	registry.RegisterProvider("entry", func() ([]byte, error) { return []byte(`{"n":1}`), nil })
	registry.RegisterProvider("broken", func() ([]byte, error) { return nil, errors.New("boom") })

	err := store.SaveRegistry(ctx, registry)
	require.Error(t, err)

	restored, err := store.Restore(ctx)
	require.NoError(t, err)
	data, ok := restored.ConsumeRestoredStateForKey("entry")
	require.True(t, ok)
	assert.JSONEq(t, `{"n":1}`, string(data))

	_, ok = restored.ConsumeRestoredStateForKey("broken")
	assert.False(t, ok)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := Open(path)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	require.NoError(t, store.Save(context.Background(), map[string][]byte{"k": []byte("v")}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got["k"])
	assert.Equal(t, path, reopened.Path())
}
