package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintech/internal/core"
	"fintech/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "nested", "fintech.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteGetSet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.Get(ctx, store.KeyExpenses)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "k", []byte(`[1]`)))
	require.NoError(t, repo.Set(ctx, "k", []byte(`[1,2]`)))

	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(got))
	assert.NoError(t, repo.Ping(ctx))
}

func TestSQLiteSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, store.Seed(ctx, repo, true))
	snap, err := store.LoadSnapshot(ctx, repo)
	require.NoError(t, err)

	assert.Equal(t, core.DemoExpenses(), snap.Expenses)
	require.NotNil(t, snap.TaxSettings)
	assert.Equal(t, core.DefaultTaxSettings().AllowedCategories, snap.TaxSettings.AllowedCategories)
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fintech.db")

	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, "k", []byte(`{"v":1}`)))
	require.NoError(t, repo.Close())

	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	defer repo.Close()
	got, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))
}
