package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintech/internal/core"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	val := []byte(`{"a":1}`)
	require.NoError(t, m.Set(ctx, "k", val))
	val[0] = 'x'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestLoadSnapshotDefaults(t *testing.T) {
	snap, err := LoadSnapshot(context.Background(), NewMemory())
	require.NoError(t, err)

	assert.Empty(t, snap.Expenses)
	assert.Nil(t, snap.TaxSettings)
	assert.Equal(t, core.DefaultCategories(), snap.Categories)
	assert.Equal(t, "tr", snap.Settings.Language)
	assert.Equal(t, "₺", snap.Settings.CurrencySymbol)
}

func TestTypedRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	expenses := core.DemoExpenses()
	require.NoError(t, SaveExpenses(ctx, m, expenses))
	got, err := Expenses(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, expenses, got)

	ts := core.TaxSettings{AllowedCategories: []string{"Sağlık"}, DefaultTaxRate: core.NewPercent(15), AutomaticTaxCalculation: true}
	require.NoError(t, SaveTaxSettings(ctx, m, ts))
	gotTS, err := TaxSettings(ctx, m)
	require.NoError(t, err)
	require.NotNil(t, gotTS)
	assert.Equal(t, ts.AllowedCategories, gotTS.AllowedCategories)
	assert.Equal(t, int64(15), gotTS.DefaultTaxRate.Rounded())
	assert.True(t, gotTS.AutomaticTaxCalculation)

	require.NoError(t, SaveGeneralSettings(ctx, m, core.GeneralSettings{Language: "en"}))
	gs, err := GeneralSettings(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "en", gs.Language)
	assert.Equal(t, "YYYY-MM-DD", gs.DateFormat)
}

func TestCorruptDocument(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, KeyExpenses, []byte("not json")))

	_, err := LoadSnapshot(ctx, m)
	assert.ErrorContains(t, err, "decode expenses")
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, SaveCategories(ctx, m, []core.Category{{Name: "Kira"}}))

	require.NoError(t, Seed(ctx, m, false))
	snap, err := LoadSnapshot(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, []core.Category{{Name: "Kira"}}, snap.Categories, "existing keys are kept")
	assert.NotNil(t, snap.TaxSettings)
	assert.Empty(t, snap.Expenses)

	require.NoError(t, Seed(ctx, m, true))
	snap, err = LoadSnapshot(ctx, m)
	require.NoError(t, err)
	assert.Len(t, snap.Expenses, len(core.DemoExpenses()))
}

func TestNewMemoryFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "taxSettings.json"), []byte(`{"allowedCategories":["Eğitim"],"defaultTaxRate":20}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	m, err := NewMemoryFromDir(dir)
	require.NoError(t, err)
	ts, err := TaxSettings(context.Background(), m)
	require.NoError(t, err)
	require.NotNil(t, ts)
	assert.True(t, ts.Allows("eğitim"))

	_, err = m.Get(context.Background(), "notes")
	assert.ErrorIs(t, err, ErrNotFound)

	m, err = NewMemoryFromDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.NotNil(t, m)
}
