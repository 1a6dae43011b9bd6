// Package store is the key-value record store the assistant and the expense
// service read from. Values are JSON documents kept under fixed string keys.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"fintech/internal/core"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// Keys of the persisted documents.
const (
	KeyExpenses        = "expenses"
	KeyCategories      = "expenseCategories"
	KeyTaxSettings     = "taxSettings"
	KeyGeneralSettings = "generalSettings"
)

// Store is a flat key-value store of JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Snapshot is a read-only view of everything the assistant answers from.
type Snapshot struct {
	Expenses    []core.Expense
	Categories  []core.Category
	TaxSettings *core.TaxSettings
	Settings    core.GeneralSettings
}

// getJSON decodes key into v. It reports false when the key is absent.
func getJSON(ctx context.Context, s Store, key string, v any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func setJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Expenses returns the stored expense records, or none when the key is absent.
func Expenses(ctx context.Context, s Store) ([]core.Expense, error) {
	var out []core.Expense
	if _, err := getJSON(ctx, s, KeyExpenses, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func SaveExpenses(ctx context.Context, s Store, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return setJSON(ctx, s, KeyExpenses, expenses)
}

// Categories returns the stored categories, falling back to the defaults.
func Categories(ctx context.Context, s Store) ([]core.Category, error) {
	var out []core.Category
	ok, err := getJSON(ctx, s, KeyCategories, &out)
	if err != nil {
		return nil, err
	}
	if !ok {
		return core.DefaultCategories(), nil
	}
	return out, nil
}

func SaveCategories(ctx context.Context, s Store, cats []core.Category) error {
	return setJSON(ctx, s, KeyCategories, cats)
}

// TaxSettings returns nil when no tax settings were ever saved.
func TaxSettings(ctx context.Context, s Store) (*core.TaxSettings, error) {
	var ts core.TaxSettings
	ok, err := getJSON(ctx, s, KeyTaxSettings, &ts)
	if err != nil || !ok {
		return nil, err
	}
	return &ts, nil
}

func SaveTaxSettings(ctx context.Context, s Store, ts core.TaxSettings) error {
	return setJSON(ctx, s, KeyTaxSettings, ts)
}

// GeneralSettings returns the stored display preferences with defaults filled in.
func GeneralSettings(ctx context.Context, s Store) (core.GeneralSettings, error) {
	var gs core.GeneralSettings
	if _, err := getJSON(ctx, s, KeyGeneralSettings, &gs); err != nil {
		return core.GeneralSettings{}, err
	}
	return gs.WithDefaults(), nil
}

func SaveGeneralSettings(ctx context.Context, s Store, gs core.GeneralSettings) error {
	return setJSON(ctx, s, KeyGeneralSettings, gs)
}

// LoadSnapshot reads every document the assistant needs. Absent keys yield
// defaults; absent tax settings stay nil.
func LoadSnapshot(ctx context.Context, s Store) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	if snap.Expenses, err = Expenses(ctx, s); err != nil {
		return Snapshot{}, err
	}
	if snap.Categories, err = Categories(ctx, s); err != nil {
		return Snapshot{}, err
	}
	if snap.TaxSettings, err = TaxSettings(ctx, s); err != nil {
		return Snapshot{}, err
	}
	if snap.Settings, err = GeneralSettings(ctx, s); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Seed writes the default categories and settings for keys that are absent.
// With demo set it also stores the demo expenses when no expenses exist.
func Seed(ctx context.Context, s Store, demo bool) error {
	defaults := []struct {
		key   string
		value any
		want  bool
	}{
		{KeyCategories, core.DefaultCategories(), true},
		{KeyTaxSettings, core.DefaultTaxSettings(), true},
		{KeyGeneralSettings, core.DefaultGeneralSettings(), true},
		{KeyExpenses, core.DemoExpenses(), demo},
	}
	for _, d := range defaults {
		if !d.want {
			continue
		}
		_, err := s.Get(ctx, d.key)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("seed %s: %w", d.key, err)
		}
		if err := setJSON(ctx, s, d.key, d.value); err != nil {
			return fmt.Errorf("seed %s: %w", d.key, err)
		}
	}
	return nil
}
