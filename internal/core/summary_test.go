package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSummary(t *testing.T) {
	s := DefaultSummary()

	assert.Equal(t, "Mart 2023", s.CurrentMonth)
	cur, prev, ok := s.Months()
	require.True(t, ok)
	assert.Equal(t, time.March, cur.Month())
	assert.Equal(t, time.February, prev.Month())
	assert.Equal(t, 2023, prev.Year())
	assert.Equal(t, int64(1350000), s.MonthlyIncome.Cents)
	assert.Equal(t, HealthGood, s.FinancialHealth)
	require.Len(t, s.Budgets, 5)
	assert.Equal(t, "Market", s.Budgets[0].Category)
	assert.Equal(t, int64(30000), s.Budgets[0].Remaining().Cents)
	assert.Equal(t, int64(92), s.Budgets[0].UsedPercent())
	require.Len(t, s.Investments.Allocation, 4)
	assert.Equal(t, "3.2", s.Investments.MonthlyReturn.Decimal().String())
	require.Len(t, s.Goals, 3)

	b, ok := s.Budget("sağlık")
	require.True(t, ok)
	assert.Equal(t, int64(48000), b.Remaining().Cents)
	_, ok = s.Budget("Kira")
	assert.False(t, ok)
}

func TestLoadSummary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.yaml")
	doc := "current_month: March 2023\nmonthly_income: 1000.5\nfinancial_health: medium\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := LoadSummary(path)
	require.NoError(t, err)
	assert.Equal(t, int64(100050), s.MonthlyIncome.Cents)
	assert.Equal(t, HealthMedium, s.FinancialHealth)

	_, err = ParseSummary([]byte("financial_health: great\n"))
	assert.Error(t, err)
	_, err = ParseSummary([]byte("period: March 2023\n"))
	assert.ErrorContains(t, err, "YYYY-MM")
	_, _, ok := s.Months()
	assert.False(t, ok, "no period")

	_, err = LoadSummary(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestCategoryTotals(t *testing.T) {
	records := []Expense{
		{Category: "Market", Amount: Money{Cents: 100}},
		{Category: "Kira", Amount: Money{Cents: 300}},
		{Category: "Market", Amount: Money{Cents: 200}},
		{Category: "Giyim", Amount: Money{Cents: 50}},
	}

	totals := CategoryTotals(records)
	require.Len(t, totals, 3)
	assert.Equal(t, CategoryAmount{Name: "Market", Amount: Money{Cents: 300}}, totals[0])
	assert.Equal(t, "Kira", totals[1].Name)
	assert.Equal(t, Sum(records), SumTotals(totals))

	top, ok := TopCategory(totals)
	require.True(t, ok)
	assert.Equal(t, "Market", top.Name, "ties resolve to the first category seen")

	_, ok = TopCategory(nil)
	assert.False(t, ok)
}

func TestLatest(t *testing.T) {
	records := []Expense{
		{ID: 1, Date: NewDate(2023, 5, 10)},
		{ID: 2, Date: NewDate(2023, 5, 1)},
		{ID: 3, Date: NewDate(2023, 5, 10)},
	}
	last, ok := Latest(records)
	require.True(t, ok)
	assert.Equal(t, int64(3), last.ID)
	assert.Equal(t, int64(1), records[0].ID, "input order is left untouched")

	_, ok = Latest(nil)
	assert.False(t, ok)
}

func TestTaxSettingsAllows(t *testing.T) {
	var none *TaxSettings
	assert.True(t, none.Allows("anything"))

	ts := DefaultTaxSettings()
	assert.True(t, ts.Allows("sağlık"))
	assert.False(t, ts.Allows("Market"))
}

func TestGeneralSettingsDateLayout(t *testing.T) {
	assert.Equal(t, "02.01.2006", DefaultGeneralSettings().DateLayout())
	assert.Equal(t, "2006-01-02", GeneralSettings{Language: "en"}.DateLayout())
	assert.Equal(t, "01/02/2006", GeneralSettings{DateFormat: "MM/DD/YYYY"}.DateLayout())
}
