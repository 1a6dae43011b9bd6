package core

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const periodLayout = "2006-01"

// HealthLevel is the three-valued financial health label.
type HealthLevel string

const (
	HealthGood       HealthLevel = "good"
	HealthMedium     HealthLevel = "medium"
	HealthImprovable HealthLevel = "improvable"
)

type (
	// BudgetLine is the monthly limit and usage of one category.
	BudgetLine struct {
		Category string `yaml:"category" json:"category"`
		Limit    Money  `yaml:"limit" json:"limit"`
		Used     Money  `yaml:"used" json:"used"`
	}

	// Allocation is the share of one asset class in the portfolio.
	Allocation struct {
		Asset   string  `yaml:"asset" json:"asset"`
		Percent Percent `yaml:"percent" json:"percent"`
	}

	Investments struct {
		Total         Money        `yaml:"total" json:"total"`
		MonthlyReturn Percent      `yaml:"monthly_return" json:"monthly_return"`
		YearlyReturn  Percent      `yaml:"yearly_return" json:"yearly_return"`
		Allocation    []Allocation `yaml:"allocation" json:"allocation"`
	}

	Goal struct {
		Name     string  `yaml:"name" json:"name"`
		Target   Money   `yaml:"target" json:"target"`
		Current  Money   `yaml:"current" json:"current"`
		Progress Percent `yaml:"progress" json:"progress"`
	}

	// FinancialSummary is the static reference dataset the assistant answers
	// income, savings, budget, investment and goal questions from. It is not
	// derived from the expense records.
	FinancialSummary struct {
		// Period is the summarised month as YYYY-MM. When set, answers name
		// the month in the reply language and the labels below are unused.
		Period                string       `yaml:"period" json:"period,omitempty"`
		CurrentMonth          string       `yaml:"current_month" json:"current_month"`
		PreviousMonth         string       `yaml:"previous_month" json:"previous_month"`
		MonthlyIncome         Money        `yaml:"monthly_income" json:"monthly_income"`
		MonthlyExpenses       Money        `yaml:"monthly_expenses" json:"monthly_expenses"`
		Savings               Money        `yaml:"savings" json:"savings"`
		TaxDeductible         Money        `yaml:"tax_deductible" json:"tax_deductible"`
		SavingsRate           Percent      `yaml:"savings_rate" json:"savings_rate"`
		TargetSavingsRate     Percent      `yaml:"target_savings_rate" json:"target_savings_rate"`
		PreviousMonthIncome   Money        `yaml:"previous_month_income" json:"previous_month_income"`
		PreviousMonthExpenses Money        `yaml:"previous_month_expenses" json:"previous_month_expenses"`
		IncomeGrowth          Percent      `yaml:"income_growth" json:"income_growth"`
		ExpenseGrowth         Percent      `yaml:"expense_growth" json:"expense_growth"`
		FinancialHealth       HealthLevel  `yaml:"financial_health" json:"financial_health"`
		Budgets               []BudgetLine `yaml:"budgets" json:"budgets"`
		Investments           Investments  `yaml:"investments" json:"investments"`
		Goals                 []Goal       `yaml:"goals" json:"goals"`
	}

	// CategoryAmount represents an amount aggregated by category name.
	CategoryAmount struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}
)

// Remaining is Limit-Used; it may be negative when the budget is exceeded.
func (b BudgetLine) Remaining() Money { return b.Limit.Sub(b.Used) }

// UsedPercent is round(used/limit*100).
func (b BudgetLine) UsedPercent() int64 { return RoundedRatio(b.Used, b.Limit) }

// Months returns the first day of the summarised month and of the month
// before it. ok is false when Period is unset.
func (s FinancialSummary) Months() (current, previous time.Time, ok bool) {
	t, err := time.Parse(periodLayout, s.Period)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return t, t.AddDate(0, -1, 0), true
}

// Budget returns the budget line for category, matched case-insensitively.
func (s FinancialSummary) Budget(category string) (BudgetLine, bool) {
	for _, b := range s.Budgets {
		if strings.EqualFold(b.Category, category) {
			return b, true
		}
	}
	return BudgetLine{}, false
}

//go:embed default_summary.yaml
var defaultSummaryYAML []byte

// DefaultSummary returns the built-in reference dataset.
func DefaultSummary() FinancialSummary {
	s, err := ParseSummary(defaultSummaryYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded summary: %v", err))
	}
	return s
}

// LoadSummary reads a summary YAML file. An empty path yields DefaultSummary.
func LoadSummary(path string) (FinancialSummary, error) {
	if path == "" {
		return DefaultSummary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return FinancialSummary{}, fmt.Errorf("reading summary: %w", err)
	}
	return ParseSummary(data)
}

// ParseSummary decodes and validates a summary document.
func ParseSummary(data []byte) (FinancialSummary, error) {
	var s FinancialSummary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return FinancialSummary{}, fmt.Errorf("parsing summary: %w", err)
	}
	switch s.FinancialHealth {
	case HealthGood, HealthMedium, HealthImprovable:
	case "":
		s.FinancialHealth = HealthGood
	default:
		return FinancialSummary{}, fmt.Errorf("parsing summary: unknown financial_health %q", s.FinancialHealth)
	}
	if s.Period != "" {
		if _, err := time.Parse(periodLayout, s.Period); err != nil {
			return FinancialSummary{}, fmt.Errorf("parsing summary: period %q is not YYYY-MM", s.Period)
		}
	}
	for _, b := range s.Budgets {
		if strings.TrimSpace(b.Category) == "" {
			return FinancialSummary{}, fmt.Errorf("parsing summary: budget line without category")
		}
	}
	return s, nil
}

// CategoryTotals sums amounts per category. Entries are ordered by the first
// appearance of each category in records.
func CategoryTotals(records []Expense) []CategoryAmount {
	idx := make(map[string]int)
	var out []CategoryAmount
	for _, r := range records {
		i, ok := idx[r.Category]
		if !ok {
			idx[r.Category] = len(out)
			out = append(out, CategoryAmount{Name: r.Category, Amount: r.Amount})
			continue
		}
		out[i].Amount = out[i].Amount.Add(r.Amount)
	}
	return out
}

// TopCategory returns the entry with the largest amount. Ties go to the entry
// that comes first.
func TopCategory(totals []CategoryAmount) (CategoryAmount, bool) {
	if len(totals) == 0 {
		return CategoryAmount{}, false
	}
	top := totals[0]
	for _, t := range totals[1:] {
		if t.Amount.Cents > top.Amount.Cents {
			top = t
		}
	}
	return top, true
}

// Sum adds up the amounts of records.
func Sum(records []Expense) Money {
	var total Money
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// SumTotals adds up the amounts of totals.
func SumTotals(totals []CategoryAmount) Money {
	var total Money
	for _, t := range totals {
		total = total.Add(t.Amount)
	}
	return total
}

// TaxDeductible returns the records flagged as tax deductible, in order.
func TaxDeductible(records []Expense) []Expense {
	var out []Expense
	for _, r := range records {
		if r.IsTaxDeductible {
			out = append(out, r)
		}
	}
	return out
}

// Latest returns the most recent record by date. Records sharing the latest
// date resolve to the one that comes last in the input.
func Latest(records []Expense) (Expense, bool) {
	if len(records) == 0 {
		return Expense{}, false
	}
	sorted := append([]Expense(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date.Time)
	})
	return sorted[len(sorted)-1], true
}
