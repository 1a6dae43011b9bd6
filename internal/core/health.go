package core

import "github.com/shopspring/decimal"

// HealthCategory grades a HealthReport score.
type HealthCategory string

const (
	HealthExcellent HealthCategory = "excellent"
	HealthFine      HealthCategory = "good"
	HealthFair      HealthCategory = "fair"
	HealthPoor      HealthCategory = "poor"
)

// Component weights. The summary carries no balance or debt figures, so the
// emergency fund and debt components are left out and the score is scaled
// over the remaining maximum.
var (
	cashflowWeight = decimal.NewFromInt(25)
	savingsWeight  = decimal.NewFromInt(25)
	growthWeight   = decimal.NewFromInt(10)
	healthMax      = cashflowWeight.Add(savingsWeight).Add(growthWeight)

	// ratios at which a component earns its full weight
	cashflowTarget = decimal.RequireFromString("1.5")
	savingsTarget  = decimal.RequireFromString("0.2")
	growthTarget   = decimal.RequireFromString("0.2")
	half           = decimal.RequireFromString("0.5")

	// a budget with at most this share of its limit left is flagged
	budgetAlertShare = decimal.RequireFromString("0.2")
)

type HealthMetrics struct {
	CashflowRatio float64 `json:"cashflow_ratio"`
	SavingsRatio  float64 `json:"savings_ratio"`
	IncomeGrowth  float64 `json:"income_growth"`
}

type HealthComponents struct {
	Cashflow float64 `json:"cashflow"`
	Savings  float64 `json:"savings"`
	Growth   float64 `json:"growth"`
}

// HealthReport scores the financial summary from 0 to 100.
type HealthReport struct {
	Score      int64            `json:"score"`
	Category   HealthCategory   `json:"category"`
	Level      HealthLevel      `json:"level"`
	Metrics    HealthMetrics    `json:"metrics"`
	Components HealthComponents `json:"components"`
	// BudgetAlerts names the budgets with 20% or less of their limit left.
	BudgetAlerts []string `json:"budget_alerts"`
}

// AnalyzeHealth scores s on cash flow (income over expenses, full marks at
// 1.5), savings rate (full marks at 20%) and income growth (half marks at
// zero growth, full marks at 10% and above).
func AnalyzeHealth(s FinancialSummary) HealthReport {
	income := s.MonthlyIncome.Decimal()
	expenses := s.MonthlyExpenses.Decimal()

	cashflow := decimal.Zero
	switch {
	case expenses.Sign() > 0:
		cashflow = income.Div(expenses)
	case income.Sign() > 0:
		cashflow = cashflowTarget
	}
	savings := decimal.Zero
	if income.Sign() > 0 {
		savings = decimal.Max(decimal.Zero, income.Sub(expenses)).Div(income)
	}
	growth := s.IncomeGrowth.Decimal().Div(hundred)

	cashflowScore := cashflowWeight.Mul(decimal.Min(cashflow.Div(cashflowTarget), decimal.NewFromInt(1)))
	savingsScore := savingsWeight.Mul(decimal.Min(savings.Div(savingsTarget), decimal.NewFromInt(1)))
	growthScore := growthWeight.Mul(half.Add(decimal.Min(growth.Div(growthTarget), half)))
	growthScore = decimal.Max(decimal.Zero, growthScore)

	total := cashflowScore.Add(savingsScore).Add(growthScore)
	score := total.Mul(hundred).Div(healthMax).Round(0).IntPart()

	r := HealthReport{
		Score:    score,
		Category: healthCategory(score),
		Level:    s.FinancialHealth,
		Metrics: HealthMetrics{
			CashflowRatio: cashflow.Round(4).InexactFloat64(),
			SavingsRatio:  savings.Round(4).InexactFloat64(),
			IncomeGrowth:  growth.Round(4).InexactFloat64(),
		},
		Components: HealthComponents{
			Cashflow: cashflowScore.Round(2).InexactFloat64(),
			Savings:  savingsScore.Round(2).InexactFloat64(),
			Growth:   growthScore.Round(2).InexactFloat64(),
		},
		BudgetAlerts: []string{},
	}
	for _, b := range s.Budgets {
		if b.Remaining().Decimal().LessThanOrEqual(b.Limit.Decimal().Mul(budgetAlertShare)) {
			r.BudgetAlerts = append(r.BudgetAlerts, b.Category)
		}
	}
	return r
}

func healthCategory(score int64) HealthCategory {
	switch {
	case score >= 80:
		return HealthExcellent
	case score >= 60:
		return HealthFine
	case score >= 40:
		return HealthFair
	}
	return HealthPoor
}
