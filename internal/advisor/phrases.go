package advisor

import (
	"time"

	"fintech/internal/core"
)

const (
	langTurkish = "tr"
	langEnglish = "en"
)

// page is a navigation destination of the client application.
type page int

const (
	pageDashboard page = iota
	pageExpenses
	pageIncome
	pageTaxPlanning
)

var pageRoutes = map[page]string{
	pageDashboard:   "/",
	pageExpenses:    "/expenses",
	pageIncome:      "/income",
	pageTaxPlanning: "/tax-planning",
}

// categoryKind is one of the categories the assistant has dedicated answers for.
type categoryKind int

const (
	kindHealth categoryKind = iota
	kindMarket
	kindEducation
	kindBills
	kindTransport
)

// categoryLabels lists the record category names each kind answers for.
var categoryLabels = map[categoryKind][]string{
	kindHealth:    {"Sağlık", "Health"},
	kindMarket:    {"Market", "Groceries"},
	kindEducation: {"Eğitim", "Education"},
	kindBills:     {"Faturalar", "Bills"},
	kindTransport: {"Ulaşım", "Transport", "Transportation"},
}

type budgetLevel int

const (
	levelGood budgetLevel = iota
	levelHigh
	levelCritical
)

func levelFor(pct int64) budgetLevel {
	switch {
	case pct > 90:
		return levelCritical
	case pct > 75:
		return levelHigh
	default:
		return levelGood
	}
}

type adviceBand int

const (
	bandLow adviceBand = iota
	bandMedium
	bandHigh
)

// budgetUsage is the budget clause of a category answer.
type budgetUsage struct {
	Percent   string
	Remaining string
	Over      bool
	Level     budgetLevel
}

// categoryReport carries the pre-formatted figures of a category answer.
type categoryReport struct {
	Total      string
	Deductible string // empty when nothing in the category is deductible
	LastDate   string
	LastAmount string
	Budget     *budgetUsage
}

// growthClause describes a month-over-month change.
type growthClause struct {
	PreviousMonth string
	Sign          int
	Percent       string // absolute value
}

// phrasebook renders every answer in one language. All numbers arrive
// already formatted.
type phrasebook interface {
	month(t time.Time) string
	navigate(p page) string
	income(month, amount string, g growthClause) string
	monthlyExpense(month, amount string, g growthClause, topName, topAmount string) string
	savings(month, amount, rate, target string, onTarget bool) string
	health(level core.HealthLevel, rate, target string) string
	budgetStatus(lines []string) string
	budgetAdvice(high []string, nextTarget string) string
	categoryExpenses(k categoryKind, r categoryReport) string
	noCategoryRecords(k categoryKind) string
	investments(total, monthly, yearly string, allocation []string) string
	goals(items []string) string
	breakdown(items []string) string
	noCategorized() string
	balance(month, income, expenses, diff, pct string, positive bool) string
	totalExpense(amount, topName, topAmount, taxTotal string) string
	noExpenses() string
	taxDeduction(total string, breakdown []string, saving string, ineligible []string) string
	noTaxDeductible() string
	advice(b adviceBand) string
	categoryList(names []string) string
	greeting() string
	genericExpense(topName string) string
	genericIncome(month, amount string, g growthClause) string
	genericBudget(category, pct string) string
	genericInvestment(monthly string) string
	thanks() string
	help() string
	navigationHelp() string
	fallback() string
}

func phrasebookFor(lang string) phrasebook {
	if lang == langEnglish {
		return english{}
	}
	return turkish{}
}
