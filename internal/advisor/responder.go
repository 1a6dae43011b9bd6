// Package advisor answers free-text finance questions from the user's records
// and the reference summary.
//
// Matching is a fixed, ordered list of keyword rules: the first rule whose
// predicate holds builds the answer. Answers are deterministic for a given
// message and Context.
package advisor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"fintech/internal/core"
)

// Context is the data an answer is built from. TaxSettings may be nil, in
// which case every category is eligible for deduction.
type Context struct {
	Records     []core.Expense
	Summary     core.FinancialSummary
	TaxSettings *core.TaxSettings
	Settings    core.GeneralSettings
}

// Answer is a reply text plus the rule that produced it. Route is set only for
// navigation answers.
type Answer struct {
	Text  string `json:"text"`
	Topic Topic  `json:"topic"`
	Route string `json:"route,omitempty"`
}

// Responder is the rule-based query responder. The zero value is ready to use.
type Responder struct{}

// New returns a Responder.
func New() *Responder { return &Responder{} }

// Respond returns the answer text for msg.
func (r *Responder) Respond(msg string, c Context) string {
	return r.Answer(msg, c).Text
}

// Answer matches msg against the rule list and builds the reply. It never
// panics; an internal failure yields the fallback answer.
func (r *Responder) Answer(msg string, c Context) (a Answer) {
	e := newEnv(c)
	defer func() {
		if p := recover(); p != nil {
			slog.Error("advisor rule panicked", "panic", p, "topic", a.Topic)
			a = Answer{Text: e.book.fallback(), Topic: TopicFallback}
		}
	}()

	m := newMessage(msg)
	for _, rl := range rules {
		a.Topic = rl.topic
		if !rl.match(m) {
			continue
		}
		return Answer{Text: rl.build(e), Topic: rl.topic, Route: rl.route}
	}
	return Answer{Text: e.book.fallback(), Topic: TopicFallback}
}

// Fallback returns the text given for unrecognized questions in lang.
func Fallback(lang string) string {
	return phrasebookFor(lang).fallback()
}

// env is the per-call state shared by the builders.
type env struct {
	Context
	book phrasebook
	f    formatter
}

func newEnv(c Context) *env {
	s := c.Settings.WithDefaults()
	c.Settings = s
	return &env{Context: c, book: phrasebookFor(s.Language), f: newFormatter(s)}
}

// totals is computed per call so answers always reflect the current records.
func (e *env) totals() []core.CategoryAmount {
	return core.CategoryTotals(e.Records)
}

// currentMonth names the summarised month in the reply language, falling
// back to the summary's own label.
func (e *env) currentMonth() string {
	if cur, _, ok := e.Summary.Months(); ok {
		return e.book.month(cur)
	}
	return e.Summary.CurrentMonth
}

func (e *env) previousMonth() string {
	if _, prev, ok := e.Summary.Months(); ok {
		return e.book.month(prev)
	}
	return e.Summary.PreviousMonth
}

func (e *env) growth(p core.Percent) growthClause {
	return growthClause{
		PreviousMonth: e.previousMonth(),
		Sign:          p.Sign(),
		Percent:       e.f.percent(p.Decimal().Abs().Round(0).IntPart()),
	}
}

func buildIncome(e *env) string {
	return e.book.income(e.currentMonth(), e.f.money(e.Summary.MonthlyIncome), e.growth(e.Summary.IncomeGrowth))
}

func buildMonthlyExpense(e *env) string {
	var name, amount string
	if top, ok := core.TopCategory(e.totals()); ok {
		name, amount = top.Name, e.f.money(top.Amount)
	}
	return e.book.monthlyExpense(e.currentMonth(), e.f.money(e.Summary.MonthlyExpenses),
		e.growth(e.Summary.ExpenseGrowth), name, amount)
}

func buildSavings(e *env) string {
	s := e.Summary
	onTarget := s.SavingsRate.Decimal().GreaterThanOrEqual(s.TargetSavingsRate.Decimal())
	return e.book.savings(e.currentMonth(), e.f.money(s.Savings),
		e.f.percent(s.SavingsRate.Rounded()), e.f.percent(s.TargetSavingsRate.Rounded()), onTarget)
}

func buildHealth(e *env) string {
	s := e.Summary
	return e.book.health(s.FinancialHealth, e.f.percent(s.SavingsRate.Rounded()), e.f.percent(s.TargetSavingsRate.Rounded()))
}

func buildBudgetStatus(e *env) string {
	lines := make([]string, 0, len(e.Summary.Budgets))
	for _, b := range e.Summary.Budgets {
		lines = append(lines, fmt.Sprintf("%s: %s / %s (%s)",
			b.Category, e.f.money(b.Used), e.f.money(b.Limit), e.f.percent(b.UsedPercent())))
	}
	return e.book.budgetStatus(lines)
}

// approachThreshold is the used percentage from which a budget counts as
// close to its limit.
const approachThreshold = 80

func buildBudgetAdvice(e *env) string {
	var high []string
	for _, b := range e.Summary.Budgets {
		if pct := b.UsedPercent(); pct >= approachThreshold {
			high = append(high, fmt.Sprintf("%s (%s)", b.Category, e.f.percent(pct)))
		}
	}
	return e.book.budgetAdvice(high, e.f.percent(e.Summary.TargetSavingsRate.Rounded()+5))
}

func categoryBuilder(k categoryKind) func(*env) string {
	return func(e *env) string {
		var records []core.Expense
		for _, r := range e.Records {
			if matchesKind(k, r.Category) {
				records = append(records, r)
			}
		}
		last, ok := core.Latest(records)
		if !ok {
			return e.book.noCategoryRecords(k)
		}

		rep := categoryReport{
			Total:      e.f.money(core.Sum(records)),
			LastDate:   e.f.date(last.Date),
			LastAmount: e.f.money(last.Amount),
		}
		if d := core.Sum(core.TaxDeductible(records)); d.Cents > 0 {
			rep.Deductible = e.f.money(d)
		}
		for _, label := range categoryLabels[k] {
			b, ok := e.Summary.Budget(label)
			if !ok {
				continue
			}
			remaining := b.Remaining()
			over := remaining.Cents < 0
			if over {
				remaining = core.Money{Cents: -remaining.Cents}
			}
			rep.Budget = &budgetUsage{
				Percent:   e.f.percent(b.UsedPercent()),
				Remaining: e.f.money(remaining),
				Over:      over,
				Level:     levelFor(b.UsedPercent()),
			}
			break
		}
		return e.book.categoryExpenses(k, rep)
	}
}

func matchesKind(k categoryKind, category string) bool {
	for _, label := range categoryLabels[k] {
		if strings.EqualFold(label, category) {
			return true
		}
	}
	return false
}

func buildInvestments(e *env) string {
	inv := e.Summary.Investments
	alloc := make([]string, 0, len(inv.Allocation))
	for _, a := range inv.Allocation {
		alloc = append(alloc, fmt.Sprintf("%s: %s", a.Asset, e.f.percent(a.Percent.Rounded())))
	}
	return e.book.investments(e.f.money(inv.Total),
		e.f.percent(inv.MonthlyReturn.Rounded()), e.f.percent(inv.YearlyReturn.Rounded()), alloc)
}

func buildGoals(e *env) string {
	items := make([]string, 0, len(e.Summary.Goals))
	for _, g := range e.Summary.Goals {
		items = append(items, fmt.Sprintf("%s: %s / %s (%s)",
			g.Name, e.f.money(g.Current), e.f.money(g.Target), e.f.percent(g.Progress.Rounded())))
	}
	return e.book.goals(items)
}

func buildBreakdown(e *env) string {
	totals := e.totals()
	if len(totals) == 0 {
		return e.book.noCategorized()
	}
	all := core.SumTotals(totals)
	items := make([]string, 0, len(totals))
	for _, t := range totals {
		items = append(items, fmt.Sprintf("%s: %s (%s)", t.Name, e.f.money(t.Amount), e.f.percent(core.RoundedRatio(t.Amount, all))))
	}
	return e.book.breakdown(items)
}

func buildBalance(e *env) string {
	s := e.Summary
	diff := s.MonthlyIncome.Sub(s.MonthlyExpenses)
	return e.book.balance(e.currentMonth(), e.f.money(s.MonthlyIncome), e.f.money(s.MonthlyExpenses),
		e.f.money(diff), e.f.percent(core.RoundedRatio(diff, s.MonthlyIncome)), diff.Cents > 0)
}

func buildTotalExpense(e *env) string {
	top, ok := core.TopCategory(e.totals())
	if !ok {
		return e.book.noExpenses()
	}
	deductible := core.Sum(core.TaxDeductible(e.Records))
	return e.book.totalExpense(e.f.money(e.Summary.MonthlyExpenses), top.Name, e.f.money(top.Amount), e.f.money(deductible))
}

// buildTaxDeduction reports every record flagged as deductible. Tax settings,
// when present, add an estimated saving and name flagged categories they do
// not allow.
func buildTaxDeduction(e *env) string {
	deductible := core.TaxDeductible(e.Records)
	if len(deductible) == 0 {
		return e.book.noTaxDeductible()
	}
	totals := core.CategoryTotals(deductible)
	total := core.SumTotals(totals)

	breakdown := make([]string, 0, len(totals))
	var ineligible []string
	for _, t := range totals {
		breakdown = append(breakdown, fmt.Sprintf("%s: %s", t.Name, e.f.money(t.Amount)))
		if !e.TaxSettings.Allows(t.Name) {
			ineligible = append(ineligible, t.Name)
		}
	}

	var saving string
	if ts := e.TaxSettings; ts != nil && ts.DefaultTaxRate.Sign() > 0 {
		amount := total.Decimal().Mul(ts.DefaultTaxRate.Decimal()).Div(decimal.NewFromInt(100))
		if m, err := core.MoneyFromDecimal(amount); err == nil {
			saving = e.f.money(m)
		}
	}
	return e.book.taxDeduction(e.f.money(total), breakdown, saving, ineligible)
}

var (
	lowSavings    = decimal.NewFromInt(10)
	mediumSavings = decimal.NewFromInt(20)
)

func buildAdvice(e *env) string {
	rate := e.Summary.SavingsRate.Decimal()
	switch {
	case rate.LessThan(lowSavings):
		return e.book.advice(bandLow)
	case rate.LessThan(mediumSavings):
		return e.book.advice(bandMedium)
	default:
		return e.book.advice(bandHigh)
	}
}

func buildCategoryList(e *env) string {
	totals := e.totals()
	if len(totals) == 0 {
		return e.book.noCategorized()
	}
	names := make([]string, 0, len(totals))
	for _, t := range totals {
		names = append(names, t.Name)
	}
	return e.book.categoryList(names)
}

func buildGenericExpense(e *env) string {
	top, _ := core.TopCategory(e.totals())
	return e.book.genericExpense(top.Name)
}

func buildGenericIncome(e *env) string {
	return e.book.genericIncome(e.currentMonth(), e.f.money(e.Summary.MonthlyIncome), e.growth(e.Summary.IncomeGrowth))
}

// buildGenericBudget quotes the usage of the first budget line.
func buildGenericBudget(e *env) string {
	if len(e.Summary.Budgets) == 0 {
		return e.book.genericBudget("", "")
	}
	b := e.Summary.Budgets[0]
	return e.book.genericBudget(b.Category, e.f.percent(b.UsedPercent()))
}

func buildGenericInvestment(e *env) string {
	return e.book.genericInvestment(e.f.percent(e.Summary.Investments.MonthlyReturn.Rounded()))
}
