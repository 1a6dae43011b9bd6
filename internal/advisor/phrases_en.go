package advisor

import (
	"fmt"
	"strings"
	"time"

	"fintech/internal/core"
)

type english struct{}

var enPages = map[page]string{
	pageDashboard:   "Dashboard",
	pageExpenses:    "Expenses",
	pageIncome:      "Income",
	pageTaxPlanning: "Tax Planning",
}

func (english) month(t time.Time) string { return t.Format("January 2006") }

func (english) navigate(p page) string {
	return fmt.Sprintf("Taking you to the %s page.", enPages[p])
}

func (english) growth(g growthClause) string {
	switch {
	case g.Sign > 0:
		return fmt.Sprintf("That is an increase of %s compared to %s.", g.Percent, g.PreviousMonth)
	case g.Sign < 0:
		return fmt.Sprintf("That is a decrease of %s compared to %s.", g.Percent, g.PreviousMonth)
	default:
		return fmt.Sprintf("That is the same level as %s.", g.PreviousMonth)
	}
}

func (e english) income(month, amount string, g growthClause) string {
	return fmt.Sprintf("Your total income for %s is %s. %s You can view and manage your income in detail on the \"Income\" page.",
		month, amount, e.growth(g))
}

func (e english) monthlyExpense(month, amount string, g growthClause, topName, topAmount string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your total spending for %s is %s. %s", month, amount, e.growth(g))
	if topName != "" {
		fmt.Fprintf(&b, "\nYour highest spending category is \"%s\" (%s).", topName, topAmount)
	}
	b.WriteString(" You can view and manage your expenses in detail on the \"Expenses\" page.")
	return b.String()
}

func (english) savings(month, amount, rate, target string, onTarget bool) string {
	status := fmt.Sprintf("That is below your target savings rate of %s. Cutting expenses or raising income will lift your savings rate.", target)
	if onTarget {
		status = "That is above your target savings rate. Great job!"
	}
	return fmt.Sprintf("Your savings for %s are %s, a savings rate of %s. %s", month, amount, rate, status)
}

var enHealth = map[core.HealthLevel]string{
	core.HealthGood:       "Good",
	core.HealthMedium:     "Medium",
	core.HealthImprovable: "Improvable",
}

func (english) health(level core.HealthLevel, rate, target string) string {
	var advice string
	switch level {
	case core.HealthGood:
		advice = "Keep your current strategy and strengthen your emergency fund."
	case core.HealthMedium:
		advice = "Reduce your spending and raise your savings rate."
	default:
		advice = "Review your budget plan and cut unnecessary spending."
	}
	return fmt.Sprintf("Your financial health is rated \"%s\". Your monthly savings rate is %s against a target of %s. %s",
		enHealth[level], rate, target, advice)
}

func (english) budgetStatus(lines []string) string {
	return fmt.Sprintf("Your budget status:\n%s\n\nYou can review and edit your budget plan on the \"Budget\" page.",
		strings.Join(lines, ", "))
}

func (english) budgetAdvice(high []string, nextTarget string) string {
	advice := "You are under your budget limit in every category. Nicely managed!"
	if len(high) > 0 {
		advice = fmt.Sprintf("You are approaching your budget limit in these categories: %s. Consider cutting back there.",
			strings.Join(high, ", "))
	}
	return fmt.Sprintf("%s Setting next month's savings target to %s will get you to your goals faster.", advice, nextTarget)
}

type enCategory struct {
	period string
	noun   string
}

var enCategories = map[categoryKind]enCategory{
	kindHealth:    {"this year", "health"},
	kindMarket:    {"this month", "groceries"},
	kindEducation: {"this year", "education"},
	kindBills:     {"this month", "bills"},
	kindTransport: {"this month", "transport"},
}

var enLevels = map[budgetLevel]string{
	levelGood:     "in good shape",
	levelHigh:     "high",
	levelCritical: "critical",
}

func (english) categoryExpenses(k categoryKind, r categoryReport) string {
	c := enCategories[k]
	var b strings.Builder
	fmt.Fprintf(&b, "You have spent %s on %s %s.", r.Total, c.noun, c.period)
	if r.Deductible != "" {
		fmt.Fprintf(&b, " %s of it is tax deductible.", r.Deductible)
	}
	fmt.Fprintf(&b, " Your last %s expense was %s on %s.", c.noun, r.LastAmount, r.LastDate)
	if u := r.Budget; u != nil {
		fmt.Fprintf(&b, " You have used %s of your monthly budget for it, which is %s.", u.Percent, enLevels[u.Level])
		if u.Over {
			fmt.Fprintf(&b, " You are %s over budget in this category.", u.Remaining)
		} else {
			fmt.Fprintf(&b, " You have %s left in this category until the end of the month.", u.Remaining)
		}
	}
	return b.String()
}

func (english) noCategoryRecords(k categoryKind) string {
	return fmt.Sprintf("You have no %s expenses recorded yet. Go to the \"Expenses\" page to add one.", enCategories[k].noun)
}

func (english) investments(total, monthly, yearly string, allocation []string) string {
	return fmt.Sprintf("Your investment portfolio is worth %s. It returned %s over the last month and %s over the last year. Allocation: %s. You can manage your investments on the \"Investments\" page.",
		total, monthly, yearly, strings.Join(allocation, ", "))
}

func (english) goals(items []string) string {
	return fmt.Sprintf("Your financial goals:\n%s\n\nYou can review and edit your goals on the \"Goals\" page.", strings.Join(items, ", "))
}

func (english) breakdown(items []string) string {
	return fmt.Sprintf("Your spending by category:\n%s\n\nThe \"Dashboard\" page shows these figures as charts.", strings.Join(items, ", "))
}

func (english) noCategorized() string {
	return "You have no categorized expenses recorded yet. Go to the \"Expenses\" page to add one."
}

func (english) balance(month, income, expenses, diff, pct string, positive bool) string {
	flow := "Your cash flow is negative, consider reducing your spending."
	if positive {
		flow = "Your cash flow is positive."
	}
	return fmt.Sprintf("In %s you earned %s and spent %s. The difference is %s, which is %s of your income. %s",
		month, income, expenses, diff, pct, flow)
}

func (english) totalExpense(amount, topName, topAmount, taxTotal string) string {
	return fmt.Sprintf("You have spent %s in total this month. Your highest spending category is \"%s\" with %s. Your tax-deductible spending totals %s.",
		amount, topName, topAmount, taxTotal)
}

func (english) noExpenses() string {
	return "You have no expenses recorded yet. Go to the \"Expenses\" page to start tracking them."
}

func (english) taxDeduction(total string, breakdown []string, saving string, ineligible []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have %s of tax-deductible expenses. By category: %s.", total, strings.Join(breakdown, ", "))
	if saving != "" {
		fmt.Fprintf(&b, " At the default tax rate that is an estimated saving of %s.", saving)
	}
	if len(ineligible) > 0 {
		fmt.Fprintf(&b, " These categories are not eligible under your tax settings: %s.", strings.Join(ineligible, ", "))
	}
	b.WriteString(" To add a deductible expense, create it on the \"Expenses\" page and mark it as tax deductible.")
	return b.String()
}

func (english) noTaxDeductible() string {
	return "You have no tax-deductible expenses yet. Add expenses that qualify (education, health, donations) on the \"Expenses\" page and mark them as tax deductible."
}

func (english) advice(b adviceBand) string {
	switch b {
	case bandLow:
		return "To improve your finances, reduce your spending and raise your savings rate. Start with categories such as groceries and entertainment, and try to set aside at least 10% of your monthly income for an emergency fund."
	case bandMedium:
		return "Your finances are at a medium level. Review unneeded subscriptions and compare prices regularly. The analysis tools on the \"Budget\" page help you manage your budget."
	default:
		return "Your finances look good. Put your savings into a mix of investments to protect their value, review your retirement plan and focus on long-term goals. The \"Investments\" page lists suitable options."
	}
}

func (english) categoryList(names []string) string {
	return fmt.Sprintf("Your spending categories: %s. Ask something like \"How much did I spend on groceries?\" for details on any of them.",
		strings.Join(names, ", "))
}

func (english) greeting() string {
	return "Hello! I am your Fintech AI assistant. Ask me about your financial data, expenses, income, savings or investments."
}

func (english) genericExpense(topName string) string {
	top := ""
	if topName != "" {
		top = fmt.Sprintf(" Your highest spending category is \"%s\".", topName)
	}
	return fmt.Sprintf("You can view, add and edit your expenses on the \"Expenses\" page.%s Ask something like \"How much are my health expenses?\" for a specific category.", top)
}

func (e english) genericIncome(month, amount string, g growthClause) string {
	return fmt.Sprintf("You can manage your income on the \"Income\" page. Your income for %s is %s. %s", month, amount, e.growth(g))
}

func (english) genericBudget(category, pct string) string {
	usage := ""
	if category != "" {
		usage = fmt.Sprintf(" So far you have reached %s of your %s limit.", pct, category)
	}
	return fmt.Sprintf("Budget planning lets you set monthly spending limits.%s Ask \"What is my budget status?\" for details.", usage)
}

func (english) genericInvestment(monthly string) string {
	return fmt.Sprintf("You can follow your portfolio on the \"Investments\" page. It returned %s over the last month. Ask \"What is my investment portfolio?\" for details.", monthly)
}

func (english) thanks() string {
	return "You're welcome! Feel free to ask if you need help with anything else."
}

func (english) help() string {
	return "I'm here to help. Ask questions such as \"How is my financial health?\", \"What is my monthly income?\" or \"How much are my health expenses?\", or ask for investment advice."
}

func (english) navigationHelp() string {
	return "Tell me which page you want to open, for example \"go to the expenses page\" or \"go to the dashboard\"."
}

func (english) fallback() string {
	return "Sorry, I didn't quite understand. You can ask more specific questions about your financial data, expenses, income, investments or budget. For example \"What is my monthly income?\", \"How much are my health expenses?\", \"Analyze my financial status\" or \"Give me investment advice\"."
}
