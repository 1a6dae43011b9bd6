package advisor

// Topic names the rule that produced an answer.
type Topic string

const (
	TopicNavigation        Topic = "navigation"
	TopicIncome            Topic = "income"
	TopicMonthlyExpense    Topic = "monthly_expense"
	TopicSavings           Topic = "savings"
	TopicFinancialHealth   Topic = "financial_health"
	TopicBudgetStatus      Topic = "budget_status"
	TopicBudgetAdvice      Topic = "budget_advice"
	TopicHealthExpenses    Topic = "health_expenses"
	TopicMarketExpenses    Topic = "market_expenses"
	TopicInvestments       Topic = "investments"
	TopicGoals             Topic = "goals"
	TopicCategoryBreakdown Topic = "category_breakdown"
	TopicBalance           Topic = "income_expense_balance"
	TopicEducationExpenses Topic = "education_expenses"
	TopicBillsExpenses     Topic = "bills_expenses"
	TopicTransportExpenses Topic = "transport_expenses"
	TopicTotalExpense      Topic = "total_expense"
	TopicTaxDeduction      Topic = "tax_deduction"
	TopicAdvice            Topic = "advice"
	TopicCategoryList      Topic = "category_list"
	TopicGreeting          Topic = "greeting"
	TopicGenericExpense    Topic = "generic_expense"
	TopicGenericIncome     Topic = "generic_income"
	TopicGenericBudget     Topic = "generic_budget"
	TopicGenericInvestment Topic = "generic_investment"
	TopicThanks            Topic = "thanks"
	TopicHelp              Topic = "help"
	TopicNavigationHelp    Topic = "navigation_help"
	TopicFallback          Topic = "fallback"
)

// rule pairs a predicate with the builder that answers it.
type rule struct {
	topic Topic
	route string
	match predicate
	build func(*env) string
}

// Keyword groups. Turkish and English stems live side by side; the language
// setting only picks the phrasebook used for the answer.
var (
	monthly = either(anyOf("aylık", "month"), word("ay", "ayı", "ayın", "ayda"))
	income  = anyOf("gelir", "kazan", "maaş", "income", "salary", "earning")
	spend   = anyOf("harcama", "expense", "spend", "spent")
	outflow = either(spend, anyOf("gider"))
	budget  = anyOf("bütçe", "budget")
	advise  = anyOf("tavsiye", "öneri", "advice", "advise", "recommend", "suggest")
	categ   = anyOf("kategori", "categor")

	navVerb = either(anyOf("go to", "take me to", "navigate to", "switch to"), word("open"))

	// A message asking about monthly income is never a navigation request.
	monthlyIncomeQuery = allOf(anyOf("monthly"), anyOf("income"))
)

func navRule(p page, m predicate) rule {
	return rule{
		topic: TopicNavigation,
		route: pageRoutes[p],
		match: allOf(not(monthlyIncomeQuery), m),
		build: func(e *env) string { return e.book.navigate(p) },
	}
}

// rules is evaluated top to bottom and the first match wins. Multi-keyword
// topics come before the single-keyword generic ones they overlap with.
var rules = []rule{
	navRule(pageDashboard, either(anyOf("anasayfa", "ana sayfa"), allOf(navVerb, anyOf("dashboard", "home")), anyOf("dashboard'a", "dashboard sayfası"))),
	navRule(pageExpenses, either(anyOf("harcama sayfası", "harcamalar sayfası"), allOf(navVerb, anyOf("expenses", "expense page")))),
	navRule(pageIncome, either(anyOf("gelir sayfası", "gelirler sayfası"), allOf(navVerb, anyOf("income")))),
	navRule(pageTaxPlanning, either(anyOf("vergi planlaması", "vergi sayfası"), allOf(navVerb, anyOf("tax planning", "tax page")))),

	{topic: TopicIncome, match: allOf(monthly, income), build: buildIncome},
	{topic: TopicMonthlyExpense, match: allOf(monthly, outflow), build: buildMonthlyExpense},
	{topic: TopicSavings, match: anyOf("tasarruf", "birikim", "saving"), build: buildSavings},
	{topic: TopicFinancialHealth, match: allOf(anyOf("finansal", "financial"), anyOf("sağlık", "durum", "health", "status", "situation")), build: buildHealth},
	{topic: TopicBudgetStatus, match: allOf(budget, anyOf("durum", "kalan", "status", "remaining", "left")), build: buildBudgetStatus},
	{topic: TopicBudgetAdvice, match: allOf(budget, either(advise, word("tip", "tips"))), build: buildBudgetAdvice},
	{topic: TopicHealthExpenses, match: allOf(anyOf("sağlık", "health"), spend), build: categoryBuilder(kindHealth)},
	{topic: TopicMarketExpenses, match: allOf(anyOf("market", "grocer"), spend), build: categoryBuilder(kindMarket)},
	{topic: TopicInvestments, match: either(anyOf("yatırım", "invest"), allOf(anyOf("portföy", "portfolio"), not(spend))), build: buildInvestments},
	{topic: TopicGoals, match: allOf(anyOf("hedef", "amaç", "goal"), not(spend)), build: buildGoals},
	{topic: TopicCategoryBreakdown, match: allOf(categ, anyOf("analiz", "dağılım", "analy", "breakdown", "distribution")), build: buildBreakdown},
	{topic: TopicBalance, match: allOf(anyOf("gelir", "income"), anyOf("gider", "expense"), anyOf("denge", "fark", "karşılaştır", "balance", "difference", "compar")), build: buildBalance},
	{topic: TopicEducationExpenses, match: allOf(anyOf("eğitim", "education"), spend), build: categoryBuilder(kindEducation)},
	{topic: TopicBillsExpenses, match: allOf(anyOf("fatura", "bill"), either(spend, anyOf("ödeme", "payment", "paid"))), build: categoryBuilder(kindBills)},
	{topic: TopicTransportExpenses, match: allOf(anyOf("ulaşım", "transport"), spend), build: categoryBuilder(kindTransport)},
	{topic: TopicTotalExpense, match: allOf(anyOf("toplam", "total"), spend), build: buildTotalExpense},
	{topic: TopicTaxDeduction, match: allOf(anyOf("vergi", "tax"), anyOf("indirim", "deduct")), build: buildTaxDeduction},
	{topic: TopicAdvice, match: advise, build: buildAdvice},
	{topic: TopicCategoryList, match: allOf(categ, either(anyOf("hangi"), word("ne", "neler", "nedir", "what", "which"))), build: buildCategoryList},

	{topic: TopicGreeting, match: either(anyOf("merhaba", "selam", "hello"), word("hi", "hey")), build: func(e *env) string { return e.book.greeting() }},
	{topic: TopicGenericExpense, match: outflow, build: buildGenericExpense},
	{topic: TopicGenericIncome, match: income, build: buildGenericIncome},
	{topic: TopicGenericBudget, match: either(budget, anyOf("plan")), build: buildGenericBudget},
	{topic: TopicGenericInvestment, match: anyOf("borsa", "stock"), build: buildGenericInvestment},
	{topic: TopicThanks, match: anyOf("teşekkür", "sağol", "sağ ol", "thank"), build: func(e *env) string { return e.book.thanks() }},
	{topic: TopicHelp, match: either(anyOf("nasıl", "yardım", "help"), word("how")), build: func(e *env) string { return e.book.help() }},
	{topic: TopicNavigationHelp, match: anyOf("sayfasına git", "sayfaya git", "which page", "navigate"), build: func(e *env) string { return e.book.navigationHelp() }},
}
