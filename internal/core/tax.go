package core

// TaxBracket taxes the part of taxable income between Min and Max at Rate.
// A zero Max leaves the bracket open-ended.
type TaxBracket struct {
	Min  Money   `json:"min"`
	Max  Money   `json:"max"`
	Rate Percent `json:"rate"`
}

// DefaultTaxBrackets are the progressive income tax brackets the estimate
// uses unless told otherwise.
func DefaultTaxBrackets() []TaxBracket {
	return []TaxBracket{
		{Min: NewMoney(0, 0), Max: NewMoney(32000, 0), Rate: NewPercent(15)},
		{Min: NewMoney(32000, 0), Max: NewMoney(70000, 0), Rate: NewPercent(20)},
		{Min: NewMoney(70000, 0), Max: NewMoney(250000, 0), Rate: NewPercent(27)},
		{Min: NewMoney(250000, 0), Max: NewMoney(880000, 0), Rate: NewPercent(35)},
		{Min: NewMoney(880000, 0), Rate: NewPercent(40)},
	}
}

// BracketTax is the share of income one bracket taxed.
type BracketTax struct {
	TaxBracket
	Amount Money `json:"amount"`
	Tax    Money `json:"tax"`
}

// IncomeTaxEstimate is the outcome of EstimateIncomeTax.
type IncomeTaxEstimate struct {
	AnnualIncome  Money        `json:"annual_income"`
	Deductions    Money        `json:"deductions"`
	TaxableIncome Money        `json:"taxable_income"`
	TotalTax      Money        `json:"total_tax"`
	EffectiveRate Percent      `json:"effective_rate"`
	NetIncome     Money        `json:"net_income"`
	Brackets      []BracketTax `json:"brackets"`
}

// EstimateIncomeTax applies brackets, lowest first, to income less
// deductions. Taxable income never drops below zero. The effective rate is
// relative to the gross income and rounded to two decimals.
func EstimateIncomeTax(income, deductions Money, brackets []TaxBracket) IncomeTaxEstimate {
	est := IncomeTaxEstimate{
		AnnualIncome:  income,
		Deductions:    deductions,
		TaxableIncome: income.Sub(deductions),
		Brackets:      []BracketTax{},
	}
	if est.TaxableIncome.Cents < 0 {
		est.TaxableIncome = Money{}
	}

	remaining := est.TaxableIncome
	for _, b := range brackets {
		if remaining.Cents <= 0 {
			break
		}
		amount := remaining
		if !b.Max.IsZero() {
			if width := b.Max.Sub(b.Min); width.Cents < amount.Cents {
				amount = width
			}
		}
		tax := amount.Share(b.Rate)
		est.Brackets = append(est.Brackets, BracketTax{TaxBracket: b, Amount: amount, Tax: tax})
		est.TotalTax = est.TotalTax.Add(tax)
		remaining = remaining.Sub(amount)
	}

	est.NetIncome = income.Sub(est.TotalTax)
	if income.Cents > 0 {
		est.EffectiveRate = PercentFromDecimal(
			est.TotalTax.Decimal().Mul(hundred).Div(income.Decimal()).Round(2))
	}
	return est
}
