package core

import "strings"

// TaxSettings controls which categories are eligible for tax deduction.
// A nil *TaxSettings allows every category.
type TaxSettings struct {
	AllowedCategories           []string `json:"allowedCategories"`
	DefaultTaxRate              Percent  `json:"defaultTaxRate"`
	ShowTaxDeductionOnDashboard bool     `json:"showTaxDeductionOnDashboard"`
	AutomaticTaxCalculation     bool     `json:"automaticTaxCalculation"`
}

// Allows reports whether category is eligible for deduction.
func (t *TaxSettings) Allows(category string) bool {
	if t == nil {
		return true
	}
	for _, c := range t.AllowedCategories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// GeneralSettings are display preferences.
type GeneralSettings struct {
	CurrencySymbol      string `json:"currencySymbol"`
	Language            string `json:"language"`
	DateFormat          string `json:"dateFormat"`
	Theme               string `json:"theme"`
	EnableNotifications bool   `json:"enableNotifications"`
	ShowChatBot         bool   `json:"showChatBot"`
}

// WithDefaults fills empty fields.
func (g GeneralSettings) WithDefaults() GeneralSettings {
	if g.CurrencySymbol == "" {
		g.CurrencySymbol = "₺"
	}
	if g.Language == "" {
		g.Language = "tr"
	}
	if g.DateFormat == "" {
		if g.Language == "tr" {
			g.DateFormat = "DD.MM.YYYY"
		} else {
			g.DateFormat = "YYYY-MM-DD"
		}
	}
	if g.Theme == "" {
		g.Theme = "light"
	}
	return g
}

// DateLayout converts the DD/MM/YYYY style DateFormat into a Go layout.
func (g GeneralSettings) DateLayout() string {
	f := g.WithDefaults().DateFormat
	r := strings.NewReplacer("YYYY", "2006", "YY", "06", "MM", "01", "DD", "02")
	return r.Replace(f)
}

// DefaultTaxSettings mirrors what a fresh installation starts with.
func DefaultTaxSettings() TaxSettings {
	return TaxSettings{
		AllowedCategories:           []string{"Eğitim", "Sağlık", "Ulaşım", "Faturalar"},
		DefaultTaxRate:              NewPercent(18),
		ShowTaxDeductionOnDashboard: true,
		AutomaticTaxCalculation:     true,
	}
}

// DefaultGeneralSettings mirrors what a fresh installation starts with.
func DefaultGeneralSettings() GeneralSettings {
	return GeneralSettings{
		CurrencySymbol:      "₺",
		Language:            "tr",
		DateFormat:          "DD.MM.YYYY",
		Theme:               "light",
		EnableNotifications: true,
		ShowChatBot:         true,
	}
}

// DefaultCategories is the initial category list.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Market", Color: "#2E7D32", Icon: "CategoryIcon"},
		{Name: "Faturalar", Color: "#1976D2", Icon: "CategoryIcon"},
		{Name: "Ulaşım", Color: "#673AB7", Icon: "CategoryIcon"},
		{Name: "Eğlence", Color: "#F57C00", Icon: "CategoryIcon"},
		{Name: "Sağlık", Color: "#00796B", Icon: "CategoryIcon"},
		{Name: "Eğitim", Color: "#9C27B0", Icon: "CategoryIcon"},
		{Name: "Kira", Color: "#D32F2F", Icon: "CategoryIcon"},
		{Name: "Giyim", Color: "#FFC107", Icon: "CategoryIcon"},
		{Name: "Diğer", Color: "#607D8B", Icon: "CategoryIcon"},
	}
}

// DemoExpenses is sample data for a new installation.
func DemoExpenses() []Expense {
	e := func(id int64, day int, units, cents int64, cat, desc string, tax bool) Expense {
		return Expense{
			ID:              id,
			Date:            NewDate(2023, 5, day),
			Amount:          NewMoney(units, cents),
			Category:        cat,
			Description:     desc,
			IsTaxDeductible: tax,
		}
	}
	return []Expense{
		e(1, 1, 120, 50, "Market", "Haftalık alışveriş", false),
		e(2, 2, 45, 75, "Ulaşım", "Benzin", true),
		e(3, 3, 89, 99, "Eğlence", "Sinema bileti", false),
		e(4, 5, 250, 0, "Faturalar", "Elektrik faturası", true),
		e(5, 10, 1200, 0, "Kira", "Mayıs kirası", false),
		e(6, 12, 75, 50, "Market", "Haftalık alışveriş", false),
		e(7, 15, 120, 0, "Sağlık", "İlaç", true),
		e(8, 18, 45, 0, "Ulaşım", "Taksi", false),
		e(9, 20, 89, 90, "Giyim", "Tişört", false),
		e(10, 25, 180, 0, "Faturalar", "İnternet faturası", true),
	}
}
