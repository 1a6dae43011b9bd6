package advisor

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"fintech/internal/core"
)

// formatter renders numbers and dates for one language.
type formatter struct {
	grouping   string // humanize integer format
	decimalSep string
	symbol     string
	dateLayout string
	percentFmt string
}

func newFormatter(s core.GeneralSettings) formatter {
	s = s.WithDefaults()
	f := formatter{
		grouping:   "#.###,",
		decimalSep: ",",
		symbol:     s.CurrencySymbol,
		dateLayout: s.DateLayout(),
		percentFmt: "%%%d",
	}
	if s.Language == langEnglish {
		f.grouping = "#,###."
		f.decimalSep = "."
		f.percentFmt = "%d%%"
	}
	return f
}

// number renders m with thousands grouping. Cents are shown only when non-zero
// and without trailing zeros, so 120.50 becomes "120,5".
func (f formatter) number(m core.Money) string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	out := sign + humanize.FormatInteger(f.grouping, int(cents/100))
	if frac := cents % 100; frac != 0 {
		out += f.decimalSep + strings.TrimRight(fmt.Sprintf("%02d", frac), "0")
	}
	return out
}

// money renders m followed by the currency symbol.
func (f formatter) money(m core.Money) string {
	return f.number(m) + " " + f.symbol
}

func (f formatter) percent(p int64) string {
	return fmt.Sprintf(f.percentFmt, p)
}

func (f formatter) date(d core.Date) string {
	return d.Format(f.dateLayout)
}
