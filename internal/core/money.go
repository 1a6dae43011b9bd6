// Package core holds the domain model shared by the advisor, the record
// store and the HTTP layer.
//
// Amounts are kept as integer cents. Conversion from user and JSON input goes
// through shopspring/decimal so that "120.5", "120,50" and 120.5 all end up
// as exactly 12050 cents.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var hundred = decimal.NewFromInt(100)

// maxCents keeps Cents*100 style arithmetic far from int64 overflow.
const maxCents = (1<<63 - 1) / 100

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. Zero, negative and malformed
// values are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,34")  -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents, err := centsFromDecimal(d)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func centsFromDecimal(d decimal.Decimal) (int64, error) {
	c := d.Mul(hundred).Round(0)
	if c.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalidAmount
	}
	return c.IntPart(), nil
}

// NewMoney builds a Money value from a whole currency amount plus cents.
func NewMoney(units, cents int64) Money {
	return Money{Cents: units*100 + cents}
}

// MoneyFromDecimal rounds d half-up to whole cents.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	c, err := centsFromDecimal(d)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: c}, nil
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m+o.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Sub returns m-o.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.Cents == 0 }

// String renders the amount with a dot separator and no grouping, e.g. "120.5".
func (m Money) String() string {
	return m.Decimal().String()
}

// MarshalJSON writes the amount as a plain JSON number in currency units.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, string(data))
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// UnmarshalYAML reads a scalar such as 13500 or 3.2.
func (m *Money) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("%w: line %d: %q", ErrInvalidAmount, value.Line, value.Value)
	}
	v, err := MoneyFromDecimal(d)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Percent is a percentage figure such as a growth rate or a portfolio return.
type Percent struct {
	d decimal.Decimal
}

// NewPercent wraps a whole-number percentage.
func NewPercent(v int64) Percent { return Percent{d: decimal.NewFromInt(v)} }

// PercentFromDecimal wraps an arbitrary percentage.
func PercentFromDecimal(d decimal.Decimal) Percent { return Percent{d: d} }

// Decimal returns the raw percentage.
func (p Percent) Decimal() decimal.Decimal { return p.d }

// Rounded returns the percentage rounded half away from zero to an integer.
func (p Percent) Rounded() int64 { return p.d.Round(0).IntPart() }

// Sign returns -1, 0 or 1.
func (p Percent) Sign() int { return p.d.Sign() }

// UnmarshalYAML reads a scalar such as 26 or 12.5.
func (p *Percent) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(strings.TrimSpace(value.Value))
	if err != nil {
		return fmt.Errorf("invalid percentage at line %d: %q", value.Line, value.Value)
	}
	p.d = d
	return nil
}

// MarshalJSON writes the percentage as a JSON number.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.d.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (p *Percent) UnmarshalJSON(data []byte) error {
	return p.d.UnmarshalJSON(data)
}

// RoundedRatio returns round(part/whole*100), half-up for non-negative input.
// A zero whole yields 0.
func RoundedRatio(part, whole Money) int64 {
	if whole.Cents == 0 {
		return 0
	}
	return decimal.NewFromInt(part.Cents).
		Mul(hundred).
		Div(decimal.NewFromInt(whole.Cents)).
		Round(0).
		IntPart()
}

// Share returns p percent of m, rounded half-up to whole cents.
func (m Money) Share(p Percent) Money {
	return Money{Cents: decimal.NewFromInt(m.Cents).Mul(p.d).Div(hundred).Round(0).IntPart()}
}
