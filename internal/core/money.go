// Package core provides money parsing and handling utilities.
//
// This file contains the amount cleaning applied to raw ledger cells and the
// currency formatting used for display totals.
package core

import (
	"strings"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code used for display formatting.
const DefaultCurrency = "INR"

// CleanAmount strips everything except digits and the decimal point.
//
// Examples:
//
//	CleanAmount("₹1,200.50") -> "1200.50"
//	CleanAmount("$ 12")      -> "12"
//	CleanAmount("n/a")       -> ""
func CleanAmount(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseAmount cleans a currency-decorated amount and parses it.
//
// Only strictly positive values are accepted. A second decimal point ends the
// number, so "1.2.3" reads as 1.2. Strings without digits return
// ErrInvalidAmount rather than zero.
func ParseAmount(s string) (float64, error) {
	cleaned := CleanAmount(s)
	if i := strings.IndexByte(cleaned, '.'); i >= 0 {
		if j := strings.IndexByte(cleaned[i+1:], '.'); j >= 0 {
			cleaned = cleaned[:i+1+j]
		}
	}
	if strings.Trim(cleaned, ".") == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// Formatter renders amounts in a single fixed currency with no decimals.
type Formatter struct {
	Currency string
}

// NewFormatter returns a formatter for the ISO currency code, falling back
// to DefaultCurrency when the code is unknown.
func NewFormatter(code string) Formatter {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || money.GetCurrency(code) == nil {
		code = DefaultCurrency
	}
	return Formatter{Currency: code}
}

// Format rounds half away from zero to whole units and renders with the
// currency symbol and thousands separators, e.g. "₹1,201" or "-₹250".
func (f Formatter) Format(amount float64) string {
	code := f.Currency
	cur := money.GetCurrency(code)
	if cur == nil {
		code = DefaultCurrency
		cur = money.GetCurrency(code)
	}
	minor := decimal.NewFromFloat(amount).Round(0).Shift(int32(cur.Fraction)).IntPart()
	out := money.New(minor, code).Display()
	if cur.Fraction > 0 {
		out = strings.TrimSuffix(out, cur.Decimal+strings.Repeat("0", cur.Fraction))
	}
	return out
}

// FormatCurrency formats an amount in DefaultCurrency.
func FormatCurrency(amount float64) string {
	return Formatter{Currency: DefaultCurrency}.Format(amount)
}
