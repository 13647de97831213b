package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders prices and counts for one locale and currency.
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
	unit    currency.Unit
	scale   int
}

type symbolStyle struct {
	symbol string
	suffix bool
}

var symbols = map[string]symbolStyle{
	"VND": {symbol: "₫", suffix: true},
	"JPY": {symbol: "¥"},
	"USD": {symbol: "$"},
	"EUR": {symbol: "€"},
}

// New builds a formatter. locale is a BCP 47 tag such as "vi" or "en-US"; currencyCode an ISO 4217
// code.
func New(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("format: locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(currencyCode)))
	if err != nil {
		return nil, fmt.Errorf("format: currency %q: %w", currencyCode, err)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return &Formatter{
		tag:     tag,
		printer: message.NewPrinter(tag),
		unit:    unit,
		scale:   scale,
	}, nil
}

// MustNew is New for static configuration; it panics on error.
func MustNew(locale, currencyCode string) *Formatter {
	f, err := New(locale, currencyCode)
	if err != nil {
		panic(err)
	}
	return f
}

// Lang returns the locale for the html lang attribute.
func (f *Formatter) Lang() string {
	return f.tag.String()
}

// Currency returns the ISO code.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Price formats amount with grouping and the currency symbol, e.g. "1,350,000 ₫" for en/VND.
func (f *Formatter) Price(amount decimal.Decimal) string {
	value, _ := amount.Round(int32(f.scale)).Float64()
	digits := f.printer.Sprint(number.Decimal(value, number.Scale(f.scale)))

	code := f.unit.String()
	style, ok := symbols[code]
	switch {
	case !ok:
		return code + " " + digits
	case style.suffix:
		return digits + " " + style.symbol
	default:
		return style.symbol + digits
	}
}

// Count formats an integer with locale grouping.
func (f *Formatter) Count(n int) string {
	return f.printer.Sprint(number.Decimal(n))
}

// PriceInput renders a bound for an <input type="number"> value attribute.
func PriceInput(amount *decimal.Decimal) string {
	if amount == nil {
		return ""
	}
	return amount.String()
}
