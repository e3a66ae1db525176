// Package format renders monetary amounts for API responses.
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

// Money pairs the fixed-point wire value with a localised display string.
type Money struct {
	Amount  string `json:"amount"`
	Display string `json:"display"`
}

// MoneyFormatter formats amounts in one currency for one locale.
type MoneyFormatter struct {
	printer *message.Printer
	unit    currency.Unit
	symbol  string
	scale   int
}

// NewMoneyFormatter parses the BCP 47 locale and ISO 4217 currency code.
func NewMoneyFormatter(locale, code string) (*MoneyFormatter, error) {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		return nil, fmt.Errorf("format: parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("format: parse currency %q: %w", code, err)
	}
	printer := message.NewPrinter(tag)
	scale, _ := currency.Standard.Rounding(unit)
	return &MoneyFormatter{
		printer: printer,
		unit:    unit,
		symbol:  printer.Sprint(currency.Symbol(unit)),
		scale:   scale,
	}, nil
}

// Currency returns the ISO code.
func (f *MoneyFormatter) Currency() string { return f.unit.String() }

// Display renders the amount with the locale's grouping and the currency symbol.
func (f *MoneyFormatter) Display(amount decimal.Decimal) string {
	rounded := amount.Round(int32(f.scale))
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	digits := f.printer.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(f.scale)))
	return sign + f.symbol + digits
}

// Money rounds to the currency's minor unit and renders both forms.
func (f *MoneyFormatter) Money(amount decimal.Decimal) Money {
	return Money{
		Amount:  amount.StringFixed(int32(f.scale)),
		Display: f.Display(amount),
	}
}
