// Package money formats amounts for people to read. Stored amounts keep full precision and are
// only rounded here.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DefaultSymbol = "Rs."

type Formatter struct {
	symbol  string
	printer *message.Printer
}

func NewFormatter(symbol string) *Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}

	return &Formatter{symbol: symbol, printer: message.NewPrinter(language.English)}
}

// Format renders v with grouping and two decimals, e.g. Rs.1,234.50.
func (f *Formatter) Format(v decimal.Decimal) string {
	return f.symbol + f.Plain(v)
}

// Plain is Format without the currency symbol.
func (f *Formatter) Plain(v decimal.Decimal) string {
	return f.printer.Sprintf("%v", number.Decimal(
		v.Round(2).InexactFloat64(),
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

func (f *Formatter) Symbol() string {
	return f.symbol
}
