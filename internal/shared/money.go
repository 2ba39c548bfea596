package shared

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var gbpPrinter = message.NewPrinter(language.BritishEnglish)

// FormatGBP renders an amount as sterling with grouped thousands and two
// decimal places, e.g. "£1,234.50".
func FormatGBP(amount float64) string {
	return gbpPrinter.Sprintf("%v", currency.Symbol(currency.GBP.Amount(amount)))
}
