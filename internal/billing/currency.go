package billing

import "fmt"

// CurrencyInfo describes a supported display currency. Currency is a display
// label only; no conversion happens anywhere.
type CurrencyInfo struct {
	Code   string
	Symbol string
	Name   string
}

var currencies = map[string]CurrencyInfo{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar"},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro"},
	"DKK": {Code: "DKK", Symbol: "kr", Name: "Danish Krone"},
}

// CurrencySymbol returns the display symbol, defaulting to USD for unknown
// codes.
func CurrencySymbol(code string) string {
	if info, ok := currencies[code]; ok {
		return info.Symbol
	}
	return currencies["USD"].Symbol
}

// FormatCurrency renders an amount with its symbol. DKK conventionally puts
// the symbol after the amount.
func FormatCurrency(amount float64, code string) string {
	info, ok := currencies[code]
	if !ok {
		info = currencies["USD"]
	}
	if info.Code == "DKK" {
		return fmt.Sprintf("%.2f %s", amount, info.Symbol)
	}
	return fmt.Sprintf("%s%.2f", info.Symbol, amount)
}
