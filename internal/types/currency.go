package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"mxn": "MX$",
	"ars": "AR$",
	"cop": "COL$",
	"clp": "CLP$",
	"pen": "S/",
	"brl": "R$",
	"uyu": "$U",
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[code]; ok {
		return symbol
	}
	return code
}

// FormatAmount renders a money amount for human-readable descriptions and
// receipts, e.g. `$1500.00`.
func FormatAmount(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s%s", GetCurrencySymbol(currency), amount.StringFixed(2))
}
