package money

import "strings"

var currencySymbols = map[string]string{
	"GBP": "£",
	"TRY": "₺",
	"USD": "$",
	"EUR": "€",
}

// CurrencySymbol returns the display symbol for an ISO currency code, "$" when unknown.
func CurrencySymbol(code string) string {
	if symbol, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return symbol
	}

	return "$"
}

// Format renders m for display with a currency symbol and thousands separators, e.g. "£1,234.56".
func (m Money) Format(symbol string) string {
	s := m.String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}

	return sign + symbol + grouped.String() + "." + fracPart
}
