package instruments

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a price with the symbol of its currency.
func FormatPrice(price decimal.Decimal, currency string) string {
	amount := price.StringFixed(2)
	switch code := strings.ToLower(currency); code {
	case "usd":
		return "$" + amount
	case "rub":
		return amount + " ₽"
	case "eur":
		return "€" + amount
	default:
		return amount + " " + code
	}
}
