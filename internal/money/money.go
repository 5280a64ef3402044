package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Format renders an amount the way customers read prices in chat: two
// decimals with a comma separator, e.g. "$6,50".
func Format(d decimal.Decimal) string {
	return "$" + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

// Line returns price*quantity.
func Line(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}
