package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
}

// DefaultCategories holds the suggested categories per transaction type.
var DefaultCategories = map[TransactionType][]string{
	Expense: {
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Education",
		"Travel",
	},
	Income: {
		"Salary",
		"Freelance",
		"Investment",
		"Business",
		"Gift",
		"Other",
	},
}

// FormatCurrency renders amount with two decimals and thousands separators,
// e.g. "$1,234.50" or "CHF 12.00".
func FormatCurrency(amount decimal.Decimal, currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	neg := amount.IsNegative()
	s := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	body := groupThousands(intPart) + "." + frac

	prefix, ok := currencySymbols[currency]
	if !ok {
		prefix = currency + " "
	}
	if neg {
		return "-" + prefix + body
	}
	return prefix + body
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatPercentage renders value with the given number of decimals and a
// trailing percent sign.
func FormatPercentage(value float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f%%", decimals, value)
}
