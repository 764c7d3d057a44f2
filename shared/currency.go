package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatBRL renders a decimal as Brazilian currency: "R$ 1.234,56".
// Thousands are separated with '.', decimals with ',', always two places.
// Negative values keep the sign in front of the amount: "R$ -1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString("R$ ")
	if negative {
		b.WriteByte('-')
	}

	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)

	return b.String()
}

// FormatBRLSigned prefixes income with '+' and expenses with '-', used by
// transaction listings on the dashboard.
func FormatBRLSigned(amount decimal.Decimal, txType string) string {
	formatted := FormatBRL(amount.Abs())
	if txType == TxExpense {
		return strings.Replace(formatted, "R$ ", "R$ -", 1)
	}
	return strings.Replace(formatted, "R$ ", "R$ +", 1)
}
