package shared

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{"zero", "0", "R$ 0,00"},
		{"small", "12", "R$ 12,00"},
		{"cents", "0.75", "R$ 0,75"},
		{"thousands", "1234.56", "R$ 1.234,56"},
		{"millions", "1000000", "R$ 1.000.000,00"},
		{"negative", "-1234.5", "R$ -1.234,50"},
		{"rounding to two places", "9.999", "R$ 10,00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tt.amount)
			if got := FormatBRL(amount); got != tt.want {
				t.Errorf("FormatBRL(%s) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatBRLSigned(t *testing.T) {
	amount := decimal.RequireFromString("500.25")

	if got := FormatBRLSigned(amount, TxIncome); got != "R$ +500,25" {
		t.Errorf("income = %q, want %q", got, "R$ +500,25")
	}
	if got := FormatBRLSigned(amount, TxExpense); got != "R$ -500,25" {
		t.Errorf("expense = %q, want %q", got, "R$ -500,25")
	}
}
