package shared

import "github.com/shopspring/decimal"

const (
	UserID = "user_id"

	// Session lifecycle
	StatusNotStarted = "NOT_STARTED"
	StatusActive     = "ACTIVE"
	StatusPaused     = "PAUSED"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"

	// Stock history operations
	OpPurchase   = "PURCHASE"
	OpSale       = "SALE"
	OpAdjustment = "ADJUSTMENT"
	OpLoss       = "LOSS"
	OpReturn     = "RETURN"

	// Balance history operations
	BalanceOpAdd      = "ADD"
	BalanceOpSubtract = "SUBTRACT"
	BalanceOpSet      = "SET"
	BalanceOpReset    = "RESET"

	// Transaction kinds
	TxIncome  = "INCOME"
	TxExpense = "EXPENSE"

	// Canonical transaction categories, created on first use
	CategorySales   = "Vendas"
	CategoryRestock = "Compras"
	CategoryPayroll = "Folha de Pagamento"

	// Payroll payment status
	PayrollPending   = "PENDING"
	PayrollPaid      = "PAID"
	PayrollCancelled = "CANCELLED"

	// Employment status
	EmploymentActive     = "ACTIVE"
	EmploymentInactive   = "INACTIVE"
	EmploymentOnLeave    = "ON_LEAVE"
	EmploymentTerminated = "TERMINATED"
)

// StartingBalance is the cash a player holds after a reset: R$ 10.000,00.
var StartingBalance = decimal.NewFromInt(10000)
