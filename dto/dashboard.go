package dto

import "github.com/shopspring/decimal"

type BalanceInfo struct {
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	BalanceFormatted string          `json:"balance_formatted"`
}

type ProductStats struct {
	Total      int64 `json:"total"`
	LowStock   int64 `json:"low_stock"`
	OutOfStock int64 `json:"out_of_stock"`
}

type SalesStats struct {
	TotalSales   int             `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

type StockAlerts struct {
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
	HasAlerts       bool  `json:"has_alerts"`
}

type DashboardResponse struct {
	GameSession   GameSessionResponse    `json:"game_session"`
	Balance       BalanceInfo            `json:"balance"`
	Products      ProductStats           `json:"products"`
	Sales         SalesStats             `json:"sales"`
	StockAlerts   StockAlerts            `json:"stock_alerts"`
	RealtimeSales []RealtimeSaleResponse `json:"realtime_sales"`
}

type MonthlyProfit struct {
	Month             string          `json:"month"`
	Revenue           decimal.Decimal `json:"revenue"`
	Expenses          decimal.Decimal `json:"expenses"`
	Profit            decimal.Decimal `json:"profit"`
	RevenueFormatted  string          `json:"revenue_formatted"`
	ExpensesFormatted string          `json:"expenses_formatted"`
	ProfitFormatted   string          `json:"profit_formatted"`
}

type MonthlyProfitsResponse struct {
	Months []MonthlyProfit `json:"months"`
}
