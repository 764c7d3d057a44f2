package services

import (
	"context"
	"sort"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

// dashboardCacheTTL keeps polling clients off the database; the snapshot is
// at most this stale.
const dashboardCacheTTL = 2 * time.Second

// DashboardService composes the polling snapshot the frontend renders every
// few seconds: session, balance, stock alerts and the realtime sales feed.
type DashboardService struct {
	appContext.DefaultService

	sqlSvc    *PostgresService
	ledgerSvc *LedgerService
	gameSvc   *GameService
	redisSvc  *RedisService
}

const DASHBOARD_SVC = "dashboard_svc"

func (svc DashboardService) Id() string {
	return DASHBOARD_SVC
}

func (svc *DashboardService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *DashboardService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.gameSvc = svc.Service(GAME_SVC).(*GameService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

// DashboardData advances game time, then returns the full snapshot. Cached
// briefly in Redis because the frontend polls it aggressively.
func (svc *DashboardService) DashboardData(userID string) (*dto.DashboardResponse, error) {
	cacheKey := "dashboard:" + userID
	ctx := context.Background()

	if svc.redisSvc != nil {
		var cached dto.DashboardResponse
		if hit, err := svc.redisSvc.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	if _, err := svc.gameSvc.Tick(userID); err != nil {
		return nil, err
	}

	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	balance, err := svc.ledgerSvc.EnsureBalance(userID)
	if err != nil {
		return nil, err
	}

	db := svc.sqlSvc.Db()

	var products dto.ProductStats
	if err := db.Model(&model.Product{}).Where("is_active = ?", true).
		Count(&products.Total).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if err := db.Model(&model.Product{}).
		Where("is_active = ? AND current_stock <= min_stock AND current_stock > 0", true).
		Count(&products.LowStock).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if err := db.Model(&model.Product{}).
		Where("is_active = ? AND current_stock <= 0", true).
		Count(&products.OutOfStock).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var totalSales int64
	if err := db.Model(&model.RealtimeSale{}).
		Where("game_session_id = ?", session.ID).
		Count(&totalSales).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	var totalRevenue decimal.NullDecimal
	if err := db.Model(&model.RealtimeSale{}).
		Where("game_session_id = ?", session.ID).
		Select("SUM(total_value)").Scan(&totalRevenue).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	// The feed shows only the current game day, newest game time first.
	var realtime []model.RealtimeSale
	if err := db.Preload("Product").
		Where("game_session_id = ? AND game_date = ?", session.ID, session.CurrentGameDate).
		Order("game_time DESC").Limit(20).Find(&realtime).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	resp := &dto.DashboardResponse{
		GameSession: dto.NewGameSessionResponse(&session),
		Balance: dto.BalanceInfo{
			CurrentBalance:   balance.CurrentBalance,
			BalanceFormatted: shared.FormatBRL(balance.CurrentBalance),
		},
		Products: products,
		Sales: dto.SalesStats{
			TotalSales: int(totalSales),
		},
		StockAlerts: dto.StockAlerts{
			LowStockCount:   products.LowStock,
			OutOfStockCount: products.OutOfStock,
			HasAlerts:       products.LowStock > 0 || products.OutOfStock > 0,
		},
		RealtimeSales: make([]dto.RealtimeSaleResponse, 0, len(realtime)),
	}
	if totalRevenue.Valid {
		resp.Sales.TotalRevenue = totalRevenue.Decimal
	}
	for i := range realtime {
		resp.RealtimeSales = append(resp.RealtimeSales, dto.NewRealtimeSaleResponse(&realtime[i]))
	}

	if svc.redisSvc != nil {
		if err := svc.redisSvc.Set(ctx, cacheKey, resp, dashboardCacheTTL); err != nil {
			log.WithError(err).Debug("Failed to cache dashboard snapshot")
		}
	}
	return resp, nil
}

// MonthlyProfits aggregates the transaction log per game month. Grouping
// happens in Go so the query stays dialect-neutral.
func (svc *DashboardService) MonthlyProfits(userID string) (*dto.MonthlyProfitsResponse, error) {
	var transactions []model.Transaction
	if err := svc.sqlSvc.Db().
		Where("user_id = ?", userID).
		Order("transaction_date ASC").
		Find(&transactions).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	type bucket struct {
		revenue  decimal.Decimal
		expenses decimal.Decimal
	}
	buckets := map[string]*bucket{}
	for i := range transactions {
		t := &transactions[i]
		key := t.TransactionDate.Format("2006-01")
		b, ok := buckets[key]
		if !ok {
			b = &bucket{revenue: decimal.Zero, expenses: decimal.Zero}
			buckets[key] = b
		}
		switch t.TransactionType {
		case shared.TxIncome:
			b.revenue = b.revenue.Add(t.Amount)
		case shared.TxExpense:
			b.expenses = b.expenses.Add(t.Amount)
		}
	}

	months := make([]string, 0, len(buckets))
	for key := range buckets {
		months = append(months, key)
	}
	sort.Strings(months)

	resp := &dto.MonthlyProfitsResponse{Months: make([]dto.MonthlyProfit, 0, len(months))}
	for _, key := range months {
		b := buckets[key]
		profit := b.revenue.Sub(b.expenses)
		resp.Months = append(resp.Months, dto.MonthlyProfit{
			Month:             key,
			Revenue:           b.revenue,
			Expenses:          b.expenses,
			Profit:            profit,
			RevenueFormatted:  shared.FormatBRL(b.revenue),
			ExpensesFormatted: shared.FormatBRL(b.expenses),
			ProfitFormatted:   shared.FormatBRL(profit),
		})
	}
	return resp, nil
}

// Balance returns the user's cash position.
func (svc *DashboardService) Balance(userID string) (*dto.BalanceInfo, error) {
	balance, err := svc.ledgerSvc.EnsureBalance(userID)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceInfo{
		CurrentBalance:   balance.CurrentBalance,
		BalanceFormatted: shared.FormatBRL(balance.CurrentBalance),
	}, nil
}
