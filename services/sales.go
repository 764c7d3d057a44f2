package services

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/gametime"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

// intraDayCap bounds how many auto-sales a single tick may emit, so a tab
// that was closed for a while catches up gradually instead of in one burst.
const intraDayCap = 3

// SalesService generates the automatic sales that keep the shop alive and
// records every sale event, manual or automatic, through one code path.
type SalesService struct {
	context.DefaultService

	sqlSvc        *PostgresService
	ledgerSvc     *LedgerService
	monitoringSvc *MonitoringService

	mu  sync.Mutex
	rng *rand.Rand
}

const SALES_SVC = "sales_svc"

func (svc *SalesService) Id() string {
	return SALES_SVC
}

func (svc *SalesService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *SalesService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	return nil
}

func (svc *SalesService) intn(n int) int {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.rng == nil {
		svc.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return svc.rng.Intn(n)
}

// sellableProducts snapshots the active products that still have stock.
func (svc *SalesService) sellableProducts(tx *gorm.DB) ([]model.Product, error) {
	var products []model.Product
	err := tx.Where("is_active = ? AND current_stock > 0", true).Find(&products).Error
	return products, err
}

// GenerateBulkDay emits one full game day of automatic sales for day:
// up to daily_sales_target distinct products, one aggregated income entry,
// one realtime event per sale while the market is open.
// Runs inside the tick transaction.
func (svc *SalesService) GenerateBulkDay(tx *gorm.DB, session *model.GameSession, day time.Time, timeOfDay gametime.TimeOfDay) (int, decimal.Decimal, error) {
	products, err := svc.sellableProducts(tx)
	if err != nil {
		return 0, decimal.Zero, err
	}
	if len(products) == 0 {
		return 0, decimal.Zero, nil
	}

	n := session.DailySalesTarget
	if n > len(products) {
		n = len(products)
	}

	svc.mu.Lock()
	if svc.rng == nil {
		svc.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	order := svc.rng.Perm(len(products))
	svc.mu.Unlock()

	sold := 0
	revenue := decimal.Zero
	dayLabel := day.Format("02/01/2006")

	for _, idx := range order[:n] {
		// Reload under lock: the snapshot may be stale by the time we sell.
		var product model.Product
		if err := withRowLock(tx).Where("id = ?", products[idx].ID).First(&product).Error; err != nil {
			return sold, revenue, err
		}
		if product.CurrentStock <= 0 {
			continue
		}

		maxQty := product.CurrentStock
		if maxQty > 5 {
			maxQty = 5
		}
		quantity := 1 + svc.intn(maxQty)

		unitPrice := product.CurrentPrice()
		total, err := svc.applySale(tx, &product, quantity, unitPrice, day,
			fmt.Sprintf("Venda automática - Dia %s", dayLabel))
		if err != nil {
			return sold, revenue, err
		}

		if gametime.MarketOpen(timeOfDay) {
			realtime := model.RealtimeSale{
				ID:            uuid.New().String(),
				GameSessionID: session.ID,
				ProductID:     product.ID,
				Quantity:      quantity,
				UnitPrice:     unitPrice,
				TotalValue:    total,
				SaleTime:      time.Now(),
				GameDate:      day,
				GameTime:      timeOfDay.String(),
			}
			if err := tx.Create(&realtime).Error; err != nil {
				return sold, revenue, err
			}
		}

		sold++
		revenue = revenue.Add(total)
	}

	if sold == 0 {
		return 0, decimal.Zero, nil
	}

	description := fmt.Sprintf("Vendas automáticas - %d produtos vendidos", sold)
	if _, err := svc.ledgerSvc.Credit(tx, session.UserID, revenue, description); err != nil {
		return sold, revenue, err
	}
	if _, err := svc.ledgerSvc.RecordTransaction(tx, session.UserID, shared.CategorySales,
		revenue, shared.TxIncome, description, day); err != nil {
		return sold, revenue, err
	}

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.AutoSalesGenerated(sold)
	}
	return sold, revenue, nil
}

// IntraDayTopUp drips sales through the open hours of the current game day
// until the count catches up with daily_sales_target * day progress.
// Runs inside the tick transaction; the session counter is persisted per
// event so a failure never replays sales already made.
func (svc *SalesService) IntraDayTopUp(tx *gorm.DB, session *model.GameSession, progress float64) (int, error) {
	return svc.topUp(tx, session, progress, gametime.TimeFromProgress(progress))
}

// topUp emits the sales still owed for the given game time. Stock and money
// always move; only the realtime event is suppressed while the market is
// closed.
func (svc *SalesService) topUp(tx *gorm.DB, session *model.GameSession, progress float64, timeOfDay gametime.TimeOfDay) (int, error) {
	expected := int(float64(session.DailySalesTarget) * progress)
	missing := expected - session.CurrentDaySalesCount
	if missing <= 0 {
		return 0, nil
	}
	if missing > intraDayCap {
		missing = intraDayCap
	}

	made := 0
	for i := 0; i < missing; i++ {
		products, err := svc.sellableProducts(tx)
		if err != nil {
			return made, err
		}
		if len(products) == 0 {
			break
		}

		pick := products[svc.intn(len(products))]

		var product model.Product
		if err := withRowLock(tx).Where("id = ?", pick.ID).First(&product).Error; err != nil {
			return made, err
		}
		if product.CurrentStock <= 0 {
			continue
		}

		maxQty := product.CurrentStock
		if maxQty > 3 {
			maxQty = 3
		}
		quantity := 1 + svc.intn(maxQty)
		unitPrice := product.CurrentPrice()

		total, err := svc.applySale(tx, &product, quantity, unitPrice, session.CurrentGameDate,
			fmt.Sprintf("Venda automática - Dia %s", session.CurrentGameDate.Format("02/01/2006")))
		if err != nil {
			return made, err
		}

		if gametime.MarketOpen(timeOfDay) {
			realtime := model.RealtimeSale{
				ID:            uuid.New().String(),
				GameSessionID: session.ID,
				ProductID:     product.ID,
				Quantity:      quantity,
				UnitPrice:     unitPrice,
				TotalValue:    total,
				SaleTime:      time.Now(),
				GameDate:      session.CurrentGameDate,
				GameTime:      timeOfDay.String(),
			}
			if err := tx.Create(&realtime).Error; err != nil {
				return made, err
			}
		}

		if _, err := svc.ledgerSvc.Credit(tx, session.UserID, total,
			fmt.Sprintf("Venda: %s", product.Name)); err != nil {
			return made, err
		}
		if _, err := svc.ledgerSvc.RecordTransaction(tx, session.UserID, shared.CategorySales,
			total, shared.TxIncome,
			fmt.Sprintf("Venda: %s (%dx)", product.Name, quantity),
			session.CurrentGameDate); err != nil {
			return made, err
		}

		// Persist the counter with the event so a crash never replays sales.
		session.CurrentDaySalesCount++
		if err := tx.Model(&model.GameSession{}).Where("id = ?", session.ID).
			Update("current_day_sales_count", session.CurrentDaySalesCount).Error; err != nil {
			return made, err
		}

		made++
	}

	if made > 0 && svc.monitoringSvc != nil {
		svc.monitoringSvc.AutoSalesGenerated(made)
	}
	return made, nil
}

// applySale decrements stock and appends the stock-history row for one sale.
// The product must already be locked by the caller.
func (svc *SalesService) applySale(tx *gorm.DB, product *model.Product, quantity int, unitPrice decimal.Decimal, gameDate time.Time, description string) (decimal.Decimal, error) {
	previous := product.CurrentStock
	product.CurrentStock -= quantity
	if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).
		Update("current_stock", product.CurrentStock).Error; err != nil {
		return decimal.Zero, err
	}

	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	history := model.ProductStockHistory{
		ID:            uuid.New().String(),
		ProductID:     product.ID,
		Operation:     shared.OpSale,
		Quantity:      quantity,
		PreviousStock: previous,
		NewStock:      product.CurrentStock,
		UnitPrice:     &unitPrice,
		TotalValue:    &total,
		Description:   description,
		GameDate:      gameDate,
	}
	if err := tx.Create(&history).Error; err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// SimulateSale is the manual sale endpoint: sells quantity units of one
// product at the current price and credits the revenue.
func (svc *SalesService) SimulateSale(userID string, req dto.SimulateSaleRequest) (*dto.SimulateSaleResponse, error) {
	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var resp *dto.SimulateSaleResponse
	err := svc.sqlSvc.Db().Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := withRowLock(tx).Where("id = ? AND is_active = ?", req.ProductID, true).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFoundError(err, "Produto não encontrado")
			}
			return err
		}

		if product.CurrentStock < req.Quantity {
			return shared.NewBadRequestError(nil,
				fmt.Sprintf("Estoque insuficiente. Disponível: %d", product.CurrentStock))
		}

		unitPrice := product.CurrentPrice()
		total, err := svc.applySale(tx, &product, req.Quantity, unitPrice, session.CurrentGameDate,
			fmt.Sprintf("Venda simulada: %dx %s", req.Quantity, product.Name))
		if err != nil {
			return err
		}

		txDescription := fmt.Sprintf("Venda: %s (%dx)", product.Name, req.Quantity)
		if _, err := svc.ledgerSvc.Credit(tx, userID, total, txDescription); err != nil {
			return err
		}
		if _, err := svc.ledgerSvc.RecordTransaction(tx, userID, shared.CategorySales,
			total, shared.TxIncome, txDescription, session.CurrentGameDate); err != nil {
			return err
		}

		productResp := dto.NewProductResponse(&product)
		resp = &dto.SimulateSaleResponse{
			Message:    fmt.Sprintf("Venda realizada: %dx %s", req.Quantity, product.Name),
			Product:    productResp,
			TotalValue: total,
		}
		return nil
	})
	if err != nil {
		if _, ok := shared.GetAppError(err); ok {
			return nil, err
		}
		return nil, shared.HandleDBError(err)
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"product_id": req.ProductID,
		"quantity":   req.Quantity,
	}).Info("Manual sale recorded")
	return resp, nil
}

// SalesSummary aggregates the session's sales: totals, the 10 most recent
// events and the 5 best sellers.
func (svc *SalesService) SalesSummary(userID string) (*dto.SalesSummaryResponse, error) {
	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	db := svc.sqlSvc.Db()

	var totalSales int64
	if err := db.Model(&model.ProductStockHistory{}).
		Where("operation = ? AND game_date >= ? AND game_date <= ?",
			shared.OpSale, session.GameStartDate, session.CurrentGameDate).
		Count(&totalSales).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var totalRevenue decimal.NullDecimal
	if err := db.Model(&model.ProductStockHistory{}).
		Where("operation = ? AND game_date >= ? AND game_date <= ?",
			shared.OpSale, session.GameStartDate, session.CurrentGameDate).
		Select("SUM(total_value)").Scan(&totalRevenue).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var recent []model.ProductStockHistory
	if err := db.Preload("Product").
		Where("operation = ?", shared.OpSale).
		Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var top []dto.TopProduct
	if err := db.Model(&model.ProductStockHistory{}).
		Select("products.name AS product_name, SUM(product_stock_histories.quantity) AS total_quantity, SUM(product_stock_histories.total_value) AS total_revenue").
		Joins("JOIN products ON products.id = product_stock_histories.product_id").
		Where("product_stock_histories.operation = ?", shared.OpSale).
		Group("products.name").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&top).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	resp := &dto.SalesSummaryResponse{
		TotalSales:  int(totalSales),
		RecentSales: make([]dto.StockHistoryEntry, 0, len(recent)),
		TopProducts: top,
	}
	if totalRevenue.Valid {
		resp.TotalRevenue = totalRevenue.Decimal
	}
	for i := range recent {
		resp.RecentSales = append(resp.RecentSales, dto.NewStockHistoryEntry(&recent[i]))
	}
	return resp, nil
}

// StockHistory lists a product's inventory motions, newest first.
func (svc *SalesService) StockHistory(productID string, limit int) ([]dto.StockHistoryEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []model.ProductStockHistory
	if err := svc.sqlSvc.Db().Preload("Product").
		Where("product_id = ?", productID).
		Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	entries := make([]dto.StockHistoryEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, dto.NewStockHistoryEntry(&rows[i]))
	}
	return entries, nil
}
