package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/gametime"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

func productByName(t *testing.T, s *gameStack, name string) *model.Product {
	t.Helper()
	var product model.Product
	if err := s.db.Where("name = ?", name).First(&product).Error; err != nil {
		t.Fatalf("product %s: %v", name, err)
	}
	return &product
}

func setStock(t *testing.T, s *gameStack, productID string, stock int) {
	t.Helper()
	if err := s.db.Model(&model.Product{}).Where("id = ?", productID).
		Update("current_stock", stock).Error; err != nil {
		t.Fatal(err)
	}
}

func TestSimulateSale(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	arroz := productByName(t, s, "Arroz Branco 5kg")

	resp, err := s.sales.SimulateSale("user-1", dto.SimulateSaleRequest{
		ProductID: arroz.ID,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("SimulateSale: %v", err)
	}

	// 2 x 18.90 at the sale price.
	want := decimal.RequireFromString("37.80")
	if !resp.TotalValue.Equal(want) {
		t.Errorf("total = %s, want %s", resp.TotalValue, want)
	}
	if resp.Product.CurrentStock != 48 {
		t.Errorf("stock in response = %d, want 48", resp.Product.CurrentStock)
	}

	arroz = productByName(t, s, "Arroz Branco 5kg")
	if arroz.CurrentStock != 48 {
		t.Errorf("stock = %d, want 48", arroz.CurrentStock)
	}

	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(decimal.RequireFromString("10037.80")) {
		t.Errorf("balance = %s, want 10037.80", balance.CurrentBalance)
	}

	var history model.ProductStockHistory
	if err := s.db.Where("product_id = ?", arroz.ID).First(&history).Error; err != nil {
		t.Fatal(err)
	}
	if history.Operation != shared.OpSale || history.PreviousStock != 50 || history.NewStock != 48 {
		t.Errorf("history = %s %d->%d", history.Operation, history.PreviousStock, history.NewStock)
	}
}

func TestSimulateSaleInsufficientStock(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	bolo := productByName(t, s, "Bolo de Chocolate")
	setStock(t, s, bolo.ID, 2)

	_, err := s.sales.SimulateSale("user-1", dto.SimulateSaleRequest{
		ProductID: bolo.ID,
		Quantity:  5,
	})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("err = %v, want 400", err)
	}
	if appErr.Message != "Estoque insuficiente. Disponível: 2" {
		t.Errorf("message = %q", appErr.Message)
	}

	// Nothing moved.
	if p := productByName(t, s, "Bolo de Chocolate"); p.CurrentStock != 2 {
		t.Errorf("stock = %d, want 2", p.CurrentStock)
	}
	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(shared.StartingBalance) {
		t.Errorf("balance = %s, want untouched", balance.CurrentBalance)
	}
}

func TestSimulateSaleUnknownProduct(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	_, err := s.sales.SimulateSale("user-1", dto.SimulateSaleRequest{
		ProductID: "no-such-product",
		Quantity:  1,
	})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 404 {
		t.Fatalf("err = %v, want 404", err)
	}
}

func TestGenerateBulkDayAggregatesIncome(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	session := loadSession(t, s, "user-1")
	session.DailySalesTarget = 5
	day := session.CurrentGameDate.AddDate(0, 0, 1)

	sold, revenue, err := s.sales.GenerateBulkDay(s.db, session, day, gametime.TimeFromProgress(0.5))
	if err != nil {
		t.Fatalf("GenerateBulkDay: %v", err)
	}
	if sold != 5 {
		t.Errorf("sold = %d, want 5 (all seeded products have stock)", sold)
	}
	if !revenue.GreaterThan(decimal.Zero) {
		t.Errorf("revenue = %s, want > 0", revenue)
	}

	// One aggregated income transaction for the whole day.
	var txs []model.Transaction
	if err := s.db.Where("user_id = ?", "user-1").Find(&txs).Error; err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want 1", len(txs))
	}
	if txs[0].Description != "Vendas automáticas - 5 produtos vendidos" {
		t.Errorf("description = %q", txs[0].Description)
	}
	if !txs[0].Amount.Equal(revenue) {
		t.Errorf("transaction amount = %s, want %s", txs[0].Amount, revenue)
	}
	if !txs[0].TransactionDate.Equal(day) {
		t.Errorf("transaction date = %v, want %v", txs[0].TransactionDate, day)
	}

	// Five per-sale stock history rows, each dated to the bulk day.
	var histories []model.ProductStockHistory
	if err := s.db.Find(&histories).Error; err != nil {
		t.Fatal(err)
	}
	if len(histories) != 5 {
		t.Fatalf("stock history rows = %d, want 5", len(histories))
	}
	wantDesc := fmt.Sprintf("Venda automática - Dia %s", day.Format("02/01/2006"))
	for _, h := range histories {
		if h.Description != wantDesc {
			t.Errorf("history description = %q, want %q", h.Description, wantDesc)
		}
	}

	// Every bulk sale also lands on the realtime feed.
	var realtime []model.RealtimeSale
	if err := s.db.Find(&realtime).Error; err != nil {
		t.Fatal(err)
	}
	if len(realtime) != 5 {
		t.Fatalf("realtime sales = %d, want one per bulk sale", len(realtime))
	}
	for _, sale := range realtime {
		if !sale.GameDate.Equal(day) {
			t.Errorf("realtime game date = %v, want %v", sale.GameDate, day)
		}
		if sale.GameTime != "14:00:00" {
			t.Errorf("realtime game time = %s, want 14:00:00", sale.GameTime)
		}
	}

	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(shared.StartingBalance.Add(revenue)) {
		t.Errorf("balance = %s, want starting + %s", balance.CurrentBalance, revenue)
	}
}

func TestGenerateBulkDayWithEmptyShelves(t *testing.T) {
	s := newGameStack(t, testStart)
	s.startGame(t, "user-1") // no catalog

	session := loadSession(t, s, "user-1")
	sold, revenue, err := s.sales.GenerateBulkDay(s.db, session, session.CurrentGameDate, gametime.TimeFromProgress(0))
	if err != nil {
		t.Fatalf("GenerateBulkDay: %v", err)
	}
	if sold != 0 || !revenue.Equal(decimal.Zero) {
		t.Errorf("sold = %d revenue = %s, want nothing", sold, revenue)
	}
}

func TestIntraDayTopUpRespectsCap(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	session := loadSession(t, s, "user-1")

	made, err := s.sales.IntraDayTopUp(s.db, session, 0.5) // expected 20 sales
	if err != nil {
		t.Fatalf("IntraDayTopUp: %v", err)
	}
	if made != 3 {
		t.Errorf("made = %d, want 3 (cap)", made)
	}
	if session.CurrentDaySalesCount != 3 {
		t.Errorf("in-memory counter = %d, want 3", session.CurrentDaySalesCount)
	}

	// The counter is persisted per event, not with the session save.
	persisted := loadSession(t, s, "user-1")
	if persisted.CurrentDaySalesCount != 3 {
		t.Errorf("persisted counter = %d, want 3", persisted.CurrentDaySalesCount)
	}

	var realtime []model.RealtimeSale
	if err := s.db.Find(&realtime).Error; err != nil {
		t.Fatal(err)
	}
	if len(realtime) != 3 {
		t.Fatalf("realtime sales = %d, want 3", len(realtime))
	}
	for _, sale := range realtime {
		if sale.GameTime != "14:00:00" {
			t.Errorf("game time = %s, want 14:00:00 for half-day progress", sale.GameTime)
		}
	}

	// History rows carry the game date, not the product name.
	var histories []model.ProductStockHistory
	if err := s.db.Find(&histories).Error; err != nil {
		t.Fatal(err)
	}
	wantDesc := fmt.Sprintf("Venda automática - Dia %s", session.CurrentGameDate.Format("02/01/2006"))
	for _, h := range histories {
		if h.Description != wantDesc {
			t.Errorf("history description = %q, want %q", h.Description, wantDesc)
		}
	}
}

func TestTopUpOutsideBusinessWindow(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	session := loadSession(t, s, "user-1")

	// Stock and money still move before opening; only the feed stays silent.
	made, err := s.sales.topUp(s.db, session, 0.5, gametime.TimeOfDay{Hour: 3})
	if err != nil {
		t.Fatalf("topUp: %v", err)
	}
	if made != 3 {
		t.Errorf("made = %d, want 3", made)
	}

	var histories int64
	if err := s.db.Model(&model.ProductStockHistory{}).Count(&histories).Error; err != nil {
		t.Fatal(err)
	}
	if histories != 3 {
		t.Errorf("stock history rows = %d, want 3", histories)
	}

	var realtime int64
	if err := s.db.Model(&model.RealtimeSale{}).Count(&realtime).Error; err != nil {
		t.Fatal(err)
	}
	if realtime != 0 {
		t.Errorf("realtime sales = %d, want 0 before opening", realtime)
	}
}

func TestIntraDayTopUpNothingMissing(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	session := loadSession(t, s, "user-1")
	session.CurrentDaySalesCount = 10

	made, err := s.sales.IntraDayTopUp(s.db, session, 0.25) // expected 10, already there
	if err != nil {
		t.Fatalf("IntraDayTopUp: %v", err)
	}
	if made != 0 {
		t.Errorf("made = %d, want 0", made)
	}
}

func TestSalesSummary(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	arroz := productByName(t, s, "Arroz Branco 5kg")
	for i := 0; i < 2; i++ {
		if _, err := s.sales.SimulateSale("user-1", dto.SimulateSaleRequest{
			ProductID: arroz.ID,
			Quantity:  3,
		}); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := s.sales.SalesSummary("user-1")
	if err != nil {
		t.Fatalf("SalesSummary: %v", err)
	}
	if summary.TotalSales != 2 {
		t.Errorf("total sales = %d, want 2", summary.TotalSales)
	}
	want := decimal.RequireFromString("113.40") // 6 x 18.90
	if !summary.TotalRevenue.Equal(want) {
		t.Errorf("total revenue = %s, want %s", summary.TotalRevenue, want)
	}
	if len(summary.RecentSales) != 2 {
		t.Errorf("recent sales = %d, want 2", len(summary.RecentSales))
	}
	if len(summary.TopProducts) != 1 || summary.TopProducts[0].ProductName != "Arroz Branco 5kg" {
		t.Errorf("top products = %+v", summary.TopProducts)
	}
	if len(summary.TopProducts) == 1 && summary.TopProducts[0].TotalQuantity != 6 {
		t.Errorf("top product quantity = %d, want 6", summary.TopProducts[0].TotalQuantity)
	}
}

func TestStockHistoryLimit(t *testing.T) {
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")

	pao := productByName(t, s, "Pão Francês")
	for i := 0; i < 4; i++ {
		if _, err := s.sales.SimulateSale("user-1", dto.SimulateSaleRequest{
			ProductID: pao.ID,
			Quantity:  1,
		}); err != nil {
			t.Fatal(err)
		}
		// created_at ordering needs distinct timestamps on sqlite.
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := s.sales.StockHistory(pao.ID, 2)
	if err != nil {
		t.Fatalf("StockHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	// Newest first: the last sale took stock from 97 to 96.
	if entries[0].NewStock != 96 {
		t.Errorf("newest entry stock = %d, want 96", entries[0].NewStock)
	}
}
