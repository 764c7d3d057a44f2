package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

func productStack(t *testing.T) (*gameStack, *ProductService) {
	t.Helper()
	s := newGameStack(t, testStart)
	s.seedCatalog(t)
	s.startGame(t, "user-1")
	return s, &ProductService{sqlSvc: &PostgresService{db: s.db}, ledgerSvc: s.ledger}
}

// fillAllStock raises every product to max_stock so restock tests can
// control exactly which products need topping up.
func fillAllStock(t *testing.T, s *gameStack) {
	t.Helper()
	if err := s.db.Model(&model.Product{}).Where("1 = 1").
		Update("current_stock", gorm.Expr("max_stock")).Error; err != nil {
		t.Fatal(err)
	}
}

func TestListProducts(t *testing.T) {
	s, products := productStack(t)

	all, err := products.ListProducts("")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(all) != 11 {
		t.Errorf("products = %d, want 11", len(all))
	}

	var bebidas model.ProductCategory
	if err := s.db.Where("name = ?", "Bebidas").First(&bebidas).Error; err != nil {
		t.Fatal(err)
	}
	drinks, err := products.ListProducts(bebidas.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(drinks) != 2 {
		t.Errorf("drinks = %d, want 2", len(drinks))
	}
}

func TestListCatalogLookups(t *testing.T) {
	_, products := productStack(t)

	categories, err := products.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 5 {
		t.Errorf("categories = %d, want 5", len(categories))
	}

	suppliers, err := products.ListSuppliers()
	if err != nil {
		t.Fatalf("ListSuppliers: %v", err)
	}
	if len(suppliers) != 3 {
		t.Errorf("suppliers = %d, want 3", len(suppliers))
	}
}

func TestLowAndOutOfStockListings(t *testing.T) {
	s, products := productStack(t)

	arroz := productByName(t, s, "Arroz Branco 5kg")
	agua := productByName(t, s, "Água Mineral 500ml")
	setStock(t, s, arroz.ID, 5) // min is 10
	setStock(t, s, agua.ID, 0)

	low, err := products.LowStockProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != 2 {
		t.Errorf("low stock products = %d, want 2 (zero stock is also low)", len(low))
	}

	out, err := products.OutOfStockProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].Name != "Água Mineral 500ml" {
		t.Errorf("out of stock = %+v, want only Água", out)
	}
}

func TestPurchaseAddsStockAndDebits(t *testing.T) {
	s, products := productStack(t)
	arroz := productByName(t, s, "Arroz Branco 5kg")

	resp, err := products.Purchase("user-1", arroz.ID, dto.PurchaseRequest{Quantity: 10})
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}

	want := decimal.RequireFromString("125.00") // 10 x 12.50 purchase price
	if !resp.TotalValue.Equal(want) {
		t.Errorf("total = %s, want %s", resp.TotalValue, want)
	}
	if p := productByName(t, s, "Arroz Branco 5kg"); p.CurrentStock != 60 {
		t.Errorf("stock = %d, want 60", p.CurrentStock)
	}

	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(decimal.RequireFromString("9875.00")) {
		t.Errorf("balance = %s, want 9875.00", balance.CurrentBalance)
	}

	var history model.ProductStockHistory
	if err := s.db.Where("product_id = ?", arroz.ID).First(&history).Error; err != nil {
		t.Fatal(err)
	}
	if history.Operation != shared.OpPurchase || history.NewStock != 60 {
		t.Errorf("history = %s -> %d", history.Operation, history.NewStock)
	}

	var tx model.Transaction
	if err := s.db.Where("user_id = ? AND transaction_type = ?", "user-1", shared.TxExpense).
		First(&tx).Error; err != nil {
		t.Fatal(err)
	}
	if !tx.Amount.Equal(want) {
		t.Errorf("expense transaction = %s, want %s", tx.Amount, want)
	}
}

func TestPurchaseRespectsMaxStock(t *testing.T) {
	s, products := productStack(t)
	arroz := productByName(t, s, "Arroz Branco 5kg") // 50/100

	_, err := products.Purchase("user-1", arroz.ID, dto.PurchaseRequest{Quantity: 60})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("err = %v, want 400", err)
	}
	if appErr.Message != "Quantidade excede o estoque máximo. Máximo permitido: 50" {
		t.Errorf("message = %q", appErr.Message)
	}
	if p := productByName(t, s, "Arroz Branco 5kg"); p.CurrentStock != 50 {
		t.Errorf("stock changed: %d", p.CurrentStock)
	}
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	s, products := productStack(t)
	arroz := productByName(t, s, "Arroz Branco 5kg")

	if _, err := s.ledger.SetBalance(s.db, "user-1", decimal.NewFromInt(5),
		shared.BalanceOpSet, "test"); err != nil {
		t.Fatal(err)
	}

	_, err := products.Purchase("user-1", arroz.ID, dto.PurchaseRequest{Quantity: 10})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("err = %v, want 400", err)
	}
	if appErr.Message != "Saldo insuficiente" {
		t.Errorf("message = %q", appErr.Message)
	}
	if p := productByName(t, s, "Arroz Branco 5kg"); p.CurrentStock != 50 {
		t.Errorf("stock changed on failed purchase: %d", p.CurrentStock)
	}
}

func TestRestockCost(t *testing.T) {
	s, products := productStack(t)
	fillAllStock(t, s)
	arroz := productByName(t, s, "Arroz Branco 5kg")
	setStock(t, s, arroz.ID, 0)

	resp, err := products.RestockCost()
	if err != nil {
		t.Fatalf("RestockCost: %v", err)
	}
	if resp.ProductsCount != 1 {
		t.Fatalf("products needing restock = %d, want 1", resp.ProductsCount)
	}
	item := resp.ProductsNeedingRestock[0]
	if item.QuantityNeeded != 100 {
		t.Errorf("quantity needed = %d, want 100", item.QuantityNeeded)
	}
	if resp.TotalCost != 1250.0 { // 100 x 12.50
		t.Errorf("total cost = %v, want 1250", resp.TotalCost)
	}
}

func TestRestockCoversMidStockProducts(t *testing.T) {
	s, products := productStack(t)
	fillAllStock(t, s)
	arroz := productByName(t, s, "Arroz Branco 5kg")
	setStock(t, s, arroz.ID, 40) // above min 10, below max 100

	resp, err := products.RestockCost()
	if err != nil {
		t.Fatalf("RestockCost: %v", err)
	}
	if resp.ProductsCount != 1 {
		t.Fatalf("products needing restock = %d, want 1 (mid-stock counts)", resp.ProductsCount)
	}
	if resp.ProductsNeedingRestock[0].QuantityNeeded != 60 {
		t.Errorf("quantity needed = %d, want 60", resp.ProductsNeedingRestock[0].QuantityNeeded)
	}

	if _, err := products.RestockAll("user-1"); err != nil {
		t.Fatalf("RestockAll: %v", err)
	}
	if p := productByName(t, s, "Arroz Branco 5kg"); p.CurrentStock != 100 {
		t.Errorf("stock = %d, want 100", p.CurrentStock)
	}

	// 60 x 12.50.
	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(decimal.RequireFromString("9250.00")) {
		t.Errorf("balance = %s, want 9250.00", balance.CurrentBalance)
	}
}

func TestRestockAllNothingNeeded(t *testing.T) {
	s, products := productStack(t)
	fillAllStock(t, s)

	// Full shelves make restock a successful no-op, as many times as asked.
	for i := 0; i < 2; i++ {
		resp, err := products.RestockAll("user-1")
		if err != nil {
			t.Fatalf("RestockAll: %v", err)
		}
		if resp.TotalCost != 0 || len(resp.RestockedProducts) != 0 {
			t.Errorf("no-op restock = %+v", resp)
		}
		if resp.NewBalance != 10000.0 {
			t.Errorf("balance = %v, want untouched", resp.NewBalance)
		}
	}

	var txs int64
	if err := s.db.Model(&model.Transaction{}).Count(&txs).Error; err != nil {
		t.Fatal(err)
	}
	if txs != 0 {
		t.Errorf("transactions = %d, want 0", txs)
	}
}

func TestRestockAllTopsUpToMax(t *testing.T) {
	s, products := productStack(t)
	fillAllStock(t, s)
	arroz := productByName(t, s, "Arroz Branco 5kg")
	papel := productByName(t, s, "Papel Higiênico 4 rolos")
	setStock(t, s, arroz.ID, 0)
	setStock(t, s, papel.ID, 2) // min 5, max 50

	resp, err := products.RestockAll("user-1")
	if err != nil {
		t.Fatalf("RestockAll: %v", err)
	}
	if len(resp.RestockedProducts) != 2 {
		t.Fatalf("restocked = %d, want 2", len(resp.RestockedProducts))
	}

	if p := productByName(t, s, "Arroz Branco 5kg"); p.CurrentStock != 100 {
		t.Errorf("Arroz stock = %d, want 100", p.CurrentStock)
	}
	if p := productByName(t, s, "Papel Higiênico 4 rolos"); p.CurrentStock != 50 {
		t.Errorf("Papel stock = %d, want 50", p.CurrentStock)
	}

	// 100 x 12.50 + 48 x 4.20 in one debit.
	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(decimal.RequireFromString("8548.40")) {
		t.Errorf("balance = %s, want 8548.40", balance.CurrentBalance)
	}

	var history model.BalanceHistory
	if err := s.db.Where("operation = ?", shared.BalanceOpSubtract).First(&history).Error; err != nil {
		t.Fatal(err)
	}
	if history.Description != "Reabastecimento de 2 produtos" {
		t.Errorf("debit description = %q", history.Description)
	}
}

func TestRestockAllShortfallChangesNothing(t *testing.T) {
	s, products := productStack(t)
	fillAllStock(t, s)
	arroz := productByName(t, s, "Arroz Branco 5kg")
	setStock(t, s, arroz.ID, 0)

	if _, err := s.ledger.SetBalance(s.db, "user-1", decimal.NewFromInt(100),
		shared.BalanceOpSet, "test"); err != nil {
		t.Fatal(err)
	}

	_, err := products.RestockAll("user-1")
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("err = %v, want 400", err)
	}
	shortfall, ok := appErr.Data.(dto.RestockShortfall)
	if !ok {
		t.Fatalf("error data = %T, want RestockShortfall", appErr.Data)
	}
	if shortfall.RequiredAmount != 1250.0 || shortfall.CurrentBalance != 100.0 || shortfall.Shortfall != 1150.0 {
		t.Errorf("shortfall = %+v", shortfall)
	}

	// Nothing moved.
	if p := productByName(t, s, "Arroz Branco 5kg"); p.CurrentStock != 0 {
		t.Errorf("stock = %d, want 0", p.CurrentStock)
	}
	balance, err := s.ledger.GetBalance("user-1")
	if err != nil {
		t.Fatal(err)
	}
	if !balance.CurrentBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("balance = %s, want 100", balance.CurrentBalance)
	}
}
