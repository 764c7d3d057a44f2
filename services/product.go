package services

import (
	"errors"
	"fmt"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

// ProductService serves the catalog and the purchasing side of inventory.
// Sales-side stock motion lives in SalesService.
type ProductService struct {
	context.DefaultService

	sqlSvc    *PostgresService
	ledgerSvc *LedgerService
}

const PRODUCT_SVC = "product_svc"

func (svc ProductService) Id() string {
	return PRODUCT_SVC
}

func (svc *ProductService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *ProductService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	return nil
}

func (svc *ProductService) ListProducts(categoryID string) ([]dto.ProductResponse, error) {
	query := svc.sqlSvc.Db().Preload("Category").Preload("Supplier").
		Where("is_active = ?", true)
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var products []model.Product
	if err := query.Order("name ASC").Find(&products).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	responses := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, dto.NewProductResponse(&products[i]))
	}
	return responses, nil
}

func (svc *ProductService) GetProduct(productID string) (*dto.ProductResponse, error) {
	var product model.Product
	err := svc.sqlSvc.Db().Preload("Category").Preload("Supplier").
		Where("id = ?", productID).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Produto não encontrado")
		}
		return nil, shared.HandleDBError(err)
	}

	resp := dto.NewProductResponse(&product)
	return &resp, nil
}

func (svc *ProductService) ListCategories() ([]model.ProductCategory, error) {
	var categories []model.ProductCategory
	if err := svc.sqlSvc.Db().Where("is_active = ?", true).
		Order("name ASC").Find(&categories).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	return categories, nil
}

func (svc *ProductService) ListSuppliers() ([]model.Supplier, error) {
	var suppliers []model.Supplier
	if err := svc.sqlSvc.Db().Where("is_active = ?", true).
		Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	return suppliers, nil
}

// LowStockProducts lists active products at or below their minimum level.
func (svc *ProductService) LowStockProducts() ([]dto.ProductResponse, error) {
	var products []model.Product
	if err := svc.sqlSvc.Db().Preload("Category").Preload("Supplier").
		Where("is_active = ? AND current_stock <= min_stock", true).
		Order("current_stock ASC").Find(&products).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	responses := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, dto.NewProductResponse(&products[i]))
	}
	return responses, nil
}

func (svc *ProductService) OutOfStockProducts() ([]dto.ProductResponse, error) {
	var products []model.Product
	if err := svc.sqlSvc.Db().Preload("Category").Preload("Supplier").
		Where("is_active = ? AND current_stock <= 0", true).
		Order("name ASC").Find(&products).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	responses := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		responses = append(responses, dto.NewProductResponse(&products[i]))
	}
	return responses, nil
}

// Purchase buys stock for one product at the purchase price (or an explicit
// unit price). The resulting stock may never exceed max_stock and the cost
// may never overdraw the balance; either violation rejects the purchase.
func (svc *ProductService) Purchase(userID, productID string, req dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var resp *dto.PurchaseResponse
	err := svc.sqlSvc.Db().Transaction(func(tx *gorm.DB) error {
		var product model.Product
		if err := withRowLock(tx).Where("id = ? AND is_active = ?", productID, true).
			First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFoundError(err, "Produto não encontrado")
			}
			return err
		}

		newStock := product.CurrentStock + req.Quantity
		if newStock > product.MaxStock {
			return shared.NewBadRequestError(nil, fmt.Sprintf(
				"Quantidade excede o estoque máximo. Máximo permitido: %d",
				product.MaxStock-product.CurrentStock))
		}

		unitPrice := product.PurchasePrice
		if req.UnitPrice != nil {
			unitPrice = *req.UnitPrice
		}
		total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

		description := req.Description
		if description == "" {
			description = fmt.Sprintf("Compra: %s (%dx)", product.Name, req.Quantity)
		}

		if _, err := svc.ledgerSvc.Debit(tx, userID, total, description); err != nil {
			if errors.Is(err, ErrInsufficientFunds) {
				return shared.NewBadRequestError(err, "Saldo insuficiente")
			}
			return err
		}

		previous := product.CurrentStock
		product.CurrentStock = newStock
		if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).
			Update("current_stock", newStock).Error; err != nil {
			return err
		}

		history := model.ProductStockHistory{
			ID:            uuid.New().String(),
			ProductID:     product.ID,
			Operation:     shared.OpPurchase,
			Quantity:      req.Quantity,
			PreviousStock: previous,
			NewStock:      newStock,
			UnitPrice:     &unitPrice,
			TotalValue:    &total,
			Description:   description,
			GameDate:      session.CurrentGameDate,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		if _, err := svc.ledgerSvc.RecordTransaction(tx, userID, shared.CategoryRestock,
			total, shared.TxExpense, description, session.CurrentGameDate); err != nil {
			return err
		}

		productResp := dto.NewProductResponse(&product)
		resp = &dto.PurchaseResponse{
			Message:    fmt.Sprintf("Compra realizada: %dx %s", req.Quantity, product.Name),
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
		"product_id": productID,
		"quantity":   req.Quantity,
	}).Info("Stock purchased")
	return resp, nil
}

// restockNeeds lists every active product below max_stock with the quantity
// and cost to top it up.
func (svc *ProductService) restockNeeds(db *gorm.DB) ([]model.Product, []dto.RestockItemCost, decimal.Decimal, error) {
	var products []model.Product
	if err := db.Where("is_active = ? AND current_stock < max_stock", true).
		Order("name ASC").Find(&products).Error; err != nil {
		return nil, nil, decimal.Zero, err
	}

	items := make([]dto.RestockItemCost, 0, len(products))
	total := decimal.Zero
	for i := range products {
		p := &products[i]
		needed := p.MaxStock - p.CurrentStock
		if needed <= 0 {
			continue
		}
		cost := p.PurchasePrice.Mul(decimal.NewFromInt(int64(needed)))
		total = total.Add(cost)
		items = append(items, dto.RestockItemCost{
			ID:             p.ID,
			Name:           p.Name,
			CurrentStock:   p.CurrentStock,
			MaxStock:       p.MaxStock,
			QuantityNeeded: needed,
			UnitPrice:      p.PurchasePrice.InexactFloat64(),
			TotalCost:      cost.InexactFloat64(),
		})
	}
	return products, items, total, nil
}

// RestockCost prices a full restock without touching anything.
func (svc *ProductService) RestockCost() (*dto.RestockCostResponse, error) {
	_, items, total, err := svc.restockNeeds(svc.sqlSvc.Db())
	if err != nil {
		return nil, shared.HandleDBError(err)
	}
	return &dto.RestockCostResponse{
		TotalCost:              total.InexactFloat64(),
		ProductsCount:          len(items),
		ProductsNeedingRestock: items,
	}, nil
}

// RestockAll tops every product below max_stock up to it in one operation,
// a no-op when the shelves are already full. The full cost is checked against
// the balance before any stock moves, so a shortfall changes nothing and
// reports the missing amount.
func (svc *ProductService) RestockAll(userID string) (*dto.RestockAllResponse, error) {
	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var resp *dto.RestockAllResponse
	err := svc.sqlSvc.Db().Transaction(func(tx *gorm.DB) error {
		products, _, total, err := svc.restockNeeds(tx)
		if err != nil {
			return err
		}

		balance, err := svc.ledgerSvc.lockBalance(tx, userID)
		if err != nil {
			return err
		}
		if len(products) == 0 {
			resp = &dto.RestockAllResponse{
				TotalCost:         0,
				RestockedProducts: []dto.RestockedProduct{},
				NewBalance:        balance.CurrentBalance.InexactFloat64(),
			}
			return nil
		}
		if balance.CurrentBalance.LessThan(total) {
			return shared.NewBadRequestErrorWithData(nil, "Saldo insuficiente para reabastecimento",
				dto.RestockShortfall{
					RequiredAmount: total.InexactFloat64(),
					CurrentBalance: balance.CurrentBalance.InexactFloat64(),
					Shortfall:      total.Sub(balance.CurrentBalance).InexactFloat64(),
				})
		}

		restocked := make([]dto.RestockedProduct, 0, len(products))
		for i := range products {
			p := &products[i]

			var product model.Product
			if err := withRowLock(tx).Where("id = ?", p.ID).First(&product).Error; err != nil {
				return err
			}
			needed := product.MaxStock - product.CurrentStock
			if needed <= 0 {
				continue
			}
			cost := product.PurchasePrice.Mul(decimal.NewFromInt(int64(needed)))

			previous := product.CurrentStock
			if err := tx.Model(&model.Product{}).Where("id = ?", product.ID).
				Update("current_stock", product.MaxStock).Error; err != nil {
				return err
			}

			unitPrice := product.PurchasePrice
			history := model.ProductStockHistory{
				ID:            uuid.New().String(),
				ProductID:     product.ID,
				Operation:     shared.OpPurchase,
				Quantity:      needed,
				PreviousStock: previous,
				NewStock:      product.MaxStock,
				UnitPrice:     &unitPrice,
				TotalValue:    &cost,
				Description:   fmt.Sprintf("Reabastecimento: %s", product.Name),
				GameDate:      session.CurrentGameDate,
			}
			if err := tx.Create(&history).Error; err != nil {
				return err
			}

			restocked = append(restocked, dto.RestockedProduct{
				ID:            product.ID,
				Name:          product.Name,
				QuantityAdded: needed,
				NewStock:      product.MaxStock,
				Cost:          cost.InexactFloat64(),
			})
		}

		description := fmt.Sprintf("Reabastecimento de %d produtos", len(restocked))
		newBalance, err := svc.ledgerSvc.Debit(tx, userID, total, description)
		if err != nil {
			return err
		}
		if _, err := svc.ledgerSvc.RecordTransaction(tx, userID, shared.CategoryRestock,
			total, shared.TxExpense, description, session.CurrentGameDate); err != nil {
			return err
		}

		resp = &dto.RestockAllResponse{
			TotalCost:         total.InexactFloat64(),
			RestockedProducts: restocked,
			NewBalance:        newBalance.CurrentBalance.InexactFloat64(),
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
		"user_id":  userID,
		"products": len(resp.RestockedProducts),
		"cost":     resp.TotalCost,
	}).Info("Full restock executed")
	return resp, nil
}
