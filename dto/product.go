package dto

import (
	"github.com/shopspring/decimal"

	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

type ProductResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Description           string          `json:"description,omitempty"`
	CategoryName          string          `json:"category_name,omitempty"`
	SupplierName          string          `json:"supplier_name,omitempty"`
	PurchasePrice         decimal.Decimal `json:"purchase_price"`
	SalePrice             decimal.Decimal `json:"sale_price"`
	CurrentPrice          decimal.Decimal `json:"current_price"`
	CurrentPriceFormatted string          `json:"current_price_formatted"`
	CurrentStock          int             `json:"current_stock"`
	MinStock              int             `json:"min_stock"`
	MaxStock              int             `json:"max_stock"`
	StockStatus           string          `json:"stock_status"`
	IsPromotional         bool            `json:"is_promotional"`
}

func NewProductResponse(p *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:                    p.ID,
		Name:                  p.Name,
		Description:           p.Description,
		PurchasePrice:         p.PurchasePrice,
		SalePrice:             p.SalePrice,
		CurrentPrice:          p.CurrentPrice(),
		CurrentPriceFormatted: shared.FormatBRL(p.CurrentPrice()),
		CurrentStock:          p.CurrentStock,
		MinStock:              p.MinStock,
		MaxStock:              p.MaxStock,
		StockStatus:           p.StockStatus(),
		IsPromotional:         p.IsPromotional,
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	if p.Supplier != nil {
		resp.SupplierName = p.Supplier.Name
	}
	return resp
}

type PurchaseRequest struct {
	Quantity    int              `json:"quantity" validate:"required,gte=1"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Description string           `json:"description,omitempty"`
}

func (r PurchaseRequest) Validate() error {
	return GetValidator().Struct(r)
}

type PurchaseResponse struct {
	Message    string          `json:"message"`
	Product    ProductResponse `json:"product"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type RestockedProduct struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	QuantityAdded int     `json:"quantity_added"`
	NewStock      int     `json:"new_stock"`
	Cost          float64 `json:"cost"`
}

type RestockAllResponse struct {
	TotalCost         float64            `json:"total_cost"`
	RestockedProducts []RestockedProduct `json:"restocked_products"`
	NewBalance        float64            `json:"new_balance"`
}

type RestockShortfall struct {
	RequiredAmount float64 `json:"required_amount"`
	CurrentBalance float64 `json:"current_balance"`
	Shortfall      float64 `json:"shortfall"`
}

type RestockItemCost struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	CurrentStock   int     `json:"current_stock"`
	MaxStock       int     `json:"max_stock"`
	QuantityNeeded int     `json:"quantity_needed"`
	UnitPrice      float64 `json:"unit_price"`
	TotalCost      float64 `json:"total_cost"`
}

type RestockCostResponse struct {
	TotalCost              float64           `json:"total_cost"`
	ProductsCount          int               `json:"products_count"`
	ProductsNeedingRestock []RestockItemCost `json:"products_needing_restock"`
}
