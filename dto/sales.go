package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/supermercado-sim/mercado_api/model"
)

type SimulateSaleRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
	Description string `json:"description,omitempty"`
}

func (r SimulateSaleRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SimulateSaleResponse struct {
	Message    string          `json:"message"`
	Product    ProductResponse `json:"product"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type StockHistoryEntry struct {
	ID            string           `json:"id"`
	ProductName   string           `json:"product_name"`
	Operation     string           `json:"operation"`
	Quantity      int              `json:"quantity"`
	PreviousStock int              `json:"previous_stock"`
	NewStock      int              `json:"new_stock"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	TotalValue    *decimal.Decimal `json:"total_value,omitempty"`
	Description   string           `json:"description"`
	GameDate      string           `json:"game_date"`
	CreatedAt     time.Time        `json:"created_at"`
}

func NewStockHistoryEntry(h *model.ProductStockHistory) StockHistoryEntry {
	entry := StockHistoryEntry{
		ID:            h.ID,
		Operation:     h.Operation,
		Quantity:      h.Quantity,
		PreviousStock: h.PreviousStock,
		NewStock:      h.NewStock,
		UnitPrice:     h.UnitPrice,
		TotalValue:    h.TotalValue,
		Description:   h.Description,
		GameDate:      h.GameDate.Format(gameDateLayout),
		CreatedAt:     h.CreatedAt,
	}
	if h.Product != nil {
		entry.ProductName = h.Product.Name
	}
	return entry
}

type TopProduct struct {
	ProductName   string          `json:"product__name"`
	TotalQuantity int             `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type SalesSummaryResponse struct {
	TotalSales   int                 `json:"total_sales"`
	TotalRevenue decimal.Decimal     `json:"total_revenue"`
	RecentSales  []StockHistoryEntry `json:"recent_sales"`
	TopProducts  []TopProduct        `json:"top_products"`
}

type RealtimeSaleResponse struct {
	ID          string          `json:"id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalValue  decimal.Decimal `json:"total_value"`
	SaleTime    time.Time       `json:"sale_time"`
	GameDate    string          `json:"game_date"`
	GameTime    string          `json:"game_time"`
}

func NewRealtimeSaleResponse(s *model.RealtimeSale) RealtimeSaleResponse {
	resp := RealtimeSaleResponse{
		ID:         s.ID,
		Quantity:   s.Quantity,
		UnitPrice:  s.UnitPrice,
		TotalValue: s.TotalValue,
		SaleTime:   s.SaleTime,
		GameDate:   s.GameDate.Format(gameDateLayout),
		GameTime:   s.GameTime,
	}
	if s.Product != nil {
		resp.ProductName = s.Product.Name
	}
	return resp
}
