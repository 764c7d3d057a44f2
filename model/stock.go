package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStockHistory is the append-only ledger of inventory motions.
// PreviousStock is captured before the mutation; rows are never updated.
type ProductStockHistory struct {
	ID        string `gorm:"primaryKey"`
	ProductID string `gorm:"index;not null"`

	Operation     string `gorm:"size:10;not null"`
	Quantity      int    `gorm:"not null"`
	PreviousStock int    `gorm:"not null"`
	NewStock      int    `gorm:"not null"`

	UnitPrice  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalValue *decimal.Decimal `gorm:"type:decimal(12,2)"`

	Description string    `gorm:"size:255"`
	GameDate    time.Time `gorm:"type:date;index"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// SignedQuantity applies the operation's direction, so the sum over a
// product's history equals current_stock minus initial_stock.
func (h *ProductStockHistory) SignedQuantity() int {
	switch h.Operation {
	case "PURCHASE", "RETURN":
		return h.Quantity
	case "SALE", "LOSS":
		return -h.Quantity
	default: // ADJUSTMENT carries its own sign
		return h.Quantity
	}
}

// RealtimeSale is the display feed for the dashboard: one row per sale event
// emitted while the market was open, carrying both real and game timestamps.
type RealtimeSale struct {
	ID            string `gorm:"primaryKey"`
	GameSessionID string `gorm:"index;not null"`
	ProductID     string `gorm:"not null"`

	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalValue decimal.Decimal `gorm:"type:decimal(12,2)"`

	SaleTime time.Time
	GameDate time.Time `gorm:"type:date;index"`
	GameTime string    `gorm:"size:8"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
