package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	Icon        string `gorm:"default:📦"`
	Color       string `gorm:"size:7;default:#10B981"`
	IsActive    bool   `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Supplier struct {
	ID                string `gorm:"primaryKey"`
	Name              string `gorm:"uniqueIndex;not null"`
	ContactPerson     string
	Email             string
	Phone             string
	Address           string
	DeliveryTimeDays  int             `gorm:"default:1"`
	MinimumOrderValue decimal.Decimal `gorm:"type:decimal(12,2);default:100"`
	ReliabilityScore  decimal.Decimal `gorm:"type:decimal(3,2);default:5"`
	IsActive          bool            `gorm:"default:true"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Product is shop inventory. Stock only moves through the stock operations in
// the services layer, always under a row lock, and never goes negative.
type Product struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"size:200;not null"`
	Description string
	CategoryID  string `gorm:"index:idx_products_category_active,priority:1;not null"`
	SupplierID  string `gorm:"index;not null"`

	PurchasePrice decimal.Decimal `gorm:"type:decimal(12,2)"`
	SalePrice     decimal.Decimal `gorm:"type:decimal(12,2)"`

	CurrentStock int `gorm:"default:0;index"`
	MinStock     int `gorm:"default:10"`
	MaxStock     int `gorm:"default:100"`

	ShelfLifeDays int  `gorm:"default:30"`
	IsActive      bool `gorm:"default:true;index:idx_products_category_active,priority:2"`

	IsPromotional        bool             `gorm:"default:false"`
	PromotionalPrice     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PromotionalStartDate *time.Time       `gorm:"type:date"`
	PromotionalEndDate   *time.Time       `gorm:"type:date"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Category *ProductCategory `gorm:"foreignKey:CategoryID"`
	Supplier *Supplier        `gorm:"foreignKey:SupplierID"`
}

// CurrentPrice returns the promotional price while the promo window covers
// the real current date, otherwise the regular sale price.
func (p *Product) CurrentPrice() decimal.Decimal {
	if p.IsPromotional && p.PromotionalPrice != nil &&
		p.PromotionalStartDate != nil && p.PromotionalEndDate != nil {
		today := time.Now().Truncate(24 * time.Hour)
		if !today.Before(*p.PromotionalStartDate) && !today.After(*p.PromotionalEndDate) {
			return *p.PromotionalPrice
		}
	}
	return p.SalePrice
}

func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStock
}

func (p *Product) IsOutOfStock() bool {
	return p.CurrentStock <= 0
}

func (p *Product) StockStatus() string {
	switch {
	case p.IsOutOfStock():
		return "OUT_OF_STOCK"
	case p.IsLowStock():
		return "LOW_STOCK"
	default:
		return "NORMAL"
	}
}

// ProfitMargin is (sale - purchase) / sale, in percent.
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.SalePrice.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return p.SalePrice.Sub(p.PurchasePrice).Div(p.SalePrice).Mul(decimal.NewFromInt(100))
}
