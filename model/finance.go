package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserBalance is the ledger root: the single mutable money row per user.
// All mutations happen through the ledger service under a row lock.
type UserBalance struct {
	ID             string          `gorm:"primaryKey"`
	UserID         string          `gorm:"uniqueIndex;not null"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BalanceHistory records every balance mutation for audit.
type BalanceHistory struct {
	ID            string `gorm:"primaryKey"`
	UserBalanceID string `gorm:"index;not null"`

	Operation       string          `gorm:"size:10;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2)"`
	PreviousBalance decimal.Decimal `gorm:"type:decimal(12,2)"`
	NewBalance      decimal.Decimal `gorm:"type:decimal(12,2)"`
	Description     string          `gorm:"size:255"`

	CreatedAt time.Time
}

type Category struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;not null"`
	Description  string
	CategoryType string `gorm:"size:10"`
	Color        string `gorm:"size:7"`
	Icon         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Transaction is an audit row only: inserting one never moves the balance.
// The amount is always positive; TransactionType carries the direction.
type Transaction struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"index;not null"`
	CategoryID string `gorm:"index;not null"`

	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionType string          `gorm:"size:10;not null"`
	Description     string          `gorm:"size:255"`
	TransactionDate time.Time       `gorm:"type:date;index"`

	CreatedAt time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}
