package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

// ErrInsufficientFunds is returned by Debit when the balance cannot cover
// the amount. Callers decide whether it is a 400 or a silent skip.
var ErrInsufficientFunds = errors.New("insufficient funds")

// LedgerService owns all money movement. The UserBalance row is the single
// source of truth; Transactions are audit rows and never move the balance.
type LedgerService struct {
	context.DefaultService

	sqlSvc *PostgresService
}

const LEDGER_SVC = "ledger_svc"

func (svc LedgerService) Id() string {
	return LEDGER_SVC
}

func (svc *LedgerService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *LedgerService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// EnsureBalance creates the user's balance row with the starting cash if it
// does not exist yet. Called once at registration and defensively on login.
func (svc *LedgerService) EnsureBalance(userID string) (*model.UserBalance, error) {
	var balance model.UserBalance
	err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&balance).Error
	if err == nil {
		return &balance, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.HandleDBError(err)
	}

	balance = model.UserBalance{
		ID:             uuid.New().String(),
		UserID:         userID,
		CurrentBalance: shared.StartingBalance,
	}
	if err := svc.sqlSvc.Db().Create(&balance).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	log.WithFields(log.Fields{"user_id": userID}).Info("Created user balance")
	return &balance, nil
}

func (svc *LedgerService) GetBalance(userID string) (*model.UserBalance, error) {
	var balance model.UserBalance
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&balance).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	return &balance, nil
}

// lockBalance loads the user's balance row FOR UPDATE inside tx.
func (svc *LedgerService) lockBalance(tx *gorm.DB, userID string) (*model.UserBalance, error) {
	var balance model.UserBalance
	if err := withRowLock(tx).Where("user_id = ?", userID).First(&balance).Error; err != nil {
		return nil, err
	}
	return &balance, nil
}

// Credit adds amount to the user's balance inside tx and appends the audit row.
func (svc *LedgerService) Credit(tx *gorm.DB, userID string, amount decimal.Decimal, description string) (*model.UserBalance, error) {
	return svc.apply(tx, userID, amount, shared.BalanceOpAdd, description)
}

// Debit subtracts amount from the user's balance inside tx. The balance never
// goes negative: a shortfall returns ErrInsufficientFunds and writes nothing.
func (svc *LedgerService) Debit(tx *gorm.DB, userID string, amount decimal.Decimal, description string) (*model.UserBalance, error) {
	return svc.apply(tx, userID, amount, shared.BalanceOpSubtract, description)
}

// SetBalance overwrites the balance, recording the given operation (SET or
// RESET) in the history.
func (svc *LedgerService) SetBalance(tx *gorm.DB, userID string, amount decimal.Decimal, operation, description string) (*model.UserBalance, error) {
	return svc.apply(tx, userID, amount, operation, description)
}

func (svc *LedgerService) apply(tx *gorm.DB, userID string, amount decimal.Decimal, operation, description string) (*model.UserBalance, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("ledger amount must not be negative: %s", amount)
	}

	balance, err := svc.lockBalance(tx, userID)
	if err != nil {
		return nil, err
	}

	previous := balance.CurrentBalance
	switch operation {
	case shared.BalanceOpAdd:
		balance.CurrentBalance = previous.Add(amount)
	case shared.BalanceOpSubtract:
		if previous.LessThan(amount) {
			return nil, ErrInsufficientFunds
		}
		balance.CurrentBalance = previous.Sub(amount)
	case shared.BalanceOpSet, shared.BalanceOpReset:
		balance.CurrentBalance = amount
	default:
		return nil, fmt.Errorf("unknown balance operation %q", operation)
	}

	if err := tx.Save(balance).Error; err != nil {
		return nil, err
	}

	history := model.BalanceHistory{
		ID:              uuid.New().String(),
		UserBalanceID:   balance.ID,
		Operation:       operation,
		Amount:          amount,
		PreviousBalance: previous,
		NewBalance:      balance.CurrentBalance,
		Description:     description,
	}
	if err := tx.Create(&history).Error; err != nil {
		return nil, err
	}

	return balance, nil
}

// GetOrCreateCategory resolves a transaction category by name, creating it on
// first use so the canonical categories never need a seed step.
func (svc *LedgerService) GetOrCreateCategory(tx *gorm.DB, name string) (*model.Category, error) {
	var category model.Category
	err := tx.Where("name = ?", name).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = model.Category{
		ID:   uuid.New().String(),
		Name: name,
	}
	switch name {
	case shared.CategorySales:
		category.CategoryType = shared.TxIncome
		category.Color = "#10B981"
		category.Description = "Receitas de vendas do supermercado"
	case shared.CategoryRestock:
		category.CategoryType = shared.TxExpense
		category.Color = "#EF4444"
		category.Description = "Compras de produtos para estoque"
	case shared.CategoryPayroll:
		category.CategoryType = shared.TxExpense
		category.Color = "#8B5CF6"
		category.Description = "Pagamento de salários dos funcionários"
	}

	if err := tx.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// RecordTransaction appends an audit transaction. Amount must be positive;
// direction comes from txType.
func (svc *LedgerService) RecordTransaction(tx *gorm.DB, userID, categoryName string, amount decimal.Decimal, txType, description string, transactionDate time.Time) (*model.Transaction, error) {
	category, err := svc.GetOrCreateCategory(tx, categoryName)
	if err != nil {
		return nil, err
	}

	row := model.Transaction{
		ID:              uuid.New().String(),
		UserID:          userID,
		CategoryID:      category.ID,
		Amount:          amount,
		TransactionType: txType,
		Description:     description,
		TransactionDate: transactionDate,
	}
	if err := tx.Create(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ResetForNewGame puts the balance back to the starting cash and clears the
// player's financial history. Runs inside the session reset transaction.
func (svc *LedgerService) ResetForNewGame(tx *gorm.DB, userID string) error {
	var balance model.UserBalance
	err := withRowLock(tx).Where("user_id = ?", userID).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = model.UserBalance{
			ID:             uuid.New().String(),
			UserID:         userID,
			CurrentBalance: shared.StartingBalance,
		}
		return tx.Create(&balance).Error
	}
	if err != nil {
		return err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&model.Transaction{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_balance_id = ?", balance.ID).Delete(&model.BalanceHistory{}).Error; err != nil {
		return err
	}

	_, err = svc.apply(tx, userID, shared.StartingBalance, shared.BalanceOpReset, "Novo jogo iniciado")
	return err
}
