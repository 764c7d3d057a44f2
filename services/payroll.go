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

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

// PayrollService pays the staff once per game month. The PayrollHistory
// (user, month) uniqueness makes a run idempotent, so the tick can call it
// on every month rollover without double paying.
type PayrollService struct {
	context.DefaultService

	sqlSvc        *PostgresService
	ledgerSvc     *LedgerService
	monitoringSvc *MonitoringService
}

const PAYROLL_SVC = "payroll_svc"

func (svc PayrollService) Id() string {
	return PAYROLL_SVC
}

func (svc *PayrollService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *PayrollService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// ProcessMonth runs payroll for one user and one month inside tx. month may
// be any day; it is normalized to the first of the month. A skip (already
// processed, no staff, or not enough cash) is logged, never an error.
func (svc *PayrollService) ProcessMonth(tx *gorm.DB, userID string, month time.Time, gameDate time.Time) error {
	month = monthStart(month)
	logEntry := log.WithFields(log.Fields{
		"user_id": userID,
		"month":   month.Format("2006-01"),
	})

	var processed int64
	if err := tx.Model(&model.PayrollHistory{}).
		Where("user_id = ? AND payment_month = ?", userID, month).
		Count(&processed).Error; err != nil {
		return err
	}
	if processed > 0 {
		logEntry.Debug("Payroll already processed, skipping")
		return nil
	}

	var employees []model.Employee
	if err := tx.Where("user_id = ? AND employment_status = ?", userID, shared.EmploymentActive).
		Find(&employees).Error; err != nil {
		return err
	}
	if len(employees) == 0 {
		logEntry.Debug("No active employees, skipping payroll")
		return nil
	}

	total := decimal.Zero
	for i := range employees {
		total = total.Add(employees[i].Salary)
	}

	balance, err := svc.ledgerSvc.lockBalance(tx, userID)
	if err != nil {
		return err
	}
	if balance.CurrentBalance.LessThan(total) {
		logEntry.WithFields(log.Fields{
			"required": total.String(),
			"balance":  balance.CurrentBalance.String(),
		}).Warn("Insufficient funds for payroll, skipping month")
		return nil
	}

	paymentDate := time.Now()
	for i := range employees {
		payroll := model.Payroll{
			ID:            uuid.New().String(),
			EmployeeID:    employees[i].ID,
			PaymentMonth:  month,
			BaseSalary:    employees[i].Salary,
			PaymentStatus: shared.PayrollPaid,
			PaymentDate:   &paymentDate,
		}
		payroll.CalculateTotal()
		if err := tx.Create(&payroll).Error; err != nil {
			return err
		}
	}

	description := fmt.Sprintf("Folha de pagamento - %s (%d funcionários)",
		month.Format("01/2006"), len(employees))
	if _, err := svc.ledgerSvc.Debit(tx, userID, total, description); err != nil {
		return err
	}
	if _, err := svc.ledgerSvc.RecordTransaction(tx, userID, shared.CategoryPayroll,
		total, shared.TxExpense, description, gameDate); err != nil {
		return err
	}

	history := model.PayrollHistory{
		ID:             uuid.New().String(),
		UserID:         userID,
		PaymentMonth:   month,
		TotalEmployees: len(employees),
		TotalAmount:    total,
		ProcessedAt:    time.Now(),
	}
	if err := tx.Create(&history).Error; err != nil {
		return err
	}

	if svc.monitoringSvc != nil {
		svc.monitoringSvc.PayrollProcessed()
	}
	logEntry.WithFields(log.Fields{
		"employees": len(employees),
		"total":     total.String(),
	}).Info("Payroll processed")
	return nil
}

// RunMonth is the explicit endpoint form of ProcessMonth: it opens its own
// transaction and reports what happened instead of silently skipping.
func (svc *PayrollService) RunMonth(userID string, month time.Time) (*dto.PayrollMonthResponse, error) {
	month = monthStart(month)

	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	var processed int64
	if err := svc.sqlSvc.Db().Model(&model.PayrollHistory{}).
		Where("user_id = ? AND payment_month = ?", userID, month).
		Count(&processed).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if processed > 0 {
		return nil, shared.NewConflictError(nil,
			fmt.Sprintf("Folha de %s já foi processada", month.Format("01/2006")))
	}

	var activeCount int64
	if err := svc.sqlSvc.Db().Model(&model.Employee{}).
		Where("user_id = ? AND employment_status = ?", userID, shared.EmploymentActive).
		Count(&activeCount).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if activeCount == 0 {
		return nil, shared.NewBadRequestError(nil, "Nenhum funcionário ativo para pagamento")
	}

	err := svc.sqlSvc.Db().Transaction(func(tx *gorm.DB) error {
		return svc.ProcessMonth(tx, userID, month, session.CurrentGameDate)
	})
	if err != nil {
		return nil, shared.HandleDBError(err)
	}

	// ProcessMonth skips silently on shortfall; surface that to the caller.
	var ranCount int64
	if err := svc.sqlSvc.Db().Model(&model.PayrollHistory{}).
		Where("user_id = ? AND payment_month = ?", userID, month).
		Count(&ranCount).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if ranCount == 0 {
		return nil, shared.NewBadRequestError(nil, "Saldo insuficiente para pagar a folha")
	}

	return svc.PayrollsByMonth(userID, month)
}

// PayrollsByMonth lists the pay slips of one month with its aggregates.
func (svc *PayrollService) PayrollsByMonth(userID string, month time.Time) (*dto.PayrollMonthResponse, error) {
	month = monthStart(month)

	var payrolls []model.Payroll
	if err := svc.sqlSvc.Db().Preload("Employee").
		Joins("JOIN employees ON employees.id = payrolls.employee_id").
		Where("employees.user_id = ? AND payrolls.payment_month = ?", userID, month).
		Order("payrolls.created_at ASC").
		Find(&payrolls).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	resp := &dto.PayrollMonthResponse{
		PaymentMonth:   month.Format("2006-01"),
		TotalEmployees: len(payrolls),
		TotalAmount:    decimal.Zero,
		AverageSalary:  decimal.Zero,
		Payrolls:       make([]dto.PayrollResponse, 0, len(payrolls)),
	}
	for i := range payrolls {
		resp.TotalAmount = resp.TotalAmount.Add(payrolls[i].TotalAmount)
		resp.Payrolls = append(resp.Payrolls, dto.NewPayrollResponse(&payrolls[i]))
	}
	if len(payrolls) > 0 {
		resp.AverageSalary = resp.TotalAmount.Div(decimal.NewFromInt(int64(len(payrolls)))).Round(2)
	}
	return resp, nil
}

// MarkAsPaid settles a pending pay slip by hand.
func (svc *PayrollService) MarkAsPaid(userID, payrollID string) (*dto.PayrollResponse, error) {
	var payroll model.Payroll
	err := svc.sqlSvc.Db().Preload("Employee").
		Joins("JOIN employees ON employees.id = payrolls.employee_id").
		Where("payrolls.id = ? AND employees.user_id = ?", payrollID, userID).
		First(&payroll).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Folha de pagamento não encontrada")
		}
		return nil, shared.HandleDBError(err)
	}

	if payroll.PaymentStatus == shared.PayrollPaid {
		return nil, shared.NewBadRequestError(nil, "Folha já está paga")
	}

	now := time.Now()
	payroll.PaymentStatus = shared.PayrollPaid
	payroll.PaymentDate = &now
	if err := svc.sqlSvc.Db().Save(&payroll).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	resp := dto.NewPayrollResponse(&payroll)
	return &resp, nil
}
