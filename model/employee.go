package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type EmployeePosition struct {
	ID          string `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;not null"`
	Description string
	BaseSalary  decimal.Decimal `gorm:"type:decimal(10,2)"`
	MinSalary   decimal.Decimal `gorm:"type:decimal(10,2)"`
	MaxSalary   decimal.Decimal `gorm:"type:decimal(10,2)"`
	Department  string          `gorm:"size:50"`
	IsActive    bool            `gorm:"default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Employee struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"index:idx_employees_user_cpf,unique,priority:1;not null"`

	Name  string `gorm:"size:150;not null"`
	CPF   string `gorm:"size:14;index:idx_employees_user_cpf,unique,priority:2;not null"`
	Email string
	Phone string `gorm:"size:17"`

	PositionID string          `gorm:"not null"`
	Salary     decimal.Decimal `gorm:"type:decimal(10,2)"`

	HireDate         time.Time  `gorm:"type:date"`
	EmploymentStatus string     `gorm:"size:12;default:ACTIVE"`
	TerminationDate  *time.Time `gorm:"type:date"`
	Notes            string

	CreatedAt time.Time
	UpdatedAt time.Time

	Position *EmployeePosition `gorm:"foreignKey:PositionID"`
}

func (e *Employee) IsActive() bool {
	return e.EmploymentStatus == "ACTIVE"
}

// Payroll is one employee's pay slip for one month. TotalAmount is computed
// by CalculateTotal before insert; callers never set it directly.
type Payroll struct {
	ID         string `gorm:"primaryKey"`
	EmployeeID string `gorm:"index:idx_payrolls_employee_month,unique,priority:1;not null"`

	// PaymentMonth is normalized to the first day of the month.
	PaymentMonth time.Time `gorm:"type:date;index:idx_payrolls_employee_month,unique,priority:2"`

	BaseSalary    decimal.Decimal `gorm:"type:decimal(10,2)"`
	OvertimeHours decimal.Decimal `gorm:"type:decimal(5,2);default:0"`
	OvertimeValue decimal.Decimal `gorm:"type:decimal(10,2);default:0"`
	Bonus         decimal.Decimal `gorm:"type:decimal(10,2);default:0"`
	Deductions    decimal.Decimal `gorm:"type:decimal(10,2);default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2)"`

	PaymentDate   *time.Time `gorm:"type:date"`
	PaymentStatus string     `gorm:"size:10;default:PENDING"`
	Notes         string

	CreatedAt time.Time
	UpdatedAt time.Time

	Employee *Employee `gorm:"foreignKey:EmployeeID"`
}

func (p *Payroll) CalculateTotal() decimal.Decimal {
	p.TotalAmount = p.BaseSalary.Add(p.OvertimeValue).Add(p.Bonus).Sub(p.Deductions)
	return p.TotalAmount
}

// PayrollHistory marks a (user, month) as processed; its uniqueness is what
// makes payroll idempotent across ticks.
type PayrollHistory struct {
	ID     string `gorm:"primaryKey"`
	UserID string `gorm:"index:idx_payroll_history_user_month,unique,priority:1;not null"`

	PaymentMonth   time.Time       `gorm:"type:date;index:idx_payroll_history_user_month,unique,priority:2"`
	TotalEmployees int             `gorm:"not null"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2)"`
	ProcessedAt    time.Time

	CreatedAt time.Time
}
