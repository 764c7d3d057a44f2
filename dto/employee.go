package dto

import (
	"github.com/shopspring/decimal"

	"github.com/supermercado-sim/mercado_api/model"
	"github.com/supermercado-sim/mercado_api/shared"
)

type CreateEmployeeRequest struct {
	Name       string          `json:"name" validate:"required,min=3,max=150"`
	CPF        string          `json:"cpf" validate:"required,cpf"`
	Email      string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string          `json:"phone,omitempty" validate:"omitempty,max=17"`
	PositionID string          `json:"position_id" validate:"required"`
	Salary     decimal.Decimal `json:"salary" validate:"required"`
	Notes      string          `json:"notes,omitempty"`
}

func (r CreateEmployeeRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateEmployeeRequest struct {
	Name   *string          `json:"name,omitempty" validate:"omitempty,min=3,max=150"`
	Email  *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string          `json:"phone,omitempty" validate:"omitempty,max=17"`
	Salary *decimal.Decimal `json:"salary,omitempty"`
	Notes  *string          `json:"notes,omitempty"`
}

func (r UpdateEmployeeRequest) Validate() error {
	return GetValidator().Struct(r)
}

type EmployeeResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	CPF              string          `json:"cpf"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone,omitempty"`
	PositionName     string          `json:"position_name"`
	Department       string          `json:"department"`
	Salary           decimal.Decimal `json:"salary"`
	SalaryFormatted  string          `json:"salary_formatted"`
	HireDate         string          `json:"hire_date"`
	EmploymentStatus string          `json:"employment_status"`
	TerminationDate  *string         `json:"termination_date,omitempty"`
}

func NewEmployeeResponse(e *model.Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               e.ID,
		Name:             e.Name,
		CPF:              e.CPF,
		Email:            e.Email,
		Phone:            e.Phone,
		Salary:           e.Salary,
		SalaryFormatted:  shared.FormatBRL(e.Salary),
		HireDate:         e.HireDate.Format(gameDateLayout),
		EmploymentStatus: e.EmploymentStatus,
	}
	if e.Position != nil {
		resp.PositionName = e.Position.Name
		resp.Department = e.Position.Department
	}
	if e.TerminationDate != nil {
		d := e.TerminationDate.Format(gameDateLayout)
		resp.TerminationDate = &d
	}
	return resp
}

type EmployeeSummaryResponse struct {
	TotalEmployees               int             `json:"total_employees"`
	ActiveEmployees              int             `json:"active_employees"`
	InactiveEmployees            int             `json:"inactive_employees"`
	TotalMonthlyPayroll          decimal.Decimal `json:"total_monthly_payroll"`
	TotalMonthlyPayrollFormatted string          `json:"total_monthly_payroll_formatted"`
	EmployeesByDepartment        map[string]int  `json:"employees_by_department"`
	EmployeesByPosition          map[string]int  `json:"employees_by_position"`
	NextPaymentMonth             string          `json:"next_payment_month,omitempty"`
	CanAffordPayroll             bool            `json:"can_afford_payroll"`
}

type PayrollResponse struct {
	ID             string          `json:"id"`
	EmployeeName   string          `json:"employee_name"`
	PaymentMonth   string          `json:"payment_month"`
	BaseSalary     decimal.Decimal `json:"base_salary"`
	Bonus          decimal.Decimal `json:"bonus"`
	Deductions     decimal.Decimal `json:"deductions"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TotalFormatted string          `json:"total_formatted"`
	PaymentStatus  string          `json:"payment_status"`
	PaymentDate    *string         `json:"payment_date,omitempty"`
}

func NewPayrollResponse(p *model.Payroll) PayrollResponse {
	resp := PayrollResponse{
		ID:             p.ID,
		PaymentMonth:   p.PaymentMonth.Format("2006-01"),
		BaseSalary:     p.BaseSalary,
		Bonus:          p.Bonus,
		Deductions:     p.Deductions,
		TotalAmount:    p.TotalAmount,
		TotalFormatted: shared.FormatBRL(p.TotalAmount),
		PaymentStatus:  p.PaymentStatus,
	}
	if p.Employee != nil {
		resp.EmployeeName = p.Employee.Name
	}
	if p.PaymentDate != nil {
		d := p.PaymentDate.Format(gameDateLayout)
		resp.PaymentDate = &d
	}
	return resp
}

type PayrollMonthResponse struct {
	PaymentMonth   string            `json:"payment_month"`
	TotalEmployees int               `json:"total_employees"`
	TotalAmount    decimal.Decimal   `json:"total_amount"`
	AverageSalary  decimal.Decimal   `json:"average_salary"`
	Payrolls       []PayrollResponse `json:"payrolls"`
}

type PositionResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Department string          `json:"department"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	MinSalary  decimal.Decimal `json:"min_salary"`
	MaxSalary  decimal.Decimal `json:"max_salary"`
}

func NewPositionResponse(p *model.EmployeePosition) PositionResponse {
	return PositionResponse{
		ID:         p.ID,
		Name:       p.Name,
		Department: p.Department,
		BaseSalary: p.BaseSalary,
		MinSalary:  p.MinSalary,
		MaxSalary:  p.MaxSalary,
	}
}
