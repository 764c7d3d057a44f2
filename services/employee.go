package services

import (
	"errors"
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

type EmployeeService struct {
	context.DefaultService

	sqlSvc    *PostgresService
	ledgerSvc *LedgerService
}

const EMPLOYEE_SVC = "employee_svc"

func (svc EmployeeService) Id() string {
	return EMPLOYEE_SVC
}

func (svc *EmployeeService) Configure(ctx *context.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *EmployeeService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.ledgerSvc = svc.Service(LEDGER_SVC).(*LedgerService)
	return nil
}

func (svc *EmployeeService) ListPositions() ([]dto.PositionResponse, error) {
	var positions []model.EmployeePosition
	if err := svc.sqlSvc.Db().Where("is_active = ?", true).
		Order("name ASC").Find(&positions).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	responses := make([]dto.PositionResponse, 0, len(positions))
	for i := range positions {
		responses = append(responses, dto.NewPositionResponse(&positions[i]))
	}
	return responses, nil
}

func (svc *EmployeeService) ListEmployees(userID string, status string) ([]dto.EmployeeResponse, error) {
	query := svc.sqlSvc.Db().Preload("Position").Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("employment_status = ?", status)
	}

	var employees []model.Employee
	if err := query.Order("name ASC").Find(&employees).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	responses := make([]dto.EmployeeResponse, 0, len(employees))
	for i := range employees {
		responses = append(responses, dto.NewEmployeeResponse(&employees[i]))
	}
	return responses, nil
}

func (svc *EmployeeService) getEmployee(userID, employeeID string) (*model.Employee, error) {
	var employee model.Employee
	err := svc.sqlSvc.Db().Preload("Position").
		Where("id = ? AND user_id = ?", employeeID, userID).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Funcionário não encontrado")
		}
		return nil, shared.HandleDBError(err)
	}
	return &employee, nil
}

func (svc *EmployeeService) GetEmployee(userID, employeeID string) (*dto.EmployeeResponse, error) {
	employee, err := svc.getEmployee(userID, employeeID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewEmployeeResponse(employee)
	return &resp, nil
}

// HireEmployee registers a new staff member. The salary must fall inside the
// position's band and the CPF must be unique within the user's staff.
func (svc *EmployeeService) HireEmployee(userID string, req dto.CreateEmployeeRequest) (*dto.EmployeeResponse, error) {
	var position model.EmployeePosition
	err := svc.sqlSvc.Db().Where("id = ? AND is_active = ?", req.PositionID, true).
		First(&position).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Cargo não encontrado")
		}
		return nil, shared.HandleDBError(err)
	}

	if req.Salary.LessThan(position.MinSalary) || req.Salary.GreaterThan(position.MaxSalary) {
		return nil, shared.NewBadRequestError(nil,
			"Salário fora da faixa permitida para o cargo: "+
				shared.FormatBRL(position.MinSalary)+" a "+shared.FormatBRL(position.MaxSalary))
	}

	var duplicates int64
	if err := svc.sqlSvc.Db().Model(&model.Employee{}).
		Where("user_id = ? AND cpf = ?", userID, req.CPF).
		Count(&duplicates).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	if duplicates > 0 {
		return nil, shared.NewConflictError(nil, "Já existe um funcionário com este CPF")
	}

	employee := model.Employee{
		ID:               uuid.New().String(),
		UserID:           userID,
		Name:             req.Name,
		CPF:              req.CPF,
		Email:            req.Email,
		Phone:            req.Phone,
		PositionID:       position.ID,
		Salary:           req.Salary,
		HireDate:         gameDate(time.Now()),
		EmploymentStatus: shared.EmploymentActive,
		Notes:            req.Notes,
	}
	if err := svc.sqlSvc.Db().Create(&employee).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}
	employee.Position = &position

	log.WithFields(log.Fields{
		"user_id":     userID,
		"employee_id": employee.ID,
		"position":    position.Name,
	}).Info("Employee hired")

	resp := dto.NewEmployeeResponse(&employee)
	return &resp, nil
}

func (svc *EmployeeService) UpdateEmployee(userID, employeeID string, req dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, error) {
	employee, err := svc.getEmployee(userID, employeeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		employee.Name = *req.Name
	}
	if req.Email != nil {
		employee.Email = *req.Email
	}
	if req.Phone != nil {
		employee.Phone = *req.Phone
	}
	if req.Notes != nil {
		employee.Notes = *req.Notes
	}
	if req.Salary != nil {
		if employee.Position != nil &&
			(req.Salary.LessThan(employee.Position.MinSalary) || req.Salary.GreaterThan(employee.Position.MaxSalary)) {
			return nil, shared.NewBadRequestError(nil,
				"Salário fora da faixa permitida para o cargo: "+
					shared.FormatBRL(employee.Position.MinSalary)+" a "+shared.FormatBRL(employee.Position.MaxSalary))
		}
		employee.Salary = *req.Salary
	}

	if err := svc.sqlSvc.Db().Save(employee).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	resp := dto.NewEmployeeResponse(employee)
	return &resp, nil
}

// TerminateEmployee ends the employment. The record stays for payroll
// history; only the status and termination date change.
func (svc *EmployeeService) TerminateEmployee(userID, employeeID string) (*dto.EmployeeResponse, error) {
	employee, err := svc.getEmployee(userID, employeeID)
	if err != nil {
		return nil, err
	}
	if employee.EmploymentStatus == shared.EmploymentTerminated {
		return nil, shared.NewBadRequestError(nil, "Funcionário já foi desligado")
	}

	today := gameDate(time.Now())
	employee.EmploymentStatus = shared.EmploymentTerminated
	employee.TerminationDate = &today
	if err := svc.sqlSvc.Db().Save(employee).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	log.WithFields(log.Fields{
		"user_id":     userID,
		"employee_id": employeeID,
	}).Info("Employee terminated")

	resp := dto.NewEmployeeResponse(employee)
	return &resp, nil
}

func (svc *EmployeeService) ReactivateEmployee(userID, employeeID string) (*dto.EmployeeResponse, error) {
	employee, err := svc.getEmployee(userID, employeeID)
	if err != nil {
		return nil, err
	}
	if employee.EmploymentStatus == shared.EmploymentActive {
		return nil, shared.NewBadRequestError(nil, "Funcionário já está ativo")
	}

	employee.EmploymentStatus = shared.EmploymentActive
	employee.TerminationDate = nil
	if err := svc.sqlSvc.Db().Save(employee).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	resp := dto.NewEmployeeResponse(employee)
	return &resp, nil
}

// Summary aggregates the staff: counts, monthly cost and whether the
// current balance covers the next payroll.
func (svc *EmployeeService) Summary(userID string) (*dto.EmployeeSummaryResponse, error) {
	var employees []model.Employee
	if err := svc.sqlSvc.Db().Preload("Position").
		Where("user_id = ?", userID).Find(&employees).Error; err != nil {
		return nil, shared.HandleDBError(err)
	}

	resp := &dto.EmployeeSummaryResponse{
		TotalEmployees:        len(employees),
		TotalMonthlyPayroll:   decimal.Zero,
		EmployeesByDepartment: map[string]int{},
		EmployeesByPosition:   map[string]int{},
	}

	for i := range employees {
		e := &employees[i]
		if e.IsActive() {
			resp.ActiveEmployees++
			resp.TotalMonthlyPayroll = resp.TotalMonthlyPayroll.Add(e.Salary)
			if e.Position != nil {
				resp.EmployeesByDepartment[e.Position.Department]++
				resp.EmployeesByPosition[e.Position.Name]++
			}
		} else {
			resp.InactiveEmployees++
		}
	}
	resp.TotalMonthlyPayrollFormatted = shared.FormatBRL(resp.TotalMonthlyPayroll)

	var session model.GameSession
	if err := svc.sqlSvc.Db().Where("user_id = ?", userID).First(&session).Error; err == nil {
		resp.NextPaymentMonth = monthStart(session.CurrentGameDate).AddDate(0, 1, 0).Format("2006-01")
	}

	if balance, err := svc.ledgerSvc.GetBalance(userID); err == nil {
		resp.CanAffordPayroll = !balance.CurrentBalance.LessThan(resp.TotalMonthlyPayroll)
	}

	return resp, nil
}
