package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/shared"
)

type EmployeeHandler struct {
	employeeSvc EmployeeServiceInterface
	payrollSvc  PayrollServiceInterface
}

func NewEmployeeHandler(employeeSvc EmployeeServiceInterface, payrollSvc PayrollServiceInterface) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc, payrollSvc: payrollSvc}
}

// @Summary List positions
// @Tags employees
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=[]dto.PositionResponse}
// @Router /api/v1/employees/positions [get]
func (h *EmployeeHandler) ListPositions(c *fiber.Ctx) error {
	resp, err := h.employeeSvc.ListPositions()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary List employees
// @Tags employees
// @Produce json
// @Security Bearer
// @Param status query string false "Employment status filter"
// @Success 200 {object} shared.Response{data=[]dto.EmployeeResponse}
// @Router /api/v1/employees [get]
func (h *EmployeeHandler) ListEmployees(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.employeeSvc.ListEmployees(userID, c.Query("status"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Get employee
// @Tags employees
// @Produce json
// @Security Bearer
// @Param id path string true "Employee ID"
// @Success 200 {object} shared.Response{data=dto.EmployeeResponse}
// @Router /api/v1/employees/{id} [get]
func (h *EmployeeHandler) GetEmployee(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.employeeSvc.GetEmployee(userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Hire employee
// @Description Register a staff member; the salary must fit the position's band
// @Tags employees
// @Accept json
// @Produce json
// @Security Bearer
// @Param employeeRequest body dto.CreateEmployeeRequest true "Employee details"
// @Success 201 {object} shared.Response{data=dto.EmployeeResponse}
// @Router /api/v1/employees [post]
func (h *EmployeeHandler) HireEmployee(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.employeeSvc.HireEmployee(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseCreated(c, resp)
}

// @Summary Update employee
// @Tags employees
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Employee ID"
// @Param employeeRequest body dto.UpdateEmployeeRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=dto.EmployeeResponse}
// @Router /api/v1/employees/{id} [put]
func (h *EmployeeHandler) UpdateEmployee(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.UpdateEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.employeeSvc.UpdateEmployee(userID, c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Terminate employee
// @Description End the employment; the record stays for payroll history
// @Tags employees
// @Produce json
// @Security Bearer
// @Param id path string true "Employee ID"
// @Success 200 {object} shared.Response{data=dto.EmployeeResponse}
// @Router /api/v1/employees/{id}/terminate [post]
func (h *EmployeeHandler) TerminateEmployee(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.employeeSvc.TerminateEmployee(userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Reactivate employee
// @Tags employees
// @Produce json
// @Security Bearer
// @Param id path string true "Employee ID"
// @Success 200 {object} shared.Response{data=dto.EmployeeResponse}
// @Router /api/v1/employees/{id}/reactivate [post]
func (h *EmployeeHandler) ReactivateEmployee(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.employeeSvc.ReactivateEmployee(userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Staff summary
// @Description Counts, monthly payroll cost and affordability
// @Tags employees
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.EmployeeSummaryResponse}
// @Router /api/v1/employees/summary [get]
func (h *EmployeeHandler) Summary(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.employeeSvc.Summary(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

const paymentMonthLayout = "2006-01"

// @Summary Payrolls by month
// @Tags payroll
// @Produce json
// @Security Bearer
// @Param month query string true "Payment month (YYYY-MM)"
// @Success 200 {object} shared.Response{data=dto.PayrollMonthResponse}
// @Router /api/v1/payrolls/by_month [get]
func (h *EmployeeHandler) PayrollsByMonth(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	month, err := time.Parse(paymentMonthLayout, c.Query("month"))
	if err != nil {
		return shared.NewBadRequestError(err, "Mês inválido. Use o formato YYYY-MM")
	}

	resp, err := h.payrollSvc.PayrollsByMonth(userID, month)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Run payroll for a month
// @Description Pay every active employee for the given month, once
// @Tags payroll
// @Produce json
// @Security Bearer
// @Param month query string true "Payment month (YYYY-MM)"
// @Success 200 {object} shared.Response{data=dto.PayrollMonthResponse}
// @Router /api/v1/payrolls/run [post]
func (h *EmployeeHandler) RunPayroll(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	month, err := time.Parse(paymentMonthLayout, c.Query("month"))
	if err != nil {
		return shared.NewBadRequestError(err, "Mês inválido. Use o formato YYYY-MM")
	}

	resp, err := h.payrollSvc.RunMonth(userID, month)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Folha processada", resp)
}

// @Summary Mark payroll as paid
// @Tags payroll
// @Produce json
// @Security Bearer
// @Param id path string true "Payroll ID"
// @Success 200 {object} shared.Response{data=dto.PayrollResponse}
// @Router /api/v1/payrolls/{id}/mark_as_paid [post]
func (h *EmployeeHandler) MarkAsPaid(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.payrollSvc.MarkAsPaid(userID, c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
