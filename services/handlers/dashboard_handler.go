package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supermercado-sim/mercado_api/shared"
)

type DashboardHandler struct {
	dashboardSvc DashboardServiceInterface
}

func NewDashboardHandler(dashboardSvc DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// @Summary Dashboard snapshot
// @Description Session, balance, stock alerts and the realtime sales feed. Advances game time.
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.DashboardResponse}
// @Router /api/v1/dashboard/data [get]
func (h *DashboardHandler) DashboardData(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.dashboardSvc.DashboardData(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Monthly profits
// @Description Revenue, expenses and profit per game month
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.MonthlyProfitsResponse}
// @Router /api/v1/dashboard/monthly_profits [get]
func (h *DashboardHandler) MonthlyProfits(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.dashboardSvc.MonthlyProfits(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Current balance
// @Tags dashboard
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.BalanceInfo}
// @Router /api/v1/balance [get]
func (h *DashboardHandler) Balance(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.dashboardSvc.Balance(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
