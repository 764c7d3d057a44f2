package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/shared"
)

type SalesHandler struct {
	salesSvc SalesServiceInterface
}

func NewSalesHandler(salesSvc SalesServiceInterface) *SalesHandler {
	return &SalesHandler{salesSvc: salesSvc}
}

// @Summary Simulate a sale
// @Description Sell a quantity of one product at the current price
// @Tags sales
// @Accept json
// @Produce json
// @Security Bearer
// @Param saleRequest body dto.SimulateSaleRequest true "Product and quantity"
// @Success 200 {object} shared.Response{data=dto.SimulateSaleResponse}
// @Router /api/v1/sales/simulate_sale [post]
func (h *SalesHandler) SimulateSale(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SimulateSaleRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.salesSvc.SimulateSale(userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Sales summary
// @Description Totals, recent sales and best sellers for the campaign
// @Tags sales
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.SalesSummaryResponse}
// @Router /api/v1/sales/summary [get]
func (h *SalesHandler) SalesSummary(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.salesSvc.SalesSummary(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Product stock history
// @Description Inventory motions of one product, newest first
// @Tags sales
// @Produce json
// @Security Bearer
// @Param id path string true "Product ID"
// @Param limit query int false "Max entries (default 50)"
// @Success 200 {object} shared.Response{data=[]dto.StockHistoryEntry}
// @Router /api/v1/products/{id}/stock_history [get]
func (h *SalesHandler) StockHistory(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))

	resp, err := h.salesSvc.StockHistory(c.Params("id"), limit)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
