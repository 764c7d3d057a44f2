package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/supermercado-sim/mercado_api/dto"
	"github.com/supermercado-sim/mercado_api/shared"
)

type ProductHandler struct {
	productSvc ProductServiceInterface
}

func NewProductHandler(productSvc ProductServiceInterface) *ProductHandler {
	return &ProductHandler{productSvc: productSvc}
}

// @Summary List products
// @Description List the active catalog, optionally filtered by category
// @Tags products
// @Produce json
// @Security Bearer
// @Param category_id query string false "Category filter"
// @Success 200 {object} shared.Response{data=[]dto.ProductResponse}
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	resp, err := h.productSvc.ListProducts(c.Query("category_id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Get product
// @Tags products
// @Produce json
// @Security Bearer
// @Param id path string true "Product ID"
// @Success 200 {object} shared.Response{data=dto.ProductResponse}
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	resp, err := h.productSvc.GetProduct(c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary List product categories
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response
// @Router /api/v1/products/categories [get]
func (h *ProductHandler) ListCategories(c *fiber.Ctx) error {
	resp, err := h.productSvc.ListCategories()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary List suppliers
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response
// @Router /api/v1/products/suppliers [get]
func (h *ProductHandler) ListSuppliers(c *fiber.Ctx) error {
	resp, err := h.productSvc.ListSuppliers()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Low stock products
// @Description Products at or below their minimum stock level
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=[]dto.ProductResponse}
// @Router /api/v1/products/low_stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	resp, err := h.productSvc.LowStockProducts()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Out of stock products
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=[]dto.ProductResponse}
// @Router /api/v1/products/out_of_stock [get]
func (h *ProductHandler) OutOfStock(c *fiber.Ctx) error {
	resp, err := h.productSvc.OutOfStockProducts()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Purchase stock
// @Description Buy stock for one product, bounded by max_stock and the balance
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Product ID"
// @Param purchaseRequest body dto.PurchaseRequest true "Quantity and optional unit price"
// @Success 200 {object} shared.Response{data=dto.PurchaseResponse}
// @Router /api/v1/products/{id}/purchase [post]
func (h *ProductHandler) Purchase(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.productSvc.Purchase(userID, c.Params("id"), req)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Restock cost preview
// @Description Price a full restock without executing it
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.RestockCostResponse}
// @Router /api/v1/products/restock_cost [get]
func (h *ProductHandler) RestockCost(c *fiber.Ctx) error {
	resp, err := h.productSvc.RestockCost()
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}

// @Summary Restock everything
// @Description Top every low-stock product up to max_stock; all-or-nothing on funds
// @Tags products
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.RestockAllResponse}
// @Router /api/v1/products/restock_all [post]
func (h *ProductHandler) RestockAll(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.productSvc.RestockAll(userID)
	if err != nil {
		return err
	}

	return shared.ResponseOK(c, resp)
}
