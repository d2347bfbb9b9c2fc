package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
)

// InventoryHandler actualización del inventario propio de un negocio (protegido).
type InventoryHandler struct {
	uc *usecase.InventoryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *usecase.InventoryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// UpdateStock godoc
// @Summary      Actualizar stock y precio promocional de un producto
// @Description  Se evalúa como add_to_inventory: un vendedor no puede inventariar medicamentos.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path  string                  true  "ID del producto"
// @Param        body        body  dto.UpdateStockRequest  true  "stock, price_override, batch_number, expiry_date"
// @Success      200   {object}  dto.UpdateStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/{product_id} [put]
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	businessID := GetBusinessID(c)
	if businessID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token sin negocio"})
	}
	productID := c.Params("product_id")
	if productID == "" {
		return badRequest(c, "product_id requerido")
	}
	var in dto.UpdateStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	res, err := h.uc.UpdateStock(c.Context(), businessID, productID, in)
	if err != nil {
		return writeError(c, err)
	}
	if res.NotFound {
		return notFound(c, "producto no encontrado")
	}
	return c.JSON(res)
}
