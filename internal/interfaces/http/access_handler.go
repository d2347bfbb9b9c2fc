package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// AccessHandler validación explícita de acciones sobre productos (protegido).
type AccessHandler struct {
	uc *usecase.ComplianceUseCase
}

// NewAccessHandler construye el handler.
func NewAccessHandler(uc *usecase.ComplianceUseCase) *AccessHandler {
	return &AccessHandler{uc: uc}
}

// Validate godoc
// @Summary      Validar una acción sobre un producto
// @Description  Siempre auditado. Una denegación responde 200 con allowed=false y, si es regulatoria, la violación.
// @Tags         access
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ValidateAccessRequest  true  "product_id, action (view|sell|add_to_inventory|process_order)"
// @Success      200   {object}  dto.ValidateAccessResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/access/validate [post]
func (h *AccessHandler) Validate(c *fiber.Ctx) error {
	var in dto.ValidateAccessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.ProductID == "" || in.Action == "" {
		return badRequest(c, "product_id y action son requeridos")
	}
	businessID := GetBusinessID(c)
	if IsAdmin(c) && in.BusinessID != "" {
		businessID = in.BusinessID
	}
	if businessID == "" {
		return badRequest(c, "business_id requerido")
	}
	res, err := h.uc.ValidateAccess(c.Context(), businessID, in.ProductID, entity.AccessAction(in.Action))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}
