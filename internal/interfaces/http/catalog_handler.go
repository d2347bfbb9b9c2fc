package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain/access"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// CatalogHandler expone el catálogo filtrado por tipo de negocio (protegido).
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// QueryProducts godoc
// @Summary      Catálogo visible para el negocio autenticado
// @Description  Un negocio ve su propia capa de inventario. Un admin indica business_kind
//
//	y opcionalmente business_id; sin business_id recibe el agregado por producto.
//
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        category           query  string  false  "Categoría exacta"
// @Param        prescription_only  query  bool    false  "true = solo con receta, false = solo venta libre"
// @Param        search             query  string  false  "Texto libre (nombre, principio activo, tags)"
// @Param        min_price          query  string  false  "Precio mínimo"
// @Param        max_price          query  string  false  "Precio máximo"
// @Param        in_stock_only      query  bool    false  "Excluir agotados"
// @Param        sort_by            query  string  false  "name|price|rating|newest"
// @Param        sort_order         query  string  false  "asc|desc"
// @Param        limit              query  int     false  "Máximo 100"
// @Param        offset             query  int     false  "Desplazamiento"
// @Param        city_id            query  string  false  "Ciudad para el agregado"
// @Param        governorate_id     query  string  false  "Gobernación para el agregado"
// @Success      200  {object}  dto.CatalogQueryResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/products [get]
func (h *CatalogHandler) QueryProducts(c *fiber.Ctx) error {
	kind, businessID := requester(c)
	f, err := parseFilters(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.uc.QueryCatalog(c.Context(), kind, businessID, f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// GetProduct godoc
// @Summary      Ficha de un producto con control de acceso
// @Description  Una denegación por política responde 200 con allowed=false. Cada llamada queda auditada.
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductAccessResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "id requerido")
	}
	kind, businessID := requester(c)
	res, err := h.uc.GetProduct(c.Context(), id, kind, businessID)
	if err != nil {
		return writeError(c, err)
	}
	if res.NotFound {
		return notFound(c, "producto no encontrado")
	}
	return c.JSON(res)
}

// ListBusinesses directorio de negocios por ubicación.
// GET /api/businesses?kind=&city_id=&governorate_id=
func (h *CatalogHandler) ListBusinesses(c *fiber.Ctx) error {
	res, err := h.uc.ListBusinesses(entity.BusinessKind(c.Query("kind")), c.Query("city_id"), c.Query("governorate_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// requester tipo y negocio en nombre de quien se consulta. Un negocio siempre actúa como
// sí mismo; un admin puede indicar ambos por query.
func requester(c *fiber.Ctx) (entity.BusinessKind, string) {
	if IsAdmin(c) {
		return entity.BusinessKind(c.Query("business_kind")), c.Query("business_id")
	}
	return GetBusinessKind(c), GetBusinessID(c)
}

func parseFilters(c *fiber.Ctx) (access.Filters, error) {
	f := access.Filters{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		InStockOnly:   c.QueryBool("in_stock_only", false),
		SortBy:        access.SortKey(c.Query("sort_by")),
		SortOrder:     access.SortOrder(c.Query("sort_order")),
		CityID:        c.Query("city_id"),
		GovernorateID: c.Query("governorate_id"),
	}
	if s := c.Query("prescription_only"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, errBadParam("prescription_only")
		}
		f.PrescriptionOnly = &b
	}
	var err error
	if f.MinPrice, err = decimalParam(c, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = decimalParam(c, "max_price"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(c, "limit"); err != nil {
		return f, err
	}
	if f.Offset, err = intParam(c, "offset"); err != nil {
		return f, err
	}
	return f, nil
}

func errBadParam(name string) error { return fmt.Errorf("parámetro inválido: %s", name) }

func decimalParam(c *fiber.Ctx, name string) (*decimal.Decimal, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, errBadParam(name)
	}
	return &d, nil
}

func intParam(c *fiber.Ctx, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errBadParam(name)
	}
	return n, nil
}
