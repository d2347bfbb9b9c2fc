package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CatalogUC    *usecase.CatalogUseCase
	ComplianceUC *usecase.ComplianceUseCase
	InventoryUC  *usecase.InventoryUseCase
	ExportUC     *compliance.ExportUseCase
	JWTSecret    string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(RoleAdmin, RoleBusiness)

	// Catálogo y directorio
	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	catalog := api.Group("/catalog", anyRole)
	catalog.Get("/products", catalogHandler.QueryProducts)
	catalog.Get("/products/:id", catalogHandler.GetProduct)
	api.Get("/businesses", anyRole, catalogHandler.ListBusinesses)

	// Validación de acciones
	accessHandler := NewAccessHandler(deps.ComplianceUC)
	api.Post("/access/validate", anyRole, accessHandler.Validate)

	// Inventario propio (solo negocios)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	api.Put("/inventory/:product_id", RequireRole(RoleBusiness), inventoryHandler.UpdateStock)

	// Cumplimiento (solo admin)
	complianceHandler := NewComplianceHandler(deps.ComplianceUC, deps.ExportUC)
	comp := api.Group("/compliance", RequireRole(RoleAdmin))
	comp.Get("/status", complianceHandler.Status)
	comp.Get("/report", complianceHandler.Report)
	comp.Get("/report/pdf", complianceHandler.ReportPDF)
	comp.Get("/report/xml", complianceHandler.ReportXML)
	comp.Get("/audit", complianceHandler.AuditTrail)
	comp.Get("/audit/xlsx", complianceHandler.AuditSpreadsheet)
	comp.Get("/violations", complianceHandler.History)
}
