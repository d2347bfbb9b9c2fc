package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/catalog"
	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/inventory"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/excel"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/xmlreport"
	apphttp "github.com/jhoicas/Catalogo-api/internal/interfaces/http"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// App completa sobre un catálogo en memoria
// ──────────────────────────────────────────────────────────────────────────────

func loadedStore(t *testing.T) *catalog.Store {
	t.Helper()
	products := []*entity.MasterProduct{
		{ID: "med-1", Name: "Paracetamol 500mg", Kind: entity.ProductKindMedicine, Category: "analgesics", PharmacyEligible: true, MinStockThreshold: 10},
		{ID: "sup-1", Name: "Gasas estériles", Kind: entity.ProductKindMedicalSupply, Category: "first-aid", PharmacyEligible: true, VendorEligible: true, MinStockThreshold: 10},
		{ID: "hyg-1", Name: "Jabón neutro", Kind: entity.ProductKindHygieneSupply, Category: "hygiene", VendorEligible: true, MinStockThreshold: 10},
	}
	businesses := []*entity.Business{
		{ID: "ph-1", Kind: entity.BusinessKindPharmacy, IsActive: true, Rating: 4.5},
		{ID: "v-1", Kind: entity.BusinessKindVendor, IsActive: true, Rating: 4},
	}
	snap, err := catalog.NewSnapshot(1, products, businesses)
	require.NoError(t, err)
	return catalog.NewStoreFromSnapshot(snap, logger.Nop())
}

func buildApp(store *catalog.Store) *fiber.App {
	repo := memory.NewInventoryRepository(&entity.StockRecord{BusinessID: "ph-1", ProductID: "med-1", Stock: 50})
	synth := inventory.NewSynthesizer(repo, memory.NewKVStore(), time.Minute, logger.Nop())
	monitor := compliance.NewMonitor(compliance.Config{}, logger.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		CatalogUC:    usecase.NewCatalogUseCase(store, synth, monitor, logger.Nop(), true),
		ComplianceUC: usecase.NewComplianceUseCase(store, monitor),
		InventoryUC:  usecase.NewInventoryUseCase(store, repo, synth, monitor, logger.Nop()),
		ExportUC: compliance.NewExportUseCase(monitor,
			pdf.NewMarotoPDFGenerator("catalogo-api"),
			xmlreport.NewExporter("catalogo-api"),
			excel.NewAuditExporter(),
			nil),
		JWTSecret: testJWTSecret,
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", auth)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

var (
	vendorAuth   = func(t *testing.T) string { return token(t, "v-1", "vendor", apphttp.RoleBusiness) }
	pharmacyAuth = func(t *testing.T) string { return token(t, "ph-1", "pharmacy", apphttp.RoleBusiness) }
	adminAuth    = func(t *testing.T) string { return token(t, "", "", apphttp.RoleAdmin) }
)

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: el vendedor recibe solo productos no regulados.
func TestCatalog_VendedorSinMedicamentos(t *testing.T) {
	app := buildApp(loadedStore(t))
	resp := call(t, app, http.MethodGet, "/api/catalog/products", vendorAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	res := decode[dto.CatalogQueryResponse](t, resp)
	require.Len(t, res.Items, 2)
	for _, it := range res.Items {
		assert.NotEqual(t, "medicine", it.Kind)
	}
	assert.Equal(t, "restricted", res.AccessLevel)
}

// Caso 2: la denegación por política es 200 con allowed=false; el inexistente es 404.
func TestCatalog_FichaDenegadaYNoEncontrada(t *testing.T) {
	app := buildApp(loadedStore(t))

	resp := call(t, app, http.MethodGet, "/api/catalog/products/med-1", vendorAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.ProductAccessResponse](t, resp)
	assert.False(t, res.Allowed)
	assert.Nil(t, res.Product)

	resp = call(t, app, http.MethodGet, "/api/catalog/products/nope", vendorAuth(t), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/catalog/products/med-1", pharmacyAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ok := decode[dto.ProductAccessResponse](t, resp)
	require.True(t, ok.Allowed)
	assert.Equal(t, 50, ok.Product.Stock)
}

// Caso 3: filtros mal formados → 400.
func TestCatalog_FiltrosInvalidos(t *testing.T) {
	app := buildApp(loadedStore(t))
	for _, q := range []string{
		"?sort_by=popularidad",
		"?sort_order=up",
		"?min_price=abc",
		"?min_price=10&max_price=5",
		"?limit=-1",
		"?prescription_only=quizas",
	} {
		resp := call(t, app, http.MethodGet, "/api/catalog/products"+q, pharmacyAuth(t), nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

// Caso 4: un admin consulta en nombre de un tipo de negocio; sin tipo es 400.
func TestCatalog_AdminEnNombreDe(t *testing.T) {
	app := buildApp(loadedStore(t))

	resp := call(t, app, http.MethodGet, "/api/catalog/products?business_kind=pharmacy", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.CatalogQueryResponse](t, resp)
	assert.Equal(t, 2, res.TotalCount)
	require.NotEmpty(t, res.Items)
	assert.NotNil(t, res.Items[0].Aggregate)

	resp = call(t, app, http.MethodGet, "/api/catalog/products", adminAuth(t), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Caso 5: la ficha pedida por un admin sin tipo ni negocio es 400 y no se audita.
func TestCatalog_AdminFichaSinContexto(t *testing.T) {
	app := buildApp(loadedStore(t))

	resp := call(t, app, http.MethodGet, "/api/catalog/products/sup-1", adminAuth(t), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/compliance/status", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dto.ComplianceStatusResponse](t, resp)
	assert.Equal(t, "compliant", st.Status)
	assert.Equal(t, 0, st.RecentViolationsCount)

	resp = call(t, app, http.MethodGet, "/api/compliance/audit", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	trail := decode[struct {
		Total int `json:"total"`
	}](t, resp)
	assert.Equal(t, 0, trail.Total)

	resp = call(t, app, http.MethodGet, "/api/catalog/products/sup-1?business_kind=pharmacy", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.ProductAccessResponse](t, resp).Allowed)
}

func TestCatalog_NoCargado503(t *testing.T) {
	store := catalog.NewStore(memory.NewFileCatalogSource("no-existe.json"), logger.Nop())
	app := buildApp(store)
	resp := call(t, app, http.MethodGet, "/api/catalog/products", vendorAuth(t), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestBusinesses(t *testing.T) {
	app := buildApp(loadedStore(t))
	resp := call(t, app, http.MethodGet, "/api/businesses?kind=vendor", vendorAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.BusinessListResponse](t, resp)
	assert.Equal(t, 1, res.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación e inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestAccessValidate(t *testing.T) {
	app := buildApp(loadedStore(t))

	resp := call(t, app, http.MethodPost, "/api/access/validate", vendorAuth(t),
		dto.ValidateAccessRequest{ProductID: "med-1", Action: "sell"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.ValidateAccessResponse](t, resp)
	assert.False(t, res.Allowed)
	require.NotNil(t, res.Violation)
	assert.Equal(t, "critical", res.Violation.Severity)

	// Un negocio no puede suplantar a otro: business_id del body se ignora.
	resp = call(t, app, http.MethodPost, "/api/access/validate", vendorAuth(t),
		dto.ValidateAccessRequest{BusinessID: "ph-1", ProductID: "med-1", Action: "view"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[dto.ValidateAccessResponse](t, resp).Allowed)

	resp = call(t, app, http.MethodPost, "/api/access/validate", adminAuth(t),
		dto.ValidateAccessRequest{BusinessID: "ph-1", ProductID: "med-1", Action: "view"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.ValidateAccessResponse](t, resp).Allowed)

	resp = call(t, app, http.MethodPost, "/api/access/validate", vendorAuth(t),
		dto.ValidateAccessRequest{ProductID: "med-1"})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInventoryUpdate(t *testing.T) {
	app := buildApp(loadedStore(t))

	resp := call(t, app, http.MethodPut, "/api/inventory/sup-1", pharmacyAuth(t), dto.UpdateStockRequest{Stock: 25})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[dto.UpdateStockResponse](t, resp)
	require.True(t, res.Allowed)
	assert.Equal(t, 25, res.Inventory.Stock)

	resp = call(t, app, http.MethodPut, "/api/inventory/med-1", vendorAuth(t), dto.UpdateStockRequest{Stock: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, decode[dto.UpdateStockResponse](t, resp).Allowed)

	resp = call(t, app, http.MethodPut, "/api/inventory/sup-1", pharmacyAuth(t), dto.UpdateStockRequest{Stock: -3})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/inventory/nope", pharmacyAuth(t), dto.UpdateStockRequest{Stock: 1})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, http.MethodPut, "/api/inventory/sup-1", adminAuth(t), dto.UpdateStockRequest{Stock: 1})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cumplimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestCompliance_SoloAdmin(t *testing.T) {
	app := buildApp(loadedStore(t))
	for _, path := range []string{"/api/compliance/status", "/api/compliance/report", "/api/compliance/audit"} {
		resp := call(t, app, http.MethodGet, path, pharmacyAuth(t), nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}
}

func TestCompliance_EstadoReporteYAuditoria(t *testing.T) {
	app := buildApp(loadedStore(t))

	resp := call(t, app, http.MethodGet, "/api/compliance/status", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "compliant", decode[dto.ComplianceStatusResponse](t, resp).Status)

	resp = call(t, app, http.MethodGet, "/api/catalog/products/med-1", vendorAuth(t), nil)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/compliance/status", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decode[dto.ComplianceStatusResponse](t, resp)
	assert.Equal(t, "violation", st.Status)
	assert.Equal(t, 1, st.CriticalViolationsCount)

	resp = call(t, app, http.MethodGet, "/api/compliance/report", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[dto.ComplianceReportResponse](t, resp)
	assert.Equal(t, 1, rep.TotalViolations)
	assert.Equal(t, []string{"v-1"}, rep.OffendingBusinessIDs)

	resp = call(t, app, http.MethodGet, "/api/compliance/report?start=ayer", adminAuth(t), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, http.MethodGet, "/api/compliance/audit?limit=10", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	trail := decode[struct {
		Total int                      `json:"total"`
		Items []dto.AuditEntryResponse `json:"items"`
	}](t, resp)
	require.Equal(t, 1, trail.Total)
	assert.Equal(t, "med-1", trail.Items[0].ProductID)
	assert.False(t, trail.Items[0].Allowed)
}

func TestCompliance_Exportaciones(t *testing.T) {
	app := buildApp(loadedStore(t))
	resp := call(t, app, http.MethodGet, "/api/catalog/products/med-1", vendorAuth(t), nil)
	resp.Body.Close()

	resp = call(t, app, http.MethodGet, "/api/compliance/report/xml", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Report-Digest"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xml")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "v-1")

	resp = call(t, app, http.MethodGet, "/api/compliance/audit/xlsx", adminAuth(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, bytes.HasPrefix(body, []byte("PK")), "un xlsx es un zip")

	// Sin persistencia el historial no está disponible.
	resp = call(t, app, http.MethodGet, "/api/compliance/violations", adminAuth(t), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
