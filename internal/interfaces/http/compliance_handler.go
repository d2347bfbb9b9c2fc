package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/usecase"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// ComplianceHandler consultas y exportaciones de cumplimiento (solo admin).
type ComplianceHandler struct {
	uc     *usecase.ComplianceUseCase
	export *compliance.ExportUseCase
}

// NewComplianceHandler construye el handler.
func NewComplianceHandler(uc *usecase.ComplianceUseCase, export *compliance.ExportUseCase) *ComplianceHandler {
	return &ComplianceHandler{uc: uc, export: export}
}

// Status godoc
// @Summary      Estado de cumplimiento sobre la ventana móvil
// @Tags         compliance
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ComplianceStatusResponse
// @Router       /api/compliance/status [get]
func (h *ComplianceHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.uc.GetComplianceStatus())
}

// Report godoc
// @Summary      Reporte de violaciones en [start, end)
// @Tags         compliance
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  false  "RFC3339. Por defecto end - 24h"
// @Param        end    query  string  false  "RFC3339. Por defecto ahora"
// @Success      200  {object}  dto.ComplianceReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/compliance/report [get]
func (h *ComplianceHandler) Report(c *fiber.Ctx) error {
	start, end, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.uc.GetComplianceReport(start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res)
}

// ReportPDF descarga el reporte en PDF.
// GET /api/compliance/report/pdf
func (h *ComplianceHandler) ReportPDF(c *fiber.Ctx) error {
	start, end, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	doc, err := h.export.ReportPDF(c.Context(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachment("reporte-cumplimiento", start, end, "pdf"))
	return c.Send(doc)
}

// ReportXML descarga el XML regulatorio; el digest de la forma canónica va en X-Report-Digest.
// GET /api/compliance/report/xml
func (h *ComplianceHandler) ReportXML(c *fiber.Ctx) error {
	start, end, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	doc, digest, err := h.export.ReportXML(c.Context(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, attachment("reporte-cumplimiento", start, end, "xml"))
	c.Set("X-Report-Digest", digest)
	return c.Send(doc)
}

// AuditTrail pista de auditoría en memoria, la más reciente primero.
// GET /api/compliance/audit?limit=
func (h *ComplianceHandler) AuditTrail(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit < 0 {
		return badRequest(c, "limit no puede ser negativo")
	}
	items := h.uc.AuditTrail(limit)
	return c.JSON(fiber.Map{"total": len(items), "items": items})
}

// AuditSpreadsheet descarga la pista de auditoría como XLSX.
// GET /api/compliance/audit/xlsx
func (h *ComplianceHandler) AuditSpreadsheet(c *fiber.Ctx) error {
	doc, err := h.export.AuditSpreadsheet(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="auditoria.xlsx"`)
	return c.Send(doc)
}

// History godoc
// @Summary      Reporte sobre el histórico persistido de violaciones
// @Tags         compliance
// @Security     Bearer
// @Produce      json
// @Param        start           query  string  false  "RFC3339"
// @Param        end             query  string  false  "RFC3339"
// @Param        business_id     query  string  false  "Negocio"
// @Param        classification  query  string  false  "Clasificación"
// @Param        limit           query  int     false  "Máximo 1000"
// @Param        offset          query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.ComplianceReportResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compliance/violations [get]
func (h *ComplianceHandler) History(c *fiber.Ctx) error {
	start, end, err := parsePeriod(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	f := repository.ViolationFilter{
		From:           &start,
		To:             &end,
		BusinessID:     c.Query("business_id"),
		Classification: entity.ViolationClass(c.Query("classification")),
		Limit:          compliance.HistoryLimit(c.QueryInt("limit", compliance.DefaultHistoryLimit)),
		Offset:         c.QueryInt("offset", 0),
	}
	r, err := h.export.HistoryReport(c.Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	res := usecase.ToReportResponse(r)
	res.Page = &dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: r.TotalViolations}
	return c.JSON(res)
}

// parsePeriod lee start/end en RFC3339. Sin end se usa ahora; sin start, end - 24h.
func parsePeriod(c *fiber.Ctx) (time.Time, time.Time, error) {
	end := time.Now().UTC()
	if s := c.Query("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end debe ser RFC3339")
		}
		end = t
	}
	start := end.Add(-24 * time.Hour)
	if s := c.Query("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start debe ser RFC3339")
		}
		start = t
	}
	return start, end, nil
}

func attachment(name string, start, end time.Time, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s_%s_%s.%s"`, name, start.Format("20060102"), end.Format("20060102"), ext)
}
