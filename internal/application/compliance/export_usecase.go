package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// ExportUseCase exportaciones de cumplimiento (PDF, XML regulatorio, hoja de auditoría)
// y consultas sobre el histórico persistido.
type ExportUseCase struct {
	monitor *Monitor
	pdf     ReportPDFGenerator
	xml     ReportXMLExporter
	sheet   AuditSpreadsheetExporter
	history repository.ComplianceRepository
}

// NewExportUseCase construye el caso de uso. history puede ser nil si no hay persistencia.
func NewExportUseCase(
	monitor *Monitor,
	pdf ReportPDFGenerator,
	xml ReportXMLExporter,
	sheet AuditSpreadsheetExporter,
	history repository.ComplianceRepository,
) *ExportUseCase {
	return &ExportUseCase{monitor: monitor, pdf: pdf, xml: xml, sheet: sheet, history: history}
}

// ReportPDF genera el PDF del reporte en [start, end).
func (uc *ExportUseCase) ReportPDF(ctx context.Context, start, end time.Time) ([]byte, error) {
	r, err := uc.monitor.Report(start, end)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateReportPDF(ctx, r)
}

// ReportXML genera el XML regulatorio del reporte en [start, end) y su digest.
func (uc *ExportUseCase) ReportXML(ctx context.Context, start, end time.Time) ([]byte, string, error) {
	r, err := uc.monitor.Report(start, end)
	if err != nil {
		return nil, "", err
	}
	return uc.xml.ExportReportXML(ctx, r)
}

// AuditSpreadsheet exporta la pista de auditoría retenida.
func (uc *ExportUseCase) AuditSpreadsheet(ctx context.Context) ([]byte, error) {
	return uc.sheet.ExportAuditTrail(ctx, uc.monitor.AuditTrail())
}

// Paginación del histórico persistido.
const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

// HistoryLimit normaliza el tamaño de página pedido para el histórico.
func HistoryLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultHistoryLimit
	case n > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return n
	}
}

// HistoryReport arma un reporte sobre el histórico persistido (más allá de la retención en memoria).
// Los totales cubren todo el filtro; Violations es la página [Offset, Offset+Limit).
func (uc *ExportUseCase) HistoryReport(ctx context.Context, f repository.ViolationFilter) (*Report, error) {
	if uc.history == nil {
		return nil, fmt.Errorf("histórico de cumplimiento no configurado: %w", domain.ErrNotFound)
	}
	if f.From == nil || f.To == nil || !f.From.Before(*f.To) {
		return nil, fmt.Errorf("%w: se requiere un período válido", domain.ErrInvalidInput)
	}
	if f.Offset < 0 {
		return nil, fmt.Errorf("%w: offset negativo", domain.ErrInvalidInput)
	}
	f.Limit = HistoryLimit(f.Limit)

	sum, err := uc.history.SummarizeViolations(ctx, f)
	if err != nil {
		return nil, err
	}
	page, err := uc.history.ListViolations(ctx, f)
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = []*entity.ComplianceViolation{}
	}
	return BuildSummaryReport(*f.From, *f.To, time.Now(), page, sum), nil
}
