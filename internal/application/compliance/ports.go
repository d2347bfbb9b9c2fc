package compliance

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ReportPDFGenerator genera la representación PDF de un reporte de cumplimiento.
type ReportPDFGenerator interface {
	GenerateReportPDF(ctx context.Context, r *Report) ([]byte, error)
}

// ReportXMLExporter genera el XML regulatorio del reporte y el digest SHA-256 (base64)
// calculado sobre su forma canónica.
type ReportXMLExporter interface {
	ExportReportXML(ctx context.Context, r *Report) (doc []byte, digest string, err error)
}

// AuditSpreadsheetExporter exporta la pista de auditoría a una hoja de cálculo.
type AuditSpreadsheetExporter interface {
	ExportAuditTrail(ctx context.Context, entries []*entity.AuditLogEntry) ([]byte, error)
}
