// Package excel exporta la pista de auditoría a XLSX con excelize.
package excel

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// SheetName nombre de la hoja con la auditoría.
const SheetName = "Auditoria"

var headers = []string{"ID", "Fecha (UTC)", "Negocio", "Tipo", "Producto", "Acción", "Permitido", "Motivo"}

var columnWidths = []float64{38, 22, 18, 12, 18, 18, 11, 60}

var _ compliance.AuditSpreadsheetExporter = (*AuditExporter)(nil)

// AuditExporter implementa compliance.AuditSpreadsheetExporter.
type AuditExporter struct{}

// NewAuditExporter construye el exportador.
func NewAuditExporter() *AuditExporter { return &AuditExporter{} }

// ExportAuditTrail escribe una fila por entrada, en el orden recibido, con la cabecera fija.
func (*AuditExporter) ExportAuditTrail(ctx context.Context, entries []*entity.AuditLogEntry) (out []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("excel: cerrar archivo: %w", cerr)
		}
	}()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("excel: crear hoja: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("excel: borrar hoja por defecto: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo de cabecera: %w", err)
	}
	deniedStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#AA1414"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel: estilo de denegación: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(SheetName, colName, colName, columnWidths[i]); err != nil {
			return nil, err
		}
	}

	for i, entry := range entries {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rowNum := i + 2
		allowed := "SI"
		if !entry.Allowed {
			allowed = "NO"
		}
		values := []any{
			entry.ID,
			entry.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			entry.BusinessID,
			string(entry.BusinessKind),
			entry.ProductID,
			string(entry.Action),
			allowed,
			entry.Reason,
		}
		start, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return nil, fmt.Errorf("excel: fila %d: %w", rowNum, err)
		}
		if !entry.Allowed {
			cell, _ := excelize.CoordinatesToCellName(7, rowNum)
			if err := f.SetCellStyle(SheetName, cell, cell, deniedStyle); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("excel: congelar cabecera: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("excel: escribir: %w", err)
	}
	return buf.Bytes(), nil
}
