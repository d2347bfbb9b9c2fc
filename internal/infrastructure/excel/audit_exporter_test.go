package excel_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/excel"
)

func TestExportAuditTrail(t *testing.T) {
	ts := time.Date(2026, 6, 2, 10, 30, 0, 0, time.UTC)
	entries := []*entity.AuditLogEntry{
		{ID: "a-1", Timestamp: ts, BusinessID: "ph-1", BusinessKind: entity.BusinessKindPharmacy, ProductID: "p-1", Action: entity.ActionView, Allowed: true},
		{ID: "a-2", Timestamp: ts.Add(time.Second), BusinessID: "v-1", BusinessKind: entity.BusinessKindVendor, ProductID: "p-1", Action: entity.ActionSell, Reason: "medicamento"},
	}

	out, err := excel.NewAuditExporter().ExportAuditTrail(context.Background(), entries)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{excel.SheetName}, f.GetSheetList())
	rows, err := f.GetRows(excel.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "a-1", rows[1][0])
	assert.Equal(t, "2026-06-02 10:30:00", rows[1][1])
	assert.Equal(t, "SI", rows[1][6])
	assert.Equal(t, "NO", rows[2][6])
	assert.Equal(t, "medicamento", rows[2][7])
}

func TestExportAuditTrail_Empty(t *testing.T) {
	out, err := excel.NewAuditExporter().ExportAuditTrail(context.Background(), nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(excel.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "solo la cabecera")
}
