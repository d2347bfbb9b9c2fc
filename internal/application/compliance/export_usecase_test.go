package compliance_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

type stubExporters struct {
	lastReport  *compliance.Report
	lastEntries int
}

func (s *stubExporters) GenerateReportPDF(_ context.Context, r *compliance.Report) ([]byte, error) {
	s.lastReport = r
	return []byte("%PDF-stub"), nil
}

func (s *stubExporters) ExportReportXML(_ context.Context, r *compliance.Report) ([]byte, string, error) {
	s.lastReport = r
	return []byte("<xml/>"), "digest", nil
}

func (s *stubExporters) ExportAuditTrail(_ context.Context, entries []*entity.AuditLogEntry) ([]byte, error) {
	s.lastEntries = len(entries)
	return []byte("xlsx"), nil
}

func TestExportUseCase_DelegaConElReporteDelMonitor(t *testing.T) {
	clk := newClock()
	m := newMonitor(compliance.Config{}, compliance.WithClock(clk.Now))
	m.Evaluate(directory(t), view("V1", "1"))
	m.Evaluate(directory(t), view("P1", "1"))

	stub := &stubExporters{}
	uc := compliance.NewExportUseCase(m, stub, stub, stub, nil)
	ctx := context.Background()
	start, end := clk.Now().Add(-time.Hour), clk.Now().Add(time.Hour)

	doc, err := uc.ReportPDF(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-stub", string(doc))
	require.NotNil(t, stub.lastReport)
	assert.Equal(t, 1, stub.lastReport.TotalViolations)

	_, digest, err := uc.ReportXML(ctx, start, end)
	require.NoError(t, err)
	assert.Equal(t, "digest", digest)

	_, err = uc.AuditSpreadsheet(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.lastEntries)

	_, err = uc.ReportPDF(ctx, end, start)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestExportUseCase_HistoryReport(t *testing.T) {
	stub := &stubExporters{}
	m := newMonitor(compliance.Config{})

	_, err := compliance.NewExportUseCase(m, stub, stub, stub, nil).HistoryReport(context.Background(), repository.ViolationFilter{})
	assert.True(t, errors.Is(err, domain.ErrNotFound), "sin histórico configurado")

	repo := &fakeRepo{violations: []*entity.ComplianceViolation{
		{ID: "v1", BusinessID: "V1", Classification: entity.ViolationUnauthorizedMedicine, Severity: entity.SeverityCritical, Blocked: true},
	}}
	uc := compliance.NewExportUseCase(m, stub, stub, stub, repo)

	_, err = uc.HistoryReport(context.Background(), repository.ViolationFilter{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), "el período es obligatorio")

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	r, err := uc.HistoryReport(context.Background(), repository.ViolationFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, 1, r.CriticalViolations)
	assert.Equal(t, []string{"V1"}, r.OffendingBusinessIDs)
}

// pagedRepo respeta Limit/Offset en ListViolations, como el adaptador PostgreSQL.
type pagedRepo struct {
	fakeRepo
	lastLimit int
}

func (r *pagedRepo) ListViolations(_ context.Context, f repository.ViolationFilter) ([]*entity.ComplianceViolation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = f.Limit
	start := min(f.Offset, len(r.violations))
	end := min(start+f.Limit, len(r.violations))
	return r.violations[start:end], nil
}

// Los totales del histórico cubren todo el período aunque la lista venga paginada.
func TestExportUseCase_HistoryReportTotalesSinTruncar(t *testing.T) {
	repo := &pagedRepo{}
	for i := 0; i < 250; i++ {
		v := &entity.ComplianceViolation{
			ID: fmt.Sprintf("v%03d", i), BusinessID: fmt.Sprintf("V%d", i%7),
			Classification: entity.ViolationUnauthorizedPrescription, Severity: entity.SeverityHigh, Blocked: true,
		}
		if i%10 == 0 {
			v.Classification, v.Severity = entity.ViolationUnauthorizedMedicine, entity.SeverityCritical
		}
		repo.violations = append(repo.violations, v)
	}
	stub := &stubExporters{}
	uc := compliance.NewExportUseCase(newMonitor(compliance.Config{}), stub, stub, stub, repo)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	// Caso 1: sin límite se usa la página por defecto.
	r, err := uc.HistoryReport(context.Background(), repository.ViolationFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, compliance.DefaultHistoryLimit, repo.lastLimit)
	assert.Len(t, r.Violations, compliance.DefaultHistoryLimit)
	assert.Equal(t, 250, r.TotalViolations)
	assert.Equal(t, 250, r.BlockedViolations)
	assert.Equal(t, 25, r.CriticalViolations)
	assert.Equal(t, 25, r.ByClassification[entity.ViolationUnauthorizedMedicine])
	assert.Len(t, r.OffendingBusinessIDs, 7)
	assert.Contains(t, r.Recommendations, compliance.RecommendationRepeatOffenders)

	// Caso 2: la última página es parcial; los totales no cambian.
	r, err = uc.HistoryReport(context.Background(), repository.ViolationFilter{From: &from, To: &to, Limit: 100, Offset: 200})
	require.NoError(t, err)
	assert.Len(t, r.Violations, 50)
	assert.Equal(t, 250, r.TotalViolations)

	// Caso 3: un límite excesivo se acota.
	_, err = uc.HistoryReport(context.Background(), repository.ViolationFilter{From: &from, To: &to, Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, compliance.MaxHistoryLimit, repo.lastLimit)

	_, err = uc.HistoryReport(context.Background(), repository.ViolationFilter{From: &from, To: &to, Offset: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}
