package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/application/catalog"
	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ComplianceUseCase validación de acciones y consultas de cumplimiento.
type ComplianceUseCase struct {
	store   *catalog.Store
	monitor *compliance.Monitor
}

// NewComplianceUseCase construye el caso de uso.
func NewComplianceUseCase(store *catalog.Store, monitor *compliance.Monitor) *ComplianceUseCase {
	return &ComplianceUseCase{store: store, monitor: monitor}
}

// ValidateAccess decide si businessID puede ejecutar action sobre productID.
// Siempre agrega una entrada de auditoría; la denegación viaja en la respuesta.
func (uc *ComplianceUseCase) ValidateAccess(_ context.Context, businessID, productID string, action entity.AccessAction) (*dto.ValidateAccessResponse, error) {
	snap, err := uc.store.Snapshot()
	if err != nil {
		return nil, err
	}
	out := uc.monitor.Evaluate(snap, compliance.Request{
		BusinessID: businessID,
		ProductID:  productID,
		Action:     action,
	})
	res := &dto.ValidateAccessResponse{Allowed: out.Allowed}
	if d := out.Denial(); d != nil {
		res.Reason = d.Reason
	}
	if out.Violation != nil {
		v := toViolationResponse(out.Violation)
		res.Violation = &v
	}
	return res, nil
}

// GetComplianceStatus estado sobre la ventana móvil.
func (uc *ComplianceUseCase) GetComplianceStatus() *dto.ComplianceStatusResponse {
	st := uc.monitor.Status()
	return &dto.ComplianceStatusResponse{
		Status:                  string(st.Level),
		RecentViolationsCount:   st.RecentViolations,
		CriticalViolationsCount: st.CriticalViolations,
		LastViolationTimestamp:  st.LastViolationAt,
		Message:                 st.Message,
	}
}

// GetComplianceReport reporte de violaciones retenidas en [start, end).
func (uc *ComplianceUseCase) GetComplianceReport(start, end time.Time) (*dto.ComplianceReportResponse, error) {
	r, err := uc.monitor.Report(start, end)
	if err != nil {
		return nil, err
	}
	return ToReportResponse(r), nil
}

// AuditTrail pista de auditoría retenida, la más reciente primero, acotada a limit.
func (uc *ComplianceUseCase) AuditTrail(limit int) []dto.AuditEntryResponse {
	trail := uc.monitor.AuditTrail()
	if limit <= 0 || limit > len(trail) {
		limit = len(trail)
	}
	out := make([]dto.AuditEntryResponse, 0, limit)
	for i := len(trail) - 1; i >= 0 && len(out) < limit; i-- {
		e := trail[i]
		out = append(out, dto.AuditEntryResponse{
			ID:           e.ID,
			Timestamp:    e.Timestamp,
			BusinessID:   e.BusinessID,
			BusinessKind: string(e.BusinessKind),
			ProductID:    e.ProductID,
			Action:       string(e.Action),
			Allowed:      e.Allowed,
			Reason:       e.Reason,
		})
	}
	return out
}

// ToReportResponse convierte un reporte al DTO de la API.
func ToReportResponse(r *compliance.Report) *dto.ComplianceReportResponse {
	byClass := make(map[string]int, len(r.ByClassification))
	for k, n := range r.ByClassification {
		byClass[string(k)] = n
	}
	violations := make([]dto.ViolationResponse, 0, len(r.Violations))
	for _, v := range r.Violations {
		violations = append(violations, toViolationResponse(v))
	}
	return &dto.ComplianceReportResponse{
		StartTime:            r.Start,
		EndTime:              r.End,
		TotalViolations:      r.TotalViolations,
		BlockedViolations:    r.BlockedViolations,
		CriticalViolations:   r.CriticalViolations,
		OffendingBusinessIDs: nonNil(r.OffendingBusinessIDs),
		ByClassification:     byClass,
		Violations:           violations,
		Recommendations:      nonNil(r.Recommendations),
	}
}

func toViolationResponse(v *entity.ComplianceViolation) dto.ViolationResponse {
	return dto.ViolationResponse{
		ID:             v.ID,
		Timestamp:      v.Timestamp,
		Classification: string(v.Classification),
		Severity:       string(v.Severity),
		BusinessID:     v.BusinessID,
		ProductID:      v.ProductID,
		Blocked:        v.Blocked,
		Reason:         v.Reason,
	}
}
