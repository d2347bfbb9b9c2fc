package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// repeatOffenderThreshold violaciones de un mismo negocio en el período que lo marcan como reincidente.
const repeatOffenderThreshold = 3

// Recomendaciones fijas; el reporte solo selecciona de esta tabla.
const (
	RecommendationCompliant       = "No se registraron violaciones en el período: el marketplace opera en cumplimiento"
	RecommendationCriticalReview  = "Hay violaciones críticas: se recomienda revisión inmediata de los negocios implicados"
	RecommendationVendorTraining  = "Reforzar con los vendedores la prohibición de comercializar medicamentos"
	RecommendationRxWorkflow      = "Revisar los flujos de venta de productos con receta médica"
	RecommendationVerifyRegistry  = "Verificar el registro y el tipo de los negocios que intentaron acceder"
	RecommendationReviewFlags     = "Revisar permisos, estado de activación y flags de elegibilidad del catálogo"
	RecommendationRepeatOffenders = "Evaluar la suspensión temporal de negocios reincidentes"
)

// Report resumen de violaciones en [Start, End).
type Report struct {
	Start                time.Time
	End                  time.Time
	GeneratedAt          time.Time
	TotalViolations      int
	BlockedViolations    int
	CriticalViolations   int
	OffendingBusinessIDs []string
	ByClassification     map[entity.ViolationClass]int
	Violations           []*entity.ComplianceViolation
	Recommendations      []string
}

type recommendationRule struct {
	applies func(r *Report, perBusiness map[string]int) bool
	text    string
}

// Tabla de reglas en orden de presentación.
var recommendationRules = []recommendationRule{
	{func(r *Report, _ map[string]int) bool { return r.TotalViolations == 0 }, RecommendationCompliant},
	{func(r *Report, _ map[string]int) bool { return r.CriticalViolations > 0 }, RecommendationCriticalReview},
	{func(r *Report, _ map[string]int) bool {
		return r.ByClassification[entity.ViolationUnauthorizedMedicine] > 0
	}, RecommendationVendorTraining},
	{func(r *Report, _ map[string]int) bool {
		return r.ByClassification[entity.ViolationUnauthorizedPrescription] > 0
	}, RecommendationRxWorkflow},
	{func(r *Report, _ map[string]int) bool {
		return r.ByClassification[entity.ViolationInvalidBusinessType] > 0
	}, RecommendationVerifyRegistry},
	{func(r *Report, _ map[string]int) bool {
		return r.ByClassification[entity.ViolationMissingPermissions] > 0
	}, RecommendationReviewFlags},
	{func(_ *Report, perBusiness map[string]int) bool {
		for _, n := range perBusiness {
			if n >= repeatOffenderThreshold {
				return true
			}
		}
		return false
	}, RecommendationRepeatOffenders},
}

// Report genera el reporte de violaciones retenidas en [start, end).
func (m *Monitor) Report(start, end time.Time) (*Report, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: el inicio del período debe ser anterior al fin", domain.ErrInvalidInput)
	}
	m.mu.RLock()
	var inRange []*entity.ComplianceViolation
	for _, v := range m.violations.items {
		if !v.Timestamp.Before(start) && v.Timestamp.Before(end) {
			inRange = append(inRange, v)
		}
	}
	m.mu.RUnlock()
	return BuildReport(start, end, m.now(), inRange), nil
}

// BuildReport arma el reporte sobre un conjunto de violaciones ya filtrado por período.
func BuildReport(start, end, generatedAt time.Time, violations []*entity.ComplianceViolation) *Report {
	return BuildSummaryReport(start, end, generatedAt, violations, Summarize(violations))
}

// Summarize cuenta las violaciones por bloqueo, severidad, clasificación y negocio.
func Summarize(violations []*entity.ComplianceViolation) *repository.ViolationSummary {
	s := &repository.ViolationSummary{
		ByClassification: make(map[entity.ViolationClass]int),
		PerBusiness:      make(map[string]int),
	}
	for _, v := range violations {
		s.Total++
		if v.Blocked {
			s.Blocked++
		}
		if v.Severity == entity.SeverityCritical {
			s.Critical++
		}
		s.ByClassification[v.Classification]++
		if v.BusinessID != "" {
			s.PerBusiness[v.BusinessID]++
		}
	}
	return s
}

// BuildSummaryReport arma el reporte con los totales de sum; violations puede ser
// solo una página del período (histórico persistido).
func BuildSummaryReport(start, end, generatedAt time.Time, violations []*entity.ComplianceViolation, sum *repository.ViolationSummary) *Report {
	r := &Report{
		Start:              start,
		End:                end,
		GeneratedAt:        generatedAt,
		TotalViolations:    sum.Total,
		BlockedViolations:  sum.Blocked,
		CriticalViolations: sum.Critical,
		ByClassification:   make(map[entity.ViolationClass]int, len(sum.ByClassification)),
		Violations:         violations,
	}
	if r.Violations == nil {
		r.Violations = []*entity.ComplianceViolation{}
	}
	for c, n := range sum.ByClassification {
		r.ByClassification[c] = n
	}
	r.OffendingBusinessIDs = make([]string, 0, len(sum.PerBusiness))
	for id := range sum.PerBusiness {
		r.OffendingBusinessIDs = append(r.OffendingBusinessIDs, id)
	}
	sort.Strings(r.OffendingBusinessIDs)

	r.Recommendations = []string{}
	for _, rule := range recommendationRules {
		if rule.applies(r, sum.PerBusiness) {
			r.Recommendations = append(r.Recommendations, rule.text)
		}
	}
	return r
}
