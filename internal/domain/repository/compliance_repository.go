package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ViolationFilter criterios para consultar el histórico persistido de violaciones.
// Campos vacíos o nil no filtran.
type ViolationFilter struct {
	From           *time.Time
	To             *time.Time
	BusinessID     string
	Classification entity.ViolationClass
	Limit          int
	Offset         int
}

// ViolationSummary totales del histórico sobre un filtro completo, sin paginar.
// PerBusiness excluye las violaciones sin negocio.
type ViolationSummary struct {
	Total            int
	Blocked          int
	Critical         int
	ByClassification map[entity.ViolationClass]int
	PerBusiness      map[string]int
}

// ComplianceRepository define el puerto de persistencia append-only de auditoría y violaciones (DIP).
type ComplianceRepository interface {
	AppendAudit(ctx context.Context, entry *entity.AuditLogEntry) error
	AppendViolation(ctx context.Context, v *entity.ComplianceViolation) error
	ListViolations(ctx context.Context, f ViolationFilter) ([]*entity.ComplianceViolation, error)
	// SummarizeViolations ignora Limit y Offset.
	SummarizeViolations(ctx context.Context, f ViolationFilter) (*ViolationSummary, error)
}
