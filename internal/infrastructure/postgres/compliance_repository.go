package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.ComplianceRepository = (*ComplianceRepo)(nil)

// psql builder con placeholders $N de PostgreSQL.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// maxHistoryLimit coincide con compliance.MaxHistoryLimit.
const maxHistoryLimit = 1000

// ComplianceRepo histórico append-only de auditoría y violaciones.
type ComplianceRepo struct {
	q Querier
}

// NewComplianceRepository construye el adaptador. Acepta pool o tx (Querier).
func NewComplianceRepository(q Querier) *ComplianceRepo {
	return &ComplianceRepo{q: q}
}

func (r *ComplianceRepo) AppendAudit(ctx context.Context, e *entity.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (id, occurred_at, business_id, business_kind, product_id, action, allowed, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Timestamp, e.BusinessID, string(e.BusinessKind), e.ProductID, string(e.Action), e.Allowed, e.Reason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("append audit: %w", err)
	}
	return nil
}

func (r *ComplianceRepo) AppendViolation(ctx context.Context, v *entity.ComplianceViolation) error {
	query := `
		INSERT INTO compliance_violations (id, occurred_at, classification, severity, business_id, product_id, blocked, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		v.ID, v.Timestamp, string(v.Classification), string(v.Severity), v.BusinessID, v.ProductID, v.Blocked, v.Reason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("append violation: %w", err)
	}
	return nil
}

// ListViolations consulta el histórico en orden cronológico; el período es [From, To).
func (r *ComplianceRepo) ListViolations(ctx context.Context, f repository.ViolationFilter) ([]*entity.ComplianceViolation, error) {
	b := psql.
		Select("id", "occurred_at", "classification", "severity", "business_id", "product_id", "blocked", "reason").
		From("compliance_violations").
		OrderBy("occurred_at ASC", "id ASC")
	b = whereViolations(b, f)
	limit := f.Limit
	if limit <= 0 || limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	b = b.Limit(uint64(limit))
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build violations query: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	var list []*entity.ComplianceViolation
	for rows.Next() {
		var (
			v               entity.ComplianceViolation
			class, severity string
		)
		if err := rows.Scan(&v.ID, &v.Timestamp, &class, &severity, &v.BusinessID, &v.ProductID, &v.Blocked, &v.Reason); err != nil {
			return nil, fmt.Errorf("scan violation: %w", err)
		}
		v.Classification = entity.ViolationClass(class)
		v.Severity = entity.Severity(severity)
		list = append(list, &v)
	}
	return list, rows.Err()
}

// SummarizeViolations totales sobre todo el filtro, agrupados por (negocio, clasificación).
func (r *ComplianceRepo) SummarizeViolations(ctx context.Context, f repository.ViolationFilter) (*repository.ViolationSummary, error) {
	b := psql.
		Select("business_id", "classification", "COUNT(*)", "COUNT(*) FILTER (WHERE blocked)").
		Column(sq.Expr("COUNT(*) FILTER (WHERE severity = ?)", string(entity.SeverityCritical))).
		From("compliance_violations").
		GroupBy("business_id", "classification")
	b = whereViolations(b, f)

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build violations summary: %w", err)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("summarize violations: %w", err)
	}
	defer rows.Close()

	sum := &repository.ViolationSummary{
		ByClassification: make(map[entity.ViolationClass]int),
		PerBusiness:      make(map[string]int),
	}
	for rows.Next() {
		var (
			businessID, class        string
			total, blocked, critical int64
		)
		if err := rows.Scan(&businessID, &class, &total, &blocked, &critical); err != nil {
			return nil, fmt.Errorf("scan violations summary: %w", err)
		}
		sum.Total += int(total)
		sum.Blocked += int(blocked)
		sum.Critical += int(critical)
		sum.ByClassification[entity.ViolationClass(class)] += int(total)
		if businessID != "" {
			sum.PerBusiness[businessID] += int(total)
		}
	}
	return sum, rows.Err()
}

func whereViolations(b sq.SelectBuilder, f repository.ViolationFilter) sq.SelectBuilder {
	if f.From != nil {
		b = b.Where(sq.GtOrEq{"occurred_at": *f.From})
	}
	if f.To != nil {
		b = b.Where(sq.Lt{"occurred_at": *f.To})
	}
	if f.BusinessID != "" {
		b = b.Where(sq.Eq{"business_id": f.BusinessID})
	}
	if f.Classification != "" {
		b = b.Where(sq.Eq{"classification": string(f.Classification)})
	}
	return b
}
