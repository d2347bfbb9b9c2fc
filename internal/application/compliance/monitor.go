// Package compliance evalúa cada intento de acceso a un producto, lo registra en la
// pista de auditoría y materializa como violación las denegaciones de origen regulatorio.
//
// Ciclo de un intento: REQUESTED → EVALUATING → {ALLOWED | DENIED}. La política es
// fail-closed: solo se permite si la compuerta regulatoria pasa explícitamente.
package compliance

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/access"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

// State estado de un intento de acceso.
type State string

const (
	StateRequested  State = "REQUESTED"
	StateEvaluating State = "EVALUATING"
	StateAllowed    State = "ALLOWED"
	StateDenied     State = "DENIED"
)

// Directory lectura del catálogo que necesita el monitor (lo implementa *catalog.Snapshot).
type Directory interface {
	ProductByID(id string) (*entity.MasterProduct, error)
	BusinessByID(id string) (*entity.Business, error)
}

// Sink recibe los registros ya confirmados para persistirlos o publicarlos fuera del proceso.
// Enqueue no debe bloquear.
type Sink interface {
	Enqueue(ev Event) bool
}

// Config parámetros del monitor. Los valores cero toman los defaults.
type Config struct {
	MaxAuditEntries    int           // default 10000
	MaxViolations      int           // default 10000
	ViolationRetention time.Duration // default 90 días
	StatusWindow       time.Duration // default 24h
	WarningThreshold   int           // default 5
}

func (c *Config) applyDefaults() {
	if c.MaxAuditEntries <= 0 {
		c.MaxAuditEntries = 10000
	}
	if c.MaxViolations <= 0 {
		c.MaxViolations = 10000
	}
	if c.ViolationRetention <= 0 {
		c.ViolationRetention = 90 * 24 * time.Hour
	}
	if c.StatusWindow <= 0 {
		c.StatusWindow = 24 * time.Hour
	}
	if c.WarningThreshold <= 0 {
		c.WarningThreshold = 5
	}
}

// Request intento de acceso. Si BusinessID está vacío se evalúa solo con ClaimedKind.
type Request struct {
	BusinessID  string
	ClaimedKind entity.BusinessKind
	ProductID   string
	Action      entity.AccessAction
}

// Outcome resultado tipado de la evaluación. Una denegación no es un error.
type Outcome struct {
	State     State
	Allowed   bool
	Reason    string
	NotFound  bool
	Kind      entity.BusinessKind // tipo efectivo usado para decidir
	Product   *entity.MasterProduct
	Business  *entity.Business
	Entry     *entity.AuditLogEntry
	Violation *entity.ComplianceViolation
}

// Denial devuelve la denegación tipada, o nil si el intento fue permitido.
func (o Outcome) Denial() *domain.PolicyDenied {
	if o.Allowed {
		return nil
	}
	d := &domain.PolicyDenied{Reason: o.Reason}
	if o.Violation != nil {
		d.Classification = string(o.Violation.Classification)
	}
	return d
}

// Monitor dueño de la pista de auditoría y de la lista de violaciones.
type Monitor struct {
	cfg   Config
	log   *logger.Logger
	sink  Sink
	now   func() time.Time
	newID func() string

	mu         sync.RWMutex
	audit      *boundedLog[*entity.AuditLogEntry]
	violations *boundedLog[*entity.ComplianceViolation]
}

// Option configura el monitor.
type Option func(*Monitor)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithSink conecta un destino asíncrono para auditoría y violaciones.
func WithSink(s Sink) Option {
	return func(m *Monitor) { m.sink = s }
}

// NewMonitor construye el monitor con estado vacío.
func NewMonitor(cfg Config, log *logger.Logger, opts ...Option) *Monitor {
	cfg.applyDefaults()
	m := &Monitor{
		cfg:        cfg,
		log:        log,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		audit:      newBoundedLog[*entity.AuditLogEntry](cfg.MaxAuditEntries),
		violations: newBoundedLog[*entity.ComplianceViolation](cfg.MaxViolations),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Config devuelve la configuración efectiva (con defaults aplicados).
func (m *Monitor) Config() Config { return m.cfg }

// Evaluate decide el intento, lo registra en la auditoría y, si corresponde, crea la violación.
// Siempre agrega exactamente una entrada de auditoría.
func (m *Monitor) Evaluate(dir Directory, req Request) Outcome {
	state := StateRequested
	m.log.Trace().Str("state", string(state)).Str("business_id", req.BusinessID).Str("product_id", req.ProductID).Msg("intento de acceso")
	state = StateEvaluating

	out := m.decide(dir, req)
	if out.Allowed {
		state = StateAllowed
	} else {
		state = StateDenied
	}
	out.State = state
	m.record(req, &out)
	return out
}

// decide aplica las reglas en orden de prioridad de clasificación.
func (m *Monitor) decide(dir Directory, req Request) Outcome {
	out := Outcome{Kind: req.ClaimedKind}

	if req.BusinessID != "" {
		b, err := dir.BusinessByID(req.BusinessID)
		if err != nil {
			return withViolation(out, entity.ViolationInvalidBusinessType, entity.SeverityHigh, "negocio no registrado")
		}
		out.Business = b
		if req.ClaimedKind != "" && req.ClaimedKind != b.Kind {
			return withViolation(out, entity.ViolationInvalidBusinessType, entity.SeverityHigh,
				"el tipo de negocio declarado no coincide con el registro")
		}
		out.Kind = b.Kind
	}
	if !out.Kind.Valid() {
		return withViolation(out, entity.ViolationInvalidBusinessType, entity.SeverityHigh, "tipo de negocio inválido")
	}
	if _, err := entity.ParseAccessAction(string(req.Action)); err != nil {
		out.Reason = "acción no soportada"
		return out
	}

	p, err := dir.ProductByID(req.ProductID)
	if err != nil {
		out.NotFound = errors.Is(err, domain.ErrNotFound)
		out.Reason = "producto no encontrado"
		return out
	}
	out.Product = p

	d := access.Evaluate(out.Kind, p)
	if !d.Allowed {
		return withViolation(out, d.Classification, d.Severity, d.Reason)
	}
	if out.Business != nil && !out.Business.IsActive {
		return withViolation(out, entity.ViolationMissingPermissions, entity.SeverityMedium, "el negocio no está activo")
	}
	out.Allowed = true
	return out
}

func withViolation(out Outcome, class entity.ViolationClass, sev entity.Severity, reason string) Outcome {
	out.Allowed = false
	out.Reason = reason
	out.Violation = &entity.ComplianceViolation{
		Classification: class,
		Severity:       sev,
		Blocked:        true,
		Reason:         reason,
	}
	return out
}

// record agrega la entrada de auditoría y la violación bajo el mismo lock y luego notifica al sink.
func (m *Monitor) record(req Request, out *Outcome) {
	entry := &entity.AuditLogEntry{
		ID:           m.newID(),
		BusinessID:   req.BusinessID,
		BusinessKind: out.Kind,
		ProductID:    req.ProductID,
		Action:       req.Action,
		Allowed:      out.Allowed,
		Reason:       out.Reason,
	}
	out.Entry = entry
	if v := out.Violation; v != nil {
		v.ID = m.newID()
		v.BusinessID = req.BusinessID
		if out.Product != nil {
			v.ProductID = out.Product.ID
		} else {
			v.ProductID = req.ProductID
		}
	}

	// El timestamp se toma con el lock para que el orden de la pista coincida con el temporal.
	m.mu.Lock()
	now := m.now()
	entry.Timestamp = now
	m.audit.append(entry)
	if out.Violation != nil {
		out.Violation.Timestamp = now
		m.violations.append(out.Violation)
		m.purgeLocked(now)
	}
	m.mu.Unlock()

	if out.Violation != nil {
		m.log.Warn().
			Str("violation_id", out.Violation.ID).
			Str("classification", string(out.Violation.Classification)).
			Str("severity", string(out.Violation.Severity)).
			Str("business_id", req.BusinessID).
			Str("product_id", req.ProductID).
			Str("action", string(req.Action)).
			Msg("violación de cumplimiento bloqueada")
	} else if !out.Allowed {
		m.log.Info().Str("business_id", req.BusinessID).Str("product_id", req.ProductID).Str("reason", out.Reason).Msg("acceso denegado")
	}

	if m.sink != nil {
		if !m.sink.Enqueue(Event{Audit: entry, Violation: out.Violation}) {
			m.log.Warn().Str("audit_id", entry.ID).Msg("cola de auditoría llena, evento no exportado")
		}
	}
}

// purgeLocked descarta violaciones fuera del período de retención. Requiere m.mu tomado.
func (m *Monitor) purgeLocked(now time.Time) int {
	cutoff := now.Add(-m.cfg.ViolationRetention)
	return m.violations.dropWhile(func(v *entity.ComplianceViolation) bool {
		return v.Timestamp.Before(cutoff)
	})
}

// PurgeExpired descarta violaciones más antiguas que la retención y devuelve cuántas.
func (m *Monitor) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purgeLocked(m.now())
}

// RunPurger ejecuta PurgeExpired cada interval hasta que ctx se cancele.
func (m *Monitor) RunPurger(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.PurgeExpired(); n > 0 {
				m.log.Info().Int("purged", n).Msg("violaciones expiradas descartadas")
			}
		}
	}
}

// AuditTrail copia de la pista de auditoría en orden de llegada.
func (m *Monitor) AuditTrail() []*entity.AuditLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.audit.snapshot()
}

// AuditLen cantidad de entradas retenidas.
func (m *Monitor) AuditLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.audit.len()
}

// Violations copia de las violaciones retenidas en orden de llegada.
func (m *Monitor) Violations() []*entity.ComplianceViolation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.violations.snapshot()
}
