package compliance

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

// Event registro confirmado por el monitor. Violation es nil si el intento no generó violación.
type Event struct {
	Audit     *entity.AuditLogEntry
	Violation *entity.ComplianceViolation
}

// ViolationPublisher publica violaciones hacia sistemas externos (ej. Kafka para notificaciones).
type ViolationPublisher interface {
	PublishViolation(ctx context.Context, v *entity.ComplianceViolation) error
}

// TxRunner ejecuta fn dentro de una transacción con un repositorio atado a ella.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo repository.ComplianceRepository) error) error
}

// DispatcherOption configura opciones del dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTxRunner persiste la entrada de auditoría y su violación en una sola transacción.
func WithTxRunner(tx TxRunner) DispatcherOption {
	return func(d *Dispatcher) { d.tx = tx }
}

var _ Sink = (*Dispatcher)(nil)

// Dispatcher saca la persistencia y la publicación del camino de decisión:
// el monitor encola sin bloquear y un worker drena la cola.
type Dispatcher struct {
	queue     chan Event
	repo      repository.ComplianceRepository
	tx        TxRunner
	publisher ViolationPublisher
	log       *logger.Logger
	timeout   time.Duration
	dropped   atomic.Uint64
	done      chan struct{}
}

// NewDispatcher construye el dispatcher. repo y publisher pueden ser nil.
func NewDispatcher(buffer int, repo repository.ComplianceRepository, publisher ViolationPublisher, log *logger.Logger, opts ...DispatcherOption) *Dispatcher {
	if buffer <= 0 {
		buffer = 1024
	}
	d := &Dispatcher{
		queue:     make(chan Event, buffer),
		repo:      repo,
		publisher: publisher,
		log:       log,
		timeout:   5 * time.Second,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue agrega el evento si hay lugar en la cola; si está llena lo descarta y devuelve false.
func (d *Dispatcher) Enqueue(ev Event) bool {
	select {
	case d.queue <- ev:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Dropped cantidad de eventos descartados por cola llena.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

// Run procesa eventos hasta que ctx se cancele; luego drena lo que quede en la cola.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case ev := <-d.queue:
			d.handle(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-d.queue:
					d.handle(ev)
				default:
					return
				}
			}
		}
	}
}

// Wait bloquea hasta que Run termine.
func (d *Dispatcher) Wait() { <-d.done }

func (d *Dispatcher) handle(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if d.tx != nil {
		if err := d.tx.Run(ctx, func(repo repository.ComplianceRepository) error {
			return appendEvent(ctx, repo, ev)
		}); err != nil {
			d.log.Error().Err(err).Msg("persistir evento de cumplimiento")
		}
	} else if d.repo != nil {
		d.appendEach(ctx, ev)
	}

	if ev.Violation != nil && d.publisher != nil {
		if err := d.publisher.PublishViolation(ctx, ev.Violation); err != nil {
			d.log.Error().Err(err).Str("violation_id", ev.Violation.ID).Msg("publicar violación")
		}
	}
}

// appendEach persiste cada registro por separado; el fallo de uno no impide el otro.
func (d *Dispatcher) appendEach(ctx context.Context, ev Event) {
	if ev.Audit != nil {
		if err := d.repo.AppendAudit(ctx, ev.Audit); err != nil {
			d.log.Error().Err(err).Str("audit_id", ev.Audit.ID).Msg("persistir entrada de auditoría")
		}
	}
	if ev.Violation != nil {
		if err := d.repo.AppendViolation(ctx, ev.Violation); err != nil {
			d.log.Error().Err(err).Str("violation_id", ev.Violation.ID).Msg("persistir violación")
		}
	}
}

func appendEvent(ctx context.Context, repo repository.ComplianceRepository, ev Event) error {
	if ev.Audit != nil {
		if err := repo.AppendAudit(ctx, ev.Audit); err != nil {
			return err
		}
	}
	if ev.Violation != nil {
		return repo.AppendViolation(ctx, ev.Violation)
	}
	return nil
}
