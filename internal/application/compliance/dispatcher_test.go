package compliance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

type fakeRepo struct {
	mu         sync.Mutex
	audit      []*entity.AuditLogEntry
	violations []*entity.ComplianceViolation
	failAudit  bool
}

func (r *fakeRepo) AppendAudit(_ context.Context, e *entity.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAudit {
		return errors.New("db caída")
	}
	r.audit = append(r.audit, e)
	return nil
}

func (r *fakeRepo) AppendViolation(_ context.Context, v *entity.ComplianceViolation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.violations = append(r.violations, v)
	return nil
}

func (r *fakeRepo) ListViolations(context.Context, repository.ViolationFilter) ([]*entity.ComplianceViolation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.violations, nil
}

func (r *fakeRepo) SummarizeViolations(context.Context, repository.ViolationFilter) (*repository.ViolationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return compliance.Summarize(r.violations), nil
}

func (r *fakeRepo) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.audit), len(r.violations)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
}

func (p *fakePublisher) PublishViolation(_ context.Context, v *entity.ComplianceViolation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, v.ID)
	return nil
}

func TestDispatcher_PersisteYPublica(t *testing.T) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	d := compliance.NewDispatcher(16, repo, pub, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)

	m := newMonitor(compliance.Config{}, compliance.WithSink(d))
	dir := directory(t)
	m.Evaluate(dir, view("P1", "1"))
	m.Evaluate(dir, view("V1", "1"))
	m.Evaluate(dir, view("V1", "3"))

	assert.Eventually(t, func() bool {
		a, v := repo.counts()
		return a == 3 && v == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	d.Wait()
	pub.mu.Lock()
	defer pub.mu.Unlock()
	assert.Len(t, pub.published, 2)
}

func TestDispatcher_DrenaAlCancelar(t *testing.T) {
	repo := &fakeRepo{}
	d := compliance.NewDispatcher(8, repo, nil, logger.Nop())
	for i := 0; i < 5; i++ {
		require.True(t, d.Enqueue(compliance.Event{Audit: &entity.AuditLogEntry{ID: "a"}}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)
	d.Wait()

	a, _ := repo.counts()
	assert.Equal(t, 5, a)
}

func TestDispatcher_ColaLlenaDescarta(t *testing.T) {
	d := compliance.NewDispatcher(2, nil, nil, logger.Nop())
	assert.True(t, d.Enqueue(compliance.Event{}))
	assert.True(t, d.Enqueue(compliance.Event{}))
	assert.False(t, d.Enqueue(compliance.Event{}))
	assert.Equal(t, uint64(1), d.Dropped())
}

func TestDispatcher_ErrorDeRepoNoDetieneLaPublicacion(t *testing.T) {
	repo := &fakeRepo{failAudit: true}
	pub := &fakePublisher{}
	d := compliance.NewDispatcher(4, repo, pub, logger.Nop())
	require.True(t, d.Enqueue(compliance.Event{
		Audit:     &entity.AuditLogEntry{ID: "a"},
		Violation: &entity.ComplianceViolation{ID: "v"},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	_, v := repo.counts()
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"v"}, pub.published)
}

// fakeTx ejecuta fn sobre un repo temporal y solo lo vuelca a committed si fn no falla.
type fakeTx struct {
	committed *fakeRepo
	failOn    string
	rollbacks int
}

type stagingRepo struct {
	fakeRepo
	failOn string
}

func (r *stagingRepo) AppendViolation(ctx context.Context, v *entity.ComplianceViolation) error {
	if v.ID == r.failOn {
		return errors.New("constraint")
	}
	return r.fakeRepo.AppendViolation(ctx, v)
}

func (tx *fakeTx) Run(ctx context.Context, fn func(repo repository.ComplianceRepository) error) error {
	stage := &stagingRepo{failOn: tx.failOn}
	if err := fn(stage); err != nil {
		tx.rollbacks++
		return err
	}
	for _, a := range stage.audit {
		_ = tx.committed.AppendAudit(ctx, a)
	}
	for _, v := range stage.violations {
		_ = tx.committed.AppendViolation(ctx, v)
	}
	return nil
}

// Con transacción, auditoría y violación se confirman juntas o ninguna.
func TestDispatcher_TransaccionAtomica(t *testing.T) {
	committed := &fakeRepo{}
	tx := &fakeTx{committed: committed, failOn: "v-malo"}
	pub := &fakePublisher{}
	d := compliance.NewDispatcher(4, nil, pub, logger.Nop(), compliance.WithTxRunner(tx))

	require.True(t, d.Enqueue(compliance.Event{
		Audit:     &entity.AuditLogEntry{ID: "a1"},
		Violation: &entity.ComplianceViolation{ID: "v-ok"},
	}))
	require.True(t, d.Enqueue(compliance.Event{
		Audit:     &entity.AuditLogEntry{ID: "a2"},
		Violation: &entity.ComplianceViolation{ID: "v-malo"},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Run(ctx)

	a, v := committed.counts()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, tx.rollbacks)
	assert.Equal(t, []string{"v-ok", "v-malo"}, pub.published, "la publicación no depende de la persistencia")
}
