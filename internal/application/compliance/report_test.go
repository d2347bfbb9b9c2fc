package compliance_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Status
// ──────────────────────────────────────────────────────────────────────────────

func TestStatus_Compliant(t *testing.T) {
	m := newMonitor(compliance.Config{})
	st := m.Status()
	assert.Equal(t, compliance.LevelCompliant, st.Level)
	assert.Equal(t, compliance.MessageCompliant, st.Message)
	assert.Nil(t, st.LastViolationAt)
}

func TestStatus_WarningAlSuperarUmbral(t *testing.T) {
	clk := newClock()
	m := newMonitor(compliance.Config{WarningThreshold: 2}, compliance.WithClock(clk.Now))
	dir := directory(t)

	// Dos violaciones no críticas: igual al umbral, sigue en cumplimiento.
	m.Evaluate(dir, view("V1", "3"))
	m.Evaluate(dir, view("V1", "4"))
	assert.Equal(t, compliance.LevelCompliant, m.Status().Level)

	m.Evaluate(dir, view("NOPE", "2"))
	st := m.Status()
	assert.Equal(t, compliance.LevelWarning, st.Level)
	assert.Equal(t, 3, st.RecentViolations)
	assert.Equal(t, 0, st.CriticalViolations)
	require.NotNil(t, st.LastViolationAt)
	assert.Equal(t, clk.Now(), *st.LastViolationAt)
}

func TestStatus_ViolationConUnaCritica(t *testing.T) {
	clk := newClock()
	m := newMonitor(compliance.Config{}, compliance.WithClock(clk.Now))
	m.Evaluate(directory(t), view("V1", "1"))

	st := m.Status()
	assert.Equal(t, compliance.LevelViolation, st.Level)
	assert.Equal(t, compliance.MessageViolation, st.Message)
	assert.Equal(t, 1, st.CriticalViolations)

	clk.Advance(25 * time.Hour)
	st = m.Status()
	assert.Equal(t, compliance.LevelCompliant, st.Level, "fuera de la ventana de 24h no cuenta")
	assert.Equal(t, 0, st.RecentViolations)
	assert.NotNil(t, st.LastViolationAt)
}

// La última violación retenida se informa aunque sea anterior a la ventana.
func TestStatus_UltimaViolacionFueraDeLaVentana(t *testing.T) {
	clk := newClock()
	m := newMonitor(compliance.Config{}, compliance.WithClock(clk.Now))
	occurred := clk.Now()
	m.Evaluate(directory(t), view("V1", "3"))

	clk.Advance(30 * 24 * time.Hour)
	st := m.Status()
	assert.Equal(t, compliance.LevelCompliant, st.Level)
	assert.Equal(t, 0, st.RecentViolations)
	require.NotNil(t, st.LastViolationAt)
	assert.Equal(t, occurred, *st.LastViolationAt)
	assert.True(t, st.LastViolationAt.Before(st.WindowStart))
}

// ──────────────────────────────────────────────────────────────────────────────
// Report
// ──────────────────────────────────────────────────────────────────────────────

// Ventana sin violaciones: total 0 y la recomendación fija de cumplimiento.
func TestReport_VentanaSinViolaciones(t *testing.T) {
	clk := newClock()
	m := newMonitor(compliance.Config{}, compliance.WithClock(clk.Now))
	m.Evaluate(directory(t), view("V1", "1"))

	t0 := clk.Now().Add(time.Hour)
	r, err := m.Report(t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, r.TotalViolations)
	assert.Equal(t, []string{compliance.RecommendationCompliant}, r.Recommendations)
	assert.NotNil(t, r.Violations)
	assert.Empty(t, r.OffendingBusinessIDs)
}

func TestReport_PeriodoInvalido(t *testing.T) {
	m := newMonitor(compliance.Config{})
	now := time.Now()
	_, err := m.Report(now, now)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	_, err = m.Report(now, now.Add(-time.Minute))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestReport_TotalesYRecomendaciones(t *testing.T) {
	clk := newClock()
	m := newMonitor(compliance.Config{}, compliance.WithClock(clk.Now))
	dir := directory(t)
	start := clk.Now()

	for i := 0; i < 3; i++ {
		clk.Advance(time.Minute)
		m.Evaluate(dir, view("V1", "1"))
	}
	clk.Advance(time.Minute)
	m.Evaluate(dir, view("NOPE", "2"))
	clk.Advance(time.Minute)
	m.Evaluate(dir, view("P1", "1")) // permitido

	r, err := m.Report(start, clk.Now().Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 4, r.TotalViolations)
	assert.Equal(t, 4, r.BlockedViolations)
	assert.Equal(t, 3, r.CriticalViolations)
	assert.Equal(t, []string{"NOPE", "V1"}, r.OffendingBusinessIDs)
	assert.Equal(t, 3, r.ByClassification[entity.ViolationUnauthorizedMedicine])
	assert.Equal(t, 1, r.ByClassification[entity.ViolationInvalidBusinessType])
	assert.Equal(t, []string{
		compliance.RecommendationCriticalReview,
		compliance.RecommendationVendorTraining,
		compliance.RecommendationVerifyRegistry,
		compliance.RecommendationRepeatOffenders,
	}, r.Recommendations)
}

func TestReport_FinExclusivo(t *testing.T) {
	clk := newClock()
	m := newMonitor(compliance.Config{}, compliance.WithClock(clk.Now))
	m.Evaluate(directory(t), view("V1", "1"))
	at := clk.Now()

	r, err := m.Report(at.Add(-time.Hour), at)
	require.NoError(t, err)
	assert.Equal(t, 0, r.TotalViolations)

	r, err = m.Report(at, at.Add(time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, 1, r.TotalViolations)
}
