package compliance

import (
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// Level estado agregado de cumplimiento.
type Level string

const (
	LevelCompliant Level = "compliant"
	LevelWarning   Level = "warning"
	LevelViolation Level = "violation"
)

// Mensajes fijos por nivel.
const (
	MessageCompliant = "Sistema en cumplimiento: sin incidentes relevantes en la ventana de monitoreo"
	MessageWarning   = "Advertencia: el número de violaciones recientes supera el umbral configurado"
	MessageViolation = "Violación crítica detectada: se requiere revisión inmediata"
)

// Status foto del cumplimiento sobre la ventana móvil.
type Status struct {
	Level              Level
	RecentViolations   int
	CriticalViolations int
	LastViolationAt    *time.Time
	Message            string
	WindowStart        time.Time
	WindowEnd          time.Time
}

// Status calcula el estado sobre la ventana [now-StatusWindow, now]:
// violation si hay al menos una crítica, warning si el total supera el umbral, si no compliant.
// LastViolationAt es la última violación retenida aunque haya quedado fuera de la ventana,
// de modo que un estado compliant puede informar una fecha anterior a WindowStart.
func (m *Monitor) Status() Status {
	now := m.now()
	start := now.Add(-m.cfg.StatusWindow)

	m.mu.RLock()
	items := m.violations.items
	st := Status{WindowStart: start, WindowEnd: now}
	for _, v := range items {
		if v.Timestamp.Before(start) || v.Timestamp.After(now) {
			continue
		}
		st.RecentViolations++
		if v.Severity == entity.SeverityCritical {
			st.CriticalViolations++
		}
	}
	if n := len(items); n > 0 {
		ts := items[n-1].Timestamp
		st.LastViolationAt = &ts
	}
	m.mu.RUnlock()

	switch {
	case st.CriticalViolations > 0:
		st.Level, st.Message = LevelViolation, MessageViolation
	case st.RecentViolations > m.cfg.WarningThreshold:
		st.Level, st.Message = LevelWarning, MessageWarning
	default:
		st.Level, st.Message = LevelCompliant, MessageCompliant
	}
	return st
}
