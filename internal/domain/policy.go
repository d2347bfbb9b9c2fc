package domain

// PolicyDenied denegación por política. Es un resultado, no un error: la API la devuelve
// con allowed=false y HTTP 200. Classification vacío indica una denegación sin violación
// (producto inexistente, acción no soportada).
type PolicyDenied struct {
	Classification string
	Reason         string
}

// IsViolation indica si la denegación tiene origen regulatorio.
func (d PolicyDenied) IsViolation() bool { return d.Classification != "" }
