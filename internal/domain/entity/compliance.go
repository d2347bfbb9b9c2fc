package entity

import (
	"fmt"
	"time"
)

// AccessAction acción solicitada sobre un producto.
type AccessAction string

const (
	ActionView           AccessAction = "view"
	ActionSell           AccessAction = "sell"
	ActionAddToInventory AccessAction = "add_to_inventory"
	ActionProcessOrder   AccessAction = "process_order"
)

// ParseAccessAction valida la acción recibida por la API.
func ParseAccessAction(s string) (AccessAction, error) {
	switch a := AccessAction(s); a {
	case ActionView, ActionSell, ActionAddToInventory, ActionProcessOrder:
		return a, nil
	default:
		return "", fmt.Errorf("acción desconocida: %q", s)
	}
}

// AuditLogEntry registro inmutable de una evaluación de acceso (permitida o denegada).
type AuditLogEntry struct {
	ID           string
	Timestamp    time.Time
	BusinessID   string
	BusinessKind BusinessKind
	ProductID    string
	Action       AccessAction
	Allowed      bool
	Reason       string
}

// ViolationClass clasificación regulatoria de una denegación.
type ViolationClass string

const (
	ViolationUnauthorizedMedicine     ViolationClass = "unauthorized_medicine_access"
	ViolationUnauthorizedPrescription ViolationClass = "unauthorized_prescription_access"
	ViolationInvalidBusinessType      ViolationClass = "invalid_business_type"
	ViolationMissingPermissions       ViolationClass = "missing_permissions"
)

// Severity gravedad de una violación.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ComplianceViolation denegación cuyo origen es una regla regulatoria (no un recurso inexistente).
type ComplianceViolation struct {
	ID             string
	Timestamp      time.Time
	Classification ViolationClass
	Severity       Severity
	BusinessID     string
	ProductID      string // vacío si no aplica
	Blocked        bool
	Reason         string
}
