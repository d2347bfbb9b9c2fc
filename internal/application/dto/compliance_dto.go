package dto

import "time"

// ValidateAccessRequest body para POST /api/access/validate.
// BusinessID solo lo toma en cuenta un token admin; para un negocio se usa el del token.
type ValidateAccessRequest struct {
	BusinessID string `json:"business_id,omitempty"`
	ProductID  string `json:"product_id"`
	Action     string `json:"action"`
}

// ViolationResponse violación de cumplimiento.
type ViolationResponse struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Classification string    `json:"classification"`
	Severity       string    `json:"severity"`
	BusinessID     string    `json:"business_id"`
	ProductID      string    `json:"product_id,omitempty"`
	Blocked        bool      `json:"blocked"`
	Reason         string    `json:"reason"`
}

// ValidateAccessResponse resultado de ValidateAccess.
type ValidateAccessResponse struct {
	Allowed   bool               `json:"allowed"`
	Reason    string             `json:"reason,omitempty"`
	Violation *ViolationResponse `json:"violation,omitempty"`
}

// ComplianceStatusResponse estado de cumplimiento sobre la ventana móvil.
type ComplianceStatusResponse struct {
	Status                  string     `json:"status"`
	RecentViolationsCount   int        `json:"recent_violations_count"`
	CriticalViolationsCount int        `json:"critical_violations_count"`
	LastViolationTimestamp  *time.Time `json:"last_violation_timestamp,omitempty"`
	Message                 string     `json:"message"`
}

// ComplianceReportResponse reporte de violaciones en un período.
type ComplianceReportResponse struct {
	StartTime            time.Time           `json:"start_time"`
	EndTime              time.Time           `json:"end_time"`
	TotalViolations      int                 `json:"total_violations"`
	BlockedViolations    int                 `json:"blocked_violations"`
	CriticalViolations   int                 `json:"critical_violations"`
	OffendingBusinessIDs []string            `json:"offending_business_ids"`
	ByClassification     map[string]int      `json:"by_classification"`
	Violations           []ViolationResponse `json:"violations"`
	Recommendations      []string            `json:"recommendations"`
	// Page solo en el histórico persistido: violations es una página del total.
	Page *PageResponse `json:"page,omitempty"`
}

// AuditEntryResponse entrada de la pista de auditoría.
type AuditEntryResponse struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	BusinessID   string    `json:"business_id"`
	BusinessKind string    `json:"business_kind"`
	ProductID    string    `json:"product_id"`
	Action       string    `json:"action"`
	Allowed      bool      `json:"allowed"`
	Reason       string    `json:"reason,omitempty"`
}
