package types

import "time"

type IncidentStatus string

const (
	IncidentStatusOpen       IncidentStatus = "OPEN"
	IncidentStatusMitigating IncidentStatus = "MITIGATING"
	IncidentStatusResolved   IncidentStatus = "RESOLVED"
	IncidentStatusFailed     IncidentStatus = "FAILED"
)

// ValidTransition reports whether the incident state machine permits moving
// from one status to another. RESOLVED and FAILED are terminal.
func ValidTransition(from, to IncidentStatus) bool {
	switch from {
	case IncidentStatusOpen:
		return to == IncidentStatusMitigating
	case IncidentStatusMitigating:
		return to == IncidentStatusResolved || to == IncidentStatusFailed
	}

	return false
}

type SeverityType string

const (
	SeverityCritical SeverityType = "CRITICAL"
	SeverityHigh     SeverityType = "HIGH"
	SeverityMedium   SeverityType = "MEDIUM"
	SeverityLow      SeverityType = "LOW"
)

type Incident struct {
	ID              string         `json:"id"`
	AlarmName       string         `json:"alarm_name"`
	Status          IncidentStatus `json:"status"`
	ApprovalPending bool           `json:"approval_pending"`
	Severity        SeverityType   `json:"severity"`
	Summary         string         `json:"summary"`
	CreatedAt       time.Time      `json:"created_at"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
}

type ListIncidentsResponse struct {
	Incidents []*Incident `json:"incidents"`
}
