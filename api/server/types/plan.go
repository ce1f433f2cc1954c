package types

import "time"

// PlanAction is one resolved step of a remediation plan. Params have already
// been substituted against the incident context; Safety is carried through
// verbatim from the runbook.
type PlanAction struct {
	ID     string                 `json:"id"`
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params"`
	Safety map[string]interface{} `json:"safety,omitempty"`
}

type RemediationPlan struct {
	IncidentID       string       `json:"incident_id"`
	Version          int          `json:"version"`
	ApprovalRequired bool         `json:"approval_required"`
	Actions          []PlanAction `json:"actions"`
	CreatedAt        time.Time    `json:"created_at"`
}
