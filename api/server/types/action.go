package types

import "time"

type ActionStatus string

const (
	ActionStatusPending    ActionStatus = "PENDING"
	ActionStatusInProgress ActionStatus = "IN_PROGRESS"
	ActionStatusSuccess    ActionStatus = "SUCCESS"
	ActionStatusFailed     ActionStatus = "FAILED"
	ActionStatusSkipped    ActionStatus = "SKIPPED"
)

type ActionLog struct {
	IncidentID string                 `json:"incident_id"`
	ActionID   string                 `json:"action_id"`
	Status     ActionStatus           `json:"status"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
}

type ListActionLogsResponse struct {
	Logs []*ActionLog `json:"logs"`
}
