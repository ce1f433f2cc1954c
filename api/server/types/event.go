package types

// IngestResponse describes what happened to a submitted alarm event.
type IngestResponse struct {
	// IncidentID is empty when the event did not produce an incident.
	IncidentID      string         `json:"incident_id,omitempty"`
	Created         bool           `json:"created"`
	Status          IncidentStatus `json:"status,omitempty"`
	ApprovalPending bool           `json:"approval_pending"`
	Message         string         `json:"message,omitempty"`
}
