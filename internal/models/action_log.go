package models

import (
	"encoding/json"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"gorm.io/gorm"
)

// ActionLog is one append-only record of an action attempt. Multiple entries
// may exist per (incident, action) pair; the most recent one determines the
// action's idempotency status.
type ActionLog struct {
	gorm.Model

	IncidentID string `gorm:"index"`
	ActionID   string

	Status types.ActionStatus

	// Details is an opaque JSON payload: the action result on success, an
	// error description on failure, a skip reason on SKIPPED.
	Details []byte
}

func NewActionLog(incidentID, actionID string, status types.ActionStatus) *ActionLog {
	return &ActionLog{
		IncidentID: incidentID,
		ActionID:   actionID,
		Status:     status,
	}
}

func (l *ActionLog) SetDetails(details map[string]interface{}) error {
	data, err := json.Marshal(details)

	if err != nil {
		return err
	}

	l.Details = data
	return nil
}

func (l *ActionLog) GetDetails() (map[string]interface{}, error) {
	details := map[string]interface{}{}

	if len(l.Details) == 0 {
		return details, nil
	}

	if err := json.Unmarshal(l.Details, &details); err != nil {
		return nil, err
	}

	return details, nil
}

func (l *ActionLog) ToAPIType() *types.ActionLog {
	details, err := l.GetDetails()

	if err != nil {
		details = map[string]interface{}{"error": "could not decode details"}
	}

	return &types.ActionLog{
		IncidentID: l.IncidentID,
		ActionID:   l.ActionID,
		Status:     l.Status,
		Details:    details,
		Timestamp:  l.CreatedAt,
	}
}
