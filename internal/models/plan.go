package models

import (
	"encoding/json"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"gorm.io/gorm"
)

// RemediationPlan is the materialized action sequence for one incident.
// Plans are immutable once persisted; replanning creates a new version.
type RemediationPlan struct {
	gorm.Model

	IncidentID string `gorm:"index"`
	Version    int

	ApprovalRequired bool

	// Actions holds the ordered, resolved action list as JSON.
	Actions []byte
}

func NewRemediationPlan(incidentID string, version int, approvalRequired bool) *RemediationPlan {
	return &RemediationPlan{
		IncidentID:       incidentID,
		Version:          version,
		ApprovalRequired: approvalRequired,
	}
}

func (p *RemediationPlan) SetActions(actions []types.PlanAction) error {
	data, err := json.Marshal(actions)

	if err != nil {
		return err
	}

	p.Actions = data
	return nil
}

func (p *RemediationPlan) GetActions() ([]types.PlanAction, error) {
	var actions []types.PlanAction

	if len(p.Actions) == 0 {
		return actions, nil
	}

	if err := json.Unmarshal(p.Actions, &actions); err != nil {
		return nil, err
	}

	return actions, nil
}

func (p *RemediationPlan) ToAPIType() (*types.RemediationPlan, error) {
	actions, err := p.GetActions()

	if err != nil {
		return nil, err
	}

	return &types.RemediationPlan{
		IncidentID:       p.IncidentID,
		Version:          p.Version,
		ApprovalRequired: p.ApprovalRequired,
		Actions:          actions,
		CreatedAt:        p.CreatedAt,
	}, nil
}
