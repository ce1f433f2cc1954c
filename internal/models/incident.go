package models

import (
	"time"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"gorm.io/gorm"
)

type Incident struct {
	gorm.Model

	UniqueID string `gorm:"unique"`

	AlarmName string
	Status    types.IncidentStatus

	// ApprovalPending marks the waiting sub-state of MITIGATING: a plan was
	// generated but execution is suspended until an approval signal arrives.
	ApprovalPending bool

	Severity types.SeverityType
	Summary  string

	ResolvedTime *time.Time

	// RawEvent is the alarm payload as received, retained so plan generation
	// can extract the substitution context from it.
	RawEvent []byte
}

func NewIncident() *Incident {
	randStr, _ := GenerateRandomBytes(16)

	return &Incident{
		UniqueID: randStr,
		Status:   types.IncidentStatusOpen,
		Severity: types.SeverityMedium,
	}
}

func (i *Incident) ToAPIType() *types.Incident {
	return &types.Incident{
		ID:              i.UniqueID,
		AlarmName:       i.AlarmName,
		Status:          i.Status,
		ApprovalPending: i.ApprovalPending,
		Severity:        i.Severity,
		Summary:         i.Summary,
		CreatedAt:       i.CreatedAt,
		ResolvedAt:      i.ResolvedTime,
	}
}
