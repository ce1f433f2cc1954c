package utils

import "github.com/ranger-dev/ranger-agent/api/server/types"

type ListIncidentsFilter struct {
	Status    *types.IncidentStatus
	AlarmName *string
}

type ListActionLogsFilter struct {
	IncidentID *string
	ActionID   *string
}
