package plan

import (
	"errors"
	"fmt"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/models"
	"github.com/ranger-dev/ranger-agent/internal/repository"
	"github.com/ranger-dev/ranger-agent/pkg/action"
	"github.com/ranger-dev/ranger-agent/pkg/alarm"
	"github.com/ranger-dev/ranger-agent/pkg/runbook"
	"gorm.io/gorm"
)

// Generator materializes runbooks into persisted remediation plans.
type Generator struct {
	Repository *repository.Repository
	Registry   *action.Registry
	Logger     *logger.Logger
}

// Generate resolves every action of the runbook against the incident's event
// context and persists the result as a new plan version. Action order is
// preserved from the runbook; the plan requires approval when any action
// does. Unknown action types fail here rather than at execution time.
func (g *Generator) Generate(incident *models.Incident, rb *runbook.Runbook) (*models.RemediationPlan, error) {
	event, err := alarm.ParseEvent(incident.RawEvent)

	if err != nil {
		return nil, fmt.Errorf("could not rebuild context for incident %s: %w", incident.UniqueID, err)
	}

	context := alarm.BuildContext(event)

	actions := make([]types.PlanAction, 0, len(rb.Actions))
	approvalRequired := false

	for _, def := range rb.Actions {
		if g.Registry != nil && !g.Registry.Has(def.Type) {
			return nil, fmt.Errorf("runbook %s: unknown action type %q", rb.RunbookID, def.Type)
		}

		actions = append(actions, types.PlanAction{
			ID:     def.ID,
			Type:   def.Type,
			Params: ResolveParams(def.Params, context),
			Safety: def.Safety,
		})

		if def.ApprovalRequired() {
			approvalRequired = true
		}
	}

	version, err := g.nextVersion(incident.UniqueID)

	if err != nil {
		return nil, err
	}

	p := models.NewRemediationPlan(incident.UniqueID, version, approvalRequired)

	if err := p.SetActions(actions); err != nil {
		return nil, err
	}

	if _, err := g.Repository.Plan.CreatePlan(p); err != nil {
		return nil, fmt.Errorf("could not persist plan for incident %s: %w", incident.UniqueID, err)
	}

	g.Logger.Info().Caller().Msgf(
		"generated plan v%d for incident %s: %d actions, approval required: %t",
		version, incident.UniqueID, len(actions), approvalRequired,
	)

	return p, nil
}

func (g *Generator) nextVersion(incidentID string) (int, error) {
	latest, err := g.Repository.Plan.LatestPlan(incidentID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 1, nil
		}

		return 0, err
	}

	return latest.Version + 1, nil
}
