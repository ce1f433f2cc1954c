package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/internal/locker"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/models"
	"github.com/ranger-dev/ranger-agent/internal/repository"
	"github.com/ranger-dev/ranger-agent/pkg/action"
)

// DefaultResourceParams maps each action type to the parameter holding the
// identifier of the infrastructure resource it mutates. Actions present here
// take a lease on that resource before executing.
func DefaultResourceParams() map[string]string {
	return map[string]string{
		"scale_asg":           "asg_name",
		"ssm_restart_service": "instance_id",
		"scale_ecs_service":   "service",
		"rollback_deployment": "target_id",
	}
}

// Outcome summarizes a plan execution for the orchestrator, which is the
// only writer of incident state.
type Outcome struct {
	Resolved bool

	// FailedActionID is set when an action failed or was blocked.
	FailedActionID string

	// Contention distinguishes a lock conflict from an execution failure.
	Contention bool

	Reason string
}

// Engine runs a plan's actions sequentially with idempotency, locking, and
// fail-fast semantics. It never mutates incident state directly.
type Engine struct {
	Repository *repository.Repository
	Registry   *action.Registry
	Locker     locker.Locker
	Logger     *logger.Logger

	// ResourceParams is the action-type to resource-parameter mapping
	// consulted for locking. LockTTL bounds how long an abandoned lease can
	// block other incidents.
	ResourceParams map[string]string
	LockTTL        time.Duration
}

// Execute runs the plan in order. It must only be invoked once the plan is
// approved or approval is not required.
func (e *Engine) Execute(ctx context.Context, incident *models.Incident, plan *models.RemediationPlan) (*Outcome, error) {
	actions, err := plan.GetActions()

	if err != nil {
		return nil, fmt.Errorf("could not decode plan v%d for incident %s: %w", plan.Version, incident.UniqueID, err)
	}

	for _, a := range actions {
		// idempotency: a previously successful action is never re-executed
		latest, err := e.Repository.ActionLog.LatestForAction(incident.UniqueID, a.ID)

		if err != nil {
			return nil, fmt.Errorf("could not read action log for %s: %w", a.ID, err)
		}

		if latest != nil && latest.Status == types.ActionStatusSuccess {
			e.Logger.Info().Caller().Msgf("action %s already succeeded for incident %s, skipping", a.ID, incident.UniqueID)

			if err := e.appendLog(incident.UniqueID, a.ID, types.ActionStatusSkipped, map[string]interface{}{
				"reason":       "previous attempt succeeded",
				"prior_log_id": latest.ID,
			}); err != nil {
				return nil, err
			}

			continue
		}

		lease, busy, err := e.acquireLease(ctx, incident, a)

		if err != nil {
			return nil, err
		}

		if busy {
			// contention blocks the whole plan: later actions may depend on
			// this one's effect
			return &Outcome{
				FailedActionID: a.ID,
				Contention:     true,
				Reason:         fmt.Sprintf("action %s skipped: resource busy", a.ID),
			}, nil
		}

		if err := e.appendLog(incident.UniqueID, a.ID, types.ActionStatusInProgress, nil); err != nil {
			e.releaseLease(ctx, lease)
			return nil, err
		}

		result, execErr := e.Registry.Execute(ctx, a.Type, a.Params)

		e.releaseLease(ctx, lease)

		if execErr != nil {
			e.Logger.Error().Caller().Msgf("action %s (%s) failed for incident %s: %v", a.ID, a.Type, incident.UniqueID, execErr)

			if err := e.appendLog(incident.UniqueID, a.ID, types.ActionStatusFailed, map[string]interface{}{
				"error": execErr.Error(),
			}); err != nil {
				return nil, err
			}

			return &Outcome{
				FailedActionID: a.ID,
				Reason:         fmt.Sprintf("action %s failed: %v", a.ID, execErr),
			}, nil
		}

		if err := e.appendLog(incident.UniqueID, a.ID, types.ActionStatusSuccess, result); err != nil {
			return nil, err
		}

		e.Logger.Info().Caller().Msgf("action %s (%s) succeeded for incident %s", a.ID, a.Type, incident.UniqueID)
	}

	return &Outcome{Resolved: true}, nil
}

// acquireLease takes a lock on the action's target resource when the action
// type is configured with one. The busy return is true when another incident
// holds the lease; in that case a SKIPPED entry with the contention reason
// has already been recorded.
func (e *Engine) acquireLease(ctx context.Context, incident *models.Incident, a types.PlanAction) (*locker.Lease, bool, error) {
	paramKey, ok := e.ResourceParams[a.Type]

	if !ok {
		return nil, false, nil
	}

	resourceID, _ := a.Params[paramKey].(string)

	if resourceID == "" {
		return nil, false, nil
	}

	lease, err := e.Locker.Acquire(ctx, resourceID, incident.UniqueID, e.LockTTL)

	if err != nil {
		if errors.Is(err, locker.ErrLockBusy) {
			e.Logger.Info().Caller().Msgf("resource %s busy, skipping action %s for incident %s", resourceID, a.ID, incident.UniqueID)

			if logErr := e.appendLog(incident.UniqueID, a.ID, types.ActionStatusSkipped, map[string]interface{}{
				"reason":      "resource contention",
				"resource_id": resourceID,
			}); logErr != nil {
				return nil, false, logErr
			}

			return nil, true, nil
		}

		return nil, false, fmt.Errorf("could not acquire lock on %s: %w", resourceID, err)
	}

	return lease, false, nil
}

func (e *Engine) releaseLease(ctx context.Context, lease *locker.Lease) {
	if lease == nil {
		return
	}

	// the TTL self-heals a failed release
	if err := e.Locker.Release(ctx, lease); err != nil {
		e.Logger.Error().Caller().Msgf("could not release lock on %s: %v", lease.ResourceID, err)
	}
}

func (e *Engine) appendLog(incidentID, actionID string, status types.ActionStatus, details map[string]interface{}) error {
	entry := models.NewActionLog(incidentID, actionID, status)

	if details != nil {
		if err := entry.SetDetails(details); err != nil {
			return err
		}
	}

	if _, err := e.Repository.ActionLog.AppendEntry(entry); err != nil {
		return fmt.Errorf("could not append action log for %s: %w", actionID, err)
	}

	return nil
}
