package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/models"
	"github.com/ranger-dev/ranger-agent/internal/repository"
	"github.com/ranger-dev/ranger-agent/pkg/alarm"
	"github.com/ranger-dev/ranger-agent/pkg/engine"
	"github.com/ranger-dev/ranger-agent/pkg/notifier"
	"github.com/ranger-dev/ranger-agent/pkg/plan"
	"github.com/ranger-dev/ranger-agent/pkg/runbook"
	"gorm.io/gorm"
)

var (
	// ErrIncidentNotFound is returned by Resume for an unknown incident id.
	ErrIncidentNotFound = errors.New("incident not found")

	// ErrInvalidTransition is returned when Resume targets an incident that
	// is not suspended awaiting approval. The stored incident is untouched.
	ErrInvalidTransition = errors.New("invalid incident state transition")
)

// Result describes what processing an event (or resuming an incident) did.
type Result struct {
	IncidentID        string
	Created           bool
	Status            types.IncidentStatus
	AwaitingApproval  bool
	NoMatchingRunbook bool
	Message           string
}

// Orchestrator drives one incident end-to-end: ingest, match, plan, approval
// gate, execute, terminal state. It is the only writer of incident state;
// the engine reports outcomes back instead of writing records itself.
type Orchestrator struct {
	Repository *repository.Repository
	Catalog    *runbook.Catalog
	Generator  *plan.Generator
	Engine     *engine.Engine
	Notifier   *notifier.Notifier
	Logger     *logger.Logger
}

// ProcessEvent ingests one alarm event. Events whose new state is not ALARM
// are acknowledged and discarded without creating an incident.
func (o *Orchestrator) ProcessEvent(ctx context.Context, raw []byte) (*Result, error) {
	event, err := alarm.ParseEvent(raw)

	if err != nil {
		return nil, err
	}

	if !event.IsAlarm() {
		o.Logger.Info().Caller().Msgf("alarm %s transitioned to %s, ignoring", event.Detail.AlarmName, event.Detail.State.Value)

		return &Result{
			Message: fmt.Sprintf("ignored %s transition", event.Detail.State.Value),
		}, nil
	}

	incident := models.NewIncident()
	incident.AlarmName = event.Detail.AlarmName
	incident.Severity = types.SeverityHigh
	incident.Summary = event.Detail.State.Reason
	incident.RawEvent = raw

	if incident.Summary == "" {
		incident.Summary = "No reason provided"
	}

	if _, err := o.Repository.Incident.CreateIncident(incident); err != nil {
		return nil, fmt.Errorf("could not persist incident: %w", err)
	}

	o.Logger.Info().Caller().Msgf("created incident %s for alarm %s", incident.UniqueID, incident.AlarmName)

	result := &Result{
		IncidentID: incident.UniqueID,
		Created:    true,
		Status:     incident.Status,
	}

	rb, err := o.Catalog.Match(incident.AlarmName, event.Namespace())

	if err != nil {
		if errors.Is(err, runbook.ErrNoMatchingRunbook) {
			// the incident stays OPEN and is surfaced for manual handling
			o.Logger.Info().Caller().Msgf("no runbook matches incident %s (alarm %s, namespace %s)", incident.UniqueID, incident.AlarmName, event.Namespace())

			result.NoMatchingRunbook = true
			result.Message = "no matching runbook, incident left open"
			return result, nil
		}

		return nil, err
	}

	p, err := o.Generator.Generate(incident, rb)

	if err != nil {
		return nil, err
	}

	if err := o.transition(incident, types.IncidentStatusMitigating); err != nil {
		return nil, err
	}

	if p.ApprovalRequired {
		// durable suspension point: everything needed to resume is already
		// persisted, so the approval can arrive from another process
		incident.ApprovalPending = true

		if _, err := o.Repository.Incident.UpdateIncident(incident); err != nil {
			return nil, fmt.Errorf("could not persist waiting state for incident %s: %w", incident.UniqueID, err)
		}

		o.Notifier.ApprovalRequested(incident, p)

		o.Logger.Info().Caller().Msgf("incident %s suspended awaiting approval of plan v%d", incident.UniqueID, p.Version)

		result.Status = incident.Status
		result.AwaitingApproval = true
		result.Message = "plan requires approval"
		return result, nil
	}

	return o.execute(ctx, incident, p, result)
}

// Resume continues an incident that was suspended for approval. It re-reads
// the persisted incident and plan and re-validates the waiting state, so a
// duplicate or misdirected approval signal cannot corrupt anything.
func (o *Orchestrator) Resume(ctx context.Context, incidentID string) (*Result, error) {
	incident, err := o.Repository.Incident.ReadIncident(incidentID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrIncidentNotFound, incidentID)
		}

		return nil, err
	}

	if incident.Status != types.IncidentStatusMitigating || !incident.ApprovalPending {
		return nil, fmt.Errorf("%w: incident %s is %s and not awaiting approval", ErrInvalidTransition, incidentID, incident.Status)
	}

	p, err := o.Repository.Plan.LatestPlan(incidentID)

	if err != nil {
		return nil, fmt.Errorf("could not load plan for incident %s: %w", incidentID, err)
	}

	incident.ApprovalPending = false

	if _, err := o.Repository.Incident.UpdateIncident(incident); err != nil {
		return nil, fmt.Errorf("could not clear waiting state for incident %s: %w", incidentID, err)
	}

	o.Logger.Info().Caller().Msgf("incident %s approved, executing plan v%d", incidentID, p.Version)

	result := &Result{
		IncidentID: incident.UniqueID,
		Status:     incident.Status,
	}

	return o.execute(ctx, incident, p, result)
}

func (o *Orchestrator) execute(ctx context.Context, incident *models.Incident, p *models.RemediationPlan, result *Result) (*Result, error) {
	outcome, err := o.Engine.Execute(ctx, incident, p)

	if err != nil {
		// a store failure mid-plan: record the terminal state if we still
		// can, then surface the original error
		if terr := o.transition(incident, types.IncidentStatusFailed); terr != nil {
			o.Logger.Error().Caller().Msgf("could not mark incident %s failed: %v", incident.UniqueID, terr)
		}

		return nil, err
	}

	if outcome.Resolved {
		now := time.Now()
		incident.ResolvedTime = &now

		if err := o.transition(incident, types.IncidentStatusResolved); err != nil {
			return nil, err
		}

		o.Logger.Info().Caller().Msgf("incident %s resolved", incident.UniqueID)
	} else {
		if err := o.transition(incident, types.IncidentStatusFailed); err != nil {
			return nil, err
		}

		o.Logger.Info().Caller().Msgf("incident %s failed: %s", incident.UniqueID, outcome.Reason)
	}

	o.Notifier.IncidentFinished(incident, outcome.Reason)

	result.Status = incident.Status
	result.Message = outcome.Reason
	return result, nil
}

// transition moves the incident through the state machine and persists it.
// Invalid transitions (including any transition out of a terminal state) are
// rejected without a write.
func (o *Orchestrator) transition(incident *models.Incident, to types.IncidentStatus) error {
	if !types.ValidTransition(incident.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, incident.Status, to)
	}

	incident.Status = to
	incident.ApprovalPending = false

	if _, err := o.Repository.Incident.UpdateIncident(incident); err != nil {
		return fmt.Errorf("could not persist incident %s in state %s: %w", incident.UniqueID, to, err)
	}

	return nil
}
