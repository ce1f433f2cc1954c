package notifier

import (
	"github.com/ranger-dev/ranger-agent/internal/envconf"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/models"
	"github.com/ranger-dev/ranger-agent/pkg/httpclient"
)

// Notifier posts incident lifecycle notifications to an external webhook.
// Delivery is best-effort: a failed notification is logged and never fails
// the remediation pipeline.
type Notifier struct {
	Client *httpclient.Client
	Logger *logger.Logger
}

func New(conf *envconf.NotifierConf, l *logger.Logger) *Notifier {
	n := &Notifier{Logger: l}

	if conf.WebhookHost != "" {
		n.Client = httpclient.NewClient(conf.WebhookHost, conf.WebhookToken)
	}

	return n
}

type notification struct {
	Kind       string `json:"kind"`
	IncidentID string `json:"incident_id"`
	AlarmName  string `json:"alarm_name"`
	Status     string `json:"status"`
	Summary    string `json:"summary,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// ApprovalRequested announces that a plan is suspended awaiting approval.
func (n *Notifier) ApprovalRequested(incident *models.Incident, plan *models.RemediationPlan) {
	n.send(&notification{
		Kind:       "approval_requested",
		IncidentID: incident.UniqueID,
		AlarmName:  incident.AlarmName,
		Status:     string(incident.Status),
		Summary:    incident.Summary,
	})
}

// IncidentFinished announces a terminal incident state.
func (n *Notifier) IncidentFinished(incident *models.Incident, detail string) {
	n.send(&notification{
		Kind:       "incident_finished",
		IncidentID: incident.UniqueID,
		AlarmName:  incident.AlarmName,
		Status:     string(incident.Status),
		Summary:    incident.Summary,
		Detail:     detail,
	})
}

func (n *Notifier) send(payload *notification) {
	if n.Client == nil {
		return
	}

	resp, err := n.Client.Post("/notify", payload)

	if err != nil {
		n.Logger.Error().Caller().Msgf("could not deliver %s notification for incident %s: %v", payload.Kind, payload.IncidentID, err)
		return
	}

	resp.Body.Close()
}
