package alarm

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StateAlarm is the only new-state value that produces an incident. Every
// other transition (OK, INSUFFICIENT_DATA) is acknowledged and discarded.
const StateAlarm = "ALARM"

// ErrInvalidEvent flags a malformed alarm payload. No incident is created
// for such events.
var ErrInvalidEvent = errors.New("invalid alarm event")

// Event is a CloudWatch alarm state change notification.
type Event struct {
	Version    string `json:"version,omitempty"`
	ID         string `json:"id,omitempty"`
	DetailType string `json:"detail-type,omitempty"`
	Source     string `json:"source,omitempty"`
	AccountID  string `json:"account,omitempty"`
	Time       string `json:"time,omitempty"`
	Region     string `json:"region,omitempty"`
	Detail     Detail `json:"detail"`
}

type Detail struct {
	AlarmName     string        `json:"alarmName"`
	State         State         `json:"state"`
	PreviousState State         `json:"previousState,omitempty"`
	Configuration Configuration `json:"configuration,omitempty"`
}

type State struct {
	Value     string `json:"value"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type Configuration struct {
	Description string             `json:"description,omitempty"`
	Metrics     []MetricDescriptor `json:"metrics,omitempty"`
}

type MetricDescriptor struct {
	ID         string     `json:"id,omitempty"`
	MetricStat MetricStat `json:"metricStat"`
	ReturnData bool       `json:"returnData,omitempty"`
}

type MetricStat struct {
	Metric Metric `json:"metric"`
	Period int    `json:"period,omitempty"`
	Stat   string `json:"stat,omitempty"`
}

type Metric struct {
	Namespace  string            `json:"namespace"`
	Name       string            `json:"name,omitempty"`
	Dimensions map[string]string `json:"dimensions,omitempty"`
}

// ParseEvent decodes an alarm payload with a structured parser and validates
// the fields ingestion depends on.
func ParseEvent(raw []byte) (*Event, error) {
	event := &Event{}

	if err := json.Unmarshal(raw, event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	if event.Detail.AlarmName == "" {
		return nil, fmt.Errorf("%w: missing alarm name", ErrInvalidEvent)
	}

	if event.Detail.State.Value == "" {
		return nil, fmt.Errorf("%w: missing state value", ErrInvalidEvent)
	}

	return event, nil
}

// IsAlarm reports whether the event's new state signals an active alarm.
func (e *Event) IsAlarm() bool {
	return e.Detail.State.Value == StateAlarm
}

// Namespace returns the metric namespace of the first metric descriptor, or
// an empty string when the event carries none.
func (e *Event) Namespace() string {
	if len(e.Detail.Configuration.Metrics) == 0 {
		return ""
	}

	return e.Detail.Configuration.Metrics[0].MetricStat.Metric.Namespace
}

// Dimensions returns the dimension set of the first metric descriptor.
func (e *Event) Dimensions() map[string]string {
	if len(e.Detail.Configuration.Metrics) == 0 {
		return nil
	}

	return e.Detail.Configuration.Metrics[0].MetricStat.Metric.Dimensions
}
