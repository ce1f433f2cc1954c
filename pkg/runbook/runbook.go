package runbook

import (
	"fmt"
	"strings"
)

// Runbook is a declarative remediation recipe, one per catalog file.
type Runbook struct {
	RunbookID string        `yaml:"runbook_id"`
	Match     MatchCriteria `yaml:"match"`
	Actions   []ActionDef   `yaml:"actions"`
}

// MatchCriteria selects the alarms a runbook applies to. An absent criterion
// is a wildcard. Dimensions are carried for operator tooling and are not
// consulted by the matcher.
type MatchCriteria struct {
	AlarmNamePrefix string            `yaml:"alarm_name_prefix"`
	Namespace       string            `yaml:"namespace"`
	Dimensions      map[string]string `yaml:"dimensions"`
}

// ActionDef is one step inside a runbook. String values inside Params may
// contain ${...} substitution tokens. Safety is opaque to the engine except
// for the approval_required flag.
type ActionDef struct {
	ID     string                 `yaml:"id"`
	Type   string                 `yaml:"type"`
	Params map[string]interface{} `yaml:"params"`
	Safety map[string]interface{} `yaml:"safety"`
}

func (a ActionDef) ApprovalRequired() bool {
	required, ok := a.Safety["approval_required"].(bool)

	return ok && required
}

func (r *Runbook) Validate() error {
	if r.RunbookID == "" {
		return fmt.Errorf("runbook is missing runbook_id")
	}

	if len(r.Actions) == 0 {
		return fmt.Errorf("runbook %s has no actions", r.RunbookID)
	}

	seen := map[string]bool{}

	for i, action := range r.Actions {
		if action.ID == "" {
			return fmt.Errorf("runbook %s: action %d is missing an id", r.RunbookID, i)
		}

		if action.Type == "" {
			return fmt.Errorf("runbook %s: action %s is missing a type", r.RunbookID, action.ID)
		}

		if seen[action.ID] {
			return fmt.Errorf("runbook %s: duplicate action id %s", r.RunbookID, action.ID)
		}

		seen[action.ID] = true
	}

	return nil
}

// Matches reports whether every specified criterion is satisfied by the
// alarm name and metric namespace.
func (r *Runbook) Matches(alarmName, namespace string) bool {
	if r.Match.Namespace != "" && r.Match.Namespace != namespace {
		return false
	}

	if r.Match.AlarmNamePrefix != "" && !strings.HasPrefix(alarmName, r.Match.AlarmNamePrefix) {
		return false
	}

	return true
}
