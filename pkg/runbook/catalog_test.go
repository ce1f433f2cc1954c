package runbook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ranger-dev/ranger-agent/internal/logger"
)

const highCPURunbook = `runbook_id: high_cpu_ec2_mitigate
match:
  alarm_name_prefix: "ec2-high-cpu"
  namespace: "AWS/EC2"
actions:
  - id: scale-up
    type: scale_asg
    params:
      asg_name: "app-prod-asg"
      adjustment: 1
    safety:
      approval_required: false
`

const wildcardRunbook = `runbook_id: catch_all_ec2
match:
  namespace: "AWS/EC2"
actions:
  - id: restart
    type: ssm_restart_service
    params:
      instance_id: "${dimensions.InstanceId}"
      service_name: "nginx"
    safety:
      approval_required: true
`

func writeRunbooks(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("could not write runbook file: %v", err)
		}
	}

	return dir
}

func loadCatalog(t *testing.T, files map[string]string) *Catalog {
	t.Helper()

	catalog := NewCatalog(writeRunbooks(t, files), logger.NewConsole(false))

	if err := catalog.Load(); err != nil {
		t.Fatalf("could not load catalog: %v", err)
	}

	return catalog
}

func TestMatchByPrefixAndNamespace(t *testing.T) {
	catalog := loadCatalog(t, map[string]string{"high_cpu.yaml": highCPURunbook})

	rb, err := catalog.Match("ec2-high-cpu-prod", "AWS/EC2")

	if err != nil {
		t.Fatalf("Expected a match, got %v", err)
	}

	if rb.RunbookID != "high_cpu_ec2_mitigate" {
		t.Errorf("Expected high_cpu_ec2_mitigate, got %s", rb.RunbookID)
	}
}

func TestMatchNotFound(t *testing.T) {
	catalog := loadCatalog(t, map[string]string{"high_cpu.yaml": highCPURunbook})

	_, err := catalog.Match("random-alarm", "AWS/RDS")

	if !errors.Is(err, ErrNoMatchingRunbook) {
		t.Errorf("Expected ErrNoMatchingRunbook, got %v", err)
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	catalog := loadCatalog(t, map[string]string{
		"a_high_cpu.yaml": highCPURunbook,
		"b_wildcard.yaml": wildcardRunbook,
	})

	for i := 0; i < 5; i++ {
		rb, err := catalog.Match("ec2-high-cpu-prod", "AWS/EC2")

		if err != nil {
			t.Fatalf("Expected a match, got %v", err)
		}

		if rb.RunbookID != "high_cpu_ec2_mitigate" {
			t.Errorf("Expected stable result across calls, got %s", rb.RunbookID)
		}
	}
}

func TestMatchFirstWins(t *testing.T) {
	// both runbooks satisfy the criteria; walk order puts the wildcard first
	catalog := loadCatalog(t, map[string]string{
		"a_wildcard.yaml": wildcardRunbook,
		"b_high_cpu.yaml": highCPURunbook,
	})

	rb, err := catalog.Match("ec2-high-cpu-prod", "AWS/EC2")

	if err != nil {
		t.Fatalf("Expected a match, got %v", err)
	}

	if rb.RunbookID != "catch_all_ec2" {
		t.Errorf("Expected the earlier runbook to win, got %s", rb.RunbookID)
	}
}

func TestAbsentCriterionIsWildcard(t *testing.T) {
	catalog := loadCatalog(t, map[string]string{"wildcard.yaml": wildcardRunbook})

	rb, err := catalog.Match("anything-at-all", "AWS/EC2")

	if err != nil {
		t.Fatalf("Expected namespace-only match, got %v", err)
	}

	if rb.RunbookID != "catch_all_ec2" {
		t.Errorf("Expected catch_all_ec2, got %s", rb.RunbookID)
	}
}

func TestLoadSkipsInvalidFiles(t *testing.T) {
	catalog := loadCatalog(t, map[string]string{
		"good.yaml": highCPURunbook,
		"bad.yaml":  "runbook_id: broken\nactions: []\n",
		"noise.txt": "not a runbook",
	})

	if len(catalog.Runbooks()) != 1 {
		t.Errorf("Expected 1 loaded runbook, got %d", len(catalog.Runbooks()))
	}
}

func TestValidateRejectsDuplicateActionIDs(t *testing.T) {
	rb := &Runbook{
		RunbookID: "dup",
		Actions: []ActionDef{
			{ID: "a", Type: "scale_asg"},
			{ID: "a", Type: "scale_asg"},
		},
	}

	if err := rb.Validate(); err == nil {
		t.Errorf("Expected duplicate action ids to be rejected")
	}
}

func TestApprovalRequired(t *testing.T) {
	catalog := loadCatalog(t, map[string]string{"wildcard.yaml": wildcardRunbook})

	rb, err := catalog.Match("anything", "AWS/EC2")

	if err != nil {
		t.Fatalf("Expected a match, got %v", err)
	}

	if !rb.Actions[0].ApprovalRequired() {
		t.Errorf("Expected approval_required to be read from the safety block")
	}
}
