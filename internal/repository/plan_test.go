package repository

import (
	"errors"
	"testing"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/internal/models"
	"gorm.io/gorm"
)

func TestLatestPlanReturnsHighestVersion(t *testing.T) {
	tester := &tester{
		dbFileName: "./plan_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	for version := 1; version <= 3; version++ {
		p := models.NewRemediationPlan("incident-1", version, false)

		if err := p.SetActions([]types.PlanAction{
			{ID: "a-1", Type: "scale_asg", Params: map[string]interface{}{"asg_name": "app-prod-asg"}},
		}); err != nil {
			t.Fatalf("Expected no error setting actions, got %v", err)
		}

		if _, err := tester.repo.Plan.CreatePlan(p); err != nil {
			t.Fatalf("Expected no error creating plan, got %v", err)
		}
	}

	latest, err := tester.repo.Plan.LatestPlan("incident-1")

	if err != nil {
		t.Fatalf("Expected no error reading latest plan, got %v", err)
	}

	if latest.Version != 3 {
		t.Errorf("Expected latest plan version 3, got %d", latest.Version)
	}

	plans, err := tester.repo.Plan.ListPlans("incident-1")

	if err != nil {
		t.Fatalf("Expected no error listing plans, got %v", err)
	}

	if len(plans) != 3 {
		t.Errorf("Expected 3 persisted plan versions, got %d", len(plans))
	}
}

func TestLatestPlanNotFound(t *testing.T) {
	tester := &tester{
		dbFileName: "./plan_notfound_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	_, err := tester.repo.Plan.LatestPlan("missing-incident")

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("Expected gorm.ErrRecordNotFound, got %v", err)
	}
}

func TestPlanActionsRoundTripPreservesOrder(t *testing.T) {
	tester := &tester{
		dbFileName: "./plan_order_test.db",
	}

	setupTestEnv(tester, t)
	defer cleanup(tester, t)

	p := models.NewRemediationPlan("incident-2", 1, true)

	if err := p.SetActions([]types.PlanAction{
		{ID: "first", Type: "scale_asg", Params: map[string]interface{}{}},
		{ID: "second", Type: "ssm_restart_service", Params: map[string]interface{}{}},
		{ID: "third", Type: "rollback_deployment", Params: map[string]interface{}{}},
	}); err != nil {
		t.Fatalf("Expected no error setting actions, got %v", err)
	}

	if _, err := tester.repo.Plan.CreatePlan(p); err != nil {
		t.Fatalf("Expected no error creating plan, got %v", err)
	}

	read, err := tester.repo.Plan.LatestPlan("incident-2")

	if err != nil {
		t.Fatalf("Expected no error reading plan, got %v", err)
	}

	actions, err := read.GetActions()

	if err != nil {
		t.Fatalf("Expected no error decoding actions, got %v", err)
	}

	ids := []string{"first", "second", "third"}

	for i, a := range actions {
		if a.ID != ids[i] {
			t.Errorf("Expected action %d to be %s, got %s", i, ids[i], a.ID)
		}
	}
}
