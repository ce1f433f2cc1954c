package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ranger-dev/ranger-agent/api/server/types"
	"github.com/ranger-dev/ranger-agent/internal/adapter"
	"github.com/ranger-dev/ranger-agent/internal/envconf"
	"github.com/ranger-dev/ranger-agent/internal/locker"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"github.com/ranger-dev/ranger-agent/internal/models"
	"github.com/ranger-dev/ranger-agent/internal/repository"
	"github.com/ranger-dev/ranger-agent/internal/utils"
	"github.com/ranger-dev/ranger-agent/pkg/action"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineEnv struct {
	engine *Engine
	repo   *repository.Repository
	calls  map[string]int
}

// registry records invocation counts per action id and fails any action whose
// params carry fail: true.
func (env *engineEnv) registry() *action.Registry {
	r := action.NewRegistry()

	handler := func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
		id, _ := params["action_id"].(string)
		env.calls[id]++

		if fail, _ := params["fail"].(bool); fail {
			return nil, errors.New("simulated failure")
		}

		return map[string]interface{}{"status": "ok"}, nil
	}

	r.MustRegister("scale_asg", handler)
	r.MustRegister("ssm_restart_service", handler)

	return r
}

func setupEngine(t *testing.T) *engineEnv {
	t.Helper()

	db, err := adapter.New(&envconf.DBConf{
		SQLite:     true,
		SQLitePath: filepath.Join(t.TempDir(), "engine_test.db"),
	})

	require.NoError(t, err)
	require.NoError(t, repository.AutoMigrate(db, false))

	repo := repository.NewRepository(db)

	env := &engineEnv{
		repo:  repo,
		calls: map[string]int{},
	}

	env.engine = &Engine{
		Repository:     repo,
		Registry:       env.registry(),
		Locker:         locker.NewDBLocker(repo.Lock),
		Logger:         logger.NewConsole(false),
		ResourceParams: DefaultResourceParams(),
		LockTTL:        30 * time.Second,
	}

	return env
}

func seedIncident(t *testing.T, env *engineEnv) *models.Incident {
	t.Helper()

	incident := models.NewIncident()
	incident.AlarmName = "ec2-high-cpu-prod"

	incident, err := env.repo.Incident.CreateIncident(incident)
	require.NoError(t, err)

	return incident
}

func seedPlan(t *testing.T, env *engineEnv, incidentID string, actions []types.PlanAction) *models.RemediationPlan {
	t.Helper()

	p := models.NewRemediationPlan(incidentID, 1, false)
	require.NoError(t, p.SetActions(actions))

	p, err := env.repo.Plan.CreatePlan(p)
	require.NoError(t, err)

	return p
}

func threeActions(failSecond bool) []types.PlanAction {
	return []types.PlanAction{
		{ID: "first", Type: "scale_asg", Params: map[string]interface{}{
			"action_id": "first", "asg_name": "asg-one",
		}},
		{ID: "second", Type: "scale_asg", Params: map[string]interface{}{
			"action_id": "second", "asg_name": "asg-two", "fail": failSecond,
		}},
		{ID: "third", Type: "scale_asg", Params: map[string]interface{}{
			"action_id": "third", "asg_name": "asg-three",
		}},
	}
}

func statusesFor(t *testing.T, env *engineEnv, incidentID, actionID string) []types.ActionStatus {
	t.Helper()

	entries, err := env.repo.ActionLog.ListEntries(&utils.ListActionLogsFilter{
		IncidentID: &incidentID,
		ActionID:   &actionID,
	})
	require.NoError(t, err)

	statuses := make([]types.ActionStatus, 0, len(entries))

	for _, e := range entries {
		statuses = append(statuses, e.Status)
	}

	return statuses
}

func TestExecuteAllActionsSucceed(t *testing.T) {
	env := setupEngine(t)
	incident := seedIncident(t, env)
	p := seedPlan(t, env, incident.UniqueID, threeActions(false))

	outcome, err := env.engine.Execute(context.Background(), incident, p)
	require.NoError(t, err)

	assert.True(t, outcome.Resolved)
	assert.Equal(t, 1, env.calls["first"])
	assert.Equal(t, 1, env.calls["second"])
	assert.Equal(t, 1, env.calls["third"])

	assert.Equal(t, []types.ActionStatus{
		types.ActionStatusInProgress,
		types.ActionStatusSuccess,
	}, statusesFor(t, env, incident.UniqueID, "second"))
}

func TestExecuteFailFast(t *testing.T) {
	env := setupEngine(t)
	incident := seedIncident(t, env)
	p := seedPlan(t, env, incident.UniqueID, threeActions(true))

	outcome, err := env.engine.Execute(context.Background(), incident, p)
	require.NoError(t, err)

	assert.False(t, outcome.Resolved)
	assert.Equal(t, "second", outcome.FailedActionID)
	assert.False(t, outcome.Contention)

	// the failed action never cascades to the one after it
	assert.Equal(t, 0, env.calls["third"])
	assert.Empty(t, statusesFor(t, env, incident.UniqueID, "third"))

	assert.Equal(t, []types.ActionStatus{
		types.ActionStatusInProgress,
		types.ActionStatusFailed,
	}, statusesFor(t, env, incident.UniqueID, "second"))
}

func TestExecuteSkipsPriorSuccess(t *testing.T) {
	env := setupEngine(t)
	incident := seedIncident(t, env)
	p := seedPlan(t, env, incident.UniqueID, threeActions(false))

	prior := models.NewActionLog(incident.UniqueID, "first", types.ActionStatusSuccess)
	_, err := env.repo.ActionLog.AppendEntry(prior)
	require.NoError(t, err)

	outcome, err := env.engine.Execute(context.Background(), incident, p)
	require.NoError(t, err)

	assert.True(t, outcome.Resolved)
	assert.Equal(t, 0, env.calls["first"])
	assert.Equal(t, 1, env.calls["second"])

	statuses := statusesFor(t, env, incident.UniqueID, "first")
	require.Len(t, statuses, 2)
	assert.Equal(t, types.ActionStatusSkipped, statuses[1])
}

func TestExecuteFailedActionIsRetriedOnResume(t *testing.T) {
	env := setupEngine(t)
	incident := seedIncident(t, env)
	p := seedPlan(t, env, incident.UniqueID, threeActions(false))

	prior := models.NewActionLog(incident.UniqueID, "second", types.ActionStatusFailed)
	_, err := env.repo.ActionLog.AppendEntry(prior)
	require.NoError(t, err)

	outcome, err := env.engine.Execute(context.Background(), incident, p)
	require.NoError(t, err)

	assert.True(t, outcome.Resolved)
	assert.Equal(t, 1, env.calls["second"])
}

func TestExecuteLockContentionStopsPlan(t *testing.T) {
	env := setupEngine(t)
	incident := seedIncident(t, env)
	p := seedPlan(t, env, incident.UniqueID, threeActions(false))

	// another incident holds the lease on the second action's resource
	_, err := env.repo.Lock.AcquireLock("asg-two", "some-other-incident", time.Minute)
	require.NoError(t, err)

	outcome, err := env.engine.Execute(context.Background(), incident, p)
	require.NoError(t, err)

	assert.False(t, outcome.Resolved)
	assert.True(t, outcome.Contention)
	assert.Equal(t, "second", outcome.FailedActionID)

	assert.Equal(t, 1, env.calls["first"])
	assert.Equal(t, 0, env.calls["second"])
	assert.Equal(t, 0, env.calls["third"])

	assert.Equal(t, []types.ActionStatus{
		types.ActionStatusSkipped,
	}, statusesFor(t, env, incident.UniqueID, "second"))
}

func TestExecuteReleasesLocks(t *testing.T) {
	env := setupEngine(t)
	incident := seedIncident(t, env)
	p := seedPlan(t, env, incident.UniqueID, threeActions(false))

	_, err := env.engine.Execute(context.Background(), incident, p)
	require.NoError(t, err)

	// all leases released: another holder can take every resource
	for _, resource := range []string{"asg-one", "asg-two", "asg-three"} {
		_, err := env.repo.Lock.AcquireLock(resource, "next-incident", time.Minute)
		assert.NoError(t, err, "resource %s still locked", resource)
	}
}
