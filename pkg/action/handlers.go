package action

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ranger-dev/ranger-agent/pkg/cloud"
)

// DefaultRegistry wires the built-in remediation actions against a cloud
// state handle.
func DefaultRegistry(state *cloud.State) *Registry {
	r := NewRegistry()

	r.MustRegister("scale_asg", ScaleASG(state))
	r.MustRegister("ssm_restart_service", SSMRestartService(state))
	r.MustRegister("scale_ecs_service", ScaleECSService(state))
	r.MustRegister("rollback_deployment", RollbackDeployment(state))

	return r
}

func ScaleASG(state *cloud.State) HandlerFunc {
	return func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
		asgName, err := stringParam(params, "asg_name")

		if err != nil {
			return nil, err
		}

		adjustment := intParam(params, "adjustment", 1)

		asg, err := state.DescribeAutoScalingGroup(asgName)

		if err != nil {
			return nil, err
		}

		newCapacity := asg.DesiredCapacity + adjustment

		if err := state.SetDesiredCapacity(asgName, newCapacity); err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"old": asg.DesiredCapacity,
			"new": newCapacity,
		}, nil
	}
}

func SSMRestartService(state *cloud.State) HandlerFunc {
	return func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
		instanceID, err := stringParam(params, "instance_id")

		if err != nil {
			return nil, err
		}

		service, err := stringParam(params, "service_name")

		if err != nil {
			return nil, err
		}

		commandID, err := state.SendCommand(instanceID, []string{
			fmt.Sprintf("systemctl restart %s", service),
		})

		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"command_id": commandID,
		}, nil
	}
}

func ScaleECSService(state *cloud.State) HandlerFunc {
	return func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
		cluster, err := stringParam(params, "cluster")

		if err != nil {
			return nil, err
		}

		service, err := stringParam(params, "service")

		if err != nil {
			return nil, err
		}

		adjustment := intParam(params, "adjustment", 1)

		newCount, err := state.UpdateECSService(cluster, service, adjustment)

		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"status":    "scaled",
			"new_count": newCount,
		}, nil
	}
}

func RollbackDeployment(state *cloud.State) HandlerFunc {
	return func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error) {
		targetType, err := stringParam(params, "target_type")

		if err != nil {
			return nil, err
		}

		targetID, err := stringParam(params, "target_id")

		if err != nil {
			return nil, err
		}

		version, err := state.RollbackDeployment(targetType, targetID)

		if err != nil {
			return nil, err
		}

		return map[string]interface{}{
			"status":           "rolled_back",
			"previous_version": version,
		}, nil
	}
}

func stringParam(params map[string]interface{}, key string) (string, error) {
	v, ok := params[key]

	if !ok {
		return "", fmt.Errorf("missing required param %s", key)
	}

	s, ok := v.(string)

	if !ok || s == "" {
		return "", fmt.Errorf("param %s must be a non-empty string", key)
	}

	return s, nil
}

// intParam accepts the numeric shapes a resolved param can take: yaml
// integers, JSON round-tripped floats, or substituted strings.
func intParam(params map[string]interface{}, key string, fallback int) int {
	v, ok := params[key]

	if !ok {
		return fallback
	}

	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.Atoi(n); err == nil {
			return parsed
		}
	}

	return fallback
}
