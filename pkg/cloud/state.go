package cloud

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
)

// State is a simulated view of the target infrastructure. It is passed by
// handle into the action handlers rather than held as a process-wide
// singleton, so concurrent tests each get their own copy.
type State struct {
	mu sync.Mutex

	autoScalingGroups map[string]*AutoScalingGroup
	ecsServices       map[string]*ECSService
	deployments       map[string]*Deployment
}

type AutoScalingGroup struct {
	Name            string
	DesiredCapacity int
	MaxSize         int
}

type ECSService struct {
	Cluster      string
	Service      string
	DesiredCount int
}

type Deployment struct {
	TargetType      string
	TargetID        string
	ActiveVersion   string
	PreviousVersion string
}

// NewState seeds a state with the resources the local simulator operates on.
func NewState() *State {
	return &State{
		autoScalingGroups: map[string]*AutoScalingGroup{
			"app-prod-asg": {Name: "app-prod-asg", DesiredCapacity: 2, MaxSize: 5},
		},
		ecsServices: map[string]*ECSService{
			"my-cluster/my-service": {Cluster: "my-cluster", Service: "my-service", DesiredCount: 2},
		},
		deployments: map[string]*Deployment{
			"ecs/api": {TargetType: "ecs", TargetID: "api", ActiveVersion: "v2", PreviousVersion: "v1"},
		},
	}
}

// DescribeAutoScalingGroup returns a copy of the named group.
func (s *State) DescribeAutoScalingGroup(name string) (AutoScalingGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asg, ok := s.autoScalingGroups[name]

	if !ok {
		return AutoScalingGroup{}, fmt.Errorf("auto scaling group %s not found", name)
	}

	return *asg, nil
}

func (s *State) SetDesiredCapacity(name string, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asg, ok := s.autoScalingGroups[name]

	if !ok {
		return fmt.Errorf("auto scaling group %s not found", name)
	}

	if capacity > asg.MaxSize {
		return fmt.Errorf("desired capacity %d exceeds max size %d for %s", capacity, asg.MaxSize, name)
	}

	if capacity < 0 {
		return fmt.Errorf("desired capacity cannot be negative")
	}

	asg.DesiredCapacity = capacity
	return nil
}

// UpdateECSService adjusts the desired count of cluster/service and returns
// the new count.
func (s *State) UpdateECSService(cluster, service string, adjustment int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s/%s", cluster, service)
	svc, ok := s.ecsServices[key]

	if !ok {
		return 0, fmt.Errorf("ecs service %s not found", key)
	}

	newCount := svc.DesiredCount + adjustment

	if newCount < 0 {
		newCount = 0
	}

	svc.DesiredCount = newCount
	return newCount, nil
}

// SendCommand simulates dispatching a command document to an instance and
// returns a command identifier.
func (s *State) SendCommand(instanceID string, commands []string) (string, error) {
	if instanceID == "" {
		return "", fmt.Errorf("instance id is required")
	}

	b := make([]byte, 8)
	_, _ = rand.Read(b)

	return "cmd-" + hex.EncodeToString(b), nil
}

// RollbackDeployment swaps a deployment back to its previous version and
// returns the version now active.
func (s *State) RollbackDeployment(targetType, targetID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%s/%s", targetType, targetID)
	dep, ok := s.deployments[key]

	if !ok {
		return "", fmt.Errorf("deployment %s not found", key)
	}

	dep.ActiveVersion, dep.PreviousVersion = dep.PreviousVersion, dep.ActiveVersion

	return dep.ActiveVersion, nil
}
