package action

import (
	"context"
	"fmt"
	"sort"
)

// HandlerFunc executes one remediation action against target infrastructure.
// The returned payload is recorded verbatim in the action log.
type HandlerFunc func(ctx context.Context, params map[string]interface{}) (map[string]interface{}, error)

// Registry maps action-type keys to handlers. It replaces dynamic dispatch
// on method names: unknown types are caught when a plan is generated, not
// when it executes.
type Registry struct {
	handlers map[string]HandlerFunc
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]HandlerFunc),
	}
}

func (r *Registry) Register(actionType string, handler HandlerFunc) error {
	if actionType == "" {
		return fmt.Errorf("action type cannot be empty")
	}

	if handler == nil {
		return fmt.Errorf("handler for %s cannot be nil", actionType)
	}

	if _, exists := r.handlers[actionType]; exists {
		return fmt.Errorf("action type %s registered twice", actionType)
	}

	r.handlers[actionType] = handler
	return nil
}

func (r *Registry) MustRegister(actionType string, handler HandlerFunc) {
	if err := r.Register(actionType, handler); err != nil {
		panic(err)
	}
}

func (r *Registry) Has(actionType string) bool {
	_, ok := r.handlers[actionType]
	return ok
}

func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.handlers))

	for t := range r.handlers {
		out = append(out, t)
	}

	sort.Strings(out)
	return out
}

// Execute invokes the handler for an action type. This is the only call in
// the system that mutates infrastructure.
func (r *Registry) Execute(ctx context.Context, actionType string, params map[string]interface{}) (map[string]interface{}, error) {
	handler, ok := r.handlers[actionType]

	if !ok {
		return nil, fmt.Errorf("no handler registered for action type %s", actionType)
	}

	return handler(ctx, params)
}
