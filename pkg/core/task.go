package core

import (
	"fmt"
	"strings"
	"time"
)

// Task binds a function to one of the actions its runtime supports.
// Kind is "{function-kind}+{action}".
type Task struct {
	ID       string         `json:"id"`
	Project  string         `json:"project"`
	Kind     string         `json:"kind"`
	Metadata Metadata       `json:"metadata"`
	Spec     map[string]any `json:"spec"`
	Status   Status         `json:"status"`
}

// TaskConfig holds the fields needed to build a Task.
type TaskConfig struct {
	Function *Function
	Action   string
	ID       string
	Spec     map[string]any
}

// NewTask builds a task for cfg.Function.
func NewTask(cfg TaskConfig) (*Task, error) {
	if cfg.Function == nil {
		return nil, &FieldError{Entity: EntityTask, Field: "function"}
	}
	if err := required(EntityTask, "action", cfg.Action); err != nil {
		return nil, err
	}
	if strings.ContainsAny(cfg.Action, "+:/") {
		return nil, &FieldError{Entity: EntityTask, Field: "action", Reason: fmt.Sprintf("%q contains reserved characters", cfg.Action)}
	}
	id := cfg.ID
	if id == "" {
		id = NewID()
	}
	spec := map[string]any{}
	for k, v := range cfg.Spec {
		spec[k] = v
	}
	spec["function"] = cfg.Function.TaskString(cfg.Action)

	now := time.Now().UTC()
	return &Task{
		ID:      id,
		Project: cfg.Function.Project,
		Kind:    cfg.Function.Kind + "+" + cfg.Action,
		Metadata: Metadata{
			Project: cfg.Function.Project,
			Version: id,
			Created: now,
			Updated: now,
		},
		Spec:   spec,
		Status: Status{State: StateCreated},
	}, nil
}

// Action returns the action part of the task kind.
func (t *Task) Action() string {
	_, action, _ := strings.Cut(t.Kind, "+")
	return action
}

// FunctionString returns the "kind+action://name:id" reference.
func (t *Task) FunctionString() string {
	s, _ := t.Spec["function"].(string)
	return s
}
