package core

import (
	"strings"
	"time"
)

// Run is one execution of a task.
type Run struct {
	ID       string         `json:"id"`
	Project  string         `json:"project"`
	Kind     string         `json:"kind"`
	Metadata Metadata       `json:"metadata"`
	Spec     map[string]any `json:"spec"`
	Status   RunStatus      `json:"status"`
}

// RunConfig holds the fields needed to build a Run.
type RunConfig struct {
	Task *Task
	ID   string
	// Spec is the merged function, task and run spec produced by the
	// runtime's Build step.
	Spec map[string]any
}

// NewRun builds a run for cfg.Task.
func NewRun(cfg RunConfig) (*Run, error) {
	if cfg.Task == nil {
		return nil, &FieldError{Entity: EntityRun, Field: "task"}
	}
	fn := cfg.Task.FunctionString()
	if err := required(EntityRun, "task.spec.function", fn); err != nil {
		return nil, err
	}
	id := cfg.ID
	if id == "" {
		id = NewID()
	}
	spec := map[string]any{}
	for k, v := range cfg.Spec {
		spec[k] = v
	}
	spec["task"] = fn
	spec["task_id"] = cfg.Task.ID

	functionKind, _, _ := strings.Cut(cfg.Task.Kind, "+")
	now := time.Now().UTC()
	return &Run{
		ID:      id,
		Project: cfg.Task.Project,
		Kind:    functionKind + "+run",
		Metadata: Metadata{
			Project: cfg.Task.Project,
			Version: id,
			Created: now,
			Updated: now,
		},
		Spec:   spec,
		Status: RunStatus{State: StateCreated},
	}, nil
}

// TaskString returns the task reference stored in the run spec.
func (r *Run) TaskString() string {
	s, _ := r.Spec["task"].(string)
	return s
}

// Key returns the entity key of the run.
func (r *Run) Key() Key {
	return Key{Project: r.Project, Type: EntityRun, Kind: r.Kind, Name: r.ID, ID: r.ID}
}
