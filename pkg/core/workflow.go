package core

import "time"

// Workflow is a named pipeline definition. Its spec is opaque to this
// module; the executing engine owns its format.
type Workflow struct {
	ID       string         `json:"id"`
	Project  string         `json:"project"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Metadata Metadata       `json:"metadata"`
	Spec     map[string]any `json:"spec"`
	Status   Status         `json:"status"`
}

// WorkflowConfig holds the fields needed to build a Workflow.
type WorkflowConfig struct {
	Project string
	Name    string
	Kind    string
	ID      string
	Spec    map[string]any
}

// NewWorkflow builds a workflow from cfg.
func NewWorkflow(cfg WorkflowConfig) (*Workflow, error) {
	if err := required(EntityWorkflow, "project", cfg.Project); err != nil {
		return nil, err
	}
	if err := required(EntityWorkflow, "name", cfg.Name); err != nil {
		return nil, err
	}
	if err := required(EntityWorkflow, "kind", cfg.Kind); err != nil {
		return nil, err
	}
	id := cfg.ID
	if id == "" {
		id = NewID()
	}
	spec := cfg.Spec
	if spec == nil {
		spec = map[string]any{}
	}
	now := time.Now().UTC()
	return &Workflow{
		ID:      id,
		Project: cfg.Project,
		Name:    cfg.Name,
		Kind:    cfg.Kind,
		Metadata: Metadata{
			Project: cfg.Project,
			Name:    cfg.Name,
			Version: id,
			Created: now,
			Updated: now,
		},
		Spec:   spec,
		Status: Status{State: StateCreated},
	}, nil
}

// Key returns the entity key of the workflow.
func (w *Workflow) Key() Key {
	return Key{Project: w.Project, Type: EntityWorkflow, Kind: w.Kind, Name: w.Name, ID: w.ID}
}
