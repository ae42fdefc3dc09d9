package core

import (
	"fmt"
	"strings"
	"time"
)

// Function is an executable unit bound to a runtime by its kind.
// Spec holds the runtime-specific document; runtimes decode it into their
// own typed spec.
type Function struct {
	ID       string         `json:"id"`
	Project  string         `json:"project"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Metadata Metadata       `json:"metadata"`
	Spec     map[string]any `json:"spec"`
	Status   Status         `json:"status"`
}

// FunctionConfig holds the fields needed to build a Function.
type FunctionConfig struct {
	Project string
	Name    string
	Kind    string
	ID      string
	Spec    map[string]any
}

// NewFunction builds a function from cfg.
func NewFunction(cfg FunctionConfig) (*Function, error) {
	if err := required(EntityFunction, "project", cfg.Project); err != nil {
		return nil, err
	}
	if err := required(EntityFunction, "name", cfg.Name); err != nil {
		return nil, err
	}
	if err := required(EntityFunction, "kind", cfg.Kind); err != nil {
		return nil, err
	}
	if strings.ContainsAny(cfg.Kind, "+:/") {
		return nil, &FieldError{Entity: EntityFunction, Field: "kind", Reason: fmt.Sprintf("%q contains reserved characters", cfg.Kind)}
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
	return &Function{
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

// Key returns the entity key of the function.
func (f *Function) Key() Key {
	return Key{Project: f.Project, Type: EntityFunction, Kind: f.Kind, Name: f.Name, ID: f.ID}
}

// TaskString renders the task reference for an action of this function:
//
//	{function-kind}+{action}://{function-name}:{function-id}
func (f *Function) TaskString(action string) string {
	return fmt.Sprintf("%s+%s://%s:%s", f.Kind, action, f.Name, f.ID)
}
