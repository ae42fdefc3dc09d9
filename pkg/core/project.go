package core

import "time"

// ProjectSpec is the specification of a project.
type ProjectSpec struct {
	Context   string       `json:"context,omitempty"`
	Functions []EntityInfo `json:"functions,omitempty"`
	Workflows []EntityInfo `json:"workflows,omitempty"`
	DataItems []EntityInfo `json:"dataitems,omitempty"`
	Artifacts []EntityInfo `json:"artifacts,omitempty"`
}

// Project groups every other entity.
type Project struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Metadata Metadata    `json:"metadata"`
	Spec     ProjectSpec `json:"spec"`
	Status   Status      `json:"status"`
}

// ProjectConfig holds the fields needed to build a Project.
type ProjectConfig struct {
	Name        string
	Description string
	Context     string
}

// NewProject builds a project from cfg.
func NewProject(cfg ProjectConfig) (*Project, error) {
	if err := required(EntityProject, "name", cfg.Name); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Project{
		Name: cfg.Name,
		Kind: "project",
		Metadata: Metadata{
			Project:     cfg.Name,
			Name:        cfg.Name,
			Description: cfg.Description,
			Created:     now,
			Updated:     now,
		},
		Spec:   ProjectSpec{Context: cfg.Context},
		Status: Status{State: StateCreated},
	}, nil
}
