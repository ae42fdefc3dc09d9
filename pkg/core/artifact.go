package core

import "time"

// ArtifactKindArtifact is the generic artifact kind.
const ArtifactKindArtifact = "artifact"

// ArtifactSpec is the specification of an artifact.
type ArtifactSpec struct {
	Path    string `json:"path"`
	SrcPath string `json:"src_path,omitempty"`
}

// FileInfo describes the file behind an artifact.
type FileInfo struct {
	Size      int64  `json:"size,omitempty"`
	Hash      string `json:"hash,omitempty"`
	MimeType  string `json:"content_type,omitempty"`
	Extension string `json:"file_extension,omitempty"`
}

// ArtifactStatus is the status of an artifact.
type ArtifactStatus struct {
	Status
	File *FileInfo `json:"file_info,omitempty"`
}

// Artifact is a versioned file produced or consumed by a run.
type Artifact struct {
	ID       string         `json:"id"`
	Project  string         `json:"project"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Metadata Metadata       `json:"metadata"`
	Spec     ArtifactSpec   `json:"spec"`
	Status   ArtifactStatus `json:"status"`
}

// ArtifactConfig holds the fields needed to build an Artifact.
type ArtifactConfig struct {
	Project string
	Name    string
	ID      string
	Path    string
	SrcPath string
	File    *FileInfo
}

// NewArtifact builds an artifact from cfg.
func NewArtifact(cfg ArtifactConfig) (*Artifact, error) {
	if err := required(EntityArtifact, "project", cfg.Project); err != nil {
		return nil, err
	}
	if err := required(EntityArtifact, "name", cfg.Name); err != nil {
		return nil, err
	}
	if err := required(EntityArtifact, "path", cfg.Path); err != nil {
		return nil, err
	}
	id := cfg.ID
	if id == "" {
		id = NewID()
	}
	now := time.Now().UTC()
	return &Artifact{
		ID:      id,
		Project: cfg.Project,
		Name:    cfg.Name,
		Kind:    ArtifactKindArtifact,
		Metadata: Metadata{
			Project: cfg.Project,
			Name:    cfg.Name,
			Version: id,
			Created: now,
			Updated: now,
		},
		Spec:   ArtifactSpec{Path: cfg.Path, SrcPath: cfg.SrcPath},
		Status: ArtifactStatus{Status: Status{State: StateCreated}, File: cfg.File},
	}, nil
}

// Key returns the entity key of the artifact.
func (a *Artifact) Key() Key {
	return Key{Project: a.Project, Type: EntityArtifact, Kind: a.Kind, Name: a.Name, ID: a.ID}
}

// Info returns the reference descriptor of the artifact.
func (a *Artifact) Info() EntityInfo {
	return EntityInfo{Key: a.Key().String(), ID: a.ID, Name: a.Name, Kind: a.Kind}
}
