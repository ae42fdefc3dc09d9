package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies a family of versioned objects.
type EntityType string

// Entity type constants. The string form is the plural collection name
// used in keys and status outputs.
const (
	EntityProject  EntityType = "projects"
	EntityFunction EntityType = "functions"
	EntityWorkflow EntityType = "workflows"
	EntityTask     EntityType = "tasks"
	EntityRun      EntityType = "runs"
	EntityDataItem EntityType = "dataitems"
	EntityArtifact EntityType = "artifacts"
)

// KeyScheme is the prefix of every entity key.
const KeyScheme = "store://"

// Metadata holds descriptive fields shared by all entities.
type Metadata struct {
	Project     string    `json:"project,omitempty" yaml:"project,omitempty"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Version     string    `json:"version,omitempty" yaml:"version,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Labels      []string  `json:"labels,omitempty" yaml:"labels,omitempty"`
	Created     time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Updated     time.Time `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// EntityInfo is the reference descriptor of an entity inside a status document.
type EntityInfo struct {
	Key  string `json:"key"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Key identifies one version of an entity:
//
//	store://{project}/{entity_type}/{kind}/{name}:{id}
type Key struct {
	Project string
	Type    EntityType
	Kind    string
	Name    string
	ID      string
}

// String renders the key in its canonical form.
func (k Key) String() string {
	return fmt.Sprintf("%s%s/%s/%s/%s:%s", KeyScheme, k.Project, k.Type, k.Kind, k.Name, k.ID)
}

// ParseKey parses a canonical entity key.
func ParseKey(s string) (Key, error) {
	rest, ok := strings.CutPrefix(s, KeyScheme)
	if !ok {
		return Key{}, fmt.Errorf("invalid key %q: missing %s prefix", s, KeyScheme)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 4 {
		return Key{}, fmt.Errorf("invalid key %q: expected project/type/kind/name:id", s)
	}
	name, id, ok := strings.Cut(parts[3], ":")
	if !ok || name == "" || id == "" {
		return Key{}, fmt.Errorf("invalid key %q: expected name:id", s)
	}
	for i, p := range parts[:3] {
		if p == "" {
			return Key{}, fmt.Errorf("invalid key %q: empty segment %d", s, i)
		}
	}
	return Key{
		Project: parts[0],
		Type:    EntityType(parts[1]),
		Kind:    parts[2],
		Name:    name,
		ID:      id,
	}, nil
}

// NewID returns a fresh entity identifier.
func NewID() string {
	return uuid.New().String()
}

// FieldError is returned by constructors when a required field is missing
// or invalid.
type FieldError struct {
	Entity EntityType
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s is required", e.Entity, e.Field)
	}
	return fmt.Sprintf("%s: %s %s", e.Entity, e.Field, e.Reason)
}

func required(entity EntityType, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Entity: entity, Field: field}
	}
	return nil
}
