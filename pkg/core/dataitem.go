package core

import (
	"fmt"
	"time"
)

// DataItem kinds.
const (
	DataItemKindDataItem = "dataitem"
	DataItemKindTable    = "table"
)

// SchemaField describes one column of a dataset.
type SchemaField struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Schema is the schema document of a dataset. Field order matches the
// column order of the source.
type Schema struct {
	Fields []SchemaField `json:"schema" yaml:"schema"`
}

// PreviewColumn holds the sampled values of one column.
type PreviewColumn struct {
	Name  string `json:"name"`
	Value []any  `json:"value"`
}

// DataItemSpec is the specification of a dataitem.
type DataItemSpec struct {
	Path         string  `json:"path"`
	Schema       *Schema `json:"schema,omitempty"`
	RawCode      string  `json:"raw_code,omitempty"`
	CompiledCode string  `json:"compiled_code,omitempty"`
}

// DataItemStatus is the status of a dataitem.
type DataItemStatus struct {
	Status
	Preview []PreviewColumn `json:"preview,omitempty"`
}

// DataItem is a versioned catalog record describing a dataset and its lineage.
type DataItem struct {
	ID       string         `json:"id"`
	Project  string         `json:"project"`
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Metadata Metadata       `json:"metadata"`
	Spec     DataItemSpec   `json:"spec"`
	Status   DataItemStatus `json:"status"`
}

// DataItemConfig holds the fields needed to build a DataItem.
type DataItemConfig struct {
	Project      string
	Name         string
	Kind         string
	ID           string // version identifier; generated when empty
	Path         string
	Schema       *Schema
	RawCode      Source
	CompiledCode Source
	Description  string
	Labels       []string
}

// NewDataItem builds a dataitem from cfg.
func NewDataItem(cfg DataItemConfig) (*DataItem, error) {
	if err := required(EntityDataItem, "project", cfg.Project); err != nil {
		return nil, err
	}
	if err := required(EntityDataItem, "name", cfg.Name); err != nil {
		return nil, err
	}
	if err := required(EntityDataItem, "path", cfg.Path); err != nil {
		return nil, err
	}
	kind := cfg.Kind
	if kind == "" {
		kind = DataItemKindDataItem
	}
	if kind != DataItemKindDataItem && kind != DataItemKindTable {
		return nil, &FieldError{Entity: EntityDataItem, Field: "kind", Reason: fmt.Sprintf("%q is not supported", kind)}
	}
	id := cfg.ID
	if id == "" {
		id = NewID()
	}

	spec := DataItemSpec{Path: cfg.Path, Schema: cfg.Schema}
	if !cfg.RawCode.IsZero() {
		spec.RawCode = cfg.RawCode.EncodedText()
	}
	if !cfg.CompiledCode.IsZero() {
		spec.CompiledCode = cfg.CompiledCode.EncodedText()
	}

	now := time.Now().UTC()
	return &DataItem{
		ID:      id,
		Project: cfg.Project,
		Name:    cfg.Name,
		Kind:    kind,
		Metadata: Metadata{
			Project:     cfg.Project,
			Name:        cfg.Name,
			Version:     id,
			Description: cfg.Description,
			Labels:      cfg.Labels,
			Created:     now,
			Updated:     now,
		},
		Spec:   spec,
		Status: DataItemStatus{Status: Status{State: StateCreated}},
	}, nil
}

// Key returns the entity key of the dataitem.
func (d *DataItem) Key() Key {
	return Key{Project: d.Project, Type: EntityDataItem, Kind: d.Kind, Name: d.Name, ID: d.ID}
}

// Info returns the reference descriptor of the dataitem.
func (d *DataItem) Info() EntityInfo {
	return EntityInfo{Key: d.Key().String(), ID: d.ID, Name: d.Name, Kind: d.Kind}
}
