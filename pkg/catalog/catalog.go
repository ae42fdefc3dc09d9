// Package catalog defines the persistence contract for versioned entities.
//
// The runtimes only depend on this interface; pkg/catalog/sqlite provides
// the local backend used by the CLI.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
)

// ErrNotFound is returned when no entity matches a lookup.
var ErrNotFound = errors.New("entity not found")

// Catalog persists dataitems, artifacts and runs.
//
// Saving an entity with an existing (project, name, id) replaces that
// version; a new id adds a new version.
type Catalog interface {
	SaveDataItem(ctx context.Context, item *core.DataItem) (*core.DataItem, error)
	// GetDataItem returns the latest version of the named dataitem.
	GetDataItem(ctx context.Context, project, name string) (*core.DataItem, error)
	GetDataItemByKey(ctx context.Context, key string) (*core.DataItem, error)
	ListDataItems(ctx context.Context, project string) ([]*core.DataItem, error)
	DeleteDataItem(ctx context.Context, project, name, id string) error

	SaveArtifact(ctx context.Context, artifact *core.Artifact) (*core.Artifact, error)
	ListArtifacts(ctx context.Context, project string) ([]*core.Artifact, error)

	SaveRun(ctx context.Context, run *core.Run) error
	GetRun(ctx context.Context, project, id string) (*core.Run, error)

	Close() error
}

// NotFoundError describes a failed lookup. It matches ErrNotFound.
type NotFoundError struct {
	Type core.EntityType
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Type, e.Ref)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
