package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", &NotFoundError{Type: core.EntityDataItem, Ref: "p/customers"})

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "lookup: dataitems p/customers not found", err.Error())
}
