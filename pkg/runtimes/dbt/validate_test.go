package dbt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func successNode(name, pkg string) NodeResult {
	return NodeResult{
		UniqueID: "model." + pkg + "." + name,
		Status:   StatusSuccess,
		Node:     Node{Name: name, PackageName: pkg},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  ExecutionResult
		output  string
		project string
		wantErr error
	}{
		{
			name:    "success with normalized project",
			result:  ExecutionResult{Results: []NodeResult{successNode("customers", "my_project")}},
			output:  "customers",
			project: "my-project",
		},
		{
			name:    "empty results",
			result:  ExecutionResult{},
			output:  "customers",
			project: "p",
			wantErr: ErrNotFound,
		},
		{
			name: "failed node",
			result: ExecutionResult{Results: []NodeResult{
				{Status: "error", Node: Node{Name: "customers", PackageName: "p"}},
			}},
			output:  "customers",
			project: "p",
			wantErr: ErrExecutionFailed,
		},
		{
			name: "failed node with wrong names still reports failure",
			result: ExecutionResult{Results: []NodeResult{
				{Status: "skipped", Node: Node{Name: "other", PackageName: "other"}},
			}},
			output:  "customers",
			project: "p",
			wantErr: ErrExecutionFailed,
		},
		{
			name:    "wrong project",
			result:  ExecutionResult{Results: []NodeResult{successNode("customers", "other_project")}},
			output:  "customers",
			project: "my-project",
			wantErr: ErrNameMismatch,
		},
		{
			name:    "wrong output",
			result:  ExecutionResult{Results: []NodeResult{successNode("orders", "p")}},
			output:  "customers",
			project: "p",
			wantErr: ErrNameMismatch,
		},
		{
			name: "only the last node is inspected",
			result: ExecutionResult{Results: []NodeResult{
				{Status: "error", Node: Node{Name: "stale"}},
				successNode("customers", "p"),
			}},
			output:  "customers",
			project: "p",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := Validate(tt.result, tt.output, tt.project)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.output, node.Node.Name)
		})
	}
}

func TestSelectSingleOutput(t *testing.T) {
	name, err := SelectSingleOutput([]string{"customers"})
	require.NoError(t, err)
	assert.Equal(t, "customers", name)

	for _, outputs := range [][]string{nil, {}, {"a", "b"}, {"a", "b", "c"}} {
		_, err := SelectSingleOutput(outputs)
		assert.ErrorIs(t, err, ErrInvalidOutputSpec)
	}
}

func TestError(t *testing.T) {
	err := newError(ErrFetch, "failed to query t", assert.AnError)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "failed to query t: "+assert.AnError.Error(), err.Error())

	assert.Equal(t, ErrNotFound.Error(), newError(ErrNotFound, "", nil).Error())
}
