package dbt

import "github.com/digitalhub-labs/digitalhub/pkg/core"

// BuildStatus assembles the completed run status for a materialized output.
func BuildStatus(item *core.DataItem, result ExecutionResult) core.RunStatus {
	status := core.RunStatus{
		State:   core.StateCompleted,
		Outputs: core.Outputs{DataItems: []core.EntityInfo{item.Info()}},
	}
	if node, ok := result.Last(); ok {
		status.Results = node.Document()
	}
	return status
}
