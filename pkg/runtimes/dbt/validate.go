package dbt

import (
	"fmt"
	"strings"
)

// StatusSuccess is the node status of a successful model run.
const StatusSuccess = "success"

// Validate checks the terminal node of result against the expected output
// and project. Earlier nodes are not inspected.
func Validate(result ExecutionResult, output, project string) (NodeResult, error) {
	node, ok := result.Last()
	if !ok {
		return NodeResult{}, newError(ErrNotFound, "", nil)
	}
	if node.Status != StatusSuccess {
		return NodeResult{}, newError(ErrExecutionFailed, fmt.Sprintf("function execution failed: %s", node.Status), nil)
	}
	if got, want := normalizeName(node.Node.PackageName), normalizeName(project); got != want {
		return NodeResult{}, newError(ErrNameMismatch, fmt.Sprintf("wrong project name: got %s, expected %s", got, want), nil)
	}
	if node.Node.Name != output {
		return NodeResult{}, newError(ErrNameMismatch, fmt.Sprintf("wrong output name: got %s, expected %s", node.Node.Name, output), nil)
	}
	return node, nil
}

// normalizeName maps a project name to its dbt package name.
func normalizeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
