// Package runtime defines the contract between the platform and the
// runtimes that execute functions, plus the registry that resolves a
// function kind to its runtime.
//
// Runtime implementations live in pkg/runtimes/ subdirectories and register
// themselves from init():
//
//	import _ "github.com/digitalhub-labs/digitalhub/pkg/runtimes/dbt"
package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
)

// Runtime executes runs of a single function kind.
type Runtime interface {
	// Build merges the function, task and run specs into the run spec.
	// Later documents override earlier ones.
	Build(function, task, run map[string]any) map[string]any

	// Run executes the run and returns its final status.
	Run(ctx context.Context, run *core.Run) (core.RunStatus, error)
}

// MergeSpecs merges spec documents left to right.
func MergeSpecs(specs ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, s := range specs {
		for k, v := range s {
			merged[k] = v
		}
	}
	return merged
}

// TaskRef is a parsed task reference:
//
//	{function-kind}+{action}://{function-name}:{function-id}
type TaskRef struct {
	FunctionKind string
	Action       Action
	FunctionName string
	FunctionID   string
}

// ParseTask parses a task reference string.
func ParseTask(s string) (TaskRef, error) {
	head, tail, ok := strings.Cut(s, "://")
	if !ok {
		return TaskRef{}, fmt.Errorf("malformed task %q: missing ://", s)
	}
	kind, actionName, ok := strings.Cut(head, "+")
	if !ok || kind == "" || actionName == "" {
		return TaskRef{}, fmt.Errorf("malformed task %q: expected kind+action", s)
	}
	action, err := ParseAction(actionName)
	if err != nil {
		return TaskRef{}, fmt.Errorf("malformed task %q: %w", s, err)
	}
	name, id, _ := strings.Cut(tail, ":")
	if name == "" {
		return TaskRef{}, fmt.Errorf("malformed task %q: missing function name", s)
	}
	return TaskRef{FunctionKind: kind, Action: action, FunctionName: name, FunctionID: id}, nil
}

// ActionOf returns the action of a run, checking it against allowed.
func ActionOf(run *core.Run, allowed ...Action) (Action, error) {
	ref, err := ParseTask(run.TaskString())
	if err != nil {
		return ActionUnknown, err
	}
	for _, a := range allowed {
		if a == ref.Action {
			return a, nil
		}
	}
	return ActionUnknown, &ActionNotAllowedError{Kind: ref.FunctionKind, Action: ref.Action, Allowed: allowed}
}

// ActionNotAllowedError is returned when a runtime receives a task action it
// does not implement.
type ActionNotAllowedError struct {
	Kind    string
	Action  Action
	Allowed []Action
}

func (e *ActionNotAllowedError) Error() string {
	names := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		names[i] = a.String()
	}
	return fmt.Sprintf("task %s not allowed for %s runtime (allowed: %s)", e.Action, e.Kind, strings.Join(names, ", "))
}
