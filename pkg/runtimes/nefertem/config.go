package nefertem

import (
	"fmt"

	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
)

// Operation is the nefertem operation behind a task action.
type Operation string

// Operation constants.
const (
	OperationInference  Operation = "inference"
	OperationProfiling  Operation = "profiling"
	OperationValidation Operation = "validation"
	OperationMetric     Operation = "metric"
)

var operations = map[runtime.Action]Operation{
	runtime.ActionInfer:    OperationInference,
	runtime.ActionProfile:  OperationProfiling,
	runtime.ActionValidate: OperationValidation,
	runtime.ActionMetric:   OperationMetric,
}

// Actions lists the task actions supported by the runtime.
var Actions = []runtime.Action{
	runtime.ActionInfer,
	runtime.ActionProfile,
	runtime.ActionValidate,
	runtime.ActionMetric,
}

// OperationFor returns the operation of an action.
func OperationFor(a runtime.Action) (Operation, error) {
	if op, ok := operations[a]; ok {
		return op, nil
	}
	return "", fmt.Errorf("action %s has no nefertem operation", a)
}

// ExecConfig selects the validation framework.
type ExecConfig struct {
	Framework string         `json:"framework"`
	ExecArgs  map[string]any `json:"exec_args"`
}

// RunConfig is the nefertem run configuration.
type RunConfig struct {
	Operation  Operation    `json:"operation"`
	ExecConfig []ExecConfig `json:"exec_config"`
	Parallel   bool         `json:"parallel"`
	NumWorker  int          `json:"num_worker"`
}

// BuildRunConfig builds the run configuration of an action.
func BuildRunConfig(a runtime.Action, spec RunSpec) (RunConfig, error) {
	op, err := OperationFor(a)
	if err != nil {
		return RunConfig{}, err
	}
	return RunConfig{
		Operation:  op,
		ExecConfig: []ExecConfig{{Framework: spec.Framework, ExecArgs: spec.ExecArgs}},
		Parallel:   spec.Parallel,
		NumWorker:  spec.NumWorker,
	}, nil
}

// Store is a data store known to nefertem.
type Store struct {
	Name string `json:"name"`
	Type string `json:"store_type"`
}

// LocalStore is the store of files materialized by the runtime.
var LocalStore = Store{Name: "local", Type: "local"}

// Resource is a dataset submitted to nefertem.
type Resource struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Store string `json:"store"`
}

// LocalInput is an input dataitem written to a local file.
type LocalInput struct {
	Name string
	Path string
}

// BuildResources maps local inputs to resources of store.
func BuildResources(inputs []LocalInput, store Store) ([]Resource, error) {
	resources := make([]Resource, 0, len(inputs))
	for _, in := range inputs {
		if in.Path == "" {
			return nil, fmt.Errorf("dataitem %s has no path", in.Name)
		}
		resources = append(resources, Resource{Name: in.Name, Path: in.Path, Store: store.Name})
	}
	return resources, nil
}
