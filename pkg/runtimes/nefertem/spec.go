package nefertem

import (
	"fmt"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/go-viper/mapstructure/v2"
)

// Kind is the function kind handled by this runtime.
const Kind = "nefertem"

// Error report modes accepted by validation runs.
const (
	ErrorReportPartial = "partial"
	ErrorReportFull    = "full"
	ErrorReportCount   = "count"
)

// FunctionSpec is the spec of a nefertem function.
type FunctionSpec struct {
	Constraints []map[string]any `mapstructure:"constraints"`
	ErrorReport string           `mapstructure:"error_report"`
	Metrics     []map[string]any `mapstructure:"metrics"`
}

// TaskSpec is the spec of a nefertem task.
type TaskSpec struct {
	Framework string         `mapstructure:"framework"`
	ExecArgs  map[string]any `mapstructure:"exec_args"`
	Parallel  bool           `mapstructure:"parallel"`
	NumWorker int            `mapstructure:"num_worker"`
}

// NewTaskSpec builds the task spec document. Framework is required.
func NewTaskSpec(ts TaskSpec) (map[string]any, error) {
	if ts.Framework == "" {
		return nil, &core.FieldError{Entity: core.EntityTask, Field: "spec.framework"}
	}
	if ts.NumWorker < 0 {
		return nil, &core.FieldError{Entity: core.EntityTask, Field: "spec.num_worker", Reason: "must not be negative"}
	}
	spec := map[string]any{
		"framework":  ts.Framework,
		"parallel":   ts.Parallel,
		"num_worker": ts.NumWorker,
	}
	if ts.NumWorker == 0 {
		spec["num_worker"] = 1
	}
	if ts.ExecArgs != nil {
		spec["exec_args"] = ts.ExecArgs
	}
	return spec, nil
}

// IO lists the dataitem names of run inputs.
type IO struct {
	DataItems []string `mapstructure:"dataitems"`
}

// RunSpec is the merged function, task and run spec of a nefertem run.
type RunSpec struct {
	FunctionSpec `mapstructure:",squash"`
	TaskSpec     `mapstructure:",squash"`

	Inputs IO     `mapstructure:"inputs"`
	Task   string `mapstructure:"task"`
	TaskID string `mapstructure:"task_id"`
}

// DecodeRunSpec decodes a merged spec document and applies defaults.
func DecodeRunSpec(spec map[string]any) (RunSpec, error) {
	var rs RunSpec
	if err := mapstructure.Decode(spec, &rs); err != nil {
		return RunSpec{}, fmt.Errorf("invalid nefertem run spec: %w", err)
	}
	if rs.Framework == "" {
		return RunSpec{}, fmt.Errorf("invalid nefertem run spec: framework is required")
	}
	if rs.NumWorker == 0 {
		rs.NumWorker = 1
	}
	if rs.ExecArgs == nil {
		rs.ExecArgs = map[string]any{}
	}
	return rs, nil
}
