package commands

import (
	"fmt"
	"os"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/runtimes/dbt"
	"github.com/digitalhub-labs/digitalhub/pkg/runtimes/nefertem"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// RunFile is the document read by "dhub run -f".
//
//	project: demo
//	function:
//	  name: customers
//	  kind: dbt
//	  sql: SELECT * FROM {{ ref('raw') }}
//	task:
//	  action: transform
//	run:
//	  inputs:
//	    dataitems: [raw]
//	  outputs:
//	    dataitems: [customers]
type RunFile struct {
	Project  string         `yaml:"project"`
	Function FunctionFile   `yaml:"function"`
	Task     TaskFile       `yaml:"task"`
	Run      map[string]any `yaml:"run"`
}

// FunctionFile describes the function of a run file.
type FunctionFile struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	// SQL is the dbt query, plain text unless SQLEncoding is "base64".
	SQL         string         `yaml:"sql"`
	SQLEncoding string         `yaml:"sql_encoding"`
	Spec        map[string]any `yaml:"spec"`
}

// TaskFile describes the task of a run file.
type TaskFile struct {
	Action string         `yaml:"action"`
	Spec   map[string]any `yaml:"spec"`
}

// LoadRunFile reads and parses a run file.
func LoadRunFile(path string) (*RunFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	var rf RunFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("failed to parse run file %s: %w", path, err)
	}
	if rf.Project == "" {
		return nil, fmt.Errorf("run file %s: project is required", path)
	}
	if rf.Task.Action == "" {
		return nil, fmt.Errorf("run file %s: task.action is required", path)
	}
	return &rf, nil
}

// functionSpec builds the function spec document for the function kind.
func (f FunctionFile) functionSpec() (map[string]any, error) {
	spec := map[string]any{}
	for k, v := range f.Spec {
		spec[k] = v
	}
	if f.Kind != dbt.Kind {
		return spec, nil
	}

	src, err := core.ParseSource(f.SQL, f.SQLEncoding)
	if err != nil {
		return nil, err
	}
	sqlSpec, err := dbt.NewFunctionSpec(src)
	if err != nil {
		return nil, err
	}
	for k, v := range sqlSpec {
		spec[k] = v
	}
	return spec, nil
}

// taskSpec builds the task spec document for the function kind.
func (t TaskFile) taskSpec(kind string) (map[string]any, error) {
	if kind != nefertem.Kind {
		return t.Spec, nil
	}
	var ts nefertem.TaskSpec
	if err := mapstructure.Decode(t.Spec, &ts); err != nil {
		return nil, fmt.Errorf("invalid nefertem task spec: %w", err)
	}
	return nefertem.NewTaskSpec(ts)
}

// entities builds the function and task described by the run file.
func (rf *RunFile) entities() (*core.Function, *core.Task, error) {
	fnSpec, err := rf.Function.functionSpec()
	if err != nil {
		return nil, nil, err
	}
	fn, err := core.NewFunction(core.FunctionConfig{
		Project: rf.Project,
		Name:    rf.Function.Name,
		Kind:    rf.Function.Kind,
		Spec:    fnSpec,
	})
	if err != nil {
		return nil, nil, err
	}

	taskSpec, err := rf.Task.taskSpec(fn.Kind)
	if err != nil {
		return nil, nil, err
	}
	task, err := core.NewTask(core.TaskConfig{
		Function: fn,
		Action:   rf.Task.Action,
		Spec:     taskSpec,
	})
	if err != nil {
		return nil, nil, err
	}
	return fn, task, nil
}
