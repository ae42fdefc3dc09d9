package dbt

import (
	"fmt"

	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/go-viper/mapstructure/v2"
)

// Entity kinds handled by this runtime.
const (
	Kind          = "dbt"
	TaskTransform = "transform"
)

// FunctionSpec is the spec of a dbt function. SQL is base64 encoded.
type FunctionSpec struct {
	SQL string `mapstructure:"sql"`
}

// NewFunctionSpec builds the function spec document for a query.
func NewFunctionSpec(sql core.Source) (map[string]any, error) {
	text, err := sql.Text()
	if err != nil {
		return nil, fmt.Errorf("invalid sql: %w", err)
	}
	if text == "" {
		return nil, &core.FieldError{Entity: core.EntityFunction, Field: "spec.sql"}
	}
	return map[string]any{"sql": sql.EncodedText()}, nil
}

// IO lists the dataitem names of run inputs or outputs.
type IO struct {
	DataItems []string `mapstructure:"dataitems"`
}

// RunSpec is the merged function, task and run spec of a dbt run.
type RunSpec struct {
	SQL     string `mapstructure:"sql"`
	Inputs  IO     `mapstructure:"inputs"`
	Outputs IO     `mapstructure:"outputs"`
	Task    string `mapstructure:"task"`
	TaskID  string `mapstructure:"task_id"`
}

// DecodeRunSpec decodes a merged spec document.
func DecodeRunSpec(spec map[string]any) (RunSpec, error) {
	var rs RunSpec
	if err := mapstructure.Decode(spec, &rs); err != nil {
		return RunSpec{}, fmt.Errorf("invalid dbt run spec: %w", err)
	}
	return rs, nil
}

// Query decodes the SQL of the run.
func (s RunSpec) Query() (string, error) {
	if s.SQL == "" {
		return "", fmt.Errorf("sql code is required")
	}
	src, err := core.ParseSource(s.SQL, "base64")
	if err != nil {
		return "", fmt.Errorf("sql code must be a valid base64 string: %w", err)
	}
	return src.Text()
}
