// Package dbt implements the runtime for "dbt" functions: it turns a SQL
// transformation into a dbt project, runs it against the Postgres target and
// records the produced table as a versioned dataitem.
//
// Import this package with a blank identifier to register the runtime:
//
//	import _ "github.com/digitalhub-labs/digitalhub/pkg/runtimes/dbt"
package dbt

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
)

func init() {
	runtime.Register(Kind, func(deps runtime.Deps) (runtime.Runtime, error) {
		return New(deps)
	})
}

// Runtime executes dbt transform runs.
type Runtime struct {
	catalog   catalog.Catalog
	connector postgres.Connector
	executor  Executor
	inputs    *inputCollector
	workDir   string
	newID     func() string
	target    postgres.Config
	logger    *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithExecutor replaces the dbt executor.
func WithExecutor(e Executor) Option {
	return func(r *Runtime) { r.executor = e }
}

// WithConnector replaces the Postgres connector.
func WithConnector(c postgres.Connector) Option {
	return func(r *Runtime) { r.connector = c }
}

// WithIDGenerator replaces the generator of output versions.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runtime) { r.newID = fn }
}

// New creates a dbt runtime.
func New(deps runtime.Deps, opts ...Option) (*Runtime, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("dbt runtime requires a catalog")
	}
	logger := deps.LoggerOrDiscard().With(slog.String("runtime", Kind))

	binary := ""
	if cmd := deps.Commands[Kind]; len(cmd) > 0 {
		binary = cmd[0]
	}
	workDir := deps.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}

	r := &Runtime{
		catalog:   deps.Catalog,
		connector: postgres.NewConnector(deps.Postgres, logger),
		executor:  NewCLIExecutor(binary, logger),
		inputs:    &inputCollector{catalog: deps.Catalog, store: deps.Storage, logger: logger},
		workDir:   workDir,
		newID:     core.NewID,
		target:    deps.Postgres,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Build merges the function, task and run specs.
func (r *Runtime) Build(function, task, run map[string]any) map[string]any {
	return runtime.MergeSpecs(function, task, run)
}

// Run executes a transform run. On failure the returned status is the
// error status and err is non-nil.
func (r *Runtime) Run(ctx context.Context, run *core.Run) (core.RunStatus, error) {
	if _, err := runtime.ActionOf(run, runtime.ActionTransform); err != nil {
		return core.FailedStatus(err), err
	}
	status, err := r.transform(ctx, run)
	if err != nil {
		r.logger.Error("run failed", slog.String("run", run.ID), slog.String("error", err.Error()))
		return core.FailedStatus(err), err
	}
	return status, nil
}

func (r *Runtime) transform(ctx context.Context, run *core.Run) (status core.RunStatus, err error) {
	r.logger.Info("starting task", slog.String("run", run.ID))
	spec, err := DecodeRunSpec(run.Spec)
	if err != nil {
		return status, err
	}
	output, err := SelectSingleOutput(spec.Outputs.DataItems)
	if err != nil {
		return status, err
	}
	query, err := spec.Query()
	if err != nil {
		return status, err
	}

	dir, err := os.MkdirTemp(r.workDir, "dbt_run_")
	if err != nil {
		return status, fmt.Errorf("failed to create working directory: %w", err)
	}

	var inputs materialized
	defer func() { r.cleanup(ctx, dir, inputs.tables) }()

	if len(spec.Inputs.DataItems) > 0 {
		inputs, err = r.collectInputs(ctx, run.Project, spec.Inputs.DataItems, dir)
		if err != nil {
			return status, err
		}
	}

	version := r.newID()
	r.logger.Info("setting up dbt project", slog.String("output", output), slog.String("version", version))
	if err := WriteProject(dir, ProjectSpec{
		Project: run.Project,
		Output:  output,
		Version: version,
		SQL:     query,
		Inputs:  inputs.models,
		Target:  r.target,
	}); err != nil {
		return status, err
	}

	result, err := r.executor.Execute(ctx, dir, output)
	if err != nil {
		return status, err
	}

	r.logger.Info("parsing results")
	node, err := Validate(result, output, run.Project)
	if err != nil {
		return status, err
	}
	parsed, err := Extract(node)
	if err != nil {
		return status, err
	}

	r.logger.Info("creating output dataitem")
	fetcher := NewSampleFetcher(r.connector, r.logger)
	item, err := NewMaterializer(fetcher, r.catalog, r.logger).Materialize(ctx, parsed, run.Project, version)
	if err != nil {
		return status, err
	}

	status = BuildStatus(item, result)
	if status.Results == nil {
		status.Results = map[string]any{}
	}
	status.Results["timings"] = parsed.Timings.Document()
	r.logger.Info("task completed", slog.String("dataitem", item.Key().String()))
	return status, nil
}

func (r *Runtime) collectInputs(ctx context.Context, project string, names []string, dir string) (materialized, error) {
	adp, err := r.connector.Connect(ctx)
	if err != nil {
		return materialized{}, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer func() { _ = adp.Close() }()
	return r.inputs.collect(ctx, adp, project, names, dir)
}

// cleanup drops materialized input tables and removes the working directory.
func (r *Runtime) cleanup(ctx context.Context, dir string, tables []string) {
	if len(tables) > 0 {
		adp, err := r.connector.Connect(ctx)
		if err != nil {
			r.logger.Warn("failed to connect for cleanup", slog.String("error", err.Error()))
		} else {
			if err := adp.DropTables(ctx, tables...); err != nil {
				r.logger.Warn("failed to drop input tables", slog.String("error", err.Error()))
			}
			_ = adp.Close()
		}
	}
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn("failed to remove working directory", slog.String("dir", dir), slog.String("error", err.Error()))
	}
}

// Results resolves the output dataitems referenced by a run status.
func (r *Runtime) Results(ctx context.Context, status core.RunStatus) ([]*core.DataItem, error) {
	items := make([]*core.DataItem, 0, len(status.Outputs.DataItems))
	for _, info := range status.Outputs.DataItems {
		item, err := r.catalog.GetDataItemByKey(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
