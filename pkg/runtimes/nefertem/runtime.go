// Package nefertem implements the runtime for "nefertem" functions: data
// quality inference, profiling, validation and metrics over input
// dataitems. Reports written by nefertem become artifacts.
//
// Import this package with a blank identifier to register the runtime:
//
//	import _ "github.com/digitalhub-labs/digitalhub/pkg/runtimes/nefertem"
package nefertem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
	"github.com/digitalhub-labs/digitalhub/pkg/storage"
)

func init() {
	runtime.Register(Kind, func(deps runtime.Deps) (runtime.Runtime, error) {
		return New(deps)
	})
}

// Runtime executes nefertem runs.
type Runtime struct {
	catalog catalog.Catalog
	store   storage.ObjectStore
	client  Client
	inputs  *inputWriter
	workDir string
	newID   func() string
	logger  *slog.Logger
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithClient replaces the nefertem client.
func WithClient(c Client) Option {
	return func(r *Runtime) { r.client = c }
}

// WithConnector replaces the Postgres connector used to read sql inputs.
func WithConnector(c postgres.Connector) Option {
	return func(r *Runtime) { r.inputs.connector = c }
}

// WithIDGenerator replaces the generator of nefertem run ids.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runtime) { r.newID = fn }
}

// New creates a nefertem runtime.
func New(deps runtime.Deps, opts ...Option) (*Runtime, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("nefertem runtime requires a catalog")
	}
	logger := deps.LoggerOrDiscard().With(slog.String("runtime", Kind))
	workDir := deps.WorkDir
	if workDir == "" {
		workDir = os.TempDir()
	}

	r := &Runtime{
		catalog: deps.Catalog,
		store:   deps.Storage,
		client:  NewExecClient(deps.Commands[Kind], logger),
		inputs: &inputWriter{
			catalog:   deps.Catalog,
			store:     deps.Storage,
			connector: postgres.NewConnector(deps.Postgres, logger),
			logger:    logger,
		},
		workDir: workDir,
		newID:   core.NewID,
		logger:  logger,
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

// Run executes an infer, profile, validate or metric run.
func (r *Runtime) Run(ctx context.Context, run *core.Run) (core.RunStatus, error) {
	action, err := runtime.ActionOf(run, Actions...)
	if err != nil {
		return core.FailedStatus(err), err
	}
	status, err := r.execute(ctx, action, run)
	if err != nil {
		r.logger.Error("run failed", slog.String("run", run.ID), slog.String("error", err.Error()))
		return core.FailedStatus(err), err
	}
	return status, nil
}

func (r *Runtime) execute(ctx context.Context, action runtime.Action, run *core.Run) (core.RunStatus, error) {
	r.logger.Info("starting task", slog.String("run", run.ID), slog.String("action", action.String()))
	spec, err := DecodeRunSpec(run.Spec)
	if err != nil {
		return core.RunStatus{}, err
	}
	req, err := buildRequest(action, spec)
	if err != nil {
		return core.RunStatus{}, err
	}

	outputDir, err := os.MkdirTemp(r.workDir, "nefertem_run_")
	if err != nil {
		return core.RunStatus{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	defer r.cleanup(outputDir)

	r.logger.Info("getting inputs and parameters")
	inputs, err := r.inputs.write(ctx, run.Project, spec.Inputs.DataItems, filepath.Join(outputDir, "tmp"))
	if err != nil {
		return core.RunStatus{}, err
	}
	req.Resources, err = BuildResources(inputs, LocalStore)
	if err != nil {
		return core.RunStatus{}, err
	}
	req.RunID = r.newID()
	req.OutputPath = outputDir
	req.Store = LocalStore

	info, err := r.client.Run(ctx, req)
	if err != nil {
		return core.RunStatus{}, err
	}

	r.logger.Info("creating artifacts", slog.Int("files", len(info.OutputFiles)))
	artifacts, err := r.saveArtifacts(ctx, run.Project, info)
	if err != nil {
		return core.RunStatus{}, err
	}

	status := core.RunStatus{
		State: core.StateCompleted,
		Results: map[string]any{
			"timings": map[string]any{
				"start_time": info.Started,
				"end_time":   info.Finished,
			},
		},
	}
	for _, a := range artifacts {
		status.Outputs.Artifacts = append(status.Outputs.Artifacts, a.Info())
	}
	r.logger.Info("task completed", slog.Int("artifacts", len(artifacts)))
	return status, nil
}

// buildRequest checks the function spec against the action and assembles
// the parts of the request that do not depend on inputs.
func buildRequest(action runtime.Action, spec RunSpec) (Request, error) {
	cfg, err := BuildRunConfig(action, spec)
	if err != nil {
		return Request{}, err
	}
	req := Request{RunConfig: cfg}
	switch action {
	case runtime.ActionValidate:
		if spec.Constraints == nil {
			return Request{}, errors.New("no constraints given")
		}
		req.Constraints = spec.Constraints
		req.ErrorReport = spec.ErrorReport
		if req.ErrorReport == "" {
			req.ErrorReport = ErrorReportPartial
		}
	case runtime.ActionMetric:
		if spec.Metrics == nil {
			return Request{}, errors.New("no metrics given")
		}
		req.Metrics = spec.Metrics
	}
	return req, nil
}

func (r *Runtime) saveArtifacts(ctx context.Context, project string, info RunInfo) ([]*core.Artifact, error) {
	if len(info.OutputFiles) == 0 {
		return nil, nil
	}
	if r.store == nil {
		return nil, errors.New("object storage is not configured: cannot upload nefertem reports")
	}
	uploads, err := uploadOutputs(ctx, r.store, project, info.RunID, info.OutputFiles, r.logger)
	if err != nil {
		return nil, fmt.Errorf("error uploading artifacts: %w", err)
	}

	artifacts := make([]*core.Artifact, 0, len(uploads))
	for _, u := range uploads {
		a, err := core.NewArtifact(core.ArtifactConfig{
			Project: project,
			Name:    ArtifactName(u.src),
			Path:    u.url,
			SrcPath: u.src,
			File:    u.info,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating artifact %s: %w", ArtifactName(u.src), err)
		}
		saved, err := r.catalog.SaveArtifact(ctx, a)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, saved)
	}
	return artifacts, nil
}

func (r *Runtime) cleanup(dir string) {
	r.logger.Info("removing output directory", slog.String("dir", dir))
	if err := os.RemoveAll(dir); err != nil {
		r.logger.Warn("failed to remove output directory", slog.String("dir", dir), slog.String("error", err.Error()))
	}
}
