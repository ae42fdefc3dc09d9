package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/digitalhub-labs/digitalhub/internal/cli/output"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	File    string
	Project string
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a function run described in a run file",
		Long: `Build the function, task and run described in a YAML run file and
execute it with the runtime registered for the function kind.

The run and its outputs are recorded in the local catalog.`,
		Example: `  # Run a dbt transform
  dhub run -f transform.yaml

  # Run against another project
  dhub run -f validate.yaml --project staging

  # Print the final run document as JSON
  dhub run -f transform.yaml -o json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Path to the run file")
	cmd.Flags().StringVar(&opts.Project, "project", "", "Override the project of the run file")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runRun(cmd *cobra.Command, opts *RunOptions) error {
	rf, err := LoadRunFile(opts.File)
	if err != nil {
		return err
	}
	if opts.Project != "" {
		rf.Project = opts.Project
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	deps, err := cmdCtx.RuntimeDeps(rf.Function.Kind)
	if err != nil {
		return err
	}

	run, runErr := executeRun(cmd.Context(), cmdCtx.Catalog, deps, rf, cmdCtx.Logger)
	if run == nil {
		return runErr
	}

	if err := renderRun(cmdCtx.Renderer, run); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("run %s failed: %w", run.ID, runErr)
	}
	return nil
}

// executeRun builds the entities of rf, executes the run and records it.
// The returned run is nil only when the run could not be created.
func executeRun(ctx context.Context, cat catalog.Catalog, deps runtime.Deps, rf *RunFile, logger *slog.Logger) (*core.Run, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	fn, task, err := rf.entities()
	if err != nil {
		return nil, err
	}

	rt, err := runtime.New(fn.Kind, deps)
	if err != nil {
		return nil, err
	}

	run, err := core.NewRun(core.RunConfig{
		Task: task,
		Spec: rt.Build(fn.Spec, task.Spec, rf.Run),
	})
	if err != nil {
		return nil, err
	}

	run.Status.State = core.StateRunning
	if err := cat.SaveRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	logger.Info("run started",
		slog.String("run", run.ID),
		slog.String("task", run.TaskString()))

	status, runErr := rt.Run(ctx, run)
	if runErr != nil && status.State != core.StateError {
		status = core.FailedStatus(runErr)
	}
	run.Status = status
	if err := cat.SaveRun(ctx, run); err != nil {
		return run, fmt.Errorf("failed to record run status: %w", err)
	}

	logger.Info("run finished",
		slog.String("run", run.ID),
		slog.String("state", string(run.Status.State)))
	return run, runErr
}

func renderRun(r *output.Renderer, run *core.Run) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(run)
	}

	r.Header(1, fmt.Sprintf("Run %s", run.ID))
	pairs := [][2]string{
		{"Task", run.TaskString()},
		{"State", r.Styles().State(string(run.Status.State))},
	}
	if run.Status.Message != "" {
		pairs = append(pairs, [2]string{"Message", run.Status.Message})
	}
	r.KeyValues(pairs)

	outputs := make([][]any, 0, len(run.Status.Outputs.DataItems)+len(run.Status.Outputs.Artifacts))
	for _, info := range run.Status.Outputs.DataItems {
		outputs = append(outputs, []any{"dataitem", info.Name, info.ID, info.Key})
	}
	for _, info := range run.Status.Outputs.Artifacts {
		outputs = append(outputs, []any{"artifact", info.Name, info.ID, info.Key})
	}
	if len(outputs) > 0 {
		r.Println("")
		r.Header(2, "Outputs")
		r.Table([]string{"type", "name", "id", "key"}, outputs)
	}
	return nil
}

// formatTime renders a timestamp for tables.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

// joinOrDash joins values or returns "-" when empty.
func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	return strings.Join(values, ", ")
}
