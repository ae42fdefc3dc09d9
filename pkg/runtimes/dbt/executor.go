package dbt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Executor runs a generated dbt project and reports the node results.
type Executor interface {
	Execute(ctx context.Context, dir, output string) (ExecutionResult, error)
}

// CommandRunner runs a command in dir and returns its combined output.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// CLIExecutor drives the dbt command line.
type CLIExecutor struct {
	binary string
	run    CommandRunner
	logger *slog.Logger
}

// NewCLIExecutor creates an executor for the dbt binary. An empty binary
// means "dbt" on PATH. If logger is nil, a discard logger is used.
func NewCLIExecutor(binary string, logger *slog.Logger) *CLIExecutor {
	if binary == "" {
		binary = "dbt"
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CLIExecutor{binary: binary, run: runCommand, logger: logger}
}

// WithRunner replaces the command runner.
func (e *CLIExecutor) WithRunner(run CommandRunner) *CLIExecutor {
	e.run = run
	return e
}

// Execute runs "dbt clean" and "dbt run --select output" in dir, then loads
// the results dbt wrote under target/.
func (e *CLIExecutor) Execute(ctx context.Context, dir, output string) (ExecutionResult, error) {
	common := []string{"--project-dir", dir, "--profiles-dir", dir}

	if out, err := e.run(ctx, dir, e.binary, append([]string{"clean"}, common...)...); err != nil {
		return ExecutionResult{}, fmt.Errorf("dbt clean failed: %w\n%s", err, out)
	}

	e.logger.Info("running dbt", slog.String("select", output))
	out, runErr := e.run(ctx, dir, e.binary, append([]string{"run", "--select", output}, common...)...)
	e.logger.Debug("dbt output", slog.String("output", string(out)))

	// dbt exits non-zero on model failures but still writes its results,
	// which carry the failing status.
	result, err := LoadResults(dir)
	if err != nil {
		if runErr != nil {
			return ExecutionResult{}, fmt.Errorf("dbt run failed: %w\n%s", runErr, out)
		}
		return ExecutionResult{}, err
	}
	return result, nil
}

type runResultsFile struct {
	Results     []NodeResult `json:"results"`
	ElapsedTime float64      `json:"elapsed_time"`
}

type manifestFile struct {
	Nodes map[string]Node `json:"nodes"`
}

// LoadResults reads target/run_results.json and completes each result with
// the node details of target/manifest.json.
func LoadResults(dir string) (ExecutionResult, error) {
	target := filepath.Join(dir, "target")

	var rr runResultsFile
	if err := readJSON(filepath.Join(target, "run_results.json"), &rr); err != nil {
		return ExecutionResult{}, err
	}
	var manifest manifestFile
	if err := readJSON(filepath.Join(target, "manifest.json"), &manifest); err != nil {
		return ExecutionResult{}, err
	}

	for i := range rr.Results {
		res := &rr.Results[i]
		node, ok := manifest.Nodes[res.UniqueID]
		if !ok {
			continue
		}
		// run_results carries the compiled code and relation of the run itself.
		if res.Node.CompiledCode != "" {
			node.CompiledCode = res.Node.CompiledCode
		}
		if res.Node.RelationName != "" {
			node.RelationName = res.Node.RelationName
		}
		res.Node = node
	}
	return ExecutionResult{Results: rr.Results, ElapsedTime: rr.ElapsedTime}, nil
}

// UnmarshalJSON accepts both the nested node document and the flat
// run_results.json layout, where compiled_code and relation_name sit on
// the result itself.
func (n *NodeResult) UnmarshalJSON(data []byte) error {
	type plain NodeResult
	var flat struct {
		plain
		CompiledCode string `json:"compiled_code"`
		RelationName string `json:"relation_name"`
	}
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*n = NodeResult(flat.plain)
	if n.Node.CompiledCode == "" {
		n.Node.CompiledCode = flat.CompiledCode
	}
	if n.Node.RelationName == "" {
		n.Node.RelationName = flat.RelationName
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the run directory
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func runCommand(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // binary comes from configuration
	cmd.Dir = dir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return buf.Bytes(), fmt.Errorf("exit status %d", exitErr.ExitCode())
	}
	return buf.Bytes(), err
}
