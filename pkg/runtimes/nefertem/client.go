package nefertem

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Request is one nefertem run submitted to a Client.
type Request struct {
	RunID       string           `json:"run_id"`
	OutputPath  string           `json:"output_path"`
	Store       Store            `json:"store"`
	Resources   []Resource       `json:"resources"`
	RunConfig   RunConfig        `json:"run_config"`
	Constraints []map[string]any `json:"constraints,omitempty"`
	ErrorReport string           `json:"error_report,omitempty"`
	Metrics     []map[string]any `json:"metrics,omitempty"`
}

// RunInfo is the outcome of a nefertem run.
type RunInfo struct {
	RunID       string   `json:"run_id"`
	Started     string   `json:"started"`
	Finished    string   `json:"finished"`
	OutputFiles []string `json:"output_files"`
}

// Client executes nefertem runs.
type Client interface {
	Run(ctx context.Context, req Request) (RunInfo, error)
}

// ExecClient runs an external command that reads the Request as JSON on
// stdin and writes the RunInfo as JSON on stdout.
type ExecClient struct {
	command []string
	logger  *slog.Logger
}

// DefaultCommand is used when no command is configured.
var DefaultCommand = []string{"python", "-m", "nefertem_runner"}

// NewExecClient creates a client for command. If logger is nil, a discard
// logger is used.
func NewExecClient(command []string, logger *slog.Logger) *ExecClient {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecClient{command: command, logger: logger}
}

// Run implements Client.
func (c *ExecClient) Run(ctx context.Context, req Request) (RunInfo, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return RunInfo{}, fmt.Errorf("failed to encode nefertem request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...) //nolint:gosec // command comes from configuration
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Info("executing nefertem run",
		slog.String("run_id", req.RunID),
		slog.String("operation", string(req.RunConfig.Operation)))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return RunInfo{}, fmt.Errorf("nefertem run failed with exit status %d: %s", exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return RunInfo{}, fmt.Errorf("nefertem run failed: %w", err)
	}
	if stderr.Len() > 0 {
		c.logger.Debug("nefertem stderr", slog.String("output", stderr.String()))
	}

	var info RunInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return RunInfo{}, fmt.Errorf("failed to parse nefertem run info: %w", err)
	}
	if info.RunID == "" {
		info.RunID = req.RunID
	}
	return info, nil
}
