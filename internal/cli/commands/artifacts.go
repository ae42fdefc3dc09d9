package commands

import (
	"fmt"

	"github.com/digitalhub-labs/digitalhub/internal/cli/output"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/spf13/cobra"
)

// NewArtifactsCommand creates the artifacts command group.
func NewArtifactsCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:     "artifacts",
		Aliases: []string{"artifact"},
		Short:   "Inspect artifacts recorded in the catalog",
	}
	cmd.PersistentFlags().StringVarP(&project, "project", "p", "", "Project name")
	_ = cmd.MarkPersistentFlagRequired("project")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the artifacts of a project",
		Example: `  # List the reports produced by validation runs
  dhub artifacts list -p demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			artifacts, err := cmdCtx.Catalog.ListArtifacts(cmd.Context(), project)
			if err != nil {
				return fmt.Errorf("failed to list artifacts: %w", err)
			}
			return renderArtifacts(cmdCtx.Renderer, artifacts)
		},
	})
	return cmd
}

func renderArtifacts(r *output.Renderer, artifacts []*core.Artifact) error {
	if r.EffectiveMode() == output.ModeJSON {
		if artifacts == nil {
			artifacts = []*core.Artifact{}
		}
		return r.JSON(artifacts)
	}
	rows := make([][]any, 0, len(artifacts))
	for _, a := range artifacts {
		size, hash := "-", "-"
		if f := a.Status.File; f != nil {
			size = fmt.Sprintf("%d", f.Size)
			hash = f.Hash
		}
		rows = append(rows, []any{a.Name, a.ID, a.Spec.Path, size, hash})
	}
	r.Table([]string{"name", "id", "path", "size", "hash"}, rows)
	return nil
}
