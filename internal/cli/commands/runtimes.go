package commands

import (
	"github.com/digitalhub-labs/digitalhub/internal/cli/output"
	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
	"github.com/spf13/cobra"
)

// NewRuntimesCommand creates the runtimes command.
func NewRuntimesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "runtimes",
		Short: "List the function kinds this binary can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := NewCommandContextWithoutCatalog(cmd).Renderer
			kinds := runtime.List()
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(kinds)
			}
			rows := make([][]any, 0, len(kinds))
			for _, k := range kinds {
				rows = append(rows, []any{k})
			}
			r.Table([]string{"kind"}, rows)
			return nil
		},
	}
}
