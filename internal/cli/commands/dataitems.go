package commands

import (
	"fmt"
	"strings"

	"github.com/digitalhub-labs/digitalhub/internal/cli/output"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/spf13/cobra"
)

// NewDataItemsCommand creates the dataitems command group.
func NewDataItemsCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:     "dataitems",
		Aliases: []string{"dataitem", "di"},
		Short:   "Inspect dataitems recorded in the catalog",
	}
	cmd.PersistentFlags().StringVarP(&project, "project", "p", "", "Project name")
	_ = cmd.MarkPersistentFlagRequired("project")

	cmd.AddCommand(newDataItemsListCommand(&project))
	cmd.AddCommand(newDataItemsGetCommand(&project))
	cmd.AddCommand(newDataItemsDeleteCommand(&project))
	return cmd
}

func newDataItemsListCommand(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the dataitems of a project",
		Example: `  # List dataitems, newest first
  dhub dataitems list -p demo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			items, err := cmdCtx.Catalog.ListDataItems(cmd.Context(), *project)
			if err != nil {
				return fmt.Errorf("failed to list dataitems: %w", err)
			}
			return renderDataItems(cmdCtx.Renderer, items)
		},
	}
}

func newDataItemsGetCommand(project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name|key>",
		Short: "Show a dataitem with its schema and preview",
		Example: `  # Latest version by name
  dhub dataitems get customers -p demo

  # A specific version by key
  dhub dataitems get store://demo/dataitems/dataitem/customers:3f2a -p demo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			var item *core.DataItem
			if strings.HasPrefix(args[0], core.KeyScheme) {
				item, err = cmdCtx.Catalog.GetDataItemByKey(cmd.Context(), args[0])
			} else {
				item, err = cmdCtx.Catalog.GetDataItem(cmd.Context(), *project, args[0])
			}
			if err != nil {
				return err
			}
			return renderDataItem(cmdCtx.Renderer, item)
		},
	}
}

func newDataItemsDeleteCommand(project *string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete one version of a dataitem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cmdCtx.Catalog.DeleteDataItem(cmd.Context(), *project, args[0], id); err != nil {
				return err
			}
			cmdCtx.Renderer.Success(fmt.Sprintf("deleted dataitem %s:%s", args[0], id))
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Version to delete")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func renderDataItems(r *output.Renderer, items []*core.DataItem) error {
	if r.EffectiveMode() == output.ModeJSON {
		if items == nil {
			items = []*core.DataItem{}
		}
		return r.JSON(items)
	}
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{item.Name, item.Kind, item.ID, item.Spec.Path, r.Styles().State(string(item.Status.State)), formatTime(item.Metadata.Updated)})
	}
	r.Table([]string{"name", "kind", "id", "path", "state", "updated"}, rows)
	return nil
}

func renderDataItem(r *output.Renderer, item *core.DataItem) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(item)
	}

	r.Header(1, item.Name)
	r.KeyValues([][2]string{
		{"Key", item.Key().String()},
		{"Kind", item.Kind},
		{"Path", item.Spec.Path},
		{"State", r.Styles().State(string(item.Status.State))},
		{"Labels", joinOrDash(item.Metadata.Labels)},
		{"Created", formatTime(item.Metadata.Created)},
	})

	if item.Spec.Schema != nil && len(item.Spec.Schema.Fields) > 0 {
		rows := make([][]any, 0, len(item.Spec.Schema.Fields))
		for _, f := range item.Spec.Schema.Fields {
			rows = append(rows, []any{f.Name, f.Type})
		}
		r.Println("")
		r.Header(2, "Schema")
		r.Table([]string{"field", "type"}, rows)
	}

	if len(item.Status.Preview) > 0 {
		r.Println("")
		r.Header(2, "Preview")
		header, rows := previewRows(item.Status.Preview)
		r.Table(header, rows)
	}
	return nil
}

// previewRows turns the column-wise preview back into table rows.
func previewRows(cols []core.PreviewColumn) ([]string, [][]any) {
	header := make([]string, len(cols))
	n := 0
	for i, c := range cols {
		header[i] = c.Name
		n = max(n, len(c.Value))
	}
	rows := make([][]any, n)
	for i := range rows {
		row := make([]any, len(cols))
		for j, c := range cols {
			if i < len(c.Value) {
				row[j] = c.Value[i]
			}
		}
		rows[i] = row
	}
	return header, rows
}
