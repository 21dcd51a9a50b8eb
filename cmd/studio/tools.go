package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Desarso/agentstudio/common_tools"
)

func newToolsCmd(root *rootCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Use the configured tools",
	}
	cmd.AddCommand(newToolsSearchCmd(root))
	return cmd
}

type searchCommander struct {
	root     *rootCommander
	pageSize int
	tags     bool
}

func newToolsSearchCmd(root *rootCommander) *cobra.Command {
	cmder := &searchCommander{root: root}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search images and tags on Docker Hub",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().IntVarP(&cmder.pageSize, "page-size", "n", 10, "Number of images")
	cmd.Flags().BoolVarP(&cmder.tags, "tags", "t", false, "Include recent tags")
	return cmd
}

func (c *searchCommander) run(ctx context.Context, out io.Writer, query string) error {
	app, log, err := c.root.openApp(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer app.Close(context.Background())

	raw, err := app.Agent.ExecuteTool(ctx, common_tools.DockerhubToolName, map[string]any{
		"query":        query,
		"page_size":    c.pageSize,
		"include_tags": c.tags,
	})
	if err != nil {
		return err
	}
	text, err := common_tools.NewJsonParseTool().FieldValue([]byte(raw), "result")
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, text)
	return err
}
