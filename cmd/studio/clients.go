package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Desarso/agentstudio/common_tools"
	"github.com/Desarso/agentstudio/models"
)

func newClientsCmd(root *rootCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List and run chat clients",
	}
	cmd.AddCommand(newClientsListCmd(root), newClientsRunCmd(root))
	return cmd
}

func newClientsListCmd(root *rootCommander) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every registered chat client as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listClients(cmd.Context(), root, cmd.OutOrStdout())
		},
	}
}

func listClients(ctx context.Context, root *rootCommander, out io.Writer) error {
	app, log, err := root.openApp(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer app.Close(context.Background())

	clients, err := app.Delegate.List(ctx)
	if err != nil {
		return err
	}
	text, err := common_tools.NewIndentedJsonParseTool().ToJSON(clients)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

type runCommander struct {
	root  *rootCommander
	param models.ClientRunActionParam
}

func newClientsRunCmd(root *rootCommander) *cobra.Command {
	cmder := &runCommander{root: root}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one turn against a chat client",
		Example: `  studio clients run --key assistant --input "What is Go?"
  studio clients run --key assistant --input "And Rust?" --chat-id 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&cmder.param.Key, "key", "k", "", "Chat client name")
	cmd.Flags().StringVarP(&cmder.param.Input, "input", "i", "", "User input")
	cmd.Flags().StringVarP(&cmder.param.Prompt, "prompt", "p", "", "System prompt overriding the client default")
	cmd.Flags().StringVar(&cmder.param.ChatID, "chat-id", "", "Conversation to continue")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func (c *runCommander) run(ctx context.Context, out io.Writer) error {
	app, log, err := c.root.openApp(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer app.Close(context.Background())

	result, err := app.Delegate.Run(ctx, c.param)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n\nchat id:  %s\ntrace id: %s\n", result.Result.Response, result.ChatID, result.Telemetry.TraceID)
	return err
}
