package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Desarso/agentstudio/api"
)

type serveCommander struct {
	root   *rootCommander
	listen string
}

func newServeCmd(root *rootCommander) *cobra.Command {
	cmder := &serveCommander{root: root}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the studio HTTP and websocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides server.listen_addr)")
	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	app, log, err := c.root.openApp(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer app.Close(context.Background())

	addr := app.Config.Server.ListenAddr
	if c.listen != "" {
		addr = c.listen
	}
	log.Info("studio starting",
		zap.String("listen", addr),
		zap.Strings("clients", app.Registry.Names()),
		zap.Strings("tools", app.Tools.Names()),
		zap.Bool("debug", app.Config.Debug),
	)

	server := api.NewServer(api.Options{
		Delegate: app.Delegate,
		Tools:    app.Agent,
		Messages: app.Store,
		Traces:   app.Traces,
		Logger:   log.Named("api"),
		Debug:    app.Config.Debug,
	})
	return server.Run(ctx, addr)
}
