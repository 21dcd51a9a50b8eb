package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Desarso/agentstudio"
	"github.com/Desarso/agentstudio/logger"
)

const rootLongDesc string = `studio inspects and runs the configured chat clients and tools.

Clients, stores and tool properties are read from a YAML file
(--config, default studio.yaml when present). API keys come from
the environment or a .env file.`

type rootCommander struct {
	configPath string
	debug      bool
}

func NewRootCmd() *cobra.Command {
	cmder := &rootCommander{}

	cmd := &cobra.Command{
		Use:          "studio",
		Short:        "Chat client studio",
		Long:         rootLongDesc,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&cmder.configPath, "config", "c", "", "Path to the YAML config file")
	cmd.PersistentFlags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newServeCmd(cmder),
		newClientsCmd(cmder),
		newToolsCmd(cmder),
	)
	return cmd
}

func (r *rootCommander) loadConfig() (*agentstudio.Config, error) {
	path := r.configPath
	if path == "" {
		if _, err := os.Stat("studio.yaml"); err != nil {
			cfg := agentstudio.DefaultConfig()
			return cfg.WithDebug(r.debug || cfg.Debug), nil
		}
		path = "studio.yaml"
	}
	cfg, err := agentstudio.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg.WithDebug(r.debug || cfg.Debug), nil
}

// openApp loads the config and builds the app. The caller closes it.
func (r *rootCommander) openApp(ctx context.Context) (*agentstudio.App, *zap.Logger, error) {
	cfg, err := r.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(cfg.Debug)

	app, err := agentstudio.NewApp(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return app, log, nil
}
