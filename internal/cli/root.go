package cli

import (
	"github.com/spf13/cobra"

	"github.com/avdeev/apilab/internal/app"
)

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apilab",
		Short:         "apilab - an HTTP request workbench",
		Long:          "apilab composes, sends, and records HTTP requests, with saved collections and reusable environments.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Config file path (default ~/.apilab/config.yaml)")
	cmd.PersistentFlags().String("data-dir", "", "Override the data directory")
	cmd.PersistentFlags().String("backend", "", "Storage backend: filesystem or sqlite")

	cmd.AddCommand(
		NewSendCommand(),
		NewCollectionCommand(),
		NewEnvCommand(),
		NewHistoryCommand(),
		NewCurlCommand(),
		NewProgressCommand(),
	)

	return cmd
}

// loadApp builds the application from the config file plus any persistent
// flag overrides.
func loadApp(cmd *cobra.Command) (*app.App, error) {
	flags := cmd.Root().PersistentFlags()

	configPath, _ := flags.GetString("config")
	if configPath == "" {
		configPath = app.DefaultConfigPath()
	}
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir, _ := flags.GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if backend, _ := flags.GetString("backend"); backend != "" {
		cfg.Backend = backend
	}

	return app.New(cfg)
}
