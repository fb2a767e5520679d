package service

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"postview/app/config"
	plog "postview/app/log"

	"github.com/spf13/cobra"
)

// Version is set at build time
var Version = "dev"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "postview",
		Short:         "Blog page with posts, details and comments backed by GraphQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	rootCmd.AddCommand(
		newServeCommand(&configPath),
		newVersionCommand(),
		newStoreCommand(&configPath),
	)

	return rootCmd
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "postview version %s\n", Version)
		},
	}
}

func newServeCommand(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog page service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.NewLoader(*configPath)
			cfg, err := loader.Load()
			if err != nil {
				return err
			}

			logger := plog.New()
			cleanup, err := logger.Init(cfg.Logger)
			if err != nil {
				return err
			}
			defer cleanup()
			entry := logger.WithVersion(Version)

			if cfg.Viper.ConfigFileUsed() != "" {
				loader.Watch(func(c *config.Config) {
					if err := logger.SetLevelName(c.Logger.Level); err != nil {
						entry.WithError(err).Warn("ignoring reloaded log level")
						return
					}
					entry.WithField("level", c.Logger.Level).Info("configuration reloaded")
				}, func(err error) {
					entry.WithError(err).Warn("configuration reload failed")
				})
			}

			app, err := NewApp(cfg, entry)
			if err != nil {
				return err
			}
			defer app.Close()

			if addr == "" {
				addr = cfg.Server.Addr()
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app.Warm(ctx)
			return app.Serve(ctx, ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.host and server.port")

	return cmd
}
