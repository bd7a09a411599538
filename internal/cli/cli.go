// Package cli builds the command tree shared by the aircnc service binaries.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aircnc/aircnc-server/internal/config"
	"github.com/aircnc/aircnc-server/pkg/logger"
	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags "-X github.com/aircnc/aircnc-server/internal/cli.Version=v1.2.3".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// ServiceOptions describes one service binary.
type ServiceOptions struct {
	Name        string
	Description string

	// LoadConfig loads and validates the service configuration.
	LoadConfig func() (*config.Config, error)
	// Serve runs the HTTP server until ctx is cancelled.
	Serve func(ctx context.Context, cfg *config.Config) error
	// Check verifies the service can reach its dependencies. Optional.
	Check func(ctx context.Context, cfg *config.Config) error
}

// NewServiceCommand returns a root command that serves by default and carries
// version and healthcheck subcommands.
func NewServiceCommand(opts ServiceOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           opts.Name,
		Short:         opts.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	load := func() (*config.Config, error) {
		cfg, err := opts.LoadConfig()
		if err != nil {
			return nil, err
		}
		logger.Init(cfg.Log.Level, cfg.Log.Format)
		return cfg, nil
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion(cmd.OutOrStdout(), opts.Name)
		},
	})

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return opts.Serve(cmd.Context(), cfg)
		},
	}
	root.AddCommand(serve)
	root.RunE = serve.RunE

	if opts.Check != nil {
		root.AddCommand(&cobra.Command{
			Use:   "healthcheck",
			Short: "Check connectivity to MongoDB and Redis",
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				if err := opts.Check(cmd.Context(), cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			},
		})
	}
	return root
}

func printVersion(w io.Writer, service string) {
	fmt.Fprintf(w, "Service:    %s\n", service)
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Commit:     %s\n", Commit)
	fmt.Fprintf(w, "Build Time: %s\n", BuildTime)
}
