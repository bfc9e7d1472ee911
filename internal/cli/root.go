// Package cli implements the gesturereplay command line: replaying gesture
// scripts headlessly against a scene and validating them.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/phanxgames/gesture/internal/config"
	"github.com/phanxgames/gesture/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the replay tool.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gesturereplay",
		Short: "Replay gesture arena scripts",
		Long: `Replay JSON gesture scripts against a headless scene and check the
expected arbitration outcomes: winners, handler states, scroll offsets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default ./gesture.{yaml,toml,json})")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// setup loads the configuration and attaches a logger to the command context.
func (o *RootOptions) setup(cmd *cobra.Command) (context.Context, *config.Manager, error) {
	m := config.NewManager(o.ConfigFile)
	if err := m.Load(); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cfg := m.Get()

	lc := logging.DefaultConfig()
	lc.Level = logging.ParseLevel(cfg.Logging.Level)
	lc.Format = cfg.Logging.Format
	lc.Output = cmd.ErrOrStderr()
	if o.Verbose {
		lc.Level = zerolog.DebugLevel
	}
	log := logging.New(lc)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithComponent(logging.WithContext(ctx, log), "gesturereplay")
	if f := m.File(); f != "" {
		log.Debug().Str("file", f).Msg("config loaded")
	}
	return ctx, m, nil
}
