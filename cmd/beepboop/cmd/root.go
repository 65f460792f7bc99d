// Package cmd implements the beepboop command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/comalice/beepboop/internal/config"
	"github.com/comalice/beepboop/internal/logger"
	"github.com/comalice/beepboop/internal/version"
)

// RootOptions holds the global flags and the configuration they resolve to.
type RootOptions struct {
	ConfigPath string
	LogLevel   string

	cfg config.Config
}

// NewRootCommand creates the beepboop command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "beepboop",
		Short: "Run, inspect and serve beepboop machines",
		Long: `beepboop runs the bundled example machines.

demo replays a scripted session and prints the transition trace, dot exports a
compiled machine as Graphviz, JSON or YAML, and serve hosts a machine over HTTP with
live updates pushed through server-sent events.`,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error), overrides the configuration")

	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewDotCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(version.Command())

	return cmd
}

func (o *RootOptions) load() error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	o.cfg = cfg
	logger.SetLogger(cfg.Logger())
	return nil
}

// Execute runs the CLI and exits with a non-zero status on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
