// Package cmd holds the command line interface.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/config"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfgFile  string
	logLevel string
	level    *slog.LevelVar
	cfg      *config.Config
}

// NewRootCmd builds the command tree. level, when not nil, is set from the
// configured log level before any command runs.
func NewRootCmd(level *slog.LevelVar) *cobra.Command {
	a := &app{level: level}

	root := &cobra.Command{
		Use:           "salesanalytics",
		Short:         "Analyze a pipe-delimited sales file and write an enriched report",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", config.DefaultConfigFile, "path to the YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(newAnalyzeCmd(a), newGenerateCmd(a), newVersionCmd())

	return root
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	logger := appcontext.LoggerFromContext(ctx)

	cfg, err := config.LoadConfig(ctx, logger, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.level != nil {
		a.level.Set(config.ParseLogLevel(cfg.LogLevel))
	}
	a.cfg = cfg

	return nil
}
