package main

import (
	"fmt"

	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/andgen/jobsystem/internal/config"
	"github.com/andgen/jobsystem/internal/logger"
)

const envPrefix = "JOBSYSTEM"

// app carries the state shared by the subcommands once the root pre-run has
// loaded the configuration.
type app struct {
	v          *viper.Viper
	cfg        *config.Configuration
	restoreLog func()
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "jobsystem",
		Short:        "Fixed-size worker pool with job dependencies",
		SilenceUsage: true,
		PersistentPreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE(envPrefix),
			a.load,
		),
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.restoreLog != nil {
				a.restoreLog()
			}
		},
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newRunCommand(a),
		newServeCommand(a),
		newVersionCommand(),
	)

	return root
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg

	restore, err := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.restoreLog = restore

	zap.S().Named("cmd").Debugw("configuration loaded", cfg.Fields()...)

	return nil
}
