package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagConfig  string
	flagDebug   bool
	flagModules []string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "omw",
		Short:         "typed function wrapper for array and link hosts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "configuration file (default "+defaultConfigFile+" if present)")
	cmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringArrayVar(&flagModules, "module", nil, "wasm guest module to load (repeatable)")
	cmd.AddCommand(newReplCmd(), newServeCmd(), newCallCmd())
	return cmd
}

// setup loads the configuration and builds the logger subcommands
// share. Interactive front ends pass quiet to keep the prompt clean
// unless debugging.
func setup(quiet bool) (*Config, *zap.Logger, error) {
	cfg, err := loadConfig(flagConfig, flagModules, flagDebug)
	if err != nil {
		return nil, nil, err
	}

	var log *zap.Logger
	switch {
	case cfg.Debug:
		log, err = zap.NewDevelopment()
	case quiet:
		log = zap.NewNop()
	default:
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
