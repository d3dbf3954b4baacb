package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yukikurage/project-task-api/internal/config"
	"github.com/yukikurage/project-task-api/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "project-task-api",
		Short:         "Project task management API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "optional config file (yaml, json, toml or env)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(setRoleCmd())
	rootCmd.AddCommand(classifyCmd())

	return rootCmd
}

// loadConfig layers an optional config file and any bound flags over the
// environment, then initializes logging.
func loadConfig(cmd *cobra.Command, bind func(v *viper.Viper) error) (*config.Config, error) {
	v := config.NewViper()

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if bind != nil {
		if err := bind(v); err != nil {
			return nil, err
		}
	}

	cfg := config.FromViper(v)
	if err := logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	return cfg, nil
}
