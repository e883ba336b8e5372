// Package cmd holds the remindme-server command line.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"remindme-server/config"
	"remindme-server/logger"
)

var (
	configFile string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "remindme-server",
	Short: "Natural-language reminders attached to content",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = c

		logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Service: "remindme-" + cmd.Name(),
		})
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
