package cmd

import (
	"github.com/spf13/cobra"

	"remindme-server/logger"
	"remindme-server/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the reminder_jobs table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbService, err := services.NewDBService(cfg.DSN())
		if err != nil {
			return err
		}
		defer dbService.Close()

		if err := dbService.InitSchema(cmd.Context()); err != nil {
			return err
		}
		logger.Get().Info().Str("db", cfg.DBName).Msg("database schema initialized")
		return nil
	},
}
