package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"remindme-server/handlers"
	"remindme-server/logger"
	"remindme-server/services"

	_ "remindme-server/docs"
)

var serveRunner bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveRunner, "with-runner", false, "also fire due reminders from this process")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	// Initialize services
	dbService, err := services.NewDBService(cfg.DSN())
	if err != nil {
		return err
	}
	defer dbService.Close()

	if err := dbService.InitSchema(cmd.Context()); err != nil {
		return err
	}
	log.Info().Msg("database schema initialized")

	redisService := services.NewRedisService(cfg.RedisAddr(), cfg.RedisDB)
	defer redisService.Close()

	reminderService := services.NewReminderService(
		services.NewTimeParser(),
		services.NewHandoffStore(redisService, cfg.HandoffTTL),
		services.NewReminderScheduler(dbService),
	)

	// Initialize handlers
	reminderHandler := handlers.NewReminderHandler(reminderService, dbService)

	app := handlers.NewApp(reminderHandler, handlers.AppOptions{
		AccessLog: true,
		XRay:      cfg.XRayEnabled,
		Checks: map[string]handlers.Pinger{
			"postgres": dbService,
			"redis":    redisService,
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveRunner {
		runner, err := newReminderRunner(ctx, dbService)
		if err != nil {
			return err
		}
		runner.Start(ctx)
		defer runner.Stop()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.ServerPort).
		Str("db", cfg.DBHost).
		Str("redis", cfg.RedisAddr()).
		Msg("RemindMe server starting")
	return app.Listen(":" + cfg.ServerPort)
}
