package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"remindme-server/logger"
	"remindme-server/middleware"
	"remindme-server/services"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Fire due reminders",
	RunE:  runWorker,
}

func runWorker(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	dbService, err := services.NewDBService(cfg.DSN())
	if err != nil {
		return err
	}
	defer dbService.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := newReminderRunner(ctx, dbService)
	if err != nil {
		return err
	}

	log.Info().
		Str("messenger", cfg.MessengerType).
		Str("directory", cfg.DirectoryURL).
		Msg("reminder worker started")
	runner.Start(ctx)

	<-ctx.Done()
	runner.Stop()
	log.Info().Msg("reminder worker stopped")
	return nil
}

// newReminderRunner wires the fire-time side of reminders onto the job table.
func newReminderRunner(ctx context.Context, source services.DueJobSource) (*services.ScheduleRunner, error) {
	client := middleware.NewHTTPClient(cfg.DirectoryTimeout, cfg.XRayEnabled)

	messenger, err := newMessenger(ctx, client)
	if err != nil {
		return nil, err
	}

	job := services.NewReminderJob(services.NewDirectoryClient(cfg.DirectoryURL, client), messenger)

	runner := services.NewScheduleRunner(source, cfg.RunnerInterval, cfg.RunnerBatchSize)
	runner.Register(services.ReminderJobName, job.Handle)
	return runner, nil
}

func newMessenger(ctx context.Context, client *http.Client) (services.Messenger, error) {
	switch cfg.MessengerType {
	case "webhook":
		return services.NewWebhookMessenger(cfg.WebhookURL, client), nil
	case "mailbox":
		storage, err := services.NewStorageService(ctx, cfg.StorageType, cfg.StoragePath, cfg.XRayEnabled)
		if err != nil {
			return nil, err
		}
		logger.Get().Info().Str("storage", cfg.StorageType).Str("path", cfg.StoragePath).Msg("mailbox storage initialized")
		return services.NewMailboxMessenger(storage), nil
	default:
		return nil, errors.Errorf("unknown messenger type: %s", cfg.MessengerType)
	}
}
