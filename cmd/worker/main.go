package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Victoradukwu/FlightsHub/internal/activities"
	"github.com/Victoradukwu/FlightsHub/internal/ai"
	"github.com/Victoradukwu/FlightsHub/internal/cache"
	"github.com/Victoradukwu/FlightsHub/internal/config"
	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/logging"
	"github.com/Victoradukwu/FlightsHub/internal/notify"
	"github.com/Victoradukwu/FlightsHub/internal/service"
	"github.com/Victoradukwu/FlightsHub/internal/workflows"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to an optional .env file")
	sweepOnce := flag.Bool("sweep-once", false, "run one reservation sweep and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *sweepOnce, log); err != nil {
		log.WithError(err).Fatal("Worker failed")
	}
}

func run(cfg *config.Config, sweepOnce bool, log *logrus.Logger) error {
	ctx := context.Background()

	// Connect to database
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("Connected to database")

	notifier := notify.Notifier(notify.LogNotifier{Log: log})
	if cfg.Broker.URL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Queue, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifier = publisher
	}

	// The worker never searches; the mock provider satisfies the service.
	deps := service.Deps{
		Store:       database.NewRepository(pool),
		Provider:    ai.Mock{},
		Notifier:    notifier,
		Log:         log,
		UnpaidAfter: cfg.Jobs.UnpaidAfter,
	}

	// Seats freed by the sweep are pushed to the API server's subscribers.
	rdb, err := cache.Connect(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.WithError(err).Warn("Redis unavailable, seat changes are not pushed")
	case rdb != nil:
		defer rdb.Close()
		deps.Broadcaster = cache.NewSeatPublisher(rdb, log)
	default:
		log.Warn("REDIS_ADDR not set, seat changes are not pushed")
	}

	svc := service.New(deps)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.Host,
		Namespace: cfg.Temporal.Namespace,
		Logger:    logging.NewTemporalLogger(log),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Temporal: %w", err)
	}
	defer c.Close()
	log.WithField("host", cfg.Temporal.Host).Info("Connected to Temporal")

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(workflows.TicketingWorkflow)
	w.RegisterWorkflow(workflows.ReservationSweepWorkflow)

	// Create and register activities
	acts := activities.NewActivities(svc)
	w.RegisterActivityWithOptions(acts.ProcessPayment, activity.RegisterOptions{Name: activities.ProcessPaymentName})
	w.RegisterActivityWithOptions(acts.SendPaymentReminders, activity.RegisterOptions{Name: activities.SendPaymentRemindersName})
	w.RegisterActivityWithOptions(acts.CancelUnpaidReservations, activity.RegisterOptions{Name: activities.CancelUnpaidReservationsName})

	if sweepOnce {
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to start worker: %w", err)
		}
		defer w.Stop()
		result, err := workflows.RunSweepOnce(ctx, c, cfg.Temporal.TaskQueue)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"reminded": result.Reminded, "cancelled": result.Cancelled}).Info("Reservation sweep finished")
		return nil
	}

	if err := workflows.StartSweep(ctx, c, cfg.Temporal.TaskQueue, cfg.Jobs.SweepSchedule, log); err != nil {
		return err
	}

	log.WithField("task_queue", cfg.Temporal.TaskQueue).Info("Starting Temporal worker...")
	if err := w.Run(worker.InterruptCh()); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}
