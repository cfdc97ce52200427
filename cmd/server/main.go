package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Victoradukwu/FlightsHub/internal/ai"
	"github.com/Victoradukwu/FlightsHub/internal/auth"
	"github.com/Victoradukwu/FlightsHub/internal/cache"
	"github.com/Victoradukwu/FlightsHub/internal/config"
	"github.com/Victoradukwu/FlightsHub/internal/database"
	"github.com/Victoradukwu/FlightsHub/internal/handlers"
	"github.com/Victoradukwu/FlightsHub/internal/logging"
	"github.com/Victoradukwu/FlightsHub/internal/notify"
	"github.com/Victoradukwu/FlightsHub/internal/router"
	"github.com/Victoradukwu/FlightsHub/internal/service"
	"github.com/Victoradukwu/FlightsHub/internal/websocket"
	"github.com/Victoradukwu/FlightsHub/internal/workflows"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"go.temporal.io/sdk/client"
)

func main() {
	envFile := flag.String("env-file", ".env", "path to an optional .env file")
	addr := flag.String("addr", "", "listen address, overrides API_PORT")
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
	if *addr == "" {
		*addr = fmt.Sprintf(":%d", cfg.Server.Port)
	}

	if err := run(cfg, *addr, log); err != nil {
		log.WithError(err).Fatal("Server failed")
	}
}

func run(cfg *config.Config, addr string, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStore()

	provider, err := ai.New(ctx, cfg.AI, log)
	if err != nil {
		return err
	}

	deps := service.Deps{
		Store:             store,
		Provider:          provider,
		Tokens:            auth.NewTokens(cfg.Security),
		Log:               log,
		BcryptCost:        cfg.Security.BcryptCost,
		UnpaidAfter:       cfg.Jobs.UnpaidAfter,
		LiveSearchTimeout: cfg.AI.Timeout + cfg.AI.Timeout/2,
	}

	rdb, err := cache.Connect(ctx, cfg.Redis)
	switch {
	case err != nil:
		log.WithError(err).Warn("Redis unavailable, external search cache and worker seat updates disabled")
	case rdb != nil:
		defer rdb.Close()
		deps.Cache = cache.NewSearchCache(rdb, cfg.Redis.CacheTTL)
		log.WithField("addr", cfg.Redis.Addr).Info("External search cache enabled")
	}

	if cfg.Broker.URL != "" {
		publisher, err := notify.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Queue, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		deps.Notifier = publisher
	} else {
		log.Warn("RABBITMQ_URL not set, emails are only logged")
		deps.Notifier = notify.LogNotifier{Log: log}
	}

	hub := websocket.NewHub(log)
	deps.Broadcaster = hub

	// Seats changed by the worker's sweep arrive over Redis.
	if rdb != nil {
		closeSeats, err := cache.SubscribeSeats(ctx, rdb, hub, log)
		if err != nil {
			return err
		}
		defer closeSeats()
	}

	svc := service.New(deps)

	if cfg.Server.TicketingMode == "inline" {
		svc.SetScheduler(service.NewAsyncScheduler(svc, 0))
		log.Info("Ticketing runs in-process")
	} else {
		temporalClient, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.Host,
			Namespace: cfg.Temporal.Namespace,
			Logger:    logging.NewTemporalLogger(log),
		})
		if err != nil {
			return fmt.Errorf("failed to create Temporal client: %w", err)
		}
		defer temporalClient.Close()
		svc.SetScheduler(workflows.NewTemporalScheduler(temporalClient, cfg.Temporal.TaskQueue, log))
		log.WithField("host", cfg.Temporal.Host).Info("Connected to Temporal")
	}

	h := handlers.NewHandler(svc, log)
	r := router.SetupRouter(h, auth.NewMiddleware(deps.Tokens, store, log), hub, log)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	svc.Wait()

	log.Info("Server exited")
	return nil
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, log logrus.FieldLogger) (database.Store, func(), error) {
	if cfg.Driver == "memory" {
		log.Warn("Using in-memory store, data is lost on restart")
		return database.NewMemoryStore(), func() {}, nil
	}

	pool, err := database.Connect(ctx, cfg.URL)
	if err != nil {
		return nil, nil, err
	}
	repo := database.NewRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("Connected to database")
	return repo, pool.Close, nil
}
