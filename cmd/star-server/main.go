package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/star-labs/star-platform/internal/app"
	"github.com/star-labs/star-platform/internal/app/events"
	"github.com/star-labs/star-platform/internal/app/httpapi"
	"github.com/star-labs/star-platform/internal/app/services/users"
	"github.com/star-labs/star-platform/internal/app/storage/memory"
	"github.com/star-labs/star-platform/internal/app/storage/postgres"
	"github.com/star-labs/star-platform/internal/chain"
	"github.com/star-labs/star-platform/internal/config"
	"github.com/star-labs/star-platform/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "star-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})

	stores, cleanup, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := app.Options{
		Economics: config.LoadEconomicsOrDefault(cfg.EconomicsPath),
		Referral:  users.Config{RejectSelfReferral: cfg.Referral.RejectSelf},
	}

	if cfg.Stellar.VerifyTx {
		client, err := chain.NewClient(chain.Config{
			HorizonURL: cfg.Stellar.HorizonURL,
			Timeout:    time.Duration(cfg.Stellar.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return fmt.Errorf("horizon client: %w", err)
		}
		opts.Verifier = client
		log.WithField("horizon", cfg.Stellar.HorizonURL).Info("transaction verification enabled")
	}

	if cfg.Redis.URL != "" {
		publisher, err := events.NewRedisPublisher(cfg.Redis.URL, cfg.Redis.Stream, log.WithComponent("events"))
		if err != nil {
			return fmt.Errorf("redis publisher: %w", err)
		}
		defer publisher.Close()
		opts.Events = publisher
		log.WithField("stream", cfg.Redis.Stream).Info("event stream enabled")
	}

	application := app.New(stores, opts, log)
	router := httpapi.NewRouter(application, cfg.Server, log.WithComponent("http"))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStores builds the storage backend selected by DB_DRIVER. The cleanup
// function closes whatever the backend holds open.
func openStores(cfg *config.Config, log *logger.Logger) (app.Stores, func(), error) {
	if cfg.Database.Driver == "memory" {
		log.Info("using in-memory storage")
		mem := memory.New()
		return app.Stores{Users: mem, Projects: mem, Participations: mem}, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return app.Stores{}, nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("ping postgres: %w", err)
	}

	store := postgres.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("ensure schema: %w", err)
	}

	log.Info("using postgres storage")
	return app.Stores{Users: store, Projects: store, Participations: store},
		func() { db.Close() }, nil
}
