package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"
	"gorm.io/gorm"

	"tokoadmin/internal/app"
	"tokoadmin/internal/cache"
	"tokoadmin/internal/config"
	"tokoadmin/internal/database"
	"tokoadmin/internal/handlers"
	"tokoadmin/internal/repositories"
	"tokoadmin/pkg/rabbitmq"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "tokoadmin",
		Short:         "Product catalog back office",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return err
			}
			setupLogging(cfg)
			return nil
		},
	}

	// cfg is filled in by PersistentPreRunE before any RunE executes
	loadConfig := func() *config.Config { return cfg }

	root.AddCommand(
		newServeCommand(loadConfig),
		newMigrateCommand(loadConfig),
		newSeedCommand(loadConfig),
		newExportCommand(loadConfig),
		newEventsCommand(loadConfig),
	)
	return root
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogFormat == config.LogFormatConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	// log.Ctx falls back to the global logger outside HTTP requests
	zerolog.DefaultContextLogger = &log.Logger
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.Database())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

func newServeCommand(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP admin API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close(db)

			opts := app.Options{DB: db, Checks: map[string]handlers.Pinger{}}

			if cfg.RabbitMQURL != "" {
				mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
				if err != nil {
					return err
				}
				defer mqClient.Close()
				opts.Publisher = mqClient
			} else {
				log.Warn().Msg("RABBITMQ_URL not set, catalog events are disabled")
			}

			if cfg.RedisAddr != "" {
				reportCache, err := cache.Connect(ctx, cache.Config{RedisAddr: cfg.RedisAddr, Prefix: "reports:", TTL: cfg.ReportCacheTTL})
				if err != nil {
					return err
				}
				defer reportCache.Close()
				opts.Cache = reportCache
				opts.Checks["redis"] = reportCache.Ping
				opts.Stats = map[string]handlers.StatsReporter{
					"report_cache": func() interface{} { return reportCache.Stats() },
				}
			} else {
				log.Info().Msg("REDIS_ADDR not set, reports are computed on every request")
			}

			application := app.NewApp(opts)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.AppPort).Msg("starting server")
				errCh <- application.Fiber.Listen(cfg.AppPort)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
			}

			log.Info().Msg("shutting down server")
			if err := application.Fiber.ShutdownWithTimeout(10 * time.Second); err != nil {
				log.Error().Err(err).Msg("error during shutdown")
			}
			log.Info().Msg("server gracefully stopped")
			return nil
		},
	}
}

func newMigrateCommand(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the catalog tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(loadConfig())
			if err != nil {
				return err
			}
			defer database.Close(db)
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func newSeedCommand(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a demo catalog into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(loadConfig())
			if err != nil {
				return err
			}
			defer database.Close(db)
			return app.NewApp(app.Options{DB: db}).Seed(cmd.Context())
		},
	}
}

func newExportCommand(loadConfig func() *config.Config) *cobra.Command {
	var (
		out     string
		trashed bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog and its reports to an XLSX workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(loadConfig())
			if err != nil {
				return err
			}
			defer database.Close(db)

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()

			q := repositories.ListQuery{Sort: repositories.Sort{Column: "name"}}
			if trashed {
				q.Trashed = repositories.ScopeWithTrashed
			}
			if err := app.NewApp(app.Options{DB: db}).Exporter.Write(cmd.Context(), f, q); err != nil {
				return err
			}
			log.Info().Str("file", out).Msg("catalog exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "products.xlsx", "path of the workbook to write")
	cmd.Flags().BoolVar(&trashed, "with-trashed", false, "include trashed products")
	return cmd
}

func newEventsCommand(loadConfig func() *config.Config) *cobra.Command {
	var (
		queue   string
		binding string
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print catalog events published to RabbitMQ",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			if cfg.RabbitMQURL == "" {
				return fmt.Errorf("RABBITMQ_URL is not set")
			}
			mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.RabbitMQExchange})
			if err != nil {
				return err
			}
			defer mqClient.Close()

			err = mqClient.Consume(queue, binding, func(msg amqp.Delivery) error {
				log.Info().Str("routing_key", msg.RoutingKey).RawJSON("body", msg.Body).Msg("catalog event")
				return nil
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVar(&queue, "queue", "tokoadmin.events", "queue to bind to the exchange")
	cmd.Flags().StringVar(&binding, "binding", "#", "routing key pattern")
	return cmd
}
