package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	portsrepo "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/repositories"
	portssvc "github.com/mark-schultz-wu/envelope-buddy/internal/core/ports/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/core/services"
	"github.com/mark-schultz-wu/envelope-buddy/internal/handlers"
	"github.com/mark-schultz-wu/envelope-buddy/internal/middleware"
	"github.com/mark-schultz-wu/envelope-buddy/internal/notify"
	"github.com/mark-schultz-wu/envelope-buddy/internal/platform/config"
	"github.com/mark-schultz-wu/envelope-buddy/internal/repositories/database/pgsql"
	"github.com/mark-schultz-wu/envelope-buddy/internal/repositories/database/sqlite"
	"github.com/mark-schultz-wu/envelope-buddy/pkg/database"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos, cleanup, err := openRepositories(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect notification sink", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if cerr := notifier.Close(); cerr != nil {
			logger.Error("Error closing notifier", slog.String("error", cerr.Error()))
		}
	}()

	serviceContainer := services.NewServiceContainer(repos, notifier)

	if cfg.SeedFile != "" {
		if err := seedEnvelopes(cfg, serviceContainer, logger); err != nil {
			logger.Error("Failed to seed envelopes", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("driver", cfg.DatabaseDriver))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openRepositories builds the repository provider for the configured driver
// and returns a cleanup function to close the underlying connections.
func openRepositories(cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	switch cfg.DatabaseDriver {
	case config.DriverSqlite:
		db, err := sqlite.Open(cfg.SqlitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("SQLite database ready", slog.String("path", cfg.SqlitePath))
		cleanup := func() {
			if cerr := db.Close(); cerr != nil {
				logger.Error("Error closing database", slog.String("error", cerr.Error()))
			}
		}
		return sqlite.NewRepositoryProvider(db), cleanup, nil

	default: // pgsql, validated during config load
		dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			return portsrepo.RepositoryProvider{}, nil, err
		}
		logger.Info("Database connection pool established.")

		if err := runPostgresMigrations(cfg.DatabaseURL, logger); err != nil {
			dbPool.Close()
			return portsrepo.RepositoryProvider{}, nil, err
		}

		return pgsql.NewRepositoryProvider(dbPool), dbPool.Close, nil
	}
}

// runPostgresMigrations applies the migrations in ./migrations over a
// temporary database/sql connection compatible with the main pool.
func runPostgresMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// buildNotifier connects the AMQP sink when one is configured, otherwise
// falls back to the no-op notifier.
func buildNotifier(cfg *config.Config, logger *slog.Logger) (notify.Notifier, error) {
	if cfg.AMQPURL == "" {
		return notify.NoopNotifier{}, nil
	}

	notifier, err := notify.NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, err
	}
	logger.Info("AMQP notifier connected", slog.String("exchange", cfg.AMQPExchange), slog.String("queue", cfg.AMQPQueue))
	return notifier, nil
}

// seedEnvelopes applies the configured seed file with create-or-reenable
// semantics, so restarts are safe.
func seedEnvelopes(cfg *config.Config, sc *portssvc.ServiceContainer, logger *slog.Logger) error {
	seeds, err := config.LoadEnvelopeSeeds(cfg.SeedFile)
	if err != nil {
		return err
	}

	applied, err := sc.Envelope.SeedFromConfig(context.Background(), seeds, cfg.SeedUsers)
	if err != nil {
		return err
	}

	logger.Info("Envelope seeding complete",
		slog.String("seed_file", cfg.SeedFile),
		slog.Int("created_or_revived", applied))
	return nil
}
