package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/mark-schultz-wu/envelope-buddy/internal/apperrors"
	"github.com/spf13/viper"
)

// Database driver names accepted in DATABASE_DRIVER.
const (
	DriverPgsql  = "pgsql"
	DriverSqlite = "sqlite"
)

// Config holds application configuration.
type Config struct {
	DatabaseDriver string // pgsql or sqlite
	DatabaseURL    string // Postgres connection string when pgsql
	SqlitePath     string // Database file path when sqlite
	Port           string
	IsProduction   bool

	// Optional AMQP notification sink; disabled when URL is empty.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Envelope seeding, applied at startup when a seed file is configured.
	SeedFile  string
	SeedUsers []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("DATABASE_DRIVER", DriverPgsql)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("SQLITE_PATH", "data/envelope_buddy.db")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "envelope_buddy")
	viper.SetDefault("AMQP_QUEUE", "monthly_updates")
	viper.SetDefault("SEED_FILE", "")
	viper.SetDefault("SEED_USERS", "")

	viper.AutomaticEnv()

	cfg := &Config{
		DatabaseDriver: viper.GetString("DATABASE_DRIVER"),
		DatabaseURL:    viper.GetString("PGSQL_URL"),
		SqlitePath:     viper.GetString("SQLITE_PATH"),
		Port:           viper.GetString("PORT"),
		IsProduction:   viper.GetBool("IS_PRODUCTION"),
		AMQPURL:        viper.GetString("AMQP_URL"),
		AMQPExchange:   viper.GetString("AMQP_EXCHANGE"),
		AMQPQueue:      viper.GetString("AMQP_QUEUE"),
		SeedFile:       viper.GetString("SEED_FILE"),
	}

	if users := viper.GetString("SEED_USERS"); users != "" {
		cfg.SeedUsers = splitAndTrim(users)
	}

	switch cfg.DatabaseDriver {
	case DriverPgsql:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("%w: PGSQL_URL must be set when DATABASE_DRIVER is pgsql", apperrors.ErrConfig)
		}
	case DriverSqlite:
		if cfg.SqlitePath == "" {
			return nil, fmt.Errorf("%w: SQLITE_PATH must be set when DATABASE_DRIVER is sqlite", apperrors.ErrConfig)
		}
	default:
		return nil, fmt.Errorf("%w: unknown DATABASE_DRIVER %q", apperrors.ErrConfig, cfg.DatabaseDriver)
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	return cfg, nil
}
