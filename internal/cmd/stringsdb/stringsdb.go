// Package stringsdb parses strings service flags and launches the service.
package stringsdb

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/saulotoledo/strings-database/internal/platform/cmd"
	server "github.com/saulotoledo/strings-database/internal/services/strings/app"
)

// Config holds strings command configuration. Environment variables carry
// the STRINGSDB_ prefix.
type Config struct {
	Port            int    `env:"PORT" envDefault:"8080"`
	HealthPort      int    `env:"HEALTH_PORT" envDefault:"8081"`
	Store           string `env:"STORE" envDefault:"sqlite"`
	DBPath          string `env:"DB_PATH" envDefault:"data/strings.db"`
	PostgresURL     string `env:"POSTGRES_URL"`
	DefaultPageSize int    `env:"DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize     int    `env:"MAX_PAGE_SIZE" envDefault:"2000"`
	MaxConnections  int    `env:"MAX_CONNECTIONS" envDefault:"0"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The strings HTTP API port")
	fs.IntVar(&cfg.HealthPort, "health-port", cfg.HealthPort, "The gRPC health port (0 disables it)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "Storage backend: sqlite, postgres or memory")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.PostgresURL, "postgres-url", cfg.PostgresURL, "Postgres connection URL")
	fs.IntVar(&cfg.DefaultPageSize, "default-page-size", cfg.DefaultPageSize, "Page size when none is requested")
	fs.IntVar(&cfg.MaxPageSize, "max-page-size", cfg.MaxPageSize, "Largest page size served")
	fs.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "Concurrent HTTP connection cap (0 is unlimited)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ServerConfig converts command configuration to the server's.
func (c Config) ServerConfig() server.Config {
	cfg := server.Config{
		HTTPAddr:        fmt.Sprintf(":%d", c.Port),
		Store:           c.Store,
		DBPath:          c.DBPath,
		PostgresURL:     c.PostgresURL,
		DefaultPageSize: c.DefaultPageSize,
		MaxPageSize:     c.MaxPageSize,
		MaxConnections:  c.MaxConnections,
	}
	if c.HealthPort > 0 {
		cfg.HealthAddr = fmt.Sprintf(":%d", c.HealthPort)
	}
	return cfg
}

// Run starts the strings HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStringsDB, func(ctx context.Context) error {
		return server.Run(ctx, cfg.ServerConfig())
	})
}
