package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/summary-content/pkg/summarycontent"
	"github.com/tendant/summary-content/pkg/summarycontent/api"
	"github.com/tendant/summary-content/pkg/summarycontent/configurations"
	repopg "github.com/tendant/summary-content/pkg/summarycontent/repo/postgres"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		Environment:     "development",
		DBSchema:        "public",
		DefaultPageSize: api.DefaultPageSize,
		MaxPageSize:     api.MaxPageSize,
	}
}

// ServerConfig represents server configuration for the summary-content service
type ServerConfig struct {
	Port        string `yaml:"port" env:"PORT"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"` // development, production, testing

	// Database configuration
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	DBSchema    string `yaml:"db_schema" env:"DB_SCHEMA"` // Postgres schema holding the content tables

	// Listing options
	DefaultPageSize int `yaml:"default_page_size" env:"DEFAULT_PAGE_SIZE"`
	MaxPageSize     int `yaml:"max_page_size" env:"MAX_PAGE_SIZE"`

	// Authentication; both empty leaves the API open
	APIKeySHA256 string `yaml:"api_key_sha256" env:"API_KEY_SHA256"`
	JWTSecret    string `yaml:"jwt_secret" env:"JWT_SECRET"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Environment {
	case "development", "production", "testing":
	default:
		return fmt.Errorf("environment must be 'development', 'production' or 'testing', got: %s", c.Environment)
	}

	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return errors.New("database_url must be a 'postgres://' or 'postgresql://' URL")
	}

	if c.DefaultPageSize < 1 {
		return errors.New("default_page_size must be at least 1")
	}
	if c.MaxPageSize < c.DefaultPageSize {
		return fmt.Errorf("max_page_size (%d) must not be smaller than default_page_size (%d)", c.MaxPageSize, c.DefaultPageSize)
	}

	return nil
}

// AuthConfig returns the API authentication settings
func (c *ServerConfig) AuthConfig() api.AuthConfig {
	return api.AuthConfig{
		APIKeySHA256: c.APIKeySHA256,
		JWTSecret:    c.JWTSecret,
	}
}

// BuildAggregator creates the Postgres pool and an aggregator over the
// built-in content configurations. The returned pool must be closed by the caller.
func (c *ServerConfig) BuildAggregator(ctx context.Context) (*summarycontent.Aggregator, *pgxpool.Pool, error) {
	cfg, err := poolConfig(c.DatabaseURL, c.DBSchema)
	if err != nil {
		return nil, nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	registry, err := configurations.NewRegistry()
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to build content registry: %w", err)
	}

	agg, err := summarycontent.New(
		summarycontent.WithRegistry(registry),
		summarycontent.WithPaginator(repopg.NewWithPool(pool)),
	)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	return agg, pool, nil
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
// It fails if the schema (when provided) does not exist.
func PingPostgres(databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := poolConfig(databaseURL, schema)
	if err != nil {
		return err
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func poolConfig(databaseURL, schema string) (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, searchPathStatement(schema))
			return err
		}
	}
	return cfg, nil
}

func searchPathStatement(schema string) string {
	return "SET search_path TO " + pgx.Identifier{schema}.Sanitize()
}
