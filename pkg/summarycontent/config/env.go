package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv applies environment variable overrides. Unset or empty variables
// keep the value already configured.
//
//	PORT               - Server port (default: "8080")
//	ENVIRONMENT        - Runtime environment (default: "development")
//	DATABASE_URL       - Postgres connection string (required)
//	DB_SCHEMA          - Schema holding the content tables (default: "public")
//	DEFAULT_PAGE_SIZE  - Page size when the caller sends none (default: 25)
//	MAX_PAGE_SIZE      - Largest page size accepted (default: 100)
//	API_KEY_SHA256     - SHA-256 hash of the API key
//	JWT_SECRET         - HS256 secret for bearer tokens
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env ServerConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		merge(c, env)
		return nil
	}
}

// WithConfigFile applies settings from a YAML, JSON, TOML or .env file. Keys
// missing from the file keep the value already configured.
func WithConfigFile(path string) Option {
	return func(c *ServerConfig) error {
		var file ServerConfig
		if err := cleanenv.ReadConfig(path, &file); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		merge(c, file)
		return nil
	}
}

func merge(dst *ServerConfig, src ServerConfig) {
	if src.Port != "" {
		dst.Port = src.Port
	}
	if src.Environment != "" {
		dst.Environment = src.Environment
	}
	if src.DatabaseURL != "" {
		dst.DatabaseURL = src.DatabaseURL
	}
	if src.DBSchema != "" {
		dst.DBSchema = src.DBSchema
	}
	if src.DefaultPageSize != 0 {
		dst.DefaultPageSize = src.DefaultPageSize
	}
	if src.MaxPageSize != 0 {
		dst.MaxPageSize = src.MaxPageSize
	}
	if src.APIKeySHA256 != "" {
		dst.APIKeySHA256 = src.APIKeySHA256
	}
	if src.JWTSecret != "" {
		dst.JWTSecret = src.JWTSecret
	}
}
