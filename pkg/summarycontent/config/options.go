package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase sets the Postgres connection string
func WithDatabase(url string) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			return fmt.Errorf("database URL cannot be empty")
		}
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithPageSizes sets the default and maximum page sizes of the listing API
func WithPageSizes(defaultSize, maxSize int) Option {
	return func(c *ServerConfig) error {
		if defaultSize < 1 || maxSize < 1 {
			return fmt.Errorf("page sizes must be positive, got default %d and max %d", defaultSize, maxSize)
		}
		c.DefaultPageSize = defaultSize
		c.MaxPageSize = maxSize
		return nil
	}
}

// WithAPIKey protects the API with the given SHA-256 API key hash
func WithAPIKey(sha256Hex string) Option {
	return func(c *ServerConfig) error {
		c.APIKeySHA256 = sha256Hex
		return nil
	}
}

// WithJWTSecret protects the API with HS256 bearer tokens
func WithJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		return nil
	}
}
