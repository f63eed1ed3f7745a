package config

import (
	"fmt"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	Frontend FrontendConfig `yaml:"frontend"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
	NodeID   int64          `yaml:"node_id" default:"1"` // snowflake node, unique per replica
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"5432"`
	Database string `yaml:"database" default:"hugscape"`
	User     string `yaml:"user" default:"postgres"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode" default:"disable"` // disable, require, verify-ca, verify-full
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWT    JWTConfig    `yaml:"jwt"`
	Google GoogleConfig `yaml:"google"`
	// AllowProfileLogin enables POST /auth/login, which trusts a profile
	// posted by an upstream that already completed the Google handshake.
	AllowProfileLogin bool `yaml:"allow_profile_login"`
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	SigningKey string        `yaml:"signing_key"`            // HMAC secret, at least 32 bytes
	Lifetime   time.Duration `yaml:"lifetime" default:"24h"` // fixed, not user-adjustable
	Issuer     string        `yaml:"issuer" default:"hugscape"`
}

// GoogleConfig holds the Google OAuth2 client registration
type GoogleConfig struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url" default:"http://localhost:8080/auth/google/callback"`
	Scopes       []string `yaml:"scopes,omitempty"`
}

// Enabled reports whether Google login is configured
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// SessionConfig holds the cookie store used for the OAuth state round-trip
type SessionConfig struct {
	Secret string `yaml:"secret"` // base64 encoded, 32 or 64 bytes
	Secure bool   `yaml:"secure"`
}

// FrontendConfig holds the browser-facing settings
type FrontendConfig struct {
	CallbackURL    string   `yaml:"callback_url" default:"http://localhost:3000/auth/callback"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CatalogConfig controls product table bootstrap
type CatalogConfig struct {
	Seed bool `yaml:"seed" default:"true"` // insert sample products when the table is empty
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json"`
	File   string `yaml:"file"`
}

// ConnectionString returns the PostgreSQL connection string
func (p *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Address returns host:port for the HTTP listener
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
