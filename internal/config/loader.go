package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// minSigningKeyLength is the HS256 key size
const minSigningKeyLength = 32

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// DefaultConfigPaths defines the default locations to search for configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/config.yaml",
	"./configs/development.yaml",
	"/etc/hugscape/config.yaml",
}

// Defaults returns a configuration populated with default values only
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				Database: "hugscape",
				User:     "postgres",
				SSLMode:  "disable",
			},
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Lifetime: 24 * time.Hour,
				Issuer:   "hugscape",
			},
			Google: GoogleConfig{
				RedirectURL: "http://localhost:8080/auth/google/callback",
				Scopes:      []string{"openid", "email", "profile"},
			},
		},
		Frontend: FrontendConfig{
			CallbackURL:    "http://localhost:3000/auth/callback",
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Catalog: CatalogConfig{Seed: true},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		NodeID: 1,
	}
}

// Load loads the configuration from the specified file or default locations.
// STOREFRONT_JWT_SECRET overrides auth.jwt.signing_key when set.
func Load(configPath string) (*Config, error) {
	config := Defaults()

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if !fileExists(configPath) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		slog.Info("loading config", slog.String("path", configPath))
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(expandEnvVars(data), config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		slog.Info("no config file found, using defaults")
	}

	if secret := os.Getenv("STOREFRONT_JWT_SECRET"); secret != "" {
		config.Auth.JWT.SigningKey = secret
	}

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the configuration
func validate(config *Config) error {
	if config.Database.Postgres.Host == "" {
		return fmt.Errorf("postgres host is required")
	}
	if config.Database.Postgres.Database == "" {
		return fmt.Errorf("postgres database name is required")
	}
	if config.Database.Postgres.User == "" {
		return fmt.Errorf("postgres user is required")
	}

	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	if len(config.Auth.JWT.SigningKey) < minSigningKeyLength {
		return fmt.Errorf("auth.jwt.signing_key must be at least %d bytes", minSigningKeyLength)
	}
	if config.Auth.JWT.Lifetime <= 0 {
		return fmt.Errorf("auth.jwt.lifetime must be positive")
	}

	g := config.Auth.Google
	if (g.ClientID == "") != (g.ClientSecret == "") {
		return fmt.Errorf("auth.google requires both client_id and client_secret")
	}
	if g.Enabled() && g.RedirectURL == "" {
		return fmt.Errorf("auth.google.redirect_url is required")
	}

	if config.Frontend.CallbackURL == "" {
		return fmt.Errorf("frontend.callback_url is required")
	}

	return nil
}
