package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hugscape/storefront/internal/auth"
	"github.com/hugscape/storefront/internal/auth/google"
	"github.com/hugscape/storefront/internal/config"
	"github.com/hugscape/storefront/internal/domain/services"
	"github.com/hugscape/storefront/internal/infrastructure/database/postgres"
	"github.com/hugscape/storefront/internal/pkg/idgen"
	"github.com/hugscape/storefront/internal/pkg/logger"
	"github.com/hugscape/storefront/migrations"
	"github.com/hugscape/storefront/server/internal/handlers"
	"github.com/hugscape/storefront/server/internal/middleware"
	"github.com/hugscape/storefront/server/internal/session"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		forceVersion  int
		configPath    string
		logLevel      string
		logFile       string
		logToStderr   bool
		alsoLogStderr bool
		logFormat     string
	)

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Hugscape storefront API server",
		Long:  "The HTTP API for the Hugscape storefront: Google sign-in, sessions and the product catalog",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupServerLogging(logLevel, logFile, logToStderr, alsoLogStderr, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), configPath, forceVersion)
		},
	}

	cmd.Flags().IntVar(&forceVersion, "force-migration", -1, "Force migration version (use to fix dirty migration state)")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (optional)")

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (if specified, logs to file instead of stderr)")
	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr (default behavior unless --log-file specified)")
	cmd.PersistentFlags().BoolVar(&alsoLogStderr, "alsologtostderr", false, "Log to both file and stderr")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "Log format (text, json)")

	cmd.AddCommand(newUserCommand(&configPath))

	return cmd
}

// setupServerLogging configures the global logger for the server
func setupServerLogging(logLevel, logFile string, logToStderr, alsoLogStderr bool, logFormat string) error {
	if logFile == "" {
		logToStderr = true
	}

	globalLogger, err := logger.SetupLogger(logger.Config{
		Level:         logger.ParseLevel(logLevel),
		LogFile:       logFile,
		LogToStderr:   logToStderr,
		AlsoLogStderr: alsoLogStderr,
		Format:        logFormat,
	})
	if err != nil {
		return err
	}

	slog.SetDefault(globalLogger)
	return nil
}

// connectDatabase opens the pool, retrying with backoff while the database
// comes up alongside the server.
func connectDatabase(ctx context.Context, cfg *config.Config) (*postgres.Connection, error) {
	log := slog.Default().With("component", "server")

	const maxRetries = 10
	retryDelay := 2 * time.Second

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		conn, err := postgres.NewConnection(ctx, cfg.Database.Postgres.ConnectionString())
		if err == nil {
			log.Info("Successfully connected to PostgreSQL")
			return conn, nil
		}
		lastErr = err

		if i == maxRetries-1 {
			break
		}
		log.Warn("Failed to connect to PostgreSQL",
			"attempt", i+1,
			"max_retries", maxRetries,
			"error", err,
			"retry_delay", retryDelay)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}
	return nil, fmt.Errorf("failed to connect to PostgreSQL after %d attempts: %w", maxRetries, lastErr)
}

// sessionKeys decodes the configured cookie secret. An empty secret gets a
// random key, which invalidates in-flight logins on restart.
func sessionKeys(secret string) (hashKey, encryptKey []byte, err error) {
	if secret == "" {
		key := make([]byte, 64)
		if _, err := rand.Read(key); err != nil {
			return nil, nil, err
		}
		slog.Warn("session.secret not set, using a random key")
		return key[:32], key[32:], nil
	}

	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, nil, fmt.Errorf("session.secret must be base64: %w", err)
	}
	switch len(key) {
	case 32:
		return key, nil, nil
	case 64:
		return key[:32], key[32:], nil
	default:
		return nil, nil, fmt.Errorf("session.secret must decode to 32 or 64 bytes, got %d", len(key))
	}
}

func runServer(ctx context.Context, configPath string, forceVersion int) error {
	log := slog.Default().With("component", "server")
	log.Info("Starting server initialization")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := idgen.Initialize(cfg.NodeID); err != nil {
		return fmt.Errorf("failed to initialize ID generator: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Initializing PostgreSQL database",
		"user", cfg.Database.Postgres.User,
		"host", cfg.Database.Postgres.Host,
		"database", cfg.Database.Postgres.Database)

	pgConn, err := connectDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer pgConn.Close()

	if forceVersion >= 0 {
		log.Info("Force setting migration version", "version", forceVersion)
		if err := pgConn.ForceMigrationVersion(migrations.FS, forceVersion); err != nil {
			return fmt.Errorf("failed to force migration version: %w", err)
		}
		log.Info("Migration version forced, exiting", "version", forceVersion)
		return nil
	}

	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	userRepo := postgres.NewUserRepository(pgConn.DB)
	productRepo := postgres.NewProductRepository(pgConn.DB)

	codec := auth.NewTokenCodec(cfg.Auth.JWT.SigningKey, cfg.Auth.JWT.Lifetime, cfg.Auth.JWT.Issuer)

	identityService := services.NewIdentityService(userRepo)
	sessionService := services.NewSessionService(identityService, userRepo, codec)
	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo)

	if cfg.Catalog.Seed {
		seeded, err := productService.SeedIfEmpty(ctx)
		if err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
		if seeded > 0 {
			log.Info("Seeded sample catalog", "products", seeded)
		}
	}

	// The handler treats a nil provider as "Google login disabled"
	var provider handlers.OAuthProvider
	if cfg.Auth.Google.Enabled() {
		p, err := google.New(cfg.Auth.Google)
		if err != nil {
			return fmt.Errorf("failed to initialize Google provider: %w", err)
		}
		provider = p
		log.Info("Google login enabled", "client_id", cfg.Auth.Google.ClientID)
	} else {
		log.Warn("Google login disabled: auth.google.client_id not set")
	}

	hashKey, encryptKey, err := sessionKeys(cfg.Session.Secret)
	if err != nil {
		return err
	}
	stateStore := session.NewStateStore(hashKey, encryptKey, cfg.Session.Secure)

	h := handlers.New(sessionService, userService, productService, provider, stateStore, pgConn, handlers.Config{
		FrontendCallbackURL: cfg.Frontend.CallbackURL,
		AllowProfileLogin:   cfg.Auth.AllowProfileLogin,
	})
	authMw := middleware.NewAuthMiddleware(sessionService)

	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           createRouter(h, authMw, cfg.Frontend.AllowedOrigins),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
