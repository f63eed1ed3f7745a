package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugscape/storefront/internal/config"
	"github.com/hugscape/storefront/internal/domain/services"
	"github.com/hugscape/storefront/internal/infrastructure/database/postgres"
	"github.com/hugscape/storefront/migrations"
)

func newUserCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long:  "Commands for managing shopper accounts in the storefront database",
	}

	cmd.AddCommand(newUserShowCommand(configPath))
	cmd.AddCommand(newUserDeactivateCommand(configPath))

	return cmd
}

func newUserShowCommand(configPath *string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print an active account as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserService(cmd.Context(), *configPath, func(ctx context.Context, svc *services.UserService) error {
				user, err := svc.GetProfile(ctx, id)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(user)
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User ID (required)")
	cmd.MarkFlagRequired("id")

	return cmd
}

func newUserDeactivateCommand(configPath *string) *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate an account",
		Long:  "Deactivate an account. Its tokens stop authenticating immediately; the row is kept.",
		Example: `  # Deactivate a shopper
  storefront user deactivate --id 1790000000000000000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withUserService(cmd.Context(), *configPath, func(ctx context.Context, svc *services.UserService) error {
				if err := svc.Deactivate(ctx, id); err != nil {
					return fmt.Errorf("failed to deactivate user: %w", err)
				}
				slog.Info("User deactivated", "user_id", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User ID (required)")
	cmd.MarkFlagRequired("id")

	return cmd
}

// withUserService opens the database, applies migrations and runs fn
func withUserService(ctx context.Context, configPath string, fn func(context.Context, *services.UserService) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pgConn, err := postgres.NewConnection(ctx, cfg.Database.Postgres.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}
	defer pgConn.Close()

	if err := pgConn.RunMigrations(migrations.FS); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return fn(ctx, services.NewUserService(postgres.NewUserRepository(pgConn.DB)))
}
