package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"clinical-scheduling/cmd/bootstrap"
	"clinical-scheduling/config"
	"clinical-scheduling/internal/delivery/dto"
	"clinical-scheduling/internal/infrastructure/database"
	"clinical-scheduling/internal/usecase"
	"clinical-scheduling/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "clinical-scheduling",
		Short:         "Clinical scheduling API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatalf("%v", err)
	}
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, bootstrap.NewLogger(cfg.App), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			log.Info("Configuration loaded successfully")

			app, err := bootstrap.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return app.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				return m.Up()
			})
		},
	}
	cmd.AddCommand(upCmd)

	// migrate down
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(func(m *database.Migrator) error {
				return m.Down(steps)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back (0 rolls back all)")
	cmd.AddCommand(downCmd)

	return cmd
}

func withMigrator(run func(m *database.Migrator) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	migrator, err := database.NewMigrator(cfg.DB.MigrationURL(), log)
	if err != nil {
		return err
	}

	if err := run(migrator); err != nil {
		return errors.Join(fmt.Errorf("migration failed: %w", err), migrator.Close())
	}
	return migrator.Close()
}

func createUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createuser",
		Short: "Create an API user",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("CREATEUSER_PASSWORD")
			}

			req := &dto.CreateUserRequest{Username: username, Password: password}
			v := validator.NewValidator()
			if err := v.Validate(req); err != nil {
				return fmt.Errorf("invalid user: %v", v.FormatValidationErrors(err))
			}

			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			app, err := bootstrap.New(cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Close()

			user, err := app.AuthUsecase.CreateUser(cmd.Context(), req)
			if errors.Is(err, usecase.ErrUsernameExists) {
				return fmt.Errorf("user %q already exists", username)
			}
			if err != nil {
				return err
			}

			log.WithField("user_id", user.ID).Infof("User %s created", user.Username)
			return nil
		},
	}
	cmd.Flags().String("username", "", "Username for the new user")
	cmd.Flags().String("password", "", "Password for the new user (or CREATEUSER_PASSWORD)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}
