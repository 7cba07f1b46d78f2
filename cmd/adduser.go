package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aimawatch/internal/config"
	"aimawatch/internal/scheduler"
	"aimawatch/pkg/domain"
	"aimawatch/pkg/logger"
	"aimawatch/pkg/storage"
	"aimawatch/pkg/vault"
)

// addUserCommand constructs the 'adduser' subcommand that registers a user or
// replaces their credentials. Credentials are encrypted with the user's
// derived key before anything touches the database.
func addUserCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Registers a user or updates their portal credentials",
		Run: func(cmd *cobra.Command, args []string) {
			userID, _ := cmd.Flags().GetInt64("user")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			periodic, _ := cmd.Flags().GetBool("periodic")

			ctx := context.Background()

			schedOpts, err := scheduler.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create scheduler options", zap.Error(err))
			}

			id := domain.UserID(userID)
			key, err := vault.DeriveKey(schedOpts.Secret, id)
			if err != nil {
				logger.Fatal(ctx, "could not derive key", zap.Error(err))
			}
			emailEnc, err := vault.Encrypt(key, []byte(email))
			if err != nil {
				logger.Fatal(ctx, "could not encrypt email", zap.Error(err))
			}
			passwordEnc, err := vault.Encrypt(key, []byte(password))
			if err != nil {
				logger.Fatal(ctx, "could not encrypt password", zap.Error(err))
			}

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			// create and update share one transaction so a half-registered
			// user can never be observed
			if err := strg.WithTx(ctx, func(tx storage.AllStorage) error {
				existing, err := tx.UserByID(ctx, id)
				if err != nil {
					return fmt.Errorf("could not load user: %w", err)
				}

				if existing == nil {
					_, err := tx.CreateUser(ctx, domain.User{
						ID:                id,
						EmailEncrypted:    emailEnc,
						PasswordEncrypted: passwordEnc,
						PeriodicEnabled:   periodic,
					})

					return err
				}

				if err := tx.UpdateCredentials(ctx, id, emailEnc, passwordEnc); err != nil {
					return fmt.Errorf("could not update credentials: %w", err)
				}

				return tx.SetPeriodic(ctx, id, periodic)
			}); err != nil {
				logger.Fatal(ctx, "could not store user", zap.Error(err))
			}

			logger.Info(ctx, "user stored",
				zap.Int64("userId", userID),
				zap.Bool("periodic", periodic))
		},
	}

	cmd.Flags().Int64("user", 0, "User ID (chat ID)")
	cmd.Flags().String("email", "", "Portal email")
	cmd.Flags().String("password", "", "Portal password")
	cmd.Flags().Bool("periodic", true, "Enable hourly periodic checks")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
