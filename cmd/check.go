package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aimawatch/internal/checker"
	"aimawatch/internal/config"
	"aimawatch/internal/notifier/telegram"
	"aimawatch/internal/policy"
	"aimawatch/internal/scheduler"
	"aimawatch/pkg/domain"
	"aimawatch/pkg/logger"
)

// checkCommand constructs the 'check' subcommand that runs a single status
// check for one user and prints the result.
func checkCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Runs a one-off status check for a user",
		Run: func(cmd *cobra.Command, args []string) {
			userID, _ := cmd.Flags().GetInt64("user")

			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			chk, err := checker.New(ctx, checker.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create checker", zap.Error(err))
			}

			schedOpts, err := scheduler.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create scheduler options", zap.Error(err))
			}

			ntf := telegram.New(&http.Client{Timeout: telegramTimeout},
				cfg.Telegram.BotToken, cfg.Telegram.APIBaseURL)
			sched := scheduler.New(schedOpts, strg, chk, ntf,
				policy.New(schedOpts.Location), nil)

			result, err := sched.CheckNow(ctx, domain.UserID(userID))
			if err != nil {
				logger.Fatal(ctx, "check failed", zap.Error(err))
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				logger.Fatal(ctx, "could not render result", zap.Error(err))
			}
			fmt.Println(string(out)) //nolint: forbidigo
		},
	}

	cmd.Flags().Int64("user", 0, "User ID to check")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
