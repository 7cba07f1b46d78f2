package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aimawatch/internal/api"
	"aimawatch/internal/checker"
	"aimawatch/internal/config"
	"aimawatch/internal/notifier/telegram"
	"aimawatch/internal/policy"
	"aimawatch/internal/scheduler"
	"aimawatch/pkg/logger"
	"aimawatch/pkg/metrics"
)

// telegramTimeout bounds every Bot API request.
const telegramTimeout = 30 * time.Second

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...")
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// watchCommand constructs the 'watch' subcommand that runs the periodic check
// scheduler together with the API server.
func watchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Starts the periodic status checker and API server",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

			logger.Info(ctx, "starting status watcher",
				zap.String("loginURL", cfg.Upstream.LoginURL),
				zap.String("checkURL", cfg.Upstream.CheckURL),
				zap.String("proxy", checker.MaskProxyURL(cfg.Upstream.ProxyURL)),
				zap.Bool("insecureSkipTLSVerify", cfg.Upstream.InsecureSkipTLSVerify),
				zap.String("timezone", cfg.Scheduler.Timezone))

			strg, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()

			chk, err := checker.New(ctx, checker.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create checker", zap.Error(err))
			}

			ntf := telegram.New(&http.Client{Timeout: telegramTimeout},
				cfg.Telegram.BotToken,
				cfg.Telegram.APIBaseURL)

			schedOpts, err := scheduler.NewOptions(cfg)
			if err != nil {
				logger.Fatal(ctx, "could not create scheduler options", zap.Error(err))
			}

			mp, err := api.NewMeterProvider()
			if err != nil {
				logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
			}
			m, err := metrics.New(mp.Meter("aimawatch"))
			if err != nil {
				logger.Fatal(ctx, "could not create metrics", zap.Error(err))
			}

			sched := scheduler.New(schedOpts, strg, chk, ntf,
				policy.New(schedOpts.Location), m)

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Scheduler: sched,
				Storage:   strg,
			})

			go func() {
				_ = sched.Run(ctx)
			}()

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)
		},
	}

	return cmd
}
