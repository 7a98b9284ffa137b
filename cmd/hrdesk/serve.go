package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hrdesk/hrdesk/internal/agent"
	"github.com/hrdesk/hrdesk/internal/auth"
	"github.com/hrdesk/hrdesk/internal/config"
	"github.com/hrdesk/hrdesk/internal/hr"
	"github.com/hrdesk/hrdesk/internal/llm"
	"github.com/hrdesk/hrdesk/internal/server"
	"github.com/hrdesk/hrdesk/internal/session"
	"github.com/hrdesk/hrdesk/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		model string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP chat service",
		Long: `Start the chat API, the embedded web UI, and the background
session sweeper. Configuration comes from the config file (--config),
HRDESK_* environment variables, and flags, in increasing precedence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if model != "" {
				cfg.Model = model
			}
			if verbose {
				cfg.LogLevel = "debug"
			}
			if cfg.APIKey == "" {
				cfg.APIKey = auth.KeyFromEnv()
			}

			logLevel := new(slog.LevelVar)
			logLevel.Set(telemetry.ParseLevel(cfg.LogLevel))
			logger := telemetry.NewLogger(os.Stdout, logLevel)

			client, modelName := llm.NewClientForModel(cfg.Model)
			sessions := session.NewStore()
			stores := hr.NewStores()
			if cfg.Seed {
				if err := stores.Seed(); err != nil {
					return err
				}
				logger.Info("development fixtures loaded",
					"vacations", stores.Vacations.Len(),
					"timesheets", stores.Timesheets.Len(),
					"procedures", stores.Procedures.Len(),
				)
			}

			metrics := telemetry.NewMetrics(func() float64 {
				return float64(sessions.Len())
			})

			router := agent.NewHRRouter(client, sessions,
				agent.WithModel(modelName),
				agent.WithMaxTokens(cfg.MaxTokens),
				agent.WithLogger(logger),
				agent.WithUsageRecorder(func(agentName string, usage llm.TokenUsage) {
					metrics.RecordTokens(agentName, usage.InputTokens, usage.OutputTokens)
				}),
			)

			srv := server.New(router, sessions, stores,
				server.WithLogger(logger),
				server.WithMetrics(metrics),
				server.WithModelName(cfg.Model),
				server.WithVersion(version),
				server.WithAPIKey(cfg.APIKey),
				server.WithCORSOrigins(cfg.CORSOrigins),
				server.WithRateLimiter(auth.NewRateLimiter(auth.RateLimitConfigFromEnv())),
			)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				if err := srv.ListenAndServe(cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})

			g.Go(func() error {
				<-ctx.Done()
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			g.Go(func() error {
				return runSweeper(ctx, cfg, sessions, metrics, logger)
			})

			if configPath != "" {
				g.Go(func() error {
					err := config.Watch(ctx, configPath, logger, func(next config.Config) {
						logLevel.Set(telemetry.ParseLevel(next.LogLevel))
					})
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				})
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	cmd.Flags().StringVar(&model, "model", "", "Chat model (overrides config)")

	return cmd
}

// runSweeper removes idle sessions on the configured cron schedule until ctx
// is cancelled.
func runSweeper(ctx context.Context, cfg config.Config, sessions *session.Store, metrics *telemetry.Metrics, logger *slog.Logger) error {
	c := cron.New()
	_, err := c.AddFunc(cfg.SweepSchedule, func() {
		removed := sessions.SweepExpired(time.Duration(cfg.SessionMaxIdle))
		metrics.RecordSweep(removed)
		if removed > 0 {
			logger.Info("idle sessions swept", "removed", removed, "remaining", sessions.Len())
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}
