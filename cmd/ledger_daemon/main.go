package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/SscSPs/access_exchange/internal/core/ports/services"
	coreservices "github.com/SscSPs/access_exchange/internal/core/services"
	"github.com/SscSPs/access_exchange/internal/events"
	"github.com/SscSPs/access_exchange/internal/events/kafka"
	"github.com/SscSPs/access_exchange/internal/middleware"
	"github.com/SscSPs/access_exchange/internal/platform/config"
	"github.com/SscSPs/access_exchange/internal/repositories/database/pgsql"
	"github.com/SscSPs/access_exchange/pkg/database"
)

// ledger_daemon charges the daily access tax and pays out curriculum wallets on a fixed interval.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers)
	}
	defer publisher.Close()

	repos := pgsql.NewRepositoryProvider(dbPool, cfg.LockTimeout)
	container := coreservices.NewServiceContainer(repos, cfg, publisher, events.NewSubscriptionRevoker(publisher))

	logger.Info("Ledger daemon started", slog.Duration("interval", cfg.DaemonInterval))
	ticker := time.NewTicker(cfg.DaemonInterval)
	defer ticker.Stop()

	runOnce(ctx, logger, container)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Ledger daemon stopping")
			return
		case <-ticker.C:
			runOnce(ctx, logger, container)
		}
	}
}

// runOnce charges today's tax and pays out curricula. Failures are logged and retried next tick.
func runOnce(ctx context.Context, logger *slog.Logger, container *services.ServiceContainer) {
	day := time.Now().UTC()
	runLogger := logger.With(slog.String("day", domain.DayKey(day)))
	ctx = middleware.WithLogger(ctx, runLogger)

	stats, err := container.Tax.ChargeDailyTaxForAllUsers(ctx, day)
	if err != nil {
		runLogger.Error("Daily tax run failed", slog.String("error", err.Error()))
	} else {
		runLogger.Info("Daily tax run finished",
			slog.Int("charged", stats.Charged),
			slog.Int("skipped_insufficient", stats.SkippedInsufficient),
			slog.Int("waived", stats.Waived),
			slog.Int("failed", stats.Failed),
		)
	}

	paid, err := container.Rewards.PayoutAllCurricula(ctx)
	if err != nil {
		runLogger.Error("Curriculum payout failed", slog.String("error", err.Error()))
		return
	}
	runLogger.Info("Curriculum payout finished", slog.Int64("distributed_ticks", paid))
}
