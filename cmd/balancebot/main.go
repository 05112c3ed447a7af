package main

import (
	"context"
	"errors"
	"os"
	"time"

	"balancebot/internal/backend"
	"balancebot/internal/bot"
	"balancebot/internal/cli"
	"balancebot/internal/log"
	"balancebot/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentApp)
	logger.Info("Starting balancebot")

	cfg := cli.LoadAndValidateConfig(logger)
	if err := cfg.RequireBotToken(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Failed to build backend config", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", backendCfg.Type.String())
		os.Exit(1)
	}

	ledger := services.NewLedger(result.Store, result.Publisher, services.Policy(cfg.BalancePolicy), cfg.DailyPriceCents)
	dispatcher := bot.NewDispatcher(ledger)

	tg, err := bot.NewTelegramBot(cfg.BotToken, dispatcher)
	if err != nil {
		logger.Error("Failed to initialize Telegram bot", "error", err)
		os.Exit(1)
	}

	logger.Info("Balancebot configured",
		log.FieldBackend, cfg.DataBackend,
		log.FieldPolicy, cfg.BalancePolicy,
		log.FieldPriceCents, cfg.DailyPriceCents)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	})

	if err := tg.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot stopped with error", "error", err)
	}

	cli.WaitForShutdown(ctx, done)
}
