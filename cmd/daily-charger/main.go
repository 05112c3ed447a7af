package main

import (
	"context"
	"os"
	"time"

	"balancebot/internal/backend"
	"balancebot/internal/cli"
	"balancebot/internal/log"
	"balancebot/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(log.ComponentCharger)
	logger.Info("Starting daily-charger")

	cfg := cli.LoadAndValidateConfig(logger)

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
	processor := services.NewChargeProcessor(ledger)

	logger.Info("Daily charger configured",
		"interval", cfg.ChargeInterval,
		log.FieldBackend, cfg.DataBackend,
		log.FieldPriceCents, cfg.DailyPriceCents)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}
	})

	// Charge on startup in case the process was down over a day boundary.
	if charged, err := processor.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial charge failed", "error", err)
	} else {
		logger.Info("Initial charge check complete", "charged", charged)
	}

	ticker := time.NewTicker(cfg.ChargeInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				charged, err := processor.ProcessDue(ctx, now)
				if err != nil {
					logger.Error("Periodic charge failed", "error", err)
					continue
				}
				if charged {
					logger.Info("Periodic charge complete",
						"next_check", now.Add(cfg.ChargeInterval).Format("15:04:05"))
				}
			}
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
