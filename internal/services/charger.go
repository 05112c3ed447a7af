package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ChargeProcessor appends today's fee entry through the ledger service at
// most once per calendar day. A duplicate outcome counts as already charged;
// the add path is idempotent per date, so a bot-side manual add and the
// charger can coexist.
type ChargeProcessor struct {
	ledger  *Ledger
	checker DailyChecker
	lastRun time.Time
}

func NewChargeProcessor(ledger *Ledger) *ChargeProcessor {
	return &ChargeProcessor{ledger: ledger}
}

// ProcessDue charges the daily fee when a new calendar day has started.
// Returns true when a new entry was created.
func (p *ChargeProcessor) ProcessDue(ctx context.Context, now time.Time) (bool, error) {
	if !p.checker.IsDue(p.lastRun, now) {
		return false, nil
	}

	res, err := p.ledger.AddEntry(ctx, "")
	if err != nil {
		return false, fmt.Errorf("add daily entry: %w", err)
	}

	// Even a duplicate outcome settles today's charge.
	p.lastRun = now

	if !res.OK {
		slog.InfoContext(ctx, "Daily fee already recorded", "outcome", res.Message)
		return false, nil
	}

	slog.InfoContext(ctx, "Daily fee charged", "outcome", res.Message)
	return true, nil
}
