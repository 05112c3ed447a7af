// Package bot is the chat surface: a transport-agnostic command dispatcher
// plus the Telegram long-polling adapter that feeds it.
package bot

import (
	"context"
	"log/slog"

	"balancebot/internal/services"
)

// HandlerFunc handles one chat command. args is the raw text after the
// command name, trimmed by the transport.
type HandlerFunc func(ctx context.Context, args string) (string, error)

// Dispatcher routes commands to handlers. Every handler calls exactly one
// ledger operation and renders its result; store faults surface as errors
// and are replaced with a generic reply.
type Dispatcher struct {
	ledger   *services.Ledger
	handlers map[string]HandlerFunc
}

func NewDispatcher(ledger *services.Ledger) *Dispatcher {
	d := &Dispatcher{ledger: ledger}
	d.handlers = map[string]HandlerFunc{
		"start":          d.handleStart,
		"balance":        d.handleBalance,
		"update_balance": d.handleUpdateBalance,
		"delete_balance": d.handleDeleteBalance,
		"updates":        d.handleUpdates,
	}
	return d
}

// Dispatch resolves the command and returns the reply text. It never
// returns an error to the transport: faults are logged and collapsed into
// the generic failure reply.
func (d *Dispatcher) Dispatch(ctx context.Context, command, args string) string {
	handler, ok := d.handlers[command]
	if !ok {
		return unknownReply
	}

	reply, err := handler(ctx, args)
	if err != nil {
		slog.ErrorContext(ctx, "Command failed", "command", command, "error", err)
		return errorReply
	}
	return reply
}

func (d *Dispatcher) handleStart(context.Context, string) (string, error) {
	return startReply, nil
}

func (d *Dispatcher) handleUpdates(context.Context, string) (string, error) {
	return updatesReply, nil
}

func (d *Dispatcher) handleBalance(ctx context.Context, args string) (string, error) {
	res, err := d.ledger.ListEntries(ctx, args)
	if err != nil {
		return "", err
	}
	if len(res.Entries) == 0 {
		return res.Message, nil
	}
	return FormatTable(res.Entries), nil
}

func (d *Dispatcher) handleUpdateBalance(ctx context.Context, args string) (string, error) {
	res, err := d.ledger.AddEntry(ctx, args)
	if err != nil {
		return "", err
	}
	if !res.OK {
		return res.Message, nil
	}

	// Reply with the refreshed table so the user sees the new row in place.
	listed, err := d.ledger.ListEntries(ctx, "")
	if err != nil {
		return "", err
	}
	if len(listed.Entries) == 0 {
		return res.Message, nil
	}
	return res.Message + "\n\n" + FormatTable(listed.Entries), nil
}

func (d *Dispatcher) handleDeleteBalance(ctx context.Context, args string) (string, error) {
	res, err := d.ledger.DeleteEntry(ctx, args)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}
